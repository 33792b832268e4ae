package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nepse-stock-scryper/internal/entity"
	"nepse-stock-scryper/internal/ingestion/dto"
	"nepse-stock-scryper/internal/ingestion/repository"
	"nepse-stock-scryper/internal/ingestion/runlog"
	"nepse-stock-scryper/pkg/logger"
)

type fakeCompanyRepository struct {
	mu          sync.Mutex
	byTicker    map[string]*entity.Company
	lookupErr   map[string]error
	createErr   map[string]error
	noID        map[string]bool
	lookups     int
	createCalls int
	nextID      int
}

func newFakeCompanyRepository(tickers ...string) *fakeCompanyRepository {
	r := &fakeCompanyRepository{
		byTicker:  make(map[string]*entity.Company),
		lookupErr: make(map[string]error),
		createErr: make(map[string]error),
		noID:      make(map[string]bool),
	}
	for _, t := range tickers {
		r.nextID++
		r.byTicker[t] = &entity.Company{ID: fmt.Sprintf("company-%d", r.nextID), TickerSymbol: t, Name: t + " Ltd", IsActive: true}
	}
	return r
}

func (r *fakeCompanyRepository) FindByTicker(_ context.Context, ticker string) (*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	if err := r.lookupErr[ticker]; err != nil {
		return nil, err
	}
	c, ok := r.byTicker[ticker]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCompanyRepository) CreateIfAbsent(_ context.Context, company *entity.Company) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if err := r.createErr[company.TickerSymbol]; err != nil {
		return false, err
	}
	if existing, ok := r.byTicker[company.TickerSymbol]; ok {
		*company = *existing
		return false, nil
	}
	if !r.noID[company.TickerSymbol] {
		r.nextID++
		company.ID = fmt.Sprintf("company-%d", r.nextID)
	}
	cp := *company
	r.byTicker[company.TickerSymbol] = &cp
	return true, nil
}

func (r *fakeCompanyRepository) FindAll(_ context.Context, activeOnly bool) ([]entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Company
	for _, c := range r.byTicker {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

type fakeMarketDataRepository struct {
	mu          sync.Mutex
	rows        map[string]entity.DailyMarketData
	batchErr    error
	affected    *int64
	rowErr      map[string]error
	batchCalls  int
	upsertCalls int
}

func newFakeMarketDataRepository() *fakeMarketDataRepository {
	return &fakeMarketDataRepository{
		rows:   make(map[string]entity.DailyMarketData),
		rowErr: make(map[string]error),
	}
}

func marketDataKey(companyID string, d time.Time) string {
	return companyID + "|" + d.Format(time.DateOnly)
}

func (r *fakeMarketDataRepository) UpsertBatch(_ context.Context, rows []entity.DailyMarketData) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batchCalls++
	if r.batchErr != nil {
		return 0, r.batchErr
	}
	for _, row := range rows {
		r.rows[marketDataKey(row.CompanyID, time.Time(row.TradeDate))] = row
	}
	if r.affected != nil {
		return *r.affected, nil
	}
	return int64(len(rows)), nil
}

func (r *fakeMarketDataRepository) Upsert(_ context.Context, row *entity.DailyMarketData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsertCalls++
	if err := r.rowErr[row.CompanyID]; err != nil {
		return err
	}
	r.rows[marketDataKey(row.CompanyID, time.Time(row.TradeDate))] = *row
	return nil
}

func (r *fakeMarketDataRepository) FindByCompany(_ context.Context, companyID string, limit int) ([]entity.DailyMarketData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.DailyMarketData
	for _, row := range r.rows {
		if row.CompanyID == companyID {
			out = append(out, row)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMarketDataRepository) FindLatestByCompany(_ context.Context, companyID string) (*entity.DailyMarketData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *entity.DailyMarketData
	for _, row := range r.rows {
		if row.CompanyID != companyID {
			continue
		}
		if latest == nil || time.Time(row.TradeDate).After(time.Time(latest.TradeDate)) {
			row := row
			latest = &row
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	return latest, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	summaries []dto.RunSummary
}

func (p *fakePublisher) Publish(_ context.Context, s dto.RunSummary) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.summaries = append(p.summaries, s)
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) SendMessage(text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return nil
}

// testPipeline wires the ingestion service to in-memory fakes.
type testPipeline struct {
	companies  *fakeCompanyRepository
	marketData *fakeMarketDataRepository
	runLog     *runlog.Memory
	publisher  *fakePublisher
	notifier   *fakeNotifier
	service    *ingestionService
}

func newTestPipeline(upsertMode string, concurrency int, tickers ...string) *testPipeline {
	p := &testPipeline{
		companies:  newFakeCompanyRepository(tickers...),
		marketData: newFakeMarketDataRepository(),
		runLog:     runlog.NewMemory(10),
		publisher:  &fakePublisher{},
		notifier:   &fakeNotifier{},
	}
	log := logger.NewNop()
	resolver := NewCompanyResolver(p.companies, time.Minute, log)
	reconciler := NewMarketDataReconciler(p.marketData, upsertMode, log)
	cfg := ingestionConfig(concurrency)
	p.service = NewIngestionService(resolver, reconciler, p.runLog, p.publisher, p.notifier, cfg, log).(*ingestionService)
	return p
}

func scrapedRow(symbol, ltp string) dto.ScrapedRow {
	return dto.ScrapedRow{
		SN:            "1",
		CompanySymbol: symbol,
		LTP:           ltp,
		ChangePercent: "1.5",
		OpenPrice:     "990",
		HighPrice:     "1,010",
		LowPrice:      "985",
		QtyTraded:     "12,345",
		Turnover:      "12,345,000.50",
		PrevClosing:   "985.20",
		DifferenceRs:  "14.80",
	}
}

type entityRow = entity.DailyMarketData
