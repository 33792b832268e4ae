package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"nepse-stock-scryper/internal/entity"
	"nepse-stock-scryper/internal/ingestion/config"
	"nepse-stock-scryper/internal/ingestion/dto"
	"nepse-stock-scryper/internal/ingestion/normalizer"
	"nepse-stock-scryper/internal/ingestion/repository"
	"nepse-stock-scryper/internal/ingestion/runlog"
	"nepse-stock-scryper/pkg/logger"
	"nepse-stock-scryper/pkg/telegram"
	"nepse-stock-scryper/pkg/utils"
)

// Ingestion sources recorded in run summaries.
const (
	SourceAPI     = "api"
	SourceProcess = "process"
	SourceHTTP    = "http"
	SourceBrowser = "browser"
)

// IngestionResult is the outcome of one ingestion run.
type IngestionResult struct {
	Outcome  Outcome
	Response dto.IngestionResponse
}

// IngestionService reconciles scraped rows into the company directory and daily market data.
type IngestionService interface {
	Ingest(ctx context.Context, source string, rows []dto.ScrapedRow) (*IngestionResult, error)
	RecentRuns(ctx context.Context, limit int) ([]dto.RunSummary, error)
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(
	resolver CompanyResolver,
	reconciler MarketDataReconciler,
	runLog runlog.Log,
	publisher repository.OutcomePublisher,
	notifier telegram.Notifier,
	cfg config.Ingestion,
	logger *logger.Logger,
) IngestionService {
	return &ingestionService{
		resolver:   resolver,
		reconciler: reconciler,
		runLog:     runLog,
		publisher:  publisher,
		notifier:   notifier,
		cfg:        cfg,
		location:   utils.LoadLocation(cfg.TimeZone),
		logger:     logger,
		now:        time.Now,
	}
}

type ingestionService struct {
	resolver   CompanyResolver
	reconciler MarketDataReconciler
	runLog     runlog.Log
	publisher  repository.OutcomePublisher
	notifier   telegram.Notifier
	cfg        config.Ingestion
	location   *time.Location
	logger     *logger.Logger
	now        func() time.Time
}

type resolvedRow struct {
	index int
	row   dto.ScrapedRow
	res   Resolution
	err   error
}

// Ingest runs the resolve-then-upsert pipeline over rows. Row failures are
// tallied in the result; only an empty input is returned as an error.
func (s *ingestionService) Ingest(ctx context.Context, source string, rows []dto.ScrapedRow) (*IngestionResult, error) {
	if len(rows) == 0 {
		return nil, newError(KindInvalidInput, "ingest", ErrEmptyInput)
	}
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	startedAt := s.now()
	tradeDate := utils.DateOf(startedAt, s.location)

	var counts dto.IngestionCounts
	var errs []string
	counts.RawDataEntries = len(rows)

	unique := make([]*resolvedRow, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for i, row := range rows {
		symbol := normalizer.NormalizeSymbol(row.CompanySymbol)
		if symbol == "" {
			counts.CompaniesFailedOperations++
			errs = append(errs, fmt.Sprintf("Row %d: %v", i+1, ErrBlankSymbol))
			continue
		}
		if _, dup := seen[symbol]; dup {
			counts.DuplicateRowsSkipped++
			continue
		}
		seen[symbol] = struct{}{}
		row.CompanySymbol = symbol
		unique = append(unique, &resolvedRow{index: i, row: row})
	}

	s.resolveAll(ctx, unique)

	var defensive int
	candidates := make([]Candidate, 0, len(unique))
	for _, r := range unique {
		if r.err != nil {
			if KindOf(r.err) == KindMarketDataWriteFailure {
				counts.MarketDataFailedOperations++
				defensive++
			} else {
				counts.CompaniesFailedOperations++
			}
			errs = append(errs, fmt.Sprintf("%s: %v", r.row.CompanySymbol, r.err))
			continue
		}
		if r.res.Created {
			counts.CompaniesNewlyCreated++
		}
		candidates = append(candidates, Candidate{
			Symbol: r.row.CompanySymbol,
			Record: buildRecord(r.res.CompanyID, r.row, tradeDate, startedAt),
		})
	}

	counts.MarketDataEntriesForUpsert = len(candidates)
	if len(candidates) > 0 {
		rec := s.reconciler.Reconcile(ctx, candidates)
		counts.MarketDataSuccessfullyUpserted = rec.Upserted
		counts.MarketDataFailedOperations += rec.Failed
		errs = append(errs, rec.Errors...)
	}

	outcome := decideOutcome(counts, defensive)
	result := &IngestionResult{
		Outcome: outcome,
		Response: dto.IngestionResponse{
			Message:   outcome.Message(),
			TradeDate: tradeDate.Format(time.DateOnly),
			Counts:    counts,
			Errors:    errs,
		},
	}

	s.logger.Info("Ingestion run finished",
		logger.StringField("source", source),
		logger.StringField("outcome", outcome.String()),
		logger.Field("counts", counts),
		logger.IntField("errors", len(errs)),
	)

	s.record(ctx, dto.RunSummary{
		ID:         uuid.NewString(),
		Source:     source,
		Outcome:    outcome.String(),
		StatusCode: outcome.HTTPStatus(),
		TradeDate:  result.Response.TradeDate,
		Message:    result.Response.Message,
		Counts:     counts,
		Errors:     errs,
		StartedAt:  startedAt,
		FinishedAt: s.now(),
	})

	return result, nil
}

// resolveAll fills in each row's resolution. Symbols are already unique, so
// concurrent resolution never races on the same symbol within a run.
func (s *ingestionService) resolveAll(ctx context.Context, rows []*resolvedRow) {
	if s.cfg.ResolveConcurrency <= 1 {
		for _, r := range rows {
			r.res, r.err = s.resolver.Resolve(ctx, r.row.CompanySymbol)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.ResolveConcurrency)
	for _, r := range rows {
		g.Go(func() error {
			r.res, r.err = s.resolver.Resolve(ctx, r.row.CompanySymbol)
			return nil
		})
	}
	_ = g.Wait()
}

// record fans the summary out to the run log, the outcome stream and Telegram.
// None of these can fail the run.
func (s *ingestionService) record(ctx context.Context, summary dto.RunSummary) {
	ctx = context.WithoutCancel(ctx)

	if err := s.runLog.Append(ctx, summary); err != nil {
		s.logger.Warn("Failed to append run log", logger.ErrorField(err))
	}
	if err := s.publisher.Publish(ctx, summary); err != nil {
		s.logger.Warn("Failed to publish ingestion outcome", logger.ErrorField(err))
	}
	if summary.Outcome != OutcomeSuccess.String() {
		if err := s.notifier.SendMessage(telegram.FormatRunSummaryForTelegram(summary)); err != nil {
			s.logger.Warn("Failed to send telegram notification", logger.ErrorField(err))
		}
	}
}

// RecentRuns returns the newest run summaries first.
func (s *ingestionService) RecentRuns(ctx context.Context, limit int) ([]dto.RunSummary, error) {
	return s.runLog.Recent(ctx, limit)
}

func buildRecord(companyID string, row dto.ScrapedRow, tradeDate, scrapedAt time.Time) entity.DailyMarketData {
	y, m, d := tradeDate.Date()
	return entity.DailyMarketData{
		CompanyID:          companyID,
		TradeDate:          datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)),
		OpenPrice:          normalizer.ParseDecimalOrNull(row.OpenPrice),
		HighPrice:          normalizer.ParseDecimalOrNull(row.HighPrice),
		LowPrice:           normalizer.ParseDecimalOrNull(row.LowPrice),
		ClosePrice:         normalizer.ParseDecimalOrNull(row.LTP),
		Volume:             normalizer.ParseIntegerOrNull(row.QtyTraded),
		Turnover:           normalizer.ParseDecimalOrNull(row.Turnover),
		PreviousClosePrice: normalizer.ParseDecimalOrNull(row.PrevClosing),
		PriceChange:        normalizer.ParseDecimalOrNull(row.DifferenceRs),
		PercentChange:      normalizer.ParsePercentOrNull(row.ChangePercent),
		ScrapedAt:          &scrapedAt,
	}
}
