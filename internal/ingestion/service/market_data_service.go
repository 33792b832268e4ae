package service

import (
	"context"
	"errors"
	"time"

	"nepse-stock-scryper/internal/entity"
	"nepse-stock-scryper/internal/ingestion/dto"
	"nepse-stock-scryper/internal/ingestion/normalizer"
	"nepse-stock-scryper/internal/ingestion/repository"
	"nepse-stock-scryper/pkg/logger"
)

const (
	DefaultMarketDataLimit = 30
	MaxMarketDataLimit     = 365
)

// MarketDataService serves the stored companies and their daily rows.
type MarketDataService interface {
	ListCompanies(ctx context.Context, activeOnly bool) ([]dto.CompanySearchItem, error)
	GetCompanyProfile(ctx context.Context, symbol string) (*dto.CompanyProfileResponse, error)
	GetMarketData(ctx context.Context, symbol string, limit int) ([]dto.MarketDataResponse, error)
}

// NewMarketDataService creates a new market data service.
func NewMarketDataService(companyRepo repository.CompanyRepository, marketDataRepo repository.DailyMarketDataRepository, logger *logger.Logger) MarketDataService {
	return &marketDataService{
		companyRepo:    companyRepo,
		marketDataRepo: marketDataRepo,
		logger:         logger,
	}
}

type marketDataService struct {
	companyRepo    repository.CompanyRepository
	marketDataRepo repository.DailyMarketDataRepository
	logger         *logger.Logger
}

// ListCompanies returns the compact company list used for symbol search.
func (s *marketDataService) ListCompanies(ctx context.Context, activeOnly bool) ([]dto.CompanySearchItem, error) {
	companies, err := s.companyRepo.FindAll(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanySearchItem, len(companies))
	for i, c := range companies {
		items[i] = dto.CompanySearchItem{ID: c.ID, TickerSymbol: c.TickerSymbol, Name: c.Name}
	}
	return items, nil
}

// GetCompanyProfile returns the company and its latest row. The latest row is nil
// when nothing has been ingested for the company yet.
func (s *marketDataService) GetCompanyProfile(ctx context.Context, symbol string) (*dto.CompanyProfileResponse, error) {
	company, err := s.companyRepo.FindByTicker(ctx, normalizer.NormalizeSymbol(symbol))
	if err != nil {
		return nil, err
	}

	profile := &dto.CompanyProfileResponse{Company: mapToCompanyResponse(company)}
	latest, err := s.marketDataRepo.FindLatestByCompany(ctx, company.ID)
	switch {
	case err == nil:
		row := mapToMarketDataResponse(latest)
		profile.LatestData = &row
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, err
	}
	return profile, nil
}

// GetMarketData returns up to limit daily rows, newest first.
func (s *marketDataService) GetMarketData(ctx context.Context, symbol string, limit int) ([]dto.MarketDataResponse, error) {
	if limit <= 0 {
		limit = DefaultMarketDataLimit
	}
	if limit > MaxMarketDataLimit {
		limit = MaxMarketDataLimit
	}

	company, err := s.companyRepo.FindByTicker(ctx, normalizer.NormalizeSymbol(symbol))
	if err != nil {
		return nil, err
	}
	rows, err := s.marketDataRepo.FindByCompany(ctx, company.ID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]dto.MarketDataResponse, len(rows))
	for i := range rows {
		out[i] = mapToMarketDataResponse(&rows[i])
	}
	return out, nil
}

func mapToCompanyResponse(c *entity.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:           c.ID,
		TickerSymbol: c.TickerSymbol,
		Name:         c.Name,
		SectorName:   c.SectorName,
		Industry:     c.Industry,
		WebsiteURL:   c.WebsiteURL,
		IsActive:     c.IsActive,
		ScrapedAt:    c.ScrapedAt,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func mapToMarketDataResponse(d *entity.DailyMarketData) dto.MarketDataResponse {
	return dto.MarketDataResponse{
		TradeDate:          time.Time(d.TradeDate).Format(time.DateOnly),
		OpenPrice:          d.OpenPrice,
		HighPrice:          d.HighPrice,
		LowPrice:           d.LowPrice,
		ClosePrice:         d.ClosePrice,
		AdjustedClosePrice: d.AdjustedClosePrice,
		Volume:             d.Volume,
		Turnover:           d.Turnover,
		MarketCap:          d.MarketCap,
		PreviousClosePrice: d.PreviousClosePrice,
		PriceChange:        d.PriceChange,
		PercentChange:      d.PercentChange,
		FiftyTwoWeekHigh:   d.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:    d.FiftyTwoWeekLow,
		ScrapedAt:          d.ScrapedAt,
	}
}
