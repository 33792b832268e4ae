package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"nepse-stock-scryper/internal/entity"
	"nepse-stock-scryper/internal/ingestion/normalizer"
	"nepse-stock-scryper/internal/ingestion/repository"
	"nepse-stock-scryper/pkg/logger"
)

// placeholderNameSuffix marks companies created from a price row, whose real name is unknown.
const placeholderNameSuffix = " (placeholder - needs name correction)"

// Resolution is the company a symbol resolved to.
type Resolution struct {
	CompanyID string
	Created   bool
}

// CompanyResolver maps a ticker symbol to a company id, creating the company if needed.
type CompanyResolver interface {
	Resolve(ctx context.Context, symbol string) (Resolution, error)
}

// NewCompanyResolver creates a resolver that caches symbol → id for ttl.
func NewCompanyResolver(companyRepo repository.CompanyRepository, ttl time.Duration, logger *logger.Logger) CompanyResolver {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &companyResolver{
		companyRepo: companyRepo,
		cache:       cache.New(ttl, 2*ttl),
		logger:      logger,
		now:         time.Now,
	}
}

type companyResolver struct {
	companyRepo repository.CompanyRepository
	cache       *cache.Cache
	logger      *logger.Logger
	now         func() time.Time
}

// Resolve returns an *Error of kind KindCompanyResolutionFailure when the lookup
// or creation fails, and KindMarketDataWriteFailure when no id came back.
func (r *companyResolver) Resolve(ctx context.Context, symbol string) (Resolution, error) {
	symbol = normalizer.NormalizeSymbol(symbol)
	if symbol == "" {
		return Resolution{}, newError(KindCompanyResolutionFailure, "resolve company", ErrBlankSymbol)
	}

	if id, ok := r.cache.Get(symbol); ok {
		return Resolution{CompanyID: id.(string)}, nil
	}

	var created bool
	company, err := r.companyRepo.FindByTicker(ctx, symbol)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		company, created, err = r.create(ctx, symbol)
		if err != nil {
			return Resolution{}, err
		}
	default:
		r.logger.Error("Failed to look up company", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return Resolution{}, newError(KindCompanyResolutionFailure, fmt.Sprintf("look up company %s", symbol), err)
	}

	if company == nil || company.ID == "" {
		return Resolution{}, newError(KindMarketDataWriteFailure, fmt.Sprintf("resolve company %s", symbol), ErrMissingCompanyID)
	}

	r.cache.SetDefault(symbol, company.ID)
	return Resolution{CompanyID: company.ID, Created: created}, nil
}

func (r *companyResolver) create(ctx context.Context, symbol string) (*entity.Company, bool, error) {
	scrapedAt := r.now()
	company := &entity.Company{
		TickerSymbol: symbol,
		Name:         symbol + placeholderNameSuffix,
		IsActive:     true,
		ScrapedAt:    &scrapedAt,
	}

	created, err := r.companyRepo.CreateIfAbsent(ctx, company)
	if err != nil {
		r.logger.Error("Failed to create company", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return nil, false, newError(KindCompanyResolutionFailure, fmt.Sprintf("create company %s", symbol), err)
	}
	if created {
		r.logger.Info("Created placeholder company", logger.StringField("symbol", symbol), logger.StringField("id", company.ID))
	}
	return company, created, nil
}
