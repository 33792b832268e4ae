package service

import (
	"context"
	"fmt"

	"nepse-stock-scryper/internal/entity"
	"nepse-stock-scryper/internal/ingestion/config"
	"nepse-stock-scryper/internal/ingestion/repository"
	"nepse-stock-scryper/pkg/logger"
)

// Candidate is one market-data row ready to be written.
type Candidate struct {
	Symbol string
	Record entity.DailyMarketData
}

// ReconcileResult tallies one upsert pass.
type ReconcileResult struct {
	Upserted int
	Failed   int
	Errors   []string
}

// MarketDataReconciler writes candidates keyed on (company, trade date).
type MarketDataReconciler interface {
	Reconcile(ctx context.Context, candidates []Candidate) ReconcileResult
}

// NewMarketDataReconciler creates a reconciler for the given upsert mode ("batch" or "row").
func NewMarketDataReconciler(marketDataRepo repository.DailyMarketDataRepository, mode string, logger *logger.Logger) MarketDataReconciler {
	if mode != config.UpsertModeRow {
		mode = config.UpsertModeBatch
	}
	return &marketDataReconciler{
		marketDataRepo: marketDataRepo,
		mode:           mode,
		logger:         logger,
	}
}

type marketDataReconciler struct {
	marketDataRepo repository.DailyMarketDataRepository
	mode           string
	logger         *logger.Logger
}

func (r *marketDataReconciler) Reconcile(ctx context.Context, candidates []Candidate) ReconcileResult {
	if len(candidates) == 0 {
		return ReconcileResult{}
	}
	if r.mode == config.UpsertModeRow {
		return r.reconcileRows(ctx, candidates)
	}
	return r.reconcileBatch(ctx, candidates)
}

// reconcileBatch sends one statement. Failures are only known in aggregate.
func (r *marketDataReconciler) reconcileBatch(ctx context.Context, candidates []Candidate) ReconcileResult {
	records := make([]entity.DailyMarketData, len(candidates))
	for i, c := range candidates {
		records[i] = c.Record
	}

	total := len(records)
	affected, err := r.marketDataRepo.UpsertBatch(ctx, records)
	upserted := clamp(int(affected), 0, total)

	var result ReconcileResult
	if err != nil {
		r.logger.Error("Market data batch upsert failed", logger.ErrorField(err), logger.IntField("batch_size", total))
		result.Upserted = upserted
		result.Failed = total - upserted
		result.Errors = append(result.Errors, fmt.Sprintf("Market data batch upsert failed: %v", err))
		return result
	}

	result.Upserted = upserted
	if upserted < total {
		result.Failed = total - upserted
		result.Errors = append(result.Errors, fmt.Sprintf("Market data upsert affected %d of %d rows; %d rows were not written", upserted, total, total-upserted))
		r.logger.Warn("Market data upsert shortfall", logger.IntField("affected", upserted), logger.IntField("batch_size", total))
	}
	return result
}

// reconcileRows writes each candidate separately so failures can be attributed to a symbol.
func (r *marketDataReconciler) reconcileRows(ctx context.Context, candidates []Candidate) ReconcileResult {
	var result ReconcileResult
	for i := range candidates {
		c := candidates[i]
		if err := r.marketDataRepo.Upsert(ctx, &c.Record); err != nil {
			r.logger.Error("Market data upsert failed", logger.ErrorField(err), logger.StringField("symbol", c.Symbol))
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", c.Symbol, err))
			continue
		}
		result.Upserted++
	}
	return result
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
