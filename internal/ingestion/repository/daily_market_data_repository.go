package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nepse-stock-scryper/internal/entity"
)

// marketDataUpdateColumns are overwritten when a (company, day) row already exists.
// Market cap, the 52-week range and adjusted close are owned by other processes.
var marketDataUpdateColumns = []string{
	"open_price",
	"high_price",
	"low_price",
	"close_price",
	"volume",
	"turnover",
	"previous_close_price",
	"price_change",
	"percent_change",
	"scraped_at",
	"updated_at",
}

// DailyMarketDataRepository defines the interface for daily market data operations.
type DailyMarketDataRepository interface {
	UpsertBatch(ctx context.Context, rows []entity.DailyMarketData) (int64, error)
	Upsert(ctx context.Context, row *entity.DailyMarketData) error
	FindByCompany(ctx context.Context, companyID string, limit int) ([]entity.DailyMarketData, error)
	FindLatestByCompany(ctx context.Context, companyID string) (*entity.DailyMarketData, error)
}

// NewDailyMarketDataRepository creates a new GORM-based daily market data repository.
func NewDailyMarketDataRepository(db *gorm.DB) DailyMarketDataRepository {
	return &dailyMarketDataRepository{db: db}
}

type dailyMarketDataRepository struct {
	db *gorm.DB
}

func upsertClause() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}, {Name: "trade_date"}},
		DoUpdates: clause.AssignmentColumns(marketDataUpdateColumns),
	}
}

// UpsertBatch writes all rows in one statement and returns the affected row count.
func (r *dailyMarketDataRepository) UpsertBatch(ctx context.Context, rows []entity.DailyMarketData) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Clauses(upsertClause()).Create(&rows)
	return res.RowsAffected, res.Error
}

// Upsert writes a single row.
func (r *dailyMarketDataRepository) Upsert(ctx context.Context, row *entity.DailyMarketData) error {
	return r.db.WithContext(ctx).Clauses(upsertClause()).Create(row).Error
}

// FindByCompany returns a company's daily rows, newest first.
func (r *dailyMarketDataRepository) FindByCompany(ctx context.Context, companyID string, limit int) ([]entity.DailyMarketData, error) {
	var rows []entity.DailyMarketData
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("trade_date DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindLatestByCompany returns a company's most recent daily row.
func (r *dailyMarketDataRepository) FindLatestByCompany(ctx context.Context, companyID string) (*entity.DailyMarketData, error) {
	var row entity.DailyMarketData
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("trade_date DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}
