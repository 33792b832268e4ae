package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nepse-stock-scryper/internal/entity"
)

// CompanyRepository defines the interface for company directory operations.
type CompanyRepository interface {
	FindByTicker(ctx context.Context, ticker string) (*entity.Company, error)
	// CreateIfAbsent inserts the company unless its ticker already exists and
	// fills company with the stored row either way. created is true only when
	// this call inserted it.
	CreateIfAbsent(ctx context.Context, company *entity.Company) (created bool, err error)
	FindAll(ctx context.Context, activeOnly bool) ([]entity.Company, error)
}

// NewCompanyRepository creates a new GORM-based company repository.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

type companyRepository struct {
	db *gorm.DB
}

// FindByTicker retrieves a company by its ticker symbol.
func (r *companyRepository) FindByTicker(ctx context.Context, ticker string) (*entity.Company, error) {
	var company entity.Company
	err := r.db.WithContext(ctx).Where("ticker_symbol = ?", ticker).First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &company, nil
}

// CreateIfAbsent inserts with ON CONFLICT DO NOTHING, then re-reads on conflict.
func (r *companyRepository) CreateIfAbsent(ctx context.Context, company *entity.Company) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticker_symbol"}},
			DoNothing: true,
		}).
		Create(company)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	existing, err := r.FindByTicker(ctx, company.TickerSymbol)
	if err != nil {
		return false, err
	}
	*company = *existing
	return false, nil
}

// FindAll retrieves companies ordered by ticker.
func (r *companyRepository) FindAll(ctx context.Context, activeOnly bool) ([]entity.Company, error) {
	var companies []entity.Company
	query := r.db.WithContext(ctx).Order("ticker_symbol ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}
