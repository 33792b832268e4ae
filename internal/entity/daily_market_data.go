package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DailyMarketData is one company's trading summary for one calendar day.
// (company_id, trade_date) is unique.
type DailyMarketData struct {
	ID                 string              `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID          string              `gorm:"type:uuid;not null;uniqueIndex:uq_daily_market_data_company_date" json:"company_id"`
	TradeDate          datatypes.Date      `gorm:"not null;uniqueIndex:uq_daily_market_data_company_date" json:"trade_date"`
	OpenPrice          decimal.NullDecimal `gorm:"type:numeric(18,4)" json:"open_price"`
	HighPrice          decimal.NullDecimal `gorm:"type:numeric(18,4)" json:"high_price"`
	LowPrice           decimal.NullDecimal `gorm:"type:numeric(18,4)" json:"low_price"`
	ClosePrice         decimal.NullDecimal `gorm:"type:numeric(18,4)" json:"close_price"`
	AdjustedClosePrice decimal.NullDecimal `gorm:"type:numeric(18,4)" json:"adjusted_close_price"`
	Volume             *int64              `json:"volume"`
	Turnover           decimal.NullDecimal `gorm:"type:numeric(20,2)" json:"turnover"`
	MarketCap          decimal.NullDecimal `gorm:"type:numeric(24,2)" json:"market_cap"`
	PreviousClosePrice decimal.NullDecimal `gorm:"type:numeric(18,4)" json:"previous_close_price"`
	PriceChange        decimal.NullDecimal `gorm:"type:numeric(18,4)" json:"price_change"`
	PercentChange      decimal.NullDecimal `gorm:"type:numeric(10,4)" json:"percent_change"`
	FiftyTwoWeekHigh   decimal.NullDecimal `gorm:"type:numeric(18,4)" json:"fifty_two_week_high"`
	FiftyTwoWeekLow    decimal.NullDecimal `gorm:"type:numeric(18,4)" json:"fifty_two_week_low"`
	ScrapedAt          *time.Time          `json:"scraped_at,omitempty"`
	CreatedAt          time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the DailyMarketData model.
func (DailyMarketData) TableName() string {
	return "daily_market_data"
}

// BeforeCreate assigns a UUID when the caller did not.
func (d *DailyMarketData) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
