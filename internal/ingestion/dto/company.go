package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompanySearchItem is the compact company shape used for symbol search.
type CompanySearchItem struct {
	ID           string `json:"id"`
	TickerSymbol string `json:"ticker_symbol"`
	Name         string `json:"name"`
}

// CompanyResponse describes a company.
type CompanyResponse struct {
	ID           string     `json:"id"`
	TickerSymbol string     `json:"ticker_symbol"`
	Name         string     `json:"name"`
	SectorName   *string    `json:"sector_name,omitempty"`
	Industry     *string    `json:"industry,omitempty"`
	WebsiteURL   *string    `json:"website_url,omitempty"`
	IsActive     bool       `json:"is_active"`
	ScrapedAt    *time.Time `json:"scraped_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// MarketDataResponse describes one daily market-data row.
type MarketDataResponse struct {
	TradeDate          string              `json:"trade_date"`
	OpenPrice          decimal.NullDecimal `json:"open_price"`
	HighPrice          decimal.NullDecimal `json:"high_price"`
	LowPrice           decimal.NullDecimal `json:"low_price"`
	ClosePrice         decimal.NullDecimal `json:"close_price"`
	AdjustedClosePrice decimal.NullDecimal `json:"adjusted_close_price"`
	Volume             *int64              `json:"volume"`
	Turnover           decimal.NullDecimal `json:"turnover"`
	MarketCap          decimal.NullDecimal `json:"market_cap"`
	PreviousClosePrice decimal.NullDecimal `json:"previous_close_price"`
	PriceChange        decimal.NullDecimal `json:"price_change"`
	PercentChange      decimal.NullDecimal `json:"percent_change"`
	FiftyTwoWeekHigh   decimal.NullDecimal `json:"fifty_two_week_high"`
	FiftyTwoWeekLow    decimal.NullDecimal `json:"fifty_two_week_low"`
	ScrapedAt          *time.Time          `json:"scraped_at,omitempty"`
}

// CompanyProfileResponse is a company with its most recent trading day.
type CompanyProfileResponse struct {
	Company    CompanyResponse     `json:"company"`
	LatestData *MarketDataResponse `json:"latest_market_data"`
}
