package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// IngestionCounts tallies one ingestion run.
type IngestionCounts struct {
	RawDataEntries                 int `json:"rawDataEntries"`
	CompaniesNewlyCreated          int `json:"companiesNewlyCreated"`
	MarketDataEntriesForUpsert     int `json:"marketDataEntriesForUpsert"`
	MarketDataSuccessfullyUpserted int `json:"marketDataSuccessfullyUpserted"`
	CompaniesFailedOperations      int `json:"companiesFailedOperations"`
	MarketDataFailedOperations     int `json:"marketDataFailedOperations"`
	DuplicateRowsSkipped           int `json:"duplicateRowsSkipped,omitempty"`
}

// IngestionResponse is the body returned by the ingestion entry point.
type IngestionResponse struct {
	Message   string          `json:"message"`
	TradeDate string          `json:"tradeDate,omitempty"`
	Counts    IngestionCounts `json:"counts"`
	Errors    []string        `json:"errors,omitempty"`
}

// NormalizedRow is a scraped row after field normalization, used by dry runs.
type NormalizedRow struct {
	CompanySymbol string              `json:"companySymbol"`
	LTP           decimal.NullDecimal `json:"ltp"`
	Change        decimal.NullDecimal `json:"change"`
	ChangePercent decimal.NullDecimal `json:"changePercent"`
	OpenPrice     decimal.NullDecimal `json:"openPrice"`
	HighPrice     decimal.NullDecimal `json:"highPrice"`
	LowPrice      decimal.NullDecimal `json:"lowPrice"`
	QtyTraded     *int64              `json:"qtyTraded"`
	Turnover      decimal.NullDecimal `json:"turnover"`
	PrevClosing   decimal.NullDecimal `json:"prevClosing"`
}

// DryRunResponse is returned when a page is scraped without storing anything.
type DryRunResponse struct {
	Message   string          `json:"message"`
	Source    string          `json:"source"`
	Count     int             `json:"count"`
	Data      []NormalizedRow `json:"data"`
	ScrapedAt time.Time       `json:"scrapedAt"`
}

// ScrapeRequest holds the query parameters of an in-process scrape.
type ScrapeRequest struct {
	Source string `query:"source" validate:"omitempty,oneof=http browser"`
	DryRun bool   `query:"dry_run"`
}
