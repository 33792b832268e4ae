package dto

import "time"

// RunSummary records one ingestion run. It is appended to the run log and
// published on the ingestion.completed stream.
type RunSummary struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	Outcome    string          `json:"outcome"`
	StatusCode int             `json:"statusCode"`
	TradeDate  string          `json:"tradeDate,omitempty"`
	Message    string          `json:"message"`
	Counts     IngestionCounts `json:"counts"`
	Errors     []string        `json:"errors,omitempty"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt"`
}
