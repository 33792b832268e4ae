package service

import (
	"net/http"

	"nepse-stock-scryper/internal/ingestion/dto"
)

// Outcome is the tri-state result of an ingestion run.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomePartial
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomePartial:
		return "partial"
	default:
		return "failure"
	}
}

// HTTPStatus maps the outcome to the status returned by the ingestion endpoint.
func (o Outcome) HTTPStatus() int {
	switch o {
	case OutcomeSuccess:
		return http.StatusOK
	case OutcomePartial:
		return http.StatusMultiStatus
	default:
		return http.StatusInternalServerError
	}
}

// Message is the human-readable summary for the outcome.
func (o Outcome) Message() string {
	switch o {
	case OutcomeSuccess:
		return "Data processing completed successfully."
	case OutcomePartial:
		return "Data processing completed with some errors."
	default:
		return "Data processing failed."
	}
}

// decideOutcome applies the aggregation rule. defensive is the number of rows
// that passed company resolution without an id; they are part of
// MarketDataFailedOperations but were never sent to the store.
func decideOutcome(c dto.IngestionCounts, defensive int) Outcome {
	failures := c.CompaniesFailedOperations + c.MarketDataFailedOperations
	if failures == 0 {
		return OutcomeSuccess
	}
	attempted := c.CompaniesFailedOperations + defensive + c.MarketDataEntriesForUpsert
	if c.RawDataEntries > 0 && attempted > 0 && failures >= attempted {
		return OutcomeFailure
	}
	return OutcomePartial
}
