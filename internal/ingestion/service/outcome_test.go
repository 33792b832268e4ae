package service

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"nepse-stock-scryper/internal/ingestion/dto"
)

func TestDecideOutcome(t *testing.T) {
	tests := []struct {
		name      string
		counts    dto.IngestionCounts
		defensive int
		want      Outcome
	}{
		{
			name:   "no failures",
			counts: dto.IngestionCounts{RawDataEntries: 3, MarketDataEntriesForUpsert: 3, MarketDataSuccessfullyUpserted: 3},
			want:   OutcomeSuccess,
		},
		{
			name:   "one company failure out of three",
			counts: dto.IngestionCounts{RawDataEntries: 3, CompaniesFailedOperations: 1, MarketDataEntriesForUpsert: 2, MarketDataSuccessfullyUpserted: 2},
			want:   OutcomePartial,
		},
		{
			name:   "whole batch rejected",
			counts: dto.IngestionCounts{RawDataEntries: 2, MarketDataEntriesForUpsert: 2, MarketDataFailedOperations: 2},
			want:   OutcomeFailure,
		},
		{
			name:   "every company failed",
			counts: dto.IngestionCounts{RawDataEntries: 2, CompaniesFailedOperations: 2},
			want:   OutcomeFailure,
		},
		{
			name:      "defensive failure next to a company failure",
			counts:    dto.IngestionCounts{RawDataEntries: 2, CompaniesFailedOperations: 1, MarketDataFailedOperations: 1},
			defensive: 1,
			want:      OutcomeFailure,
		},
		{
			name:   "partial shortfall",
			counts: dto.IngestionCounts{RawDataEntries: 4, MarketDataEntriesForUpsert: 4, MarketDataSuccessfullyUpserted: 3, MarketDataFailedOperations: 1},
			want:   OutcomePartial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decideOutcome(tt.counts, tt.defensive))
		})
	}
}

func TestOutcomeHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, OutcomeSuccess.HTTPStatus())
	assert.Equal(t, http.StatusMultiStatus, OutcomePartial.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, OutcomeFailure.HTTPStatus())
	assert.Equal(t, "partial", OutcomePartial.String())
}
