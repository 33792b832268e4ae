package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures so delivery layers can map them to responses.
type ErrorKind string

const (
	KindSourceUnavailable        ErrorKind = "source_unavailable"
	KindParseFailure             ErrorKind = "parse_failure"
	KindCompanyResolutionFailure ErrorKind = "company_resolution_failure"
	KindMarketDataWriteFailure   ErrorKind = "market_data_write_failure"
	KindMalformedUpstreamPayload ErrorKind = "malformed_upstream_payload"
	KindProcessFailed            ErrorKind = "process_failed"
	KindInvalidInput             ErrorKind = "invalid_input"
	KindRateLimited              ErrorKind = "rate_limited"
)

var (
	// ErrEmptyInput is returned when an ingestion request carries no rows.
	ErrEmptyInput = errors.New("request body must be a non-empty array of scraped rows")
	// ErrBlankSymbol is recorded for rows whose company symbol is empty.
	ErrBlankSymbol = errors.New("company symbol is missing")
	// ErrMissingCompanyID is recorded when resolution finished without an id.
	ErrMissingCompanyID = errors.New("company id could not be obtained")
	// ErrUnknownSource is returned for an unsupported in-process source name.
	ErrUnknownSource = errors.New("unknown scrape source")
)

// Error is a classified pipeline error.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
