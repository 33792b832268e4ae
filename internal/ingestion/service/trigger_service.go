package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"nepse-stock-scryper/internal/ingestion/dto"
	"nepse-stock-scryper/internal/ingestion/source"
	"nepse-stock-scryper/pkg/common"
	"nepse-stock-scryper/pkg/logger"
	"nepse-stock-scryper/pkg/telegram"
	"nepse-stock-scryper/pkg/utils"
)

const (
	// maxStderrLen bounds the diagnostic stream echoed back to callers.
	maxStderrLen = 500
	// sampleSize is how many scraped rows are echoed when storing fails.
	sampleSize = 2
	// maxStorageResponseBytes bounds how much of the ingestion response is read.
	maxStorageResponseBytes = 5 << 20
)

// ProcessRunner runs the external scraper.
type ProcessRunner interface {
	Run(ctx context.Context) (*source.ProcessOutput, error)
	ParseDiagnostic(stderr string) *dto.ProcessDiagnostic
}

// TriggerResult is the status and body the trigger endpoint responds with.
type TriggerResult struct {
	StatusCode int
	Body       dto.TriggerResponse
}

// TriggerService runs the external scraper and forwards its rows to the ingestion endpoint.
type TriggerService interface {
	Trigger(ctx context.Context, ingestURL string) *TriggerResult
}

// NewTriggerService creates a new trigger service. A nil limiter disables rate limiting.
func NewTriggerService(runner ProcessRunner, client *http.Client, limiter *rate.Limiter, notifier telegram.Notifier, logger *logger.Logger) TriggerService {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &triggerService{
		runner:   runner,
		client:   client,
		limiter:  limiter,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

type triggerService struct {
	runner   ProcessRunner
	client   *http.Client
	limiter  *rate.Limiter
	notifier telegram.Notifier
	logger   *logger.Logger
	now      func() time.Time
}

// Trigger never returns an error: every failure is described in the result body.
func (s *triggerService) Trigger(ctx context.Context, ingestURL string) *TriggerResult {
	if s.limiter != nil && !s.limiter.Allow() {
		return &TriggerResult{
			StatusCode: http.StatusTooManyRequests,
			Body: dto.TriggerResponse{
				Error:     "A scrape was triggered too recently. Try again later.",
				ErrorKind: string(KindRateLimited),
			},
		}
	}

	out, err := s.runner.Run(ctx)
	if err != nil {
		result := s.processFailure(err)
		s.alert(string(result.Body.ErrorKind), result.Body.Error, result.Body.ProcessStderr)
		return result
	}

	stderr := utils.Truncate(out.Stderr, maxStderrLen)
	if len(out.Rows) == 0 {
		return s.emptyResult(out.Stderr, stderr)
	}

	return s.forward(ctx, ingestURL, out.Rows, stderr)
}

func (s *triggerService) processFailure(err error) *TriggerResult {
	var exitErr *source.ExitError
	var decodeErr *source.DecodeError

	switch {
	case errors.Is(err, source.ErrCommandUnavailable):
		return &TriggerResult{
			StatusCode: http.StatusServiceUnavailable,
			Body: dto.TriggerResponse{
				Error:     "Failed to start the scraper process.",
				ErrorKind: string(KindSourceUnavailable),
				Details:   err.Error(),
			},
		}
	case errors.As(err, &exitErr):
		body := dto.TriggerResponse{
			Error:         fmt.Sprintf("Scraper process exited with code %d.", exitErr.ExitCode),
			ErrorKind:     string(KindProcessFailed),
			Details:       exitErr.Err.Error(),
			ProcessStderr: utils.Truncate(exitErr.Stderr, maxStderrLen),
		}
		if d := exitErr.Diagnostic; d != nil {
			body.Error = d.Error
			switch {
			case d.Details != nil:
				body.Details = d.Details
			case d.Message != "":
				body.Details = d.Message
			}
		}
		return &TriggerResult{StatusCode: http.StatusBadGateway, Body: body}
	case errors.As(err, &decodeErr):
		return &TriggerResult{
			StatusCode: http.StatusBadGateway,
			Body: dto.TriggerResponse{
				Error:         "Scraper output was not a valid JSON array of rows.",
				ErrorKind:     string(KindMalformedUpstreamPayload),
				Details:       decodeErr.Err.Error(),
				ProcessStderr: utils.Truncate(decodeErr.Stderr, maxStderrLen),
			},
		}
	default:
		return &TriggerResult{
			StatusCode: http.StatusInternalServerError,
			Body: dto.TriggerResponse{
				Error:   "An unexpected error occurred in the process trigger.",
				Details: err.Error(),
			},
		}
	}
}

func (s *triggerService) emptyResult(fullStderr, stderr string) *TriggerResult {
	if fullStderr == "" {
		return &TriggerResult{
			StatusCode: http.StatusOK,
			Body:       dto.TriggerResponse{Message: "Scraper executed successfully but found no data to scrape."},
		}
	}
	if d := s.runner.ParseDiagnostic(fullStderr); d != nil {
		return &TriggerResult{
			StatusCode: http.StatusOK,
			Body: dto.TriggerResponse{
				Message:       "Scraper reported an issue.",
				Details:       d,
				ProcessStderr: stderr,
			},
		}
	}
	return &TriggerResult{
		StatusCode: http.StatusOK,
		Body: dto.TriggerResponse{
			Message:       "Scraper returned no data, potentially with errors (check server logs for stderr).",
			ProcessStderr: stderr,
		},
	}
}

func (s *triggerService) forward(ctx context.Context, ingestURL string, rows []dto.ScrapedRow, stderr string) *TriggerResult {
	sample := rows
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}
	unreachable := func(err error) *TriggerResult {
		s.logger.Error("Failed to reach ingestion API", logger.ErrorField(err), logger.StringField("url", ingestURL))
		s.alert(string(KindMarketDataWriteFailure), "Ingestion API unreachable", err.Error())
		return &TriggerResult{
			StatusCode: http.StatusBadGateway,
			Body: dto.TriggerResponse{
				Error:          "Data scraped, but the ingestion API could not be reached.",
				ErrorKind:      string(KindMarketDataWriteFailure),
				Details:        err.Error(),
				RecordsScraped: len(rows),
				Sample:         sample,
				ProcessStderr:  stderr,
			},
		}
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return unreachable(fmt.Errorf("failed to marshal rows: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ingestURL, bytes.NewReader(payload))
	if err != nil {
		return unreachable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.HeaderIngestionSource, SourceProcess)

	resp, err := s.client.Do(req)
	if err != nil {
		return unreachable(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxStorageResponseBytes))
	if err != nil {
		return unreachable(fmt.Errorf("failed to read ingestion response: %w", err))
	}
	storageResponse := asJSON(raw)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		s.logger.Info("Scraped rows sent for storage",
			logger.IntField("rows", len(rows)),
			logger.IntField("storage_status", resp.StatusCode),
		)
		return &TriggerResult{
			StatusCode: resp.StatusCode,
			Body: dto.TriggerResponse{
				Message:            "Data successfully scraped and sent for storage.",
				StorageAPIResponse: storageResponse,
				RecordsScraped:     len(rows),
				ProcessStderr:      stderr,
			},
		}
	}

	details := fmt.Sprintf("Storing API responded with status %d", resp.StatusCode)
	var storageErr dto.ErrorResponse
	if json.Unmarshal(raw, &storageErr) == nil && storageErr.Error != "" {
		details = storageErr.Error
	}
	s.logger.Error("Ingestion API rejected scraped rows",
		logger.IntField("storage_status", resp.StatusCode),
		logger.StringField("details", details),
	)
	return &TriggerResult{
		StatusCode: resp.StatusCode,
		Body: dto.TriggerResponse{
			Error:              "Data scraped, but failed to store it.",
			ErrorKind:          string(KindMarketDataWriteFailure),
			Details:            details,
			RecordsScraped:     len(rows),
			Sample:             sample,
			ProcessStderr:      stderr,
			StorageAPIResponse: storageResponse,
		},
	}
}

func (s *triggerService) alert(kind, message, data string) {
	if err := s.notifier.SendMessage(telegram.FormatErrorAlertMessage(s.now(), kind, message, data)); err != nil {
		s.logger.Warn("Failed to send telegram notification", logger.ErrorField(err))
	}
}

// asJSON returns raw when it is valid JSON, otherwise raw quoted as a JSON string.
func asJSON(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(string(trimmed))
	return quoted
}
