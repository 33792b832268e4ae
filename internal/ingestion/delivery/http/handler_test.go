package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nepse-stock-scryper/internal/ingestion/dto"
	"nepse-stock-scryper/internal/ingestion/repository"
	"nepse-stock-scryper/internal/ingestion/scraper"
	"nepse-stock-scryper/internal/ingestion/service"
	"nepse-stock-scryper/pkg/common"
	"nepse-stock-scryper/pkg/logger"
)

type fakeIngestionService struct {
	calls   int
	source  string
	rows    []dto.ScrapedRow
	outcome service.Outcome
	err     error
}

func (f *fakeIngestionService) Ingest(_ context.Context, source string, rows []dto.ScrapedRow) (*service.IngestionResult, error) {
	f.calls++
	f.source = source
	f.rows = rows
	if f.err != nil {
		return nil, f.err
	}
	return &service.IngestionResult{
		Outcome: f.outcome,
		Response: dto.IngestionResponse{
			Message: f.outcome.Message(),
			Counts:  dto.IngestionCounts{RawDataEntries: len(rows)},
		},
	}, nil
}

func (f *fakeIngestionService) RecentRuns(context.Context, int) ([]dto.RunSummary, error) {
	return []dto.RunSummary{{ID: "run-1", Outcome: "success"}}, nil
}

type fakeScrapeService struct {
	err    error
	source string
}

func (f *fakeScrapeService) Scrape(context.Context, string) ([]dto.ScrapedRow, error) {
	return nil, f.err
}

func (f *fakeScrapeService) DryRun(_ context.Context, source string) (*dto.DryRunResponse, error) {
	f.source = source
	if f.err != nil {
		return nil, f.err
	}
	return &dto.DryRunResponse{Message: "dry", Source: source, Count: 1}, nil
}

func (f *fakeScrapeService) ScrapeAndIngest(_ context.Context, source string) (*service.IngestionResult, error) {
	f.source = source
	if f.err != nil {
		return nil, f.err
	}
	return &service.IngestionResult{Outcome: service.OutcomePartial}, nil
}

type fakeTriggerService struct {
	ingestURL string
	result    *service.TriggerResult
}

func (f *fakeTriggerService) Trigger(_ context.Context, ingestURL string) *service.TriggerResult {
	f.ingestURL = ingestURL
	return f.result
}

type fakeMarketDataService struct{}

func (fakeMarketDataService) ListCompanies(context.Context, bool) ([]dto.CompanySearchItem, error) {
	return []dto.CompanySearchItem{{ID: "1", TickerSymbol: "NABIL", Name: "Nabil Bank"}}, nil
}

func (fakeMarketDataService) GetCompanyProfile(_ context.Context, symbol string) (*dto.CompanyProfileResponse, error) {
	if symbol != "NABIL" {
		return nil, repository.ErrNotFound
	}
	return &dto.CompanyProfileResponse{Company: dto.CompanyResponse{TickerSymbol: "NABIL"}}, nil
}

func (fakeMarketDataService) GetMarketData(_ context.Context, _ string, limit int) ([]dto.MarketDataResponse, error) {
	return make([]dto.MarketDataResponse, limit), nil
}

type testServer struct {
	echo      *echo.Echo
	ingestion *fakeIngestionService
	scrape    *fakeScrapeService
	trigger   *fakeTriggerService
}

func newTestServer(ingestURL string) *testServer {
	s := &testServer{
		echo:      echo.New(),
		ingestion: &fakeIngestionService{},
		scrape:    &fakeScrapeService{},
		trigger:   &fakeTriggerService{result: &service.TriggerResult{StatusCode: http.StatusOK}},
	}
	s.echo.Validator = NewRequestValidator(validator.New())
	log := logger.NewNop()
	api := s.echo.Group("/api/v1")
	NewIngestionHandler(s.ingestion, s.scrape, log).RegisterRoutes(api.Group("/scrape"))
	NewTriggerHandler(s.trigger, ingestURL, log).RegisterRoutes(api.Group("/scrape-via-process"))
	NewCompanyHandler(fakeMarketDataService{}, log).RegisterRoutes(api.Group("/companies"))
	return s
}

func (s *testServer) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestIngestTodayPrice_RejectsNonArrayAndEmpty(t *testing.T) {
	s := newTestServer("")

	for _, body := range []string{``, `{"companySymbol":"NABIL"}`, `[]`, `"rows"`, `[{"companySymbol":1}]`} {
		rec := s.do(http.MethodPost, "/api/v1/scrape/today-price", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Error)
	}
	assert.Zero(t, s.ingestion.calls)
}

func TestIngestTodayPrice_NamesBadRow(t *testing.T) {
	s := newTestServer("")

	rec := s.do(http.MethodPost, "/api/v1/scrape/today-price", `[{"companySymbol":"NABIL","ltp":"1,000"},{"companySymbol":"HDL","ltp":123.4}]`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid request payload", resp.Error)
	assert.Contains(t, resp.Details, "row 2:")
	assert.Contains(t, resp.Details, "ltp")
	assert.Zero(t, s.ingestion.calls)
}

func TestIngestTodayPrice_MapsOutcomeToStatus(t *testing.T) {
	tests := []struct {
		outcome service.Outcome
		status  int
	}{
		{service.OutcomeSuccess, http.StatusOK},
		{service.OutcomePartial, http.StatusMultiStatus},
		{service.OutcomeFailure, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			s := newTestServer("")
			s.ingestion.outcome = tt.outcome

			rec := s.do(http.MethodPost, "/api/v1/scrape/today-price", `[{"companySymbol":"NABIL","ltp":"1,000"}]`)
			assert.Equal(t, tt.status, rec.Code)

			var resp dto.IngestionResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, 1, resp.Counts.RawDataEntries)
			assert.Equal(t, service.SourceAPI, s.ingestion.source)
			assert.Equal(t, "1,000", s.ingestion.rows[0].LTP)
		})
	}
}

func TestIngestTodayPrice_SourceHeader(t *testing.T) {
	s := newTestServer("")
	rec := s.do(http.MethodPost, "/api/v1/scrape/today-price", `[{"companySymbol":"NABIL"}]`, common.HeaderIngestionSource, "process")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "process", s.ingestion.source)
}

func TestIngestTodayPrice_UnexpectedError(t *testing.T) {
	s := newTestServer("")
	s.ingestion.err = errors.New("pool exhausted")

	rec := s.do(http.MethodPost, "/api/v1/scrape/today-price", `[{"companySymbol":"NABIL"}]`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "pool exhausted")
}

func TestScrapeTodayPrice(t *testing.T) {
	s := newTestServer("")

	rec := s.do(http.MethodGet, "/api/v1/scrape/today-price?dry_run=true&source=browser", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "browser", s.scrape.source)

	rec = s.do(http.MethodGet, "/api/v1/scrape/today-price", "")
	assert.Equal(t, http.StatusMultiStatus, rec.Code)
	assert.Equal(t, service.SourceHTTP, s.scrape.source)

	rec = s.do(http.MethodGet, "/api/v1/scrape/today-price?source=ftp", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScrapeTodayPrice_ErrorKinds(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{&service.Error{Kind: service.KindParseFailure, Op: "parse page", Err: scraper.ErrNoRowsFound}, http.StatusUnprocessableEntity},
		{&service.Error{Kind: service.KindSourceUnavailable, Op: "fetch page", Err: errors.New("timeout")}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		s := newTestServer("")
		s.scrape.err = tt.err
		rec := s.do(http.MethodGet, "/api/v1/scrape/today-price", "")
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
	}
}

func TestTriggerTodayPrice(t *testing.T) {
	s := newTestServer("")
	s.trigger.result = &service.TriggerResult{
		StatusCode: http.StatusServiceUnavailable,
		Body:       dto.TriggerResponse{Error: "Failed to start the scraper process.", ErrorKind: "source_unavailable"},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scrape-via-process/today-price", nil)
	req.Host = "ingest.local:8080"
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "http://ingest.local:8080/api/v1/scrape/today-price", s.trigger.ingestURL)

	var resp dto.TriggerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "source_unavailable", resp.ErrorKind)
}

func TestTriggerTodayPrice_ConfiguredIngestURL(t *testing.T) {
	s := newTestServer("http://ingestion:8080/api/v1/scrape/today-price")
	rec := s.do(http.MethodGet, "/api/v1/scrape-via-process/today-price", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://ingestion:8080/api/v1/scrape/today-price", s.trigger.ingestURL)
}

func TestCompanyRoutes(t *testing.T) {
	s := newTestServer("")

	rec := s.do(http.MethodGet, "/api/v1/companies?active=true", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "NABIL")

	rec = s.do(http.MethodGet, "/api/v1/companies/NABIL", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/companies/NOPE", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/companies/NABIL/market-data?limit=5", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var rows []dto.MarketDataResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	assert.Len(t, rows, 5)

	rec = s.do(http.MethodGet, "/api/v1/companies/NABIL/market-data?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRunLogs(t *testing.T) {
	s := newTestServer("")
	rec := s.do(http.MethodGet, "/api/v1/scrape/logs?limit=5", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "run-1")

	rec = s.do(http.MethodGet, "/api/v1/scrape/logs?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
