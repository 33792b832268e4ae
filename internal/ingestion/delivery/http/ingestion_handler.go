package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"nepse-stock-scryper/internal/ingestion/dto"
	"nepse-stock-scryper/internal/ingestion/service"
	"nepse-stock-scryper/pkg/common"
	"nepse-stock-scryper/pkg/logger"
)

// maxIngestBodyBytes bounds the size of a posted row array.
const maxIngestBodyBytes = 20 << 20

// IngestionHandler handles HTTP requests for scraping and ingestion.
type IngestionHandler struct {
	ingestionService service.IngestionService
	scrapeService    service.ScrapeService
	logger           *logger.Logger
}

// NewIngestionHandler creates a new IngestionHandler.
func NewIngestionHandler(ingestionService service.IngestionService, scrapeService service.ScrapeService, logger *logger.Logger) *IngestionHandler {
	return &IngestionHandler{ingestionService: ingestionService, scrapeService: scrapeService, logger: logger}
}

// RegisterRoutes registers the scrape routes to the Echo group.
func (h *IngestionHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/today-price", h.IngestTodayPrice)
	g.GET("/today-price", h.ScrapeTodayPrice)
	g.GET("/logs", h.GetRunLogs)
}

// IngestTodayPrice godoc
// @Summary Ingest scraped today's-price rows
// @Description Resolves each row's company (creating placeholders for unknown symbols) and upserts one market-data row per company for today. Responds 200 on full success, 207 on partial success and 500 when every row failed.
// @Tags scrape
// @Accept  json
// @Produce  json
// @Param   rows  body    []dto.ScrapedRow   true    "Scraped rows"
// @Success 200 {object} dto.IngestionResponse
// @Success 207 {object} dto.IngestionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.IngestionResponse
// @Router /scrape/today-price [post]
func (h *IngestionHandler) IngestTodayPrice(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxIngestBodyBytes))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Failed to read request body"})
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Request body must be a JSON array of scraped rows"})
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
	}
	rows := make([]dto.ScrapedRow, len(elems))
	for i, elem := range elems {
		if err := json.Unmarshal(elem, &rows[i]); err != nil {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Invalid request payload",
				Details: fmt.Sprintf("row %d: %v", i+1, err),
			})
		}
	}
	if len(rows) == 0 {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Request body must be a non-empty array of scraped rows"})
	}

	source := c.Request().Header.Get(common.HeaderIngestionSource)
	if source == "" {
		source = service.SourceAPI
	}

	result, err := h.ingestionService.Ingest(c.Request().Context(), source, rows)
	if err != nil {
		h.logger.Error("Failed to ingest scraped rows", logger.ErrorField(err))
		return writeError(c, err, "An unexpected error occurred during ingestion.")
	}
	return c.JSON(result.Outcome.HTTPStatus(), result.Response)
}

// ScrapeTodayPrice godoc
// @Summary Scrape today's prices in-process
// @Description Fetches the NEPSE today's-price page with the chosen source and ingests it, or only returns the normalized rows when dry_run is set.
// @Tags scrape
// @Produce  json
// @Param   source   query  string  false  "Page source: http or browser"  default(http)
// @Param   dry_run  query  bool    false  "Parse only, store nothing"
// @Success 200 {object} dto.IngestionResponse
// @Success 207 {object} dto.IngestionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /scrape/today-price [get]
func (h *IngestionHandler) ScrapeTodayPrice(c echo.Context) error {
	var req dto.ScrapeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid query parameters"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid query parameters", Details: err.Error()})
	}
	source := req.Source
	if source == "" {
		source = service.SourceHTTP
	}

	if req.DryRun {
		resp, err := h.scrapeService.DryRun(c.Request().Context(), source)
		if err != nil {
			return writeError(c, err, "Failed to scrape data.")
		}
		return c.JSON(http.StatusOK, resp)
	}

	result, err := h.scrapeService.ScrapeAndIngest(c.Request().Context(), source)
	if err != nil {
		return writeError(c, err, "Failed to scrape data.")
	}
	return c.JSON(result.Outcome.HTTPStatus(), result.Response)
}

// GetRunLogs godoc
// @Summary Get recent ingestion runs
// @Description Get the most recent ingestion run summaries, newest first
// @Tags scrape
// @Produce  json
// @Param   limit  query  int  false  "Maximum number of entries"  default(20)
// @Success 200 {array} dto.RunSummary
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /scrape/logs [get]
func (h *IngestionHandler) GetRunLogs(c echo.Context) error {
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid limit"})
		}
		limit = parsed
	}

	runs, err := h.ingestionService.RecentRuns(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to get run logs", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get run logs"})
	}
	return c.JSON(http.StatusOK, runs)
}
