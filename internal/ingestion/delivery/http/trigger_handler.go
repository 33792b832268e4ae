package http

import (
	"github.com/labstack/echo/v4"

	"nepse-stock-scryper/internal/ingestion/service"
	"nepse-stock-scryper/pkg/common"
	"nepse-stock-scryper/pkg/logger"
)

// TriggerHandler handles HTTP requests for the external scraper process.
type TriggerHandler struct {
	triggerService service.TriggerService
	ingestURL      string
	logger         *logger.Logger
}

// NewTriggerHandler creates a new TriggerHandler. An empty ingestURL posts back to
// this server's own ingestion endpoint.
func NewTriggerHandler(triggerService service.TriggerService, ingestURL string, logger *logger.Logger) *TriggerHandler {
	return &TriggerHandler{triggerService: triggerService, ingestURL: ingestURL, logger: logger}
}

// RegisterRoutes registers the trigger routes to the Echo group.
func (h *TriggerHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/today-price", h.TriggerTodayPrice)
}

// TriggerTodayPrice godoc
// @Summary Run the external scraper and store its rows
// @Description Runs the configured scraper command, then posts its rows to the ingestion endpoint and relays that endpoint's status.
// @Tags scrape
// @Produce  json
// @Success 200 {object} dto.TriggerResponse
// @Success 207 {object} dto.TriggerResponse
// @Failure 429 {object} dto.TriggerResponse
// @Failure 500 {object} dto.TriggerResponse
// @Failure 502 {object} dto.TriggerResponse
// @Failure 503 {object} dto.TriggerResponse
// @Router /scrape-via-process/today-price [get]
func (h *TriggerHandler) TriggerTodayPrice(c echo.Context) error {
	ingestURL := h.ingestURL
	if ingestURL == "" {
		ingestURL = c.Scheme() + "://" + c.Request().Host + common.IngestPath
	}

	result := h.triggerService.Trigger(c.Request().Context(), ingestURL)
	if result.StatusCode >= 400 {
		h.logger.Warn("Process trigger failed",
			logger.IntField("status", result.StatusCode),
			logger.StringField("error", result.Body.Error),
			logger.StringField("error_kind", result.Body.ErrorKind),
		)
	}
	return c.JSON(result.StatusCode, result.Body)
}
