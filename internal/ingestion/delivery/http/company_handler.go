package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"nepse-stock-scryper/internal/ingestion/dto"
	"nepse-stock-scryper/internal/ingestion/service"
	"nepse-stock-scryper/pkg/logger"
)

// CompanyHandler handles HTTP requests for companies and their market data.
type CompanyHandler struct {
	marketDataService service.MarketDataService
	logger            *logger.Logger
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(marketDataService service.MarketDataService, logger *logger.Logger) *CompanyHandler {
	return &CompanyHandler{marketDataService: marketDataService, logger: logger}
}

// RegisterRoutes registers the company routes to the Echo group.
func (h *CompanyHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListCompanies)
	g.GET("/:symbol", h.GetCompanyProfile)
	g.GET("/:symbol/market-data", h.GetMarketData)
}

// ListCompanies godoc
// @Summary List companies
// @Description List companies for symbol search
// @Tags companies
// @Produce  json
// @Param   active  query  bool  false  "Only active companies"
// @Success 200 {array} dto.CompanySearchItem
// @Failure 500 {object} dto.ErrorResponse
// @Router /companies [get]
func (h *CompanyHandler) ListCompanies(c echo.Context) error {
	activeOnly, _ := strconv.ParseBool(c.QueryParam("active"))
	items, err := h.marketDataService.ListCompanies(c.Request().Context(), activeOnly)
	if err != nil {
		h.logger.Error("Failed to list companies", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list companies"})
	}
	return c.JSON(http.StatusOK, items)
}

// GetCompanyProfile godoc
// @Summary Get a company profile
// @Description Get a company and its most recent market-data row
// @Tags companies
// @Produce  json
// @Param   symbol  path  string  true  "Ticker symbol"
// @Success 200 {object} dto.CompanyProfileResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /companies/{symbol} [get]
func (h *CompanyHandler) GetCompanyProfile(c echo.Context) error {
	profile, err := h.marketDataService.GetCompanyProfile(c.Request().Context(), c.Param("symbol"))
	if err != nil {
		return writeError(c, err, "Failed to get company")
	}
	return c.JSON(http.StatusOK, profile)
}

// GetMarketData godoc
// @Summary Get daily market data
// @Description Get a company's daily market data, newest first
// @Tags companies
// @Produce  json
// @Param   symbol  path   string  true   "Ticker symbol"
// @Param   limit   query  int     false  "Number of days (max 365)"  default(30)
// @Success 200 {array} dto.MarketDataResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /companies/{symbol}/market-data [get]
func (h *CompanyHandler) GetMarketData(c echo.Context) error {
	limit := service.DefaultMarketDataLimit
	if v := c.QueryParam("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid limit"})
		}
		limit = parsed
	}

	rows, err := h.marketDataService.GetMarketData(c.Request().Context(), c.Param("symbol"), limit)
	if err != nil {
		return writeError(c, err, "Failed to get market data")
	}
	return c.JSON(http.StatusOK, rows)
}
