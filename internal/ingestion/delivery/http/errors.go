package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"nepse-stock-scryper/internal/ingestion/dto"
	"nepse-stock-scryper/internal/ingestion/repository"
	"nepse-stock-scryper/internal/ingestion/service"
)

func statusForKind(kind service.ErrorKind) int {
	switch kind {
	case service.KindInvalidInput:
		return http.StatusBadRequest
	case service.KindParseFailure:
		return http.StatusUnprocessableEntity
	case service.KindSourceUnavailable, service.KindMalformedUpstreamPayload, service.KindProcessFailed:
		return http.StatusBadGateway
	case service.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps classified errors to their status and everything else to a generic 500.
func writeError(c echo.Context, err error, unexpected string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Company not found"})
	}
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		return c.JSON(statusForKind(svcErr.Kind), echo.Map{
			"error":     svcErr.Err.Error(),
			"errorKind": svcErr.Kind,
		})
	}
	return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: unexpected, Details: err.Error()})
}
