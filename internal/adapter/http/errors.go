package http

import (
	"errors"
	"net/http"

	domain "gccp-api/internal/domain/contract"
	"gccp-api/internal/usecase/contract"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// writeError maps use case errors onto status codes. Unknown errors are
// logged and reported without their cause.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	var verr *contract.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(verr),
		})
	case errors.Is(err, domain.ErrInvalidParams),
		errors.Is(err, domain.ErrInvalidDateFilter),
		errors.Is(err, domain.ErrMissingID):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrNoContracts),
		errors.Is(err, domain.ErrNoMatch):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrSummary):
		log.Error("summary failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: domain.ErrSummary.Error()})
	}
	log.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
