package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"orders-service/internal/domain"
	"orders-service/internal/infra"
)

type errorResponse struct {
	Error  string   `json:"error"`
	Code   int      `json:"code"`
	Errors []string `json:"errors,omitempty"`
}

// statusFor maps a service error onto the HTTP status it is reported with.
func statusFor(err error) int {
	var (
		validationErr *domain.ValidationError
		inventoryErr  *domain.InventoryError
		transitionErr *domain.TransitionError
		cancelErr     *domain.CancellationError
		upstreamErr   *domain.UpstreamError
	)

	switch {
	case errors.As(err, &validationErr), errors.Is(err, domain.ErrCancelViaUpdate):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return http.StatusConflict
	case errors.As(err, &inventoryErr),
		errors.As(err, &transitionErr),
		errors.As(err, &cancelErr),
		errors.Is(err, domain.ErrNoChanges),
		errors.Is(err, domain.ErrAddressLocked),
		errors.Is(err, domain.ErrOrderImmutable):
		return http.StatusUnprocessableEntity
	case errors.As(err, &upstreamErr), errors.Is(err, infra.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error(), Code: status}

	var inventoryErr *domain.InventoryError
	switch {
	case errors.As(err, &inventoryErr):
		resp.Error = "Inventory validation failed"
		resp.Errors = inventoryErr.Problems
	case status == http.StatusServiceUnavailable:
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("upstream dependency unavailable")
		resp.Error = "upstream service unavailable"
	case status == http.StatusInternalServerError:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
		resp.Error = "internal server error"
	}

	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: msg, Code: http.StatusBadRequest})
}
