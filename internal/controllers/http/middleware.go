package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"orders-service/internal/metrics"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger assigns a request id and stores a request-scoped logger on the context, then
// writes one access line and records the HTTP metrics once the handler chain returns.
func RequestLogger(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		logger := log.With().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if m != nil {
			m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
			m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(latency.Seconds())
		}

		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		default:
			event = logger.Info()
		}
		event.Str("route", route).Int("status", status).Dur("latency", latency).Msg("request completed")
	}
}

// Recovery turns a panic into a 500 error envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		zerolog.Ctx(c.Request.Context()).Error().Interface("panic", rec).Msg("handler panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
			Error: "internal server error",
			Code:  http.StatusInternalServerError,
		})
	})
}
