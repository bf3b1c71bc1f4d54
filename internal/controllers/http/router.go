package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orders-service/internal/metrics"
)

// NewRouter wires the middleware chain, the order routes and the metrics endpoint.
func NewRouter(h *Handler, m *metrics.Metrics, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(m), Recovery())

	h.RegisterRoutes(r)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "route not found", Code: http.StatusNotFound})
	})
	return r
}
