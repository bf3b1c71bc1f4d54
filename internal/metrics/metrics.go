package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "orders"

type Metrics struct {
	OrdersCreated       prometheus.Counter
	OrdersRejected      *prometheus.CounterVec
	StatusTransitions   *prometheus.CounterVec
	SideEffectFailures  *prometheus.CounterVec
	CatalogCacheLookups *prometheus.CounterVec
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
}

// New creates the service collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "created_total",
			Help:      "Orders persisted by the creation pipeline.",
		}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_total",
			Help:      "Order creations rejected before persistence, by reason.",
		}, []string{"reason"}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Committed order status transitions.",
		}, []string{"from", "to"}),
		SideEffectFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "side_effect_failures_total",
			Help:      "Best-effort side effects that failed after an order was committed.",
		}, []string{"effect"}),
		CatalogCacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_lookups_total",
			Help:      "Book title cache lookups by result.",
		}, []string{"result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.OrdersCreated,
		m.OrdersRejected,
		m.StatusTransitions,
		m.SideEffectFailures,
		m.CatalogCacheLookups,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// NewNop returns collectors registered on a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
