package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the server's Prometheus instruments on a private registry
// so multiple servers can coexist in one process.
type metrics struct {
	registry *prometheus.Registry
	queries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &metrics{
		registry: registry,
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "facet",
			Name:      "queries_total",
			Help:      "Queries served, by model, operation, and HTTP status.",
		}, []string{"model", "op", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "facet",
			Name:      "query_duration_seconds",
			Help:      "Query latency, by model and operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"model", "op"}),
	}
}

func (m *metrics) observe(model, op string, status int, elapsed time.Duration) {
	m.queries.WithLabelValues(model, op, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(model, op).Observe(elapsed.Seconds())
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
