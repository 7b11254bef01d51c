package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus instruments of a query backend.
// Register them on a private registry in tests; the CLI uses one registry
// per run and dumps it with --metrics.
type Metrics struct {
	// queries counts executed queries.
	// Labels: backend (memory, sqlite), kind (select, aggregate),
	// outcome (ok, invalid_field, invalid_query, error)
	queries *prometheus.CounterVec

	// duration measures query latency in seconds.
	// Labels: backend, kind
	duration *prometheus.HistogramVec

	// matched tracks how many records each query's filter matched.
	// Labels: backend, kind
	matched *prometheus.HistogramVec
}

// NewMetrics creates and registers the query metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "launchdeck",
			Subsystem: "query",
			Name:      "executed_total",
			Help:      "Total queries executed",
		}, []string{"backend", "kind", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "launchdeck",
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "Query execution latency in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"backend", "kind"}),
		matched: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "launchdeck",
			Subsystem: "query",
			Name:      "matched_records",
			Help:      "Records matched by the query filter",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"backend", "kind"}),
	}
}

// Observe records one query. A nil *Metrics records nothing.
func (m *Metrics) Observe(backend, kind string, start time.Time, matched int, err error) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(backend, kind, Outcome(err)).Inc()
	m.duration.WithLabelValues(backend, kind).Observe(time.Since(start).Seconds())
	if err == nil {
		m.matched.WithLabelValues(backend, kind).Observe(float64(matched))
	}
}

// Outcome classifies err for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsInvalidFieldError(err):
		return "invalid_field"
	case IsQueryError(err):
		return "invalid_query"
	default:
		return "error"
	}
}
