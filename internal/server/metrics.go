package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// labelHandler is the "handler" label used to partition HTTP metrics by the
// matched route pattern rather than the raw URL path.
const labelHandler = "handler"

// Outcome label values for POST /api/ask.
const (
	outcomeOK           = "ok"
	outcomeFallback     = "fallback"
	outcomeInvalid      = "invalid"
	outcomeUnconfigured = "unconfigured"
	outcomeTimeout      = "timeout"
	outcomeError        = "error"
)

// serverMetrics holds all Prometheus metrics owned by the HTTP server.
// A single instance is created in New and stored on Server so that tests can
// inject a fresh prometheus.Registry without polluting the default one.
type serverMetrics struct {
	// askRequestsTotal counts completed /api/ask requests by outcome.
	askRequestsTotal *prometheus.CounterVec

	// askDurationSeconds records the wall-clock duration of each /api/ask
	// request, LLM call included.
	askDurationSeconds *prometheus.HistogramVec

	// askInFlight is the number of /api/ask requests waiting on retrieval or
	// the LLM.
	askInFlight prometheus.Gauge

	// topScore records the cosine similarity of the best-ranked source for
	// answered questions.
	topScore prometheus.Histogram

	// httpRequestsTotal counts all HTTP requests handled by the mux,
	// partitioned by method, route pattern, and status code.
	httpRequestsTotal *prometheus.CounterVec

	// httpDurationSeconds records the latency of all HTTP requests.
	httpDurationSeconds *prometheus.HistogramVec
}

// newServerMetrics registers all server metrics against reg.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		askRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "legalqa",
			Subsystem: "ask",
			Name:      "requests_total",
			Help:      "Total number of /api/ask requests completed, partitioned by outcome.",
		}, []string{"outcome"}),

		askDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "legalqa",
			Subsystem: "ask",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of /api/ask requests including the LLM call.",
			Buckets:   []float64{0.05, 0.25, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"outcome"}),

		askInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "legalqa",
			Subsystem: "ask",
			Name:      "in_flight",
			Help:      "Number of /api/ask requests currently being answered.",
		}),

		topScore: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "legalqa",
			Subsystem: "retrieval",
			Name:      "top_score",
			Help:      "Cosine similarity of the best-ranked source for answered questions.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "legalqa",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the server, partitioned by method, handler, and status code.",
		}, []string{"method", labelHandler, "code"}),

		httpDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "legalqa",
			Subsystem: "http",
			Name:      "duration_seconds",
			Help:      "Latency of HTTP requests handled by the server.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", labelHandler}),
	}
}
