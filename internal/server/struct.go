package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/54b3r/legalqa-go/internal/qa"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to. Empty binds every interface.
	Host string
	// Port is the TCP port to listen on (default: 5000).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response. It must
	// exceed AskTimeout so slow LLM answers are still delivered.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// AskTimeout bounds a single POST /api/ask including the LLM call
	// (default: 2m).
	AskTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on
	// POST /api/ask (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// CORSOrigins lists the origins allowed to call the API. Empty or "*"
	// allows any origin.
	CORSOrigins []string
	// MetricsRegistry receives the server's collectors. Defaults to
	// prometheus.DefaultRegisterer.
	MetricsRegistry prometheus.Registerer
	// MetricsGatherer backs GET /metrics. Defaults to
	// prometheus.DefaultGatherer.
	MetricsGatherer prometheus.Gatherer
}

// asker is the interface handleAsk calls to answer a question.
// *qa.Answerer satisfies it; tests inject a fake.
type asker interface {
	// Ask answers question from the corpus.
	Ask(ctx context.Context, question string) (*qa.Answer, error)
	// Configured reports whether an LLM is available.
	Configured() bool
}

// Server is the HTTP server that exposes the question-answering pipeline.
type Server struct {
	// asker answers POST /api/ask.
	asker asker
	// cfg holds the resolved server configuration.
	cfg *Config
	// handler is the fully wrapped route tree.
	handler http.Handler
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds all Prometheus collectors for this server instance.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
	// now returns the current time; replaced in tests.
	now func() time.Time
}

// askRequest is the JSON body for POST /api/ask. Question is decoded as any
// so that non-string values can be rejected explicitly.
type askRequest struct {
	Question any `json:"question"`
}

// errorResponse is the JSON body for every non-2xx response.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// healthResponse is the JSON body for GET /api/health.
type healthResponse struct {
	Status        string `json:"status"`
	LLMConfigured bool   `json:"llmConfigured"`
	Timestamp     string `json:"timestamp"`
}
