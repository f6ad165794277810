// Package server implements the HTTP API for the legal question-answering
// service and serves the embedded web UI.
// The server is started by the `legalqa serve` CLI command.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/54b3r/legalqa-go/internal/logging"
	"github.com/54b3r/legalqa-go/internal/qa"
	"github.com/54b3r/legalqa-go/internal/rag"
)

// maxBodyBytes caps the POST /api/ask body.
const maxBodyBytes = 100 << 10

// Error titles and messages returned to clients.
const (
	errInvalidRequest     = "Invalid request"
	errServiceUnavailable = "Service unavailable"
	errInternal           = "Internal server error"
	errNotFound           = "Not found"
	errTooManyRequests    = "Too many requests"

	msgQuestionRequired = "Question is required and must be a non-empty string"
	msgNotConfigured    = "LLM is not configured. Please set API keys in .env file."
	msgUnexpected       = "An unexpected error occurred"
)

// New constructs a Server from the provided answerer and config.
func New(a asker, cfg *Config) (*Server, error) {
	if a == nil {
		return nil, fmt.Errorf("server: answerer must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Port == 0 {
		cfg.Port = 5000
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.AskTimeout == 0 {
		cfg.AskTimeout = 2 * time.Minute
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = cfg.AskTimeout + 30*time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = defaultRateBurst
	}
	if cfg.MetricsRegistry == nil {
		cfg.MetricsRegistry = prometheus.DefaultRegisterer
	}
	if cfg.MetricsGatherer == nil {
		cfg.MetricsGatherer = prometheus.DefaultGatherer
	}
	log := cfg.Logger
	if log == nil {
		log = logging.New()
	}

	s := &Server{
		asker:   a,
		cfg:     cfg,
		log:     log,
		pingers: cfg.Pingers,
		metrics: newServerMetrics(cfg.MetricsRegistry),
		now:     time.Now,
	}

	rl, stop := newRateLimiter(cfg.RateLimit, cfg.RateBurst, log)
	s.stopRL = stop

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/ready", s.handleReady)
	mux.Handle("POST /api/ask", rl.middleware(http.HandlerFunc(s.handleAsk)))
	mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{}))
	mux.Handle("GET /{$}", uiHandler())
	mux.HandleFunc("/", s.handleNotFound)

	s.handler = s.requestLogger(recoverer(cors(cfg.CORSOrigins, mux)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Handler returns the fully wrapped route tree.
func (s *Server) Handler() http.Handler { return s.handler }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// Close stops background goroutines. It is called by Start on shutdown and
// only needs to be called directly when Start is never run.
func (s *Server) Close() {
	if s.stopRL != nil {
		s.stopRL()
		s.stopRL = nil
	}
}

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	defer s.Close()

	errCh := make(chan error, 1)

	go func() {
		s.log.Info("server listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		s.log.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// handleAsk handles POST /api/ask. Validation runs first, then the LLM
// configuration check, then retrieval and generation.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logging.FromContext(r.Context())

	question, ok := decodeQuestion(w, r)
	if !ok {
		s.observeAsk(outcomeInvalid, start)
		writeError(w, http.StatusBadRequest, errInvalidRequest, msgQuestionRequired)
		return
	}
	if !s.asker.Configured() {
		s.observeAsk(outcomeUnconfigured, start)
		writeError(w, http.StatusServiceUnavailable, errServiceUnavailable, msgNotConfigured)
		return
	}

	log.Info("ask: question received", slog.Int("question_chars", len(question)))

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.AskTimeout)
	defer cancel()

	s.metrics.askInFlight.Inc()
	ans, err := s.asker.Ask(ctx, question)
	s.metrics.askInFlight.Dec()

	if err != nil {
		switch {
		case errors.Is(err, qa.ErrEmptyQuestion):
			s.observeAsk(outcomeInvalid, start)
			writeError(w, http.StatusBadRequest, errInvalidRequest, msgQuestionRequired)
		case errors.Is(err, qa.ErrNotConfigured):
			s.observeAsk(outcomeUnconfigured, start)
			writeError(w, http.StatusServiceUnavailable, errServiceUnavailable, msgNotConfigured)
		default:
			outcome := outcomeError
			if errors.Is(err, context.DeadlineExceeded) {
				outcome = outcomeTimeout
			}
			s.observeAsk(outcome, start)
			log.Error("ask: failed", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, errInternal, err.Error())
		}
		return
	}

	outcome := outcomeOK
	if len(ans.Sources) == 0 {
		outcome = outcomeFallback
	} else {
		s.metrics.topScore.Observe(ans.TopScore())
	}
	s.observeAsk(outcome, start)

	if ans.Sources == nil {
		ans.Sources = []rag.Result{}
	}
	writeJSON(w, http.StatusOK, ans)
}

// decodeQuestion reads the request body and returns the trimmed question.
// It returns false for malformed JSON, a missing or non-string question, or
// a question that is blank after trimming.
func decodeQuestion(w http.ResponseWriter, r *http.Request) (string, bool) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req askRequest
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		return "", false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return "", false
	}
	q, ok := req.Question.(string)
	if !ok {
		return "", false
	}
	q = strings.TrimSpace(q)
	return q, q != ""
}

// handleNotFound answers every request that matched no route.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, errNotFound,
		fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path))
}

// observeAsk records the outcome and latency of one POST /api/ask.
func (s *Server) observeAsk(outcome string, start time.Time) {
	s.metrics.askRequestsTotal.WithLabelValues(outcome).Inc()
	s.metrics.askDurationSeconds.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("server: encode response", slog.Any("error", err))
	}
}

// writeError writes the {error, message} body used by every failure path.
func writeError(w http.ResponseWriter, status int, title, message string) {
	writeJSON(w, status, errorResponse{Error: title, Message: message})
}
