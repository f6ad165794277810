package server

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/54b3r/legalqa-go/internal/logging"
	"github.com/54b3r/legalqa-go/internal/qa"
)

// fakeAsker implements the asker interface for tests.
type fakeAsker struct {
	mu sync.Mutex
	// configured is returned by Configured().
	configured bool
	// answer is returned by Ask when err is nil.
	answer *qa.Answer
	// err is returned by Ask.
	err error
	// panicWith makes Ask panic with this value when non-nil.
	panicWith any
	// questions records every question passed to Ask.
	questions []string
}

func (f *fakeAsker) Ask(_ context.Context, question string) (*qa.Answer, error) {
	f.mu.Lock()
	f.questions = append(f.questions, question)
	f.mu.Unlock()
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

func (f *fakeAsker) Configured() bool { return f.configured }

func (f *fakeAsker) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.questions)
}

// newTestServer builds a *Server around a with an isolated metrics registry
// and a discarding logger.
func newTestServer(t *testing.T, a asker, opts ...func(*Config)) (*Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	cfg := &Config{
		Logger:          logging.Discard(),
		MetricsRegistry: reg,
		MetricsGatherer: reg,
		RateLimit:       1000,
		RateBurst:       1000,
	}
	for _, o := range opts {
		o(cfg)
	}
	s, err := New(a, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	return s, reg
}
