package server

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/54b3r/legalqa-go/internal/provider"
)

// LLMPinger probes an LLM backend through its zero-token health check.
// It satisfies the Pinger interface and is used by GET /api/ready.
type LLMPinger struct {
	// checker probes the backend's model listing endpoint.
	checker provider.HealthChecker
	// name identifies the backend in readiness responses (e.g. "llm:groq").
	name string
}

// NewLLMPinger constructs an LLMPinger for the given checker and backend name.
func NewLLMPinger(hc provider.HealthChecker, backend string) *LLMPinger {
	return &LLMPinger{checker: hc, name: "llm:" + backend}
}

// Name returns the backend label used in readiness responses.
func (p *LLMPinger) Name() string { return p.name }

// Ping runs the health check. A nil checker means no LLM is configured,
// which is reported as not ready.
func (p *LLMPinger) Ping(ctx context.Context) error {
	if p.checker == nil {
		return fmt.Errorf("not configured")
	}
	if err := p.checker.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// QdrantPinger probes a Qdrant instance using its native HealthCheck RPC.
// It satisfies the Pinger interface and is used by GET /api/ready.
type QdrantPinger struct {
	// client is the Qdrant gRPC client to probe.
	client *qdrant.Client
}

// NewQdrantPinger constructs a QdrantPinger for the given Qdrant client.
func NewQdrantPinger(client *qdrant.Client) *QdrantPinger {
	return &QdrantPinger{client: client}
}

// Name returns the dependency label used in readiness responses.
func (p *QdrantPinger) Name() string { return "qdrant" }

// Ping calls the Qdrant HealthCheck RPC.
func (p *QdrantPinger) Ping(ctx context.Context) error {
	if _, err := p.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// CorpusPinger reports not ready when no documents were loaded, since every
// question would then fail.
type CorpusPinger struct {
	// size returns the number of indexed documents.
	size func() int
}

// NewCorpusPinger constructs a CorpusPinger over a document count source
// such as rag.Retriever.Len.
func NewCorpusPinger(size func() int) *CorpusPinger {
	return &CorpusPinger{size: size}
}

// Name returns the dependency label used in readiness responses.
func (p *CorpusPinger) Name() string { return "corpus" }

// Ping fails when the corpus is empty.
func (p *CorpusPinger) Ping(_ context.Context) error {
	if p.size() == 0 {
		return fmt.Errorf("no documents loaded")
	}
	return nil
}
