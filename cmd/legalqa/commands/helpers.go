package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/qdrant/go-client/qdrant"

	"github.com/54b3r/legalqa-go/internal/budget"
	"github.com/54b3r/legalqa-go/internal/config"
	"github.com/54b3r/legalqa-go/internal/corpus"
	"github.com/54b3r/legalqa-go/internal/logging"
	"github.com/54b3r/legalqa-go/internal/provider"
	"github.com/54b3r/legalqa-go/internal/qa"
	"github.com/54b3r/legalqa-go/internal/rag"
	"github.com/54b3r/legalqa-go/internal/server"
)

// Retrieval backend names accepted by RETRIEVAL_BACKEND.
const (
	backendMemory = "memory"
	backendQdrant = "qdrant"
)

// retrieval bundles the configured retriever with what the caller needs to
// probe and release it.
type retrieval struct {
	retriever rag.Retriever
	// qdrant is set only for the qdrant backend.
	qdrant *qdrant.Client
	close  func()
}

// buildRetriever loads the corpus from CORPUS_DIR and indexes it with the
// backend named by RETRIEVAL_BACKEND.
func buildRetriever(ctx context.Context) (*retrieval, error) {
	log := logging.FromContext(ctx)

	c, err := corpus.Load(ctx, config.EnvOrDefault("CORPUS_DIR", corpus.DefaultDir))
	if err != nil {
		return nil, err //nolint:wrapcheck // already prefixed by corpus
	}

	topK := config.EnvInt("RETRIEVAL_TOP_K", rag.DefaultTopK)
	backend := config.EnvOrDefault("RETRIEVAL_BACKEND", backendMemory)

	switch backend {
	case backendMemory:
		r, err := rag.NewMemoryRetriever(c, topK)
		if err != nil {
			return nil, err //nolint:wrapcheck // already prefixed by rag
		}
		log.Info("retrieval: in-memory TF-IDF index built",
			slog.Int("documents", r.Len()),
			slog.Int("top_k", topK),
		)
		return &retrieval{retriever: r, close: func() {}}, nil

	case backendQdrant:
		r, err := rag.NewQdrantRetriever(ctx, c, &rag.QdrantConfig{
			Host:       config.EnvOrDefault("QDRANT_HOST", "localhost"),
			Port:       config.EnvInt("QDRANT_PORT", 6334),
			Collection: config.EnvOrDefault("QDRANT_COLLECTION", "legalqa_tfidf"),
			APIKey:     config.EnvOrDefault("QDRANT_API_KEY", ""),
			UseTLS:     config.EnvBool("QDRANT_TLS", false),
		}, topK)
		if err != nil {
			return nil, err //nolint:wrapcheck // already prefixed by rag
		}
		log.Info("retrieval: corpus mirrored into qdrant",
			slog.Int("documents", r.Len()),
			slog.Int("top_k", topK),
		)
		return &retrieval{
			retriever: r,
			qdrant:    r.Client(),
			close: func() {
				if err := r.Close(); err != nil {
					log.Warn("qdrant: close failed", slog.Any("error", err))
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown RETRIEVAL_BACKEND %q; valid values: memory, qdrant", backend)
	}
}

// buildAnswerer resolves the LLM provider and wires it to the retriever. A
// provider without credentials is not an error: the answerer is returned
// unconfigured, so /api/health reports llmConfigured=false and /api/ask
// answers 503.
func buildAnswerer(ctx context.Context, r rag.Retriever) (*qa.Answerer, *provider.Config, error) {
	log := logging.FromContext(ctx)
	providerCfg := provider.ConfigFromEnv()

	var cfg qa.Config
	cfg.Retriever = r
	cfg.ProviderName = providerCfg.DisplayName()
	cfg.TopK = config.EnvInt("RETRIEVAL_TOP_K", rag.DefaultTopK)
	cfg.MaxContextTokens = config.EnvInt("LLM_CONTEXT_TOKENS", budget.DefaultMaxContextTokens)

	if err := providerCfg.Validate(); err != nil {
		log.Warn("LLM is not configured; questions will be rejected",
			slog.String("provider", string(providerCfg.Backend)),
			slog.Any("reason", err),
		)
	} else {
		chatModel, err := provider.New(ctx, providerCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialise model provider: %w", err)
		}
		cfg.ChatModel = chatModel
		log.Info("provider initialised",
			slog.String("provider", string(providerCfg.Backend)),
			slog.String("model", providerCfg.ModelName()),
		)
	}

	a, err := qa.New(&cfg)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck // already prefixed by qa
	}
	return a, providerCfg, nil
}

// buildPingers returns the readiness probes for GET /api/ready.
func buildPingers(ret *retrieval, providerCfg *provider.Config) []server.Pinger {
	pingers := []server.Pinger{server.NewCorpusPinger(ret.retriever.Len)}

	var hc provider.HealthChecker
	if providerCfg.Configured() {
		hc = providerCfg
	}
	pingers = append(pingers, server.NewLLMPinger(hc, string(providerCfg.Backend)))

	if ret.qdrant != nil {
		pingers = append(pingers, server.NewQdrantPinger(ret.qdrant))
	}
	return pingers
}
