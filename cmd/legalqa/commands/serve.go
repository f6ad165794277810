package commands

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/54b3r/legalqa-go/internal/config"
	"github.com/54b3r/legalqa-go/internal/logging"
	"github.com/54b3r/legalqa-go/internal/server"
	"github.com/54b3r/legalqa-go/internal/tracing"
	"github.com/54b3r/legalqa-go/internal/version"
)

// defaultPort is used when neither --port nor PORT is set.
const defaultPort = 5000

// NewServeCmd constructs the `legalqa serve` command, which starts the HTTP
// API and serves the web UI.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the legalqa HTTP server and web UI",
		Long: `Start the legalqa HTTP server.

Endpoints:
  GET  /api/health   liveness and whether an LLM is configured
  GET  /api/ready    readiness of the corpus, LLM and vector store
  POST /api/ask      {"question": "..."} -> {"answer": "...", "sources": [...]}
  GET  /metrics      Prometheus metrics
  GET  /             single-page web UI

Examples:
  legalqa serve
  legalqa serve --port 8080
  LLM_PROVIDER=groq GROQ_API_KEY=... legalqa serve`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// PORT and HOST may come from .env or YAML, which are only applied
			// once PersistentPreRunE has run.
			if !cmd.Flags().Changed("host") {
				host = config.EnvOrDefault("HOST", "")
			}
			if !cmd.Flags().Changed("port") {
				port = config.EnvInt("PORT", defaultPort)
			}

			log := logging.FromContext(ctx)
			log.Info("serve starting", slog.String("version", version.String()))

			flush, ok := tracing.Install(tracing.ConfigFromEnv())
			defer flush()
			if ok {
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY or LANGFUSE_SECRET_KEY not set"))
			}

			ret, err := buildRetriever(ctx)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer ret.close()

			answerer, providerCfg, err := buildAnswerer(ctx, ret.retriever)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			srv, err := server.New(answerer, &server.Config{
				Host:        host,
				Port:        port,
				Logger:      log,
				Pingers:     buildPingers(ret, providerCfg),
				RateLimit:   config.EnvFloat("RATE_LIMIT_RPS", 0),
				RateBurst:   config.EnvInt("RATE_LIMIT_BURST", 0),
				CORSOrigins: server.ParseOrigins(config.EnvOrDefault("CORS_ORIGINS", "")),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx) //nolint:wrapcheck // server errors are already descriptive
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Host address to bind to (default: $HOST or all interfaces)")
	cmd.Flags().IntVarP(&port, "port", "p", defaultPort, "TCP port to listen on (default: $PORT or 5000)")

	return cmd
}
