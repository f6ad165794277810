// Package tracing sends eino chat model callbacks to Langfuse when
// credentials are configured.
package tracing

import (
	"github.com/cloudwego/eino-ext/callbacks/langfuse"
	"github.com/cloudwego/eino/callbacks"

	"github.com/54b3r/legalqa-go/internal/config"
)

// defaultHost is the self-hosted Langfuse address used when LANGFUSE_HOST
// is unset.
const defaultHost = "http://localhost:3000"

// Config holds Langfuse connection settings.
type Config struct {
	Host      string
	PublicKey string
	SecretKey string
}

// ConfigFromEnv reads LANGFUSE_HOST, LANGFUSE_PUBLIC_KEY and
// LANGFUSE_SECRET_KEY.
func ConfigFromEnv() Config {
	return Config{
		Host:      config.EnvOrDefault("LANGFUSE_HOST", defaultHost),
		PublicKey: config.EnvOrDefault("LANGFUSE_PUBLIC_KEY", ""),
		SecretKey: config.EnvOrDefault("LANGFUSE_SECRET_KEY", ""),
	}
}

// Enabled reports whether both keys are present.
func (c Config) Enabled() bool {
	return c.PublicKey != "" && c.SecretKey != ""
}

// Setup initialises the Langfuse callback handler. It returns a flush
// function that must be called before process exit so buffered traces are
// sent. When Langfuse is not configured the handler and flush function are
// nil and ok is false.
func Setup(cfg Config) (handler callbacks.Handler, flush func(), ok bool) {
	if !cfg.Enabled() {
		return nil, nil, false
	}
	if cfg.Host == "" {
		cfg.Host = defaultHost
	}

	handler, flush = langfuse.NewLangfuseHandler(&langfuse.Config{
		Host:      cfg.Host,
		PublicKey: cfg.PublicKey,
		SecretKey: cfg.SecretKey,
	})
	return handler, flush, true
}

// Install registers the handler globally so every chat model call is traced.
// It returns the flush function, or a no-op when tracing is disabled.
func Install(cfg Config) (flush func(), ok bool) {
	handler, flush, ok := Setup(cfg)
	if !ok {
		return func() {}, false
	}
	callbacks.AppendGlobalHandlers(handler)
	return flush, true
}
