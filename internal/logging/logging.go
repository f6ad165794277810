// Package logging provides the structured logger used by every legalqa
// component. Loggers are built on [log/slog], created once per process and
// passed down through context values using [WithLogger] / [FromContext].
//
// Environment variables:
//
//	LOG_LEVEL  = debug | info | warn | error  (default: info)
//	LOG_FORMAT = json | text                  (default: json)
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// contextKey is an unexported type for context keys in this package.
type contextKey struct{}

// Options selects the handler and minimum level of a logger.
type Options struct {
	// Level is the minimum severity name (debug, info, warn, error).
	Level string
	// Format is "json" or "text". Anything else falls back to json.
	Format string
	// Output is where records are written. Defaults to os.Stderr.
	Output io.Writer
}

// New constructs a [*slog.Logger] from LOG_LEVEL and LOG_FORMAT.
func New() *slog.Logger {
	return NewWithOptions(Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	})
}

// NewWithOptions constructs a [*slog.Logger] from explicit options.
func NewWithOptions(o Options) *slog.Logger {
	out := o.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: parseLevel(o.Level)}

	var handler slog.Handler
	if strings.EqualFold(o.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return slog.New(handler).With(slog.String("service", "legalqa"))
}

// Discard returns a logger that drops every record. Used by tests and by the
// terminal UI, where log lines would corrupt the screen.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the [*slog.Logger] stored in ctx, or [slog.Default]
// when none is present.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
