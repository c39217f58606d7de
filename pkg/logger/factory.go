package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates the service logger. The returned flush function drains buffered
// Sentry events and must be called before the process exits.
func New(cfg Config, extractors ...ContextExtractor) (*slog.Logger, func()) {
	return newLogger(os.Stdout, cfg, extractors...)
}

func newLogger(w io.Writer, cfg Config, extractors ...ContextExtractor) (*slog.Logger, func()) {
	base := newStreamHandler(w, cfg)

	sentryHandler, flush := newSentryHandler(cfg.Sentry, base)
	if sentryHandler == nil {
		return slog.New(NewLogHandlerDecorator(base, extractors...)), flush
	}

	combined := newMultiHandler(base, sentryHandler)
	return slog.New(NewLogHandlerDecorator(combined, extractors...)), flush
}

func newStreamHandler(w io.Writer, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// NewNope creates a logger that discards all output.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
