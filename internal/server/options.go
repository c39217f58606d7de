package server

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessioncache/pkg/health"
	"github.com/dmitrymomot/sessioncache/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Option configures the HTTP server.
type Option func(*options)

type options struct {
	logger *slog.Logger
	checks health.Checks
	now    func() time.Time
}

func defaultOptions() *options {
	return &options{
		logger: logger.NewNope(),
		checks: health.Checks{},
		now:    time.Now,
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCheck adds a named readiness check.
func WithCheck(name string, check health.CheckFunc) Option {
	return func(o *options) {
		if check != nil {
			o.checks[name] = check
		}
	}
}

// WithClock overrides the time source used to validate expiry times.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
