package sessioncache

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessioncache/pkg/logger"
)

const (
	defaultNamespace     = "app"
	defaultQuietPeriod   = time.Second
	defaultSweepInterval = time.Minute
	defaultWriteTimeout  = 10 * time.Second
	defaultScanCount     = 100
)

// Option configures the session cache.
type Option func(*options)

type options struct {
	relational    RelationalBackend
	kv            KVBackend
	logger        *slog.Logger
	now           func() time.Time
	namespace     string
	quietPeriod   time.Duration
	sweepInterval time.Duration
	writeTimeout  time.Duration
	scanCount     int64
}

func defaultOptions() *options {
	return &options{
		logger:        logger.NewNope(),
		now:           time.Now,
		namespace:     defaultNamespace,
		quietPeriod:   defaultQuietPeriod,
		sweepInterval: defaultSweepInterval,
		writeTimeout:  defaultWriteTimeout,
		scanCount:     defaultScanCount,
	}
}

// WithRelational enables the relational backend.
// A nil backend leaves it disabled.
func WithRelational(b RelationalBackend) Option {
	return func(o *options) {
		o.relational = b
	}
}

// WithKV enables the key/value backend.
// A nil backend leaves it disabled.
func WithKV(b KVBackend) Option {
	return func(o *options) {
		o.kv = b
	}
}

// WithNamespace sets the prefix for every key written to the key/value backend.
// Default: "app"
func WithNamespace(ns string) Option {
	return func(o *options) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

// WithQuietPeriod sets how long the cache waits after the last Upsert of an ID
// before writing it to the backends.
// Default: 1 second
func WithQuietPeriod(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.quietPeriod = d
		}
	}
}

// WithSweepInterval sets how often expired records are evicted from memory.
// Zero disables the background sweeper; Sweep can still be called directly.
// Default: 1 minute
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.sweepInterval = d
		}
	}
}

// WithWriteTimeout bounds every individual backend write and delete.
// Zero means no timeout.
// Default: 10 seconds
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.writeTimeout = d
		}
	}
}

// WithScanCount sets the COUNT hint passed to each key/value scan page during restore.
// Default: 100
func WithScanCount(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.scanCount = n
		}
	}
}

// WithLogger sets the logger for persistence, sweep and restore events.
// If not set, a noop logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides the time source used for TTL checks.
// Timers still run on the wall clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
