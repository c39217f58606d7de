package sessioncache

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sessioncache/pkg/session"
)

// Cache keeps sessions in memory and mirrors them to the configured backends.
//
// Reads never leave memory. Upsert writes memory synchronously and schedules a
// debounced backend write; Remove deletes from memory and then from every
// backend. Expired sessions are evicted by a periodic sweep.
type Cache struct {
	records map[string]*session.Session
	pending *xsync.MapOf[string, *pendingWrite]
	opts    *options
	logger  *slog.Logger
	done    chan struct{}
	keys    Keys
	wg      sync.WaitGroup
	mu      sync.RWMutex

	// Counts armed timers and running flushes so Close can wait them out.
	inflight sync.WaitGroup

	lifecycle sync.Mutex
	started   bool
	closed    atomic.Bool
}

// New creates a session cache. Without WithRelational or WithKV it is a plain
// in-memory store.
//
// Example:
//
//	rel, _ := pgstore.New(pool)
//	kv, _ := redisstore.New(client)
//	c := sessioncache.New(
//	    sessioncache.WithRelational(rel),
//	    sessioncache.WithKV(kv),
//	    sessioncache.WithNamespace("myapp"),
//	    sessioncache.WithLogger(log),
//	)
//	if err := c.Restore(ctx); err != nil {
//	    log.Warn("partial restore", slog.Any("error", err))
//	}
//	_ = c.Start(ctx)
//	defer c.Close(context.Background())
func New(opts ...Option) *Cache {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Cache{
		records: make(map[string]*session.Session),
		pending: xsync.NewMapOf[string, *pendingWrite](),
		opts:    o,
		logger:  o.logger,
		keys:    NewKeys(o.namespace),
		done:    make(chan struct{}),
	}
}

// Get returns a copy of the session stored under id.
func (c *Cache) Get(id string) (*session.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.records[id]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// Len returns the number of sessions held in memory, expired ones included
// until the next sweep.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Upsert stores a copy of s, replacing any previous session with the same ID,
// and schedules a backend write after the quiet period.
func (c *Cache) Upsert(s *session.Session) error {
	if s == nil || s.ID == "" {
		return session.ErrInvalidRecord
	}

	rec := s.Clone()

	// The write is scheduled under mu so that it cannot interleave with a
	// Remove of the same ID.
	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		return ErrClosed
	}
	c.records[rec.ID] = rec
	if c.persistent() {
		c.schedule(rec.ID)
	}
	n := len(c.records)
	c.mu.Unlock()
	recordsGauge.Set(float64(n))

	return nil
}

// Remove deletes the session from memory, cancels its pending write and
// deletes it from every backend. It returns once each backend delete has been
// attempted; failures are logged, not returned.
//
// Cancellation of ctx does not abort the backend deletes: a row left behind
// would be restored on the next start. Each delete is still bounded by the
// write timeout.
func (c *Cache) Remove(ctx context.Context, id string) {
	c.mu.Lock()
	delete(c.records, id)
	c.cancel(id)
	n := len(c.records)
	c.mu.Unlock()
	recordsGauge.Set(float64(n))

	if !c.persistent() {
		return
	}
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	if c.opts.relational != nil {
		g.Go(func() error {
			c.delete(ctx, backendRelational, id, func(ctx context.Context) error {
				return c.opts.relational.Delete(ctx, id)
			})
			return nil
		})
	}
	if c.opts.kv != nil {
		g.Go(func() error {
			c.delete(ctx, backendKV, id, func(ctx context.Context) error {
				return c.opts.kv.Delete(ctx, c.keys.Key(id))
			})
			return nil
		})
	}
	_ = g.Wait()
}

// Start launches the background sweeper. The sweeper stops when ctx is
// cancelled or the cache is closed.
func (c *Cache) Start(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.closed.Load() {
		return ErrClosed
	}
	if c.started {
		return ErrAlreadyStarted
	}
	c.started = true

	if c.opts.sweepInterval > 0 {
		c.wg.Add(1)
		go c.sweeper(ctx)
	}

	c.logger.InfoContext(ctx, "session cache started",
		slog.Int("sessions", c.Len()),
		slog.Bool("relational", c.opts.relational != nil),
		slog.Bool("kv", c.opts.kv != nil),
		slog.Duration("quiet_period", c.opts.quietPeriod),
		slog.Duration("sweep_interval", c.opts.sweepInterval),
	)
	return nil
}

// Close stops the sweeper, writes every pending session to the backends
// immediately and waits for writes already in progress. Close is idempotent.
func (c *Cache) Close(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	// Setting closed under mu orders it after any Upsert that already
	// scheduled a write.
	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		return nil
	}
	c.closed.Store(true)
	c.mu.Unlock()

	close(c.done)
	c.wg.Wait()

	n := c.Flush(ctx)
	c.inflight.Wait()
	c.logger.InfoContext(ctx, "session cache closed", slog.Int("flushed", n))
	return nil
}

// Healthcheck reports the cache as unhealthy until Start has been called and
// after Close.
func (c *Cache) Healthcheck() func(context.Context) error {
	return func(context.Context) error {
		if c.closed.Load() {
			return ErrClosed
		}
		c.lifecycle.Lock()
		started := c.started
		c.lifecycle.Unlock()
		if !started {
			return ErrNotStarted
		}
		return nil
	}
}

func (c *Cache) persistent() bool {
	return c.opts.relational != nil || c.opts.kv != nil
}

// delete runs one backend delete and records the outcome.
func (c *Cache) delete(ctx context.Context, backend, id string, fn func(context.Context) error) {
	if err := c.call(ctx, fn); err != nil {
		deletesTotal.WithLabelValues(backend, resultError).Inc()
		c.logger.ErrorContext(ctx, "session delete failed",
			slog.String("session_id", id),
			slog.String("backend", backend),
			slog.Any("error", err),
		)
		return
	}
	deletesTotal.WithLabelValues(backend, resultOK).Inc()
}

// call applies the configured write timeout to a single backend call.
func (c *Cache) call(ctx context.Context, fn func(context.Context) error) error {
	if c.opts.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.writeTimeout)
		defer cancel()
	}
	return fn(ctx)
}

func (c *Cache) now() time.Time {
	return c.opts.now()
}
