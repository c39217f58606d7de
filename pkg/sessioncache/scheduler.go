package sessioncache

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessioncache/pkg/session"
)

// pendingWrite is the handle of one scheduled backend write.
// Handles are compared by pointer, so a fired timer can tell whether it is
// still the registered write for its ID.
type pendingWrite struct {
	timer *time.Timer
}

// Pending returns the number of sessions waiting for their quiet period to elapse.
func (c *Cache) Pending() int {
	return c.pending.Size()
}

// schedule replaces any pending write for id with a fresh one.
// Stop and re-arm happen inside Compute, so two timers never coexist for an ID.
// Callers hold c.mu.
//
// Every armed timer holds one inflight count, released by whoever stops it or,
// when it fires, by fire.
func (c *Cache) schedule(id string) {
	c.pending.Compute(id, func(old *pendingWrite, loaded bool) (*pendingWrite, bool) {
		if loaded && old.timer.Stop() {
			c.inflight.Done()
			writesCoalesced.Inc()
		}
		pw := &pendingWrite{}
		c.inflight.Add(1)
		pw.timer = time.AfterFunc(c.opts.quietPeriod, func() {
			c.fire(id, pw)
		})
		return pw, false
	})
}

// cancel drops the pending write for id, if any. Callers hold c.mu.
func (c *Cache) cancel(id string) {
	if pw, ok := c.pending.LoadAndDelete(id); ok && pw.timer.Stop() {
		c.inflight.Done()
	}
}

// release removes pw from the registry only if it is still the write registered for id.
func (c *Cache) release(id string, pw *pendingWrite) {
	c.pending.Compute(id, func(old *pendingWrite, loaded bool) (*pendingWrite, bool) {
		if !loaded || old == pw {
			return nil, true
		}
		return old, false
	})
}

func (c *Cache) fire(id string, pw *pendingWrite) {
	defer c.inflight.Done()
	c.release(id, pw)
	c.flush(context.Background(), id)
}

// Flush writes every pending session now instead of waiting for its quiet
// period, and returns how many were flushed.
func (c *Cache) Flush(ctx context.Context) int {
	var due []*pendingWrite
	var ids []string
	c.pending.Range(func(id string, pw *pendingWrite) bool {
		if pw.timer.Stop() {
			ids = append(ids, id)
			due = append(due, pw)
		}
		return true
	})

	for i, id := range ids {
		c.release(id, due[i])
		c.flush(ctx, id)
		c.inflight.Done()
	}
	return len(ids)
}

// flush writes the current value of id to every enabled backend.
// The value is re-read from memory, so only the latest upsert is persisted,
// and a session removed or expired in the meantime is not written.
//
// A Remove that lands after the re-read but before the backend write completes
// can have its delete overtaken, leaving the row in place until it expires
// (KV) or the session is removed again (relational). This race is accepted.
func (c *Cache) flush(ctx context.Context, id string) {
	rec, ok := c.Get(id)
	if !ok {
		writesAborted.WithLabelValues(reasonRemoved).Inc()
		c.logger.DebugContext(ctx, "session write skipped: removed",
			slog.String("session_id", id),
		)
		return
	}

	ttl := rec.TTL(c.now())
	if ttl <= 0 {
		writesAborted.WithLabelValues(reasonExpired).Inc()
		c.logger.DebugContext(ctx, "session write skipped: expired",
			slog.String("session_id", id),
			slog.Time("expires_at", rec.ExpiresAt),
		)
		return
	}

	blob, err := session.Marshal(rec)
	if err != nil {
		writesAborted.WithLabelValues(reasonEncode).Inc()
		c.logger.ErrorContext(ctx, "session write skipped: encode failed",
			slog.String("session_id", id),
			slog.Any("error", err),
		)
		return
	}

	if c.opts.relational != nil {
		c.write(ctx, backendRelational, id, func(ctx context.Context) error {
			return c.opts.relational.Upsert(ctx, id, blob)
		})
	}
	if c.opts.kv != nil {
		c.write(ctx, backendKV, id, func(ctx context.Context) error {
			return c.opts.kv.SetWithExpiry(ctx, c.keys.Key(id), blob, ttl)
		})
	}
}

// write runs one backend write. Errors stop here: the caller of Upsert has
// long returned and memory already holds the correct value.
func (c *Cache) write(ctx context.Context, backend, id string, fn func(context.Context) error) {
	if err := c.call(ctx, fn); err != nil {
		writesTotal.WithLabelValues(backend, resultError).Inc()
		c.logger.ErrorContext(ctx, "session write failed",
			slog.String("session_id", id),
			slog.String("backend", backend),
			slog.Any("error", err),
		)
		return
	}
	writesTotal.WithLabelValues(backend, resultOK).Inc()
}
