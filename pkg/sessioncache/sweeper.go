package sessioncache

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessioncache/pkg/session"
)

// sweeper periodically evicts expired sessions.
func (c *Cache) sweeper(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.opts.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// Sweep evicts every session whose expiry is not after now and returns the
// number evicted. Backends are not touched.
func (c *Cache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	kept := make(map[string]*session.Session, len(c.records))
	for id, s := range c.records {
		if s.ExpiresAt.After(now) {
			kept[id] = s
		}
	}
	removed := len(c.records) - len(kept)
	c.records = kept
	c.mu.Unlock()
	recordsGauge.Set(float64(len(kept)))

	if removed > 0 {
		sweptTotal.Add(float64(removed))
		c.logger.Debug("expired sessions swept",
			slog.Int("removed", removed),
			slog.Int("remaining", len(kept)),
		)
	}
	return removed
}
