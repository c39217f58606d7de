package sessioncache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sessioncache/pkg/session"
)

// Restore loads every session from the enabled backends into memory.
// Call it once at startup, before serving traffic.
//
// Backends are read concurrently but applied in a fixed order: relational
// first, then key/value, so the key/value copy wins when both hold an ID.
// Malformed entries are skipped one by one. Expired sessions are loaded as-is
// and left to the sweeper.
//
// If a backend cannot be read, the others are still applied and the returned
// error wraps ErrRestore.
func (c *Cache) Restore(ctx context.Context) error {
	var (
		g              errgroup.Group
		fromRelational []*session.Session
		fromKV         []*session.Session
		relationalErr  error
		kvErr          error
	)

	if c.opts.relational != nil {
		g.Go(func() error {
			fromRelational, relationalErr = c.loadRelational(ctx)
			return nil
		})
	}
	if c.opts.kv != nil {
		g.Go(func() error {
			fromKV, kvErr = c.loadKV(ctx)
			return nil
		})
	}
	_ = g.Wait()

	c.mu.Lock()
	for _, s := range fromRelational {
		c.records[s.ID] = s
	}
	for _, s := range fromKV {
		c.records[s.ID] = s
	}
	total := len(c.records)
	c.mu.Unlock()
	recordsGauge.Set(float64(total))

	c.logger.InfoContext(ctx, "sessions restored",
		slog.Int("relational", len(fromRelational)),
		slog.Int("kv", len(fromKV)),
		slog.Int("total", total),
	)

	if relationalErr != nil || kvErr != nil {
		return errors.Join(ErrRestore, relationalErr, kvErr)
	}
	return nil
}

func (c *Cache) loadRelational(ctx context.Context) ([]*session.Session, error) {
	blobs, err := c.opts.relational.LoadAll(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "relational restore failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", backendRelational, err)
	}

	out := make([]*session.Session, 0, len(blobs))
	for i, blob := range blobs {
		s, err := session.Unmarshal(blob)
		if err != nil {
			restoredTotal.WithLabelValues(backendRelational, resultSkipped).Inc()
			c.logger.WarnContext(ctx, "skipping malformed session row",
				slog.Int("row", i),
				slog.Any("error", err),
			)
			continue
		}
		restoredTotal.WithLabelValues(backendRelational, resultOK).Inc()
		out = append(out, s)
	}
	return out, nil
}

func (c *Cache) loadKV(ctx context.Context) ([]*session.Session, error) {
	keys, err := c.scanKeys(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "kv restore failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", backendKV, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := c.opts.kv.MGet(ctx, keys...)
	if err != nil {
		c.logger.ErrorContext(ctx, "kv restore failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", backendKV, err)
	}
	if len(values) != len(keys) {
		return nil, fmt.Errorf("%s: mget returned %d values for %d keys", backendKV, len(values), len(keys))
	}

	out := make([]*session.Session, 0, len(values))
	for i, blob := range values {
		// Expired by the backend between SCAN and MGET.
		if blob == nil {
			continue
		}
		s, err := session.Unmarshal(blob)
		if err != nil {
			restoredTotal.WithLabelValues(backendKV, resultSkipped).Inc()
			c.logger.WarnContext(ctx, "skipping malformed session key",
				slog.String("key", keys[i]),
				slog.Any("error", err),
			)
			continue
		}
		restoredTotal.WithLabelValues(backendKV, resultOK).Inc()
		out = append(out, s)
	}
	return out, nil
}

// scanKeys walks the whole keyspace under the session pattern.
// SCAN may return a key more than once, so the result is deduplicated.
func (c *Cache) scanKeys(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	pattern := c.keys.Pattern()

	for {
		page, next, err := c.opts.kv.Scan(ctx, cursor, pattern, c.opts.scanCount)
		if err != nil {
			return nil, err
		}
		keys = append(keys, page...)

		cursor = next
		if cursor == 0 {
			break
		}
	}

	slices.Sort(keys)
	return slices.Compact(keys), nil
}
