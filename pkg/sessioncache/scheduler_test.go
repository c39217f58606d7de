package sessioncache_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessioncache/pkg/session"
	"github.com/dmitrymomot/sessioncache/pkg/sessioncache"
)

func TestScheduler_Coalescing(t *testing.T) {
	t.Parallel()

	t.Run("burst of upserts produces one write with the last value", func(t *testing.T) {
		t.Parallel()

		rel := newFakeRelational()
		kv := newFakeKV()
		c := sessioncache.New(
			sessioncache.WithRelational(rel),
			sessioncache.WithKV(kv),
			sessioncache.WithNamespace("ns"),
			sessioncache.WithQuietPeriod(testQuiet),
		)
		defer c.Close(context.Background())

		for i := range 5 {
			s := newSession("a", time.Hour)
			s.SetValue("n", fmt.Sprint(i))
			require.NoError(t, c.Upsert(s))
		}
		require.Equal(t, 1, c.Pending())

		require.Eventually(t, func() bool {
			return len(rel.writes()) == 1 && len(kv.writes()) == 1
		}, waitFor, tick)

		// Give a stray second timer the chance to show up.
		time.Sleep(3 * testQuiet)
		require.Len(t, rel.writes(), 1)
		require.Len(t, kv.writes(), 1)

		written, err := session.Unmarshal(rel.writes()[0].blob)
		require.NoError(t, err)
		require.Equal(t, "4", session.ValueOr(written, "n", ""))
		require.Equal(t, "a", rel.writes()[0].id)

		fromKV, err := session.Unmarshal(kv.writes()[0].blob)
		require.NoError(t, err)
		require.Equal(t, "4", session.ValueOr(fromKV, "n", ""))
		require.Equal(t, "ns:session:a", kv.writes()[0].key)
		require.Equal(t, 0, c.Pending())
	})

	t.Run("distinct ids are written independently", func(t *testing.T) {
		t.Parallel()

		rel := newFakeRelational()
		c := sessioncache.New(
			sessioncache.WithRelational(rel),
			sessioncache.WithQuietPeriod(testQuiet),
		)
		defer c.Close(context.Background())

		for _, id := range []string{"a", "b", "c"} {
			require.NoError(t, c.Upsert(newSession(id, time.Hour)))
		}

		require.Eventually(t, func() bool { return len(rel.writes()) == 3 }, waitFor, tick)

		ids := map[string]bool{}
		for _, w := range rel.writes() {
			ids[w.id] = true
		}
		require.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, ids)
	})

	t.Run("upsert after flush schedules a new write", func(t *testing.T) {
		t.Parallel()

		rel := newFakeRelational()
		c := sessioncache.New(
			sessioncache.WithRelational(rel),
			sessioncache.WithQuietPeriod(testQuiet),
		)
		defer c.Close(context.Background())

		require.NoError(t, c.Upsert(newSession("a", time.Hour)))
		require.Eventually(t, func() bool { return len(rel.writes()) == 1 }, waitFor, tick)

		require.NoError(t, c.Upsert(newSession("a", 2*time.Hour)))
		require.Eventually(t, func() bool { return len(rel.writes()) == 2 }, waitFor, tick)
	})
}

func TestScheduler_Aborts(t *testing.T) {
	t.Parallel()

	t.Run("remove during quiet period prevents the write", func(t *testing.T) {
		t.Parallel()

		rel := newFakeRelational()
		kv := newFakeKV()
		c := sessioncache.New(
			sessioncache.WithRelational(rel),
			sessioncache.WithKV(kv),
			sessioncache.WithQuietPeriod(testQuiet),
		)
		defer c.Close(context.Background())

		require.NoError(t, c.Upsert(newSession("a", time.Hour)))
		c.Remove(context.Background(), "a")

		time.Sleep(4 * testQuiet)
		require.Empty(t, rel.writes())
		require.Empty(t, kv.writes())
	})

	t.Run("record expired at flush time is not written", func(t *testing.T) {
		t.Parallel()

		rel := newFakeRelational()
		kv := newFakeKV()
		c := sessioncache.New(
			sessioncache.WithRelational(rel),
			sessioncache.WithKV(kv),
			sessioncache.WithQuietPeriod(testQuiet),
		)
		defer c.Close(context.Background())

		// Valid at upsert, expired before the quiet period ends.
		require.NoError(t, c.Upsert(newSession("a", testQuiet/3)))
		_, ok := c.Get("a")
		require.True(t, ok)

		time.Sleep(4 * testQuiet)
		require.Empty(t, rel.writes())
		require.Empty(t, kv.writes())
		require.Equal(t, 0, c.Pending())
	})

	t.Run("write failure is logged and does not block other backends", func(t *testing.T) {
		t.Parallel()

		logs := &syncBuffer{}
		rel := newFakeRelational()
		rel.upsertErr = errors.New("deadlock detected")
		kv := newFakeKV()
		c := sessioncache.New(
			sessioncache.WithRelational(rel),
			sessioncache.WithKV(kv),
			sessioncache.WithQuietPeriod(testQuiet),
			sessioncache.WithLogger(slog.New(slog.NewJSONHandler(logs, nil))),
		)
		defer c.Close(context.Background())

		require.NoError(t, c.Upsert(newSession("a", time.Hour)))

		require.Eventually(t, func() bool { return len(kv.writes()) == 1 }, waitFor, tick)
		require.Len(t, rel.writes(), 1, "relational write attempted once, not retried")
		require.Eventually(t, func() bool {
			return len(logs.String()) > 0
		}, waitFor, tick)
		require.Contains(t, logs.String(), "session write failed")
		require.Contains(t, logs.String(), "deadlock detected")
		require.Contains(t, logs.String(), `"backend":"relational"`)

		_, ok := c.Get("a")
		require.True(t, ok, "memory stays authoritative after a failed write")
	})

	t.Run("write timeout bounds backend calls", func(t *testing.T) {
		t.Parallel()

		kv := &blockingKV{fakeKV: newFakeKV()}
		c := sessioncache.New(
			sessioncache.WithKV(kv),
			sessioncache.WithQuietPeriod(testQuiet),
			sessioncache.WithWriteTimeout(20*time.Millisecond),
		)
		defer c.Close(context.Background())

		require.NoError(t, c.Upsert(newSession("a", time.Hour)))
		require.Eventually(t, func() bool { return kv.timedOut.Load() }, waitFor, tick)
	})
}

func TestScheduler_Flush(t *testing.T) {
	t.Parallel()

	rel := newFakeRelational()
	c := sessioncache.New(
		sessioncache.WithRelational(rel),
		sessioncache.WithQuietPeriod(time.Hour),
	)
	defer c.Close(context.Background())

	require.NoError(t, c.Upsert(newSession("a", time.Hour)))
	require.NoError(t, c.Upsert(newSession("b", time.Hour)))
	require.NoError(t, c.Upsert(newSession("b", time.Hour)))

	require.Equal(t, 2, c.Flush(context.Background()))
	require.Len(t, rel.writes(), 2)
	require.Equal(t, 0, c.Pending())
	require.Equal(t, 0, c.Flush(context.Background()))
}

// End to end: write, debounced persist with remaining TTL, expiry, sweep.
func TestScenario_UpsertPersistExpireSweep(t *testing.T) {
	t.Parallel()

	clk := &clock{}
	kv := newFakeKV()
	c := sessioncache.New(
		sessioncache.WithKV(kv),
		sessioncache.WithQuietPeriod(testQuiet),
		sessioncache.WithSweepInterval(0),
		sessioncache.WithClock(clk.Now),
	)
	defer c.Close(context.Background())

	start := clk.Now()
	s := session.New("a", start.Add(5*time.Second))
	require.NoError(t, c.Upsert(s))

	got, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, "a", got.ID)

	require.Eventually(t, func() bool { return len(kv.writes()) == 1 }, waitFor, tick)
	elapsed := clk.Now().Sub(start)

	w := kv.writes()[0]
	require.Equal(t, "app:session:a", w.key)
	require.InDelta(t, float64(5*time.Second-elapsed), float64(w.ttl), float64(100*time.Millisecond))
	require.LessOrEqual(t, w.ttl, 5*time.Second)

	clk.Advance(6 * time.Second)
	require.Equal(t, 1, c.Sweep())

	_, ok = c.Get("a")
	require.False(t, ok)
}

// blockingKV blocks SetWithExpiry until its context is done.
type blockingKV struct {
	*fakeKV
	timedOut atomic.Bool
}

func (b *blockingKV) SetWithExpiry(ctx context.Context, _ string, _ []byte, _ time.Duration) error {
	<-ctx.Done()
	b.timedOut.Store(errors.Is(ctx.Err(), context.DeadlineExceeded))
	return ctx.Err()
}
