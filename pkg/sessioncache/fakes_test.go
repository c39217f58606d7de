package sessioncache_test

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/sessioncache/pkg/session"
	"github.com/dmitrymomot/sessioncache/pkg/sessioncache"
)

type relationalWrite struct {
	id   string
	blob []byte
}

// fakeRelational is an in-memory RelationalBackend.
type fakeRelational struct {
	rows      map[string][]byte
	loadErr   error
	upsertErr error
	deleteErr error
	extra     [][]byte
	upserts   []relationalWrite
	deletes   []string
	mu        sync.Mutex
}

func newFakeRelational() *fakeRelational {
	return &fakeRelational{rows: make(map[string][]byte)}
}

func (f *fakeRelational) LoadAll(_ context.Context) ([][]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make([][]byte, 0, len(f.rows)+len(f.extra))
	for _, b := range f.rows {
		out = append(out, b)
	}
	return append(out, f.extra...), nil
}

func (f *fakeRelational) Upsert(_ context.Context, id string, blob []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.upserts = append(f.upserts, relationalWrite{id: id, blob: blob})
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.rows[id] = blob
	return nil
}

// Delete fails on a done context, as a real driver would.
func (f *fakeRelational) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes = append(f.deletes, id)
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeRelational) writes() []relationalWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.upserts)
}

func (f *fakeRelational) deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.deletes)
}

func (f *fakeRelational) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[id]
	return ok
}

func (f *fakeRelational) put(s *session.Session) {
	blob, err := session.Marshal(s)
	if err != nil {
		panic(err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[s.ID] = blob
}

type kvWrite struct {
	key  string
	blob []byte
	ttl  time.Duration
}

// fakeKV is an in-memory KVBackend that pages SCAN results.
type fakeKV struct {
	data     map[string][]byte
	scanErr  error
	setErr   error
	sets     []kvWrite
	deletes  []string
	pageSize int
	scans    int
	mu       sync.Mutex
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte), pageSize: 10}
}

func (f *fakeKV) Scan(_ context.Context, cursor uint64, match string, _ int64) ([]string, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.scans++
	if f.scanErr != nil {
		return nil, 0, f.scanErr
	}

	prefix := strings.TrimSuffix(match, "*")
	var matched []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			matched = append(matched, k)
		}
	}
	slices.Sort(matched)

	start := int(cursor)
	if start >= len(matched) {
		return nil, 0, nil
	}
	end := min(start+f.pageSize, len(matched))
	next := uint64(end)
	if end == len(matched) {
		next = 0
	}
	return matched[start:end], next, nil
}

func (f *fakeKV) MGet(_ context.Context, keys ...string) ([][]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = f.data[k]
	}
	return out, nil
}

func (f *fakeKV) SetWithExpiry(_ context.Context, key string, blob []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sets = append(f.sets, kvWrite{key: key, blob: blob, ttl: ttl})
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = blob
	return nil
}

func (f *fakeKV) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes = append(f.deletes, key)
	if err := ctx.Err(); err != nil {
		return err
	}
	delete(f.data, key)
	return nil
}

func (f *fakeKV) writes() []kvWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.sets)
}

func (f *fakeKV) deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.deletes)
}

func (f *fakeKV) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

func (f *fakeKV) put(key string, blob []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = blob
}

var (
	_ sessioncache.RelationalBackend = (*fakeRelational)(nil)
	_ sessioncache.KVBackend         = (*fakeKV)(nil)
)

// syncBuffer collects log output written from timer goroutines.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// clock is a wall clock that tests can push forward.
type clock struct {
	offset time.Duration
	mu     sync.Mutex
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Now().Add(c.offset)
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset += d
}

func newSession(id string, ttl time.Duration) *session.Session {
	return session.New(id, time.Now().Add(ttl))
}

const (
	testQuiet = 30 * time.Millisecond
	waitFor   = time.Second
	tick      = 5 * time.Millisecond
)
