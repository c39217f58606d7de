package sessioncache

import (
	"context"
	"time"
)

// RelationalBackend is a durable store keyed by the bare session ID.
// Implementations: pgstore.Store.
type RelationalBackend interface {
	// LoadAll returns every stored blob.
	LoadAll(ctx context.Context) ([][]byte, error)

	// Upsert inserts or replaces the blob stored under id.
	Upsert(ctx context.Context, id string, blob []byte) error

	// Delete removes the row for id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}

// KVBackend is a key/value store with native per-key expiry.
// Implementations: redisstore.Store.
type KVBackend interface {
	// Scan returns one page of keys matching the glob pattern and the cursor
	// for the next page. Cursor 0 starts a scan; a returned cursor of 0 ends it.
	Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error)

	// MGet fetches all keys in one round trip. The result is aligned with keys;
	// a nil entry means the key is absent.
	MGet(ctx context.Context, keys ...string) ([][]byte, error)

	// SetWithExpiry stores blob under key, to be dropped by the backend after ttl.
	SetWithExpiry(ctx context.Context, key string, blob []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Backend names used in logs and metric labels.
const (
	backendRelational = "relational"
	backendKV         = "kv"
)
