package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessioncache/pkg/sessioncache"
)

// Store is the sessioncache key/value backend on Redis.
// Keys are passed in fully derived; the store adds no prefix of its own.
type Store struct {
	client redis.UniversalClient
}

// New creates a Redis session store.
// The client should be obtained from pkg/redis.Open or pkg/redis.Connect.
func New(client redis.UniversalClient) (*Store, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	return &Store{client: client}, nil
}

// Scan returns one SCAN page of keys matching the pattern.
func (s *Store) Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	keys, next, err := s.client.Scan(ctx, cursor, match, count).Result()
	if err != nil {
		return nil, 0, errors.Join(ErrScan, err)
	}
	return keys, next, nil
}

// MGet fetches all keys with a single MGET. Missing keys yield nil entries.
func (s *Store) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Join(ErrMGet, err)
	}
	return toBlobs(vals)
}

// SetWithExpiry stores blob under key with a millisecond-precision expiry.
// A non-positive ttl is rejected: Redis would treat 0 as "never expire".
func (s *Store) SetWithExpiry(ctx context.Context, key string, blob []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	if err := s.client.Set(ctx, key, blob, ttl).Err(); err != nil {
		return errors.Join(ErrSet, err)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return errors.Join(ErrDelete, err)
	}
	return nil
}

// toBlobs converts an MGET reply. go-redis returns string values and nil for
// missing keys.
func toBlobs(vals []any) ([][]byte, error) {
	out := make([][]byte, len(vals))
	for i, v := range vals {
		switch val := v.(type) {
		case nil:
		case string:
			out[i] = []byte(val)
		case []byte:
			out[i] = val
		default:
			return nil, errors.Join(ErrMGet, fmt.Errorf("unexpected value type %T at index %d", v, i))
		}
	}
	return out, nil
}

var _ sessioncache.KVBackend = (*Store)(nil)
