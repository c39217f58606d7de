package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect creates the client for the session key/value backend and pings it,
// retrying with linear backoff. Both redis:// and rediss:// URLs are accepted.
//
//	client, err := redis.Connect(ctx, cfg.Redis)
func Connect(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	cfg = cfg.withDefaults()

	opts, err := cfg.clientOptions()
	if err != nil {
		return nil, err
	}
	return connect(ctx, opts, cfg.RetryAttempts, cfg.RetryInterval)
}

// Open is Connect for callers that only have a URL.
//
//	client, err := redis.Open(ctx, "redis://localhost:6379/0", redis.WithRetry(1, time.Second))
func Open(ctx context.Context, url string, opts ...Option) (redis.UniversalClient, error) {
	return Connect(ctx, configFor(url, opts...))
}

func configFor(url string, opts ...Option) Config {
	cfg := DefaultConfig()
	cfg.URL = url
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func connect(ctx context.Context, opts *redis.Options, attempts int, interval time.Duration) (redis.UniversalClient, error) {
	var lastErr error
	for i := range attempts {
		client := redis.NewClient(opts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		if i == attempts-1 {
			break
		}
		if err := wait(ctx, time.Duration(i+1)*interval); err != nil {
			return nil, errors.Join(ErrConnectionFailed, err)
		}
	}
	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
