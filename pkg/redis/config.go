package redis

import (
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection parameters for the session key/value backend.
// Embed it in the application config and parse with caarlos0/env.
// Zero values fall back to DefaultConfig.
type Config struct {
	URL string `env:"REDIS_URL"`

	PoolSize        int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns    int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxIdleTime     time.Duration `env:"REDIS_MAX_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime time.Duration `env:"REDIS_MAX_CONN_LIFETIME" envDefault:"30m"`

	// Startup retries; attempt N waits N*RetryInterval.
	RetryAttempts int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`

	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// DefaultConfig returns the values the env tags default to, without a URL.
func DefaultConfig() Config {
	return Config{
		PoolSize:        10,
		MinIdleConns:    2,
		MaxIdleTime:     10 * time.Minute,
		MaxConnLifetime: 30 * time.Minute,
		RetryAttempts:   3,
		RetryInterval:   5 * time.Second,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	c.PoolSize = positive(c.PoolSize, d.PoolSize)
	c.MinIdleConns = positive(c.MinIdleConns, d.MinIdleConns)
	c.MaxIdleTime = positive(c.MaxIdleTime, d.MaxIdleTime)
	c.MaxConnLifetime = positive(c.MaxConnLifetime, d.MaxConnLifetime)
	c.RetryAttempts = positive(c.RetryAttempts, d.RetryAttempts)
	c.RetryInterval = positive(c.RetryInterval, d.RetryInterval)
	c.DialTimeout = positive(c.DialTimeout, d.DialTimeout)
	c.ReadTimeout = positive(c.ReadTimeout, d.ReadTimeout)
	c.WriteTimeout = positive(c.WriteTimeout, d.WriteTimeout)
	return c
}

// clientOptions parses the URL and layers the pool and timeout settings on
// top of whatever the URL carries (address, DB, credentials, TLS).
func (c Config) clientOptions() (*redis.Options, error) {
	if c.URL == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(c.URL, "redis://") && !strings.HasPrefix(c.URL, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	o, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}

	o.PoolSize = c.PoolSize
	o.MinIdleConns = c.MinIdleConns
	o.ConnMaxIdleTime = c.MaxIdleTime
	o.ConnMaxLifetime = c.MaxConnLifetime
	o.DialTimeout = c.DialTimeout
	o.ReadTimeout = c.ReadTimeout
	o.WriteTimeout = c.WriteTimeout
	return o, nil
}

func positive[T int | time.Duration](v, fallback T) T {
	if v > 0 {
		return v
	}
	return fallback
}
