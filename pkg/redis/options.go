package redis

import "time"

// Option adjusts the Config that Open builds from its URL.
// Non-positive arguments are ignored.
type Option func(*Config)

func WithPoolSize(n int) Option {
	return func(c *Config) { c.PoolSize = positive(n, c.PoolSize) }
}

func WithMinIdleConns(n int) Option {
	return func(c *Config) { c.MinIdleConns = positive(n, c.MinIdleConns) }
}

// WithConnLifetimes bounds how long a pooled connection may sit idle and how
// long it may live in total.
func WithConnLifetimes(idle, total time.Duration) Option {
	return func(c *Config) {
		c.MaxIdleTime = positive(idle, c.MaxIdleTime)
		c.MaxConnLifetime = positive(total, c.MaxConnLifetime)
	}
}

// WithRetry sets the startup ping attempts; attempt N waits N*interval.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(c *Config) {
		c.RetryAttempts = positive(attempts, c.RetryAttempts)
		c.RetryInterval = positive(interval, c.RetryInterval)
	}
}

func WithTimeouts(dial, read, write time.Duration) Option {
	return func(c *Config) {
		c.DialTimeout = positive(dial, c.DialTimeout)
		c.ReadTimeout = positive(read, c.ReadTimeout)
		c.WriteTimeout = positive(write, c.WriteTimeout)
	}
}
