package db

import (
	"context"
)

// Closer is satisfied by *pgxpool.Pool.
type Closer interface {
	Close()
}

// Shutdown returns a shutdown hook that closes the pool.
func Shutdown(pool Closer) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		pool.Close()
		return nil
	}
}
