package redis

import (
	"context"
	"io"
)

// Shutdown returns a shutdown hook that closes the Redis client.
// Run it after the session cache has been closed so its final flush can still reach Redis.
func Shutdown(client io.Closer) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Close()
	}
}
