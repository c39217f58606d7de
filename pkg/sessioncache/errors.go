package sessioncache

import "errors"

// Sentinel errors for cache operations.
var (
	// ErrRestore is returned when at least one backend could not be loaded at startup.
	ErrRestore = errors.New("sessioncache: restore failed")

	// ErrClosed is returned when an operation is attempted on a closed cache.
	ErrClosed = errors.New("sessioncache: closed")

	// ErrAlreadyStarted is returned when Start is called more than once.
	ErrAlreadyStarted = errors.New("sessioncache: already started")

	// ErrNotStarted is reported by the health check before Start is called.
	ErrNotStarted = errors.New("sessioncache: not started")
)
