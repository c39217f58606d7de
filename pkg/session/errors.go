package session

import "errors"

// Session errors.
var (
	// ErrNotFound is returned when a session or session value does not exist.
	ErrNotFound = errors.New("session: not found")

	// ErrInvalidRecord is returned for a nil session or one without an ID.
	ErrInvalidRecord = errors.New("session: invalid record")

	// ErrMarshal is returned when a session cannot be encoded to its storage blob.
	ErrMarshal = errors.New("session: failed to marshal")

	// ErrUnmarshal is returned when a storage blob cannot be decoded into a session.
	ErrUnmarshal = errors.New("session: failed to unmarshal")
)
