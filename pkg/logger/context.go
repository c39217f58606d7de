package logger

import (
	"context"
	"log/slog"
)

type sessionIDKey struct{}

// WithSessionID stores the ID of the session being served in ctx.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// SessionIDFromContext returns the session ID stored by WithSessionID.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey{}).(string)
	return id, ok && id != ""
}

// SessionIDExtractor adds a session_id attribute to records logged with a
// context carrying a session ID.
func SessionIDExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		id, ok := SessionIDFromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		return slog.String("session_id", id), true
	}
}
