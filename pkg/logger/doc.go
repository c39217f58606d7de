// Package logger builds the service's structured logger on top of log/slog.
//
// Records are written as JSON (or text, for local development) to stdout.
// When a Sentry DSN is configured, warnings and errors are also forwarded to
// Sentry through sentry-go's slog handler; errors become Sentry issues.
//
//	log, flush := logger.New(cfg.Log, logger.SessionIDExtractor())
//	defer flush()
//
// Request-scoped values are attached with context extractors. They run on every
// log call, so the session being served ends up on every line written while
// handling it:
//
//	ctx = logger.WithSessionID(ctx, id)
//	log.InfoContext(ctx, "session updated")
//	// {"level":"INFO","msg":"session updated","session_id":"..."}
//
// An empty DSN, or a failed Sentry initialisation, leaves stdout logging in
// place.
package logger
