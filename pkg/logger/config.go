package logger

import (
	"log/slog"
	"strings"
)

// Config selects the logger's level, output format and Sentry forwarding.
type Config struct {
	// debug, info, warn or error
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	// json or text
	Format string `env:"LOG_FORMAT" envDefault:"json"`

	Sentry SentryConfig
}

// ParseLevel maps a level name to a slog.Level. Unknown names resolve to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
