// Package config loads the sessioncache service configuration from the
// environment.
package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/sessioncache/pkg/db"
	"github.com/dmitrymomot/sessioncache/pkg/logger"
	"github.com/dmitrymomot/sessioncache/pkg/redis"
	"github.com/dmitrymomot/sessioncache/pkg/sessioncache"
)

var (
	ErrParse               = errors.New("config: failed to parse environment")
	ErrDotenv              = errors.New("config: failed to load env file")
	ErrPostgresURLRequired = errors.New("config: DATABASE_CONN_URL is required when SESSION_ENABLE_POSTGRES is set")
	ErrRedisURLRequired    = errors.New("config: REDIS_URL is required when SESSION_ENABLE_REDIS is set")
)

type Config struct {
	HTTP    HTTP
	Session Session
	Log     logger.Config
	DB      db.Config
	Redis   redis.Config
}

type HTTP struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// Session controls which backends the cache mirrors to and its timings.
// With both backends disabled the cache is memory-only.
type Session struct {
	EnablePostgres bool          `env:"SESSION_ENABLE_POSTGRES" envDefault:"false"`
	EnableRedis    bool          `env:"SESSION_ENABLE_REDIS" envDefault:"false"`
	Namespace      string        `env:"SESSION_NAMESPACE" envDefault:"app"`
	QuietPeriod    time.Duration `env:"SESSION_QUIET_PERIOD" envDefault:"1s"`
	SweepInterval  time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
	WriteTimeout   time.Duration `env:"SESSION_WRITE_TIMEOUT" envDefault:"10s"`
	ScanCount      int64         `env:"SESSION_SCAN_COUNT" envDefault:"100"`
}

// Options translates the session settings into cache options.
// Backends are attached by the caller once their clients are connected.
func (s Session) Options() []sessioncache.Option {
	return []sessioncache.Option{
		sessioncache.WithNamespace(s.Namespace),
		sessioncache.WithQuietPeriod(s.QuietPeriod),
		sessioncache.WithSweepInterval(s.SweepInterval),
		sessioncache.WithWriteTimeout(s.WriteTimeout),
		sessioncache.WithScanCount(s.ScanCount),
	}
}

// Load reads the given env files, or ./.env when none are given, and parses
// the process environment. Variables already set take precedence over file
// values. A missing ./.env is not an error.
func Load(files ...string) (Config, error) {
	if err := loadDotenv(files...); err != nil {
		return Config{}, err
	}
	return parse(env.Options{})
}

func loadDotenv(files ...string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Join(ErrDotenv, err)
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrDotenv, err)
	}
	return nil
}

func parse(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, errors.Join(ErrParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every enabled backend has a connection URL.
func (c Config) Validate() error {
	var errs []error
	if c.Session.EnablePostgres && c.DB.ConnectionString == "" {
		errs = append(errs, ErrPostgresURLRequired)
	}
	if c.Session.EnableRedis && c.Redis.URL == "" {
		errs = append(errs, ErrRedisURLRequired)
	}
	return errors.Join(errs...)
}
