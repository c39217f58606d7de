package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/dmitrymomot/sessioncache/internal/config"
	"github.com/dmitrymomot/sessioncache/internal/server"
	"github.com/dmitrymomot/sessioncache/pkg/db"
	"github.com/dmitrymomot/sessioncache/pkg/logger"
	"github.com/dmitrymomot/sessioncache/pkg/pgstore"
	"github.com/dmitrymomot/sessioncache/pkg/redis"
	"github.com/dmitrymomot/sessioncache/pkg/redisstore"
	"github.com/dmitrymomot/sessioncache/pkg/sessioncache"
)

func main() {
	app := cli.App{
		Name:  "sessioncache",
		Usage: "in-process session cache with Postgres and Redis persistence",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "env-file",
				Usage:   "env files to load before reading the environment (default: ./.env if present)",
				EnvVars: []string{"SESSIONCACHE_ENV_FILE"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "restore sessions and serve the HTTP API",
				Action: runServe,
			},
			{
				Name:   "migrate",
				Usage:  "apply the sessions table migration and exit",
				Action: runMigrate,
			},
		},
		DefaultCommand: "serve",
	}
	app.RunAndExitOnError()
}

func setup(cctx *cli.Context) (config.Config, *slog.Logger, func(), error) {
	cfg, err := config.Load(cctx.StringSlice("env-file")...)
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	log, flush := logger.New(cfg.Log, logger.SessionIDExtractor(), server.RequestIDExtractor())
	slog.SetDefault(log)
	return cfg, log, flush, nil
}

func runMigrate(cctx *cli.Context) error {
	cfg, log, flush, err := setup(cctx)
	if err != nil {
		return err
	}
	defer flush()

	if cfg.DB.ConnectionString == "" {
		return db.ErrEmptyConnectionURL
	}

	pool, err := db.Connect(cctx.Context, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	return db.Migrate(cctx.Context, pool, pgstore.Migrations, pgstore.MigrationsDir, cfg.DB.MigrationsTable, log)
}

func runServe(cctx *cli.Context) error {
	cfg, log, flush, err := setup(cctx)
	if err != nil {
		return err
	}
	defer flush()

	ctx, stop := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := append(cfg.Session.Options(), sessioncache.WithLogger(log))
	srvOpts := []server.Option{server.WithLogger(log)}
	var clientHooks []func(context.Context) error

	if cfg.Session.EnablePostgres {
		pool, err := db.Connect(ctx, cfg.DB)
		if err != nil {
			return err
		}
		clientHooks = append(clientHooks, db.Shutdown(pool))

		if cfg.DB.AutoMigrate {
			if err := db.Migrate(ctx, pool, pgstore.Migrations, pgstore.MigrationsDir, cfg.DB.MigrationsTable, log); err != nil {
				pool.Close()
				return err
			}
		}

		store, err := pgstore.New(pool)
		if err != nil {
			pool.Close()
			return err
		}
		log.InfoContext(ctx, "postgres session store ready", slog.String("table", store.Table()))
		opts = append(opts, sessioncache.WithRelational(store))
		srvOpts = append(srvOpts, server.WithCheck("postgres", db.Healthcheck(pool)))
	}

	if cfg.Session.EnableRedis {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			runHooks(context.Background(), log, clientHooks)
			return err
		}
		clientHooks = append(clientHooks, redis.Shutdown(client))

		store, err := redisstore.New(client)
		if err != nil {
			runHooks(context.Background(), log, clientHooks)
			return err
		}
		opts = append(opts, sessioncache.WithKV(store))
		srvOpts = append(srvOpts, server.WithCheck("redis", redis.Healthcheck(client)))
	}

	cache := sessioncache.New(opts...)

	// A partial restore is logged and the service starts with what it has.
	if err := cache.Restore(ctx); err != nil {
		log.WarnContext(ctx, "session restore incomplete", slog.Any("error", err))
	}

	if err := cache.Start(ctx); err != nil {
		runHooks(context.Background(), log, clientHooks)
		return err
	}
	srvOpts = append(srvOpts, server.WithCheck("cache", cache.Healthcheck()))

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      server.New(cache, srvOpts...).Handler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	// The cache closes before the clients so its final flush can reach them.
	hooks := append([]func(context.Context) error{cache.Close}, clientHooks...)
	return server.Run(ctx, srv, cfg.HTTP.ShutdownTimeout, log, hooks...)
}

func runHooks(ctx context.Context, log *slog.Logger, hooks []func(context.Context) error) {
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			log.ErrorContext(ctx, "cleanup failed", slog.Any("error", err))
		}
	}
}
