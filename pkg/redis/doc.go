// Package redis provides the Redis client plumbing behind the session key/value store.
//
// [Connect] builds a go-redis client from a [Config], usually parsed from the
// REDIS_* environment variables, and pings it with linear-backoff retries.
// [Open] does the same from a bare URL plus [Option] overrides. Settings left
// at zero take their [DefaultConfig] value; the URL itself supplies the
// address, database, credentials and TLS (rediss://).
//
//	client, err := redis.Connect(ctx, cfg.Redis)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store, err := redisstore.New(client)
//	if err != nil {
//		return err
//	}
//	c := sessioncache.New(sessioncache.WithKV(store))
//
// [Healthcheck] and [Shutdown] plug into the readiness check and the shutdown
// hook list. Errors wrap the sentinels in errors.go with [errors.Join].
package redis
