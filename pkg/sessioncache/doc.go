// Package sessioncache provides an in-process session cache with write-coalescing
// persistence to optional relational and key/value backends.
//
// Memory is the source of truth for reads. Backends are best-effort mirrors used
// to survive restarts and to share sessions between processes.
//
// # Write Coalescing
//
// Upsert stores the session in memory and arms a per-ID timer. Another Upsert for
// the same ID within the quiet period re-arms the timer instead of queueing a
// second write, so a burst of N updates produces one backend write carrying the
// last value. When the timer fires the current value is re-read from memory:
//
//   - a session removed in the meantime is not written
//   - a session already expired is not written
//   - otherwise it is written to every enabled backend; the key/value write
//     carries the remaining TTL so the backend expires it on its own
//
// Write and delete failures are logged and counted, never returned to callers.
//
// # Expiration
//
// A background sweeper started by [Cache.Start] evicts expired sessions from
// memory every sweep interval (default 1 minute). Backends are not touched by
// the sweep.
//
// # Restore
//
// [Cache.Restore] loads all sessions from the enabled backends at startup.
// Relational rows are applied first and key/value entries second, so the key/value
// copy wins on conflict. Malformed entries are skipped individually.
//
// # Usage
//
//	pool, _ := db.Connect(ctx, dbCfg)
//	client, _ := redis.Open(ctx, redisCfg.URL)
//
//	rel, _ := pgstore.New(pool)
//	kv, _ := redisstore.New(client)
//
//	c := sessioncache.New(
//		sessioncache.WithRelational(rel),
//		sessioncache.WithKV(kv),
//		sessioncache.WithNamespace("myapp"),
//	)
//	if err := c.Restore(ctx); err != nil {
//		return err
//	}
//	if err := c.Start(ctx); err != nil {
//		return err
//	}
//	defer c.Close(context.Background())
//
//	_ = c.Upsert(session.New(id, time.Now().Add(24*time.Hour)))
//	s, ok := c.Get(id)
//	c.Remove(ctx, id)
//
// # Keys
//
// Key/value entries are stored as "<namespace>:session:<id>" and discovered with
// the pattern "<namespace>:session:*". Relational rows use the bare ID.
//
// # Metrics
//
// Prometheus counters are registered on the default registry under the
// sessioncache_ prefix: writes, coalesced writes, aborted writes, deletes,
// swept and restored sessions.
package sessioncache
