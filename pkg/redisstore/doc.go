// Package redisstore implements the sessioncache key/value backend on Redis
// using [github.com/redis/go-redis/v9].
//
// Sessions are written with SET ... PX so Redis expires them on its own, even
// if the writing process dies. Restore discovers keys with SCAN (cursor 0 both
// starts and ends an iteration) and fetches them with a single MGET.
package redisstore
