// Package pgstore implements the sessioncache relational backend on PostgreSQL
// using [github.com/jackc/pgx/v5].
//
// Each session is one row keyed by its bare ID; the session itself is stored as
// an opaque blob:
//
//	CREATE TABLE sessions (
//	    id         TEXT PRIMARY KEY,
//	    data       BYTEA NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//
// The schema ships as an embedded goose migration:
//
//	if err := db.Migrate(ctx, pool, pgstore.Migrations, pgstore.MigrationsDir, "schema_migrations", log); err != nil {
//		return err
//	}
//
//	store, err := pgstore.New(pool)
//	if err != nil {
//		return err
//	}
//	c := sessioncache.New(sessioncache.WithRelational(store))
//
// PostgreSQL has no native row expiry. Rows of expired sessions stay until the
// session is removed through the cache; restore loads them and the cache sweeper
// drops them from memory.
package pgstore
