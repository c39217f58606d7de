package pgstore

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/sessioncache/pkg/sessioncache"
)

// Migrations holds the goose migrations that create the sessions table.
// Pass it to db.Migrate together with MigrationsDir.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations holding the SQL files.
const MigrationsDir = "migrations"

const defaultTable = "sessions"

// Querier is the subset of pgx used by the store.
// *pgxpool.Pool, *pgx.Conn and pgx.Tx all satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Option configures the store.
type Option func(*Store)

// WithTable overrides the table name. The table must have the same columns
// as the one created by Migrations.
// Default: "sessions"
func WithTable(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.table = name
		}
	}
}

// Store keeps session blobs in PostgreSQL, one row per session ID.
type Store struct {
	db    Querier
	table string

	loadSQL   string
	upsertSQL string
	deleteSQL string
}

// New creates a PostgreSQL session store.
//
// Example:
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	store, err := pgstore.New(pool)
func New(db Querier, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilQuerier
	}

	s := &Store{db: db, table: defaultTable}
	for _, opt := range opts {
		opt(s)
	}

	table := pgx.Identifier{s.table}.Sanitize()
	s.loadSQL = fmt.Sprintf("SELECT data FROM %s", table)
	s.upsertSQL = fmt.Sprintf(
		`INSERT INTO %s (id, data, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		table,
	)
	s.deleteSQL = fmt.Sprintf("DELETE FROM %s WHERE id = $1", table)

	return s, nil
}

// Table returns the table name the store reads and writes.
func (s *Store) Table() string {
	return s.table
}

// LoadAll returns the blob of every stored session.
func (s *Store) LoadAll(ctx context.Context) ([][]byte, error) {
	rows, err := s.db.Query(ctx, s.loadSQL)
	if err != nil {
		return nil, errors.Join(ErrLoad, err)
	}

	blobs, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, errors.Join(ErrLoad, err)
	}
	return blobs, nil
}

// Upsert inserts the session blob or replaces the existing one.
func (s *Store) Upsert(ctx context.Context, id string, blob []byte) error {
	if _, err := s.db.Exec(ctx, s.upsertSQL, id, blob); err != nil {
		return errors.Join(ErrUpsert, err)
	}
	return nil
}

// Delete removes the session row. A missing row is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, s.deleteSQL, id); err != nil {
		return errors.Join(ErrDelete, err)
	}
	return nil
}

var _ sessioncache.RelationalBackend = (*Store)(nil)
