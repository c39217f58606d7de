package pgstore_test

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessioncache/pkg/pgstore"
)

type execCall struct {
	sql  string
	args []any
}

// recordingQuerier records Exec calls. Query is not used by these tests.
type recordingQuerier struct {
	err   error
	calls []execCall
}

func (q *recordingQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.calls = append(q.calls, execCall{sql: sql, args: args})
	return pgconn.CommandTag{}, q.err
}

func (q *recordingQuerier) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, q.err
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil querier returns ErrNilQuerier", func(t *testing.T) {
		t.Parallel()

		store, err := pgstore.New(nil)
		require.ErrorIs(t, err, pgstore.ErrNilQuerier)
		require.Nil(t, store)
	})

	t.Run("default and custom table", func(t *testing.T) {
		t.Parallel()

		store, err := pgstore.New(&recordingQuerier{})
		require.NoError(t, err)
		require.Equal(t, "sessions", store.Table())

		store, err = pgstore.New(&recordingQuerier{}, pgstore.WithTable("auth_sessions"))
		require.NoError(t, err)
		require.Equal(t, "auth_sessions", store.Table())

		store, err = pgstore.New(&recordingQuerier{}, pgstore.WithTable(""))
		require.NoError(t, err)
		require.Equal(t, "sessions", store.Table())
	})
}

func TestStore_Upsert(t *testing.T) {
	t.Parallel()

	t.Run("issues insert on conflict update", func(t *testing.T) {
		t.Parallel()

		q := &recordingQuerier{}
		store, err := pgstore.New(q, pgstore.WithTable("auth_sessions"))
		require.NoError(t, err)

		require.NoError(t, store.Upsert(context.Background(), "abc", []byte(`{"id":"abc"}`)))
		require.Len(t, q.calls, 1)
		require.Contains(t, q.calls[0].sql, `INSERT INTO "auth_sessions"`)
		require.Contains(t, q.calls[0].sql, "ON CONFLICT (id) DO UPDATE")
		require.Equal(t, []any{"abc", []byte(`{"id":"abc"}`)}, q.calls[0].args)
	})

	t.Run("wraps driver errors", func(t *testing.T) {
		t.Parallel()

		q := &recordingQuerier{err: errors.New("conn closed")}
		store, err := pgstore.New(q)
		require.NoError(t, err)

		err = store.Upsert(context.Background(), "abc", nil)
		require.ErrorIs(t, err, pgstore.ErrUpsert)
		require.ErrorIs(t, err, q.err)
	})
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()

	q := &recordingQuerier{}
	store, err := pgstore.New(q)
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), "abc"))
	require.Len(t, q.calls, 1)
	require.Equal(t, `DELETE FROM "sessions" WHERE id = $1`, q.calls[0].sql)
	require.Equal(t, []any{"abc"}, q.calls[0].args)

	q.err = errors.New("timeout")
	require.ErrorIs(t, store.Delete(context.Background(), "abc"), pgstore.ErrDelete)
}

func TestStore_LoadAllQueryError(t *testing.T) {
	t.Parallel()

	q := &recordingQuerier{err: errors.New("relation does not exist")}
	store, err := pgstore.New(q)
	require.NoError(t, err)

	blobs, err := store.LoadAll(context.Background())
	require.ErrorIs(t, err, pgstore.ErrLoad)
	require.Nil(t, blobs)
}

func TestMigrations(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(pgstore.Migrations, pgstore.MigrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	data, err := fs.ReadFile(pgstore.Migrations, pgstore.MigrationsDir+"/"+entries[0].Name())
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "-- +goose Up"))
	require.True(t, strings.Contains(string(data), "CREATE TABLE IF NOT EXISTS sessions"))
}
