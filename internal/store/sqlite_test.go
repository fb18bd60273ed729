package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/vidfmt/internal/migrations"
	"github.com/vmunix/vidfmt/pkg/sites"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "open db")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Apply(context.Background(), db), "apply schema")
	return db
}

func TestSQLiteStore_LoadEmpty(t *testing.T) {
	s := NewSQLiteStore(setupTestDB(t))

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := NewSQLiteStore(setupTestDB(t))

	require.NoError(t, s.Save(ctx, map[string]string{"newsite": "NewSite"}))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"newsite": "NewSite"}, got)

	// A second save replaces the document.
	require.NoError(t, s.Save(ctx, map[string]string{"other": "Other"}))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"other": "Other"}, got)
}

func TestSQLiteStore_SaveNil(t *testing.T) {
	ctx := context.Background()
	s := NewSQLiteStore(setupTestDB(t))

	require.NoError(t, s.Save(ctx, nil))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStore_CorruptDocument(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	_, err := db.Exec("INSERT INTO kv (key, value) VALUES (?, ?)", mappingsKey, `{"a": {"nested": true}}`)
	require.NoError(t, err)

	_, err = NewSQLiteStore(db).Load(ctx)
	assert.ErrorIs(t, err, sites.ErrMalformed)
}

func TestOpen_CreatesAndMigrates(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "vidfmt.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)

	s := NewSQLiteStore(db)
	require.NoError(t, s.Save(ctx, map[string]string{"k": "V"}))
	require.NoError(t, db.Close())

	// Reopening applies migrations again and keeps the data.
	db, err = Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	got, err := NewSQLiteStore(db).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"k": "V"}, got)
}
