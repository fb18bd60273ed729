package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/vmunix/vidfmt/internal/migrations"
	"github.com/vmunix/vidfmt/pkg/sites"
)

// mappingsKey is the kv row holding the custom mappings document.
const mappingsKey = "site_mappings"

// Open opens or creates the SQLite database at path and applies migrations.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrations.Apply(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// SQLiteStore keeps the mappings document in the kv table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store over an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Load returns the saved mappings. A corrupt document yields an error wrapping sites.ErrMalformed.
func (s *SQLiteStore) Load(ctx context.Context) (map[string]string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM kv WHERE key = ?", mappingsKey,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load mappings: %w", err)
	}

	m, err := sites.DecodeMappings([]byte(value))
	if err != nil {
		return nil, fmt.Errorf("load mappings: %w", err)
	}
	return m, nil
}

// Save replaces the saved mappings.
func (s *SQLiteStore) Save(ctx context.Context, mappings map[string]string) error {
	if mappings == nil {
		mappings = map[string]string{}
	}
	data, err := json.Marshal(mappings)
	if err != nil {
		return fmt.Errorf("save mappings: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		mappingsKey, string(data),
	)
	if err != nil {
		return fmt.Errorf("save mappings: %w", err)
	}
	return nil
}
