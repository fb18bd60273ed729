// Package migrations provides embedded SQL migration files.
package migrations

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed sql/001_initial.sql
var InitialSQL string

// Apply runs every migration. Statements are idempotent, so it is safe on an existing database.
func Apply(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, InitialSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
