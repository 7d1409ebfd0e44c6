// Package migrations provides the embedded history schema.
package migrations

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed sql/001_events.sql
var EventsSQL string

// Apply creates the history schema. It is safe to run on every start.
func Apply(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, EventsSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
