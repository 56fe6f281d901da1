// internal/adapter/storage/storage.go

package storage

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("not found")

//go:embed schema.sql
var schema string

// Migrate creates the tables used by the stores if they do not exist
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("error applying schema: %w", err)
	}
	return nil
}
