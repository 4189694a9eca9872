package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // goose migration driver
	"github.com/pressly/goose/v3"
)

// Migrate applies all pending goose migrations from the given directory.
// goose runs over database/sql, so a separate lib/pq connection is opened
// for the duration of the migration and closed afterwards.
func Migrate(ctx context.Context, dsn, migrationsDir string) error {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer sqlDB.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
