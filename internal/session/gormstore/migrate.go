package gormstore

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*/*.sql
var migrations embed.FS

const migrationTable = "session_schema_migrations"

// Migrate applies (or with down=true rolls back one step of) the embedded schema for driver.
func Migrate(ctx context.Context, db *gorm.DB, driver string, down bool) error {
	dialect, dir, err := dialectFor(driver)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("goose: failed to get sql db: %w", err)
	}

	goose.SetBaseFS(migrations)
	goose.SetTableName(migrationTable)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose: %w", err)
	}

	if down {
		if err := goose.DownContext(ctx, sqlDB, dir); err != nil {
			return fmt.Errorf("goose down: %w", err)
		}
		return nil
	}
	if err := goose.UpContext(ctx, sqlDB, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func dialectFor(driver string) (dialect, dir string, err error) {
	switch driver {
	case "sqlite":
		return "sqlite3", "migrations/sqlite3", nil
	case "postgres":
		return "postgres", "migrations/postgres", nil
	}
	return "", "", fmt.Errorf("no migrations for session driver %q", driver)
}
