package db

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

// RunMigrations applies embedded SQL migrations via goose. If database is nil, it's a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	if err := useEmbedded(); err != nil {
		return err
	}
	return goose.UpContext(ctx, database, migrationsDir)
}

// Migrate runs an arbitrary goose command (status, down, version, ...) against the embedded migrations.
func Migrate(ctx context.Context, database *sql.DB, command string, args ...string) error {
	if database == nil {
		return nil
	}
	if err := useEmbedded(); err != nil {
		return err
	}
	return goose.RunContext(ctx, command, database, migrationsDir, args...)
}

func useEmbedded() error {
	goose.SetBaseFS(migrationFiles)
	return goose.SetDialect("postgres")
}
