// Package database holds the schema migrations for the SQL durable stores.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// goose keeps its dialect and filesystem in package state.
var mu sync.Mutex

// Migrate applies the PostgreSQL migrations to the database at dsn.
func Migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return up(ctx, db, "postgres", "migrations/postgres")
}

// MigrateSQLite applies the SQLite migrations through db.
func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	return up(ctx, db, "sqlite3", "migrations/sqlite")
}

func up(ctx context.Context, db *sql.DB, dialect, dir string) error {
	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(log.New(io.Discard, "", 0))

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
