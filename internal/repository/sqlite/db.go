// Package sqlite keeps vault fields in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/dtroode/loginvault/database"
)

// DB holds a single-connection writer and a small reader pool over one
// WAL-mode database file.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
}

// Open opens the database at path and applies pending migrations.
func Open(ctx context.Context, path string) (*DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(FULL)",
		path,
	)
	return open(ctx, dsn)
}

func open(ctx context.Context, dsn string) (*DB, error) {
	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	if err := writer.PingContext(ctx); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to ping writer: %w", err)
	}

	if err := database.MigrateSQLite(ctx, writer); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to open reader: %w", err)
	}
	reader.SetMaxOpenConns(4)

	return &DB{Writer: writer, Reader: reader}, nil
}

// Close closes both connections and returns the first error.
func (db *DB) Close() error {
	var firstErr error
	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("failed to close reader: %w", err)
	}
	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close writer: %w", err)
	}
	return firstErr
}

// Ping checks both connection pools.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.Writer.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping writer: %w", err)
	}
	if err := db.Reader.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping reader: %w", err)
	}
	return nil
}
