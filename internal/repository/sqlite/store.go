package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/dtroode/loginvault/internal/model"
)

var _ model.DurableStore = (*Store)(nil)

// Store keeps vault fields as rows of the vault_items table.
type Store struct {
	db *DB
}

func NewStore(db *DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	items := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return items, nil
	}

	query := `SELECT key, value FROM vault_items WHERE key IN (` + placeholders(len(keys)) + `)`

	rows, err := s.db.Reader.QueryContext(ctx, query, anySlice(keys)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vault items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan vault item: %w", err)
		}
		items[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vault items: %w", err)
	}

	return items, nil
}

// Set upserts all items in one transaction.
func (s *Store) Set(ctx context.Context, items map[string][]byte) error {
	const query = `INSERT OR REPLACE INTO vault_items (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`

	tx, err := s.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for key, value := range items {
		if _, err := tx.ExecContext(ctx, query, key, value); err != nil {
			return fmt.Errorf("failed to upsert %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	query := `DELETE FROM vault_items WHERE key IN (` + placeholders(len(keys)) + `)`

	if _, err := s.db.Writer.ExecContext(ctx, query, anySlice(keys)...); err != nil {
		return fmt.Errorf("failed to delete vault items: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func anySlice(keys []string) []any {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	return args
}
