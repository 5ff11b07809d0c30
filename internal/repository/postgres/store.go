package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/loginvault/internal/model"
)

var _ model.DurableStore = (*Store)(nil)

// Store keeps vault fields as rows of the vault_items table.
type Store struct {
	db *Connection
}

func NewStore(db *Connection) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	query := `SELECT key, value FROM vault_items WHERE key = ANY($1)`

	rows, err := s.db.Query(ctx, query, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to query vault items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]byte, len(keys))
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
	query := `
		INSERT INTO vault_items (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		for key, value := range items {
			if _, err := tx.Exec(ctx, query, key, value); err != nil {
				return fmt.Errorf("failed to upsert %s: %w", key, err)
			}
		}
		return nil
	})
}

func (s *Store) Remove(ctx context.Context, keys ...string) error {
	query := `DELETE FROM vault_items WHERE key = ANY($1)`

	if _, err := s.db.Exec(ctx, query, keys); err != nil {
		return fmt.Errorf("failed to delete vault items: %w", err)
	}
	return nil
}
