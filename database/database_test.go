package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestMigrateSQLite(t *testing.T) {
	db, err := sql.Open("sqlite", "file:migrate_test?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, MigrateSQLite(ctx, db))
	// Applying twice is a no-op.
	require.NoError(t, MigrateSQLite(ctx, db))

	_, err = db.ExecContext(ctx, `INSERT INTO vault_items (key, value) VALUES (?, ?)`, "company_code", []byte("12345"))
	require.NoError(t, err)

	var value []byte
	require.NoError(t, db.QueryRowContext(ctx, `SELECT value FROM vault_items WHERE key = ?`, "company_code").Scan(&value))
	require.Equal(t, []byte("12345"), value)
}
