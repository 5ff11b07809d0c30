package sqlite

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/loginvault/internal/model"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", url.PathEscape(t.Name()))
	db, err := open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func setupMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})

	return &DB{Writer: conn, Reader: conn}, mock
}

func TestStore_SetGetRemove(t *testing.T) {
	t.Parallel()

	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	got, err := store.Get(ctx, model.DurableKeys...)
	require.NoError(t, err)
	assert.Empty(t, got)

	items := map[string][]byte{
		model.KeyCompanyCode:        []byte("12345"),
		model.KeyEmployeeCode:       []byte("678"),
		model.KeyPasswordCiphertext: {0x01, 0x02, 0x00, 0xff},
		model.KeyPasswordNonce:      make([]byte, 12),
	}
	require.NoError(t, store.Set(ctx, items))

	got, err = store.Get(ctx, model.DurableKeys...)
	require.NoError(t, err)
	assert.Equal(t, items, got)

	require.NoError(t, store.Set(ctx, map[string][]byte{model.KeyCompanyCode: []byte("9")}))
	got, err = store.Get(ctx, model.KeyCompanyCode, model.KeyEmployeeCode)
	require.NoError(t, err)
	assert.Equal(t, []byte("9"), got[model.KeyCompanyCode])
	assert.Equal(t, []byte("678"), got[model.KeyEmployeeCode])

	require.NoError(t, store.Remove(ctx, model.KeyPasswordCiphertext, model.KeyPasswordNonce))
	got, err = store.Get(ctx, model.DurableKeys...)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStore_EmptyKeys(t *testing.T) {
	t.Parallel()

	store := NewStore(setupTestDB(t))

	got, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, store.Remove(context.Background()))
}

func TestStore_ConcurrentSets(t *testing.T) {
	t.Parallel()

	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v := []byte(fmt.Sprint(i))
			assert.NoError(t, store.Set(ctx, map[string][]byte{
				model.KeyCompanyCode:  v,
				model.KeyEmployeeCode: v,
			}))
		}(i)
	}
	wg.Wait()

	got, err := store.Get(ctx, model.KeyCompanyCode, model.KeyEmployeeCode)
	require.NoError(t, err)
	assert.Equal(t, got[model.KeyCompanyCode], got[model.KeyEmployeeCode])
}

func TestStore_Set_RollsBackOnFailure(t *testing.T) {
	t.Parallel()

	db, mock := setupMockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT OR REPLACE INTO vault_items").
		WithArgs(model.KeyCompanyCode, []byte("1")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.Set(context.Background(), map[string][]byte{model.KeyCompanyCode: []byte("1")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Set_CommitFailure(t *testing.T) {
	t.Parallel()

	db, mock := setupMockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT OR REPLACE INTO vault_items").
		WithArgs(model.KeyCompanyCode, []byte("1")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("locked"))

	err := store.Set(context.Background(), map[string][]byte{model.KeyCompanyCode: []byte("1")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Set_BeginFailure(t *testing.T) {
	t.Parallel()

	db, mock := setupMockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("busy"))

	err := NewStore(db).Set(context.Background(), map[string][]byte{model.KeyCompanyCode: []byte("1")})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get_QueryFailure(t *testing.T) {
	t.Parallel()

	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT key, value FROM vault_items").
		WithArgs(model.KeyCompanyCode).
		WillReturnError(errors.New("io error"))

	_, err := NewStore(db).Get(context.Background(), model.KeyCompanyCode)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get_ScanRows(t *testing.T) {
	t.Parallel()

	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT key, value FROM vault_items").
		WithArgs(model.KeyCompanyCode, model.KeyEmployeeCode).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).
			AddRow(model.KeyCompanyCode, []byte("12345")))

	got, err := NewStore(db).Get(context.Background(), model.KeyCompanyCode, model.KeyEmployeeCode)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{model.KeyCompanyCode: []byte("12345")}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Remove_Failure(t *testing.T) {
	t.Parallel()

	db, mock := setupMockDB(t)
	mock.ExpectExec("DELETE FROM vault_items").
		WithArgs(model.KeyCompanyCode, model.KeyEmployeeCode).
		WillReturnError(errors.New("readonly"))

	err := NewStore(db).Remove(context.Background(), model.KeyCompanyCode, model.KeyEmployeeCode)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_Ping(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	require.NoError(t, db.Ping(context.Background()))

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}
