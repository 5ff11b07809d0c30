package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/loginvault/internal/aead"
	"github.com/dtroode/loginvault/internal/mocks"
	"github.com/dtroode/loginvault/internal/model"
	"github.com/dtroode/loginvault/internal/session"
	"github.com/dtroode/loginvault/internal/testutil"
)

func newKeyManager(t *testing.T) (*KeyManager, *session.Store) {
	t.Helper()
	store := session.NewStore(testutil.MakeNoopLogger())
	t.Cleanup(func() { _ = store.Close() })
	return NewKeyManager(store, aead.AESGCM, testutil.MakeNoopLogger()), store
}

func TestKeyManager_GetKeyNeverCreates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, store := newKeyManager(t)

	_, ok, err := m.GetKey(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.Get(ctx, model.KeySessionKey)
	require.NoError(t, err)
	assert.False(t, ok, "a read must not mint a key")
}

func TestKeyManager_GetOrCreateKeyIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, store := newKeyManager(t)

	first, err := m.GetOrCreateKey(ctx)
	require.NoError(t, err)

	raw, ok, err := store.Get(ctx, model.KeySessionKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, raw, aead.KeySize)

	second, err := m.GetOrCreateKey(ctx)
	require.NoError(t, err)

	rawAgain, _, err := store.Get(ctx, model.KeySessionKey)
	require.NoError(t, err)
	assert.Equal(t, raw, rawAgain)

	blob, err := first.Seal([]byte("pw"))
	require.NoError(t, err)
	got, err := second.Open(blob)
	require.NoError(t, err)
	assert.Equal(t, "pw", string(got))

	read, ok, err := m.GetKey(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	got, err = read.Open(blob)
	require.NoError(t, err)
	assert.Equal(t, "pw", string(got))
}

func TestKeyManager_ConcurrentGetOrCreateKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _ := newKeyManager(t)

	const workers = 16
	keys := make([]Key, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			k, err := m.GetOrCreateKey(ctx)
			assert.NoError(t, err)
			keys[i] = k
		}(i)
	}
	wg.Wait()

	blob, err := keys[0].Seal([]byte("pw"))
	require.NoError(t, err)
	for _, k := range keys[1:] {
		_, err := k.Open(blob)
		assert.NoError(t, err, "every caller must observe the same key")
	}
}

func TestKeyManager_ClearOrphansBlobs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _ := newKeyManager(t)

	old, err := m.GetOrCreateKey(ctx)
	require.NoError(t, err)
	blob, err := old.Seal([]byte("pw"))
	require.NoError(t, err)

	require.NoError(t, m.Clear(ctx))
	_, ok, err := m.GetKey(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	fresh, err := m.GetOrCreateKey(ctx)
	require.NoError(t, err)
	_, err = fresh.Open(blob)
	assert.ErrorIs(t, err, aead.ErrOpen)
}

func TestKeyManager_MalformedKeyIsAbsent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, store := newKeyManager(t)
	require.NoError(t, store.Set(ctx, model.KeySessionKey, []byte("short")))

	_, ok, err := m.GetKey(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = m.GetOrCreateKey(ctx)
	require.NoError(t, err)
	raw, _, err := store.Get(ctx, model.KeySessionKey)
	require.NoError(t, err)
	assert.Len(t, raw, aead.KeySize)
}

func TestKeyManager_StoreErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("get fails", func(t *testing.T) {
		t.Parallel()
		store := mocks.NewSessionStore(t)
		store.On("Get", mock.Anything, model.KeySessionKey).Return(nil, false, boom)
		m := NewKeyManager(store, aead.AESGCM, testutil.MakeNoopLogger())

		_, _, err := m.GetKey(ctx)
		assert.ErrorIs(t, err, boom)
		_, err = m.GetOrCreateKey(ctx)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("set fails", func(t *testing.T) {
		t.Parallel()
		store := mocks.NewSessionStore(t)
		store.On("Get", mock.Anything, model.KeySessionKey).Return(nil, false, nil)
		store.On("Set", mock.Anything, model.KeySessionKey, mock.AnythingOfType("[]uint8")).Return(boom)
		m := NewKeyManager(store, aead.AESGCM, testutil.MakeNoopLogger())

		_, err := m.GetOrCreateKey(ctx)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("remove fails", func(t *testing.T) {
		t.Parallel()
		store := mocks.NewSessionStore(t)
		store.On("Remove", mock.Anything, model.KeySessionKey).Return(boom)
		m := NewKeyManager(store, aead.AESGCM, testutil.MakeNoopLogger())

		assert.ErrorIs(t, m.Clear(ctx), boom)
	})
}
