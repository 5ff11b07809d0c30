package service

import (
	"context"
	"crypto/cipher"
	"fmt"
	"sync"

	"github.com/dtroode/loginvault/internal/aead"
	"github.com/dtroode/loginvault/internal/logger"
	"github.com/dtroode/loginvault/internal/model"
	"github.com/dtroode/loginvault/internal/secret"
)

// Key is an imported session key. The raw bytes stay in the session store;
// a Key only exposes seal and open.
type Key struct {
	aead cipher.AEAD
}

// Seal encrypts plaintext under a fresh nonce.
func (k Key) Seal(plaintext []byte) (model.EncryptedBlob, error) {
	return aead.Seal(k.aead, plaintext)
}

// Open decrypts a blob sealed under this key.
func (k Key) Open(blob model.EncryptedBlob) ([]byte, error) {
	return aead.Open(k.aead, blob)
}

// KeyManager owns the symmetric vault key held in the session store.
type KeyManager struct {
	mu     sync.Mutex
	store  model.SessionStore
	alg    aead.Algorithm
	logger *logger.Logger
}

// NewKeyManager creates a KeyManager backed by the given session store.
func NewKeyManager(store model.SessionStore, alg aead.Algorithm, logger *logger.Logger) *KeyManager {
	return &KeyManager{
		store:  store,
		alg:    alg,
		logger: logger,
	}
}

// GetOrCreateKey returns the active key, minting and storing a new one if the
// session holds none. An existing key is never replaced.
func (m *KeyManager) GetOrCreateKey(ctx context.Context) (Key, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, ok, err := m.load(ctx)
	if err != nil {
		return Key{}, err
	}
	if ok {
		return key, nil
	}

	raw, err := aead.GenerateKey()
	if err != nil {
		return Key{}, err
	}
	defer secret.Wipe(raw)

	handle, err := aead.New(m.alg, raw)
	if err != nil {
		return Key{}, fmt.Errorf("failed to import session key: %w", err)
	}

	if err := m.store.Set(ctx, model.KeySessionKey, raw); err != nil {
		return Key{}, fmt.Errorf("failed to store session key: %w", err)
	}

	m.logger.Info("KeyManager: minted new session key", "alg", m.alg)

	return Key{aead: handle}, nil
}

// GetKey returns the active key. It never creates one.
func (m *KeyManager) GetKey(ctx context.Context) (Key, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.load(ctx)
}

// Clear removes the key. Every blob sealed under it becomes undecryptable.
func (m *KeyManager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Remove(ctx, model.KeySessionKey); err != nil {
		return fmt.Errorf("failed to remove session key: %w", err)
	}
	return nil
}

func (m *KeyManager) load(ctx context.Context) (Key, bool, error) {
	raw, ok, err := m.store.Get(ctx, model.KeySessionKey)
	if err != nil {
		return Key{}, false, fmt.Errorf("failed to read session key: %w", err)
	}
	if !ok {
		return Key{}, false, nil
	}
	defer secret.Wipe(raw)

	if len(raw) != aead.KeySize {
		m.logger.Warn("KeyManager: ignoring malformed session key", "length", len(raw))
		return Key{}, false, nil
	}

	handle, err := aead.New(m.alg, raw)
	if err != nil {
		return Key{}, false, fmt.Errorf("failed to import session key: %w", err)
	}

	return Key{aead: handle}, true, nil
}
