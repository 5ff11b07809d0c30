// Package aead seals and opens short secrets with a 256-bit key and a 96-bit
// random nonce.
package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/dtroode/loginvault/internal/model"
)

const (
	// KeySize is the raw key length in bytes.
	KeySize = 32
	// NonceSize is the nonce length in bytes.
	NonceSize = 12
)

// Algorithm names a supported AEAD construction.
type Algorithm string

const (
	AESGCM           Algorithm = "aes-gcm"
	ChaCha20Poly1305 Algorithm = "chacha20-poly1305"
)

var (
	ErrInvalidKeySize   = errors.New("aead: key must be 32 bytes")
	ErrInvalidNonceSize = errors.New("aead: nonce must be 12 bytes")
	ErrOpen             = errors.New("aead: message authentication failed")
)

// ParseAlgorithm validates an algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch alg := Algorithm(name); alg {
	case AESGCM, ChaCha20Poly1305:
		return alg, nil
	default:
		return "", fmt.Errorf("aead: unsupported algorithm %q", name)
	}
}

// New imports raw key bytes into an AEAD handle.
func New(alg Algorithm, key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}

	switch alg {
	case AESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create cipher: %w", err)
		}
		return cipher.NewGCM(block)
	case ChaCha20Poly1305:
		return chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("aead: unsupported algorithm %q", alg)
	}
}

// GenerateKey returns KeySize random bytes.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// Seal encrypts plaintext under a fresh random nonce.
func Seal(a cipher.AEAD, plaintext []byte) (model.EncryptedBlob, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return model.EncryptedBlob{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return SealWithNonce(a, nonce, plaintext)
}

// SealWithNonce encrypts plaintext under the given nonce. A nonce must never be
// reused with the same key.
func SealWithNonce(a cipher.AEAD, nonce, plaintext []byte) (model.EncryptedBlob, error) {
	if len(nonce) != NonceSize || a.NonceSize() != NonceSize {
		return model.EncryptedBlob{}, ErrInvalidNonceSize
	}

	return model.EncryptedBlob{
		Ciphertext: a.Seal(nil, nonce, plaintext, nil),
		Nonce:      nonce,
	}, nil
}

// Open decrypts and authenticates a blob. Any mismatch in key, nonce or
// ciphertext yields ErrOpen.
func Open(a cipher.AEAD, blob model.EncryptedBlob) ([]byte, error) {
	if len(blob.Nonce) != NonceSize {
		return nil, ErrInvalidNonceSize
	}

	plaintext, err := a.Open(nil, blob.Nonce, blob.Ciphertext, nil)
	if err != nil {
		return nil, ErrOpen
	}
	return plaintext, nil
}
