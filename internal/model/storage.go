package model

import "context"

// DurableStore is storage that survives process restarts. It only ever holds
// plaintext identifiers and sealed password blobs.
type DurableStore interface {
	// Get returns the values present for the given keys. Missing keys are
	// absent from the result rather than reported as errors.
	Get(ctx context.Context, keys ...string) (map[string][]byte, error)
	// Set writes all items in one atomic call.
	Set(ctx context.Context, items map[string][]byte) error
	// Remove deletes the given keys. Removing a missing key is not an error.
	Remove(ctx context.Context, keys ...string) error
}

// SessionStore is volatile storage erased when the session ends. It is the
// only place raw key material is ever written.
type SessionStore interface {
	// Get returns a copy of the value stored under key.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// HealthChecker reports whether a backing service is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
