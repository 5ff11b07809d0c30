// Package session implements the volatile, session-scoped store that hosts the
// vault key. Its contents never leave process memory and are wiped when the
// session ends: on End, on process shutdown, or after an idle timeout.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dtroode/loginvault/internal/clock"
	"github.com/dtroode/loginvault/internal/logger"
	"github.com/dtroode/loginvault/internal/model"
	"github.com/dtroode/loginvault/internal/secret"
)

var _ model.SessionStore = (*Store)(nil)

// Store keeps values in locked memory buffers.
type Store struct {
	mu          sync.Mutex
	values      map[string]*secret.Buffer
	lastAccess  time.Time
	idleTimeout time.Duration
	clock       clock.Clock
	onExpire    func()
	logger      *logger.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithIdleTimeout ends the session after the store has not been touched for d.
// Zero disables idle expiry.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.idleTimeout = d
	}
}

// WithClock overrides the time source.
func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// WithExpiryHook calls fn, without the store lock held, each time the
// sweeper started by Run ends an idle session.
func WithExpiryHook(fn func()) Option {
	return func(s *Store) {
		s.onExpire = fn
	}
}

// NewStore creates an empty session store.
func NewStore(logger *logger.Logger, opts ...Option) *Store {
	s := &Store{
		values: make(map[string]*secret.Buffer),
		clock:  clock.Real(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastAccess = s.clock.Now()
	return s
}

// Get returns a heap copy of the value stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked()
	s.lastAccess = s.clock.Now()

	buf, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}

	value, err := buf.Copy()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read session value: %w", err)
	}
	return value, true, nil
}

// Set stores value under key. The caller's slice is zeroed.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	buf, err := secret.NewFromBytes(value)
	if err != nil {
		return fmt.Errorf("failed to protect session value: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked()
	s.lastAccess = s.clock.Now()

	if old, ok := s.values[key]; ok {
		_ = old.Close()
	}
	s.values[key] = buf
	return nil
}

// Remove wipes the value stored under key.
func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastAccess = s.clock.Now()

	buf, ok := s.values[key]
	if !ok {
		return nil
	}
	delete(s.values, key)

	if err := buf.Close(); err != nil {
		return fmt.Errorf("failed to wipe session value: %w", err)
	}
	return nil
}

// End wipes every value, as the host does when a browsing session closes.
func (s *Store) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.endLocked("session ended")
}

// Close ends the session. It is called on shutdown.
func (s *Store) Close() error {
	s.End()
	return nil
}

// Run periodically enforces the idle timeout until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if s.idleTimeout <= 0 || interval <= 0 {
		return
	}

	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			expired := s.expireLocked()
			s.mu.Unlock()

			if expired && s.onExpire != nil {
				s.onExpire()
			}
		}
	}
}

// expireLocked ends an idle session and reports whether anything was wiped.
func (s *Store) expireLocked() bool {
	if s.idleTimeout <= 0 {
		return false
	}
	if s.clock.Now().Sub(s.lastAccess) < s.idleTimeout {
		return false
	}
	return s.endLocked("session idle timeout reached")
}

func (s *Store) endLocked(reason string) bool {
	if len(s.values) == 0 {
		return false
	}
	for key, buf := range s.values {
		if err := buf.Close(); err != nil {
			s.logger.Warn("failed to wipe session value", "key", key, "error", err)
		}
		delete(s.values, key)
	}
	s.logger.Info(reason)
	return true
}
