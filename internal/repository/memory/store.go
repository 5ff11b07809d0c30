package memory

import (
	"context"
	"sync"

	"github.com/dtroode/loginvault/internal/model"
)

var (
	_ model.DurableStore  = (*Store)(nil)
	_ model.HealthChecker = (*Store)(nil)
)

// Store is an in-process durable store. It does not survive restarts and is
// meant for local development and tests.
type Store struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewStore() *Store {
	return &Store{items: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, keys ...string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if value, ok := s.items[key]; ok {
			out[key] = append([]byte(nil), value...)
		}
	}
	return out, nil
}

func (s *Store) Set(_ context.Context, items map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range items {
		s.items[key] = append([]byte(nil), value...)
	}
	return nil
}

func (s *Store) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.items, key)
	}
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}
