package user

import (
	"context"
	"sync"
	"time"
)

// Compile-time assertion that MemStore satisfies the Store interface.
var _ Store = (*MemStore)(nil)

// MemStore is a thread-safe, in-memory implementation of [Store]. It is
// suitable for single-process deployments and testing.
type MemStore struct {
	mu    sync.RWMutex
	users map[string]Config
}

// NewMemStore returns an initialised [MemStore], pre-populated with the given
// users.
func NewMemStore(users ...Config) *MemStore {
	s := &MemStore{users: make(map[string]Config, len(users))}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

// Get implements [Store.Get].
func (s *MemStore) Get(ctx context.Context, id string) (Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.users[id]
	if !ok {
		return Config{}, ErrNotFound
	}
	return c, nil
}

// Upsert implements [Store.Upsert].
func (s *MemStore) Upsert(ctx context.Context, c Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.users == nil {
		s.users = make(map[string]Config)
	}
	s.users[c.ID] = c
	return nil
}

// Touch implements [Store.Touch].
func (s *MemStore) Touch(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.users[id]
	if !ok {
		return nil
	}
	c.LastActiveAt = at
	s.users[id] = c
	return nil
}

// List implements [Store.List].
func (s *MemStore) List(ctx context.Context) ([]Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Config, 0, len(s.users))
	for _, c := range s.users {
		out = append(out, c)
	}
	return out, nil
}
