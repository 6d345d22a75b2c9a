package followup

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
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	pending map[string]Pending
}

// NewMemStore returns an initialised [MemStore]. Records older than ttl are
// treated as absent; a non-positive ttl disables expiry.
func NewMemStore(ttl time.Duration) *MemStore {
	return &MemStore{
		ttl:     ttl,
		now:     time.Now,
		pending: make(map[string]Pending),
	}
}

func (s *MemStore) expired(p Pending) bool {
	return s.ttl > 0 && s.now().Sub(p.CreatedAt) > s.ttl
}

// Get implements [Store.Get]. Expired records are reported as absent but left
// for [MemStore.Purge] to reclaim.
func (s *MemStore) Get(ctx context.Context, userID string) (Pending, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pending[userID]
	if !ok || s.expired(p) {
		return Pending{}, false, nil
	}
	return p, true, nil
}

// Set implements [Store.Set].
func (s *MemStore) Set(ctx context.Context, userID string, p Pending) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		s.pending = make(map[string]Pending)
	}
	s.pending[userID] = p
	return nil
}

// Delete implements [Store.Delete].
func (s *MemStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, userID)
	return nil
}

// Purge implements [Store.Purge].
func (s *MemStore) Purge(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for userID, p := range s.pending {
		if s.expired(p) {
			delete(s.pending, userID)
			removed++
		}
	}
	return removed, nil
}
