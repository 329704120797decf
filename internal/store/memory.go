package store

import (
	"context"
	"sync"

	"github.com/pyittinehtaung/pth-client/internal/model/chat"
)

// MemoryStore keeps the snapshot in memory only. Useful for tests and for
// running without durable state.
type MemoryStore struct {
	mu   sync.Mutex
	snap *chat.Snapshot
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Adapter.
func (s *MemoryStore) Load(_ context.Context) (*chat.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return nil, nil
	}
	cp := *s.snap
	return &cp, nil
}

// Save implements Adapter.
func (s *MemoryStore) Save(_ context.Context, snap *chat.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *snap
	s.snap = &cp
	return nil
}

// Close implements Adapter.
func (s *MemoryStore) Close() error { return nil }
