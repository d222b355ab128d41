package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/pension/backend/internal/domain/shared"
)

var _ shared.SnapshotStore = (*MemoryStore)(nil)

// MemoryStore keeps snapshots in process memory. It does not survive a
// restart; use it for tests and single-run CLI sessions.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Save stores a copy of data under key
func (s *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	s.mu.Lock()
	s.data[key] = append([]byte(nil), data...)
	s.mu.Unlock()
	return nil
}

// Load returns a copy of the snapshot under key
func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, key)
	}
	return append([]byte(nil), data...), nil
}

// Keys returns the number of stored snapshots
func (s *MemoryStore) Keys() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
