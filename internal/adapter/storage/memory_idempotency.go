package storage

import (
	"context"
	"sync"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/port"
)

// MemoryIdempotencyStore keeps claimed keys for the process lifetime.
type MemoryIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{keys: make(map[string]struct{})}
}

func (s *MemoryIdempotencyStore) SetIdempotency(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	s.keys[key] = struct{}{}
	return true, nil
}

func (s *MemoryIdempotencyStore) ReleaseIdempotency(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.keys, key)
	s.mu.Unlock()
	return nil
}

var _ port.IdempotencyStore = (*MemoryIdempotencyStore)(nil)
