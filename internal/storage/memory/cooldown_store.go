package memory

import (
	"context"
	"sync"

	"solana-sell-engine/internal/storage"
)

// CooldownStore is an in-memory implementation of storage.CooldownStore.
// Unlike the append-only stores, stamps are replaced on every write.
type CooldownStore struct {
	mu   sync.RWMutex
	data map[string]int64 // mint -> last sell time (ms)
}

// NewCooldownStore creates a new in-memory cooldown store.
func NewCooldownStore() *CooldownStore {
	return &CooldownStore{
		data: make(map[string]int64),
	}
}

// LastSellAt returns the last stamped sell time for a mint.
// Returns ErrNotFound when the mint was never stamped.
func (s *CooldownStore) LastSellAt(_ context.Context, mint string) (int64, error) {
	if mint == "" {
		return 0, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	at, exists := s.data[mint]
	if !exists {
		return 0, storage.ErrNotFound
	}
	return at, nil
}

// StampSell records a successful sell at the given time, replacing any
// earlier stamp.
func (s *CooldownStore) StampSell(_ context.Context, mint string, atMs int64) error {
	if mint == "" || atMs <= 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[mint] = atMs
	return nil
}

// Clear removes the stamp for a mint. Clearing an unknown mint is a no-op.
func (s *CooldownStore) Clear(_ context.Context, mint string) error {
	if mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, mint)
	return nil
}

var _ storage.CooldownStore = (*CooldownStore)(nil)
