package memory

import (
	"context"
	"sort"
	"sync"

	"solana-sell-engine/internal/domain"
	"solana-sell-engine/internal/storage"
)

// TradeEventStore is an in-memory implementation of storage.TradeEventStore.
type TradeEventStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TradeEvent // keyed by trade_id
}

// NewTradeEventStore creates a new in-memory trade event store.
func NewTradeEventStore() *TradeEventStore {
	return &TradeEventStore{
		data: make(map[string]*domain.TradeEvent),
	}
}

// Insert adds a new trade event. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeEventStore) Insert(_ context.Context, e *domain.TradeEvent) error {
	if e == nil || e.TradeID == "" || e.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.TradeID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *e
	s.data[e.TradeID] = &copy
	return nil
}

// InsertBulk adds multiple events. Fails entire batch on any duplicate.
func (s *TradeEventStore) InsertBulk(_ context.Context, events []*domain.TradeEvent) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(events))

	// First pass: check for duplicates (existing + intra-batch)
	for _, e := range events {
		if e == nil || e.TradeID == "" || e.Mint == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[e.TradeID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[e.TradeID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[e.TradeID] = struct{}{}
	}

	// Second pass: insert all
	for _, e := range events {
		copy := *e
		s.data[e.TradeID] = &copy
	}

	return nil
}

// GetByMint retrieves all events for a mint, ordered by timestamp ASC.
func (s *TradeEventStore) GetByMint(_ context.Context, mint string) ([]*domain.TradeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeEvent
	for _, e := range s.data {
		if e.Mint == mint {
			copy := *e
			result = append(result, &copy)
		}
	}

	sortTradeEvents(result)
	return result, nil
}

// GetByTimeRange retrieves events for a mint within [start, end] (inclusive).
func (s *TradeEventStore) GetByTimeRange(_ context.Context, mint string, start, end int64) ([]*domain.TradeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeEvent
	for _, e := range s.data {
		if e.Mint == mint && e.Timestamp >= start && e.Timestamp <= end {
			copy := *e
			result = append(result, &copy)
		}
	}

	sortTradeEvents(result)
	return result, nil
}

func sortTradeEvents(events []*domain.TradeEvent) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].Timestamp != events[j].Timestamp {
			return events[i].Timestamp < events[j].Timestamp
		}
		return events[i].TradeID < events[j].TradeID
	})
}

var _ storage.TradeEventStore = (*TradeEventStore)(nil)
