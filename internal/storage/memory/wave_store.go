package memory

import (
	"context"
	"sort"
	"sync"

	"solana-sell-engine/internal/domain"
	"solana-sell-engine/internal/storage"
)

// WaveStore is an in-memory implementation of storage.WaveStore.
type WaveStore struct {
	mu      sync.RWMutex
	data    map[string]*domain.WaveRecord        // keyed by wave_id
	results map[string][]domain.WalletSellResult // keyed by wave_id
}

// NewWaveStore creates a new in-memory wave store.
func NewWaveStore() *WaveStore {
	return &WaveStore{
		data:    make(map[string]*domain.WaveRecord),
		results: make(map[string][]domain.WalletSellResult),
	}
}

// Insert adds a new wave record. Returns ErrDuplicateKey if wave_id exists.
func (s *WaveStore) Insert(_ context.Context, w *domain.WaveRecord) error {
	if w == nil || w.WaveID == "" || w.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[w.WaveID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *w
	s.data[w.WaveID] = &copy
	return nil
}

// InsertResults adds the per-wallet rows of a wave, preserving order.
func (s *WaveStore) InsertResults(_ context.Context, waveID string, results []domain.WalletSellResult) error {
	if waveID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.results[waveID] = append(s.results[waveID], results...)
	return nil
}

// GetByID retrieves a wave by its ID. Returns ErrNotFound if not exists.
func (s *WaveStore) GetByID(_ context.Context, waveID string) (*domain.WaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, exists := s.data[waveID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *w
	return &copy, nil
}

// GetResults retrieves the per-wallet rows of a wave in insertion order.
func (s *WaveStore) GetResults(_ context.Context, waveID string) ([]domain.WalletSellResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.results[waveID]
	result := make([]domain.WalletSellResult, len(stored))
	copy(result, stored)
	return result, nil
}

// GetByMint retrieves all waves for a mint, ordered by created_at ASC.
func (s *WaveStore) GetByMint(_ context.Context, mint string) ([]*domain.WaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.WaveRecord
	for _, w := range s.data {
		if w.Mint == mint {
			copy := *w
			result = append(result, &copy)
		}
	}

	sortWaves(result)
	return result, nil
}

// GetByTimeRange retrieves waves created within [start, end] (inclusive).
func (s *WaveStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.WaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.WaveRecord
	for _, w := range s.data {
		if w.CreatedAt >= start && w.CreatedAt <= end {
			copy := *w
			result = append(result, &copy)
		}
	}

	sortWaves(result)
	return result, nil
}

func sortWaves(waves []*domain.WaveRecord) {
	sort.Slice(waves, func(i, j int) bool {
		if waves[i].CreatedAt != waves[j].CreatedAt {
			return waves[i].CreatedAt < waves[j].CreatedAt
		}
		return waves[i].WaveID < waves[j].WaveID
	})
}

var _ storage.WaveStore = (*WaveStore)(nil)
