package storage

import (
	"context"

	"solana-sell-engine/internal/domain"
)

// TradeEventStore provides access to trade_events storage (ingest audit log).
type TradeEventStore interface {
	// Insert adds a new trade event. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, e *domain.TradeEvent) error

	// InsertBulk adds multiple events. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, events []*domain.TradeEvent) error

	// GetByMint retrieves all events for a mint, ordered by timestamp ASC.
	GetByMint(ctx context.Context, mint string) ([]*domain.TradeEvent, error)

	// GetByTimeRange retrieves events for a mint within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, mint string, start, end int64) ([]*domain.TradeEvent, error)
}

// WaveStore provides access to sell_waves storage.
type WaveStore interface {
	// Insert adds a new wave record. Returns ErrDuplicateKey if wave_id exists.
	Insert(ctx context.Context, w *domain.WaveRecord) error

	// InsertResults adds the per-wallet rows of a wave, preserving order.
	InsertResults(ctx context.Context, waveID string, results []domain.WalletSellResult) error

	// GetByID retrieves a wave by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, waveID string) (*domain.WaveRecord, error)

	// GetResults retrieves the per-wallet rows of a wave in insertion order.
	// A wave without stored results yields an empty slice, not an error.
	GetResults(ctx context.Context, waveID string) ([]domain.WalletSellResult, error)

	// GetByMint retrieves all waves for a mint, ordered by created_at ASC.
	GetByMint(ctx context.Context, mint string) ([]*domain.WaveRecord, error)

	// GetByTimeRange retrieves waves created within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.WaveRecord, error)
}

// CooldownStore tracks the last successful sell time per mint.
type CooldownStore interface {
	// LastSellAt returns the last stamped sell time for a mint in Unix
	// milliseconds. Returns ErrNotFound when the mint was never stamped.
	LastSellAt(ctx context.Context, mint string) (int64, error)

	// StampSell records a successful sell at the given time, replacing any
	// earlier stamp.
	StampSell(ctx context.Context, mint string, atMs int64) error

	// Clear removes the stamp for a mint. Clearing an unknown mint is a no-op.
	Clear(ctx context.Context, mint string) error
}
