package clickhouse

import (
	"context"
	"fmt"

	"solana-sell-engine/internal/domain"
	"solana-sell-engine/internal/storage"
)

// TradeEventStore implements storage.TradeEventStore using ClickHouse.
// MergeTree does not enforce uniqueness, so duplicates are rejected with
// explicit existence checks on trade_id before inserting.
type TradeEventStore struct {
	conn *Conn
}

// NewTradeEventStore creates a new TradeEventStore.
func NewTradeEventStore(conn *Conn) *TradeEventStore {
	return &TradeEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TradeEventStore = (*TradeEventStore)(nil)

// Insert adds a new trade event. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeEventStore) Insert(ctx context.Context, e *domain.TradeEvent) error {
	return s.InsertBulk(ctx, []*domain.TradeEvent{e})
}

// InsertBulk adds multiple events. Fails entire batch on any duplicate.
func (s *TradeEventStore) InsertBulk(ctx context.Context, events []*domain.TradeEvent) error {
	if len(events) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		if e == nil || e.TradeID == "" || e.Mint == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[e.TradeID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[e.TradeID] = struct{}{}
	}

	// Check for duplicates against existing rows
	for _, e := range events {
		exists, err := s.exists(ctx, e.TradeID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trade_events (
			trade_id, mint, side, amount_usd, wallet, tx_signature, slot, timestamp_ms, ingested_at_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range events {
		err = batch.Append(
			e.TradeID, e.Mint, e.Side, e.AmountUSD,
			e.Wallet, e.TxSignature,
			uint64(e.Slot), uint64(e.Timestamp), uint64(e.IngestedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByMint retrieves all events for a mint, ordered by timestamp ASC.
func (s *TradeEventStore) GetByMint(ctx context.Context, mint string) ([]*domain.TradeEvent, error) {
	query := `
		SELECT trade_id, mint, side, amount_usd, wallet, tx_signature, slot, timestamp_ms, ingested_at_ms
		FROM trade_events
		WHERE mint = ?
		ORDER BY timestamp_ms ASC, trade_id ASC
	`

	rows, err := s.conn.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("query by mint: %w", err)
	}
	defer rows.Close()

	return scanTradeEvents(rows)
}

// GetByTimeRange retrieves events for a mint within [start, end] (inclusive).
func (s *TradeEventStore) GetByTimeRange(ctx context.Context, mint string, start, end int64) ([]*domain.TradeEvent, error) {
	query := `
		SELECT trade_id, mint, side, amount_usd, wallet, tx_signature, slot, timestamp_ms, ingested_at_ms
		FROM trade_events
		WHERE mint = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC, trade_id ASC
	`

	rows, err := s.conn.Query(ctx, query, mint, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanTradeEvents(rows)
}

// exists checks if an event with the given trade_id exists.
func (s *TradeEventStore) exists(ctx context.Context, tradeID string) (bool, error) {
	query := `SELECT count(*) FROM trade_events WHERE trade_id = ?`

	var count uint64
	err := s.conn.QueryRow(ctx, query, tradeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanTradeEvents scans multiple rows into a slice.
func scanTradeEvents(rows chRows) ([]*domain.TradeEvent, error) {
	var events []*domain.TradeEvent

	for rows.Next() {
		var e domain.TradeEvent
		var slot, timestampMs, ingestedAtMs uint64

		err := rows.Scan(
			&e.TradeID, &e.Mint, &e.Side, &e.AmountUSD,
			&e.Wallet, &e.TxSignature,
			&slot, &timestampMs, &ingestedAtMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade event row: %w", err)
		}

		e.Slot = int64(slot)
		e.Timestamp = int64(timestampMs)
		e.IngestedAt = int64(ingestedAtMs)
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade event rows: %w", err)
	}

	return events, nil
}
