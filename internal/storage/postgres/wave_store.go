package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-sell-engine/internal/domain"
	"solana-sell-engine/internal/storage"
)

// WaveStore implements storage.WaveStore using PostgreSQL.
type WaveStore struct {
	pool *Pool
}

// NewWaveStore creates a new WaveStore.
func NewWaveStore(pool *Pool) *WaveStore {
	return &WaveStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WaveStore = (*WaveStore)(nil)

const waveColumns = `
	wave_id, mint, triggered_by, executor, net_usd, sell_usd, percentage,
	requested, successful, failed, total_raw, total_received, duration_ms, created_at
`

// Insert adds a new wave record. Returns ErrDuplicateKey if wave_id exists.
func (s *WaveStore) Insert(ctx context.Context, w *domain.WaveRecord) error {
	if w == nil || w.WaveID == "" || w.Mint == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO sell_waves (` + waveColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := s.pool.Exec(ctx, query,
		w.WaveID,
		w.Mint,
		w.TriggeredBy,
		w.Executor,
		w.NetUSD,
		w.SellUSD,
		w.Percentage,
		w.Requested,
		w.Successful,
		w.Failed,
		w.TotalRaw,
		w.TotalReceived,
		w.DurationMs,
		w.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert wave: %w", err)
	}
	return nil
}

// InsertResults adds the per-wallet rows of a wave atomically, preserving
// the order of the slice.
func (s *WaveStore) InsertResults(ctx context.Context, waveID string, results []domain.WalletSellResult) error {
	if waveID == "" {
		return storage.ErrInvalidInput
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO wave_wallet_results (
			wave_id, wallet, ok, tx_signature, build_path, submit_path,
			amount_raw, received_raw, err, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for _, r := range results {
		_, err := tx.Exec(ctx, query,
			waveID,
			r.Wallet,
			r.OK,
			r.TxSignature,
			r.BuildPath,
			r.SubmitPath,
			int64(r.AmountRaw),
			int64(r.ReceivedRaw),
			r.Err,
			r.DurationMs,
		)
		if err != nil {
			return fmt.Errorf("insert wave wallet result: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetResults retrieves the per-wallet rows of a wave in insertion order.
// A wave without stored results yields an empty slice, not an error.
func (s *WaveStore) GetResults(ctx context.Context, waveID string) ([]domain.WalletSellResult, error) {
	query := `
		SELECT wallet, ok, tx_signature, build_path, submit_path,
		       amount_raw, received_raw, err, duration_ms
		FROM wave_wallet_results
		WHERE wave_id = $1
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, waveID)
	if err != nil {
		return nil, fmt.Errorf("get wave wallet results: %w", err)
	}
	defer rows.Close()

	var results []domain.WalletSellResult
	for rows.Next() {
		var r domain.WalletSellResult
		var amountRaw, receivedRaw int64

		err := rows.Scan(
			&r.Wallet,
			&r.OK,
			&r.TxSignature,
			&r.BuildPath,
			&r.SubmitPath,
			&amountRaw,
			&receivedRaw,
			&r.Err,
			&r.DurationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wave wallet result row: %w", err)
		}

		r.AmountRaw = uint64(amountRaw)
		r.ReceivedRaw = uint64(receivedRaw)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wave wallet result rows: %w", err)
	}

	return results, nil
}

// GetByID retrieves a wave by its ID. Returns ErrNotFound if not exists.
func (s *WaveStore) GetByID(ctx context.Context, waveID string) (*domain.WaveRecord, error) {
	query := `SELECT ` + waveColumns + ` FROM sell_waves WHERE wave_id = $1`

	w, err := scanWave(s.pool.QueryRow(ctx, query, waveID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wave by id: %w", err)
	}
	return w, nil
}

// GetByMint retrieves all waves for a mint, ordered by created_at ASC.
func (s *WaveStore) GetByMint(ctx context.Context, mint string) ([]*domain.WaveRecord, error) {
	query := `
		SELECT ` + waveColumns + `
		FROM sell_waves
		WHERE mint = $1
		ORDER BY created_at ASC, wave_id ASC
	`

	rows, err := s.pool.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("get waves by mint: %w", err)
	}
	defer rows.Close()

	return scanWaves(rows)
}

// GetByTimeRange retrieves waves created within [start, end] (inclusive).
func (s *WaveStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.WaveRecord, error) {
	query := `
		SELECT ` + waveColumns + `
		FROM sell_waves
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at ASC, wave_id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get waves by time range: %w", err)
	}
	defer rows.Close()

	return scanWaves(rows)
}

// scanWave scans a single row into a WaveRecord.
func scanWave(row pgx.Row) (*domain.WaveRecord, error) {
	var w domain.WaveRecord

	err := row.Scan(
		&w.WaveID,
		&w.Mint,
		&w.TriggeredBy,
		&w.Executor,
		&w.NetUSD,
		&w.SellUSD,
		&w.Percentage,
		&w.Requested,
		&w.Successful,
		&w.Failed,
		&w.TotalRaw,
		&w.TotalReceived,
		&w.DurationMs,
		&w.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// scanWaves scans multiple rows into a slice of WaveRecord.
func scanWaves(rows pgx.Rows) ([]*domain.WaveRecord, error) {
	var waves []*domain.WaveRecord

	for rows.Next() {
		w, err := scanWave(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wave row: %w", err)
		}
		waves = append(waves, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wave rows: %w", err)
	}

	return waves, nil
}
