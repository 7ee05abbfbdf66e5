package engine

import (
	"context"
	"errors"
	"fmt"

	"solana-sell-engine/internal/domain"
	"solana-sell-engine/internal/storage"
)

// Status is a point-in-time view of the engine's state for one mint.
type Status struct {
	Mint              string            `json:"mint"`
	Mode              string            `json:"mode"`
	DryRun            bool              `json:"dryRun,omitempty"`
	Sums              domain.WindowSums `json:"sums"`
	NetUSD            float64           `json:"netUsd"`
	LastSellAt        int64             `json:"lastSellAtMs,omitempty"`
	CooldownRemaining int64             `json:"cooldownRemainingMs"`
	TradesIngested    int64             `json:"tradesIngested"`
	SnapshotsIngested int64             `json:"snapshotsIngested"`
	DuplicateTrades   int64             `json:"duplicateTrades"`
	WavesExecuted     int64             `json:"wavesExecuted"`
	WavesSucceeded    int64             `json:"wavesSucceeded"`
}

// Status reports the window sums the trigger would evaluate right now,
// the cooldown state, and the engine's ingest and wave counters.
func (e *Engine) Status(ctx context.Context, mint string) (*Status, error) {
	if mint == "" {
		return nil, fmt.Errorf("mint is required")
	}

	sums, err := e.source.Sums(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("window sums for %s: %w", mint, err)
	}

	st := &Status{
		Mint:              mint,
		Mode:              e.mode.Name(),
		DryRun:            e.dryRun,
		Sums:              sums,
		NetUSD:            sums.NetUSD(),
		TradesIngested:    e.tradesIngested.Load(),
		SnapshotsIngested: e.snapshotsIngested.Load(),
		DuplicateTrades:   e.duplicateTrades.Load(),
		WavesExecuted:     e.wavesExecuted.Load(),
		WavesSucceeded:    e.wavesSucceeded.Load(),
	}

	last, err := e.cooldown.LastSellAt(ctx, mint)
	switch {
	case err == nil:
		st.LastSellAt = last
		remaining := e.cooldownPeriod.Milliseconds() - (e.now().UnixMilli() - last)
		if remaining > 0 {
			st.CooldownRemaining = remaining
		}
	case errors.Is(err, storage.ErrNotFound):
		// never sold, nothing to report
	default:
		return nil, fmt.Errorf("cooldown for %s: %w", mint, err)
	}

	return st, nil
}
