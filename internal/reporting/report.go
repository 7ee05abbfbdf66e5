// Package reporting renders executed sell waves as CSV and Markdown, for
// the one-shot CLI output and for operator reports over a time range.
package reporting

import "time"

// Report summarizes executed sell waves and their per-wallet outcomes.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RangeStart  int64 // Unix ms, 0 for single-wave reports
	RangeEnd    int64 // Unix ms, 0 for single-wave reports

	Summary WaveSummary

	// Waves sorted by created_at, wallet rows in completion order per wave.
	Waves   []WaveRow
	Wallets []WalletRow
}

// WaveSummary aggregates the waves in the report.
type WaveSummary struct {
	TotalWaves       int
	SuccessfulWaves  int // waves with at least one wallet success
	WalletsRequested int
	WalletsSucceeded int
	WalletsFailed    int
	TotalSellUSD     float64 // summed advisory targets
	TotalRaw         int64   // base units sold
	TotalReceived    int64   // estimated output units received
}

// WaveRow represents one wave in the report table.
type WaveRow struct {
	WaveID        string
	Mint          string
	TriggeredBy   string
	Executor      string
	NetUSD        float64
	SellUSD       float64
	Percentage    float64
	Requested     int
	Successful    int
	Failed        int
	TotalRaw      int64
	TotalReceived int64
	DurationMs    int64
	CreatedAt     int64
}

// WalletRow represents one wallet outcome within a wave.
type WalletRow struct {
	WaveID      string
	Wallet      string
	OK          bool
	TxSignature string
	BuildPath   string
	SubmitPath  string
	AmountRaw   uint64
	Err         string
	DurationMs  int64
}
