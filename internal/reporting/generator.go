package reporting

import (
	"context"
	"time"

	"solana-sell-engine/internal/domain"
	"solana-sell-engine/internal/storage"
)

// Generator produces wave reports from stored data.
type Generator struct {
	waveStore storage.WaveStore
	now       func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(waveStore storage.WaveStore) *Generator {
	return &Generator{
		waveStore: waveStore,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a report over all waves created within [start, end].
func (g *Generator) Generate(ctx context.Context, start, end int64) (*Report, error) {
	waves, err := g.waveStore.GetByTimeRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt: g.now(),
		RangeStart:  start,
		RangeEnd:    end,
	}

	for _, w := range waves {
		report.Waves = append(report.Waves, waveRow(w))

		results, err := g.waveStore.GetResults(ctx, w.WaveID)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			report.Wallets = append(report.Wallets, walletRow(w.WaveID, r))
		}
	}

	report.Summary = summarize(report.Waves)
	return report, nil
}

// FromWave builds a single-wave report without touching storage.
func FromWave(record *domain.WaveRecord, results []domain.WalletSellResult, at time.Time) *Report {
	report := &Report{
		GeneratedAt: at,
		Waves:       []WaveRow{waveRow(record)},
	}
	for _, r := range results {
		report.Wallets = append(report.Wallets, walletRow(record.WaveID, r))
	}
	report.Summary = summarize(report.Waves)
	return report
}

func waveRow(w *domain.WaveRecord) WaveRow {
	return WaveRow{
		WaveID:        w.WaveID,
		Mint:          w.Mint,
		TriggeredBy:   w.TriggeredBy,
		Executor:      w.Executor,
		NetUSD:        w.NetUSD,
		SellUSD:       w.SellUSD,
		Percentage:    w.Percentage,
		Requested:     w.Requested,
		Successful:    w.Successful,
		Failed:        w.Failed,
		TotalRaw:      w.TotalRaw,
		TotalReceived: w.TotalReceived,
		DurationMs:    w.DurationMs,
		CreatedAt:     w.CreatedAt,
	}
}

func walletRow(waveID string, r domain.WalletSellResult) WalletRow {
	return WalletRow{
		WaveID:      waveID,
		Wallet:      r.Wallet,
		OK:          r.OK,
		TxSignature: r.TxSignature,
		BuildPath:   r.BuildPath,
		SubmitPath:  r.SubmitPath,
		AmountRaw:   r.AmountRaw,
		Err:         r.Err,
		DurationMs:  r.DurationMs,
	}
}

func summarize(waves []WaveRow) WaveSummary {
	var s WaveSummary
	for _, w := range waves {
		s.TotalWaves++
		if w.Successful > 0 {
			s.SuccessfulWaves++
		}
		s.WalletsRequested += w.Requested
		s.WalletsSucceeded += w.Successful
		s.WalletsFailed += w.Failed
		s.TotalSellUSD += w.SellUSD
		s.TotalRaw += w.TotalRaw
		s.TotalReceived += w.TotalReceived
	}
	return s
}
