package execution

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"solana-sell-engine/internal/domain"
)

// Default wave settings.
const (
	DefaultLimitWallets = 8
	DefaultWaveDeadline = 60 * time.Second
)

// Orchestrator fans one sell wave across a set of wallets. Wallet
// pipelines run concurrently, bounded by the wallet limit, and share no
// mutable state beyond the read-only wave inputs.
type Orchestrator struct {
	pipeline *Pipeline
	limit    int
	deadline time.Duration
	verbose  bool
}

// OrchestratorOptions configures an Orchestrator.
type OrchestratorOptions struct {
	Pipeline     *Pipeline
	LimitWallets int           // max concurrent wallet pipelines, 0 = DefaultLimitWallets
	WaveDeadline time.Duration // overall wave timeout, 0 = DefaultWaveDeadline
	Verbose      bool
}

// NewOrchestrator creates an Orchestrator from options.
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	if opts.Pipeline == nil {
		return nil, fmt.Errorf("orchestrator requires a pipeline")
	}
	limit := opts.LimitWallets
	if limit <= 0 {
		limit = DefaultLimitWallets
	}
	deadline := opts.WaveDeadline
	if deadline <= 0 {
		deadline = DefaultWaveDeadline
	}

	return &Orchestrator{
		pipeline: opts.Pipeline,
		limit:    limit,
		deadline: deadline,
		verbose:  opts.Verbose,
	}, nil
}

// SellAll runs one wave: every wallet sells the given percentage of its
// balance for the mint. Results arrive in completion order and callers
// must match them back by wallet address. When the wave deadline elapses,
// wallets still in flight are abandoned and completed results are
// reported as-is.
func (o *Orchestrator) SellAll(ctx context.Context, wallets []Signer, mint string, percentage float64, slippageBps int) domain.BatchResult {
	started := time.Now()
	batch := domain.BatchResult{
		WaveID:    uuid.NewString(),
		Mint:      mint,
		Requested: len(wallets),
		StartedAt: started.UnixMilli(),
	}
	if len(wallets) == 0 {
		return batch
	}

	o.logf("wave %s: %d wallets, mint=%s pct=%.2f slippage=%d",
		batch.WaveID, len(wallets), mint, percentage, slippageBps)

	waveCtx, cancel := context.WithTimeout(ctx, o.deadline)
	defer cancel()

	results := make(chan domain.WalletSellResult, len(wallets))
	sem := make(chan struct{}, o.limit)

	for _, w := range wallets {
		go func(w Signer) {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-waveCtx.Done():
				results <- domain.WalletSellResult{
					Wallet: w.Address(),
					Err:    fmt.Sprintf("wave deadline elapsed before start: %v", waveCtx.Err()),
				}
				return
			}
			results <- o.pipeline.SellWallet(waveCtx, w, mint, percentage, slippageBps)
		}(w)
	}

	record := func(r domain.WalletSellResult) {
		batch.Results = append(batch.Results, r)
		if r.OK {
			batch.Successful++
			batch.TotalRaw += r.AmountRaw
			batch.TotalReceived += r.ReceivedRaw
		} else {
			batch.Failed++
		}
	}

collect:
	for len(batch.Results) < len(wallets) {
		select {
		case r := <-results:
			record(r)
		case <-waveCtx.Done():
			break collect
		}
	}

	// Wallets that completed right at the deadline are still reported;
	// anything still in flight is abandoned.
drain:
	for len(batch.Results) < len(wallets) {
		select {
		case r := <-results:
			record(r)
		default:
			break drain
		}
	}
	if len(batch.Results) < len(wallets) {
		o.logf("wave %s: deadline elapsed with %d/%d wallets completed",
			batch.WaveID, len(batch.Results), len(wallets))
	}

	batch.DurationMs = time.Since(started).Milliseconds()
	o.logf("wave %s: %d/%d succeeded in %dms",
		batch.WaveID, batch.Successful, batch.Requested, batch.DurationMs)
	return batch
}

func (o *Orchestrator) logf(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[execution] "+format, args...)
	}
}
