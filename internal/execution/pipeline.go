// Package execution implements the per-wallet sell pipeline and the wave
// orchestrator that fans a sell across many wallets in parallel.
package execution

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"solana-sell-engine/internal/domain"
	"solana-sell-engine/internal/trigger"
)

// Default phase deadlines. Each build attempt and each broadcast channel
// is boxed independently so one slow provider cannot stall a wallet.
const (
	DefaultBuildTimeout  = 12 * time.Second
	DefaultSubmitTimeout = 8 * time.Second
)

// BalanceFetcher resolves a wallet's raw token balance for a mint.
type BalanceFetcher interface {
	TokenBalance(ctx context.Context, wallet, mint string) (uint64, error)
}

// BuildRequest describes the sell a builder should produce a transaction for.
type BuildRequest struct {
	Wallet      string // owner public key (base58)
	Mint        string // token mint to sell
	Amount      uint64 // raw base units to sell
	SlippageBps int
}

// BuildResult is an unsigned transaction plus the path's estimate of the
// output amount. EstimatedOut is zero when the path reports none.
type BuildResult struct {
	TxBase64     string
	EstimatedOut uint64
}

// Builder produces an unsigned sell transaction. Builders are tried in
// order; the first success wins and failures are terminal per path.
type Builder interface {
	Name() string
	BuildSell(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// Signer signs transactions with key material it holds. Key material never
// leaves the signer.
type Signer interface {
	Name() string
	Address() string
	SignTransactionBase64(txBase64 string) (string, error)
}

// Submitter broadcasts a signed transaction on one channel.
type Submitter interface {
	Name() string
	Submit(ctx context.Context, signedTxBase64 string) (string, error)
}

// Pipeline runs the sequential sell steps for a single wallet: balance
// fetch, sizing, build, sign, broadcast.
type Pipeline struct {
	balances      BalanceFetcher
	builders      []Builder
	submitters    []Submitter
	buildTimeout  time.Duration
	submitTimeout time.Duration
	minSellAmount uint64
	verbose       bool
}

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	Balances      BalanceFetcher
	Builders      []Builder   // tried in order
	Submitters    []Submitter // raced concurrently
	BuildTimeout  time.Duration
	SubmitTimeout time.Duration
	MinSellAmount uint64 // dust floor in raw base units
	Verbose       bool
}

// NewPipeline creates a Pipeline from options.
func NewPipeline(opts PipelineOptions) (*Pipeline, error) {
	if opts.Balances == nil {
		return nil, fmt.Errorf("pipeline requires a balance fetcher")
	}
	if len(opts.Builders) == 0 {
		return nil, fmt.Errorf("pipeline requires at least one builder")
	}
	if len(opts.Submitters) == 0 {
		return nil, fmt.Errorf("pipeline requires at least one submitter")
	}
	if opts.BuildTimeout == 0 {
		opts.BuildTimeout = DefaultBuildTimeout
	}
	if opts.SubmitTimeout == 0 {
		opts.SubmitTimeout = DefaultSubmitTimeout
	}

	return &Pipeline{
		balances:      opts.Balances,
		builders:      opts.Builders,
		submitters:    opts.Submitters,
		buildTimeout:  opts.BuildTimeout,
		submitTimeout: opts.SubmitTimeout,
		minSellAmount: opts.MinSellAmount,
		verbose:       opts.Verbose,
	}, nil
}

// SellWallet executes the full sell pipeline for one wallet. Errors are
// captured in the result, never returned: a wallet is success or failure.
func (p *Pipeline) SellWallet(ctx context.Context, signer Signer, mint string, percentage float64, slippageBps int) domain.WalletSellResult {
	started := time.Now()
	result := domain.WalletSellResult{Wallet: signer.Address()}

	fail := func(err error) domain.WalletSellResult {
		result.Err = err.Error()
		result.DurationMs = time.Since(started).Milliseconds()
		p.logf("wallet %s failed: %v", signer.Name(), err)
		return result
	}

	balance, err := p.balances.TokenBalance(ctx, result.Wallet, mint)
	if err != nil {
		return fail(fmt.Errorf("balance fetch failed: %w", err))
	}
	if balance == 0 {
		return fail(fmt.Errorf("no balance for mint %s", mint))
	}

	amount := trigger.PercentageUnits(balance, percentage)
	if amount == 0 || amount < p.minSellAmount {
		return fail(fmt.Errorf("amount too small: %d of %d base units", amount, balance))
	}
	result.AmountRaw = amount

	built, err := p.build(ctx, &result, BuildRequest{
		Wallet:      result.Wallet,
		Mint:        mint,
		Amount:      amount,
		SlippageBps: slippageBps,
	})
	if err != nil {
		return fail(err)
	}
	result.ReceivedRaw = built.EstimatedOut

	signed, err := signer.SignTransactionBase64(built.TxBase64)
	if err != nil {
		return fail(fmt.Errorf("signing failed: %w", err))
	}

	signature, path, err := p.race(ctx, signed, &result)
	if err != nil {
		return fail(err)
	}

	result.OK = true
	result.TxSignature = signature
	result.SubmitPath = path
	result.DurationMs = time.Since(started).Milliseconds()
	p.logf("wallet %s sold %d via %s/%s: %s",
		signer.Name(), amount, result.BuildPath, path, signature)
	return result
}

// build tries each builder in order, boxing every attempt with the build
// timeout. The first successful build wins.
func (p *Pipeline) build(ctx context.Context, result *domain.WalletSellResult, req BuildRequest) (*BuildResult, error) {
	var errs []error
	for _, b := range p.builders {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		attemptStart := time.Now()
		buildCtx, cancel := context.WithTimeout(ctx, p.buildTimeout)
		built, err := b.BuildSell(buildCtx, req)
		cancel()

		attempt := domain.PathAttempt{
			Path:       b.Name(),
			Stage:      domain.StageBuild,
			OK:         err == nil,
			DurationMs: time.Since(attemptStart).Milliseconds(),
		}
		if err != nil {
			attempt.Err = err.Error()
			result.Attempts = append(result.Attempts, attempt)
			errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
			p.logf("build via %s failed for %s: %v", b.Name(), req.Wallet, err)
			continue
		}

		result.Attempts = append(result.Attempts, attempt)
		result.BuildPath = b.Name()
		return built, nil
	}
	return nil, fmt.Errorf("build failed on all paths: %w", errors.Join(errs...))
}

func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.verbose {
		log.Printf("[execution] "+format, args...)
	}
}
