package executor

import (
	"context"
	"encoding/json"

	"solana-sell-engine/internal/domain"
	"solana-sell-engine/internal/execution"
)

// WaveRunner runs one sell wave across a set of wallets.
type WaveRunner interface {
	SellAll(ctx context.Context, wallets []execution.Signer, mint string, percentage float64, slippageBps int) domain.BatchResult
}

// InternalExecutor runs sells through the in-process wallet pipeline and
// presents the batch in the same shape the external executor would.
type InternalExecutor struct {
	runner  WaveRunner
	wallets []execution.Signer
}

// NewInternalExecutor creates the in-process execution path.
func NewInternalExecutor(runner WaveRunner, wallets []execution.Signer) *InternalExecutor {
	return &InternalExecutor{runner: runner, wallets: wallets}
}

func (e *InternalExecutor) Name() string { return domain.ExecutorInternal }

// Execute runs the wave. OK mirrors the wave rule: at least one wallet
// success makes the execution successful.
func (e *InternalExecutor) Execute(ctx context.Context, req Request) (*ExecutionResult, error) {
	batch := e.runner.SellAll(ctx, e.wallets, req.Mint, req.Percentage, req.SlippageBps)

	body, err := json.Marshal(batch)
	if err != nil {
		body = nil
	}
	return &ExecutionResult{
		OK:       batch.Successful > 0,
		Executor: domain.ExecutorInternal,
		Body:     string(body),
		Batch:    &batch,
	}, nil
}

var (
	_ Executor   = (*InternalExecutor)(nil)
	_ WaveRunner = (*execution.Orchestrator)(nil)
)
