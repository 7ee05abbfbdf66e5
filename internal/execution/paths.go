package execution

import (
	"context"
	"fmt"

	"solana-sell-engine/internal/solana"
	"solana-sell-engine/internal/swap"
	"solana-sell-engine/internal/wallet"
)

// RelayBuilder builds sell transactions through the low-latency relay.
// It is the primary build path when relay credentials are configured.
type RelayBuilder struct {
	relay *swap.RelayClient
}

// NewRelayBuilder creates the relay build path.
func NewRelayBuilder(relay *swap.RelayClient) *RelayBuilder {
	return &RelayBuilder{relay: relay}
}

func (b *RelayBuilder) Name() string { return "relay" }

func (b *RelayBuilder) BuildSell(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	tx, err := b.relay.BuildSell(ctx, swap.BuildSellRequest{
		Wallet:      req.Wallet,
		Mint:        req.Mint,
		Amount:      req.Amount,
		SlippageBps: req.SlippageBps,
	})
	if err != nil {
		return nil, err
	}
	return &BuildResult{TxBase64: tx}, nil
}

// AggregatorBuilder builds sells as quote-then-build against the public
// aggregator. Each of the two calls is boxed by the aggregator client's
// own timeout.
type AggregatorBuilder struct {
	aggregator *swap.AggregatorClient
	outputMint string
}

// NewAggregatorBuilder creates the aggregator build path. Sells settle
// into outputMint; empty means wrapped SOL.
func NewAggregatorBuilder(aggregator *swap.AggregatorClient, outputMint string) *AggregatorBuilder {
	if outputMint == "" {
		outputMint = wallet.WSOLMint
	}
	return &AggregatorBuilder{aggregator: aggregator, outputMint: outputMint}
}

func (b *AggregatorBuilder) Name() string { return "aggregator" }

func (b *AggregatorBuilder) BuildSell(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	quote, err := b.aggregator.Quote(ctx, swap.QuoteRequest{
		InputMint:   req.Mint,
		OutputMint:  b.outputMint,
		Amount:      req.Amount,
		SlippageBps: req.SlippageBps,
	})
	if err != nil {
		return nil, fmt.Errorf("quote: %w", err)
	}

	tx, err := b.aggregator.BuildSwap(ctx, quote, req.Wallet)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	return &BuildResult{TxBase64: tx, EstimatedOut: quote.OutAmount}, nil
}

// RelaySubmitter broadcasts signed transactions through the relay.
type RelaySubmitter struct {
	relay *swap.RelayClient
}

// NewRelaySubmitter creates the relay broadcast channel.
func NewRelaySubmitter(relay *swap.RelayClient) *RelaySubmitter {
	return &RelaySubmitter{relay: relay}
}

func (s *RelaySubmitter) Name() string { return "relay" }

func (s *RelaySubmitter) Submit(ctx context.Context, signedTxBase64 string) (string, error) {
	return s.relay.Submit(ctx, signedTxBase64)
}

// RPCSubmitter broadcasts signed transactions straight to the RPC node.
type RPCSubmitter struct {
	rpc  solana.RPCClient
	opts *solana.SendOpts
}

// NewRPCSubmitter creates the direct RPC broadcast channel. Preflight is
// skipped and the node retries forwarding twice.
func NewRPCSubmitter(rpc solana.RPCClient) *RPCSubmitter {
	return &RPCSubmitter{
		rpc:  rpc,
		opts: &solana.SendOpts{SkipPreflight: true, MaxRetries: 2},
	}
}

func (s *RPCSubmitter) Name() string { return "rpc" }

func (s *RPCSubmitter) Submit(ctx context.Context, signedTxBase64 string) (string, error) {
	return s.rpc.SendTransaction(ctx, signedTxBase64, s.opts)
}

// RPCBalanceFetcher reads token balances over RPC. It checks the wallet's
// associated token account first and falls back to scanning the owner's
// token accounts when the derived account does not exist.
type RPCBalanceFetcher struct {
	rpc solana.RPCClient
}

// NewRPCBalanceFetcher creates a balance fetcher backed by the RPC client.
func NewRPCBalanceFetcher(rpc solana.RPCClient) *RPCBalanceFetcher {
	return &RPCBalanceFetcher{rpc: rpc}
}

func (f *RPCBalanceFetcher) TokenBalance(ctx context.Context, owner, mint string) (uint64, error) {
	ata, err := wallet.DeriveAssociatedTokenAccount(owner, mint)
	if err != nil {
		return 0, fmt.Errorf("failed to derive token account: %w", err)
	}

	balance, err := f.rpc.GetTokenAccountBalance(ctx, ata)
	if err != nil {
		return 0, fmt.Errorf("failed to get token balance: %w", err)
	}
	if balance != nil {
		return balance.Amount, nil
	}

	// No associated account. Tokens may sit in a legacy account.
	accounts, err := f.rpc.GetTokenAccountsByOwner(ctx, owner, mint)
	if err != nil {
		return 0, fmt.Errorf("failed to list token accounts: %w", err)
	}
	var total uint64
	for _, acc := range accounts {
		total += acc.Amount
	}
	return total, nil
}

var (
	_ Builder        = (*RelayBuilder)(nil)
	_ Builder        = (*AggregatorBuilder)(nil)
	_ Submitter      = (*RelaySubmitter)(nil)
	_ Submitter      = (*RPCSubmitter)(nil)
	_ BalanceFetcher = (*RPCBalanceFetcher)(nil)
	_ Signer         = (*wallet.Keypair)(nil)
)
