// Package main runs one manual sell wave across the loaded wallets, prints
// the per-wallet outcome, and optionally writes CSV and Markdown reports.
// The exit code is non-zero when no wallet sold.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"solana-sell-engine/internal/domain"
	"solana-sell-engine/internal/execution"
	"solana-sell-engine/internal/executor"
	"solana-sell-engine/internal/reporting"
	"solana-sell-engine/internal/solana"
	"solana-sell-engine/internal/swap"
	"solana-sell-engine/internal/wallet"
)

func main() {
	// Load .env if present. Existing environment variables win.
	godotenv.Load()

	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	relayEndpoint := flag.String("relay-endpoint", os.Getenv("RELAY_ENDPOINT"), "Transaction relay endpoint")
	relayAPIKey := flag.String("relay-api-key", os.Getenv("RELAY_API_KEY"), "Relay API key")
	quoteEndpoint := flag.String("quote-endpoint", os.Getenv("QUOTE_ENDPOINT"), "Swap aggregator endpoint (relay fallback)")
	executorEndpoint := flag.String("executor-endpoint", os.Getenv("EXECUTOR_ENDPOINT"), "External executor endpoint (optional)")
	executorSecret := flag.String("executor-secret", os.Getenv("EXECUTOR_SECRET"), "External executor bearer secret")
	walletsFile := flag.String("wallets-file", os.Getenv("WALLETS_FILE"), "YAML wallet keypair file (falls back to WALLET_KEYS)")
	mint := flag.String("mint", os.Getenv("MINT"), "Token mint to sell")
	percentage := flag.Float64("percentage", 25, "Balance percentage sold per wallet")
	slippageBps := flag.Int("slippage-bps", 300, "Slippage tolerance in basis points")
	limitWallets := flag.Int("limit-wallets", 8, "Max concurrent wallet pipelines")
	waveDeadline := flag.Duration("wave-deadline", 60*time.Second, "Overall wave timeout")
	buildTimeout := flag.Duration("build-timeout", 12*time.Second, "Per-wallet transaction build timeout")
	broadcastTimeout := flag.Duration("broadcast-timeout", 8*time.Second, "Per-wallet broadcast timeout")
	minSellAmount := flag.Uint64("min-sell-amount", 0, "Dust floor in raw base units (0 = disabled)")
	confirm := flag.Bool("confirm", false, "Poll signature statuses after the wave")
	confirmWait := flag.Duration("confirm-wait", 30*time.Second, "How long to poll for confirmations")
	outputDir := flag.String("output-dir", "", "Write CSV and Markdown reports to this directory (optional)")
	verbose := flag.Bool("verbose", false, "Verbose component logging")
	flag.Parse()

	ctx := context.Background()

	// Validate flags
	if *mint == "" {
		fmt.Fprintln(os.Stderr, "Error: --mint is required")
		os.Exit(1)
	}
	if *rpcEndpoint == "" {
		fmt.Fprintln(os.Stderr, "Error: --rpc-endpoint is required")
		os.Exit(1)
	}
	if *relayEndpoint == "" && *quoteEndpoint == "" {
		fmt.Fprintln(os.Stderr, "Error: --relay-endpoint or --quote-endpoint is required")
		os.Exit(1)
	}
	if *percentage <= 0 || *percentage > 100 {
		fmt.Fprintln(os.Stderr, "Error: --percentage must be in (0, 100]")
		os.Exit(1)
	}

	// Load wallets
	keypairs, err := loadWallets(*walletsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading wallets: %v\n", err)
		os.Exit(1)
	}
	signers := make([]execution.Signer, 0, len(keypairs))
	for _, kp := range keypairs {
		signers = append(signers, kp)
	}
	if len(signers) == 0 && *executorEndpoint == "" {
		fmt.Fprintln(os.Stderr, "Error: no wallets loaded. Use --wallets-file or WALLET_KEYS")
		os.Exit(1)
	}

	// Upstream clients
	rpc := solana.NewHTTPClient(*rpcEndpoint)

	var relay *swap.RelayClient
	if *relayEndpoint != "" {
		relay = swap.NewRelayClient(swap.RelayOptions{
			Endpoint: *relayEndpoint,
			APIKey:   *relayAPIKey,
			Verbose:  *verbose,
		})
	}
	var aggregator *swap.AggregatorClient
	if *quoteEndpoint != "" {
		aggregator = swap.NewAggregatorClient(swap.AggregatorOptions{
			Endpoint: *quoteEndpoint,
			Verbose:  *verbose,
		})
	}

	// Build paths are tried in order: relay first, aggregator as fallback
	var builders []execution.Builder
	if relay != nil {
		builders = append(builders, execution.NewRelayBuilder(relay))
	}
	if aggregator != nil {
		builders = append(builders, execution.NewAggregatorBuilder(aggregator, wallet.WSOLMint))
	}

	// Broadcast paths are raced per wallet
	var submitters []execution.Submitter
	if relay != nil {
		submitters = append(submitters, execution.NewRelaySubmitter(relay))
	}
	submitters = append(submitters, execution.NewRPCSubmitter(rpc))

	pipeline, err := execution.NewPipeline(execution.PipelineOptions{
		Balances:      execution.NewRPCBalanceFetcher(rpc),
		Builders:      builders,
		Submitters:    submitters,
		BuildTimeout:  *buildTimeout,
		SubmitTimeout: *broadcastTimeout,
		MinSellAmount: *minSellAmount,
		Verbose:       *verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating sell pipeline: %v\n", err)
		os.Exit(1)
	}

	orchestrator, err := execution.NewOrchestrator(execution.OrchestratorOptions{
		Pipeline:     pipeline,
		LimitWallets: *limitWallets,
		WaveDeadline: *waveDeadline,
		Verbose:      *verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating wave orchestrator: %v\n", err)
		os.Exit(1)
	}

	var external executor.Executor
	if *executorEndpoint != "" {
		external = executor.NewExternalExecutor(executor.ExternalOptions{
			Endpoint: *executorEndpoint,
			Secret:   *executorSecret,
			Verbose:  *verbose,
		})
	}
	resolver, err := executor.NewResolver(executor.ResolverOptions{
		External: external,
		Internal: executor.NewInternalExecutor(orchestrator, signers),
		Verbose:  *verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating executor resolver: %v\n", err)
		os.Exit(1)
	}

	// Run the wave
	fmt.Printf("Selling %.1f%% of %s across %d wallets (slippage %d bps)\n", *percentage, *mint, len(signers), *slippageBps)

	req := executor.Request{
		Mint:        *mint,
		Percentage:  *percentage,
		SlippageBps: *slippageBps,
		TriggeredBy: domain.TriggerManual,
	}

	start := time.Now()
	res, err := resolver.Execute(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing wave: %v\n", err)
		os.Exit(1)
	}

	printOutcome(res, time.Since(start))

	if *confirm && res.Batch != nil {
		confirmSignatures(ctx, rpc, res.Batch, *confirmWait)
	}

	if *outputDir != "" && res.Batch != nil {
		if err := writeReports(*outputDir, req, res); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing reports: %v\n", err)
			os.Exit(1)
		}
	}

	if !res.OK {
		os.Exit(1)
	}
}

// loadWallets reads keypairs from the YAML file when given, falling back to
// the WALLET_KEYS environment variable.
func loadWallets(path string) ([]*wallet.Keypair, error) {
	if path != "" {
		return wallet.LoadKeypairs(path)
	}
	if raw := os.Getenv("WALLET_KEYS"); raw != "" {
		return wallet.ParseKeypairList(raw)
	}
	return nil, nil
}

// printOutcome prints the wave summary and the per-wallet table.
func printOutcome(res *executor.ExecutionResult, elapsed time.Duration) {
	batch := res.Batch
	if batch == nil {
		fmt.Printf("Executor %s settled with status %d in %v (no batch detail)\n",
			res.Executor, res.Status, elapsed.Round(time.Millisecond))
		return
	}

	fmt.Printf("\nWave %s via %s: %d/%d wallets sold in %dms\n\n",
		batch.WaveID, res.Executor, batch.Successful, batch.Requested, batch.DurationMs)

	fmt.Printf("%-44s %-4s %-10s %-8s %14s %14s %7s  %s\n",
		"WALLET", "OK", "BUILD", "SUBMIT", "SOLD(RAW)", "RECEIVED", "MS", "SIGNATURE/ERROR")
	for _, r := range batch.Results {
		detail := r.TxSignature
		if !r.OK {
			detail = r.Err
		}
		ok := "no"
		if r.OK {
			ok = "yes"
		}
		fmt.Printf("%-44s %-4s %-10s %-8s %14d %14d %7d  %s\n",
			r.Wallet, ok, r.BuildPath, r.SubmitPath, r.AmountRaw, r.ReceivedRaw, r.DurationMs, detail)
	}

	fmt.Printf("\nTotal sold %d raw units, received %d raw units\n", batch.TotalRaw, batch.TotalReceived)
}

// confirmSignatures polls signature statuses until every successful
// wallet's transaction is confirmed or the wait expires. Submission alone
// is no landing guarantee, so the poll is best effort and informational.
func confirmSignatures(ctx context.Context, rpc solana.RPCClient, batch *domain.BatchResult, wait time.Duration) {
	var sigs []string
	for _, r := range batch.Results {
		if r.OK && r.TxSignature != "" {
			sigs = append(sigs, r.TxSignature)
		}
	}
	if len(sigs) == 0 {
		return
	}

	fmt.Printf("\nConfirming %d transactions...\n", len(sigs))
	deadline := time.Now().Add(wait)
	for {
		statuses, err := rpc.GetSignatureStatuses(ctx, sigs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching signature statuses: %v\n", err)
			return
		}

		confirmed := 0
		for _, st := range statuses {
			if st == nil {
				continue
			}
			if st.ConfirmationStatus == "confirmed" || st.ConfirmationStatus == "finalized" {
				confirmed++
			}
		}
		fmt.Printf("  %d/%d confirmed\n", confirmed, len(sigs))
		if confirmed == len(sigs) {
			return
		}
		if time.Now().After(deadline) {
			fmt.Println("Confirmation wait expired, remaining transactions may still land")
			return
		}
		time.Sleep(2 * time.Second)
	}
}

// writeReports renders the wave as CSV and Markdown files in dir.
func writeReports(dir string, req executor.Request, res *executor.ExecutionResult) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	batch := res.Batch
	record := &domain.WaveRecord{
		WaveID:        batch.WaveID,
		Mint:          batch.Mint,
		TriggeredBy:   req.TriggeredBy,
		Executor:      res.Executor,
		NetUSD:        req.NetUSD,
		SellUSD:       req.SellUSD,
		Percentage:    req.Percentage,
		Requested:     batch.Requested,
		Successful:    batch.Successful,
		Failed:        batch.Failed,
		TotalRaw:      int64(batch.TotalRaw),
		TotalReceived: int64(batch.TotalReceived),
		DurationMs:    batch.DurationMs,
		CreatedAt:     time.Now().UnixMilli(),
	}
	report := reporting.FromWave(record, batch.Results, time.Now())

	outputs := []struct {
		name    string
		content string
	}{
		{"sell_wave.csv", reporting.RenderCSV(report.Waves)},
		{"sell_wave_wallets.csv", reporting.RenderWalletCSV(report.Wallets)},
		{"SELL_WAVE.md", reporting.RenderMarkdown(report)},
	}

	fmt.Println("\nReports written:")
	for _, out := range outputs {
		path := filepath.Join(dir, out.name)
		if err := os.WriteFile(path, []byte(out.content), 0644); err != nil {
			return fmt.Errorf("write %s: %w", out.name, err)
		}
		fmt.Printf("  - %s\n", path)
	}
	return nil
}
