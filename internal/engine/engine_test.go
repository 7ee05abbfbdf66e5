package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"solana-sell-engine/internal/domain"
	"solana-sell-engine/internal/execution"
	"solana-sell-engine/internal/executor"
	"solana-sell-engine/internal/feed"
	"solana-sell-engine/internal/netflow"
	"solana-sell-engine/internal/storage"
	"solana-sell-engine/internal/storage/memory"
	"solana-sell-engine/internal/trigger"
)

const testMint = "So11111111111111111111111111111111111111112"

type fakeRunner struct {
	mu       sync.Mutex
	calls    int
	lastMint string
	lastPct  float64
	lastSlip int
	batch    domain.BatchResult
}

func (r *fakeRunner) SellAll(_ context.Context, _ []execution.Signer, mint string, percentage float64, slippageBps int) domain.BatchResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.lastMint = mint
	r.lastPct = percentage
	r.lastSlip = slippageBps
	batch := r.batch
	batch.Mint = mint
	return batch
}

func (r *fakeRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func successBatch() domain.BatchResult {
	return domain.BatchResult{
		Requested:     3,
		Successful:    2,
		Failed:        1,
		TotalRaw:      750000,
		TotalReceived: 375000,
		DurationMs:    1800,
		Results: []domain.WalletSellResult{
			{Wallet: "WalletA", OK: true, TxSignature: "sigA", AmountRaw: 500000, ReceivedRaw: 250000, DurationMs: 900},
			{Wallet: "WalletB", OK: true, TxSignature: "sigB", AmountRaw: 250000, ReceivedRaw: 125000, DurationMs: 1100},
			{Wallet: "WalletC", OK: false, Err: "no balance", DurationMs: 400},
		},
	}
}

func failedBatch() domain.BatchResult {
	return domain.BatchResult{
		Requested:  2,
		Successful: 0,
		Failed:     2,
		DurationMs: 1200,
		Results: []domain.WalletSellResult{
			{Wallet: "WalletA", OK: false, Err: "build failed"},
			{Wallet: "WalletB", OK: false, Err: "broadcast failed"},
		},
	}
}

func netflowConfig() trigger.Config {
	return trigger.Config{
		Mode:          domain.TriggerNetflow,
		WindowSeconds: 120,
		NetFraction:   0.25,
		MinNetUSD:     50,
		Cooldown:      30 * time.Second,
		Percentage:    25,
		SlippageBps:   300,
		Decimals:      6,
	}
}

func perBuyConfig() trigger.Config {
	cfg := netflowConfig()
	cfg.Mode = domain.TriggerPerBuy
	cfg.MinBuyUSD = 200
	return cfg
}

type engineFixture struct {
	engine   *Engine
	window   *netflow.WindowStore
	push     *netflow.PushSource
	runner   *fakeRunner
	trades   *memory.TradeEventStore
	waves    *memory.WaveStore
	cooldown *memory.CooldownStore
	at       time.Time
}

func newTestEngine(t *testing.T, cfg trigger.Config, adjust func(*Options)) *engineFixture {
	t.Helper()

	at := time.UnixMilli(1_700_000_000_000)
	clock := func() time.Time { return at }

	windowSeconds := cfg.WindowSeconds
	if windowSeconds <= 0 {
		windowSeconds = 120
	}
	window := netflow.NewWindowStore(windowSeconds, netflow.WithWindowClock(clock))
	push := netflow.NewPushSource(netflow.PushSourceOptions{
		WindowSeconds: windowSeconds,
		Fallback:      netflow.NewLocalSource(window),
		Clock:         clock,
	})

	trades := memory.NewTradeEventStore()
	waves := memory.NewWaveStore()
	cooldown := memory.NewCooldownStore()

	mode, err := trigger.FromConfig(cfg, trigger.Deps{
		Source:   push,
		Cooldown: cooldown,
		Oracle:   &trigger.StaticOracle{Prices: map[string]float64{testMint: 0.002}},
		Clock:    clock,
	})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}

	runner := &fakeRunner{batch: successBatch()}
	resolver, err := executor.NewResolver(executor.ResolverOptions{
		Internal: executor.NewInternalExecutor(runner, nil),
	})
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	options := Options{
		Mode:               mode,
		Window:             window,
		Source:             push,
		Push:               push,
		Resolver:           resolver,
		Trades:             trades,
		Waves:              waves,
		Cooldown:           cooldown,
		CooldownPeriod:     cfg.Cooldown,
		DefaultPercentage:  cfg.Percentage,
		DefaultSlippageBps: cfg.SlippageBps,
		Clock:              clock,
	}
	if adjust != nil {
		adjust(&options)
	}

	eng, err := New(options)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	return &engineFixture{
		engine:   eng,
		window:   window,
		push:     push,
		runner:   runner,
		trades:   trades,
		waves:    waves,
		cooldown: cooldown,
		at:       at,
	}
}

func (f *engineFixture) trade(side string, usd float64, sig string) domain.Trade {
	return domain.Trade{
		Mint:        testMint,
		Side:        side,
		AmountUSD:   usd,
		TxSignature: sig,
		Timestamp:   f.at.UnixMilli(),
	}
}

func TestEvaluateAndExecuteSellFlow(t *testing.T) {
	f := newTestEngine(t, netflowConfig(), nil)
	ctx := context.Background()

	if err := f.window.Record(f.trade(domain.TradeSideBuy, 300, "sig-1")); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := f.window.Record(f.trade(domain.TradeSideSell, 100, "sig-2")); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	result, err := f.engine.EvaluateAndExecute(ctx, testMint)
	if err != nil {
		t.Fatalf("EvaluateAndExecute failed: %v", err)
	}

	decision := result.Evaluation.Decision
	if !decision.Sell {
		t.Fatalf("expected sell decision, got no-sell (%s)", decision.Reason)
	}
	if decision.NetUSD != 200 {
		t.Errorf("expected net 200, got %v", decision.NetUSD)
	}
	if decision.SellUSD != 50 {
		t.Errorf("expected sell target 50 USD, got %v", decision.SellUSD)
	}

	if result.Wave == nil {
		t.Fatal("expected a wave outcome")
	}
	if !result.Wave.OK {
		t.Error("expected wave outcome OK")
	}
	if result.Wave.Executor != domain.ExecutorInternal {
		t.Errorf("expected internal executor, got %s", result.Wave.Executor)
	}
	if result.Wave.WaveID == "" {
		t.Error("expected a wave ID")
	}

	if f.runner.callCount() != 1 {
		t.Fatalf("expected 1 wave execution, got %d", f.runner.callCount())
	}
	if f.runner.lastMint != testMint {
		t.Errorf("expected runner mint %s, got %s", testMint, f.runner.lastMint)
	}
	if f.runner.lastPct != 25 {
		t.Errorf("expected runner percentage 25, got %v", f.runner.lastPct)
	}
	if f.runner.lastSlip != 300 {
		t.Errorf("expected runner slippage 300, got %d", f.runner.lastSlip)
	}

	last, err := f.cooldown.LastSellAt(ctx, testMint)
	if err != nil {
		t.Fatalf("expected cooldown stamp, got error: %v", err)
	}
	if last != f.at.UnixMilli() {
		t.Errorf("expected stamp at %d, got %d", f.at.UnixMilli(), last)
	}

	record, err := f.waves.GetByID(ctx, result.Wave.WaveID)
	if err != nil {
		t.Fatalf("expected persisted wave, got error: %v", err)
	}
	if record.TriggeredBy != domain.TriggerNetflow {
		t.Errorf("expected trigger netflow, got %s", record.TriggeredBy)
	}
	if record.Executor != domain.ExecutorInternal {
		t.Errorf("expected executor internal, got %s", record.Executor)
	}
	if record.NetUSD != 200 || record.SellUSD != 50 || record.Percentage != 25 {
		t.Errorf("wave sizing mismatch: %+v", record)
	}
	if record.Requested != 3 || record.Successful != 2 || record.Failed != 1 {
		t.Errorf("wave counts mismatch: %+v", record)
	}

	rows, err := f.waves.GetResults(ctx, result.Wave.WaveID)
	if err != nil {
		t.Fatalf("GetResults failed: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("expected 3 wallet rows, got %d", len(rows))
	}
}

func TestEvaluateAndExecuteNoSell(t *testing.T) {
	f := newTestEngine(t, netflowConfig(), nil)
	ctx := context.Background()

	result, err := f.engine.EvaluateAndExecute(ctx, testMint)
	if err != nil {
		t.Fatalf("EvaluateAndExecute failed: %v", err)
	}

	if result.Evaluation.Decision.Sell {
		t.Fatal("expected no-sell decision for an empty window")
	}
	if result.Evaluation.Decision.Reason != "net non-positive" {
		t.Errorf("expected reason %q, got %q", "net non-positive", result.Evaluation.Decision.Reason)
	}
	if result.Wave != nil {
		t.Error("expected no wave outcome")
	}
	if f.runner.callCount() != 0 {
		t.Errorf("expected no wave execution, got %d", f.runner.callCount())
	}

	if _, err := f.cooldown.LastSellAt(ctx, testMint); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected no cooldown stamp, got %v", err)
	}

	waves, err := f.waves.GetByMint(ctx, testMint)
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}
	if len(waves) != 0 {
		t.Errorf("expected no persisted waves, got %d", len(waves))
	}
}

func TestEvaluateAndExecuteCooldown(t *testing.T) {
	f := newTestEngine(t, netflowConfig(), nil)
	ctx := context.Background()

	if err := f.window.Record(f.trade(domain.TradeSideBuy, 300, "sig-1")); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := f.cooldown.StampSell(ctx, testMint, f.at.UnixMilli()-10_000); err != nil {
		t.Fatalf("StampSell failed: %v", err)
	}

	result, err := f.engine.EvaluateAndExecute(ctx, testMint)
	if err != nil {
		t.Fatalf("EvaluateAndExecute failed: %v", err)
	}

	if result.Evaluation.Decision.Sell {
		t.Fatal("expected no-sell during cooldown")
	}
	if result.Evaluation.Decision.Reason != "cooldown" {
		t.Errorf("expected reason %q, got %q", "cooldown", result.Evaluation.Decision.Reason)
	}
	if f.runner.callCount() != 0 {
		t.Errorf("expected no wave execution, got %d", f.runner.callCount())
	}
}

func TestCooldownStampedOnlyOnSuccess(t *testing.T) {
	f := newTestEngine(t, netflowConfig(), nil)
	f.runner.batch = failedBatch()
	ctx := context.Background()

	if err := f.window.Record(f.trade(domain.TradeSideBuy, 300, "sig-1")); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	result, err := f.engine.EvaluateAndExecute(ctx, testMint)
	if err != nil {
		t.Fatalf("EvaluateAndExecute failed: %v", err)
	}

	if result.Wave == nil {
		t.Fatal("expected a wave outcome")
	}
	if result.Wave.OK {
		t.Error("expected wave outcome not OK when every wallet failed")
	}

	if _, err := f.cooldown.LastSellAt(ctx, testMint); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected no cooldown stamp after an all-failure wave, got %v", err)
	}

	// The failed wave is still logged.
	record, err := f.waves.GetByID(ctx, result.Wave.WaveID)
	if err != nil {
		t.Fatalf("expected persisted wave, got error: %v", err)
	}
	if record.Successful != 0 || record.Failed != 2 {
		t.Errorf("wave counts mismatch: %+v", record)
	}

	// The mint stays eligible, so the next evaluation triggers again.
	if _, err := f.engine.EvaluateAndExecute(ctx, testMint); err != nil {
		t.Fatalf("EvaluateAndExecute failed: %v", err)
	}
	if f.runner.callCount() != 2 {
		t.Errorf("expected a second wave execution, got %d", f.runner.callCount())
	}
}

func TestDryRunSkipsExecution(t *testing.T) {
	f := newTestEngine(t, netflowConfig(), func(o *Options) { o.DryRun = true })
	ctx := context.Background()

	if err := f.window.Record(f.trade(domain.TradeSideBuy, 300, "sig-1")); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	result, err := f.engine.EvaluateAndExecute(ctx, testMint)
	if err != nil {
		t.Fatalf("EvaluateAndExecute failed: %v", err)
	}

	if !result.DryRun {
		t.Error("expected dry-run result")
	}
	if !result.Evaluation.Decision.Sell {
		t.Error("expected the sell decision to be reported")
	}
	if result.Wave != nil {
		t.Error("expected no wave outcome in dry-run mode")
	}
	if f.runner.callCount() != 0 {
		t.Errorf("expected no wave execution, got %d", f.runner.callCount())
	}
	if _, err := f.cooldown.LastSellAt(ctx, testMint); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected no cooldown stamp in dry-run mode, got %v", err)
	}
}

func TestOnTradePerBuy(t *testing.T) {
	f := newTestEngine(t, perBuyConfig(), nil)
	ctx := context.Background()

	result, err := f.engine.OnTrade(ctx, "test", f.trade(domain.TradeSideBuy, 300, "sig-1"))
	if err != nil {
		t.Fatalf("OnTrade failed: %v", err)
	}
	if result == nil || result.Wave == nil || !result.Wave.OK {
		t.Fatalf("expected a successful wave for a qualifying buy, got %+v", result)
	}
	if f.runner.callCount() != 1 {
		t.Fatalf("expected 1 wave execution, got %d", f.runner.callCount())
	}

	// The ingested trade lands in the audit log with a computed ID.
	events, err := f.trades.GetByMint(ctx, testMint)
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 audit event, got %d", len(events))
	}
	if len(events[0].TradeID) != 64 {
		t.Errorf("expected a computed 64-char trade ID, got %q", events[0].TradeID)
	}

	// A sub-threshold buy is ignored.
	result, err = f.engine.OnTrade(ctx, "test", f.trade(domain.TradeSideBuy, 100, "sig-2"))
	if err != nil {
		t.Fatalf("OnTrade failed: %v", err)
	}
	if result != nil {
		t.Errorf("expected no evaluation for a sub-threshold buy, got %+v", result)
	}

	// A qualifying buy during cooldown yields a no-sell evaluation.
	result, err = f.engine.OnTrade(ctx, "test", f.trade(domain.TradeSideBuy, 400, "sig-3"))
	if err != nil {
		t.Fatalf("OnTrade failed: %v", err)
	}
	if result == nil || result.Evaluation == nil {
		t.Fatal("expected an evaluation for a qualifying buy")
	}
	if result.Evaluation.Decision.Sell {
		t.Error("expected no-sell during cooldown")
	}
	if result.Evaluation.Decision.Reason != "cooldown" {
		t.Errorf("expected reason %q, got %q", "cooldown", result.Evaluation.Decision.Reason)
	}
	if f.runner.callCount() != 1 {
		t.Errorf("expected no further executions, got %d", f.runner.callCount())
	}
}

func TestOnTradeNetflowRecordsOnly(t *testing.T) {
	f := newTestEngine(t, netflowConfig(), nil)
	ctx := context.Background()

	result, err := f.engine.OnTrade(ctx, "test", f.trade(domain.TradeSideBuy, 300, "sig-1"))
	if err != nil {
		t.Fatalf("OnTrade failed: %v", err)
	}
	if result != nil {
		t.Errorf("expected no evaluation in netflow mode, got %+v", result)
	}

	sums := f.window.Sums(testMint)
	if sums.BuyUSD != 300 || sums.TradeCount != 1 {
		t.Errorf("expected the trade in the window, got %+v", sums)
	}
	if f.runner.callCount() != 0 {
		t.Errorf("expected no wave execution, got %d", f.runner.callCount())
	}
}

func TestOnTradeDuplicate(t *testing.T) {
	f := newTestEngine(t, netflowConfig(), nil)
	ctx := context.Background()

	trade := f.trade(domain.TradeSideBuy, 300, "sig-1")
	trade.TradeID = "dup-1"

	if _, err := f.engine.OnTrade(ctx, "test", trade); err != nil {
		t.Fatalf("OnTrade failed: %v", err)
	}
	if _, err := f.engine.OnTrade(ctx, "test", trade); err != nil {
		t.Fatalf("OnTrade failed on duplicate: %v", err)
	}

	sums := f.window.Sums(testMint)
	if sums.BuyUSD != 300 || sums.TradeCount != 1 {
		t.Errorf("expected the duplicate to be dropped, got %+v", sums)
	}

	events, err := f.trades.GetByMint(ctx, testMint)
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 audit event, got %d", len(events))
	}

	st, err := f.engine.Status(ctx, testMint)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if st.TradesIngested != 1 {
		t.Errorf("expected 1 ingested trade, got %d", st.TradesIngested)
	}
	if st.DuplicateTrades != 1 {
		t.Errorf("expected 1 duplicate trade, got %d", st.DuplicateTrades)
	}
}

func TestOnTradeInvalid(t *testing.T) {
	f := newTestEngine(t, netflowConfig(), nil)

	trade := f.trade(domain.TradeSideBuy, 300, "sig-1")
	trade.Mint = ""

	_, err := f.engine.OnTrade(context.Background(), "test", trade)
	if !errors.Is(err, feed.ErrBadMessage) {
		t.Errorf("expected ErrBadMessage for an invalid trade, got %v", err)
	}
}

func TestIngestSnapshotDrivesEvaluation(t *testing.T) {
	f := newTestEngine(t, netflowConfig(), nil)
	ctx := context.Background()

	sums := domain.WindowSums{
		Mint:          testMint,
		BuyUSD:        500,
		SellUSD:       100,
		TradeCount:    8,
		WindowSeconds: 120,
		AsOf:          f.at.UnixMilli(),
		Source:        domain.WindowSourcePush,
	}
	if err := f.engine.IngestSnapshot(ctx, "test", sums); err != nil {
		t.Fatalf("IngestSnapshot failed: %v", err)
	}

	result, err := f.engine.EvaluateAndExecute(ctx, testMint)
	if err != nil {
		t.Fatalf("EvaluateAndExecute failed: %v", err)
	}

	decision := result.Evaluation.Decision
	if !decision.Sell {
		t.Fatalf("expected sell decision from the pushed snapshot, got no-sell (%s)", decision.Reason)
	}
	if decision.NetUSD != 400 {
		t.Errorf("expected net 400 from the snapshot, got %v", decision.NetUSD)
	}
	if decision.SellUSD != 100 {
		t.Errorf("expected sell target 100 USD, got %v", decision.SellUSD)
	}

	st, err := f.engine.Status(ctx, testMint)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if st.SnapshotsIngested != 1 {
		t.Errorf("expected 1 ingested snapshot, got %d", st.SnapshotsIngested)
	}
	if st.Sums.Source != domain.WindowSourcePush {
		t.Errorf("expected push sums in status, got %s", st.Sums.Source)
	}
}

func TestStaleSnapshotFallsBackToLocal(t *testing.T) {
	f := newTestEngine(t, netflowConfig(), nil)
	ctx := context.Background()

	// 123s old exceeds the 120s window plus the 2s grace.
	sums := domain.WindowSums{
		Mint:          testMint,
		BuyUSD:        500,
		SellUSD:       100,
		TradeCount:    8,
		WindowSeconds: 120,
		AsOf:          f.at.UnixMilli() - 123_000,
		Source:        domain.WindowSourcePush,
	}
	if err := f.engine.IngestSnapshot(ctx, "test", sums); err != nil {
		t.Fatalf("IngestSnapshot failed: %v", err)
	}

	result, err := f.engine.EvaluateAndExecute(ctx, testMint)
	if err != nil {
		t.Fatalf("EvaluateAndExecute failed: %v", err)
	}

	if result.Evaluation.Decision.Sell {
		t.Fatal("expected no-sell, the stale snapshot must not be served")
	}
	if result.Evaluation.Decision.Reason != "net non-positive" {
		t.Errorf("expected reason %q, got %q", "net non-positive", result.Evaluation.Decision.Reason)
	}
}

func TestSellNow(t *testing.T) {
	f := newTestEngine(t, netflowConfig(), nil)
	ctx := context.Background()

	result, err := f.engine.SellNow(ctx, testMint, 10, 0)
	if err != nil {
		t.Fatalf("SellNow failed: %v", err)
	}

	if result.Wave == nil || !result.Wave.OK {
		t.Fatalf("expected a successful manual wave, got %+v", result)
	}
	if f.runner.lastPct != 10 {
		t.Errorf("expected runner percentage 10, got %v", f.runner.lastPct)
	}
	if f.runner.lastSlip != 300 {
		t.Errorf("expected default slippage 300, got %d", f.runner.lastSlip)
	}

	record, err := f.waves.GetByID(ctx, result.Wave.WaveID)
	if err != nil {
		t.Fatalf("expected persisted wave, got error: %v", err)
	}
	if record.TriggeredBy != domain.TriggerManual {
		t.Errorf("expected trigger manual, got %s", record.TriggeredBy)
	}

	if _, err := f.cooldown.LastSellAt(ctx, testMint); err != nil {
		t.Errorf("expected cooldown stamp after manual wave, got %v", err)
	}
}

func TestSellNowValidation(t *testing.T) {
	f := newTestEngine(t, netflowConfig(), nil)
	ctx := context.Background()

	if _, err := f.engine.SellNow(ctx, "", 10, 0); err == nil {
		t.Error("expected error for missing mint")
	}
	if _, err := f.engine.SellNow(ctx, testMint, 150, 0); err == nil {
		t.Error("expected error for percentage above 100")
	}
	if f.runner.callCount() != 0 {
		t.Errorf("expected no executions, got %d", f.runner.callCount())
	}
}

func TestStatusReportsCooldownRemaining(t *testing.T) {
	f := newTestEngine(t, netflowConfig(), nil)
	ctx := context.Background()

	if err := f.window.Record(f.trade(domain.TradeSideBuy, 300, "sig-1")); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if _, err := f.engine.EvaluateAndExecute(ctx, testMint); err != nil {
		t.Fatalf("EvaluateAndExecute failed: %v", err)
	}

	st, err := f.engine.Status(ctx, testMint)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}

	if st.Mode != domain.TriggerNetflow {
		t.Errorf("expected mode netflow, got %s", st.Mode)
	}
	if st.NetUSD != 300 {
		t.Errorf("expected net 300, got %v", st.NetUSD)
	}
	if st.LastSellAt != f.at.UnixMilli() {
		t.Errorf("expected last sell at %d, got %d", f.at.UnixMilli(), st.LastSellAt)
	}
	if st.CooldownRemaining != 30_000 {
		t.Errorf("expected 30000ms cooldown remaining, got %d", st.CooldownRemaining)
	}
	if st.WavesExecuted != 1 || st.WavesSucceeded != 1 {
		t.Errorf("expected 1/1 wave counters, got %d/%d", st.WavesExecuted, st.WavesSucceeded)
	}
}

func TestPerBuyModeDoesNotEvaluateOnDemand(t *testing.T) {
	f := newTestEngine(t, perBuyConfig(), nil)

	if _, err := f.engine.EvaluateAndExecute(context.Background(), testMint); err == nil {
		t.Error("expected error for on-demand evaluation in perbuy mode")
	}
}

func TestNewValidation(t *testing.T) {
	f := newTestEngine(t, netflowConfig(), nil)

	base := Options{
		Mode:     f.engine.mode,
		Window:   f.window,
		Resolver: f.engine.resolver,
		Cooldown: f.cooldown,
	}

	missing := []func(*Options){
		func(o *Options) { o.Mode = nil },
		func(o *Options) { o.Window = nil },
		func(o *Options) { o.Resolver = nil },
		func(o *Options) { o.Cooldown = nil },
	}
	for i, drop := range missing {
		opts := base
		drop(&opts)
		if _, err := New(opts); err == nil {
			t.Errorf("case %d: expected error for missing dependency", i)
		}
	}

	if _, err := New(base); err != nil {
		t.Errorf("expected complete options to validate, got %v", err)
	}
}
