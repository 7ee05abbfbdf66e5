// Package engine wires ingest, trigger, execution, and persistence into
// one coordinator. Trades and netflow snapshots flow in, the trigger mode
// decides, the executor resolver runs the sell wave, and the outcome is
// stamped into the cooldown ledger and the wave log.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"solana-sell-engine/internal/domain"
	"solana-sell-engine/internal/executor"
	"solana-sell-engine/internal/feed"
	"solana-sell-engine/internal/idhash"
	"solana-sell-engine/internal/netflow"
	"solana-sell-engine/internal/observability"
	"solana-sell-engine/internal/storage"
	"solana-sell-engine/internal/trigger"
)

// Engine coordinates evaluation and execution per mint. Evaluations for
// the same mint are serialized so a cooldown stamp always lands before
// the next evaluation reads the ledger.
type Engine struct {
	mode     trigger.Mode
	window   *netflow.WindowStore
	source   netflow.Source
	push     *netflow.PushSource
	resolver *executor.Resolver

	trades   storage.TradeEventStore
	waves    storage.WaveStore
	cooldown storage.CooldownStore

	cooldownPeriod time.Duration
	defaultPct     float64
	defaultSlip    int
	dryRun         bool
	verbose        bool
	now            func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	tradesIngested    atomic.Int64
	snapshotsIngested atomic.Int64
	duplicateTrades   atomic.Int64
	wavesExecuted     atomic.Int64
	wavesSucceeded    atomic.Int64
}

// Options configures an Engine.
type Options struct {
	Mode     trigger.Mode
	Window   *netflow.WindowStore
	Source   netflow.Source      // sums served by Status, defaults to the window store
	Push     *netflow.PushSource // snapshot ingest target, nil when snapshots are unused
	Resolver *executor.Resolver

	Trades   storage.TradeEventStore // ingest audit log, optional
	Waves    storage.WaveStore       // wave log, optional
	Cooldown storage.CooldownStore

	CooldownPeriod     time.Duration // used by Status to report time remaining
	DefaultPercentage  float64       // manual sell fallback
	DefaultSlippageBps int           // manual sell fallback

	DryRun  bool
	Verbose bool
	Clock   func() time.Time
}

// New creates an Engine from options.
func New(opts Options) (*Engine, error) {
	if opts.Mode == nil {
		return nil, fmt.Errorf("engine requires a trigger mode")
	}
	if opts.Window == nil {
		return nil, fmt.Errorf("engine requires a window store")
	}
	if opts.Resolver == nil {
		return nil, fmt.Errorf("engine requires an executor resolver")
	}
	if opts.Cooldown == nil {
		return nil, fmt.Errorf("engine requires a cooldown store")
	}

	source := opts.Source
	if source == nil {
		source = netflow.NewLocalSource(opts.Window)
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Engine{
		mode:           opts.Mode,
		window:         opts.Window,
		source:         source,
		push:           opts.Push,
		resolver:       opts.Resolver,
		trades:         opts.Trades,
		waves:          opts.Waves,
		cooldown:       opts.Cooldown,
		cooldownPeriod: opts.CooldownPeriod,
		defaultPct:     opts.DefaultPercentage,
		defaultSlip:    opts.DefaultSlippageBps,
		dryRun:         opts.DryRun,
		verbose:        opts.Verbose,
		now:            clock,
		locks:          make(map[string]*sync.Mutex),
	}, nil
}

// WaveOutcome describes the execution half of a Result.
type WaveOutcome struct {
	OK       bool                `json:"ok"`
	Executor string              `json:"executor"`
	Status   int                 `json:"status,omitempty"`
	WaveID   string              `json:"waveId,omitempty"`
	Batch    *domain.BatchResult `json:"batch,omitempty"`
}

// Result is the outcome of one evaluate-and-execute pass. Wave is nil
// when no wave ran, either because the decision was NoSell or because
// the engine is in dry-run mode.
type Result struct {
	Evaluation *trigger.Evaluation `json:"evaluation,omitempty"`
	DryRun     bool                `json:"dryRun,omitempty"`
	Wave       *WaveOutcome        `json:"wave,omitempty"`
}

// EvaluateAndExecute runs one trigger evaluation for the mint and, on a
// sell decision, executes the wave before returning.
func (e *Engine) EvaluateAndExecute(ctx context.Context, mint string) (*Result, error) {
	if mint == "" {
		return nil, fmt.Errorf("mint is required")
	}

	lock := e.mintLock(mint)
	lock.Lock()
	defer lock.Unlock()

	eval, err := e.mode.Evaluate(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", mint, err)
	}
	if eval == nil {
		return nil, fmt.Errorf("trigger mode %s does not evaluate on demand", e.mode.Name())
	}
	return e.settle(ctx, eval)
}

// OnTrade ingests one trade: it is recorded in the netflow window, written
// to the audit log, and offered to the trigger mode. In perbuy mode a
// qualifying buy runs a sell wave before returning. The trigger hook is
// skipped when a wave for the same mint is already in flight; the trade
// itself is still recorded.
func (e *Engine) OnTrade(ctx context.Context, source string, trade domain.Trade) (*Result, error) {
	if trade.TradeID == "" {
		trade.TradeID = idhash.ComputeTradeID(trade.Mint, trade.Side, trade.TxSignature, trade.Timestamp)
	}

	if err := e.window.Record(trade); err != nil {
		observability.RecordIngestError(source, "invalid_trade")
		return nil, fmt.Errorf("%w: record trade: %v", feed.ErrBadMessage, err)
	}

	duplicate, err := e.persistTrade(ctx, trade)
	if err != nil {
		observability.RecordIngestError(source, "storage")
		return nil, fmt.Errorf("persist trade %s: %w", trade.TradeID, err)
	}
	if duplicate {
		e.duplicateTrades.Add(1)
		observability.RecordDuplicateTrade()
		e.logf("duplicate trade %s for %s dropped", trade.TradeID, trade.Mint)
		return nil, nil
	}

	e.tradesIngested.Add(1)
	observability.RecordTradeIngested(source, trade.Side)
	observability.DefaultMetrics.LastTradeIngested.SetToCurrentTime()

	lock := e.mintLock(trade.Mint)
	if !lock.TryLock() {
		e.logf("evaluation for %s in flight, trade %s recorded only", trade.Mint, trade.TradeID)
		return nil, nil
	}
	defer lock.Unlock()

	eval, err := e.mode.OnTrade(ctx, trade)
	if err != nil {
		return nil, fmt.Errorf("trigger on trade: %w", err)
	}
	if eval == nil {
		return nil, nil
	}
	return e.settle(ctx, eval)
}

// IngestSnapshot publishes a pushed netflow snapshot. Snapshots arriving
// on an engine without a push source are counted and dropped.
func (e *Engine) IngestSnapshot(ctx context.Context, source string, sums domain.WindowSums) error {
	_ = ctx

	if e.push == nil {
		observability.RecordIngestError(source, "snapshot_ignored")
		e.logf("snapshot for %s ignored, no push source configured", sums.Mint)
		return nil
	}

	if err := e.push.Publish(sums); err != nil {
		observability.RecordIngestError(source, "invalid_snapshot")
		return fmt.Errorf("%w: publish snapshot: %v", feed.ErrBadMessage, err)
	}

	e.snapshotsIngested.Add(1)
	observability.RecordSnapshotIngested()
	return nil
}

// SellNow runs a manual wave for the mint, bypassing the trigger checks.
// Percentage and slippage fall back to the engine defaults when zero or
// negative.
func (e *Engine) SellNow(ctx context.Context, mint string, percentage float64, slippageBps int) (*Result, error) {
	if mint == "" {
		return nil, fmt.Errorf("mint is required")
	}
	if percentage <= 0 {
		percentage = e.defaultPct
	}
	if percentage <= 0 || percentage > 100 {
		return nil, fmt.Errorf("percentage must be in (0, 100], got %v", percentage)
	}
	if slippageBps <= 0 {
		slippageBps = e.defaultSlip
	}

	lock := e.mintLock(mint)
	lock.Lock()
	defer lock.Unlock()

	observability.RecordSellDecision(domain.TriggerManual)

	if e.dryRun {
		e.logf("dry run: would sell %.1f%% of %s (manual)", percentage, mint)
		return &Result{DryRun: true}, nil
	}

	req := executor.Request{
		Mint:        mint,
		Percentage:  percentage,
		SlippageBps: slippageBps,
		TriggeredBy: domain.TriggerManual,
	}

	outcome, err := e.executeWave(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Result{Wave: outcome}, nil
}

// settle records the decision and, on Sell, runs the wave. The caller
// holds the mint lock.
func (e *Engine) settle(ctx context.Context, eval *trigger.Evaluation) (*Result, error) {
	decision := eval.Decision
	if !decision.Sell {
		observability.RecordNoSellDecision(decision.Mode, decision.Reason)
		e.logf("no sell for %s: %s", decision.Mint, decision.Reason)
		return &Result{Evaluation: eval}, nil
	}

	observability.RecordSellDecision(decision.Mode)

	if e.dryRun {
		e.logf("dry run: would sell %.1f%% of %s (net %.2f USD, target %.2f USD)",
			decision.Percentage, decision.Mint, decision.NetUSD, decision.SellUSD)
		return &Result{Evaluation: eval, DryRun: true}, nil
	}

	req := executor.Request{
		Mint:        decision.Mint,
		Percentage:  decision.Percentage,
		SlippageBps: decision.SlippageBps,
		NetUSD:      decision.NetUSD,
		SellUSD:     decision.SellUSD,
		TriggeredBy: decision.Mode,
	}

	outcome, err := e.executeWave(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Result{Evaluation: eval, Wave: outcome}, nil
}

// executeWave runs one wave through the resolver and settles its side
// effects: the cooldown stamp on success, the wave log rows, and the
// metrics. The caller holds the mint lock.
func (e *Engine) executeWave(ctx context.Context, req executor.Request) (*WaveOutcome, error) {
	started := e.now()

	res, err := e.resolver.Execute(ctx, req)
	if err != nil {
		e.wavesExecuted.Add(1)
		observability.RecordWave("none", "error", e.now().Sub(started).Seconds())
		return nil, fmt.Errorf("execute sell for %s: %w", req.Mint, err)
	}

	batch := res.Batch
	succeeded := res.OK
	if batch != nil {
		succeeded = batch.Successful > 0
	} else if res.OK {
		e.logf("executor %s reported success without a batch result", res.Executor)
	}

	outcome := &WaveOutcome{
		OK:       succeeded,
		Executor: res.Executor,
		Status:   res.Status,
		Batch:    batch,
	}

	// The stamp lands only after at least one wallet sold, so an
	// all-failure wave leaves the mint eligible for the next trigger.
	if succeeded {
		if err := e.cooldown.StampSell(ctx, req.Mint, e.now().UnixMilli()); err != nil {
			e.logf("stamp cooldown for %s: %v", req.Mint, err)
		}
	}

	e.wavesExecuted.Add(1)
	if succeeded {
		e.wavesSucceeded.Add(1)
	}

	status := "failure"
	if succeeded {
		status = "success"
	}

	if batch != nil {
		if batch.WaveID == "" {
			batch.WaveID = uuid.NewString()
		}
		outcome.WaveID = batch.WaveID

		e.persistWave(ctx, req, res.Executor, batch)
		for _, r := range batch.Results {
			observability.RecordWalletSell(r)
		}
		observability.RecordWave(res.Executor, status, float64(batch.DurationMs)/1000)
		e.logf("wave %s for %s via %s: %d/%d wallets sold",
			batch.WaveID, req.Mint, res.Executor, batch.Successful, batch.Requested)
	} else {
		observability.RecordWave(res.Executor, status, e.now().Sub(started).Seconds())
		e.logf("wave for %s via %s settled with status %d and no batch detail",
			req.Mint, res.Executor, res.Status)
	}
	observability.DefaultMetrics.LastWaveExecuted.SetToCurrentTime()

	return outcome, nil
}

// persistTrade writes the trade to the audit log. The bool reports a
// duplicate TradeID, which is not an error.
func (e *Engine) persistTrade(ctx context.Context, trade domain.Trade) (bool, error) {
	if e.trades == nil {
		return false, nil
	}

	event := &domain.TradeEvent{
		TradeID:     trade.TradeID,
		Mint:        trade.Mint,
		Side:        trade.Side,
		AmountUSD:   trade.AmountUSD,
		Wallet:      trade.Wallet,
		TxSignature: trade.TxSignature,
		Slot:        trade.Slot,
		Timestamp:   trade.Timestamp,
		IngestedAt:  e.now().UnixMilli(),
	}

	err := e.trades.Insert(ctx, event)
	if errors.Is(err, storage.ErrDuplicateKey) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

func (e *Engine) persistWave(ctx context.Context, req executor.Request, executorName string, batch *domain.BatchResult) {
	if e.waves == nil {
		return
	}

	record := &domain.WaveRecord{
		WaveID:        batch.WaveID,
		Mint:          req.Mint,
		TriggeredBy:   req.TriggeredBy,
		Executor:      executorName,
		NetUSD:        req.NetUSD,
		SellUSD:       req.SellUSD,
		Percentage:    req.Percentage,
		Requested:     batch.Requested,
		Successful:    batch.Successful,
		Failed:        batch.Failed,
		TotalRaw:      int64(batch.TotalRaw),
		TotalReceived: int64(batch.TotalReceived),
		DurationMs:    batch.DurationMs,
		CreatedAt:     e.now().UnixMilli(),
	}

	if err := e.waves.Insert(ctx, record); err != nil {
		e.logf("persist wave %s: %v", record.WaveID, err)
		return
	}
	if err := e.waves.InsertResults(ctx, record.WaveID, batch.Results); err != nil {
		e.logf("persist wave %s results: %v", record.WaveID, err)
	}
}

func (e *Engine) mintLock(mint string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.locks[mint]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[mint] = lock
	}
	return lock
}

func (e *Engine) logf(format string, args ...interface{}) {
	if e.verbose {
		log.Printf("[engine] "+format, args...)
	}
}
