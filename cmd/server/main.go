// Package main provides the unified sell engine service that runs all
// components together:
// - Ingest (continuous): WebSocket trade feed, Kafka consumer, HTTP API
// - Trigger (continuous): netflow polling or per-buy reaction on ingest
// - Execution (on demand): multi-wallet sell waves through the resolved executor
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"solana-sell-engine/internal/domain"
	"solana-sell-engine/internal/engine"
	"solana-sell-engine/internal/execution"
	"solana-sell-engine/internal/executor"
	"solana-sell-engine/internal/feed"
	"solana-sell-engine/internal/netflow"
	"solana-sell-engine/internal/observability"
	"solana-sell-engine/internal/solana"
	"solana-sell-engine/internal/storage"
	chstore "solana-sell-engine/internal/storage/clickhouse"
	"solana-sell-engine/internal/storage/memory"
	"solana-sell-engine/internal/storage/migrations"
	pgstore "solana-sell-engine/internal/storage/postgres"
	redisstore "solana-sell-engine/internal/storage/redis"
	"solana-sell-engine/internal/swap"
	"solana-sell-engine/internal/trigger"
	"solana-sell-engine/internal/wallet"
)

// Server holds the running components of the unified service.
type Server struct {
	// Configuration
	mint         string
	triggerMode  string
	wsEndpoint   string
	kafkaBrokers []string
	kafkaTopic   string
	kafkaGroup   string
	pollInterval time.Duration
	dryRun       bool
	verbose      bool

	// Components
	engine *engine.Engine
	logger *log.Logger

	// State
	mu          sync.Mutex
	startedAt   time.Time
	lastPollRun time.Time

	// Stats
	pollRuns int
}

// engineStores holds the storage implementations the engine persists to.
type engineStores struct {
	trades   storage.TradeEventStore
	waves    storage.WaveStore
	cooldown storage.CooldownStore
}

func main() {
	// Load .env if present. Existing environment variables win.
	godotenv.Load()

	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	relayEndpoint := flag.String("relay-endpoint", os.Getenv("RELAY_ENDPOINT"), "Transaction relay endpoint")
	relayAPIKey := flag.String("relay-api-key", os.Getenv("RELAY_API_KEY"), "Relay API key")
	quoteEndpoint := flag.String("quote-endpoint", os.Getenv("QUOTE_ENDPOINT"), "Swap aggregator endpoint (relay fallback)")
	priceEndpoint := flag.String("price-endpoint", os.Getenv("PRICE_ENDPOINT"), "Price oracle endpoint (optional)")
	executorEndpoint := flag.String("executor-endpoint", os.Getenv("EXECUTOR_ENDPOINT"), "External executor endpoint (optional)")
	executorSecret := flag.String("executor-secret", os.Getenv("EXECUTOR_SECRET"), "External executor bearer secret")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	redisAddr := flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "Redis address for shared cooldown state (optional)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	walletsFile := flag.String("wallets-file", os.Getenv("WALLETS_FILE"), "YAML wallet keypair file (falls back to WALLET_KEYS)")
	mint := flag.String("mint", os.Getenv("MINT"), "Token mint under management")
	window := flag.Int("window", 120, "Netflow window length in seconds")
	netFraction := flag.Float64("net-fraction", 0.25, "Fraction of window net converted to the USD sell target")
	minNetUSD := flag.Float64("min-net-usd", 50, "Minimum window net in USD to trigger a wave")
	maxSellUSD := flag.Float64("max-sell-usd", 0, "Advisory USD cap per wave (0 = uncapped)")
	cooldown := flag.Duration("cooldown", 30*time.Second, "Minimum gap between successful waves per mint")
	sellPercentage := flag.Float64("sell-percentage", 25, "Balance percentage sold per wallet")
	slippageBps := flag.Int("slippage-bps", 300, "Slippage tolerance in basis points")
	triggerMode := flag.String("trigger-mode", domain.TriggerNetflow, "Trigger mode: netflow or perbuy")
	minBuyUSD := flag.Float64("min-buy-usd", 200, "perbuy: minimum single buy in USD to react to")
	tokenDecimals := flag.Int("token-decimals", 6, "Token decimals for the advisory unit estimate")
	pollInterval := flag.Duration("poll-interval", 5*time.Second, "Netflow evaluation interval")
	limitWallets := flag.Int("limit-wallets", 8, "Max concurrent wallet pipelines per wave")
	waveDeadline := flag.Duration("wave-deadline", 60*time.Second, "Overall wave timeout")
	buildTimeout := flag.Duration("build-timeout", 12*time.Second, "Per-wallet transaction build timeout")
	broadcastTimeout := flag.Duration("broadcast-timeout", 8*time.Second, "Per-wallet broadcast timeout")
	minSellAmount := flag.Uint64("min-sell-amount", 0, "Dust floor in raw base units (0 = disabled)")
	feedWSEndpoint := flag.String("feed-ws-endpoint", os.Getenv("FEED_WS_ENDPOINT"), "WebSocket trade feed endpoint (optional)")
	kafkaBrokers := flag.String("kafka-brokers", os.Getenv("KAFKA_BROKERS"), "Comma-separated Kafka brokers (optional)")
	kafkaTopic := flag.String("kafka-topic", envOr("KAFKA_TOPIC", "trades"), "Kafka trade topic")
	kafkaGroup := flag.String("kafka-group", envOr("KAFKA_GROUP", "sell-engine"), "Kafka consumer group")
	httpAddr := flag.String("http-addr", envOr("HTTP_ADDR", ":8080"), "HTTP API and metrics address")
	logFile := flag.String("log-file", os.Getenv("LOG_FILE"), "Rotating log file path (default stdout only)")
	dryRun := flag.Bool("dry-run", false, "Evaluate and log decisions without executing")
	verbose := flag.Bool("verbose", false, "Verbose component logging")

	flag.Parse()

	// Setup logger, with rotation when a log file is configured
	var logOut io.Writer = os.Stdout
	if *logFile != "" {
		logOut = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   *logFile,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		})
	}
	log.SetOutput(logOut)
	logger := log.New(logOut, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if *relayEndpoint == "" && *quoteEndpoint == "" {
		logger.Fatal("--relay-endpoint or --quote-endpoint is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *redisAddr, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Load wallets
	keypairs, err := loadWallets(*walletsFile)
	if err != nil {
		logger.Fatalf("Failed to load wallets: %v", err)
	}
	signers := make([]execution.Signer, 0, len(keypairs))
	for _, kp := range keypairs {
		signers = append(signers, kp)
	}
	if len(signers) == 0 && *executorEndpoint == "" && !*dryRun {
		logger.Fatal("No wallets loaded. Use --wallets-file or WALLET_KEYS (or --dry-run)")
	}
	logger.Printf("Loaded %d wallets", len(signers))

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
		logger.Fatalf("Failed to create sell pipeline: %v", err)
	}

	orchestrator, err := execution.NewOrchestrator(execution.OrchestratorOptions{
		Pipeline:     pipeline,
		LimitWallets: *limitWallets,
		WaveDeadline: *waveDeadline,
		Verbose:      *verbose,
	})
	if err != nil {
		logger.Fatalf("Failed to create wave orchestrator: %v", err)
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
		logger.Fatalf("Failed to create executor resolver: %v", err)
	}

	// Netflow window and trigger
	windowStore := netflow.NewWindowStore(*window)
	pushSource := netflow.NewPushSource(netflow.PushSourceOptions{
		WindowSeconds: *window,
		Fallback:      netflow.NewLocalSource(windowStore),
		Verbose:       *verbose,
	})

	var oracle trigger.PriceOracle
	if *priceEndpoint != "" {
		oracle = swap.NewPriceClient(swap.PriceOptions{Endpoint: *priceEndpoint})
	}

	mode, err := trigger.FromConfig(trigger.Config{
		Mode:          *triggerMode,
		WindowSeconds: *window,
		NetFraction:   *netFraction,
		MinNetUSD:     *minNetUSD,
		MaxSellUSD:    *maxSellUSD,
		Cooldown:      *cooldown,
		Percentage:    *sellPercentage,
		SlippageBps:   *slippageBps,
		MinSellUnits:  *minSellAmount,
		MinBuyUSD:     *minBuyUSD,
		Decimals:      *tokenDecimals,
	}, trigger.Deps{
		Source:   pushSource,
		Cooldown: stores.cooldown,
		Oracle:   oracle,
	})
	if err != nil {
		logger.Fatalf("Invalid trigger config: %v", err)
	}

	eng, err := engine.New(engine.Options{
		Mode:               mode,
		Window:             windowStore,
		Source:             pushSource,
		Push:               pushSource,
		Resolver:           resolver,
		Trades:             stores.trades,
		Waves:              stores.waves,
		Cooldown:           stores.cooldown,
		CooldownPeriod:     *cooldown,
		DefaultPercentage:  *sellPercentage,
		DefaultSlippageBps: *slippageBps,
		DryRun:             *dryRun,
		Verbose:            *verbose,
	})
	if err != nil {
		logger.Fatalf("Failed to create engine: %v", err)
	}

	if *dryRun {
		logger.Println("Dry run enabled: decisions are logged, nothing is executed")
	}

	// Create server
	server := &Server{
		mint:         *mint,
		triggerMode:  *triggerMode,
		wsEndpoint:   *feedWSEndpoint,
		kafkaBrokers: splitList(*kafkaBrokers),
		kafkaTopic:   *kafkaTopic,
		kafkaGroup:   *kafkaGroup,
		pollInterval: *pollInterval,
		dryRun:       *dryRun,
		verbose:      *verbose,
		engine:       eng,
		logger:       logger,
		startedAt:    time.Now(),
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start HTTP server
	go server.startHTTPServer(*httpAddr)

	// Run the engine components
	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// envOr returns the environment value for key, or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(raw string) []string {
	var list []string
	for _, v := range strings.Split(raw, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			list = append(list, v)
		}
	}
	return list
}

// loadWallets reads keypairs from the YAML file when given, falling back to
// the WALLET_KEYS environment variable. No configured source is not an
// error; waves then run through the external executor or stay dry.
func loadWallets(path string) ([]*wallet.Keypair, error) {
	if path != "" {
		return wallet.LoadKeypairs(path)
	}
	if raw := os.Getenv("WALLET_KEYS"); raw != "" {
		return wallet.ParseKeypairList(raw)
	}
	return nil, nil
}

// createStores creates the trade audit, wave, and cooldown stores. The
// cooldown store lives in Redis when an address is configured so restarts
// and replicas share the sell stamps.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN, redisAddr string, useMemory bool) (*engineStores, func(), error) {
	stores := &engineStores{}
	cleanup := func() {}

	if useMemory {
		stores.trades = memory.NewTradeEventStore()
		stores.waves = memory.NewWaveStore()
	} else {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}

		chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
		}

		stores.trades = chstore.NewTradeEventStore(chConn)
		stores.waves = pgstore.NewWaveStore(pool)
		cleanup = func() {
			chConn.Close()
			pool.Close()
		}
	}

	if redisAddr != "" {
		cooldownStore, err := redisstore.NewCooldownStore(ctx, redisstore.Options{Addr: redisAddr})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		prev := cleanup
		cleanup = func() {
			cooldownStore.Close()
			prev()
		}
		stores.cooldown = cooldownStore
	} else {
		stores.cooldown = memory.NewCooldownStore()
	}

	return stores, cleanup, nil
}

// Run starts the feed consumers and the trigger poll loop.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting sell engine...")

	// Create error channel for goroutines
	errCh := make(chan error, 3)

	// Start WebSocket feed in background
	if s.wsEndpoint != "" {
		go func() {
			err := s.runWSFeed(ctx)
			if err != nil && err != context.Canceled {
				errCh <- fmt.Errorf("ws feed: %w", err)
			}
		}()
	}

	// Start Kafka consumer in background
	if len(s.kafkaBrokers) > 0 {
		go func() {
			err := s.runKafkaFeed(ctx)
			if err != nil && err != context.Canceled {
				errCh <- fmt.Errorf("kafka feed: %w", err)
			}
		}()
	}

	// Start netflow poll loop in background. Per-buy mode reacts to
	// ingested trades instead, manual waves go through the HTTP API.
	if s.triggerMode == domain.TriggerNetflow && s.mint != "" && s.pollInterval > 0 {
		go func() {
			err := s.runPollLoop(ctx)
			if err != nil && err != context.Canceled {
				errCh <- fmt.Errorf("poll loop: %w", err)
			}
		}()
	} else if s.mint == "" {
		s.logger.Println("No --mint configured, trigger evaluation runs on ingest and API calls only")
	}

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runWSFeed keeps the WebSocket trade feed connected until shutdown.
func (s *Server) runWSFeed(ctx context.Context) error {
	var mints []string
	if s.mint != "" {
		mints = []string{s.mint}
	}

	sink := &engine.FeedSink{Engine: s.engine, Source: "ws"}
	client, err := feed.NewWSClient(ctx, sink, feed.WSOptions{
		Endpoint: s.wsEndpoint,
		Mints:    mints,
		Verbose:  s.verbose,
	})
	if err != nil {
		return fmt.Errorf("connect to trade feed: %w", err)
	}
	defer client.Close()

	s.logger.Printf("Trade feed connected to %s", s.wsEndpoint)
	<-ctx.Done()
	return ctx.Err()
}

// runKafkaFeed consumes the trade topic until shutdown.
func (s *Server) runKafkaFeed(ctx context.Context) error {
	sink := &engine.FeedSink{Engine: s.engine, Source: "kafka"}
	consumer, err := feed.NewConsumer(sink, feed.ConsumerOptions{
		Brokers: s.kafkaBrokers,
		Topic:   s.kafkaTopic,
		GroupID: s.kafkaGroup,
		Verbose: s.verbose,
	})
	if err != nil {
		return fmt.Errorf("create kafka consumer: %w", err)
	}
	defer consumer.Close()

	s.logger.Printf("Kafka consumer started on %v, topic %s", s.kafkaBrokers, s.kafkaTopic)
	return consumer.Run(ctx)
}

// runPollLoop evaluates the netflow trigger on a fixed interval.
func (s *Server) runPollLoop(ctx context.Context) error {
	s.logger.Printf("Starting netflow poll for %s (interval: %v)...", s.mint, s.pollInterval)

	// Evaluate immediately on start
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.pollOnce(ctx)
		}
	}
}

// pollOnce runs one trigger evaluation. Waves log themselves inside the
// engine; only errors and verbose no-sell reasons surface here.
func (s *Server) pollOnce(ctx context.Context) {
	res, err := s.engine.EvaluateAndExecute(ctx, s.mint)
	switch {
	case err != nil:
		s.logger.Printf("Evaluation error for %s: %v", s.mint, err)
	case s.verbose && res.Evaluation != nil && !res.Evaluation.Decision.Sell:
		s.logger.Printf("No sell for %s: %s", s.mint, res.Evaluation.Decision.Reason)
	}

	s.mu.Lock()
	s.pollRuns++
	s.lastPollRun = time.Now()
	s.mu.Unlock()
}

// startHTTPServer starts the HTTP server for the API, health and metrics.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Ingest and control endpoints
	mux.HandleFunc("/trades", s.handleTrade)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/evaluate", s.handleEvaluate)
	mux.HandleFunc("/sell", s.handleSell)
	mux.HandleFunc("/status", s.handleStatus)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// tradeRequest mirrors the feed wire form of a market trade. trade_id is
// optional; a deterministic ID is derived when absent.
type tradeRequest struct {
	TradeID     string  `json:"trade_id,omitempty"`
	Mint        string  `json:"mint"`
	Side        string  `json:"side"`
	AmountUSD   float64 `json:"usd_amount"`
	Wallet      string  `json:"wallet,omitempty"`
	TxSignature string  `json:"tx_signature,omitempty"`
	Slot        int64   `json:"slot,omitempty"`
	TimestampMs int64   `json:"timestamp_ms"`
}

// snapshotRequest mirrors the feed wire form of a netflow snapshot.
type snapshotRequest struct {
	Mint          string  `json:"mint"`
	BuyUSD        float64 `json:"buy_usd"`
	SellUSD       float64 `json:"sell_usd"`
	TradeCount    int     `json:"trade_count"`
	WindowSeconds int     `json:"window_seconds"`
	ObservedAtMs  int64   `json:"observed_at_ms"`
}

// sellRequest is the body of a manual sell request. Zero percentage and
// slippage fall back to the configured defaults.
type sellRequest struct {
	Mint        string  `json:"mint"`
	Percentage  float64 `json:"percentage"`
	SlippageBps int     `json:"slippage_bps"`
}

type evaluateRequest struct {
	Mint string `json:"mint"`
}

// ingestResponse acknowledges an ingested trade or snapshot. Result is set
// when the trade drove a trigger evaluation.
type ingestResponse struct {
	Accepted bool           `json:"accepted"`
	Result   *engine.Result `json:"result,omitempty"`
}

// handleTrade ingests one trade via HTTP, same wire form as the feeds.
func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("decode trade: %v", err), http.StatusBadRequest)
		return
	}

	res, err := s.engine.OnTrade(r.Context(), "http", domain.Trade{
		TradeID:     req.TradeID,
		Mint:        req.Mint,
		Side:        req.Side,
		AmountUSD:   req.AmountUSD,
		Wallet:      req.Wallet,
		TxSignature: req.TxSignature,
		Slot:        req.Slot,
		Timestamp:   req.TimestampMs,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, feed.ErrBadMessage) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{Accepted: true, Result: res})
}

// handleSnapshot ingests an aggregated netflow snapshot via HTTP.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req snapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("decode snapshot: %v", err), http.StatusBadRequest)
		return
	}

	err := s.engine.IngestSnapshot(r.Context(), "http", domain.WindowSums{
		Mint:          req.Mint,
		BuyUSD:        req.BuyUSD,
		SellUSD:       req.SellUSD,
		TradeCount:    req.TradeCount,
		WindowSeconds: req.WindowSeconds,
		AsOf:          req.ObservedAtMs,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, feed.ErrBadMessage) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{Accepted: true})
}

// handleEvaluate runs one trigger evaluation and executes on a sell
// decision. The mint comes from the query, the body, or the --mint flag.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	mint := r.URL.Query().Get("mint")
	if mint == "" {
		var req evaluateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			mint = req.Mint
		}
	}
	if mint == "" {
		mint = s.mint
	}
	if mint == "" {
		http.Error(w, "mint is required", http.StatusBadRequest)
		return
	}

	res, err := s.engine.EvaluateAndExecute(r.Context(), mint)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// handleSell runs a manual sell wave, bypassing the trigger checks.
func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req sellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("decode sell request: %v", err), http.StatusBadRequest)
		return
	}
	if req.Mint == "" {
		req.Mint = s.mint
	}
	if req.Mint == "" {
		http.Error(w, "mint is required", http.StatusBadRequest)
		return
	}
	if req.Percentage < 0 || req.Percentage > 100 {
		http.Error(w, "percentage must be in (0, 100]", http.StatusBadRequest)
		return
	}

	res, err := s.engine.SellNow(r.Context(), req.Mint, req.Percentage, req.SlippageBps)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// StatusResponse is the JSON response for /status.
type StatusResponse struct {
	Status      string         `json:"status"`
	Uptime      string         `json:"uptime"`
	Mode        string         `json:"mode"`
	Mint        string         `json:"mint,omitempty"`
	DryRun      bool           `json:"dryRun,omitempty"`
	PollRuns    int            `json:"pollRuns"`
	LastPollRun time.Time      `json:"lastPollRun,omitempty"`
	Engine      *engine.Status `json:"engine,omitempty"`
}

// handleStatus returns server and engine state as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:      "running",
		Uptime:      time.Since(s.startedAt).String(),
		Mode:        s.triggerMode,
		Mint:        s.mint,
		DryRun:      s.dryRun,
		PollRuns:    s.pollRuns,
		LastPollRun: s.lastPollRun,
	}
	s.mu.Unlock()

	// Engine state needs storage reads, fetched outside the lock
	if s.mint != "" {
		st, err := s.engine.Status(r.Context(), s.mint)
		if err != nil {
			s.logger.Printf("Status error for %s: %v", s.mint, err)
		} else {
			resp.Engine = st
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
