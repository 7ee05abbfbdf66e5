// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"solana-sell-engine/internal/domain"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	TradesIngested    *prometheus.CounterVec
	SnapshotsIngested prometheus.Counter
	DuplicateTrades   prometheus.Counter
	IngestErrors      *prometheus.CounterVec

	// Trigger metrics
	Evaluations   *prometheus.CounterVec
	NoSellReasons *prometheus.CounterVec

	// Wave metrics
	WavesExecuted *prometheus.CounterVec
	WaveDuration  prometheus.Histogram
	WalletSells   *prometheus.CounterVec
	PathAttempts  *prometheus.CounterVec
	TokensSoldRaw prometheus.Counter

	// Path latency metrics
	BuildLatency  *prometheus.HistogramVec
	SubmitLatency *prometheus.HistogramVec

	// Health metrics
	LastTradeIngested prometheus.Gauge
	LastWaveExecuted  prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "sell_engine"
	}

	return &Metrics{
		// Ingestion metrics
		TradesIngested: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "trades_ingested_total",
			Help:      "Total number of trades ingested by source and side",
		}, []string{"source", "side"}),
		SnapshotsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "snapshots_ingested_total",
			Help:      "Total number of netflow snapshots ingested",
		}),
		DuplicateTrades: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "duplicate_trades_total",
			Help:      "Total number of trades dropped as duplicates",
		}),
		IngestErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "errors_total",
			Help:      "Total number of ingest errors by source and type",
		}, []string{"source", "error_type"}),

		// Trigger metrics
		Evaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trigger",
			Name:      "evaluations_total",
			Help:      "Total number of trigger evaluations by trigger and decision",
		}, []string{"trigger", "decision"}),
		NoSellReasons: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trigger",
			Name:      "no_sell_reasons_total",
			Help:      "Total number of no-sell decisions by reason",
		}, []string{"reason"}),

		// Wave metrics
		WavesExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wave",
			Name:      "waves_total",
			Help:      "Total number of sell waves by executor and status",
		}, []string{"executor", "status"}),
		WaveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "wave",
			Name:      "duration_seconds",
			Help:      "Sell wave duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		WalletSells: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wave",
			Name:      "wallet_sells_total",
			Help:      "Total number of per-wallet sell outcomes by status",
		}, []string{"status"}),
		PathAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wave",
			Name:      "path_attempts_total",
			Help:      "Total number of build and submit attempts by path and status",
		}, []string{"path", "stage", "status"}),
		TokensSoldRaw: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wave",
			Name:      "tokens_sold_raw_total",
			Help:      "Total base units sold across successful wallets",
		}),

		// Path latency metrics
		BuildLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "build_latency_seconds",
			Help:      "Transaction build latency in seconds by path",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		SubmitLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "submit_latency_seconds",
			Help:      "Transaction submit latency in seconds by path",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),

		// Health metrics
		LastTradeIngested: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_trade_ingested_timestamp",
			Help:      "Unix timestamp of last ingested trade",
		}),
		LastWaveExecuted: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_wave_executed_timestamp",
			Help:      "Unix timestamp of last executed wave",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTradeIngested increments the ingested trade counter.
func RecordTradeIngested(source, side string) {
	DefaultMetrics.TradesIngested.WithLabelValues(source, side).Inc()
}

// RecordSnapshotIngested increments the ingested snapshot counter.
func RecordSnapshotIngested() {
	DefaultMetrics.SnapshotsIngested.Inc()
}

// RecordDuplicateTrade increments the duplicate trade counter.
func RecordDuplicateTrade() {
	DefaultMetrics.DuplicateTrades.Inc()
}

// RecordIngestError records an ingest error.
func RecordIngestError(source, errorType string) {
	DefaultMetrics.IngestErrors.WithLabelValues(source, errorType).Inc()
}

// RecordSellDecision records an evaluation that triggered a sell.
func RecordSellDecision(trigger string) {
	DefaultMetrics.Evaluations.WithLabelValues(trigger, "sell").Inc()
}

// RecordNoSellDecision records an evaluation that declined to sell.
func RecordNoSellDecision(trigger, reason string) {
	DefaultMetrics.Evaluations.WithLabelValues(trigger, "no_sell").Inc()
	DefaultMetrics.NoSellReasons.WithLabelValues(reason).Inc()
}

// RecordWave records a completed sell wave.
func RecordWave(executor, status string, durationSeconds float64) {
	DefaultMetrics.WavesExecuted.WithLabelValues(executor, status).Inc()
	DefaultMetrics.WaveDuration.Observe(durationSeconds)
}

// RecordWalletSell records a per-wallet sell outcome.
func RecordWalletSell(result domain.WalletSellResult) {
	status := "failure"
	if result.OK {
		status = "success"
		DefaultMetrics.TokensSoldRaw.Add(float64(result.AmountRaw))
	}
	DefaultMetrics.WalletSells.WithLabelValues(status).Inc()

	for _, attempt := range result.Attempts {
		attemptStatus := "failure"
		if attempt.OK {
			attemptStatus = "success"
		}
		DefaultMetrics.PathAttempts.WithLabelValues(attempt.Path, attempt.Stage, attemptStatus).Inc()

		seconds := float64(attempt.DurationMs) / 1000
		switch attempt.Stage {
		case domain.StageBuild:
			DefaultMetrics.BuildLatency.WithLabelValues(attempt.Path).Observe(seconds)
		case domain.StageSubmit:
			DefaultMetrics.SubmitLatency.WithLabelValues(attempt.Path).Observe(seconds)
		}
	}
}
