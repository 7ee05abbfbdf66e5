package domain

// WaveRecord represents a persisted sell wave outcome.
// Corresponds to sell_waves table in PostgreSQL.
type WaveRecord struct {
	WaveID        string  // PRIMARY KEY, uuid
	Mint          string  // token mint address
	TriggeredBy   string  // netflow | perbuy | manual
	Executor      string  // external | internal
	NetUSD        float64 // window net at trigger time
	SellUSD       float64 // advisory USD target
	Percentage    float64 // balance percentage sold per wallet
	Requested     int     // wallets attempted
	Successful    int     // wallets with a landed transaction
	Failed        int     // wallets that exhausted all paths
	TotalRaw      int64   // base units sold across successful wallets
	TotalReceived int64   // estimated output units across successful wallets
	DurationMs    int64   // wave duration in milliseconds
	CreatedAt     int64   // record creation timestamp (ms)
}

// Executor path constants
const (
	ExecutorExternal = "external"
	ExecutorInternal = "internal"
)
