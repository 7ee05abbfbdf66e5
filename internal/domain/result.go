package domain

// PathAttempt records one build or submit attempt against a named path.
type PathAttempt struct {
	Path       string // path name: relay, aggregator, rpc
	Stage      string // "build" | "submit"
	OK         bool   // whether the attempt succeeded
	Err        string // error text, empty on success
	DurationMs int64  // attempt duration in milliseconds
}

// Attempt stage constants
const (
	StageBuild  = "build"
	StageSubmit = "submit"
)

// WalletSellResult represents the outcome of one wallet's sell attempt.
type WalletSellResult struct {
	Wallet      string        // wallet public key (base58)
	OK          bool          // true when a transaction landed
	TxSignature string        // winning signature, empty on failure
	BuildPath   string        // builder that produced the transaction
	SubmitPath  string        // path whose broadcast won the race
	AmountRaw   uint64        // base units sold
	ReceivedRaw uint64        // estimated output units, 0 when the path reports none
	Err         string        // terminal error text, empty on success
	Attempts    []PathAttempt // per-path diagnostics
	DurationMs  int64         // wallet pipeline duration in milliseconds
}

// BatchResult aggregates wallet results for one sell wave.
// Results are ordered by completion, not by input order.
type BatchResult struct {
	WaveID        string             // wave identifier (uuid)
	Mint          string             // token mint address
	Requested     int                // wallets attempted
	Successful    int                // wallets with a landed transaction
	Failed        int                // wallets that exhausted all paths
	TotalRaw      uint64             // base units sold across successful wallets
	TotalReceived uint64             // estimated output units across successful wallets
	Results       []WalletSellResult // per-wallet outcomes, completion order
	StartedAt     int64              // Unix timestamp in milliseconds
	DurationMs    int64              // wave duration in milliseconds
}
