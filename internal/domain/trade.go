package domain

// Trade represents a single observed market trade for a token mint.
// Trades are the raw input for netflow accounting and per-buy triggers.
type Trade struct {
	TradeID     string  // deterministic hash, see idhash.ComputeTradeID
	Mint        string  // token mint address
	Side        string  // "buy" | "sell"
	AmountUSD   float64 // trade notional in USD
	Wallet      string  // initiating wallet address (optional)
	TxSignature string  // Solana transaction signature (optional)
	Slot        int64   // Solana slot number (optional)
	Timestamp   int64   // Unix timestamp in milliseconds
}

// Trade side constants
const (
	TradeSideBuy  = "buy"
	TradeSideSell = "sell"
)

// TradeEvent represents an ingested trade persisted to the audit log.
// Corresponds to trade_events table in ClickHouse.
type TradeEvent struct {
	TradeID     string  // deterministic hash
	Mint        string  // token mint address
	Side        string  // "buy" | "sell"
	AmountUSD   float64 // trade notional in USD
	Wallet      string  // initiating wallet address
	TxSignature string  // Solana transaction signature
	Slot        int64   // Solana slot number
	Timestamp   int64   // trade timestamp (ms)
	IngestedAt  int64   // ingest timestamp (ms)
}
