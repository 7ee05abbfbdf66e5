package domain

// SellDecision represents the outcome of a trigger evaluation for a mint.
// When Sell is false, Reason carries the no-sell reason code.
type SellDecision struct {
	Mint        string  // token mint address
	Sell        bool    // true when a sell wave should run
	Reason      string  // no-sell reason code, empty when Sell is true
	Mode        string  // trigger mode that produced the decision
	NetUSD      float64 // window net at evaluation time
	SellUSD     float64 // advisory USD target (net * fraction, capped)
	Percentage  float64 // percentage of each wallet balance to sell
	SlippageBps int     // slippage tolerance in basis points
	AmountUnits uint64  // advisory base-unit estimate at the oracle price
	PriceUSD    float64 // oracle USD price per whole token, 0 if unavailable
	EvaluatedAt int64   // Unix timestamp in milliseconds
}

// No-sell reason codes
const (
	ReasonNetNonPositive = "net non-positive"
	ReasonBelowThreshold = "below threshold"
	ReasonCooldown       = "cooldown"
	ReasonAmountTooSmall = "amount too small"
)

// Trigger mode constants
const (
	TriggerNetflow = "netflow"
	TriggerPerBuy  = "perbuy"
	TriggerManual  = "manual"
)
