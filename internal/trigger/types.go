package trigger

import (
	"context"

	"solana-sell-engine/internal/domain"
)

// CheckResult records a single trigger check with its threshold and
// the actual observed value.
type CheckResult struct {
	Name      string `json:"name"`
	Threshold string `json:"threshold"`
	Actual    string `json:"actual"`
	Pass      bool   `json:"pass"`
}

// Evaluation is the full outcome of a trigger run for a mint.
// Decision carries the verdict, Checks the per-rule diagnostics and Sums
// the window the verdict was computed from.
type Evaluation struct {
	Decision domain.SellDecision `json:"decision"`
	Checks   []CheckResult       `json:"checks"`
	Sums     domain.WindowSums   `json:"sums"`
}

// Mode turns window sums or individual trades into sell decisions.
// Evaluate and OnTrade have no side effects: cooldowns are stamped by the
// caller after a wave actually lands.
type Mode interface {
	// Name returns the mode name ("netflow" or "perbuy").
	Name() string

	// Evaluate runs the trigger checks for a mint against the current
	// window. Modes that only react to trades return (nil, nil).
	Evaluate(ctx context.Context, mint string) (*Evaluation, error)

	// OnTrade reacts to a single observed trade. Modes that only poll
	// windows return (nil, nil).
	OnTrade(ctx context.Context, trade domain.Trade) (*Evaluation, error)
}

// PriceOracle quotes the USD price of one whole token.
type PriceOracle interface {
	PriceUSD(ctx context.Context, mint string) (float64, error)
}

// StaticOracle serves a fixed price table. Used for dry runs and tests.
type StaticOracle struct {
	Prices map[string]float64
}

// PriceUSD returns the configured price for a mint, 0 when unknown.
func (o *StaticOracle) PriceUSD(_ context.Context, mint string) (float64, error) {
	return o.Prices[mint], nil
}
