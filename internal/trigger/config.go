// Package trigger decides when a sell wave should run for a mint and how
// large it should be. Two modes exist: netflow reacts to the sliding-window
// buy/sell imbalance, perbuy reacts to individual large buys. Both share
// the cooldown and sizing rules.
package trigger

import (
	"errors"
	"time"

	"solana-sell-engine/internal/domain"
)

// Config errors
var (
	ErrUnknownTriggerMode = errors.New("unknown trigger mode")
	ErrMissingSource      = errors.New("netflow trigger requires a netflow source")
	ErrMissingCooldowns   = errors.New("trigger requires a cooldown store")
	ErrInvalidWindow      = errors.New("WindowSeconds must be positive")
	ErrInvalidNetFraction = errors.New("NetFraction must be in (0, 1]")
	ErrInvalidThreshold   = errors.New("MinNetUSD must not be negative")
	ErrInvalidMaxSell     = errors.New("MaxSellUSD must not be negative")
	ErrInvalidCooldown    = errors.New("Cooldown must not be negative")
	ErrInvalidPercentage  = errors.New("Percentage must be in [0, 100]")
	ErrInvalidSlippage    = errors.New("SlippageBps must be positive")
	ErrInvalidMinBuy      = errors.New("perbuy trigger requires positive MinBuyUSD")
)

// Config holds trigger parameters shared by both modes.
type Config struct {
	Mode          string        // "netflow" | "perbuy"
	WindowSeconds int           // sliding window length
	NetFraction   float64       // fraction of net (or buy) converted to sell USD
	MinNetUSD     float64       // netflow: minimum net to trigger
	MaxSellUSD    float64       // advisory USD cap per wave, 0 = uncapped
	Cooldown      time.Duration // minimum gap between successful waves per mint
	Percentage    float64       // balance percentage sold per wallet
	SlippageBps   int           // slippage tolerance forwarded to execution
	MinSellUnits  uint64        // dust floor in base units, 0 = disabled
	MinBuyUSD     float64       // perbuy: minimum single buy to react to
	Decimals      int           // token decimals for the advisory unit estimate
}

// Validate checks the config for the selected mode.
// Percentage 0 is allowed and yields "amount too small" decisions.
func (c Config) Validate() error {
	switch c.Mode {
	case domain.TriggerNetflow:
		if c.WindowSeconds <= 0 {
			return ErrInvalidWindow
		}
		if c.MinNetUSD < 0 {
			return ErrInvalidThreshold
		}
	case domain.TriggerPerBuy:
		if c.MinBuyUSD <= 0 {
			return ErrInvalidMinBuy
		}
	default:
		return ErrUnknownTriggerMode
	}

	if c.NetFraction <= 0 || c.NetFraction > 1 {
		return ErrInvalidNetFraction
	}
	if c.MaxSellUSD < 0 {
		return ErrInvalidMaxSell
	}
	if c.Cooldown < 0 {
		return ErrInvalidCooldown
	}
	if c.Percentage < 0 || c.Percentage > 100 {
		return ErrInvalidPercentage
	}
	if c.SlippageBps <= 0 {
		return ErrInvalidSlippage
	}
	return nil
}
