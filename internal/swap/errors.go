package swap

import "errors"

// Terminal quote/build failures. These are per-wallet, per-path outcomes
// and are never retried within a wave.
var (
	// ErrNoLiquidity indicates the aggregator found no route for the pair.
	ErrNoLiquidity = errors.New("no liquidity")

	// ErrNotTradable indicates the mint is not tradable on the aggregator.
	ErrNotTradable = errors.New("not tradable")
)
