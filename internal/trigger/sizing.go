package trigger

import (
	"math"

	"github.com/shopspring/decimal"
)

// SellUSD returns the advisory USD target for a wave: the base amount
// (window net or single buy) times the configured fraction, capped by
// maxSellUSD when non-zero.
func SellUSD(baseUSD, fraction, maxSellUSD float64) float64 {
	if baseUSD <= 0 || fraction <= 0 {
		return 0
	}
	sell := baseUSD * fraction
	if maxSellUSD > 0 && sell > maxSellUSD {
		sell = maxSellUSD
	}
	return sell
}

// UnitsForUSD converts a USD amount to token base units at the given price,
// flooring to whole units. Returns 0 when the price or amount is unusable.
func UnitsForUSD(usd, priceUSD float64, decimals int) uint64 {
	if usd <= 0 || priceUSD <= 0 || decimals < 0 {
		return 0
	}
	units := decimal.NewFromFloat(usd).
		Div(decimal.NewFromFloat(priceUSD)).
		Shift(int32(decimals)).
		Floor().
		BigInt()
	if units.Sign() < 0 {
		return 0
	}
	if !units.IsUint64() {
		return math.MaxUint64
	}
	return units.Uint64()
}

// PercentageUnits returns floor(balanceRaw * pct / 100) in base units.
// This is the authoritative per-wallet sizing rule.
func PercentageUnits(balanceRaw uint64, pct float64) uint64 {
	if pct <= 0 || balanceRaw == 0 {
		return 0
	}
	if pct >= 100 {
		return balanceRaw
	}
	units := decimal.NewFromUint64(balanceRaw).
		Mul(decimal.NewFromFloat(pct)).
		Div(decimal.NewFromInt(100)).
		Floor().
		BigInt()
	if units.Sign() < 0 || !units.IsUint64() {
		return 0
	}
	return units.Uint64()
}
