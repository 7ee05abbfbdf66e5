package domain

// WindowSums represents aggregated buy and sell flow over a sliding window.
type WindowSums struct {
	Mint          string  // token mint address
	BuyUSD        float64 // buy-side USD volume in the window
	SellUSD       float64 // sell-side USD volume in the window
	TradeCount    int     // number of trades contributing to the sums
	WindowSeconds int     // window length in seconds
	AsOf          int64   // Unix timestamp in milliseconds the sums are valid at
	Source        string  // "local" | "push"
}

// NetUSD returns buy-side volume minus sell-side volume.
func (w WindowSums) NetUSD() float64 {
	return w.BuyUSD - w.SellUSD
}

// Window source constants
const (
	WindowSourceLocal = "local"
	WindowSourcePush  = "push"
)
