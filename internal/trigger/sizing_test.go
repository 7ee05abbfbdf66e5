package trigger

import "testing"

func TestSellUSD(t *testing.T) {
	tests := []struct {
		name     string
		base     float64
		fraction float64
		maxSell  float64
		want     float64
	}{
		{"quarter of net", 200, 0.25, 0, 50},
		{"cap applies", 200, 0.25, 30, 30},
		{"cap above target", 200, 0.25, 100, 50},
		{"zero cap means uncapped", 1000, 0.5, 0, 500},
		{"negative net", -50, 0.25, 0, 0},
		{"zero net", 0, 0.25, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SellUSD(tt.base, tt.fraction, tt.maxSell)
			if got != tt.want {
				t.Errorf("SellUSD(%f, %f, %f) = %f, want %f", tt.base, tt.fraction, tt.maxSell, got, tt.want)
			}
		})
	}
}

func TestUnitsForUSD(t *testing.T) {
	tests := []struct {
		name     string
		usd      float64
		price    float64
		decimals int
		want     uint64
	}{
		{"50 USD at 0.002", 50, 0.002, 0, 25000},
		{"with 6 decimals", 50, 0.002, 6, 25000000000},
		{"fractional floors down", 10, 3, 0, 3},
		{"zero price", 50, 0, 6, 0},
		{"zero usd", 0, 0.002, 6, 0},
		{"negative usd", -5, 0.002, 6, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnitsForUSD(tt.usd, tt.price, tt.decimals)
			if got != tt.want {
				t.Errorf("UnitsForUSD(%f, %f, %d) = %d, want %d", tt.usd, tt.price, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestPercentageUnits(t *testing.T) {
	tests := []struct {
		name    string
		balance uint64
		pct     float64
		want    uint64
	}{
		{"quarter of balance", 1000000, 25, 250000},
		{"floors fractional units", 999, 25, 249},
		{"full balance", 1000000, 100, 1000000},
		{"above full clamps", 1000000, 150, 1000000},
		{"zero percentage", 1000000, 0, 0},
		{"zero balance", 0, 25, 0},
		{"small balance small pct", 10, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentageUnits(tt.balance, tt.pct)
			if got != tt.want {
				t.Errorf("PercentageUnits(%d, %f) = %d, want %d", tt.balance, tt.pct, got, tt.want)
			}
		})
	}
}
