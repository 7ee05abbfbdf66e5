package trigger

import (
	"errors"
	"testing"
	"time"

	"solana-sell-engine/internal/domain"
	"solana-sell-engine/internal/netflow"
	"solana-sell-engine/internal/storage/memory"
)

func TestFromConfig_Netflow(t *testing.T) {
	window := netflow.NewWindowStore(120)
	mode, err := FromConfig(testConfig(), Deps{
		Source:   netflow.NewLocalSource(window),
		Cooldown: memory.NewCooldownStore(),
	})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	if mode.Name() != domain.TriggerNetflow {
		t.Errorf("Expected netflow mode, got %s", mode.Name())
	}
}

func TestFromConfig_PerBuy(t *testing.T) {
	mode, err := FromConfig(perBuyConfig(), Deps{
		Cooldown: memory.NewCooldownStore(),
	})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	if mode.Name() != domain.TriggerPerBuy {
		t.Errorf("Expected perbuy mode, got %s", mode.Name())
	}
}

func TestFromConfig_UnknownMode(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = "random"

	_, err := FromConfig(cfg, Deps{Cooldown: memory.NewCooldownStore()})
	if !errors.Is(err, ErrUnknownTriggerMode) {
		t.Errorf("Expected ErrUnknownTriggerMode, got %v", err)
	}
}

func TestFromConfig_MissingDeps(t *testing.T) {
	if _, err := FromConfig(testConfig(), Deps{Cooldown: memory.NewCooldownStore()}); !errors.Is(err, ErrMissingSource) {
		t.Errorf("Expected ErrMissingSource, got %v", err)
	}

	window := netflow.NewWindowStore(120)
	if _, err := FromConfig(testConfig(), Deps{Source: netflow.NewLocalSource(window)}); !errors.Is(err, ErrMissingCooldowns) {
		t.Errorf("Expected ErrMissingCooldowns, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"zero window", func(c *Config) { c.WindowSeconds = 0 }, ErrInvalidWindow},
		{"zero fraction", func(c *Config) { c.NetFraction = 0 }, ErrInvalidNetFraction},
		{"fraction above one", func(c *Config) { c.NetFraction = 1.5 }, ErrInvalidNetFraction},
		{"negative threshold", func(c *Config) { c.MinNetUSD = -1 }, ErrInvalidThreshold},
		{"negative cap", func(c *Config) { c.MaxSellUSD = -1 }, ErrInvalidMaxSell},
		{"negative cooldown", func(c *Config) { c.Cooldown = -time.Second }, ErrInvalidCooldown},
		{"percentage above 100", func(c *Config) { c.Percentage = 101 }, ErrInvalidPercentage},
		{"negative percentage", func(c *Config) { c.Percentage = -1 }, ErrInvalidPercentage},
		{"zero slippage", func(c *Config) { c.SlippageBps = 0 }, ErrInvalidSlippage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigValidate_PerBuyRequiresMinBuy(t *testing.T) {
	cfg := perBuyConfig()
	cfg.MinBuyUSD = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidMinBuy) {
		t.Errorf("Expected ErrInvalidMinBuy, got %v", err)
	}
}

func TestConfigValidate_ZeroPercentageAllowed(t *testing.T) {
	cfg := testConfig()
	cfg.Percentage = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected zero percentage to validate, got %v", err)
	}
}
