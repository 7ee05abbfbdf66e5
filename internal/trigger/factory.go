package trigger

import (
	"time"

	"solana-sell-engine/internal/domain"
	"solana-sell-engine/internal/netflow"
	"solana-sell-engine/internal/storage"
)

// Deps are the collaborators a trigger mode needs.
type Deps struct {
	Source   netflow.Source        // netflow mode: window sums provider
	Cooldown storage.CooldownStore // shared cooldown state
	Oracle   PriceOracle           // optional price source for unit estimates
	Clock    func() time.Time      // defaults to time.Now
}

func (d Deps) clock() func() time.Time {
	if d.Clock != nil {
		return d.Clock
	}
	return time.Now
}

// FromConfig creates a trigger Mode from config.
// Validates required parameters per mode and returns clear errors for
// missing or invalid params.
func FromConfig(cfg Config, deps Deps) (Mode, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Cooldown == nil {
		return nil, ErrMissingCooldowns
	}

	switch cfg.Mode {
	case domain.TriggerNetflow:
		if deps.Source == nil {
			return nil, ErrMissingSource
		}
		return NewEvaluator(cfg, deps), nil
	case domain.TriggerPerBuy:
		return NewPerBuyTrigger(cfg, deps), nil
	default:
		return nil, ErrUnknownTriggerMode
	}
}
