package trigger

import (
	"context"
	"fmt"

	"solana-sell-engine/internal/domain"
)

// PerBuyTrigger reacts to individual buys: every observed buy at or above
// MinBuyUSD proposes a sell sized from that buy, subject to the shared
// cooldown and amount checks. Sells and sub-threshold buys are ignored.
type PerBuyTrigger struct {
	checker
}

// NewPerBuyTrigger creates the perbuy trigger mode from validated config.
func NewPerBuyTrigger(cfg Config, deps Deps) *PerBuyTrigger {
	return &PerBuyTrigger{
		checker: checker{
			cfg:      cfg,
			cooldown: deps.Cooldown,
			oracle:   deps.Oracle,
			now:      deps.clock(),
		},
	}
}

// Name returns the mode name.
func (p *PerBuyTrigger) Name() string { return domain.TriggerPerBuy }

// Evaluate is a no-op for the perbuy mode.
func (p *PerBuyTrigger) Evaluate(_ context.Context, _ string) (*Evaluation, error) {
	return nil, nil
}

// OnTrade runs the checks against a single observed trade.
// Non-buy trades yield (nil, nil).
func (p *PerBuyTrigger) OnTrade(ctx context.Context, trade domain.Trade) (*Evaluation, error) {
	if trade.Side != domain.TradeSideBuy {
		return nil, nil
	}

	nowMs := p.now().UnixMilli()
	sellUSD := SellUSD(trade.AmountUSD, p.cfg.NetFraction, p.cfg.MaxSellUSD)

	checks := make([]CheckResult, 0, 3)
	checks = append(checks, CheckResult{
		Name:      "Buy above minimum",
		Threshold: fmt.Sprintf(">= %.2f USD", p.cfg.MinBuyUSD),
		Actual:    fmt.Sprintf("%.2f USD", trade.AmountUSD),
		Pass:      trade.AmountUSD >= p.cfg.MinBuyUSD,
	})

	cooldownRes, err := p.cooldownCheck(ctx, trade.Mint, nowMs)
	if err != nil {
		return nil, err
	}
	checks = append(checks, cooldownRes)

	amountRes, units, price := p.amountCheck(ctx, trade.Mint, sellUSD)
	checks = append(checks, amountRes)

	reason := firstFailReason(checks, []string{
		domain.ReasonBelowThreshold,
		domain.ReasonCooldown,
		domain.ReasonAmountTooSmall,
	})

	return &Evaluation{
		Decision: domain.SellDecision{
			Mint:        trade.Mint,
			Sell:        reason == "",
			Reason:      reason,
			Mode:        p.Name(),
			NetUSD:      trade.AmountUSD,
			SellUSD:     sellUSD,
			Percentage:  p.cfg.Percentage,
			SlippageBps: p.cfg.SlippageBps,
			AmountUnits: units,
			PriceUSD:    price,
			EvaluatedAt: nowMs,
		},
		Checks: checks,
		Sums: domain.WindowSums{
			Mint:       trade.Mint,
			BuyUSD:     trade.AmountUSD,
			TradeCount: 1,
			AsOf:       nowMs,
		},
	}, nil
}
