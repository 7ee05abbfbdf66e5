package trigger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solana-sell-engine/internal/domain"
	"solana-sell-engine/internal/netflow"
	"solana-sell-engine/internal/storage"
)

// checker holds the checks shared by both trigger modes.
type checker struct {
	cfg      Config
	cooldown storage.CooldownStore
	oracle   PriceOracle
	now      func() time.Time
}

// cooldownCheck verifies the per-mint cooldown has elapsed.
// A mint that was never stamped passes.
func (c *checker) cooldownCheck(ctx context.Context, mint string, nowMs int64) (CheckResult, error) {
	threshold := fmt.Sprintf(">= %s since last sell", c.cfg.Cooldown)

	last, err := c.cooldown.LastSellAt(ctx, mint)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return CheckResult{
				Name:      "Cooldown elapsed",
				Threshold: threshold,
				Actual:    "never sold",
				Pass:      true,
			}, nil
		}
		return CheckResult{}, fmt.Errorf("cooldown lookup for %s: %w", mint, err)
	}

	elapsed := time.Duration(nowMs-last) * time.Millisecond
	return CheckResult{
		Name:      "Cooldown elapsed",
		Threshold: threshold,
		Actual:    fmt.Sprintf("%s since last sell", elapsed),
		Pass:      elapsed >= c.cfg.Cooldown,
	}, nil
}

// amountCheck estimates the wave size and verifies it is sellable.
// The percentage rule is authoritative; the oracle estimate only vetoes
// when it is available and falls below the dust floor.
func (c *checker) amountCheck(ctx context.Context, mint string, sellUSD float64) (CheckResult, uint64, float64) {
	var price float64
	oracleNote := ""
	if c.oracle != nil {
		p, err := c.oracle.PriceUSD(ctx, mint)
		if err != nil {
			oracleNote = fmt.Sprintf(", oracle unavailable: %v", err)
		} else {
			price = p
		}
	}

	units := UnitsForUSD(sellUSD, price, c.cfg.Decimals)

	pass := c.cfg.Percentage > 0
	actual := fmt.Sprintf("pct=%.2f%%%s", c.cfg.Percentage, oracleNote)
	if pass && price > 0 {
		actual = fmt.Sprintf("pct=%.2f%%, estimate %d units at %.6f USD", c.cfg.Percentage, units, price)
		if c.cfg.MinSellUnits > 0 {
			pass = units >= c.cfg.MinSellUnits
		}
	}

	return CheckResult{
		Name:      "Sell amount above minimum",
		Threshold: fmt.Sprintf("pct > 0 and estimate >= %d units", c.cfg.MinSellUnits),
		Actual:    actual,
		Pass:      pass,
	}, units, price
}

// firstFailReason maps the first failing check to its no-sell reason code.
func firstFailReason(checks []CheckResult, reasons []string) string {
	for i, check := range checks {
		if !check.Pass {
			return reasons[i]
		}
	}
	return ""
}

// Evaluator is the netflow trigger mode. It reads the window sums for a
// mint and applies the net, threshold, cooldown and amount checks in order.
type Evaluator struct {
	checker
	source netflow.Source
}

// NewEvaluator creates the netflow trigger mode from validated config.
func NewEvaluator(cfg Config, deps Deps) *Evaluator {
	return &Evaluator{
		checker: checker{
			cfg:      cfg,
			cooldown: deps.Cooldown,
			oracle:   deps.Oracle,
			now:      deps.clock(),
		},
		source: deps.Source,
	}
}

// Name returns the mode name.
func (e *Evaluator) Name() string { return domain.TriggerNetflow }

// Evaluate runs all checks for a mint against the current window sums.
// It has no side effects and the same window state always yields the
// same decision.
func (e *Evaluator) Evaluate(ctx context.Context, mint string) (*Evaluation, error) {
	sums, err := e.source.Sums(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("netflow sums for %s: %w", mint, err)
	}

	nowMs := e.now().UnixMilli()
	net := sums.NetUSD()
	sellUSD := SellUSD(net, e.cfg.NetFraction, e.cfg.MaxSellUSD)

	checks := make([]CheckResult, 0, 4)
	checks = append(checks, CheckResult{
		Name:      "Positive net",
		Threshold: "> 0 USD",
		Actual:    fmt.Sprintf("%.2f USD (buy %.2f, sell %.2f)", net, sums.BuyUSD, sums.SellUSD),
		Pass:      net > 0,
	})
	checks = append(checks, CheckResult{
		Name:      "Net above threshold",
		Threshold: fmt.Sprintf(">= %.2f USD", e.cfg.MinNetUSD),
		Actual:    fmt.Sprintf("%.2f USD", net),
		Pass:      net >= e.cfg.MinNetUSD,
	})

	cooldownRes, err := e.cooldownCheck(ctx, mint, nowMs)
	if err != nil {
		return nil, err
	}
	checks = append(checks, cooldownRes)

	amountRes, units, price := e.amountCheck(ctx, mint, sellUSD)
	checks = append(checks, amountRes)

	reason := firstFailReason(checks, []string{
		domain.ReasonNetNonPositive,
		domain.ReasonBelowThreshold,
		domain.ReasonCooldown,
		domain.ReasonAmountTooSmall,
	})

	return &Evaluation{
		Decision: domain.SellDecision{
			Mint:        mint,
			Sell:        reason == "",
			Reason:      reason,
			Mode:        e.Name(),
			NetUSD:      net,
			SellUSD:     sellUSD,
			Percentage:  e.cfg.Percentage,
			SlippageBps: e.cfg.SlippageBps,
			AmountUnits: units,
			PriceUSD:    price,
			EvaluatedAt: nowMs,
		},
		Checks: checks,
		Sums:   sums,
	}, nil
}

// OnTrade is a no-op for the netflow mode.
func (e *Evaluator) OnTrade(_ context.Context, _ domain.Trade) (*Evaluation, error) {
	return nil, nil
}
