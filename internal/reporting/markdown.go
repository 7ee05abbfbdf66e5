package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Sell Wave Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.RangeStart != 0 || r.RangeEnd != 0 {
		sb.WriteString(fmt.Sprintf("Range: %d .. %d (ms)\n\n", r.RangeStart, r.RangeEnd))
	}

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Waves | %d |\n", r.Summary.TotalWaves))
	sb.WriteString(fmt.Sprintf("| Successful Waves | %d |\n", r.Summary.SuccessfulWaves))
	sb.WriteString(fmt.Sprintf("| Wallets Requested | %d |\n", r.Summary.WalletsRequested))
	sb.WriteString(fmt.Sprintf("| Wallets Succeeded | %d |\n", r.Summary.WalletsSucceeded))
	sb.WriteString(fmt.Sprintf("| Wallets Failed | %d |\n", r.Summary.WalletsFailed))
	sb.WriteString(fmt.Sprintf("| Total Sell Target (USD) | %.2f |\n", r.Summary.TotalSellUSD))
	sb.WriteString(fmt.Sprintf("| Total Sold (raw) | %d |\n", r.Summary.TotalRaw))
	sb.WriteString(fmt.Sprintf("| Total Received (raw) | %d |\n", r.Summary.TotalReceived))
	sb.WriteString("\n")

	// Waves
	sb.WriteString("## Waves\n\n")
	if len(r.Waves) > 0 {
		sb.WriteString("| Wave | Mint | Trigger | Executor | Net USD | Sell USD | Pct | Sold/Req | Duration (ms) |\n")
		sb.WriteString("|------|------|---------|----------|---------|----------|-----|----------|---------------|\n")
		for _, w := range r.Waves {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %.2f | %.2f | %.1f | %d/%d | %d |\n",
				w.WaveID, w.Mint, w.TriggeredBy, w.Executor,
				w.NetUSD, w.SellUSD, w.Percentage,
				w.Successful, w.Requested, w.DurationMs))
		}
	} else {
		sb.WriteString("No waves in range.\n")
	}
	sb.WriteString("\n")

	// Wallet Results
	sb.WriteString("## Wallet Results\n\n")
	if len(r.Wallets) > 0 {
		sb.WriteString("| Wave | Wallet | OK | Signature | Build | Submit | Amount (raw) | Error |\n")
		sb.WriteString("|------|--------|----|-----------|-------|--------|--------------|-------|\n")
		for _, row := range r.Wallets {
			status := "no"
			if row.OK {
				status = "yes"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %d | %s |\n",
				row.WaveID, row.Wallet, status, row.TxSignature,
				row.BuildPath, row.SubmitPath, row.AmountRaw, row.Err))
		}
	} else {
		sb.WriteString("No wallet results available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
