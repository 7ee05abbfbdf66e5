package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders wave rows as a CSV string.
func RenderCSV(waves []WaveRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("wave_id,mint,triggered_by,executor,net_usd,sell_usd,percentage,")
	sb.WriteString("requested,successful,failed,total_raw,total_received,duration_ms,created_at\n")

	// Rows
	for _, w := range waves {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%.6f,%.6f,%.2f,%d,%d,%d,%d,%d,%d,%d\n",
			w.WaveID,
			w.Mint,
			w.TriggeredBy,
			w.Executor,
			w.NetUSD,
			w.SellUSD,
			w.Percentage,
			w.Requested,
			w.Successful,
			w.Failed,
			w.TotalRaw,
			w.TotalReceived,
			w.DurationMs,
			w.CreatedAt,
		))
	}

	return sb.String()
}

// RenderWalletCSV renders per-wallet rows as a CSV string.
func RenderWalletCSV(rows []WalletRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("wave_id,wallet,ok,tx_signature,build_path,submit_path,amount_raw,err,duration_ms\n")

	// Rows
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%t,%s,%s,%s,%d,%s,%d\n",
			r.WaveID,
			r.Wallet,
			r.OK,
			r.TxSignature,
			r.BuildPath,
			r.SubmitPath,
			r.AmountRaw,
			csvField(r.Err),
			r.DurationMs,
		))
	}

	return sb.String()
}

// csvField quotes a value that would break the row. Error texts are the
// only free-form field and may contain commas or quotes.
func csvField(v string) string {
	if !strings.ContainsAny(v, ",\"\n") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
