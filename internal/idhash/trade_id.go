package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(mint|side|tx_signature|timestamp)
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(
	mint string,
	side string,
	txSignature string,
	timestampMs int64,
) string {
	data := fmt.Sprintf("%s|%s|%s|%d",
		mint,
		side,
		txSignature,
		timestampMs,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
