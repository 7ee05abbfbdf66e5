package wallet

import (
	"encoding/base64"
	"fmt"

	"github.com/mr-tron/base58"
)

const signatureSize = 64

// SignTransactionBase64 signs a serialized Solana transaction and fills the
// fee payer signature slot. The input is the base64 wire form produced by a
// swap builder with this wallet as fee payer; legacy and versioned messages
// are both handled since the message bytes are signed as-is.
func (k *Keypair) SignTransactionBase64(txBase64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(txBase64)
	if err != nil {
		return "", fmt.Errorf("decode transaction: %w", err)
	}

	numSigs, headerLen, err := decodeShortvecLength(raw)
	if err != nil {
		return "", fmt.Errorf("parse signature count: %w", err)
	}
	if numSigs == 0 {
		return "", fmt.Errorf("transaction has no signature slots")
	}

	messageStart := headerLen + numSigs*signatureSize
	if len(raw) <= messageStart {
		return "", fmt.Errorf("transaction truncated: %d bytes with %d signature slots", len(raw), numSigs)
	}

	signature := k.Sign(raw[messageStart:])
	// Fee payer occupies the first slot.
	copy(raw[headerLen:headerLen+signatureSize], signature)

	return base64.StdEncoding.EncodeToString(raw), nil
}

// TransactionSignature extracts the fee payer signature of a signed
// transaction in base58, which is the transaction's identity on chain.
func TransactionSignature(signedTxBase64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(signedTxBase64)
	if err != nil {
		return "", fmt.Errorf("decode transaction: %w", err)
	}

	numSigs, headerLen, err := decodeShortvecLength(raw)
	if err != nil {
		return "", fmt.Errorf("parse signature count: %w", err)
	}
	if numSigs == 0 || len(raw) < headerLen+signatureSize {
		return "", fmt.Errorf("transaction has no signature")
	}

	return base58.Encode(raw[headerLen : headerLen+signatureSize]), nil
}

// decodeShortvecLength decodes a Solana compact-u16 length prefix.
// Returns the length and the number of prefix bytes consumed.
func decodeShortvecLength(data []byte) (int, int, error) {
	length := 0
	shift := uint(0)
	for i := 0; i < 3; i++ {
		if i >= len(data) {
			return 0, 0, fmt.Errorf("shortvec length truncated")
		}
		b := data[i]
		length |= int(b&0x7f) << shift
		if b&0x80 == 0 {
			return length, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, fmt.Errorf("shortvec length exceeds 3 bytes")
}
