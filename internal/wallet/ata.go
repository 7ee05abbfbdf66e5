package wallet

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Well-known program addresses.
const (
	TokenProgramID           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	AssociatedTokenProgramID = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	WSOLMint                 = "So11111111111111111111111111111111111111112"
)

// DeriveAssociatedTokenAccount derives the associated token account address
// for a wallet and mint under the SPL token program.
func DeriveAssociatedTokenAccount(walletAddr, mint string) (string, error) {
	walletBytes, err := base58.Decode(walletAddr)
	if err != nil {
		return "", fmt.Errorf("decode wallet %s: %w", walletAddr, err)
	}
	mintBytes, err := base58.Decode(mint)
	if err != nil {
		return "", fmt.Errorf("decode mint %s: %w", mint, err)
	}
	tokenProgramBytes, err := base58.Decode(TokenProgramID)
	if err != nil {
		return "", fmt.Errorf("decode token program: %w", err)
	}
	ataProgramBytes, err := base58.Decode(AssociatedTokenProgramID)
	if err != nil {
		return "", fmt.Errorf("decode associated token program: %w", err)
	}

	seeds := [][]byte{walletBytes, tokenProgramBytes, mintBytes}
	pda := derivePDA(seeds, ataProgramBytes)
	if pda == "" {
		return "", fmt.Errorf("no off-curve address for wallet %s mint %s", walletAddr, mint)
	}
	return pda, nil
}

// derivePDA derives a Program Derived Address using the Solana algorithm.
func derivePDA(seeds [][]byte, programID []byte) string {
	// PDA derivation algorithm:
	// 1. Concatenate all seeds with bump
	// 2. Append program ID and "ProgramDerivedAddress" marker
	// 3. SHA256 hash
	// 4. Find bump seed that results in off-curve point

	for bump := byte(255); bump > 0; bump-- {
		data := make([]byte, 0)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, bump)
		data = append(data, programID...)
		data = append(data, []byte("ProgramDerivedAddress")...)

		hash := sha256.Sum256(data)

		// Check if point is off the ed25519 curve
		if !isOnCurve(hash[:]) {
			return base58.Encode(hash[:])
		}
	}

	return ""
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
