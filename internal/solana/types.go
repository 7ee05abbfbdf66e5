package solana

// TokenAmount represents a token balance in base units.
type TokenAmount struct {
	Amount         uint64 // base units
	Decimals       int
	UIAmountString string
}

// TokenAccount represents an SPL token account owned by a wallet.
type TokenAccount struct {
	Pubkey   string // token account address
	Mint     string // token mint address
	Owner    string // owning wallet address
	Amount   uint64 // balance in base units
	Decimals int
}

// LatestBlockhash from getLatestBlockhash.
type LatestBlockhash struct {
	Blockhash            string
	LastValidBlockHeight uint64
}

// SendOpts defines optional parameters for sendTransaction.
type SendOpts struct {
	SkipPreflight bool
	MaxRetries    int // node-side resend attempts, 0 leaves the node default
}

// SignatureStatus from getSignatureStatuses.
type SignatureStatus struct {
	Slot               uint64
	Confirmations      *uint64
	ConfirmationStatus string // "processed" | "confirmed" | "finalized"
	Err                interface{}
}
