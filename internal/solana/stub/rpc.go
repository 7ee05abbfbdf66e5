package stub

import (
	"context"
	"fmt"
	"sync"

	"solana-sell-engine/internal/solana"
)

// RPCClient implements solana.RPCClient for testing.
type RPCClient struct {
	mu sync.Mutex

	Balances      map[string]uint64                  // pubkey -> lamports
	TokenAccounts map[string][]solana.TokenAccount   // owner|mint -> accounts
	TokenBalances map[string]*solana.TokenAmount     // token account -> balance
	Statuses      map[string]*solana.SignatureStatus // signature -> status
	Blockhash     solana.LatestBlockhash
	Slot          int64

	// SendErr, when set, fails every SendTransaction call.
	SendErr error
	// Sent records the base64 payloads passed to SendTransaction.
	Sent []string

	sendSeq int
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Balances:      make(map[string]uint64),
		TokenAccounts: make(map[string][]solana.TokenAccount),
		TokenBalances: make(map[string]*solana.TokenAmount),
		Statuses:      make(map[string]*solana.SignatureStatus),
		Blockhash: solana.LatestBlockhash{
			Blockhash:            "StubBlockhash1111111111111111111111111111111",
			LastValidBlockHeight: 1000,
		},
		Slot: 1,
	}
}

func ownerMintKey(owner, mint string) string {
	return owner + "|" + mint
}

// GetBalance retrieves the lamport balance from the stub store.
func (c *RPCClient) GetBalance(_ context.Context, pubkey string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Balances[pubkey], nil
}

// GetTokenAccountsByOwner retrieves token accounts from the stub store.
func (c *RPCClient) GetTokenAccountsByOwner(_ context.Context, owner, mint string) ([]solana.TokenAccount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.TokenAccounts[ownerMintKey(owner, mint)], nil
}

// GetTokenAccountBalance retrieves a token balance from the stub store.
func (c *RPCClient) GetTokenAccountBalance(_ context.Context, account string) (*solana.TokenAmount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	amount, ok := c.TokenBalances[account]
	if !ok {
		return nil, nil
	}
	copy := *amount
	return &copy, nil
}

// GetLatestBlockhash returns the configured blockhash.
func (c *RPCClient) GetLatestBlockhash(_ context.Context) (*solana.LatestBlockhash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copy := c.Blockhash
	return &copy, nil
}

// SendTransaction records the payload and returns a generated signature.
func (c *RPCClient) SendTransaction(_ context.Context, signedTxBase64 string, _ *solana.SendOpts) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.SendErr != nil {
		return "", c.SendErr
	}
	c.Sent = append(c.Sent, signedTxBase64)
	c.sendSeq++
	return fmt.Sprintf("StubSig%d", c.sendSeq), nil
}

// GetSignatureStatuses retrieves statuses from the stub store.
func (c *RPCClient) GetSignatureStatuses(_ context.Context, signatures []string) ([]*solana.SignatureStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	statuses := make([]*solana.SignatureStatus, len(signatures))
	for i, sig := range signatures {
		if status, ok := c.Statuses[sig]; ok {
			copy := *status
			statuses[i] = &copy
		}
	}
	return statuses, nil
}

// GetSlot returns the configured slot.
func (c *RPCClient) GetSlot(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Slot, nil
}

// SetBalance sets the lamport balance for a pubkey.
func (c *RPCClient) SetBalance(pubkey string, lamports uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Balances[pubkey] = lamports
}

// AddTokenAccount adds a token account to the stub store and indexes its
// balance by account address.
func (c *RPCClient) AddTokenAccount(account solana.TokenAccount) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := ownerMintKey(account.Owner, account.Mint)
	c.TokenAccounts[key] = append(c.TokenAccounts[key], account)
	c.TokenBalances[account.Pubkey] = &solana.TokenAmount{
		Amount:   account.Amount,
		Decimals: account.Decimals,
	}
}

// SetStatus sets the confirmation status for a signature.
func (c *RPCClient) SetStatus(signature string, status *solana.SignatureStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Statuses[signature] = status
}

var _ solana.RPCClient = (*RPCClient)(nil)
