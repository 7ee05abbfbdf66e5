// Package wallet manages local signing keys and the Solana account math
// the execution pipeline needs: keypair parsing, associated token account
// derivation and transaction signing.
package wallet

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// ErrInvalidKeypair is returned when a secret key cannot be parsed.
var ErrInvalidKeypair = errors.New("invalid keypair")

// Keypair holds a wallet's ed25519 signing key.
type Keypair struct {
	name       string
	address    string // base58-encoded public key
	publicKey  ed25519.PublicKey
	privateKey ed25519.PrivateKey
}

// ParseKeypair parses a secret key in either base58 form or the JSON byte
// array form written by solana-keygen. Both the 64-byte secret and the
// 32-byte seed are accepted.
func ParseKeypair(secret string) (*Keypair, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("%w: empty secret", ErrInvalidKeypair)
	}

	var raw []byte
	if strings.HasPrefix(secret, "[") {
		var ints []int
		if err := json.Unmarshal([]byte(secret), &ints); err != nil {
			return nil, fmt.Errorf("%w: parse JSON array: %v", ErrInvalidKeypair, err)
		}
		raw = make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("%w: byte %d out of range", ErrInvalidKeypair, v)
			}
			raw[i] = byte(v)
		}
	} else {
		decoded, err := base58.Decode(secret)
		if err != nil {
			return nil, fmt.Errorf("%w: decode base58: %v", ErrInvalidKeypair, err)
		}
		raw = decoded
	}

	var priv ed25519.PrivateKey
	switch len(raw) {
	case ed25519.PrivateKeySize:
		priv = ed25519.PrivateKey(raw)
	case ed25519.SeedSize:
		priv = ed25519.NewKeyFromSeed(raw)
	default:
		return nil, fmt.Errorf("%w: unexpected key length %d", ErrInvalidKeypair, len(raw))
	}

	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: derive public key", ErrInvalidKeypair)
	}

	return &Keypair{
		address:    base58.Encode(pub),
		publicKey:  pub,
		privateKey: priv,
	}, nil
}

// Name returns the label assigned to the keypair, or a shortened address
// when none was set.
func (k *Keypair) Name() string {
	if k.name != "" {
		return k.name
	}
	if len(k.address) > 8 {
		return k.address[:8]
	}
	return k.address
}

// SetName assigns a label to the keypair.
func (k *Keypair) SetName(name string) {
	k.name = name
}

// Address returns the base58-encoded public key.
func (k *Keypair) Address() string {
	return k.address
}

// PublicKey returns the raw 32-byte public key.
func (k *Keypair) PublicKey() ed25519.PublicKey {
	return k.publicKey
}

// Sign signs a message with the wallet's private key.
func (k *Keypair) Sign(message []byte) []byte {
	return ed25519.Sign(k.privateKey, message)
}
