package wallet

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoWallets is returned when a wallet file contains no usable entries.
var ErrNoWallets = errors.New("wallet file contains no wallets")

// walletFile is the YAML layout of a wallet file:
//
//	wallets:
//	  - name: main
//	    secret_key: "base58 or JSON array"
type walletFile struct {
	Wallets []walletEntry `yaml:"wallets"`
}

type walletEntry struct {
	Name      string `yaml:"name"`
	SecretKey string `yaml:"secret_key"`
}

// ParseKeypairList parses a comma-separated list of secret keys, the
// format of the WALLET_KEYS environment variable. Every key must parse
// and addresses must be unique.
func ParseKeypairList(raw string) ([]*Keypair, error) {
	var keypairs []*Keypair
	seen := make(map[string]struct{})

	for i, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		kp, err := ParseKeypair(entry)
		if err != nil {
			return nil, fmt.Errorf("wallet %d: %w", i, err)
		}
		if _, dup := seen[kp.Address()]; dup {
			return nil, fmt.Errorf("wallet %d: duplicate address %s", i, kp.Address())
		}
		seen[kp.Address()] = struct{}{}
		keypairs = append(keypairs, kp)
	}

	if len(keypairs) == 0 {
		return nil, ErrNoWallets
	}
	return keypairs, nil
}

// LoadKeypairs reads wallet keypairs from a YAML file.
// Every entry must parse; a single bad key fails the whole load so a
// misconfigured wallet is never silently skipped.
func LoadKeypairs(path string) ([]*Keypair, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wallet file: %w", err)
	}

	var file walletFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse wallet file %s: %w", path, err)
	}
	if len(file.Wallets) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoWallets, path)
	}

	keypairs := make([]*Keypair, 0, len(file.Wallets))
	seen := make(map[string]struct{}, len(file.Wallets))
	for i, entry := range file.Wallets {
		kp, err := ParseKeypair(entry.SecretKey)
		if err != nil {
			return nil, fmt.Errorf("wallet %d (%s): %w", i, entry.Name, err)
		}
		if entry.Name != "" {
			kp.SetName(entry.Name)
		}
		if _, dup := seen[kp.Address()]; dup {
			return nil, fmt.Errorf("wallet %d (%s): duplicate address %s", i, entry.Name, kp.Address())
		}
		seen[kp.Address()] = struct{}{}
		keypairs = append(keypairs, kp)
	}

	return keypairs, nil
}
