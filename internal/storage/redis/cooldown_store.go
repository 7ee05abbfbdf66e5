// Package redis backs the cooldown ledger with Redis so several engine
// instances can share per-mint sell stamps.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"solana-sell-engine/internal/storage"
)

// DefaultKeyPrefix namespaces cooldown keys.
const DefaultKeyPrefix = "cooldown:"

// CooldownStore implements storage.CooldownStore using Redis. Stamps are
// stored as Unix milliseconds, one key per mint.
type CooldownStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Options for creating a CooldownStore.
type Options struct {
	Addr     string
	Password string
	DB       int
	// KeyPrefix defaults to DefaultKeyPrefix.
	KeyPrefix string
	// TTL expires stamps on the Redis side; zero keeps them until cleared.
	TTL time.Duration
}

// NewCooldownStore creates a CooldownStore and verifies the connection.
func NewCooldownStore(ctx context.Context, opts Options) (*CooldownStore, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	return &CooldownStore{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
	}, nil
}

// Compile-time interface check.
var _ storage.CooldownStore = (*CooldownStore)(nil)

// LastSellAt returns the last stamped sell time for a mint.
// Returns ErrNotFound when the mint was never stamped.
func (s *CooldownStore) LastSellAt(ctx context.Context, mint string) (int64, error) {
	if mint == "" {
		return 0, storage.ErrInvalidInput
	}

	val, err := s.client.Get(ctx, s.key(mint)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("get cooldown for %s: %w", mint, err)
	}

	atMs, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cooldown for %s: %w", mint, err)
	}
	return atMs, nil
}

// StampSell records a successful sell at the given time, replacing any
// earlier stamp.
func (s *CooldownStore) StampSell(ctx context.Context, mint string, atMs int64) error {
	if mint == "" || atMs <= 0 {
		return storage.ErrInvalidInput
	}

	if err := s.client.Set(ctx, s.key(mint), strconv.FormatInt(atMs, 10), s.ttl).Err(); err != nil {
		return fmt.Errorf("stamp cooldown for %s: %w", mint, err)
	}
	return nil
}

// Clear removes the stamp for a mint. Clearing an unknown mint is a no-op.
func (s *CooldownStore) Clear(ctx context.Context, mint string) error {
	if mint == "" {
		return storage.ErrInvalidInput
	}

	if err := s.client.Del(ctx, s.key(mint)).Err(); err != nil {
		return fmt.Errorf("clear cooldown for %s: %w", mint, err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *CooldownStore) Close() error {
	return s.client.Close()
}

func (s *CooldownStore) key(mint string) string {
	return s.prefix + mint
}
