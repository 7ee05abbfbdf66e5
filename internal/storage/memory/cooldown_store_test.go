package memory

import (
	"context"
	"errors"
	"testing"

	"solana-sell-engine/internal/storage"
)

func TestCooldownStore_StampAndRead(t *testing.T) {
	store := NewCooldownStore()
	ctx := context.Background()

	if err := store.StampSell(ctx, "MintA", 1704067200000); err != nil {
		t.Fatalf("StampSell failed: %v", err)
	}

	at, err := store.LastSellAt(ctx, "MintA")
	if err != nil {
		t.Fatalf("LastSellAt failed: %v", err)
	}
	if at != 1704067200000 {
		t.Errorf("Expected stamp 1704067200000, got %d", at)
	}
}

func TestCooldownStore_NeverStamped(t *testing.T) {
	store := NewCooldownStore()
	ctx := context.Background()

	_, err := store.LastSellAt(ctx, "MintA")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCooldownStore_StampReplaces(t *testing.T) {
	store := NewCooldownStore()
	ctx := context.Background()

	if err := store.StampSell(ctx, "MintA", 1000); err != nil {
		t.Fatalf("StampSell failed: %v", err)
	}
	if err := store.StampSell(ctx, "MintA", 2000); err != nil {
		t.Fatalf("Second StampSell failed: %v", err)
	}

	at, err := store.LastSellAt(ctx, "MintA")
	if err != nil {
		t.Fatalf("LastSellAt failed: %v", err)
	}
	if at != 2000 {
		t.Errorf("Expected latest stamp 2000, got %d", at)
	}
}

func TestCooldownStore_Clear(t *testing.T) {
	store := NewCooldownStore()
	ctx := context.Background()

	if err := store.StampSell(ctx, "MintA", 1000); err != nil {
		t.Fatalf("StampSell failed: %v", err)
	}
	if err := store.Clear(ctx, "MintA"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if _, err := store.LastSellAt(ctx, "MintA"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after clear, got %v", err)
	}

	// Clearing an unknown mint is a no-op
	if err := store.Clear(ctx, "Unknown"); err != nil {
		t.Errorf("Clear of unknown mint failed: %v", err)
	}
}

func TestCooldownStore_InvalidInput(t *testing.T) {
	store := NewCooldownStore()
	ctx := context.Background()

	if err := store.StampSell(ctx, "", 1000); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty mint, got %v", err)
	}
	if err := store.StampSell(ctx, "MintA", 0); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for zero timestamp, got %v", err)
	}
	if _, err := store.LastSellAt(ctx, ""); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty mint, got %v", err)
	}
}
