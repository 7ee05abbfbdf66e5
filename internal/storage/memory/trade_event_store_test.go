package memory

import (
	"context"
	"errors"
	"testing"

	"solana-sell-engine/internal/domain"
	"solana-sell-engine/internal/storage"
)

func TestTradeEventStore_InsertAndGet(t *testing.T) {
	store := NewTradeEventStore()
	ctx := context.Background()

	event := &domain.TradeEvent{
		TradeID:     "t1",
		Mint:        "MintA",
		Side:        domain.TradeSideBuy,
		AmountUSD:   120.5,
		Wallet:      "WalletA",
		TxSignature: "sig1",
		Slot:        100,
		Timestamp:   1704067200000,
		IngestedAt:  1704067200100,
	}

	err := store.Insert(ctx, event)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := store.GetByMint(ctx, "MintA")
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}

	if len(result) != 1 {
		t.Errorf("Expected 1 event, got %d", len(result))
	}

	if result[0].AmountUSD != 120.5 {
		t.Errorf("AmountUSD mismatch: got %f, want %f", result[0].AmountUSD, 120.5)
	}
}

func TestTradeEventStore_DuplicateKey(t *testing.T) {
	store := NewTradeEventStore()
	ctx := context.Background()

	event := &domain.TradeEvent{
		TradeID:   "t1",
		Mint:      "MintA",
		Side:      domain.TradeSideBuy,
		AmountUSD: 10,
		Timestamp: 1000,
	}

	if err := store.Insert(ctx, event); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, event)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestTradeEventStore_InsertBulk(t *testing.T) {
	store := NewTradeEventStore()
	ctx := context.Background()

	events := []*domain.TradeEvent{
		{TradeID: "t1", Mint: "MintA", Side: domain.TradeSideBuy, AmountUSD: 10, Timestamp: 1000},
		{TradeID: "t2", Mint: "MintA", Side: domain.TradeSideSell, AmountUSD: 20, Timestamp: 1001},
		{TradeID: "t3", Mint: "MintB", Side: domain.TradeSideBuy, AmountUSD: 30, Timestamp: 1002},
	}

	err := store.InsertBulk(ctx, events)
	if err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, _ := store.GetByMint(ctx, "MintA")
	if len(result) != 2 {
		t.Errorf("Expected 2 events for MintA, got %d", len(result))
	}
}

func TestTradeEventStore_InsertBulkPartialDuplicate(t *testing.T) {
	store := NewTradeEventStore()
	ctx := context.Background()

	first := &domain.TradeEvent{TradeID: "t1", Mint: "MintA", AmountUSD: 10, Timestamp: 1000}
	if err := store.Insert(ctx, first); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	// Bulk insert with duplicate: entire batch must fail
	events := []*domain.TradeEvent{
		{TradeID: "t2", Mint: "MintA", AmountUSD: 20, Timestamp: 1001},
		{TradeID: "t1", Mint: "MintA", AmountUSD: 10, Timestamp: 1000},
	}

	err := store.InsertBulk(ctx, events)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// t2 must not have been inserted
	result, _ := store.GetByMint(ctx, "MintA")
	if len(result) != 1 {
		t.Errorf("Expected 1 event after failed bulk, got %d", len(result))
	}
}

func TestTradeEventStore_GetByTimeRange(t *testing.T) {
	store := NewTradeEventStore()
	ctx := context.Background()

	events := []*domain.TradeEvent{
		{TradeID: "t1", Mint: "MintA", AmountUSD: 10, Timestamp: 1000},
		{TradeID: "t2", Mint: "MintA", AmountUSD: 20, Timestamp: 2000},
		{TradeID: "t3", Mint: "MintA", AmountUSD: 30, Timestamp: 3000},
	}
	if err := store.InsertBulk(ctx, events); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByTimeRange(ctx, "MintA", 1000, 2000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}

	if len(result) != 2 {
		t.Errorf("Expected 2 events in range, got %d", len(result))
	}

	// Ordered by timestamp ASC
	if result[0].TradeID != "t1" || result[1].TradeID != "t2" {
		t.Errorf("Expected [t1 t2], got [%s %s]", result[0].TradeID, result[1].TradeID)
	}
}

func TestTradeEventStore_InvalidInput(t *testing.T) {
	store := NewTradeEventStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil event, got %v", err)
	}

	if err := store.Insert(ctx, &domain.TradeEvent{Mint: "MintA"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty trade_id, got %v", err)
	}
}
