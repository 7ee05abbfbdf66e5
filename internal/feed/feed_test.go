package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"solana-sell-engine/internal/domain"
)

// collectSink records everything it receives.
type collectSink struct {
	mu        sync.Mutex
	trades    []domain.Trade
	snapshots []domain.WindowSums
	err       error
}

func (s *collectSink) IngestTrade(_ context.Context, trade domain.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.trades = append(s.trades, trade)
	return nil
}

func (s *collectSink) IngestSnapshot(_ context.Context, sums domain.WindowSums) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.snapshots = append(s.snapshots, sums)
	return nil
}

func (s *collectSink) tradeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.trades)
}

func (s *collectSink) snapshotCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

func (s *collectSink) trade(i int) domain.Trade {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trades[i]
}

func (s *collectSink) snapshot(i int) domain.WindowSums {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots[i]
}

// waitFor polls cond until it holds or the timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("timeout waiting for condition")
}

func TestDispatchTrade(t *testing.T) {
	sink := &collectSink{}
	raw := []byte(`{"type":"trade","data":{"mint":"MintA","side":"buy","usd_amount":300,"wallet":"WalletA","tx_signature":"Sig1","slot":42,"timestamp_ms":1700000000000}}`)

	if err := dispatch(context.Background(), sink, raw); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if sink.tradeCount() != 1 {
		t.Fatalf("expected 1 trade, got %d", sink.tradeCount())
	}
	trade := sink.trade(0)
	if trade.Mint != "MintA" {
		t.Errorf("expected mint MintA, got %s", trade.Mint)
	}
	if trade.Side != domain.TradeSideBuy {
		t.Errorf("expected side buy, got %s", trade.Side)
	}
	if trade.AmountUSD != 300 {
		t.Errorf("expected amount 300, got %f", trade.AmountUSD)
	}
	if trade.Wallet != "WalletA" {
		t.Errorf("expected wallet WalletA, got %s", trade.Wallet)
	}
	if trade.TxSignature != "Sig1" {
		t.Errorf("expected signature Sig1, got %s", trade.TxSignature)
	}
	if trade.Slot != 42 {
		t.Errorf("expected slot 42, got %d", trade.Slot)
	}
	if trade.Timestamp != 1700000000000 {
		t.Errorf("expected timestamp 1700000000000, got %d", trade.Timestamp)
	}
	if trade.TradeID != "" {
		t.Errorf("expected empty trade ID, got %s", trade.TradeID)
	}
}

func TestDispatchSnapshot(t *testing.T) {
	sink := &collectSink{}
	raw := []byte(`{"type":"snapshot","data":{"mint":"MintA","buy_usd":300,"sell_usd":100,"trade_count":7,"window_seconds":120,"observed_at_ms":1700000000000}}`)

	if err := dispatch(context.Background(), sink, raw); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if sink.snapshotCount() != 1 {
		t.Fatalf("expected 1 snapshot, got %d", sink.snapshotCount())
	}
	snap := sink.snapshot(0)
	if snap.Mint != "MintA" {
		t.Errorf("expected mint MintA, got %s", snap.Mint)
	}
	if snap.BuyUSD != 300 || snap.SellUSD != 100 {
		t.Errorf("expected sums 300/100, got %f/%f", snap.BuyUSD, snap.SellUSD)
	}
	if snap.TradeCount != 7 {
		t.Errorf("expected 7 trades, got %d", snap.TradeCount)
	}
	if snap.WindowSeconds != 120 {
		t.Errorf("expected window 120s, got %d", snap.WindowSeconds)
	}
	if snap.AsOf != 1700000000000 {
		t.Errorf("expected as-of 1700000000000, got %d", snap.AsOf)
	}
	if snap.Source != domain.WindowSourcePush {
		t.Errorf("expected push source, got %s", snap.Source)
	}
}

func TestDispatchBadMessage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", `not json`},
		{"unknown type", `{"type":"candles","data":{}}`},
		{"bad trade payload", `{"type":"trade","data":"nope"}`},
		{"bad snapshot payload", `{"type":"snapshot","data":[1,2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &collectSink{}
			err := dispatch(context.Background(), sink, []byte(tt.raw))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrBadMessage) {
				t.Errorf("expected ErrBadMessage, got %v", err)
			}
			if sink.tradeCount() != 0 || sink.snapshotCount() != 0 {
				t.Error("sink should not receive anything")
			}
		})
	}
}

func TestDispatchSinkError(t *testing.T) {
	sinkErr := errors.New("storage down")
	sink := &collectSink{err: sinkErr}
	raw := []byte(`{"type":"trade","data":{"mint":"MintA","side":"buy","usd_amount":10,"timestamp_ms":1}}`)

	err := dispatch(context.Background(), sink, raw)
	if !errors.Is(err, sinkErr) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if errors.Is(err, ErrBadMessage) {
		t.Error("sink error should not be a bad message")
	}
}
