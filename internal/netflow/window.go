// Package netflow accumulates per-mint buy and sell flow over a sliding
// time window and serves the sums that trigger evaluation runs on.
package netflow

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"solana-sell-engine/internal/domain"
)

// ErrInvalidTrade is returned when a trade fails validation.
var ErrInvalidTrade = errors.New("invalid trade")

// ValidateTrade checks that a trade carries a usable mint, side, amount
// and timestamp.
func ValidateTrade(t domain.Trade) error {
	if t.Mint == "" {
		return fmt.Errorf("%w: empty mint", ErrInvalidTrade)
	}
	if t.Side != domain.TradeSideBuy && t.Side != domain.TradeSideSell {
		return fmt.Errorf("%w: unknown side %q", ErrInvalidTrade, t.Side)
	}
	if t.AmountUSD <= 0 {
		return fmt.Errorf("%w: non-positive amount %f", ErrInvalidTrade, t.AmountUSD)
	}
	if t.Timestamp <= 0 {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidTrade)
	}
	return nil
}

// WindowStore accumulates trades per mint over a sliding time window.
// Trades that age out of the window are evicted on every write and read,
// and duplicate trade IDs inside the window are ignored.
type WindowStore struct {
	mu            sync.Mutex
	windowSeconds int
	trades        map[string][]domain.Trade
	seen          map[string]map[string]struct{}
	now           func() time.Time
}

// WindowOption configures a WindowStore.
type WindowOption func(*WindowStore)

// WithWindowClock overrides the wall clock.
func WithWindowClock(now func() time.Time) WindowOption {
	return func(s *WindowStore) {
		s.now = now
	}
}

// NewWindowStore creates a WindowStore with the given window length.
func NewWindowStore(windowSeconds int, opts ...WindowOption) *WindowStore {
	s := &WindowStore{
		windowSeconds: windowSeconds,
		trades:        make(map[string][]domain.Trade),
		seen:          make(map[string]map[string]struct{}),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WindowSeconds returns the configured window length.
func (s *WindowStore) WindowSeconds() int {
	return s.windowSeconds
}

// Record validates a trade and adds it to the mint's window.
// Trades already outside the window and duplicate trade IDs are dropped
// silently.
func (s *WindowStore) Record(trade domain.Trade) error {
	if err := ValidateTrade(trade); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().UnixMilli() - int64(s.windowSeconds)*1000
	if trade.Timestamp <= cutoff {
		return nil
	}

	if trade.TradeID != "" {
		ids := s.seen[trade.Mint]
		if ids == nil {
			ids = make(map[string]struct{})
			s.seen[trade.Mint] = ids
		}
		if _, dup := ids[trade.TradeID]; dup {
			return nil
		}
		ids[trade.TradeID] = struct{}{}
	}

	s.trades[trade.Mint] = append(s.trades[trade.Mint], trade)
	s.evictLocked(trade.Mint, cutoff)
	return nil
}

// Sums evicts expired trades and returns the current window sums for a mint.
// A mint with no trades in the window yields zero sums.
func (s *WindowStore) Sums(mint string) domain.WindowSums {
	s.mu.Lock()
	defer s.mu.Unlock()

	nowMs := s.now().UnixMilli()
	s.evictLocked(mint, nowMs-int64(s.windowSeconds)*1000)

	sums := domain.WindowSums{
		Mint:          mint,
		WindowSeconds: s.windowSeconds,
		AsOf:          nowMs,
		Source:        domain.WindowSourceLocal,
	}
	for _, t := range s.trades[mint] {
		switch t.Side {
		case domain.TradeSideBuy:
			sums.BuyUSD += t.AmountUSD
		case domain.TradeSideSell:
			sums.SellUSD += t.AmountUSD
		}
		sums.TradeCount++
	}
	return sums
}

// Reset drops all recorded trades for a mint.
func (s *WindowStore) Reset(mint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.trades, mint)
	delete(s.seen, mint)
}

// Mints returns the mints with at least one trade in the window,
// sorted for deterministic output.
func (s *WindowStore) Mints() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().UnixMilli() - int64(s.windowSeconds)*1000
	mints := make([]string, 0, len(s.trades))
	for mint := range s.trades {
		s.evictLocked(mint, cutoff)
		if len(s.trades[mint]) > 0 {
			mints = append(mints, mint)
		}
	}
	sort.Strings(mints)
	return mints
}

// evictLocked drops trades at or before the cutoff. Caller holds s.mu.
func (s *WindowStore) evictLocked(mint string, cutoffMs int64) {
	entries, ok := s.trades[mint]
	if !ok {
		return
	}
	kept := entries[:0]
	for _, t := range entries {
		if t.Timestamp > cutoffMs {
			kept = append(kept, t)
			continue
		}
		if t.TradeID != "" {
			delete(s.seen[mint], t.TradeID)
		}
	}
	if len(kept) == 0 {
		delete(s.trades, mint)
		delete(s.seen, mint)
		return
	}
	s.trades[mint] = kept
}
