package netflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"solana-sell-engine/internal/domain"
)

// DefaultSnapshotGrace is the slack added to the window length before a
// pushed snapshot counts as stale.
const DefaultSnapshotGrace = 2 * time.Second

// Sentinel errors for snapshot inspection.
var (
	ErrNoSnapshot    = errors.New("no netflow snapshot")
	ErrStaleSnapshot = errors.New("stale netflow snapshot")
)

// Source provides sliding-window netflow sums for a mint.
type Source interface {
	Sums(ctx context.Context, mint string) (domain.WindowSums, error)
}

// LocalSource serves sums from a locally accumulated WindowStore.
type LocalSource struct {
	store *WindowStore
}

// NewLocalSource creates a Source backed by a WindowStore.
func NewLocalSource(store *WindowStore) *LocalSource {
	return &LocalSource{store: store}
}

// Sums returns the window sums accumulated for the mint.
func (s *LocalSource) Sums(_ context.Context, mint string) (domain.WindowSums, error) {
	return s.store.Sums(mint), nil
}

// PushSource serves sums from snapshots pushed by an upstream aggregator.
// A snapshot older than the window length plus a grace period is never
// used: the fallback source answers instead, or zero sums when no
// fallback is configured.
type PushSource struct {
	mu            sync.RWMutex
	snapshots     map[string]domain.WindowSums
	windowSeconds int
	grace         time.Duration
	fallback      Source
	verbose       bool
	now           func() time.Time
}

// PushSourceOptions for creating PushSource.
type PushSourceOptions struct {
	WindowSeconds int           // expected snapshot window length
	Grace         time.Duration // staleness slack, DefaultSnapshotGrace when zero
	Fallback      Source        // answers when the snapshot is stale or missing
	Verbose       bool
	Clock         func() time.Time
}

// NewPushSource creates a PushSource.
func NewPushSource(opts PushSourceOptions) *PushSource {
	grace := opts.Grace
	if grace <= 0 {
		grace = DefaultSnapshotGrace
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &PushSource{
		snapshots:     make(map[string]domain.WindowSums),
		windowSeconds: opts.WindowSeconds,
		grace:         grace,
		fallback:      opts.Fallback,
		verbose:       opts.Verbose,
		now:           now,
	}
}

// Publish stores a pushed snapshot for its mint, replacing any previous one.
// A snapshot without an AsOf timestamp is stamped with the current time.
func (s *PushSource) Publish(sums domain.WindowSums) error {
	if sums.Mint == "" {
		return fmt.Errorf("%w: snapshot has empty mint", ErrInvalidTrade)
	}
	if sums.AsOf == 0 {
		sums.AsOf = s.now().UnixMilli()
	}
	if sums.WindowSeconds == 0 {
		sums.WindowSeconds = s.windowSeconds
	}
	sums.Source = domain.WindowSourcePush

	s.mu.Lock()
	s.snapshots[sums.Mint] = sums
	s.mu.Unlock()
	return nil
}

// Snapshot returns the raw pushed snapshot for a mint without fallback.
// Returns ErrNoSnapshot when none was pushed and ErrStaleSnapshot when the
// snapshot has aged out.
func (s *PushSource) Snapshot(mint string) (domain.WindowSums, error) {
	s.mu.RLock()
	snap, ok := s.snapshots[mint]
	s.mu.RUnlock()

	if !ok {
		return domain.WindowSums{}, fmt.Errorf("%w: mint %s", ErrNoSnapshot, mint)
	}
	age := s.now().UnixMilli() - snap.AsOf
	if age > s.maxAgeMs() {
		return domain.WindowSums{}, fmt.Errorf("%w: mint %s age %dms exceeds %dms", ErrStaleSnapshot, mint, age, s.maxAgeMs())
	}
	return snap, nil
}

// Sums returns the pushed snapshot when fresh, otherwise the fallback's
// sums, otherwise zero sums.
func (s *PushSource) Sums(ctx context.Context, mint string) (domain.WindowSums, error) {
	snap, err := s.Snapshot(mint)
	if err == nil {
		return snap, nil
	}
	if errors.Is(err, ErrStaleSnapshot) {
		s.logf("discarding stale snapshot for %s: %v", mint, err)
	}

	if s.fallback != nil {
		return s.fallback.Sums(ctx, mint)
	}
	return domain.WindowSums{
		Mint:          mint,
		WindowSeconds: s.windowSeconds,
		AsOf:          s.now().UnixMilli(),
		Source:        domain.WindowSourceLocal,
	}, nil
}

func (s *PushSource) maxAgeMs() int64 {
	return int64(s.windowSeconds)*1000 + s.grace.Milliseconds()
}

func (s *PushSource) logf(format string, args ...interface{}) {
	if s.verbose {
		log.Printf("[netflow] "+format, args...)
	}
}
