package engine

import (
	"context"

	"solana-sell-engine/internal/domain"
	"solana-sell-engine/internal/feed"
)

// FeedSink adapts the engine to feed.Sink with a fixed source label, so
// ingest metrics distinguish the websocket feed from the Kafka topic.
type FeedSink struct {
	Engine *Engine
	Source string
}

// IngestTrade records the trade and lets the trigger mode react to it.
func (s *FeedSink) IngestTrade(ctx context.Context, trade domain.Trade) error {
	_, err := s.Engine.OnTrade(ctx, s.Source, trade)
	return err
}

// IngestSnapshot publishes the pushed window sums.
func (s *FeedSink) IngestSnapshot(ctx context.Context, sums domain.WindowSums) error {
	return s.Engine.IngestSnapshot(ctx, s.Source, sums)
}

var _ feed.Sink = (*FeedSink)(nil)
