// Package feed ingests trades and netflow snapshots from upstream market
// data sources. Two transports are supported: a WebSocket stream for push
// delivery and a Kafka consumer group for replayable delivery. Both decode
// the same wire envelope and hand the result to a Sink.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"solana-sell-engine/internal/domain"
)

// Sink receives decoded feed messages. The engine implements Sink; feeds
// decode and forward, nothing more. Trade IDs are left empty because the
// sink owns trade identity.
type Sink interface {
	IngestTrade(ctx context.Context, trade domain.Trade) error
	IngestSnapshot(ctx context.Context, sums domain.WindowSums) error
}

// ErrBadMessage marks a feed message that can never be decoded. Transports
// drop such messages instead of retrying them.
var ErrBadMessage = errors.New("bad feed message")

// Message type constants on the wire envelope.
const (
	MessageTypeTrade    = "trade"
	MessageTypeSnapshot = "snapshot"
)

// envelope wraps every feed message with its type.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// tradeMessage is the wire form of a market trade.
type tradeMessage struct {
	Mint        string  `json:"mint"`
	Side        string  `json:"side"`
	AmountUSD   float64 `json:"usd_amount"`
	Wallet      string  `json:"wallet,omitempty"`
	TxSignature string  `json:"tx_signature,omitempty"`
	Slot        int64   `json:"slot,omitempty"`
	TimestampMs int64   `json:"timestamp_ms"`
}

// snapshotMessage is the wire form of an aggregated netflow snapshot.
type snapshotMessage struct {
	Mint          string  `json:"mint"`
	BuyUSD        float64 `json:"buy_usd"`
	SellUSD       float64 `json:"sell_usd"`
	TradeCount    int     `json:"trade_count"`
	WindowSeconds int     `json:"window_seconds"`
	ObservedAtMs  int64   `json:"observed_at_ms"`
}

// dispatch decodes a raw feed message and forwards it to the sink.
func dispatch(ctx context.Context, sink Sink, raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: decode envelope: %v", ErrBadMessage, err)
	}

	switch env.Type {
	case MessageTypeTrade:
		var msg tradeMessage
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return fmt.Errorf("%w: decode trade: %v", ErrBadMessage, err)
		}
		return sink.IngestTrade(ctx, domain.Trade{
			Mint:        msg.Mint,
			Side:        msg.Side,
			AmountUSD:   msg.AmountUSD,
			Wallet:      msg.Wallet,
			TxSignature: msg.TxSignature,
			Slot:        msg.Slot,
			Timestamp:   msg.TimestampMs,
		})
	case MessageTypeSnapshot:
		var msg snapshotMessage
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return fmt.Errorf("%w: decode snapshot: %v", ErrBadMessage, err)
		}
		return sink.IngestSnapshot(ctx, domain.WindowSums{
			Mint:          msg.Mint,
			BuyUSD:        msg.BuyUSD,
			SellUSD:       msg.SellUSD,
			TradeCount:    msg.TradeCount,
			WindowSeconds: msg.WindowSeconds,
			AsOf:          msg.ObservedAtMs,
			Source:        domain.WindowSourcePush,
		})
	default:
		return fmt.Errorf("%w: unknown message type %q", ErrBadMessage, env.Type)
	}
}
