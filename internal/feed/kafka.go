package feed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"
)

// Consumer consumes the trade topic through a Kafka consumer group.
// Offsets are committed synchronously, one message at a time, and only
// after the sink accepted the message.
type Consumer struct {
	reader  *kafka.Reader
	sink    Sink
	verbose bool
}

// ConsumerOptions for creating a Consumer.
type ConsumerOptions struct {
	Brokers []string
	Topic   string
	GroupID string
	Verbose bool
}

// NewConsumer creates a Kafka consumer for the trade topic.
func NewConsumer(sink Sink, opts ConsumerOptions) (*Consumer, error) {
	if sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if len(opts.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	if opts.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        opts.Brokers,
		Topic:          opts.Topic,
		GroupID:        opts.GroupID,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: 0, // synchronous commits
		StartOffset:    kafka.FirstOffset,
	})

	return &Consumer{
		reader:  reader,
		sink:    sink,
		verbose: opts.Verbose,
	}, nil
}

// Run consumes messages until the context is cancelled. Undecodable
// messages are committed anyway so the group does not wedge on them; a
// message the sink rejected stays uncommitted and is redelivered after a
// restart or rebalance.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		if err := dispatch(ctx, c.sink, msg.Value); err != nil {
			if errors.Is(err, ErrBadMessage) {
				c.logf("skipping message at offset %d: %v", msg.Offset, err)
				if err := c.reader.CommitMessages(ctx, msg); err != nil {
					return fmt.Errorf("commit message: %w", err)
				}
				continue
			}
			c.logf("ingest failed at offset %d: %v", msg.Offset, err)
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit message: %w", err)
		}
	}
}

// Close closes the underlying Kafka reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

func (c *Consumer) logf(format string, args ...interface{}) {
	if c.verbose {
		log.Printf("[feed] "+format, args...)
	}
}
