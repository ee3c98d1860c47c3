package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// messageReader is the part of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads one topic as a member of one consumer group.
type Consumer struct {
	topic   string
	groupID string
	reader  messageReader
	cfg     Config
	logger  Logger
}

func newConsumer(topic, groupID string, reader messageReader, cfg Config, logger Logger) *Consumer {
	return &Consumer{topic: topic, groupID: groupID, reader: reader, cfg: cfg, logger: logger}
}

// GroupID returns the consumer group the consumer belongs to.
func (c *Consumer) GroupID() string {
	return c.groupID
}

// Consume returns up to limit messages, waiting at most timeout.
//
// Fewer than limit messages when the timeout expires is a normal result,
// not an error. The offsets of returned messages are committed. A reader
// failure returns the messages read so far with ErrConsume; a cancelled
// ctx returns them with ctx's error.
func (c *Consumer) Consume(ctx context.Context, limit int, timeout time.Duration) ([]Message, error) {
	if limit <= 0 {
		return nil, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fetched := make([]kafka.Message, 0, limit)
	var fetchErr error
fetch:
	for len(fetched) < limit {
		m, err := c.reader.FetchMessage(fetchCtx)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				fetchErr = ctx.Err()
			case fetchCtx.Err() != nil || errors.Is(err, context.DeadlineExceeded):
				// timed out with a short result
			default:
				fetchErr = fmt.Errorf("%w: fetch from %q in group %q: %w", ErrConsume, c.topic, c.groupID, err)
			}
			break fetch
		}
		fetched = append(fetched, m)
	}

	out := make([]Message, len(fetched))
	for i, m := range fetched {
		out[i] = fromKafkaMessage(m)
	}

	if err := c.commit(ctx, fetched); err != nil && fetchErr == nil {
		fetchErr = err
	}
	return out, fetchErr
}

func (c *Consumer) commit(ctx context.Context, msgs []kafka.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultCommitTimeout)
	defer cancel()

	if err := c.reader.CommitMessages(commitCtx, msgs...); err != nil {
		if c.logger != nil {
			c.logger.Warn("Kafka offset commit failed", err, map[string]interface{}{
				"topic": c.topic,
				"group": c.groupID,
			})
		}
		return fmt.Errorf("%w: commit offsets in group %q: %w", ErrConsume, c.groupID, err)
	}
	return nil
}

// Close leaves the consumer group and releases the reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("close consumer for %q: %w", c.topic, err)
	}
	return nil
}
