package kafka

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer sends batches to one topic. Send blocks until the configured
// acknowledgement arrives; it never paces itself.
type Producer struct {
	topic  string
	writer messageWriter
	logger Logger
}

func newProducer(topic string, writer messageWriter, logger Logger) *Producer {
	return &Producer{topic: topic, writer: writer, logger: logger}
}

// Topic returns the topic the producer writes to.
func (p *Producer) Topic() string {
	return p.topic
}

// Send writes batch in one call. Keys decide partitions, so equal keys keep
// their relative order. The writer retries transient broker errors up to
// Config.MaxAttempts; a batch still unacknowledged fails with ErrSend.
func (p *Producer) Send(ctx context.Context, batch []Message) error {
	if len(batch) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, len(batch))
	for i, m := range batch {
		msgs[i] = toKafkaMessage(m)
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("%w: %d message(s) to %q: %w", ErrSend, len(batch), p.topic, err)
	}
	return nil
}

// Close flushes and releases the writer.
func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close producer for %q: %w", p.topic, err)
	}
	return nil
}
