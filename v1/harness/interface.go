package harness

import (
	"context"
	"time"

	"github.com/Aleph-Alpha/kafka-roundtrip/v1/kafka"
)

//go:generate mockgen -source=interface.go -destination=mock_clients.go -package=harness

// TopicAdmin creates and deletes the run's topic. Both calls are idempotent.
type TopicAdmin interface {
	CreateIfNotExists(ctx context.Context, spec kafka.TopicSpec) error
	DeleteAll(ctx context.Context, names ...string) error
	Close() error
}

// Producer sends encoded messages to one topic.
type Producer interface {
	Send(ctx context.Context, batch []kafka.Message) error
	Close() error
}

// Consumer reads one topic within one consumer group.
type Consumer interface {
	Consume(ctx context.Context, limit int, timeout time.Duration) ([]kafka.Message, error)
	Close() error
}

// ClientFactory creates the broker clients of a run. Each returned client
// is owned by the caller, which closes it.
type ClientFactory interface {
	NewAdmin() TopicAdmin
	NewProducer(topic string) Producer
	// NewConsumer returns a consumer in a group private to worker.
	NewConsumer(topic string, worker int) Consumer
}

// Logger is the logging contract of the harness.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}
