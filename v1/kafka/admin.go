package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
)

// adminAPI is the part of *kafka.Client the admin uses.
type adminAPI interface {
	CreateTopics(ctx context.Context, req *kafka.CreateTopicsRequest) (*kafka.CreateTopicsResponse, error)
	DeleteTopics(ctx context.Context, req *kafka.DeleteTopicsRequest) (*kafka.DeleteTopicsResponse, error)
	Metadata(ctx context.Context, req *kafka.MetadataRequest) (*kafka.MetadataResponse, error)
}

// Admin provisions and removes topics. Both operations are idempotent and
// safe to call from several goroutines.
type Admin struct {
	client    adminAPI
	transport *kafka.Transport
	cfg       Config
	logger    Logger
}

func newAdmin(client adminAPI, transport *kafka.Transport, cfg Config, logger Logger) *Admin {
	return &Admin{client: client, transport: transport, cfg: cfg, logger: logger}
}

// CreateIfNotExists creates the topic and waits until every partition has a
// leader. An existing topic is success. Connectivity failures and
// retriable broker errors are retried; anything else fails with ErrAdmin.
func (a *Admin) CreateIfNotExists(ctx context.Context, spec TopicSpec) error {
	spec = spec.withDefaults()
	if spec.Name == "" {
		return fmt.Errorf("%w: topic name is empty", ErrAdmin)
	}

	entries := make([]kafka.ConfigEntry, 0, len(spec.ConfigEntries))
	for name, value := range spec.ConfigEntries {
		entries = append(entries, kafka.ConfigEntry{ConfigName: name, ConfigValue: value})
	}
	req := &kafka.CreateTopicsRequest{
		Topics: []kafka.TopicConfig{{
			Topic:             spec.Name,
			NumPartitions:     spec.Partitions,
			ReplicationFactor: spec.ReplicationFactor,
			ConfigEntries:     entries,
		}},
	}

	created := false
	err := a.retry(ctx, "create topic", func() error {
		resp, err := a.client.CreateTopics(ctx, req)
		if err != nil {
			return err
		}
		topicErr := resp.Errors[spec.Name]
		switch {
		case topicErr == nil:
			created = true
			return nil
		case errors.Is(topicErr, kafka.TopicAlreadyExists):
			return nil
		}
		return topicErr
	})
	if err != nil {
		return fmt.Errorf("%w: create topic %q: %w", ErrAdmin, spec.Name, err)
	}

	if err := a.waitForLeaders(ctx, spec.Name); err != nil {
		return fmt.Errorf("%w: topic %q not ready: %w", ErrAdmin, spec.Name, err)
	}

	if a.logger != nil {
		a.logger.Info("Kafka topic ready", nil, map[string]interface{}{
			"topic":      spec.Name,
			"created":    created,
			"partitions": spec.Partitions,
		})
	}
	return nil
}

// DeleteAll deletes the named topics. Topics that do not exist are skipped.
func (a *Admin) DeleteAll(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	req := &kafka.DeleteTopicsRequest{Topics: names}

	err := a.retry(ctx, "delete topics", func() error {
		resp, err := a.client.DeleteTopics(ctx, req)
		if err != nil {
			return err
		}
		var errs []error
		for _, name := range names {
			topicErr := resp.Errors[name]
			if topicErr == nil || errors.Is(topicErr, kafka.UnknownTopicOrPartition) {
				continue
			}
			errs = append(errs, fmt.Errorf("%s: %w", name, topicErr))
		}
		return errors.Join(errs...)
	})
	if err != nil {
		return fmt.Errorf("%w: delete topics %v: %w", ErrAdmin, names, err)
	}

	if a.logger != nil {
		a.logger.Info("Kafka topics deleted", nil, map[string]interface{}{"topics": names})
	}
	return nil
}

// Exists reports whether the broker knows the topic.
func (a *Admin) Exists(ctx context.Context, name string) (bool, error) {
	topic, err := a.describe(ctx, name)
	if err != nil {
		return false, fmt.Errorf("%w: describe topic %q: %w", ErrAdmin, name, err)
	}
	return topic != nil, nil
}

// Close releases idle broker connections.
func (a *Admin) Close() error {
	if a.transport != nil {
		a.transport.CloseIdleConnections()
	}
	return nil
}

var errTopicNotReady = errors.New("partitions without leader")

func (a *Admin) waitForLeaders(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.TopicReadiness)
	defer cancel()

	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 100 * time.Millisecond
	exponentialBackoff.MaxInterval = time.Second
	exponentialBackoff.MaxElapsedTime = 0

	return backoff.Retry(func() error {
		topic, err := a.describe(ctx, name)
		if err != nil {
			return err
		}
		if topic == nil || len(topic.Partitions) == 0 {
			return errTopicNotReady
		}
		for _, p := range topic.Partitions {
			if p.Error != nil || p.Leader.Host == "" {
				return errTopicNotReady
			}
		}
		return nil
	}, backoff.WithContext(exponentialBackoff, ctx))
}

// describe returns the metadata of one topic, or nil when it does not exist.
func (a *Admin) describe(ctx context.Context, name string) (*kafka.Topic, error) {
	resp, err := a.client.Metadata(ctx, &kafka.MetadataRequest{Topics: []string{name}})
	if err != nil {
		return nil, err
	}
	for i := range resp.Topics {
		topic := resp.Topics[i]
		if topic.Name != name {
			continue
		}
		if errors.Is(topic.Error, kafka.UnknownTopicOrPartition) {
			return nil, nil
		}
		if topic.Error != nil {
			return nil, topic.Error
		}
		return &topic, nil
	}
	return nil, nil
}

// retry runs op with exponential backoff, giving up after Config.AdminRetries
// retries or on the first non-retriable error.
func (a *Admin) retry(ctx context.Context, what string, op func() error) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 200 * time.Millisecond
	exponentialBackoff.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(exponentialBackoff, a.cfg.AdminRetries), ctx)

	return backoff.RetryNotify(func() error {
		err := op()
		if err != nil && !retriable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		if a.logger != nil {
			a.logger.Warn("Kafka admin request failed, retrying", err, map[string]interface{}{
				"operation": what,
				"wait":      wait.String(),
			})
		}
	})
}

// retriable reports whether err is worth another attempt: network failures
// and broker errors flagged temporary.
func retriable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var kafkaErr kafka.Error
	if errors.As(err, &kafkaErr) {
		return kafkaErr.Temporary()
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
