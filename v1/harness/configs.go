package harness

import (
	"fmt"
	"time"

	sr "github.com/Aleph-Alpha/kafka-roundtrip/v1/schema_registry"
)

const (
	DefaultTopic             = "test-topic-avro"
	DefaultPartitions        = 6
	DefaultReplicationFactor = 1
	DefaultTopicCompression  = "snappy"
	DefaultWorkers           = 1
	DefaultMessagesPerWorker = 1
	DefaultConsumeTimeout    = 60 * time.Second
	DefaultTeardownTimeout   = 30 * time.Second
	DefaultOrigin            = "kafka-roundtrip"
	DefaultKeyPrefix         = "key-"
)

// Key strategies accepted in Config.KeyStrategy.
const (
	KeyStrategyPrefix      = "prefix"
	KeyStrategyAlternating = "alternating"
)

// DefaultAlternatingKeys are the literals used by the alternating key strategy.
var DefaultAlternatingKeys = []string{"ROUTER", "CHANNEL"}

// Config holds the parameters of one round-trip run.
type Config struct {
	// Topic is created at setup and deleted at teardown.
	Topic string `yaml:"topic" mapstructure:"topic"`

	Partitions        int `yaml:"partitions" mapstructure:"partitions"`
	ReplicationFactor int `yaml:"replication_factor" mapstructure:"replication_factor"`

	// TopicCompression becomes the topic's compression.type entry.
	TopicCompression string `yaml:"topic_compression" mapstructure:"topic_compression"`

	// Workers is the number of independent produce/consume cycles.
	Workers int `yaml:"workers" mapstructure:"workers"`

	// Concurrency caps the workers running at once. Zero runs all of them.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`

	// MessagesPerWorker is N: each worker produces N messages and then
	// consumes with limit N.
	MessagesPerWorker int `yaml:"messages_per_worker" mapstructure:"messages_per_worker"`

	// BatchSend sends a worker's messages in one call instead of one call each.
	BatchSend bool `yaml:"batch_send" mapstructure:"batch_send"`

	ConsumeTimeout  time.Duration `yaml:"consume_timeout" mapstructure:"consume_timeout"`
	TeardownTimeout time.Duration `yaml:"teardown_timeout" mapstructure:"teardown_timeout"`

	// KeepTopic skips deleting the topic at teardown.
	KeepTopic bool `yaml:"keep_topic" mapstructure:"keep_topic"`

	// Origin is sent in the origin header of every message.
	Origin string `yaml:"origin" mapstructure:"origin"`

	// KeyStrategy is "prefix" (KeyPrefix followed by the correlation id) or
	// "alternating" (AlternatingKeys by even/odd message index).
	KeyStrategy     string   `yaml:"key_strategy" mapstructure:"key_strategy"`
	KeyPrefix       string   `yaml:"key_prefix" mapstructure:"key_prefix"`
	AlternatingKeys []string `yaml:"alternating_keys" mapstructure:"alternating_keys"`

	// KeySchemaType is AVRO, JSON or STRING; ValueSchemaType is AVRO or JSON.
	KeySchemaType   string `yaml:"key_schema_type" mapstructure:"key_schema_type"`
	ValueSchemaType string `yaml:"value_schema_type" mapstructure:"value_schema_type"`

	// KeySchemaPath and ValueSchemaPath override the embedded order schemas.
	KeySchemaPath   string `yaml:"key_schema_path" mapstructure:"key_schema_path"`
	ValueSchemaPath string `yaml:"value_schema_path" mapstructure:"value_schema_path"`

	// SubjectNameStrategy is TOPIC_NAME (default), RECORD_NAME or TOPIC_RECORD_NAME.
	SubjectNameStrategy string `yaml:"subject_name_strategy" mapstructure:"subject_name_strategy"`

	// Seed makes payload generation reproducible. Zero seeds from the clock.
	Seed int64 `yaml:"seed" mapstructure:"seed"`
}

func (cfg Config) withDefaults() Config {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.Partitions == 0 {
		cfg.Partitions = DefaultPartitions
	}
	if cfg.ReplicationFactor == 0 {
		cfg.ReplicationFactor = DefaultReplicationFactor
	}
	if cfg.TopicCompression == "" {
		cfg.TopicCompression = DefaultTopicCompression
	}
	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = cfg.Workers
	}
	if cfg.MessagesPerWorker == 0 {
		cfg.MessagesPerWorker = DefaultMessagesPerWorker
	}
	if cfg.ConsumeTimeout == 0 {
		cfg.ConsumeTimeout = DefaultConsumeTimeout
	}
	if cfg.TeardownTimeout == 0 {
		cfg.TeardownTimeout = DefaultTeardownTimeout
	}
	if cfg.Origin == "" {
		cfg.Origin = DefaultOrigin
	}
	if cfg.KeyStrategy == "" {
		cfg.KeyStrategy = KeyStrategyPrefix
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	if len(cfg.AlternatingKeys) == 0 {
		cfg.AlternatingKeys = DefaultAlternatingKeys
	}
	if cfg.KeySchemaType == "" {
		cfg.KeySchemaType = string(sr.Avro)
	}
	if cfg.ValueSchemaType == "" {
		cfg.ValueSchemaType = string(sr.Avro)
	}
	if cfg.SubjectNameStrategy == "" {
		cfg.SubjectNameStrategy = string(sr.TopicNameStrategy)
	}
	return cfg
}

// validate checks a defaulted config. It never touches the network.
func (cfg Config) validate() error {
	if cfg.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, cfg.Workers)
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidConfig, cfg.Concurrency)
	}
	if cfg.MessagesPerWorker < 1 {
		return fmt.Errorf("%w: messages per worker must be at least 1, got %d", ErrInvalidConfig, cfg.MessagesPerWorker)
	}
	if cfg.ConsumeTimeout < 0 {
		return fmt.Errorf("%w: consume timeout is negative", ErrInvalidConfig)
	}
	if _, err := sr.ParseSchemaType(cfg.KeySchemaType); err != nil {
		return fmt.Errorf("%w: key schema type: %w", ErrInvalidConfig, err)
	}
	valueType, err := sr.ParseSchemaType(cfg.ValueSchemaType)
	if err != nil {
		return fmt.Errorf("%w: value schema type: %w", ErrInvalidConfig, err)
	}
	if !valueType.Registered() {
		return fmt.Errorf("%w: value schema type must be AVRO or JSON, got %s", ErrInvalidConfig, valueType)
	}
	if _, err := newKeyStrategy(cfg); err != nil {
		return err
	}
	return nil
}
