package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	DefaultRequiredAcks   = AcksLeader
	DefaultCompression    = "snappy"
	DefaultMaxAttempts    = 3
	DefaultWriteTimeout   = 10 * time.Second
	DefaultBatchTimeout   = 10 * time.Millisecond
	DefaultMinBytes       = 1
	DefaultMaxBytes       = 10e6 // 10MB
	DefaultMaxWait        = 250 * time.Millisecond
	DefaultStartOffset    = kafka.FirstOffset
	DefaultGroupPrefix    = "roundtrip-order-group"
	DefaultDialTimeout    = 10 * time.Second
	DefaultAdminTimeout   = 10 * time.Second
	DefaultAdminRetries   = 5
	DefaultCommitTimeout  = 5 * time.Second
	DefaultPartitions     = 6
	DefaultReplication    = 1
	DefaultTopicReadiness = 30 * time.Second
)

// Acknowledgement levels accepted in Config.RequiredAcks.
const (
	AcksNone   = "none"
	AcksLeader = "leader"
	AcksAll    = "all"
)

// Config holds the broker connection and client tuning of a run.
type Config struct {
	// Brokers is the list of bootstrap broker addresses (host:port).
	Brokers []string `yaml:"brokers" mapstructure:"brokers"`

	// ClientID identifies the harness to the brokers.
	ClientID string `yaml:"client_id" mapstructure:"client_id"`

	// RequiredAcks is the acknowledgement a send waits for:
	// "none", "leader" (default) or "all".
	RequiredAcks string `yaml:"required_acks" mapstructure:"required_acks"`

	// Compression is the producer codec: none, gzip, snappy (default), lz4 or zstd.
	Compression string `yaml:"compression" mapstructure:"compression"`

	// MaxAttempts bounds the delivery attempts of one send.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`

	// WriteTimeout bounds one write to a broker.
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`

	// BatchTimeout is how long the writer waits to fill a batch before
	// flushing. Keep it low; sends are synchronous.
	BatchTimeout time.Duration `yaml:"batch_timeout" mapstructure:"batch_timeout"`

	// AllowAutoTopicCreation lets the producer create a missing topic with
	// broker defaults.
	AllowAutoTopicCreation bool `yaml:"allow_auto_topic_creation" mapstructure:"allow_auto_topic_creation"`

	// GroupPrefix is the consumer group prefix; each worker joins
	// "<GroupPrefix>-<worker>".
	GroupPrefix string `yaml:"group_prefix" mapstructure:"group_prefix"`

	// MinBytes and MaxBytes bound one fetch.
	MinBytes int `yaml:"min_bytes" mapstructure:"min_bytes"`
	MaxBytes int `yaml:"max_bytes" mapstructure:"max_bytes"`

	// MaxWait is how long a fetch waits for MinBytes.
	MaxWait time.Duration `yaml:"max_wait" mapstructure:"max_wait"`

	// StartOffset applies to groups without committed offsets:
	// kafka.FirstOffset (-2, default) or kafka.LastOffset (-1).
	StartOffset int64 `yaml:"start_offset" mapstructure:"start_offset"`

	// DialTimeout bounds connection establishment.
	DialTimeout time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`

	// AdminTimeout bounds one admin request.
	AdminTimeout time.Duration `yaml:"admin_timeout" mapstructure:"admin_timeout"`

	// AdminRetries bounds retries of admin requests that failed on
	// connectivity or a retriable broker error.
	AdminRetries uint64 `yaml:"admin_retries" mapstructure:"admin_retries"`

	// TopicReadiness bounds the wait for a created topic to have leaders.
	TopicReadiness time.Duration `yaml:"topic_readiness" mapstructure:"topic_readiness"`

	TLS  TLSConfig  `yaml:"tls" mapstructure:"tls"`
	SASL SASLConfig `yaml:"sasl" mapstructure:"sasl"`
}

// TLSConfig contains TLS/SSL configuration
type TLSConfig struct {
	Enabled            bool   `yaml:"enabled" mapstructure:"enabled"`
	CACertPath         string `yaml:"ca_cert_path" mapstructure:"ca_cert_path"`
	ClientCertPath     string `yaml:"client_cert_path" mapstructure:"client_cert_path"`
	ClientKeyPath      string `yaml:"client_key_path" mapstructure:"client_key_path"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// SASLConfig contains SASL authentication configuration
type SASLConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Mechanism is PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512.
	Mechanism string `yaml:"mechanism" mapstructure:"mechanism"`
	Username  string `yaml:"username" mapstructure:"username"`
	Password  string `yaml:"password" mapstructure:"password"`
}

// TopicSpec describes a topic to provision.
type TopicSpec struct {
	Name              string            `yaml:"name" mapstructure:"name"`
	Partitions        int               `yaml:"partitions" mapstructure:"partitions"`
	ReplicationFactor int               `yaml:"replication_factor" mapstructure:"replication_factor"`
	ConfigEntries     map[string]string `yaml:"config_entries" mapstructure:"config_entries"`
}

func (cfg Config) withDefaults() Config {
	if cfg.RequiredAcks == "" {
		cfg.RequiredAcks = DefaultRequiredAcks
	}
	if cfg.Compression == "" {
		cfg.Compression = DefaultCompression
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = DefaultBatchTimeout
	}
	if cfg.GroupPrefix == "" {
		cfg.GroupPrefix = DefaultGroupPrefix
	}
	if cfg.MinBytes == 0 {
		cfg.MinBytes = DefaultMinBytes
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = DefaultMaxWait
	}
	if cfg.StartOffset == 0 {
		cfg.StartOffset = DefaultStartOffset
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.AdminTimeout == 0 {
		cfg.AdminTimeout = DefaultAdminTimeout
	}
	if cfg.AdminRetries == 0 {
		cfg.AdminRetries = DefaultAdminRetries
	}
	if cfg.TopicReadiness == 0 {
		cfg.TopicReadiness = DefaultTopicReadiness
	}
	return cfg
}

func (s TopicSpec) withDefaults() TopicSpec {
	if s.Partitions == 0 {
		s.Partitions = DefaultPartitions
	}
	if s.ReplicationFactor == 0 {
		s.ReplicationFactor = DefaultReplication
	}
	return s
}
