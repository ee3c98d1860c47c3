package kafka

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=kafka

// Logger is the logging contract of the kafka clients.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Factory creates the admin, producer and consumer clients of a run from a
// single Config, sharing its TLS and SASL setup.
type Factory struct {
	cfg       Config
	tlsConfig *tls.Config
	mechanism sasl.Mechanism
	logger    Logger
}

// NewFactory validates cfg, applies defaults and prepares the security setup.
func NewFactory(cfg Config, logger Logger) (*Factory, error) {
	cfg = cfg.withDefaults()
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("%w: at least one broker is required", ErrInvalidConfig)
	}
	if _, err := requiredAcks(cfg.RequiredAcks); err != nil {
		return nil, err
	}
	if _, err := compressionCodec(cfg.Compression); err != nil {
		return nil, err
	}

	f := &Factory{cfg: cfg, logger: logger}

	var err error
	if cfg.TLS.Enabled {
		f.tlsConfig, err = createTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to create TLS config: %v", ErrInvalidConfig, err)
		}
	}
	if cfg.SASL.Enabled {
		f.mechanism, err = createSASLMechanism(cfg.SASL)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to create SASL mechanism: %v", ErrInvalidConfig, err)
		}
	}
	return f, nil
}

// Config returns the effective configuration, defaults applied.
func (f *Factory) Config() Config {
	return f.cfg
}

// GroupID returns the consumer group of a worker.
func (f *Factory) GroupID(worker int) string {
	return fmt.Sprintf("%s-%d", f.cfg.GroupPrefix, worker)
}

// NewAdmin creates a topic administration client.
func (f *Factory) NewAdmin() *Admin {
	transport := f.transport()
	return newAdmin(&kafka.Client{
		Addr:      kafka.TCP(f.cfg.Brokers...),
		Timeout:   f.cfg.AdminTimeout,
		Transport: transport,
	}, transport, f.cfg, f.logger)
}

// NewProducer creates a producer bound to topic.
func (f *Factory) NewProducer(topic string) *Producer {
	acks, _ := requiredAcks(f.cfg.RequiredAcks)
	codec, _ := compressionCodec(f.cfg.Compression)

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(f.cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            f.cfg.MaxAttempts,
		WriteTimeout:           f.cfg.WriteTimeout,
		BatchTimeout:           f.cfg.BatchTimeout,
		RequiredAcks:           acks,
		Compression:            codec,
		AllowAutoTopicCreation: f.cfg.AllowAutoTopicCreation,
		ErrorLogger:            f.errorLogger(),
		Transport:              f.transport(),
	}
	return newProducer(topic, writer, f.logger)
}

// NewConsumer creates a consumer of topic in groupID.
func (f *Factory) NewConsumer(topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        f.cfg.Brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       f.cfg.MinBytes,
		MaxBytes:       f.cfg.MaxBytes,
		MaxWait:        f.cfg.MaxWait,
		StartOffset:    f.cfg.StartOffset,
		CommitInterval: 0,
		ErrorLogger:    f.errorLogger(),
		Dialer: &kafka.Dialer{
			ClientID:      f.cfg.ClientID,
			Timeout:       f.cfg.DialTimeout,
			DualStack:     true,
			TLS:           f.tlsConfig,
			SASLMechanism: f.mechanism,
		},
	})
	return newConsumer(topic, groupID, reader, f.cfg, f.logger)
}

func (f *Factory) transport() *kafka.Transport {
	return &kafka.Transport{
		ClientID:    f.cfg.ClientID,
		DialTimeout: f.cfg.DialTimeout,
		TLS:         f.tlsConfig,
		SASL:        f.mechanism,
	}
}

// errorLogger routes kafka-go internal errors to the injected logger.
func (f *Factory) errorLogger() kafka.LoggerFunc {
	return kafka.LoggerFunc(func(msg string, args ...interface{}) {
		if f.logger == nil {
			return
		}
		f.logger.Error("Kafka internal error", nil, map[string]interface{}{
			"error": fmt.Sprintf(msg, args...),
		})
	})
}

func requiredAcks(level string) (kafka.RequiredAcks, error) {
	switch strings.ToLower(level) {
	case AcksNone:
		return kafka.RequireNone, nil
	case AcksLeader, "":
		return kafka.RequireOne, nil
	case AcksAll:
		return kafka.RequireAll, nil
	}
	return kafka.RequireOne, fmt.Errorf("%w: unsupported required acks %q", ErrInvalidConfig, level)
}

func compressionCodec(name string) (kafka.Compression, error) {
	switch strings.ToLower(name) {
	case "none", "":
		return 0, nil
	case "gzip":
		return kafka.Gzip, nil
	case "snappy":
		return kafka.Snappy, nil
	case "lz4":
		return kafka.Lz4, nil
	case "zstd":
		return kafka.Zstd, nil
	}
	return 0, fmt.Errorf("%w: unsupported compression %q", ErrInvalidConfig, name)
}

// createTLSConfig creates a TLS configuration from the provided config
func createTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caCertPool
	}

	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// createSASLMechanism creates a SASL mechanism from the provided config
func createSASLMechanism(cfg SASLConfig) (sasl.Mechanism, error) {
	switch cfg.Mechanism {
	case "PLAIN":
		return plain.Mechanism{
			Username: cfg.Username,
			Password: cfg.Password,
		}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism: %s", cfg.Mechanism)
	}
}
