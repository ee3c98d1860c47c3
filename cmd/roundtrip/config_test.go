package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "http://localhost:8081", cfg.SchemaRegistry.URL)
	assert.Equal(t, "test-topic-avro", cfg.Harness.Topic)
	assert.Equal(t, 1, cfg.Harness.MessagesPerWorker)
	assert.Equal(t, time.Minute, cfg.Harness.ConsumeTimeout)
}

func TestLoadConfigLegacyEnvironment(t *testing.T) {
	t.Setenv("KAFKA_BROKER", "broker-1:9092,broker-2:9092")
	t.Setenv("KAFKA_TOPIC", "orders")
	t.Setenv("SCHEMA_REGISTRY_URL", "http://registry:8081")
	t.Setenv("QUANTITY_OF_MESSAGE", "5")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "orders", cfg.Harness.Topic)
	assert.Equal(t, "http://registry:8081", cfg.SchemaRegistry.URL)
	assert.Equal(t, 5, cfg.Harness.MessagesPerWorker)
}

func TestLoadConfigPrefixedEnvironmentWins(t *testing.T) {
	t.Setenv("QUANTITY_OF_MESSAGE", "5")
	t.Setenv("ROUNDTRIP_HARNESS_MESSAGES_PER_WORKER", "7")
	t.Setenv("ROUNDTRIP_HARNESS_KEY_STRATEGY", "alternating")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Harness.MessagesPerWorker)
	assert.Equal(t, "alternating", cfg.Harness.KeyStrategy)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roundtrip.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
kafka:
  brokers: ["kafka:29092"]
  required_acks: all
harness:
  workers: 3
  consume_timeout: 2s
  alternating_keys: [ROUTER, CHANNEL]
  key_strategy: alternating
`), 0o600))
	t.Setenv("ROUNDTRIP_HARNESS_WORKERS", "4")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka:29092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "all", cfg.Kafka.RequiredAcks)
	assert.Equal(t, 4, cfg.Harness.Workers)
	assert.Equal(t, 2*time.Second, cfg.Harness.ConsumeTimeout)
	assert.Equal(t, []string{"ROUTER", "CHANNEL"}, cfg.Harness.AlternatingKeys)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigEnvironmentReachesEveryKey(t *testing.T) {
	t.Setenv("ROUNDTRIP_HARNESS_PARTITIONS", "3")
	t.Setenv("ROUNDTRIP_HARNESS_REPLICATION_FACTOR", "2")
	t.Setenv("ROUNDTRIP_HARNESS_TEARDOWN_TIMEOUT", "5s")
	t.Setenv("ROUNDTRIP_HARNESS_KEY_SCHEMA_PATH", "/schemas/key.avsc")
	t.Setenv("ROUNDTRIP_HARNESS_ORIGIN", "ci")
	t.Setenv("ROUNDTRIP_KAFKA_GROUP_PREFIX", "mygroup")
	t.Setenv("ROUNDTRIP_KAFKA_MAX_ATTEMPTS", "9")
	t.Setenv("ROUNDTRIP_KAFKA_TLS_CLIENT_CERT_PATH", "/certs/client.pem")
	t.Setenv("ROUNDTRIP_SCHEMA_REGISTRY_MAX_RETRIES", "2")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Harness.Partitions)
	assert.Equal(t, 2, cfg.Harness.ReplicationFactor)
	assert.Equal(t, 5*time.Second, cfg.Harness.TeardownTimeout)
	assert.Equal(t, "/schemas/key.avsc", cfg.Harness.KeySchemaPath)
	assert.Equal(t, "ci", cfg.Harness.Origin)
	assert.Equal(t, "mygroup", cfg.Kafka.GroupPrefix)
	assert.Equal(t, 9, cfg.Kafka.MaxAttempts)
	assert.Equal(t, "/certs/client.pem", cfg.Kafka.TLS.ClientCertPath)
	assert.EqualValues(t, 2, cfg.SchemaRegistry.MaxRetries)
	assert.Equal(t, "test-topic-avro", cfg.Harness.Topic)
}
