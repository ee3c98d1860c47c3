package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sr "github.com/Aleph-Alpha/kafka-roundtrip/v1/schema_registry"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Workers: 4}.withDefaults()
	assert.Equal(t, DefaultTopic, cfg.Topic)
	assert.Equal(t, 6, cfg.Partitions)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, DefaultConsumeTimeout, cfg.ConsumeTimeout)
	assert.Equal(t, KeyStrategyPrefix, cfg.KeyStrategy)
	assert.Equal(t, "AVRO", cfg.ValueSchemaType)
	require.NoError(t, cfg.validate())
}

func TestConfigValidation(t *testing.T) {
	tests := map[string]func(*Config){
		"negative workers":       func(c *Config) { c.Workers = -1 },
		"negative messages":      func(c *Config) { c.MessagesPerWorker = -2 },
		"negative timeout":       func(c *Config) { c.ConsumeTimeout = -1 },
		"unknown key type":       func(c *Config) { c.KeySchemaType = "protobuf" },
		"string values":          func(c *Config) { c.ValueSchemaType = "STRING" },
		"unknown key strategy":   func(c *Config) { c.KeyStrategy = "random" },
		"single alternating key": func(c *Config) { c.KeyStrategy = KeyStrategyAlternating; c.AlternatingKeys = []string{"ROUTER"} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			mutate(&cfg)
			_, err := NewHarness(cfg, nil, nil, nil, newMemBroker())
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.True(t, IsConfigError(err))
		})
	}
}

func TestLoadCatalogEmbeddedSchemas(t *testing.T) {
	for _, tc := range []struct {
		keyType, valueType string
		keySubject         string
	}{
		{"AVRO", "AVRO", "orders-key"},
		{"JSON", "JSON", "orders-key"},
		{"STRING", "AVRO", "orders-key"},
	} {
		cfg := testConfig()
		cfg.KeySchemaType, cfg.ValueSchemaType = tc.keyType, tc.valueType
		catalog, err := LoadCatalog(cfg)
		require.NoError(t, err)
		require.NoError(t, catalog.Validate())

		subject, err := catalog.SubjectName("orders", sr.RoleKey, sr.TopicNameStrategy)
		require.NoError(t, err)
		assert.Equal(t, tc.keySubject, subject)

		value, err := catalog.Definition(sr.RoleValue)
		require.NoError(t, err)
		assert.Equal(t, sr.SchemaType(tc.valueType), value.Type)
		assert.Equal(t, "com.alephalpha.roundtrip.Order", value.RecordName())
	}
}

func TestLoadCatalogRecordNameStrategy(t *testing.T) {
	catalog, err := LoadCatalog(testConfig())
	require.NoError(t, err)

	subject, err := catalog.SubjectName("orders", sr.RoleValue, sr.TopicRecordNameStrategy)
	require.NoError(t, err)
	assert.Equal(t, "orders-com.alephalpha.roundtrip.Order", subject)
}

func TestLoadCatalogSchemaOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.avsc")
	require.NoError(t, os.WriteFile(path, []byte(`{"type": "record"}`), 0o600))

	cfg := testConfig()
	cfg.ValueSchemaPath = path
	catalog, err := LoadCatalog(cfg)
	require.NoError(t, err)
	assert.ErrorIs(t, catalog.Validate(), sr.ErrConfig)

	cfg.ValueSchemaPath = filepath.Join(t.TempDir(), "missing.avsc")
	_, err = LoadCatalog(cfg)
	assert.ErrorIs(t, err, sr.ErrConfig)
}
