package main

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/viper"

	"github.com/Aleph-Alpha/kafka-roundtrip/v1/harness"
	"github.com/Aleph-Alpha/kafka-roundtrip/v1/kafka"
	"github.com/Aleph-Alpha/kafka-roundtrip/v1/logger"
	"github.com/Aleph-Alpha/kafka-roundtrip/v1/metrics"
	sr "github.com/Aleph-Alpha/kafka-roundtrip/v1/schema_registry"
	"github.com/Aleph-Alpha/kafka-roundtrip/v1/tracer"
)

const envPrefix = "roundtrip"

// AppConfig is the configuration file of the roundtrip command. Every key
// can be overridden by ROUNDTRIP_<SECTION>_<KEY>, e.g. ROUNDTRIP_HARNESS_WORKERS.
type AppConfig struct {
	Logger         logger.Config  `mapstructure:"logger"`
	Metrics        metrics.Config `mapstructure:"metrics"`
	Tracer         tracer.Config  `mapstructure:"tracer"`
	Kafka          kafka.Config   `mapstructure:"kafka"`
	SchemaRegistry sr.Config      `mapstructure:"schema_registry"`
	Harness        harness.Config `mapstructure:"harness"`
}

// legacyEnv maps the variables of existing load-test setups onto config keys.
var legacyEnv = map[string]string{
	"kafka.brokers":               "KAFKA_BROKER",
	"harness.topic":               "KAFKA_TOPIC",
	"schema_registry.url":         "SCHEMA_REGISTRY_URL",
	"harness.messages_per_worker": "QUANTITY_OF_MESSAGE",
}

// LoadConfig reads path, if set, and applies environment overrides.
func LoadConfig(path string) (AppConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := bindEnvs(v, "", reflect.TypeOf(AppConfig{})); err != nil {
		return AppConfig{}, err
	}
	for key, env := range legacyEnv {
		// the prefixed variable still wins over the legacy one
		if err := v.BindEnv(key, envName(key), env); err != nil {
			return AppConfig{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return AppConfig{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// bindEnvs binds ROUNDTRIP_<KEY> for every mapstructure key of t, so
// AutomaticEnv overrides keys that have neither a default nor a file entry.
func bindEnvs(v *viper.Viper, prefix string, t reflect.Type) error {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			continue
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		if field.Type.Kind() == reflect.Struct {
			if err := bindEnvs(v, key, field.Type); err != nil {
				return err
			}
			continue
		}
		if err := v.BindEnv(key, envName(key)); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

func envName(key string) string {
	return strings.ToUpper(envPrefix + "_" + strings.ReplaceAll(key, ".", "_"))
}

// setDefaults holds the defaults of the command. Package defaults apply
// on top for everything left zero.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", logger.Info)
	v.SetDefault("logger.service_name", "kafka-roundtrip")

	v.SetDefault("metrics.address", "")
	v.SetDefault("metrics.service_name", "kafka-roundtrip")
	v.SetDefault("metrics.enable_default_collectors", false)

	v.SetDefault("tracer.service_name", "kafka-roundtrip")
	v.SetDefault("tracer.app_env", "local")
	v.SetDefault("tracer.enable_export", false)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.client_id", "kafka-roundtrip")
	v.SetDefault("kafka.required_acks", kafka.DefaultRequiredAcks)
	v.SetDefault("kafka.compression", kafka.DefaultCompression)
	v.SetDefault("kafka.tls.enabled", false)
	v.SetDefault("kafka.tls.ca_cert_path", "")
	v.SetDefault("kafka.sasl.enabled", false)
	v.SetDefault("kafka.sasl.mechanism", "")
	v.SetDefault("kafka.sasl.username", "")
	v.SetDefault("kafka.sasl.password", "")

	v.SetDefault("schema_registry.url", "http://localhost:8081")
	v.SetDefault("schema_registry.username", "")
	v.SetDefault("schema_registry.password", "")

	v.SetDefault("harness.topic", harness.DefaultTopic)
	v.SetDefault("harness.workers", harness.DefaultWorkers)
	v.SetDefault("harness.concurrency", 0)
	v.SetDefault("harness.messages_per_worker", harness.DefaultMessagesPerWorker)
	v.SetDefault("harness.batch_send", false)
	v.SetDefault("harness.consume_timeout", harness.DefaultConsumeTimeout)
	v.SetDefault("harness.keep_topic", false)
	v.SetDefault("harness.key_strategy", harness.KeyStrategyPrefix)
	v.SetDefault("harness.key_schema_type", string(sr.Avro))
	v.SetDefault("harness.value_schema_type", string(sr.Avro))
	v.SetDefault("harness.subject_name_strategy", string(sr.TopicNameStrategy))
	v.SetDefault("harness.seed", 0)
}
