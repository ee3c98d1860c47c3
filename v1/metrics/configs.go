package metrics

// Config defines how the metrics endpoint is exposed.
type Config struct {
	// Address is the listen address of the /metrics server, e.g. ":9090".
	Address string `yaml:"address" mapstructure:"address"`

	// ServiceName becomes the constant "service" label on every metric.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`

	// EnableDefaultCollectors registers the Go, process and build info collectors.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" mapstructure:"enable_default_collectors"`

	// ProduceBuckets overrides the histogram buckets (seconds) of the
	// produce duration metric. Defaults to DefaultProduceBuckets.
	ProduceBuckets []float64 `yaml:"produce_buckets" mapstructure:"produce_buckets"`
}

// DefaultProduceBuckets spans a single leader-acked send up to a slow batch.
var DefaultProduceBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
