package schema_registry

import "time"

const (
	DefaultTimeout              = 10 * time.Second
	DefaultMaxRetries           = 3
	DefaultRetryInitialInterval = 200 * time.Millisecond
)

// Config holds configuration for the schema registry client.
type Config struct {
	// URL is the schema registry endpoint (e.g., "http://localhost:8081").
	URL string `yaml:"url" mapstructure:"url"`

	// Username for basic auth (optional).
	Username string `yaml:"username" mapstructure:"username"`

	// Password for basic auth (optional).
	Password string `yaml:"password" mapstructure:"password"`

	// Timeout bounds every HTTP request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries bounds the retries of a request that failed with a
	// transport error or a 5xx response. 4xx responses are never retried.
	MaxRetries uint64 `yaml:"max_retries" mapstructure:"max_retries"`

	// RetryInitialInterval is the first backoff interval; it grows exponentially.
	RetryInitialInterval time.Duration `yaml:"retry_initial_interval" mapstructure:"retry_initial_interval"`
}
