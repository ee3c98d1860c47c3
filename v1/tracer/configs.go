package tracer

// Config controls the tracer provider of a run.
type Config struct {
	// ServiceName is the service.name resource attribute.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`

	// AppEnv is the deployment environment resource attribute.
	AppEnv string `yaml:"app_env" mapstructure:"app_env"`

	// EnableExport ships spans through OTLP/HTTP. The exporter reads the
	// standard OTEL_EXPORTER_OTLP_* environment variables.
	EnableExport bool `yaml:"enable_export" mapstructure:"enable_export"`
}
