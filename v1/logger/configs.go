package logger

const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Config defines the logger settings of a round-trip run.
type Config struct {
	// Level is one of debug, info, warning or error.
	// Any other value falls back to info.
	Level string `yaml:"level" mapstructure:"level"`

	// ServiceName is attached to every entry as the "service" field.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
}
