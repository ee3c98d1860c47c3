package schema_registry

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrConfig is returned when a schema definition is missing, cannot be
	// parsed, or is rejected by the registry as invalid.
	ErrConfig = errors.New("schema registry: invalid schema configuration")

	// ErrSchemaConflict is returned when a subject already holds a different,
	// incompatible schema.
	ErrSchemaConflict = errors.New("schema registry: schema conflict")

	// ErrNotFound is returned when a subject or schema id is unknown.
	ErrNotFound = errors.New("schema registry: not found")

	// ErrWireFormat is returned when bytes do not start with a valid
	// Confluent wire-format header.
	ErrWireFormat = errors.New("schema registry: malformed wire format")
)

// APIError is the error body the registry returns with non-2xx responses.
type APIError struct {
	StatusCode int    `json:"-"`
	ErrorCode  int    `json:"error_code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("schema registry returned status %d (code %d): %s", e.StatusCode, e.ErrorCode, e.Message)
}

// Unwrap maps the HTTP status to the package sentinels so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrSchemaConflict
	case http.StatusUnprocessableEntity:
		return ErrConfig
	}
	return nil
}

func (e *APIError) retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// IsConfigError reports whether err is a schema configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsSchemaConflictError reports whether err is a schema conflict.
func IsSchemaConflictError(err error) bool {
	return errors.Is(err, ErrSchemaConflict)
}

// IsNotFoundError reports whether err means the subject or id does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
