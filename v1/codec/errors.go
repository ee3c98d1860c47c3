package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrEncode is returned when a payload cannot be serialized under the
	// given schema handle.
	ErrEncode = errors.New("codec: encode failed")

	// ErrDecode is returned for truncated or corrupt bytes and for bytes
	// framed with a schema id other than the expected one.
	ErrDecode = errors.New("codec: decode failed")
)

// FieldError names the payload field that did not match the schema.
// Field is a dotted path; it is empty when the mismatch is the whole value.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// IsEncodeError reports whether err is an encode failure.
func IsEncodeError(err error) bool {
	return errors.Is(err, ErrEncode)
}

// IsDecodeError reports whether err is a decode failure.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrDecode)
}

// MismatchedField returns the field named by an encode failure, if any.
func MismatchedField(err error) (string, bool) {
	var fe *FieldError
	if errors.As(err, &fe) && fe.Field != "" {
		return fe.Field, true
	}
	return "", false
}

func encodeErr(field, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %w", ErrEncode, &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)})
}

func decodeErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
}
