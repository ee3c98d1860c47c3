package kafka

import "errors"

var (
	// ErrAdmin is returned when the broker rejects or cannot be reached for
	// a topic administration request.
	ErrAdmin = errors.New("kafka: admin operation failed")

	// ErrSend is returned when a batch is not acknowledged after the bounded
	// delivery attempts.
	ErrSend = errors.New("kafka: send failed")

	// ErrConsume is returned when the consumer loses its broker connection
	// or group membership. Running out of time is not an error.
	ErrConsume = errors.New("kafka: consume failed")

	// ErrInvalidConfig is returned for unusable client configuration.
	ErrInvalidConfig = errors.New("kafka: invalid configuration")
)

// IsAdminError reports whether err is a topic administration failure.
func IsAdminError(err error) bool {
	return errors.Is(err, ErrAdmin)
}

// IsSendError reports whether err is a send failure.
func IsSendError(err error) bool {
	return errors.Is(err, ErrSend)
}

// IsConsumeError reports whether err is a consume failure.
func IsConsumeError(err error) bool {
	return errors.Is(err, ErrConsume)
}
