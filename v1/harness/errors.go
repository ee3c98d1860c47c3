package harness

import "errors"

var (
	// ErrInvalidConfig indicates a run parameter that cannot be used.
	ErrInvalidConfig = errors.New("invalid harness configuration")

	// ErrSetupFailed wraps any failure of topic creation or schema registration.
	// A run whose setup failed produces nothing.
	ErrSetupFailed = errors.New("round trip setup failed")

	// ErrInvalidTransition is returned when a lifecycle is asked to move to a
	// state that does not follow its current one.
	ErrInvalidTransition = errors.New("invalid harness state transition")
)

// IsSetupError reports whether err comes from the setup phase.
func IsSetupError(err error) bool {
	return errors.Is(err, ErrSetupFailed)
}

// IsConfigError reports whether err is an invalid run parameter.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
