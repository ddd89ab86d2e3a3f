package profiles

import "errors"

var (
	// ErrUnknownProfile is returned when an operation targets an id that
	// was never registered or has been removed.
	ErrUnknownProfile = errors.New("unknown profile")

	// ErrInvalidCount is returned for negative profile counts.
	ErrInvalidCount = errors.New("invalid count")
)
