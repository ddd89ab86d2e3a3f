package toggle

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUnknownToggle = errors.New("unknown toggle")
	ErrUnknownKind   = errors.New("unknown transition kind")
	ErrUnknownState  = errors.New("unknown toggle state")
)
