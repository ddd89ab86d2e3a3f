package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest     = errors.New("bad request")
	ErrMissingQuery   = errors.New("missing query parameter q")
	ErrClientNotFound = errors.New("client not found")
)
