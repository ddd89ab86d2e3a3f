package dataset

import "github.com/tlibouban/deploycheck/pkg/logger"

// Option configures the Loader.
type Option func(*Loader)

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		l.log = log
	}
}
