package profiles

import "github.com/tlibouban/deploycheck/pkg/logger"

// Option configures the Registry.
type Option func(*Registry)

// WithNotifier sets the totals collaborator invoked after every mutation.
func WithNotifier(n Notifier) Option {
	return func(r *Registry) {
		r.notify = n
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}
