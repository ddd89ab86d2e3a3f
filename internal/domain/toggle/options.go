// Package toggle manages the tri-state feature switches, their transition
// rules, aggregate counters, and the display filter predicate.
package toggle

import "github.com/tlibouban/deploycheck/pkg/logger"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithNotifier sets the external totals collaborator invoked after every
// state change.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		e.notify = n
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}
