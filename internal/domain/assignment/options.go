// Package assignment ranks candidate trainers for a matched client by
// specialty, geographic proximity, and training-mode policy.
package assignment

import "github.com/tlibouban/deploycheck/pkg/logger"

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithZoneGroups overrides the adjacency groups used for proximity scoring.
func WithZoneGroups(groups map[string][]string) Option {
	return func(r *Resolver) {
		if len(groups) > 0 {
			r.zoneGroups = groups
		}
	}
}

// WithLogger sets a custom logger for the resolver.
func WithLogger(log logger.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}
