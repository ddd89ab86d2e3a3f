// Package clientindex builds the normalized client lookup structure and
// answers exact and approximate queries against it.
package clientindex

import "github.com/tlibouban/deploycheck/pkg/logger"

// Option applies a configuration option to the Index.
type Option func(*Index)

// WithLogger sets a custom logger for the index.
func WithLogger(log logger.Logger) Option {
	return func(x *Index) {
		if log != nil {
			x.log = log
		}
	}
}
