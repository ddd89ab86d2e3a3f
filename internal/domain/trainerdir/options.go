// Package trainerdir indexes the trainer roster by zone and specialty.
package trainerdir

import (
	"strings"

	"github.com/tlibouban/deploycheck/pkg/logger"
)

// Option applies a configuration option to the Directory.
type Option func(*Directory)

// WithDefaultSpecialty overrides the fallback specialty for product codes
// outside the canonical set.
func WithDefaultSpecialty(specialty string) Option {
	return func(d *Directory) {
		if specialty != "" {
			d.defaultSpecialty = strings.ToUpper(strings.TrimSpace(specialty))
		}
	}
}

// WithLogger sets a custom logger for the directory.
func WithLogger(log logger.Logger) Option {
	return func(d *Directory) {
		if log != nil {
			d.log = log
		}
	}
}
