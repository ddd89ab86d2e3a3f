// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ClientDatasetPath points at the tab-separated client dataset.
	ClientDatasetPath string `koanf:"client_dataset_path"`

	// TrainerRosterPath points at the JSON trainer roster grouped by zone.
	TrainerRosterPath string `koanf:"trainer_roster_path"`

	// DefaultSpecialty is assigned to product codes outside the canonical set.
	DefaultSpecialty string `koanf:"default_specialty"`

	// LookupDebounceMS is the quiescence window for free-text number lookups.
	LookupDebounceMS int `koanf:"lookup_debounce_ms"`

	// SuggestDebounceMS is the shorter window used for name suggestions.
	SuggestDebounceMS int `koanf:"suggest_debounce_ms"`

	// MaxSuggestions caps the number of name suggestions returned.
	MaxSuggestions int `koanf:"max_suggestions"`

	// ZoneGroups maps each zone to the zones considered near it.
	ZoneGroups map[string][]string `koanf:"zone_groups"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		ClientDatasetPath: "data/clients.tsv",
		TrainerRosterPath: "data/trainers.json",
		DefaultSpecialty:  "NEO",
		LookupDebounceMS:  500,
		SuggestDebounceMS: 300,
		MaxSuggestions:    8,
		ZoneGroups: map[string][]string{
			"Nord":          {"Nord"},
			"Île-de-France": {"Île-de-France"},
			"Est":           {"Est"},
			"Centre-Ouest":  {"Centre-Ouest", "Ouest"},
			"Ouest":         {"Ouest", "Centre-Ouest"},
			"Sud-Est":       {"Sud-Est"},
			"Sud-Ouest":     {"Sud-Ouest"},
		},
	}
}
