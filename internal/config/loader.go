package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if DEPLOYCHECK_CONFIG is set
//  3. env (prefix DEPLOYCHECK_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("DEPLOYCHECK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: DEPLOYCHECK_ADDR, DEPLOYCHECK_MAX_SUGGESTIONS, ...
	// Map env keys like DEPLOYCHECK_MAX_SUGGESTIONS -> max_suggestions (flat
	// keys); underscores are preserved to match koanf tags on the struct.
	envProvider := env.Provider("DEPLOYCHECK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "deploycheck_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DefaultSpecialty) == "":
		return fmt.Errorf("%w: default_specialty must not be empty", ErrInvalidConfig)
	case c.MaxSuggestions <= 0:
		return fmt.Errorf("%w: max_suggestions must be positive", ErrInvalidConfig)
	case c.LookupDebounceMS < 0 || c.SuggestDebounceMS < 0:
		return fmt.Errorf("%w: debounce windows must not be negative", ErrInvalidConfig)
	}
	if len(c.ZoneGroups) == 0 {
		return fmt.Errorf("%w: zone_groups must not be empty", ErrInvalidConfig)
	}
	return nil
}
