package config

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/caas-team/canary/internal/helper"
	"github.com/caas-team/canary/internal/logger"
)

// LoadDefinitions reads the canary definition file of the config,
// applies defaults and overrides and validates the result.
func LoadDefinitions(ctx context.Context, cfg *Config) (*Definitions, error) {
	log := logger.FromContext(ctx).With("file", cfg.File)
	if cfg.File == "" {
		return nil, ErrMissingFile
	}

	log.InfoContext(ctx, "Reading canary definitions from file")
	b, err := os.ReadFile(cfg.File)
	if err != nil {
		log.ErrorContext(ctx, "Failed to read canary definition file", "error", err)
		return nil, fmt.Errorf("failed to read canary definition file: %w", err)
	}

	defs, err := ParseDefinitions(b)
	if err != nil {
		log.ErrorContext(ctx, "Failed to parse canary definition file", "error", err)
		return nil, err
	}

	defs.ApplyDefaults(cfg.Defaults)
	defs.ApplyOverrides(cfg.Overrides)
	if err := defs.Validate(ctx); err != nil {
		return nil, err
	}
	return defs, nil
}

// ParseDefinitions parses a YAML canary definition document.
// Durations may be given as strings like "1h".
func ParseDefinitions(b []byte) (*Definitions, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse canary definitions: %w", err)
	}

	defs, err := helper.Decode[Definitions](raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode canary definitions: %w", err)
	}
	return &defs, nil
}
