package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/checks"
)

// Validate validates the startup config
func (c *Config) Validate(ctx context.Context) error {
	log := logger.FromContext(ctx)

	var errs []error
	if c.File == "" {
		errs = append(errs, ErrMissingFile)
	}
	if c.Defaults.Timeout < 0 {
		errs = append(errs, fmt.Errorf("default timeout must not be negative: %v", c.Defaults.Timeout))
	}
	if c.Defaults.Interval < 0 {
		errs = append(errs, fmt.Errorf("default interval must not be negative: %v", c.Defaults.Interval))
	}
	if c.Defaults.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("default concurrency must not be negative: %d", c.Defaults.Concurrency))
	}

	if err := errors.Join(errs...); err != nil {
		log.ErrorContext(ctx, "Startup configuration is invalid", "error", err)
		return err
	}
	return nil
}

// Validate validates all canary definitions and returns every error found
func (d *Definitions) Validate(ctx context.Context) error {
	log := logger.FromContext(ctx)
	if len(d.Canaries) == 0 {
		return ErrNoCanaries
	}

	var errs []error
	seen := map[string]struct{}{}
	for _, c := range d.Canaries {
		if _, ok := seen[c.Name]; ok {
			errs = append(errs, ErrInvalidCanary{Canary: c.Name, Field: "name", Reason: "must be unique"})
		}
		seen[c.Name] = struct{}{}
		errs = append(errs, c.Validate())
	}

	if err := errors.Join(errs...); err != nil {
		log.ErrorContext(ctx, "Canary definitions are invalid", "error", err)
		return err
	}
	return nil
}

// Validate checks the canary and all of its assertions
func (c *Canary) Validate() error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, ErrInvalidCanary{Canary: c.Name, Field: "name", Reason: "must not be empty"})
	}
	if c.Interval < 0 {
		errs = append(errs, ErrInvalidCanary{Canary: c.Name, Field: "interval", Reason: "must not be negative"})
	}
	if c.Timeout < 0 {
		errs = append(errs, ErrInvalidCanary{Canary: c.Name, Field: "timeout", Reason: "must not be negative"})
	}
	if c.Concurrency < 0 {
		errs = append(errs, ErrInvalidCanary{Canary: c.Name, Field: "concurrency", Reason: "must not be negative"})
	}

	var kind checks.Kind
	switch {
	case c.Database != nil && c.Endpoint != nil:
		errs = append(errs, ErrInvalidCanary{Canary: c.Name, Field: "database", Reason: "cannot be combined with endpoint"})
	case c.Database != nil:
		kind = checks.KindCount
		errs = append(errs, c.Database.Validate())
	case c.Endpoint != nil:
		kind = checks.KindStatus
		errs = append(errs, c.Endpoint.Validate())
	default:
		errs = append(errs, ErrInvalidCanary{Canary: c.Name, Field: "database", Reason: "either database or endpoint must be set"})
	}

	var r checks.Registry
	for i, a := range c.Assertions {
		if a.Query != "" && a.Path != "" {
			errs = append(errs, ErrInvalidCanary{Canary: c.Name, Field: fmt.Sprintf("assertions[%d]", i), Reason: "cannot have both query and path"})
			continue
		}
		if kind == checks.KindCount && a.Path != "" {
			errs = append(errs, ErrInvalidCanary{Canary: c.Name, Field: fmt.Sprintf("assertions[%d]", i), Reason: "database canaries only support query assertions"})
			continue
		}
		if kind == checks.KindStatus && a.Path == "" {
			errs = append(errs, ErrInvalidCanary{Canary: c.Name, Field: fmt.Sprintf("assertions[%d]", i), Reason: "endpoint canaries only support path assertions"})
			continue
		}
		errs = append(errs, a.Register(&r))
	}

	return errors.Join(errs...)
}
