package config

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFile is returned when no canary definition file is configured
	ErrMissingFile = errors.New("no canary definition file configured")
	// ErrNoCanaries is returned when the definition file does not define any canary
	ErrNoCanaries = errors.New("no canaries defined")
	// ErrCanaryNotFound is returned when a canary is looked up by an unknown name
	ErrCanaryNotFound = errors.New("canary not found")
)

// ErrInvalidCanary is returned when a canary definition is invalid
type ErrInvalidCanary struct {
	Canary string
	Field  string
	Reason string
}

func (e ErrInvalidCanary) Error() string {
	return fmt.Sprintf("invalid canary %q: field %q %s", e.Canary, e.Field, e.Reason)
}
