package config

import (
	"time"
)

// Config is the startup configuration of canary.
// It is populated from flags and environment variables by the cmd package
// and injected into every component that needs it.
type Config struct {
	// File is the path of the canary definition file
	File      string          `yaml:"file" mapstructure:"file"`
	Api       ApiConfig       `yaml:"api" mapstructure:"api"`
	Defaults  DefaultsConfig  `yaml:"defaults" mapstructure:"defaults"`
	Overrides OverridesConfig `yaml:"overrides" mapstructure:"overrides"`
	// Region is the AWS region secrets are read from
	Region string `yaml:"region" mapstructure:"region"`
}

// ApiConfig is the configuration for the data API
type ApiConfig struct {
	ListeningAddress string `yaml:"address" mapstructure:"address"`
}

// DefaultsConfig holds the values used by canaries that do not set their own
type DefaultsConfig struct {
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Interval    time.Duration `yaml:"interval" mapstructure:"interval"`
	Concurrency int           `yaml:"concurrency" mapstructure:"concurrency"`
}

// OverridesConfig holds deployment specific values, usually set through the environment.
// They are filled into every canary that leaves them empty.
type OverridesConfig struct {
	SecretID string `yaml:"secretId" mapstructure:"secretId"`
	Hostname string `yaml:"hostname" mapstructure:"hostname"`
	APIKey   string `yaml:"apiKey" mapstructure:"apiKey"`
}

// HasApiConfig returns true if the api is configured
func (c *Config) HasApiConfig() bool {
	return c.Api.ListeningAddress != ""
}
