package config

import (
	"fmt"
	"net/http"
	"time"

	"github.com/caas-team/canary/pkg/checks"
	"github.com/caas-team/canary/pkg/checks/database"
	"github.com/caas-team/canary/pkg/checks/endpoint"
)

// Expectation names usable in the definition file
const (
	ExpectZero      = "zero"
	ExpectOneOrMore = "oneOrMore"
	ExpectOne       = "one"
	ExpectExactly   = "exactly"
	ExpectAtLeast   = "atLeast"
	ExpectAtMost    = "atMost"
	ExpectBetween   = "between"
)

// Definitions is the content of a canary definition file
type Definitions struct {
	Canaries []Canary `json:"canaries" yaml:"canaries" mapstructure:"canaries"`
}

// Canary defines a set of assertions against one database or one endpoint
type Canary struct {
	Name        string        `json:"name" yaml:"name" mapstructure:"name"`
	Interval    time.Duration `json:"interval,omitempty" yaml:"interval,omitempty" mapstructure:"interval"`
	Timeout     time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" mapstructure:"timeout"`
	Concurrency int           `json:"concurrency,omitempty" yaml:"concurrency,omitempty" mapstructure:"concurrency"`

	Database *database.Config `json:"database,omitempty" yaml:"database,omitempty" mapstructure:"database"`
	Endpoint *endpoint.Config `json:"endpoint,omitempty" yaml:"endpoint,omitempty" mapstructure:"endpoint"`

	Assertions []AssertionConfig `json:"assertions" yaml:"assertions" mapstructure:"assertions"`
}

// AssertionConfig is a single assertion of the definition file.
// Query assertions need Query and Expect, path assertions need Path.
type AssertionConfig struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Query string `json:"query,omitempty" yaml:"query,omitempty" mapstructure:"query"`
	Path  string `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`

	Expect string `json:"expect,omitempty" yaml:"expect,omitempty" mapstructure:"expect"`
	Count  *int64 `json:"count,omitempty" yaml:"count,omitempty" mapstructure:"count"`
	Min    *int64 `json:"min,omitempty" yaml:"min,omitempty" mapstructure:"min"`
	Max    *int64 `json:"max,omitempty" yaml:"max,omitempty" mapstructure:"max"`

	Status        int  `json:"status,omitempty" yaml:"status,omitempty" mapstructure:"status"`
	WithoutAPIKey bool `json:"withoutApiKey,omitempty" yaml:"withoutApiKey,omitempty" mapstructure:"withoutApiKey"`
}

// Register adds the assertion to r
func (a *AssertionConfig) Register(r *checks.Registry) error {
	if a.Path != "" {
		var opts []checks.HTTPOption
		if a.WithoutAPIKey {
			opts = append(opts, checks.WithoutAPIKey())
		}
		return r.RegisterHTTP(a.name(), a.Path, a.status(), opts...)
	}

	exp, err := a.expectation()
	if err != nil {
		return checks.ErrInvalidAssertion{Name: a.Name, Field: "expect", Reason: err.Error()}
	}
	return r.RegisterCount(a.Name, a.Query, exp)
}

func (a *AssertionConfig) name() string {
	switch {
	case a.Name != "":
		return a.Name
	case a.WithoutAPIKey:
		return a.Path + " without api key"
	default:
		return a.Path
	}
}

func (a *AssertionConfig) status() int {
	switch {
	case a.Status != 0:
		return a.Status
	case a.WithoutAPIKey:
		return http.StatusForbidden
	default:
		return http.StatusOK
	}
}

func (a *AssertionConfig) expectation() (checks.Expectation, error) {
	switch a.Expect {
	case ExpectZero:
		return checks.Zero(), nil
	case ExpectOneOrMore:
		return checks.OneOrMore(), nil
	case ExpectOne:
		return checks.Exactly(1), nil
	case ExpectExactly:
		if a.Count == nil {
			return checks.Expectation{}, fmt.Errorf("%s needs count", a.Expect)
		}
		return checks.Exactly(*a.Count), nil
	case ExpectAtLeast:
		if a.Min == nil {
			return checks.Expectation{}, fmt.Errorf("%s needs min", a.Expect)
		}
		return checks.AtLeast(*a.Min), nil
	case ExpectAtMost:
		if a.Max == nil {
			return checks.Expectation{}, fmt.Errorf("%s needs max", a.Expect)
		}
		return checks.AtMost(*a.Max), nil
	case ExpectBetween:
		if a.Min == nil || a.Max == nil {
			return checks.Expectation{}, fmt.Errorf("%s needs min and max", a.Expect)
		}
		return checks.Between(*a.Min, *a.Max), nil
	case "":
		return checks.Expectation{}, fmt.Errorf("no max or min given")
	default:
		return checks.Expectation{}, fmt.Errorf("unknown expectation %q", a.Expect)
	}
}

// Register adds all assertions of the canary to r
func (c *Canary) Register(r *checks.Registry) error {
	for _, a := range c.Assertions {
		if err := a.Register(r); err != nil {
			return err
		}
	}
	return nil
}

// RunnerConfig returns the configuration of the runner executing the canary
func (c *Canary) RunnerConfig() checks.RunnerConfig {
	return checks.RunnerConfig{
		Name:        c.Name,
		Timeout:     c.Timeout,
		Concurrency: c.Concurrency,
	}
}

// Lookup returns the canary with the given name
func (d *Definitions) Lookup(name string) (Canary, error) {
	for _, c := range d.Canaries {
		if c.Name == name {
			return c, nil
		}
	}
	return Canary{}, fmt.Errorf("%w: %q", ErrCanaryNotFound, name)
}

// ApplyDefaults fills unset intervals, timeouts and concurrency
func (d *Definitions) ApplyDefaults(defaults DefaultsConfig) {
	for i := range d.Canaries {
		c := &d.Canaries[i]
		if c.Interval == 0 {
			c.Interval = defaults.Interval
		}
		if c.Timeout == 0 {
			c.Timeout = defaults.Timeout
		}
		if c.Concurrency == 0 {
			c.Concurrency = defaults.Concurrency
		}
	}
}

// ApplyOverrides fills the secret id, hostname and api key into canaries leaving them empty
func (d *Definitions) ApplyOverrides(o OverridesConfig) {
	for i := range d.Canaries {
		c := &d.Canaries[i]
		if db := c.Database; db != nil && db.DSN == "" && db.SecretID == "" {
			db.SecretID = o.SecretID
		}
		if ep := c.Endpoint; ep != nil {
			if ep.Hostname == "" {
				ep.Hostname = o.Hostname
			}
			if ep.APIKey == "" {
				ep.APIKey = o.APIKey
			}
		}
	}
}
