// canary
// (C) 2024, Deutsche Telekom IT GmbH
//
// Deutsche Telekom IT GmbH and all other contributors /
// copyright owners license this file to you under the Apache
// License, Version 2.0 (the "License"); you may not use this
// file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package endpoint

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caas-team/canary/pkg/checks"
)

const (
	// DefaultAPIKeyHeader is the header the API key is sent in
	DefaultAPIKeyHeader = "x-api-key"
	// DefaultRequestTimeout bounds a single request if no timeout is configured
	DefaultRequestTimeout = 10 * time.Second

	targetName = "endpoint"
)

// Config defines the HTTP endpoint of a canary
type Config struct {
	// Hostname of the endpoint, https:// is assumed if no scheme is given
	Hostname string `json:"hostname" yaml:"hostname" mapstructure:"hostname"`
	// APIKey is sent with every request that does not opt out
	APIKey string `json:"apiKey,omitempty" yaml:"apiKey,omitempty" mapstructure:"apiKey"`
	// APIKeyHeader overrides the header name of the API key
	APIKeyHeader string `json:"apiKeyHeader,omitempty" yaml:"apiKeyHeader,omitempty" mapstructure:"apiKeyHeader"`
	// RequestTimeout bounds a single request
	RequestTimeout time.Duration `json:"requestTimeout,omitempty" yaml:"requestTimeout,omitempty" mapstructure:"requestTimeout"`
	// RateLimit is the maximum number of requests per second, 0 means unlimited
	RateLimit float64 `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty" mapstructure:"rateLimit"`
}

func (c *Config) baseURL() (*url.URL, error) {
	host := strings.TrimRight(c.Hostname, "/")
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("no host in %q", c.Hostname)
	}
	return u, nil
}

func (c *Config) apiKeyHeader() string {
	if c.APIKeyHeader == "" {
		return DefaultAPIKeyHeader
	}
	return c.APIKeyHeader
}

func (c *Config) requestTimeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return DefaultRequestTimeout
	}
	return c.RequestTimeout
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Hostname) == "" {
		return checks.ErrInvalidConfig{Target: targetName, Field: "hostname", Reason: "must not be empty"}
	}
	if _, err := c.baseURL(); err != nil {
		return checks.ErrInvalidConfig{Target: targetName, Field: "hostname", Reason: err.Error()}
	}
	if c.RequestTimeout < 0 {
		return checks.ErrInvalidConfig{Target: targetName, Field: "requestTimeout", Reason: "must not be negative"}
	}
	if c.RateLimit < 0 {
		return checks.ErrInvalidConfig{Target: targetName, Field: "rateLimit", Reason: "must not be negative"}
	}
	return nil
}
