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

package database

import (
	"slices"
	"time"

	"github.com/caas-team/canary/pkg/checks"
)

const (
	// DriverPostgres is the database/sql driver name of pgx
	DriverPostgres = "pgx"
	// DriverSQLite is the database/sql driver name of modernc sqlite
	DriverSQLite = "sqlite"

	targetName = "database"
)

var supportedDrivers = []string{DriverPostgres, DriverSQLite}

// Config defines how to reach the database of a canary
type Config struct {
	// Driver is the database/sql driver, defaults to pgx
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty" mapstructure:"driver"`
	// DSN is used as is if set
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty" mapstructure:"dsn"`
	// SecretID references the database secret the DSN is built from if no DSN is set
	SecretID string `json:"secretId,omitempty" yaml:"secretId,omitempty" mapstructure:"secretId"`
	// ReadOnly connects to the reader endpoint
	ReadOnly bool `json:"readOnly" yaml:"readOnly" mapstructure:"readOnly"`
	// Database is the name of the database, used with SecretID
	Database string `json:"database,omitempty" yaml:"database,omitempty" mapstructure:"database"`
	// Application is reported as application_name, used with SecretID
	Application string `json:"application,omitempty" yaml:"application,omitempty" mapstructure:"application"`
	// MaxOpenConns limits the connection pool, defaults to 1
	MaxOpenConns int `json:"maxOpenConns,omitempty" yaml:"maxOpenConns,omitempty" mapstructure:"maxOpenConns"`
	// ConnectTimeout bounds opening and pinging the database
	ConnectTimeout time.Duration `json:"connectTimeout,omitempty" yaml:"connectTimeout,omitempty" mapstructure:"connectTimeout"`
}

func (c *Config) driver() string {
	if c.Driver == "" {
		return DriverPostgres
	}
	return c.Driver
}

func (c *Config) maxOpenConns() int {
	if c.MaxOpenConns < 1 {
		return 1
	}
	return c.MaxOpenConns
}

func (c *Config) connectTimeout() time.Duration {
	if c.ConnectTimeout <= 0 {
		return checks.DefaultTimeout
	}
	return c.ConnectTimeout
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !slices.Contains(supportedDrivers, c.driver()) {
		return checks.ErrInvalidConfig{Target: targetName, Field: "driver", Reason: "unsupported driver " + c.Driver}
	}
	if c.DSN == "" && c.SecretID == "" {
		return checks.ErrInvalidConfig{Target: targetName, Field: "dsn", Reason: "either dsn or secretId must be set"}
	}
	if c.MaxOpenConns < 0 {
		return checks.ErrInvalidConfig{Target: targetName, Field: "maxOpenConns", Reason: "must not be negative"}
	}
	if c.ConnectTimeout < 0 {
		return checks.ErrInvalidConfig{Target: targetName, Field: "connectTimeout", Reason: "must not be negative"}
	}
	return nil
}
