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

// Package canary builds runnable canaries from their definitions.
package canary

import (
	"context"
	"fmt"
	"net/http"

	"github.com/caas-team/canary/internal/httpclient"
	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/checks"
	"github.com/caas-team/canary/pkg/checks/database"
	"github.com/caas-team/canary/pkg/checks/endpoint"
	"github.com/caas-team/canary/pkg/config"
)

// Deps are the shared dependencies of all canaries
type Deps struct {
	// Credentials resolves database secrets, may be nil if no canary uses a secret
	Credentials database.Credentials
	// Metrics records every run, may be nil
	Metrics *checks.Metrics
	// HTTPClient is used by endpoint canaries. If nil the client of the run context is used.
	HTTPClient *http.Client
}

// Canary is a validated canary definition bound to its target.
// Every run registers a fresh check set, nothing is shared between runs.
type Canary struct {
	def     config.Canary
	target  checks.Target
	metrics *checks.Metrics
	client  *http.Client
}

// New creates a canary from its definition
func New(def config.Canary, deps Deps) (*Canary, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	var target checks.Target
	switch {
	case def.Database != nil:
		cfg := *def.Database
		if cfg.ConnectTimeout == 0 {
			cfg.ConnectTimeout = def.Timeout
		}
		target = database.New(cfg, deps.Credentials)
	case def.Endpoint != nil:
		target = endpoint.New(*def.Endpoint)
	}

	return &Canary{
		def:     def,
		target:  target,
		metrics: deps.Metrics,
		client:  deps.HTTPClient,
	}, nil
}

// Name returns the name of the canary
func (c *Canary) Name() string {
	return c.def.Name
}

// Definition returns the definition the canary was created from
func (c *Canary) Definition() config.Canary {
	return c.def
}

// RunResult runs all assertions of the canary once and returns the full result
func (c *Canary) RunResult(ctx context.Context) (checks.Result, error) {
	if c.client != nil {
		ctx = httpclient.IntoContext(ctx, c.client)
	}
	r := checks.NewRunner(c.target, c.def.RunnerConfig(), checks.WithMetrics(c.metrics))
	if err := c.def.Register(&r.Registry); err != nil {
		return checks.Result{}, fmt.Errorf("failed to register assertions of canary %q: %w", c.def.Name, err)
	}
	return r.RunAll(ctx)
}

// Run runs all assertions of the canary once.
// It returns "OK" if every assertion passed and the aggregate error otherwise.
func (c *Canary) Run(ctx context.Context) (string, error) {
	res, err := c.RunResult(ctx)
	if err != nil {
		return "", err
	}
	return res.Message, nil
}

// LambdaHandler returns a handler for lambda.Start running the canary on every invocation
func LambdaHandler(c *Canary) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		ctx, cancel := logger.NewContextWithLogger(ctx)
		defer cancel()
		return c.Run(ctx)
	}
}
