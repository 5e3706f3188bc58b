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

package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/viper"

	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/canary"
	"github.com/caas-team/canary/pkg/checks"
	"github.com/caas-team/canary/pkg/config"
	"github.com/caas-team/canary/pkg/secrets"
)

// environment is everything the commands need to run canaries
type environment struct {
	cfg      *config.Config
	canaries []*canary.Canary
	metrics  *checks.Metrics
}

// setup reads the startup config and builds all canaries of the definition file
func setup(ctx context.Context) (*environment, error) {
	log := logger.FromContext(ctx)

	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		log.ErrorContext(ctx, "Failed to read configuration", "error", err)
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}

	defs, err := config.LoadDefinitions(ctx, cfg)
	if err != nil {
		return nil, err
	}

	deps := canary.Deps{
		Metrics:    checks.NewMetrics(),
		HTTPClient: &http.Client{},
	}
	if usesSecrets(defs) {
		m, err := secrets.NewManagerForRegion(cfg.Region)
		if err != nil {
			log.ErrorContext(ctx, "Failed to create secrets manager", "region", cfg.Region, "error", err)
			return nil, err
		}
		deps.Credentials = m
	}

	env := &environment{cfg: cfg, metrics: deps.Metrics}
	for _, def := range defs.Canaries {
		c, err := canary.New(def, deps)
		if err != nil {
			return nil, err
		}
		env.canaries = append(env.canaries, c)
	}
	log.DebugContext(ctx, "Loaded canaries", "amount", len(env.canaries))
	return env, nil
}

// selectCanaries returns the canaries with the given names, all if names is empty
func (e *environment) selectCanaries(names []string) ([]*canary.Canary, error) {
	if len(names) == 0 {
		return e.canaries, nil
	}

	byName := make(map[string]*canary.Canary, len(e.canaries))
	for _, c := range e.canaries {
		byName[c.Name()] = c
	}

	selected := make([]*canary.Canary, 0, len(names))
	for _, n := range names {
		c, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("%w: %q", config.ErrCanaryNotFound, n)
		}
		selected = append(selected, c)
	}
	return selected, nil
}

func usesSecrets(defs *config.Definitions) bool {
	for _, c := range defs.Canaries {
		if c.Database != nil && c.Database.DSN == "" {
			return true
		}
	}
	return false
}
