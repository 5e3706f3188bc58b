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

// Package scheduler runs canaries periodically and serves their latest results.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/api"
	"github.com/caas-team/canary/pkg/canary"
	"github.com/caas-team/canary/pkg/checks"
	"github.com/caas-team/canary/pkg/config"
	"github.com/caas-team/canary/pkg/db"
	"github.com/caas-team/canary/pkg/metrics"
)

// ErrUnknownCanary is returned when a canary is requested by a name that is not scheduled
var ErrUnknownCanary = errors.New("unknown canary")

// Scheduler runs every canary on its interval and stores the latest results
type Scheduler struct {
	names    []string
	canaries map[string]*canary.Canary
	db       db.DB
	metrics  metrics.Metrics
	api      api.API
	cfg      *config.Config
	wg       sync.WaitGroup
}

// New creates a scheduler for the given canaries. Names must be unique.
func New(cfg *config.Config, cs []*canary.Canary, dbase db.DB, m metrics.Metrics) *Scheduler {
	s := &Scheduler{
		canaries: make(map[string]*canary.Canary, len(cs)),
		db:       dbase,
		metrics:  m,
		api:      api.New(cfg.Api),
		cfg:      cfg,
	}
	for _, c := range cs {
		s.names = append(s.names, c.Name())
		s.canaries[c.Name()] = c
	}
	return s
}

// Run starts the api and the loop of every canary.
// Blocks until the context is done or the api fails.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	cErr := make(chan error, 1)
	if s.cfg.HasApiConfig() {
		if err := s.api.RegisterRoutes(ctx, s.routes()...); err != nil {
			log.ErrorContext(ctx, "Error registering routes", "error", err)
			return err
		}
		go func() {
			cErr <- s.api.Run(ctx)
		}()
	}

	for _, name := range s.names {
		s.wg.Add(1)
		go func(c *canary.Canary) {
			defer s.wg.Done()
			s.loop(ctx, c)
		}(s.canaries[name])
	}

	select {
	case <-ctx.Done():
		return s.shutdown(ctx)
	case err := <-cErr:
		if err != nil {
			log.ErrorContext(ctx, "Api failed", "error", err)
		}
		cancel()
		return errors.Join(err, s.shutdown(ctx))
	}
}

func (s *Scheduler) shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.InfoContext(ctx, "Shutting down scheduler")
	s.wg.Wait()

	if !s.cfg.HasApiConfig() {
		return nil
	}
	err := s.api.Shutdown(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// loop runs the canary immediately and then on every interval.
// A canary without an interval runs once.
func (s *Scheduler) loop(ctx context.Context, c *canary.Canary) {
	log := logger.FromContext(ctx).With("canary", c.Name())
	interval := c.Definition().Interval

	timer := time.NewTimer(0)
	defer timer.Stop()
	log.InfoContext(ctx, "Starting canary", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			log.DebugContext(ctx, "Context done, stopping canary")
			return
		case <-timer.C:
			if _, err := s.RunCanary(ctx, c.Name()); err != nil {
				log.WarnContext(ctx, "Canary run failed", "error", err)
			}
			if interval <= 0 {
				log.InfoContext(ctx, "No interval configured, canary ran once")
				return
			}
			timer.Reset(interval)
		}
	}
}

// RunCanary runs the named canary once and stores its result.
// The returned error is the error of the run.
func (s *Scheduler) RunCanary(ctx context.Context, name string) (checks.Result, error) {
	c, ok := s.canaries[name]
	if !ok {
		return checks.Result{}, fmt.Errorf("%w: %q", ErrUnknownCanary, name)
	}

	res, err := c.RunResult(ctx)
	if res.Canary != "" {
		s.db.Save(res)
	}
	return res, err
}

// Names returns the names of all scheduled canaries
func (s *Scheduler) Names() []string {
	return append([]string(nil), s.names...)
}
