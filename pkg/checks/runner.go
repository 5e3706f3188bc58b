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

package checks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/caas-team/canary/internal/logger"
)

// DefaultTimeout bounds a single assertion if no timeout is configured
const DefaultTimeout = 5 * time.Second

// Target is the live dependency assertions are run against,
// e.g. a database or an HTTP endpoint.
type Target interface {
	// Acquire opens the resource used by all assertions of one run.
	// An error is fatal for the whole run.
	Acquire(ctx context.Context) (Session, error)
}

// Session is an acquired resource. It is shared read-only
// by all assertions of a run and released exactly once.
type Session interface {
	// Observe returns the count or status code the assertion expects a value for.
	// Errors wrapping ErrResourceLost abort the run, all other errors
	// fail the assertion only.
	Observe(ctx context.Context, a Assertion) (int64, error)
	// Release frees the resource.
	Release(ctx context.Context) error
}

// RunnerConfig configures a Runner
type RunnerConfig struct {
	// Name identifies the check set in diagnostics and metrics
	Name string
	// Timeout bounds every single assertion
	Timeout time.Duration
	// Concurrency is the number of assertions evaluated at once.
	// Values below 2 evaluate the assertions sequentially.
	Concurrency int
}

func (c RunnerConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c RunnerConfig) concurrency() int {
	if c.Concurrency < 1 {
		return 1
	}
	return c.Concurrency
}

// RunnerOption configures optional Runner dependencies
type RunnerOption func(*Runner)

// WithMetrics records every run in m
func WithMetrics(m *Metrics) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
	}
}

// Runner owns a check set for a single invocation and
// executes it against its Target.
type Runner struct {
	Registry
	target   Target
	config   RunnerConfig
	metrics  *Metrics
	mu       sync.Mutex
	consumed bool
}

// NewRunner creates a Runner bound to target
func NewRunner(target Target, cfg RunnerConfig, opts ...RunnerOption) *Runner {
	r := &Runner{
		target: target,
		config: cfg,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunAll executes every registered assertion and returns the aggregate result.
// The returned error is nil if every assertion passed, a *ResourceError if the
// resource could not be acquired or was lost, and a *FailedError otherwise.
// The check set is consumed; running it again returns ErrConsumed.
func (r *Runner) RunAll(ctx context.Context) (Result, error) {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx).With("canary", r.config.Name)
	ctx = logger.IntoContext(ctx, log)

	r.mu.Lock()
	if r.consumed {
		r.mu.Unlock()
		return Result{}, ErrConsumed
	}
	r.consumed = true
	set := r.Assertions()
	r.assertions = nil
	r.mu.Unlock()

	res := r.run(ctx, set)
	r.metrics.Observe(res)

	if res.Passed {
		log.InfoContext(ctx, "Canary passed", "assertions", len(res.Outcomes))
	} else {
		log.WarnContext(ctx, "Canary failed", "error", res.Message)
	}
	return res, res.Err()
}

func (r *Runner) run(ctx context.Context, set []Assertion) Result {
	log := logger.FromContext(ctx)

	log.DebugContext(ctx, "Acquiring resource", "assertions", len(set))
	session, err := r.target.Acquire(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to acquire resource", "error", err)
		return resourceFailure(r.config.Name, err)
	}
	defer func() {
		if rErr := session.Release(ctx); rErr != nil {
			log.WarnContext(ctx, "Failed to release resource", "error", rErr)
		}
	}()

	outcomes, lost := r.execute(ctx, session, set)
	if lost != nil {
		log.ErrorContext(ctx, "Resource lost during run", "error", lost)
		return resourceFailure(r.config.Name, lost)
	}
	return Aggregate(r.config.Name, outcomes)
}

// execute evaluates the set with the configured concurrency.
// Outcomes are stored by registration index.
func (r *Runner) execute(ctx context.Context, s Session, set []Assertion) ([]Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make([]Outcome, len(set))
	sem := make(chan struct{}, r.config.concurrency())

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		lost error
	)

	for i, a := range set {
		if err := ctx.Err(); err != nil {
			outcomes[i] = notEvaluated(a, err)
			continue
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			outcomes[i] = notEvaluated(a, ctx.Err())
			continue
		}

		wg.Add(1)
		go func(i int, a Assertion) {
			defer wg.Done()
			defer func() { <-sem }()

			o, err := r.evaluate(ctx, s, a)
			outcomes[i] = o
			if err != nil {
				mu.Lock()
				if lost == nil {
					lost = err
					cancel()
				}
				mu.Unlock()
			}
		}(i, a)
	}

	wg.Wait()
	return outcomes, lost
}

// evaluate runs a single assertion with its own timeout. Only errors
// that invalidate the whole session are returned.
func (r *Runner) evaluate(ctx context.Context, s Session, a Assertion) (Outcome, error) {
	log := logger.FromContext(ctx).With("assertion", a.Name)
	timeout := r.config.timeout()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.DebugContext(ctx, "Evaluating assertion", "kind", a.Kind, "source", a.Source)
	start := time.Now()
	v, err := s.Observe(ctx, a)
	d := time.Since(start)

	if err != nil {
		if errors.Is(err, ErrResourceLost) {
			return failed(a, nil, err.Error(), d), err
		}
		msg := fmt.Sprintf("%s failed: %v", action(a), err)
		if errors.Is(err, context.DeadlineExceeded) {
			msg = fmt.Sprintf("%s timed out after %v", action(a), timeout)
		}
		log.WarnContext(ctx, "Assertion could not be evaluated", "error", err)
		return failed(a, nil, msg, d), nil
	}

	if !a.Expect.Matches(v) {
		msg := diagnostic(a, v)
		log.WarnContext(ctx, "Assertion failed", "diagnostic", msg)
		return failed(a, &v, msg, d), nil
	}

	log.DebugContext(ctx, "Assertion passed", "actual", v)
	return passed(a, v, d), nil
}

func notEvaluated(a Assertion, err error) Outcome {
	return failed(a, nil, fmt.Sprintf("not evaluated: %v", err), 0)
}

func action(a Assertion) string {
	if a.Kind == KindStatus {
		return fmt.Sprintf("GET %s", a.Source)
	}
	return "query"
}

func diagnostic(a Assertion, actual int64) string {
	if a.Kind == KindStatus {
		lower, _, _, _ := a.Expect.Bounds()
		suffix := ""
		if a.WithoutAPIKey {
			suffix = " without api key"
		}
		return fmt.Sprintf("GET %s%s returned status %d, expected %d", a.Source, suffix, actual, lower)
	}
	return fmt.Sprintf("count was %d, expected %s", actual, a.Expect)
}
