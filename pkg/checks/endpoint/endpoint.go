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

// Package endpoint provides a checks.Target evaluating HTTP status assertions.
package endpoint

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/caas-team/canary/internal/httpclient"
	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/checks"
)

var (
	_ checks.Target  = (*Target)(nil)
	_ checks.Session = (*session)(nil)
)

// Target sends GET requests to a single host
type Target struct {
	config Config
}

// New creates an endpoint target
func New(cfg Config) *Target {
	return &Target{config: cfg}
}

// Acquire resolves the base URL and prepares the http client of a run.
// The client is taken from the context if present.
func (t *Target) Acquire(ctx context.Context) (checks.Session, error) {
	base, err := t.config.baseURL()
	if err != nil {
		return nil, fmt.Errorf("invalid hostname %q: %w", t.config.Hostname, err)
	}

	client := *httpclient.FromContext(ctx)
	client.Timeout = t.config.requestTimeout()

	limit := rate.Inf
	if t.config.RateLimit > 0 {
		limit = rate.Limit(t.config.RateLimit)
	}

	logger.FromContext(ctx).DebugContext(ctx, "Prepared endpoint session", "url", base.String())
	return &session{
		base:    base,
		client:  &client,
		limiter: rate.NewLimiter(limit, 1),
		header:  t.config.apiKeyHeader(),
		apiKey:  t.config.APIKey,
	}, nil
}

type session struct {
	base    *url.URL
	client  *http.Client
	limiter *rate.Limiter
	header  string
	apiKey  string
}

// Observe sends a GET request to the path of a status assertion and returns the status code
func (s *session) Observe(ctx context.Context, a checks.Assertion) (int64, error) {
	if a.Kind != checks.KindStatus {
		return 0, checks.ErrUnsupportedKind{Kind: a.Kind, Target: targetName}
	}
	log := logger.FromContext(ctx).With("path", a.Source)

	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url(a.Source), http.NoBody)
	if err != nil {
		log.ErrorContext(ctx, "Error while creating request", "error", err)
		return 0, err
	}
	if s.apiKey != "" && !a.WithoutAPIKey {
		req.Header.Set(s.header, s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.WarnContext(ctx, "Error while requesting endpoint", "error", err)
		return 0, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	log.DebugContext(ctx, "Endpoint responded", "status", resp.StatusCode)
	return int64(resp.StatusCode), nil
}

func (s *session) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(s.base.String(), "/") + path
}

// Release closes idle connections of the session
func (s *session) Release(_ context.Context) error {
	s.client.CloseIdleConnections()
	return nil
}
