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

// Package secrets resolves database credentials stored in AWS Secrets Manager.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"

	"github.com/caas-team/canary/internal/helper"
	"github.com/caas-team/canary/internal/logger"
)

// ErrMissingSecretID is returned when no secret id is configured
var ErrMissingSecretID = errors.New("missing or empty secret id")

// DefaultRetry is used for fetching secrets if no retry is configured
var DefaultRetry = helper.RetryConfig{
	Count: 2,
	Delay: 500 * time.Millisecond,
}

// ErrMissingKeys is returned when a secret lacks expected keys
type ErrMissingKeys struct {
	SecretID string
	Keys     []string
}

func (e ErrMissingKeys) Error() string {
	return fmt.Sprintf("secret %q didn't contain the key(s) %v", e.SecretID, e.Keys)
}

// DBSecret holds the credentials of a database
type DBSecret struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	RoHost   string `json:"ro_host"`
}

var dbSecretKeys = []string{"username", "password", "host", "ro_host"}

// DSNOptions select how a DSN is built from a DBSecret
type DSNOptions struct {
	ReadOnly    bool
	Database    string
	Application string
}

// DSN builds a PostgreSQL connection URL. Read-only connections use the
// reader endpoint and a read-only default transaction mode.
func (s DBSecret) DSN(opts DSNOptions) string {
	host := s.Host
	if opts.ReadOnly && s.RoHost != "" {
		host = s.RoHost
	}

	q := url.Values{}
	if opts.Application != "" {
		q.Set("application_name", opts.Application)
	}
	if opts.ReadOnly {
		q.Set("default_transaction_read_only", "on")
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(s.Username, s.Password),
		Host:     host,
		Path:     "/" + opts.Database,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Manager fetches and caches database secrets.
// Cached secrets live as long as the process, e.g. a Lambda container.
type Manager struct {
	client secretsmanageriface.SecretsManagerAPI
	retry  helper.RetryConfig
	mu     sync.Mutex
	cache  map[string]DBSecret
}

// NewManager creates a Manager using the given Secrets Manager client
func NewManager(client secretsmanageriface.SecretsManagerAPI, retry helper.RetryConfig) *Manager {
	return &Manager{
		client: client,
		retry:  retry,
		cache:  map[string]DBSecret{},
	}
}

// NewManagerForRegion creates a Manager with a client of the default credential chain
func NewManagerForRegion(region string) (*Manager, error) {
	cfg := aws.NewConfig()
	if region != "" {
		cfg = cfg.WithRegion(region)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}
	return NewManager(secretsmanager.New(sess), DefaultRetry), nil
}

// DBSecret returns the cached secret or fetches it
func (m *Manager) DBSecret(ctx context.Context, secretID string) (DBSecret, error) {
	m.mu.Lock()
	s, ok := m.cache[secretID]
	m.mu.Unlock()
	if ok {
		return s, nil
	}
	return m.fetch(ctx, secretID)
}

// Refresh drops the cached secret and fetches it again, e.g. after a rotation
func (m *Manager) Refresh(ctx context.Context, secretID string) error {
	m.mu.Lock()
	delete(m.cache, secretID)
	m.mu.Unlock()
	_, err := m.fetch(ctx, secretID)
	return err
}

// DSN returns the connection URL for the database described by the secret
func (m *Manager) DSN(ctx context.Context, secretID string, opts DSNOptions) (string, error) {
	s, err := m.DBSecret(ctx, secretID)
	if err != nil {
		return "", err
	}
	return s.DSN(opts), nil
}

func (m *Manager) fetch(ctx context.Context, secretID string) (DBSecret, error) {
	log := logger.FromContext(ctx).With("secretId", secretID)
	if secretID == "" {
		log.ErrorContext(ctx, "Missing secret id")
		return DBSecret{}, ErrMissingSecretID
	}

	var out *secretsmanager.GetSecretValueOutput
	getSecret := helper.Retry(func(ctx context.Context) (err error) {
		out, err = m.client.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(secretID),
		})
		return err
	}, m.retry)
	if err := getSecret(ctx); err != nil {
		log.ErrorContext(ctx, "Failed to get secret value", "error", err)
		return DBSecret{}, fmt.Errorf("failed to get secret %q: %w", secretID, err)
	}
	if out.SecretString == nil {
		return DBSecret{}, fmt.Errorf("secret %q has no string value", secretID)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(*out.SecretString), &raw); err != nil {
		return DBSecret{}, fmt.Errorf("failed to parse secret %q: %w", secretID, err)
	}
	var missing []string
	for _, k := range dbSecretKeys {
		if _, ok := raw[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		log.ErrorContext(ctx, "Secret is missing expected keys", "keys", missing)
		return DBSecret{}, ErrMissingKeys{SecretID: secretID, Keys: missing}
	}

	var s DBSecret
	if err := json.Unmarshal([]byte(*out.SecretString), &s); err != nil {
		return DBSecret{}, fmt.Errorf("failed to parse secret %q: %w", secretID, err)
	}

	m.mu.Lock()
	m.cache[secretID] = s
	m.mu.Unlock()
	log.DebugContext(ctx, "Fetched database secret")
	return s, nil
}
