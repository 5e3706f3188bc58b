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

// Package database provides a checks.Target evaluating SQL count assertions.
package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/checks"
	"github.com/caas-team/canary/pkg/secrets"
)

var (
	_ checks.Target  = (*Target)(nil)
	_ checks.Session = (*session)(nil)
)

var (
	errNoValue = errors.New("no return value")
	errNoCount = errors.New("no count available")
)

// Credentials resolves the DSN of a database secret
type Credentials interface {
	DSN(ctx context.Context, secretID string, opts secrets.DSNOptions) (string, error)
	Refresh(ctx context.Context, secretID string) error
}

// Target opens a connection pool per run and evaluates count queries on it
type Target struct {
	config      Config
	credentials Credentials
}

// New creates a database target. credentials may be nil if the config carries a DSN.
func New(cfg Config, credentials Credentials) *Target {
	return &Target{
		config:      cfg,
		credentials: credentials,
	}
}

// Acquire opens and pings the database. If the DSN comes from a secret
// and the connection fails, the secret is refreshed once to pick up rotated credentials.
func (t *Target) Acquire(ctx context.Context) (checks.Session, error) {
	log := logger.FromContext(ctx).With("driver", t.config.driver())

	fromSecret := t.config.DSN == ""
	dsn, err := t.dsn(ctx)
	if err != nil {
		return nil, err
	}

	db, err := t.connect(ctx, dsn)
	if err != nil && fromSecret {
		log.WarnContext(ctx, "Connection failed, refreshing secret", "error", err)
		if rErr := t.credentials.Refresh(ctx, t.config.SecretID); rErr != nil {
			return nil, errors.Join(err, rErr)
		}
		if dsn, err = t.dsn(ctx); err != nil {
			return nil, err
		}
		db, err = t.connect(ctx, dsn)
	}
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "Connected to database")
	return &session{db: db}, nil
}

func (t *Target) dsn(ctx context.Context) (string, error) {
	if t.config.DSN != "" {
		return t.config.DSN, nil
	}
	if t.credentials == nil {
		return "", fmt.Errorf("no credentials to resolve secret %q", t.config.SecretID)
	}
	return t.credentials.DSN(ctx, t.config.SecretID, secrets.DSNOptions{
		ReadOnly:    t.config.ReadOnly,
		Database:    t.config.Database,
		Application: t.config.Application,
	})
}

func (t *Target) connect(ctx context.Context, dsn string) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, t.config.connectTimeout())
	defer cancel()

	db, err := sql.Open(t.config.driver(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(t.config.maxOpenConns())
	db.SetMaxIdleConns(t.config.maxOpenConns())

	if err := db.PingContext(ctx); err != nil {
		if cErr := db.Close(); cErr != nil {
			err = errors.Join(err, cErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

type session struct {
	db *sql.DB
}

// Observe runs the query of a count assertion and returns its scalar result
func (s *session) Observe(ctx context.Context, a checks.Assertion) (int64, error) {
	if a.Kind != checks.KindCount {
		return 0, checks.ErrUnsupportedKind{Kind: a.Kind, Target: targetName}
	}

	var count sql.NullInt64
	err := s.db.QueryRowContext(ctx, a.Source).Scan(&count)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, errNoValue
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrConnDone):
		return 0, fmt.Errorf("%w: %w", checks.ErrResourceLost, err)
	case err != nil:
		return 0, err
	}

	if !count.Valid {
		return 0, errNoCount
	}
	return count.Int64, nil
}

// Release closes the connection pool
func (s *session) Release(_ context.Context) error {
	return s.db.Close()
}
