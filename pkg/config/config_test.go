package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caas-team/canary/pkg/checks"
	"github.com/caas-team/canary/pkg/checks/database"
	"github.com/caas-team/canary/pkg/checks/endpoint"
)

func ptr[T any](v T) *T {
	return &v
}

func TestLoadDefinitions(t *testing.T) {
	cfg := &Config{
		File: "testdata/canaries.yaml",
		Defaults: DefaultsConfig{
			Timeout:     5 * time.Second,
			Interval:    time.Hour,
			Concurrency: 1,
		},
		Overrides: OverridesConfig{
			SecretID: "prod/marinecam/db",
			Hostname: "api.example.com",
			APIKey:   "secret",
		},
	}

	got, err := LoadDefinitions(context.Background(), cfg)
	require.NoError(t, err)

	want := &Definitions{
		Canaries: []Canary{
			{
				Name:        "marinecam-db",
				Interval:    time.Hour,
				Timeout:     3 * time.Second,
				Concurrency: 1,
				Database: &database.Config{
					SecretID:    "prod/marinecam/db",
					ReadOnly:    true,
					Database:    "marinecam",
					Application: "marinecam-canary",
				},
				Assertions: []AssertionConfig{
					{Name: "cameras not empty", Query: "SELECT count(*) FROM camera", Expect: ExpectOneOrMore},
					{Name: "no stale images", Query: "SELECT count(*) FROM image WHERE modified < now() - interval '1 day'", Expect: ExpectZero},
					{Name: "between", Query: "SELECT count(*) FROM camera_group", Expect: ExpectBetween, Min: ptr[int64](2), Max: ptr[int64](10)},
				},
			},
			{
				Name:        "public-api",
				Interval:    time.Hour,
				Timeout:     5 * time.Second,
				Concurrency: 2,
				Endpoint: &endpoint.Config{
					Hostname:  "api.example.com",
					APIKey:    "secret",
					RateLimit: 5,
				},
				Assertions: []AssertionConfig{
					{Path: "/health"},
					{Path: "/v1/signs", WithoutAPIKey: true},
					{Path: "/missing", Status: 404},
				},
			},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadDefinitions() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDefinitions_Errors(t *testing.T) {
	dir := t.TempDir()
	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("canaries: [\n"), 0o600))
	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("canaries: []\n"), 0o600))

	tests := []struct {
		name    string
		file    string
		wantErr error
	}{
		{name: "no file", file: "", wantErr: ErrMissingFile},
		{name: "missing file", file: filepath.Join(dir, "nope.yaml")},
		{name: "invalid yaml", file: invalid},
		{name: "no canaries", file: empty, wantErr: ErrNoCanaries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDefinitions(context.Background(), &Config{File: tt.file})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCanary_Register(t *testing.T) {
	c := Canary{
		Name:     "public-api",
		Endpoint: &endpoint.Config{Hostname: "api.example.com"},
		Assertions: []AssertionConfig{
			{Path: "/health"},
			{Path: "/v1/signs", WithoutAPIKey: true},
			{Name: "gone", Path: "/missing", Status: 404},
		},
	}

	var r checks.Registry
	require.NoError(t, c.Register(&r))

	got := r.Assertions()
	require.Len(t, got, 3)
	assert.Equal(t, "/health", got[0].Name)
	assert.True(t, got[0].Expect.Matches(200))
	assert.Equal(t, "/v1/signs without api key", got[1].Name)
	assert.True(t, got[1].WithoutAPIKey)
	assert.True(t, got[1].Expect.Matches(403))
	assert.Equal(t, "gone", got[2].Name)
	assert.True(t, got[2].Expect.Matches(404))
}

func TestAssertionConfig_expectation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AssertionConfig
		match   []int64
		nomatch []int64
		wantErr bool
	}{
		{name: "zero", cfg: AssertionConfig{Expect: ExpectZero}, match: []int64{0}, nomatch: []int64{1}},
		{name: "one or more", cfg: AssertionConfig{Expect: ExpectOneOrMore}, match: []int64{1, 1000}, nomatch: []int64{0}},
		{name: "one", cfg: AssertionConfig{Expect: ExpectOne}, match: []int64{1}, nomatch: []int64{0, 2}},
		{name: "exactly", cfg: AssertionConfig{Expect: ExpectExactly, Count: ptr[int64](3)}, match: []int64{3}, nomatch: []int64{2, 4}},
		{name: "at least", cfg: AssertionConfig{Expect: ExpectAtLeast, Min: ptr[int64](2)}, match: []int64{2, 3}, nomatch: []int64{1}},
		{name: "at most", cfg: AssertionConfig{Expect: ExpectAtMost, Max: ptr[int64](2)}, match: []int64{0, 2}, nomatch: []int64{3}},
		{name: "between", cfg: AssertionConfig{Expect: ExpectBetween, Min: ptr[int64](1), Max: ptr[int64](2)}, match: []int64{1, 2}, nomatch: []int64{0, 3}},
		{name: "exactly without count", cfg: AssertionConfig{Expect: ExpectExactly}, wantErr: true},
		{name: "between without max", cfg: AssertionConfig{Expect: ExpectBetween, Min: ptr[int64](1)}, wantErr: true},
		{name: "missing", cfg: AssertionConfig{}, wantErr: true},
		{name: "unknown", cfg: AssertionConfig{Expect: "plenty"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, err := tt.cfg.expectation()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, v := range tt.match {
				assert.True(t, exp.Matches(v), "expected %d to match %s", v, exp)
			}
			for _, v := range tt.nomatch {
				assert.False(t, exp.Matches(v), "expected %d not to match %s", v, exp)
			}
		})
	}
}

func TestDefinitions_Lookup(t *testing.T) {
	d := Definitions{Canaries: []Canary{{Name: "a"}, {Name: "b"}}}

	c, err := d.Lookup("b")
	require.NoError(t, err)
	assert.Equal(t, "b", c.Name)

	_, err = d.Lookup("c")
	assert.ErrorIs(t, err, ErrCanaryNotFound)
}

func TestDefinitions_ApplyOverrides(t *testing.T) {
	d := Definitions{Canaries: []Canary{
		{Name: "secret", Database: &database.Config{}},
		{Name: "dsn", Database: &database.Config{DSN: "postgres://localhost/db"}},
		{Name: "own-secret", Database: &database.Config{SecretID: "other"}},
		{Name: "api", Endpoint: &endpoint.Config{}},
		{Name: "own-api", Endpoint: &endpoint.Config{Hostname: "own.example.com", APIKey: "own"}},
	}}

	d.ApplyOverrides(OverridesConfig{SecretID: "prod/db", Hostname: "api.example.com", APIKey: "key"})

	assert.Equal(t, "prod/db", d.Canaries[0].Database.SecretID)
	assert.Empty(t, d.Canaries[1].Database.SecretID)
	assert.Equal(t, "other", d.Canaries[2].Database.SecretID)
	assert.Equal(t, endpoint.Config{Hostname: "api.example.com", APIKey: "key"}, *d.Canaries[3].Endpoint)
	assert.Equal(t, endpoint.Config{Hostname: "own.example.com", APIKey: "own"}, *d.Canaries[4].Endpoint)
}
