package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caas-team/canary/pkg/canary"
	"github.com/caas-team/canary/pkg/checks/endpoint"
	"github.com/caas-team/canary/pkg/config"
)

func newTestCanaries(t *testing.T, names ...string) []*canary.Canary {
	t.Helper()
	var cs []*canary.Canary
	for _, n := range names {
		c, err := canary.New(config.Canary{Name: n, Endpoint: &endpoint.Config{Hostname: "api.example.com"}}, canary.Deps{})
		require.NoError(t, err)
		cs = append(cs, c)
	}
	return cs
}

func Test_lambdaCanary(t *testing.T) {
	tests := []struct {
		name     string
		canaries []string
		selected string
		want     string
		wantErr  bool
	}{
		{name: "single canary", canaries: []string{"signs"}, want: "signs"},
		{name: "selected", canaries: []string{"signs", "aton"}, selected: "aton", want: "aton"},
		{name: "ambiguous", canaries: []string{"signs", "aton"}, wantErr: true},
		{name: "unknown", canaries: []string{"signs"}, selected: "aton", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := lambdaCanary(newTestCanaries(t, tt.canaries...), tt.selected)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Name())
		})
	}
}

func Test_selectCanaries(t *testing.T) {
	env := &environment{canaries: newTestCanaries(t, "signs", "aton", "marinecam")}

	all, err := env.selectCanaries(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	some, err := env.selectCanaries([]string{"marinecam", "signs"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "marinecam", some[0].Name())
	assert.Equal(t, "signs", some[1].Name())

	_, err = env.selectCanaries([]string{"nope"})
	assert.ErrorIs(t, err, config.ErrCanaryNotFound)
}

func Test_envName(t *testing.T) {
	assert.Equal(t, "CANARY_OVERRIDES_SECRETID", envName("overrides.secretId"))
	assert.Equal(t, "CANARY_FILE", envName("file"))
}

func TestNewCmdRoot(t *testing.T) {
	root := NewCmdRoot("v0.0.0")
	for _, f := range []string{"file", "region", "timeout", "interval", "concurrency", "secretId", "hostname", "apiKey"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(f), "flag %s", f)
	}
}
