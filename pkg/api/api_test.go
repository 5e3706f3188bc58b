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

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caas-team/canary/pkg/config"
)

func TestAPI_RegisterRoutes(t *testing.T) {
	type request struct {
		method string
		path   string
		status int
	}
	ok := func(status int) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}
	}

	tests := []struct {
		name    string
		routes  []Route
		want    []request
		wantErr bool
	}{
		{
			name:   "canary routes",
			routes: []Route{
				{Path: "/v1/canaries", Method: http.MethodGet, Handler: ok(http.StatusOK)},
				{Path: "/v1/canaries/{name}", Method: http.MethodGet, Handler: ok(http.StatusOK)},
				{Path: "/v1/canaries/{name}/run", Method: http.MethodPost, Handler: ok(http.StatusAccepted)},
				{Path: "/metrics", Method: MethodHandle, Handler: ok(http.StatusOK)},
			},
			want: []request{
				{method: http.MethodGet, path: "/v1/canaries", status: http.StatusOK},
				{method: http.MethodGet, path: "/v1/canaries/signs", status: http.StatusOK},
				{method: http.MethodPost, path: "/v1/canaries/signs/run", status: http.StatusAccepted},
				{method: http.MethodGet, path: "/v1/canaries/signs/run", status: http.StatusMethodNotAllowed},
				{method: http.MethodGet, path: "/metrics", status: http.StatusOK},
				{method: http.MethodGet, path: "/", status: http.StatusOK},
			},
		},
		{
			name: "put is not served",
			routes: []Route{
				{Path: "/put", Method: http.MethodPut, Handler: ok(http.StatusOK)},
			},
			wantErr: true,
		},
		{
			name: "unsupported method",
			routes: []Route{
				{Path: "/unknown", Method: "unknown", Handler: ok(http.StatusOK)},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := api{
				server: &http.Server{}, //nolint:gosec
				router: chi.NewRouter(),
			}

			err := a.RegisterRoutes(context.Background(), tt.routes...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RegisterRoutes() error = %v, wantErr %v", err, tt.wantErr)
			}

			for _, req := range tt.want {
				rec := httptest.NewRecorder()
				a.router.ServeHTTP(rec, httptest.NewRequest(req.method, req.path, http.NoBody))
				assert.Equal(t, req.status, rec.Code, "%s %s", req.method, req.path)
			}
		})
	}
}

func TestAPI_RunWithoutRoutes(t *testing.T) {
	a := New(config.ApiConfig{ListeningAddress: "127.0.0.1:0"})
	err := a.Run(context.Background())
	assert.Error(t, err)
}

func TestAPI_ShutdownWhenContextCanceled(t *testing.T) {
	r := chi.NewRouter()
	a := api{
		router: r,
		server: &http.Server{Addr: "127.0.0.1:0", Handler: r}, //nolint:gosec
	}
	a.router.Get("/", okHandler(context.Background()).ServeHTTP)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := a.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if err := a.Shutdown(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Shutdown() error = %v, want context.Canceled", err)
	}
}

func Test_okHandler(t *testing.T) {
	ctx := context.Background()
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	rr := httptest.NewRecorder()

	okHandler(ctx).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestGenerateCanarySpecs(t *testing.T) {
	doc, err := GenerateCanarySpecs(context.Background(), []string{"signs", "public-api"})
	require.NoError(t, err)

	for _, p := range []string{"/v1/canaries", "/v1/canaries/signs", "/v1/canaries/signs/run", "/v1/canaries/public-api"} {
		assert.Contains(t, doc.Paths, p)
	}
	assert.NotNil(t, doc.Paths["/v1/canaries/signs"].Get)
	assert.NotNil(t, doc.Paths["/v1/canaries/signs/run"].Post)
	assert.Contains(t, doc.Components.Schemas, "Result")

	empty, err := GenerateCanarySpecs(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, empty.Paths, 1, "documents must not share their paths")
}
