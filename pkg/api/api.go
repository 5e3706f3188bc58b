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
	"fmt"
	"net/http"
	"time"

	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/config"
	"github.com/go-chi/chi/v5"
)

type API interface {
	Run(ctx context.Context) error
	Shutdown(ctx context.Context) error
	RegisterRoutes(ctx context.Context, routes ...Route) error
}

type api struct {
	server *http.Server
	router chi.Router
}

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// New creates a new api
func New(cfg config.ApiConfig) API {
	r := chi.NewRouter()
	return &api{
		server: &http.Server{Addr: cfg.ListeningAddress, Handler: r, ReadHeaderTimeout: readHeaderTimeout},
		router: r,
	}
}

// Run serves the api.
// Blocks until context is done or the server is closed
func (a *api) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	cErr := make(chan error, 1)

	if len(a.router.Routes()) == 0 {
		return fmt.Errorf("failed serving API: no routes initialized")
	}

	// run http server in goroutine
	go func(cErr chan error) {
		defer close(cErr)
		log.Info("Serving Api", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil {
			log.Error("Failed to serve api", "error", err)
			cErr <- err
		}
	}(cErr)

	select {
	case <-ctx.Done():
		return fmt.Errorf("failed serving API: %w", ctx.Err())
	case err := <-cErr:
		if errors.Is(err, http.ErrServerClosed) || err == nil {
			log.Info("Api server closed")
			return nil
		}
		log.Error("Failed serving API", "error", err)
		return fmt.Errorf("failed serving API: %w", err)
	}
}

// Shutdown gracefully shuts down the api server
// Returns an error if an error is present in the context
// or if the server cannot be shut down
func (a *api) Shutdown(ctx context.Context) error {
	errC := ctx.Err()
	log := logger.FromContext(ctx)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := a.server.Shutdown(shutdownCtx)
	if err != nil {
		log.Error("Failed to shutdown api server", "error", err)
		return fmt.Errorf("failed shutting down API: %w", errors.Join(errC, err))
	}
	return errC
}

// MethodHandle registers a route for every method, e.g. for the metrics handler
const MethodHandle = "Handle"

// Route binds a handler to a path. Method is GET, POST or MethodHandle.
type Route struct {
	Path    string
	Method  string
	Handler http.HandlerFunc
}

// RegisterRoutes sets up all endpoint handlers for the given routes
func (a *api) RegisterRoutes(ctx context.Context, routes ...Route) error {
	a.router.Use(logger.Middleware(ctx))
	for _, route := range routes {
		switch route.Method {
		case http.MethodGet, http.MethodPost:
			a.router.Method(route.Method, route.Path, route.Handler)
		case MethodHandle:
			a.router.Handle(route.Path, route.Handler)
		default:
			return fmt.Errorf("unsupported method for %s: %s", route.Path, route.Method)
		}
	}

	// Handles requests with simple http ok,
	// used as liveness probe
	a.router.Handle("/", okHandler(ctx))

	return nil
}

// okHandler returns a handler that will serve status ok
func okHandler(ctx context.Context) http.Handler {
	log := logger.FromContext(ctx)

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("ok"))
		if err != nil {
			log.Error("Could not write response", "error", err.Error())
		}
	})
}

