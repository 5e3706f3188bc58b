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

package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"

	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/api"
)

type encoder interface {
	Encode(v any) error
}

const urlParamCanaryName = "name"

func (s *Scheduler) routes() []api.Route {
	return []api.Route{
		{Path: "/openapi", Method: http.MethodGet, Handler: s.handleOpenAPI},
		{Path: "/v1/canaries", Method: http.MethodGet, Handler: s.handleListResults},
		{Path: fmt.Sprintf("/v1/canaries/{%s}", urlParamCanaryName), Method: http.MethodGet, Handler: s.handleGetResult},
		{Path: fmt.Sprintf("/v1/canaries/{%s}/run", urlParamCanaryName), Method: http.MethodPost, Handler: s.handleRunCanary},
		{
			Path:   "/metrics",
			Method: api.MethodHandle,
			Handler: promhttp.HandlerFor(
				s.metrics.GetRegistry(),
				promhttp.HandlerOpts{Registry: s.metrics.GetRegistry()},
			).ServeHTTP,
		},
	}
}

func (s *Scheduler) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	oapi, err := api.GenerateCanarySpecs(r.Context(), s.Names())
	if err != nil {
		log.ErrorContext(r.Context(), "Failed to create openapi", "error", err)
		writeStatus(w, r, http.StatusInternalServerError)
		return
	}

	var marshaler encoder
	switch r.Header.Get("Accept") {
	case "application/json":
		w.Header().Add("Content-Type", "application/json")
		marshaler = json.NewEncoder(w)
	default:
		w.Header().Add("Content-Type", "text/yaml")
		marshaler = yaml.NewEncoder(w)
	}

	if err := marshaler.Encode(oapi); err != nil {
		log.ErrorContext(r.Context(), "Failed to marshal openapi", "error", err)
		writeStatus(w, r, http.StatusInternalServerError)
	}
}

func (s *Scheduler) handleListResults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.db.List())
}

func (s *Scheduler) handleGetResult(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, urlParamCanaryName)
	res, ok := s.db.Get(name)
	if !ok {
		writeStatus(w, r, http.StatusNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// handleRunCanary runs a canary on demand. The result is returned
// whether the canary passed or not.
func (s *Scheduler) handleRunCanary(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	name := chi.URLParam(r, urlParamCanaryName)

	res, err := s.RunCanary(r.Context(), name)
	switch {
	case errors.Is(err, ErrUnknownCanary):
		writeStatus(w, r, http.StatusNotFound)
		return
	case res.Canary == "":
		log.ErrorContext(r.Context(), "Failed to run canary", "canary", name, "error", err)
		writeStatus(w, r, http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response", "error", err)
	}
}

func writeStatus(w http.ResponseWriter, r *http.Request, status int) {
	w.WriteHeader(status)
	if _, err := w.Write([]byte(http.StatusText(status))); err != nil {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to write response", "error", err)
	}
}
