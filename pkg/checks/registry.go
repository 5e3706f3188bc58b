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
	"net/http"
	"strings"
)

// Registry accumulates assertions without executing them.
// Registration order is kept and duplicate names are allowed.
type Registry struct {
	assertions []Assertion
}

// RegisterCount adds an assertion on the scalar count returned by query.
func (r *Registry) RegisterCount(name, query string, exp Expectation) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidAssertion{Name: name, Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(query) == "" {
		return ErrInvalidAssertion{Name: name, Field: "query", Reason: "must not be empty"}
	}
	if err := exp.Validate(); err != nil {
		return ErrInvalidAssertion{Name: name, Field: "expectation", Reason: err.Error()}
	}

	r.assertions = append(r.assertions, Assertion{
		Name:   name,
		Kind:   KindCount,
		Source: query,
		Expect: exp,
	})
	return nil
}

// RegisterHTTP adds an assertion on the status code of a GET request to path.
func (r *Registry) RegisterHTTP(name, path string, status int, opts ...HTTPOption) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidAssertion{Name: name, Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(path) == "" {
		return ErrInvalidAssertion{Name: name, Field: "path", Reason: "must not be empty"}
	}
	if status < 100 || status > 599 {
		return ErrInvalidAssertion{Name: name, Field: "status", Reason: "must be a valid HTTP status code"}
	}

	a := Assertion{
		Name:   name,
		Kind:   KindStatus,
		Source: path,
		Expect: Status(status),
	}
	for _, opt := range opts {
		opt(&a)
	}
	r.assertions = append(r.assertions, a)
	return nil
}

// ExpectZero asserts that query returns a count of 0.
func (r *Registry) ExpectZero(name, query string) error {
	return r.RegisterCount(name, query, Zero())
}

// ExpectOneOrMore asserts that query returns a count of at least 1.
func (r *Registry) ExpectOneOrMore(name, query string) error {
	return r.RegisterCount(name, query, OneOrMore())
}

// ExpectOne asserts that query returns a count of exactly 1.
func (r *Registry) ExpectOne(name, query string) error {
	return r.RegisterCount(name, query, Exactly(1))
}

// Expect200 asserts that path answers with 200 OK.
// The path doubles as the name of the assertion.
func (r *Registry) Expect200(path string) error {
	return r.RegisterHTTP(path, path, http.StatusOK)
}

// Expect404 asserts that path answers with 404 Not Found.
func (r *Registry) Expect404(path string) error {
	return r.RegisterHTTP(path, path, http.StatusNotFound)
}

// Expect403WithoutAPIKey asserts that path is protected by the API key.
func (r *Registry) Expect403WithoutAPIKey(path string) error {
	return r.RegisterHTTP(path+" without api key", path, http.StatusForbidden, WithoutAPIKey())
}

// Assertions returns a copy of the registered assertions in registration order.
func (r *Registry) Assertions() []Assertion {
	out := make([]Assertion, len(r.assertions))
	copy(out, r.assertions)
	return out
}

// Len returns the number of registered assertions.
func (r *Registry) Len() int {
	return len(r.assertions)
}
