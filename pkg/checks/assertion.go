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
	"fmt"
	"math"
)

// Kind is the type of observation an assertion is made on.
type Kind string

const (
	// KindCount asserts on the scalar count returned by a SQL query
	KindCount Kind = "count"
	// KindStatus asserts on the status code of an HTTP GET request
	KindStatus Kind = "status"
)

func (k Kind) String() string {
	return string(k)
}

// Expectation is an inclusive range an observed value has to fall into.
// At least one bound must be set.
type Expectation struct {
	min    int64
	max    int64
	hasMin bool
	hasMax bool
}

// Exactly expects the observed value to be n.
func Exactly(n int64) Expectation {
	return Expectation{min: n, max: n, hasMin: true, hasMax: true}
}

// Zero expects an empty result, i.e. a count of 0.
func Zero() Expectation {
	return AtMost(0)
}

// OneOrMore expects a count of at least one.
func OneOrMore() Expectation {
	return AtLeast(1)
}

// AtLeast expects the observed value to be n or more.
func AtLeast(n int64) Expectation {
	return Expectation{min: n, max: math.MaxInt64, hasMin: true}
}

// AtMost expects the observed value to be n or less.
func AtMost(n int64) Expectation {
	return Expectation{min: math.MinInt64, max: n, hasMax: true}
}

// Between expects the observed value to be in [lower, upper].
func Between(lower, upper int64) Expectation {
	return Expectation{min: lower, max: upper, hasMin: true, hasMax: true}
}

// Status expects the HTTP status code to equal code.
func Status(code int) Expectation {
	return Exactly(int64(code))
}

// Matches reports whether v satisfies the expectation.
func (e Expectation) Matches(v int64) bool {
	if e.hasMin && v < e.min {
		return false
	}
	if e.hasMax && v > e.max {
		return false
	}
	return true
}

// Validate returns an error if the expectation has no bound
// or the bounds are inverted.
func (e Expectation) Validate() error {
	if !e.hasMin && !e.hasMax {
		return fmt.Errorf("no max or min given")
	}
	if e.hasMin && e.hasMax && e.min > e.max {
		return fmt.Errorf("min %d is greater than max %d", e.min, e.max)
	}
	return nil
}

// Bounds returns the lower and upper bound and whether they are set.
func (e Expectation) Bounds() (lower int64, hasLower bool, upper int64, hasUpper bool) {
	return e.min, e.hasMin, e.max, e.hasMax
}

func (e Expectation) String() string {
	switch {
	case e.hasMin && e.hasMax && e.min == e.max:
		return fmt.Sprintf("exactly %d", e.min)
	case e.hasMin && e.hasMax:
		return fmt.Sprintf("between %d and %d", e.min, e.max)
	case e.hasMax && e.max == 0:
		return "0"
	case e.hasMin:
		return fmt.Sprintf("at least %d", e.min)
	case e.hasMax:
		return fmt.Sprintf("at most %d", e.max)
	default:
		return "anything"
	}
}

// Assertion is a single named expectation on a query result or HTTP response.
// It is immutable once registered.
type Assertion struct {
	// Name is the human-readable name used in diagnostics
	Name string `json:"name"`
	// Kind selects what is observed
	Kind Kind `json:"kind"`
	// Source is the SQL query for KindCount or the URL path for KindStatus
	Source string `json:"source"`
	// Expect is the range the observed value has to fall into
	Expect Expectation `json:"-"`
	// WithoutAPIKey sends the HTTP request without the configured API key
	WithoutAPIKey bool `json:"withoutApiKey,omitempty"`
}

// HTTPOption modifies an HTTP assertion at registration time.
type HTTPOption func(*Assertion)

// WithoutAPIKey makes the request anonymous, e.g. to assert a 403.
func WithoutAPIKey() HTTPOption {
	return func(a *Assertion) {
		a.WithoutAPIKey = true
	}
}
