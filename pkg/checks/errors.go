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
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrResourceLost is wrapped by a Session when the underlying
	// connection broke. It aborts the whole run.
	ErrResourceLost = errors.New("resource lost")
	// ErrConsumed is returned when a Runner is run a second time
	ErrConsumed = errors.New("check set already consumed")
)

// ErrInvalidAssertion is returned when an assertion cannot be registered
type ErrInvalidAssertion struct {
	Name   string
	Field  string
	Reason string
}

func (e ErrInvalidAssertion) Error() string {
	return fmt.Sprintf("invalid assertion %q: field %q %s", e.Name, e.Field, e.Reason)
}

// ErrUnsupportedKind is returned by a Session that cannot observe the kind of an assertion
type ErrUnsupportedKind struct {
	Kind   Kind
	Target string
}

func (e ErrUnsupportedKind) Error() string {
	return fmt.Sprintf("%s target cannot evaluate %s assertions", e.Target, e.Kind)
}

// ResourceError is returned when the resource the assertions run against
// could not be acquired or was lost during the run
type ResourceError struct {
	Canary string
	Err    error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("canary %q: resource unavailable: %v", e.Canary, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// FailedError is returned when at least one assertion failed.
// Its message lists every failed assertion with its diagnostic.
type FailedError struct {
	Canary   string
	Failures []Outcome
}

func (e *FailedError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Name, f.Message))
	}
	return fmt.Sprintf("canary %q failed %d assertion(s): %s", e.Canary, len(e.Failures), strings.Join(msgs, "; "))
}

// ErrInvalidConfig is returned when the configuration of a target is invalid
type ErrInvalidConfig struct {
	Target string
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid configuration field %q of %s target: %s", e.Field, e.Target, e.Reason)
}
