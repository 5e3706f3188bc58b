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
	"time"
)

// SuccessMessage is the message of a passed Result
const SuccessMessage = "OK"

// Outcome is the result of a single assertion.
type Outcome struct {
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`
	Source string `json:"source"`
	Passed bool   `json:"passed"`
	// Actual is the observed count or status code. Nil if nothing was observed.
	Actual *int64 `json:"actual,omitempty"`
	// Expected is the human-readable expectation
	Expected string `json:"expected"`
	// Message is the diagnostic of a failed assertion
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Result is the aggregate outcome of one run of a check set.
type Result struct {
	Canary    string    `json:"canary"`
	Passed    bool      `json:"passed"`
	Message   string    `json:"message"`
	Outcomes  []Outcome `json:"outcomes"`
	Timestamp time.Time `json:"timestamp"`
	// err is set for results that failed without per-assertion detail
	err error
}

// Err returns nil for a passed result, otherwise the error describing the failure.
func (r Result) Err() error {
	if r.Passed {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	return &FailedError{Canary: r.Canary, Failures: r.Failures()}
}

// Failures returns the failed outcomes in registration order.
func (r Result) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.Passed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Aggregate reduces the outcomes of a run into one Result.
// The Result passes only if every outcome passed; an empty list passes.
func Aggregate(canary string, outcomes []Outcome) Result {
	res := Result{
		Canary:    canary,
		Passed:    true,
		Message:   SuccessMessage,
		Outcomes:  outcomes,
		Timestamp: time.Now().UTC(),
	}
	for _, o := range outcomes {
		if !o.Passed {
			res.Passed = false
			break
		}
	}
	if !res.Passed {
		res.Message = res.Err().Error()
	}
	return res
}

// resourceFailure builds the Result of a run that could not use its resource.
func resourceFailure(canary string, err error) Result {
	rErr := &ResourceError{Canary: canary, Err: err}
	return Result{
		Canary:    canary,
		Passed:    false,
		Message:   rErr.Error(),
		Outcomes:  []Outcome{},
		Timestamp: time.Now().UTC(),
		err:       rErr,
	}
}

func passed(a Assertion, actual int64, d time.Duration) Outcome {
	return Outcome{
		Name:     a.Name,
		Kind:     a.Kind,
		Source:   a.Source,
		Passed:   true,
		Actual:   &actual,
		Expected: a.Expect.String(),
		Duration: d,
	}
}

func failed(a Assertion, actual *int64, msg string, d time.Duration) Outcome {
	return Outcome{
		Name:     a.Name,
		Kind:     a.Kind,
		Source:   a.Source,
		Passed:   false,
		Actual:   actual,
		Expected: a.Expect.String(),
		Message:  msg,
		Duration: d,
	}
}
