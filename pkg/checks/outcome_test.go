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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	zero := int64(0)
	tests := []struct {
		name         string
		outcomes     []Outcome
		wantPassed   bool
		wantMessage  string
		wantFailures int
	}{
		{
			name:        "no outcomes",
			outcomes:    nil,
			wantPassed:  true,
			wantMessage: SuccessMessage,
		},
		{
			name: "all passed",
			outcomes: []Outcome{
				{Name: "cameras not empty", Passed: true},
				{Name: "cameras updated in last hour", Passed: true},
			},
			wantPassed:  true,
			wantMessage: SuccessMessage,
		},
		{
			name: "one failed",
			outcomes: []Outcome{
				{Name: "cameras not empty", Passed: true},
				{Name: "cameras updated in last hour", Passed: false, Actual: &zero, Message: "count was 0, expected at least 1"},
			},
			wantPassed:   false,
			wantMessage:  `canary "marinecam" failed 1 assertion(s): cameras updated in last hour: count was 0, expected at least 1`,
			wantFailures: 1,
		},
		{
			name: "all failed in order",
			outcomes: []Outcome{
				{Name: "b", Passed: false, Message: "query failed: boom"},
				{Name: "a", Passed: false, Message: "count was 0, expected at least 1"},
			},
			wantPassed:   false,
			wantMessage:  `canary "marinecam" failed 2 assertion(s): b: query failed: boom; a: count was 0, expected at least 1`,
			wantFailures: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Aggregate("marinecam", tt.outcomes)
			assert.Equal(t, tt.wantPassed, res.Passed)
			assert.Equal(t, tt.wantMessage, res.Message)
			assert.Len(t, res.Failures(), tt.wantFailures)
			assert.False(t, res.Timestamp.IsZero())

			err := res.Err()
			if tt.wantPassed {
				assert.NoError(t, err)
				return
			}
			var failedErr *FailedError
			require.True(t, errors.As(err, &failedErr))
			assert.Equal(t, tt.wantMessage, err.Error())
		})
	}
}

func TestResourceFailure(t *testing.T) {
	cause := errors.New("secret not found")
	res := resourceFailure("vs", cause)

	assert.False(t, res.Passed)
	assert.Empty(t, res.Outcomes)
	assert.ErrorIs(t, res.Err(), cause)
	assert.Equal(t, `canary "vs": resource unavailable: secret not found`, res.Message)
}
