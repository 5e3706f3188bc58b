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

package helper

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	errFetch := errors.New("secret not reachable")

	tests := []struct {
		name      string
		failures  int
		rc        RetryConfig
		wantCalls int
		wantErr   bool
	}{
		{
			name:      "success on first call",
			failures:  0,
			rc:        RetryConfig{Count: 2, Delay: time.Millisecond},
			wantCalls: 1,
		},
		{
			name:      "success after one retry",
			failures:  1,
			rc:        RetryConfig{Count: 2, Delay: time.Millisecond},
			wantCalls: 2,
		},
		{
			name:      "retries exhausted",
			failures:  5,
			rc:        RetryConfig{Count: 2, Delay: time.Millisecond},
			wantCalls: 3,
			wantErr:   true,
		},
		{
			name:      "no retries configured",
			failures:  1,
			rc:        RetryConfig{},
			wantCalls: 1,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			retry := Retry(func(ctx context.Context) error {
				calls++
				if calls <= tt.failures {
					return errFetch
				}
				return nil
			}, tt.rc)

			err := retry(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Retry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("Retry() calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	retry := Retry(func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("connection refused")
	}, RetryConfig{Count: 3, Delay: time.Second})

	if err := retry(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() error = %v, want %v", err, context.Canceled)
	}
	if calls != 1 {
		t.Errorf("Retry() calls = %d, want 1", calls)
	}
}

func Test_getExpBackoff(t *testing.T) {
	tests := []struct {
		name      string
		delay     time.Duration
		iteration int
		want      time.Duration
	}{
		{name: "first iteration", delay: time.Second, iteration: 1, want: time.Second},
		{name: "second iteration", delay: time.Second, iteration: 2, want: 2 * time.Second},
		{name: "fourth iteration", delay: 100 * time.Millisecond, iteration: 4, want: 800 * time.Millisecond},
		{name: "negative iteration", delay: time.Second, iteration: -3, want: time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getExpBackoff(tt.delay, tt.iteration); got != tt.want {
				t.Errorf("getExpBackoff() = %v, want %v", got, tt.want)
			}
		})
	}
}
