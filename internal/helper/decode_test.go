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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type testAssertion struct {
	Name    string
	Status  int
	Paths   []string
	Timeout time.Duration
	Anon    bool `mapstructure:"withoutApiKey"`
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    testAssertion
		wantErr bool
	}{
		{
			name: "weakly typed input",
			input: map[string]any{
				"name":          "metadata available",
				"status":        "200",
				"paths":         "/prod/api/v1/metadata,/prod/shiplist",
				"timeout":       "3s",
				"withoutApiKey": "true",
			},
			want: testAssertion{
				Name:    "metadata available",
				Status:  200,
				Paths:   []string{"/prod/api/v1/metadata", "/prod/shiplist"},
				Timeout: 3 * time.Second,
				Anon:    true,
			},
		},
		{
			name: "unknown key",
			input: map[string]any{
				"name":   "metadata available",
				"statis": 200,
			},
			wantErr: true,
		},
		{
			name:    "invalid input type",
			input:   "not a map",
			want:    testAssertion{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode[testAssertion](tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
