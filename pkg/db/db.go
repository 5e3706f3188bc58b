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

package db

import (
	"sync"

	"github.com/caas-team/canary/pkg/checks"
)

// DB stores the latest result of every canary
type DB interface {
	Save(result checks.Result)
	Get(canary string) (result checks.Result, ok bool)
	List() map[string]checks.Result
}

var _ DB = (*InMemory)(nil)

type InMemory struct {
	data sync.Map
}

// NewInMemory creates a new in-memory database
func NewInMemory() *InMemory {
	return &InMemory{
		data: sync.Map{},
	}
}

// Save stores the result under the name of its canary, replacing the previous one
func (i *InMemory) Save(result checks.Result) {
	i.data.Store(result.Canary, result)
}

func (i *InMemory) Get(canary string) (checks.Result, bool) {
	tmp, ok := i.data.Load(canary)
	if !ok {
		return checks.Result{}, false
	}
	return tmp.(checks.Result), true
}

// List returns a copy of all stored results
func (i *InMemory) List() map[string]checks.Result {
	results := make(map[string]checks.Result)
	i.data.Range(func(key, value any) bool {
		results[key.(string)] = value.(checks.Result)
		return true
	})
	return results
}
