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

import "fmt"

type ErrCreateOpenapiSchema struct {
	err error
}

func (e *ErrCreateOpenapiSchema) Error() string {
	return fmt.Sprintf("failed to get schema of canary result: %v", e.err)
}

func (e *ErrCreateOpenapiSchema) Unwrap() error {
	return e.err
}
