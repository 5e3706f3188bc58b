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

import "github.com/mitchellh/mapstructure"

// Decode decodes a generic map, e.g. an unmarshalled YAML document, into T.
// Input is weakly typed: strings are converted to numbers, booleans, durations
// and comma separated slices where T requires it. Keys without a matching
// field are rejected.
func Decode[T any](input any) (T, error) {
	var result T
	config := &mapstructure.DecoderConfig{
		Metadata:         nil,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &result,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	}

	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return result, err
	}

	if err := decoder.Decode(input); err != nil {
		return result, err
	}

	return result, nil
}
