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

package canary

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/caas-team/canary/pkg/checks"
)

// PrintResult writes a human readable report of a result to w
func PrintResult(w io.Writer, res checks.Result) {
	success := color.New(color.FgGreen).SprintFunc()
	failure := color.New(color.FgRed).SprintFunc()
	highlight := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(w, "%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(w, "Canary: %s\n", highlight(res.Canary))

	status := success("PASSED")
	if !res.Passed {
		status = failure("FAILED")
	}
	fmt.Fprintf(w, "Status: %s\n", status)
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 60))

	if len(res.Outcomes) == 0 && !res.Passed {
		fmt.Fprintf(w, "%s\n", failure(res.Message))
	}
	for _, o := range res.Outcomes {
		mark := success("✓")
		if !o.Passed {
			mark = failure("✗")
		}
		fmt.Fprintf(w, "%s %s (%s)\n", mark, o.Name, o.Duration)
		if !o.Passed {
			fmt.Fprintf(w, "    %s\n", o.Message)
		}
	}
	fmt.Fprintf(w, "%s\n", strings.Repeat("=", 60))
}
