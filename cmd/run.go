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

package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/canary"
)

// NewCmdRun creates a new run command
func NewCmdRun() *cobra.Command {
	return &cobra.Command{
		Use:   "run [canary...]",
		Short: "Run canaries once",
		Long:  "Runs the given canaries, or all canaries of the definition file, once and prints a report",
		RunE:  run,
	}
}

// run runs every selected canary once. It fails if any canary failed.
func run(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger()
	ctx := logger.IntoContext(cmd.Context(), log)

	env, err := setup(ctx)
	if err != nil {
		return err
	}
	selected, err := env.selectCanaries(args)
	if err != nil {
		return err
	}

	var errs []error
	for _, c := range selected {
		res, err := c.RunResult(ctx)
		if res.Canary != "" {
			canary.PrintResult(os.Stdout, res)
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

