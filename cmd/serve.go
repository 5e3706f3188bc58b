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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/db"
	"github.com/caas-team/canary/pkg/metrics"
	"github.com/caas-team/canary/pkg/scheduler"
)

// NewCmdServe creates a new serve command
func NewCmdServe() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run canaries periodically and serve their results",
		Long:  "Runs every canary on its interval and serves the latest results and metrics via an API",
		RunE:  serve,
	}
	NewFlag("api.address", "apiAddress").String().Bind(cmd, ":8080", "api: The address the server is listening on")

	return cmd
}

// serve is the entry point to start the scheduler
func serve(cmd *cobra.Command, _ []string) error {
	log := logger.NewLogger()
	ctx := logger.IntoContext(cmd.Context(), log)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := setup(ctx)
	if err != nil {
		return err
	}

	s := scheduler.New(env.cfg, env.canaries, db.NewInMemory(), metrics.NewMetrics(env.metrics))
	log.InfoContext(ctx, "Running canaries", "amount", len(env.canaries))
	if err := s.Run(ctx); err != nil {
		log.ErrorContext(ctx, "Scheduler stopped", "error", err)
		return err
	}
	return nil
}

