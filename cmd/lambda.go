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
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/canary"
	"github.com/caas-team/canary/pkg/config"
)

const lambdaCanaryKey = "lambda.canary"

// NewCmdLambda creates a new lambda command
func NewCmdLambda() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lambda",
		Short: "Run a canary as AWS Lambda function",
		Long:  "Starts the Lambda runtime. Every invocation runs the canary once and returns OK or the aggregate error",
		RunE:  runLambda,
	}
	NewFlag(lambdaCanaryKey, "canary").String().Bind(cmd, "", "Name of the canary to run, required if the file defines more than one")

	return cmd
}

func runLambda(cmd *cobra.Command, _ []string) error {
	log := logger.NewLogger()
	ctx := logger.IntoContext(cmd.Context(), log)

	env, err := setup(ctx)
	if err != nil {
		return err
	}

	c, err := lambdaCanary(env.canaries, viper.GetString(lambdaCanaryKey))
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "Starting lambda handler", "canary", c.Name())
	lambda.Start(canary.LambdaHandler(c))
	return nil
}

func lambdaCanary(cs []*canary.Canary, name string) (*canary.Canary, error) {
	if name == "" {
		if len(cs) != 1 {
			return nil, fmt.Errorf("%d canaries defined, select one with --canary", len(cs))
		}
		return cs[0], nil
	}
	for _, c := range cs {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", config.ErrCanaryNotFound, name)
}
