package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/caas-team/canary/pkg/checks"
)

const envPrefix = "CANARY"

// NewCmdRoot creates the root command with the flags shared by all subcommands
func NewCmdRoot(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "canary",
		Short: "Canary, the deployment health verification tool",
		Long: "Canary runs named assertions against a database or an HTTP endpoint\n" +
			"and reports a single pass/fail result listing every failed assertion.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	NewFlag("file", "file").StringP("f").Bind(rootCmd, "canaries.yaml", "The canary definition file")
	NewFlag("region", "region", "AWS_REGION").String().Bind(rootCmd, "eu-central-1", "AWS region database secrets are read from")
	NewFlag("defaults.timeout", "timeout").Duration().Bind(rootCmd, checks.DefaultTimeout, "Default timeout of a single assertion")
	NewFlag("defaults.interval", "interval").Duration().Bind(rootCmd, 0, "Default interval canaries are run in when serving")
	NewFlag("defaults.concurrency", "concurrency").Int().Bind(rootCmd, 1, "Default number of assertions evaluated at once")
	NewFlag("overrides.secretId", "secretId", "SECRET_ID").String().Bind(rootCmd, "", "Database secret used by canaries without own credentials")
	NewFlag("overrides.hostname", "hostname").String().Bind(rootCmd, "", "Hostname used by endpoint canaries without own hostname")
	NewFlag("overrides.apiKey", "apiKey").String().Bind(rootCmd, "", "API key used by endpoint canaries without own key")

	return rootCmd
}

// Execute adds all child commands to the root command
// and executes the cmd tree
func Execute(version string) {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	cmd := NewCmdRoot(version)
	cmd.AddCommand(NewCmdRun())
	cmd.AddCommand(NewCmdServe())
	cmd.AddCommand(NewCmdLambda())
	cmd.AddCommand(NewCmdGenDocs(cmd))

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
