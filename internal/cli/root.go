package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

// Exit codes
const (
	ExitSuccess      = 0
	ExitSubmitFailed = 1
	ExitUsageError   = 2
	ExitRuntimeError = 4
)

var (
	flagConfig   string
	flagEnvFiles []string
	flagDebug    bool
)

var rootCmd = &cobra.Command{
	Use:          "codeinsights",
	Short:        "Publish ESLint results as Bitbucket Code Insights",
	Long:         "codeinsights turns ESLint JSON output into a Bitbucket Code Insights report with per-line annotations.",
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default: $XDG_CONFIG_HOME/codeinsights/config.yaml)")
	pf.StringSliceVar(&flagEnvFiles, "env-file", nil, "Dotenv files to load before reading the environment")
	pf.BoolVar(&flagDebug, "debug", false, "Enable debug logging (same as DEBUG=true)")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Run executes the root command and returns an exit code.
func Run() int {
	exitCode = ExitSuccess
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print codeinsights version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "codeinsights version %s\n", version)
	},
}
