package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/codeinsights/internal/output"
	"github.com/dshills/codeinsights/internal/runner"
)

var previewCmd = &cobra.Command{
	Use:   "preview <report-glob>...",
	Short: "Render the report and annotations without submitting them",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(false)
		if err != nil {
			fail(nil, ExitUsageError, err)
			return
		}
		logger := newLogger(cfg)

		out, err := runner.New(runnerOptions(cfg, args), nil, logger).Build()
		if err != nil {
			fail(logger, ExitRuntimeError, err)
			return
		}

		if err := output.WritePayload(buildPayload(cfg, out), cfg.Format, flagOut); err != nil {
			fail(logger, ExitRuntimeError, fmt.Errorf("writing output: %w", err))
		}
	},
}

func init() {
	addReportFlags(previewCmd.Flags())
}
