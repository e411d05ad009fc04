package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/codeinsights/internal/bitbucket"
	"github.com/dshills/codeinsights/internal/output"
	"github.com/dshills/codeinsights/internal/redact"
	"github.com/dshills/codeinsights/internal/runner"
)

// Submission flags
var (
	flagAPIURL        string
	flagProxyURL      string
	flagNoProxy       bool
	flagFailurePolicy string
	flagTimeout       int
	flagVerify        bool
)

var submitCmd = &cobra.Command{
	Use:   "submit <report-glob>...",
	Short: "Submit ESLint reports to Bitbucket Code Insights",
	Long: "Loads ESLint JSON reports, creates or replaces the commit's Code Insights report, " +
		"then posts annotations in chunks of 100 (at most 1000 per report).",
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(true)
		if err != nil {
			fail(nil, ExitUsageError, err)
			return
		}
		logger := newLogger(cfg)

		policy, err := bitbucket.ParseFailurePolicy(cfg.FailurePolicy)
		if err != nil {
			fail(logger, ExitUsageError, err)
			return
		}

		transportOpts := []bitbucket.TransportOpt{
			bitbucket.WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second),
			bitbucket.WithUserAgent("codeinsights/" + version),
			bitbucket.WithTransportLogger(logger),
		}
		if cfg.ProxyURL != "" && !flagNoProxy {
			proxy, err := url.Parse(cfg.ProxyURL)
			if err != nil {
				fail(logger, ExitUsageError, fmt.Errorf("invalid proxy URL %q: %w", redact.URL(cfg.ProxyURL), err))
				return
			}
			transportOpts = append(transportOpts, bitbucket.WithProxy(proxy))
			logger.Debug().Str("proxy", redact.URL(cfg.ProxyURL)).Msg("Using proxy")
		}

		client := bitbucket.NewClient(bitbucket.NewHTTPTransport(transportOpts...),
			bitbucket.WithBaseURL(cfg.APIURL),
			bitbucket.WithFailurePolicy(policy),
			bitbucket.WithLogger(logger),
		)

		opts := runnerOptions(cfg, args)
		opts.Verify = flagVerify
		logger.Debug().
			Strs("reports", args).
			Str("owner", cfg.Owner).
			Str("slug", cfg.Slug).
			Str("commit", cfg.Commit).
			Str("buildNumber", cfg.BuildNumber).
			Str("policy", policy.String()).
			Msg("Report arguments")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		out, runErr := runner.New(opts, client, logger).Run(ctx)
		if out != nil && flagOut != "" {
			if err := output.WritePayload(buildPayload(cfg, out), cfg.Format, flagOut); err != nil {
				fail(logger, ExitRuntimeError, fmt.Errorf("writing output: %w", err))
				return
			}
		}
		if runErr != nil {
			fail(logger, exitCodeFor(runErr), runErr)
			return
		}
	},
}

func init() {
	addReportFlags(submitCmd.Flags())
	f := submitCmd.Flags()
	f.StringVar(&flagAPIURL, "api-url", "", "Bitbucket API base URL (default: http://api.bitbucket.org)")
	f.StringVar(&flagProxyURL, "proxy-url", "", "HTTP proxy that authenticates API calls (default: the Pipelines proxy)")
	f.BoolVar(&flagNoProxy, "no-proxy", false, "Call the API directly without a proxy")
	f.StringVar(&flagFailurePolicy, "failure-policy", "", "fail-fast or fail-open (DONT_BREAK_BUILD selects fail-open)")
	f.IntVar(&flagTimeout, "timeout", 0, "Per-request timeout in seconds")
	f.BoolVar(&flagVerify, "verify", false, "Read the report back after submitting it")
}
