package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/dshills/codeinsights/internal/bitbucket"
	"github.com/dshills/codeinsights/internal/config"
	"github.com/dshills/codeinsights/internal/gitctx"
	"github.com/dshills/codeinsights/internal/insights"
	"github.com/dshills/codeinsights/internal/logging"
	"github.com/dshills/codeinsights/internal/output"
	"github.com/dshills/codeinsights/internal/runner"
)

// Shared report flags
var (
	flagOwner          string
	flagSlug           string
	flagCommit         string
	flagBuildNumber    string
	flagBaseDir        string
	flagSort           bool
	flagAnnotationType string
	flagFormat         string
	flagOut            string
)

func addReportFlags(fs *pflag.FlagSet) {
	fs.StringVar(&flagOwner, "owner", "", "Repository owner (default: $BITBUCKET_REPO_OWNER or git remote)")
	fs.StringVar(&flagSlug, "slug", "", "Repository slug (default: $BITBUCKET_REPO_SLUG or git remote)")
	fs.StringVar(&flagCommit, "commit", "", "Commit hash (default: $BITBUCKET_COMMIT or HEAD)")
	fs.StringVar(&flagBuildNumber, "build-number", "", "Pipelines build number used for the report link")
	fs.StringVar(&flagBaseDir, "base-dir", "", "Directory that absolute report paths are made relative to (default: cwd)")
	fs.BoolVar(&flagSort, "sort", false, "Sort annotations by severity and keep the most severe 1000")
	fs.StringVar(&flagAnnotationType, "annotation-type", "", "Annotation type (VULNERABILITY, CODE_SMELL, BUG)")
	fs.StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, sarif)")
	fs.StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagOwner != "" {
		m["owner"] = flagOwner
	}
	if flagSlug != "" {
		m["slug"] = flagSlug
	}
	if flagCommit != "" {
		m["commit"] = flagCommit
	}
	if flagBuildNumber != "" {
		m["buildNumber"] = flagBuildNumber
	}
	if flagBaseDir != "" {
		m["baseDir"] = flagBaseDir
	}
	if flagSort {
		m["sort"] = "true"
	}
	if flagAnnotationType != "" {
		m["annotationType"] = flagAnnotationType
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagDebug {
		m["debug"] = "true"
	}
	if flagAPIURL != "" {
		m["apiURL"] = flagAPIURL
	}
	if flagProxyURL != "" {
		m["proxyURL"] = flagProxyURL
	}
	if flagFailurePolicy != "" {
		m["failurePolicy"] = flagFailurePolicy
	}
	if flagTimeout > 0 {
		m["timeoutSeconds"] = strconv.Itoa(flagTimeout)
	}
	return m
}

// loadConfig merges every configuration source. Missing repository fields
// are filled in from the local git checkout when one is available.
func loadConfig(requireTarget bool) (config.Config, error) {
	if err := config.LoadEnvFiles(flagEnvFiles...); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(flagConfig, buildOverrides())
	if err != nil {
		return config.Config{}, err
	}

	if cfg.Owner == "" || cfg.Slug == "" || cfg.Commit == "" {
		if meta, err := gitctx.GetRepoMeta(""); err == nil {
			if cfg.Owner == "" {
				cfg.Owner = meta.Owner
			}
			if cfg.Slug == "" {
				cfg.Slug = meta.Slug
			}
			if cfg.Commit == "" {
				cfg.Commit = meta.Head
			}
		}
	}

	if cfg.BaseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			cfg.BaseDir = wd
		}
	}

	if err := cfg.Validate(requireTarget); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *zerolog.Logger {
	return logging.New(os.Stderr, cfg.Debug)
}

func runnerOptions(cfg config.Config, patterns []string) runner.Options {
	return runner.Options{
		Patterns: patterns,
		BaseDir:  cfg.BaseDir,
		Target: bitbucket.Target{
			Owner:  cfg.Owner,
			Slug:   cfg.Slug,
			Commit: cfg.Commit,
		},
		BuildNumber: cfg.BuildNumber,
		Mapper: insights.Mapper{
			Sorted: cfg.Sort,
			Type:   insights.AnnotationType(cfg.AnnotationType),
		},
	}
}

func buildPayload(cfg config.Config, out *runner.Outcome) *output.Payload {
	target := ""
	if cfg.Owner != "" || cfg.Slug != "" || cfg.Commit != "" {
		target = bitbucket.Target{Owner: cfg.Owner, Slug: cfg.Slug, Commit: cfg.Commit}.String()
	}
	return &output.Payload{
		Tool:        "codeinsights",
		Version:     version,
		Target:      target,
		ReportKey:   out.ReportKey,
		Report:      out.Report,
		Counts:      out.Report.Counts,
		Annotations: out.Annotations.Annotations,
		Dropped:     out.Annotations.Dropped + out.Submission.Dropped,
	}
}

// exitCodeFor classifies a run error. Remote failures are submission
// failures; everything else is a runtime error.
func exitCodeFor(err error) int {
	var statusErr *bitbucket.APIStatusError
	var transportErr *bitbucket.TransportError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &statusErr), errors.As(err, &transportErr):
		return ExitSubmitFailed
	default:
		return ExitRuntimeError
	}
}

func fail(logger *zerolog.Logger, code int, err error) {
	if logger != nil {
		logger.Error().Err(err).Msg("codeinsights failed")
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	exitCode = code
}
