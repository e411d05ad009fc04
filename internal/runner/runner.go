package runner

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dshills/codeinsights/internal/bitbucket"
	"github.com/dshills/codeinsights/internal/eslint"
	"github.com/dshills/codeinsights/internal/insights"
)

// State is the position of a run in the submission pipeline.
type State int

const (
	StateIdle State = iota
	StateReportSubmitted
	StateReportFailed
	StateAnnotationsSubmitting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReportSubmitted:
		return "report-submitted"
	case StateReportFailed:
		return "report-failed"
	case StateAnnotationsSubmitting:
		return "annotations-submitting"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Submitter is the subset of *bitbucket.Client the runner needs.
type Submitter interface {
	SubmitReport(ctx context.Context, t bitbucket.Target, reportKey string, report insights.ReportSummary) error
	SubmitAllAnnotations(ctx context.Context, t bitbucket.Target, reportKey string, annotations []insights.Annotation) (bitbucket.SubmitResult, error)
	FetchReport(ctx context.Context, t bitbucket.Target, reportKey string) (*insights.ReportSummary, error)
	Policy() bitbucket.FailurePolicy
}

// Options describes one run.
type Options struct {
	// Patterns are ESLint report paths or globs.
	Patterns []string
	// BaseDir is stripped from absolute paths in the reports.
	BaseDir     string
	Target      bitbucket.Target
	BuildNumber string
	Mapper      insights.Mapper
	// Verify reads the report back after submission.
	Verify bool
}

// Outcome records what a run produced and how far it got.
type Outcome struct {
	State       State
	ReportKey   string
	Report      insights.ReportSummary
	Annotations insights.MapResult
	Submission  bitbucket.SubmitResult
	// ReportErr is the report failure swallowed under fail-open.
	ReportErr error
}

// Runner orchestrates the submission pipeline.
type Runner struct {
	opts      Options
	submitter Submitter
	logger    *zerolog.Logger
}

// New creates a Runner. submitter may be nil when only Build is used.
func New(opts Options, submitter Submitter, logger *zerolog.Logger) *Runner {
	return &Runner{opts: opts, submitter: submitter, logger: logger}
}

func (r *Runner) load() ([]insights.FileResult, error) {
	raw, err := eslint.LoadFiles(r.opts.Patterns, r.logger)
	if err != nil {
		return nil, fmt.Errorf("loading ESLint reports: %w", err)
	}
	results, err := eslint.Normalize(raw, r.opts.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("normalizing ESLint reports: %w", err)
	}
	return results, nil
}

func (r *Runner) aggregate(results []insights.FileResult) (insights.ReportSummary, string) {
	link := insights.PipelinesLink(r.opts.Target.Owner, r.opts.Target.Slug, r.opts.BuildNumber)
	report := insights.NewAggregator(link).Aggregate(results)
	key := insights.ReportKey(insights.DefaultReportKind, r.opts.Target.Commit)
	return report, key
}

// Build produces the report and annotations without any network access.
func (r *Runner) Build() (*Outcome, error) {
	results, err := r.load()
	if err != nil {
		return nil, err
	}
	report, key := r.aggregate(results)
	mapped, err := r.opts.Mapper.Map(results, key)
	if err != nil {
		return nil, fmt.Errorf("building annotations: %w", err)
	}
	return &Outcome{State: StateIdle, ReportKey: key, Report: report, Annotations: mapped}, nil
}

// Run executes the full pipeline. The returned Outcome is non-nil whenever
// the reports were loaded, including on submission errors.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	if err := r.opts.Target.Validate(); err != nil {
		return nil, err
	}

	r.logger.Info().Msg("Start generating Code Insight report...")
	results, err := r.load()
	if err != nil {
		return nil, err
	}

	report, key := r.aggregate(results)
	out := &Outcome{State: StateIdle, ReportKey: key, Report: report}
	r.logger.Debug().
		Str("target", r.opts.Target.String()).
		Str("report", key).
		Str("result", string(report.Result)).
		Int("problems", report.Counts.Total).
		Msg("Report built")

	if err := r.submitter.SubmitReport(ctx, r.opts.Target, key, report); err != nil {
		out.State = StateReportFailed
		if r.submitter.Policy() == bitbucket.FailOpen {
			out.ReportErr = err
			r.logger.Error().Err(err).Msg("Code Insight report was not created; skipping annotations")
			return out, nil
		}
		return out, fmt.Errorf("submitting report: %w", err)
	}
	out.State = StateReportSubmitted
	r.logger.Info().Msg("Code Insight report successfully generated!")

	mapped, err := r.opts.Mapper.Map(results, key)
	if err != nil {
		return out, fmt.Errorf("building annotations: %w", err)
	}
	out.Annotations = mapped
	if mapped.Dropped > 0 {
		r.logger.Warn().Int("dropped", mapped.Dropped).Msg("Lowest-severity annotations dropped")
	}

	if len(mapped.Annotations) > 0 {
		out.State = StateAnnotationsSubmitting
		sub, err := r.submitter.SubmitAllAnnotations(ctx, r.opts.Target, key, mapped.Annotations)
		out.Submission = sub
		if err != nil {
			return out, fmt.Errorf("submitting annotations: %w", err)
		}
		if sub.Failed > 0 {
			r.logger.Warn().Int("failed", sub.Failed).Int("chunks", sub.Chunks).
				Msg("Some annotation chunks were not accepted")
		}
		r.logger.Info().Int("annotations", len(sub.Submitted)).Msg("Added annotations to CodeInsights report")
	}

	if r.opts.Verify {
		stored, err := r.submitter.FetchReport(ctx, r.opts.Target, key)
		switch {
		case err != nil && r.submitter.Policy() == bitbucket.FailOpen:
			r.logger.Error().Err(err).Msg("Could not read back Code Insight report")
		case err != nil:
			return out, fmt.Errorf("verifying report: %w", err)
		default:
			r.logger.Info().Str("result", string(stored.Result)).Str("title", stored.Title).Msg("Verified stored report")
		}
	}

	out.State = StateDone
	return out, nil
}
