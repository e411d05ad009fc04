// Package runner drives one submission: load ESLint reports, build the Code
// Insights report, upsert it, then map and submit annotations.
//
// The run moves through [StateIdle], [StateReportSubmitted] or
// [StateReportFailed], [StateAnnotationsSubmitting] and [StateDone]. A failed
// report upsert ends the run without touching annotations; under the
// fail-open policy that failure is logged and the run still succeeds.
package runner
