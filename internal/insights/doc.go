// Package insights turns normalized lint results into Bitbucket Code Insights
// payloads.
//
// [Aggregator] reduces a set of [FileResult] groups into a single
// [ReportSummary] with counts, a PASSED/FAILED verdict and a details string.
// [Mapper] converts each [Finding] into an [Annotation] with a deterministic
// external id, optionally ordering the set by severity and capping it at the
// per-report maximum. Both are pure: no I/O, no randomness.
//
// [ReportKey] derives the report's external id from the report type and the
// commit hash.
package insights
