// Package eslint reads ESLint's JSON formatter output.
//
// [Parse] validates a raw report against an embedded JSON schema and decodes
// it; both a single result object and an array of results are accepted.
// [LoadFiles] expands glob patterns and parses every matching file.
// [Normalize] converts results into [insights.FileResult] values with paths
// relative to a base directory and numeric severities mapped to
// [insights.Severity].
package eslint
