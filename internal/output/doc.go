// Package output renders a Code Insights payload (report, annotations and the
// count of dropped annotations) for display or machine consumption.
//
// Four formats are supported:
//   - text: human-readable terminal output (default), styled with lipgloss on a TTY
//   - json: the full payload as JSON
//   - markdown: PR-comment-friendly with collapsible sections per severity
//   - sarif: SARIF v2.1.0 for upload to other CI tools
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*Payload]. [WritePayload] handles
// destination selection.
package output
