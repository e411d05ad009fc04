// Package logging builds the zerolog logger shared by the CLI and its
// collaborators. Output is human-readable console text, colored only when the
// destination is a terminal.
package logging
