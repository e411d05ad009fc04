// Package cli wires together the Cobra command tree for the codeinsights binary.
//
// It defines the root command and its subcommands (submit, preview, config,
// version), binds flags, reads configuration, runs the submission pipeline,
// and returns deterministic exit codes for CI gating.
package cli
