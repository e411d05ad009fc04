// Package redact scrubs credentials from text before it is written to logs.
//
// Response bodies from the Code Insights API and proxy or API URLs end up in
// the submission log trail. Detection uses regex heuristics for bearer and
// basic authorization values, Atlassian API tokens and app passwords, JWTs,
// private key blocks, and secret-looking assignments. [URL] strips userinfo
// from URLs.
package redact
