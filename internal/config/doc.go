// Package config loads and merges codeinsights configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (BITBUCKET_REPO_OWNER, BITBUCKET_COMMIT,
//     DONT_BREAK_BUILD, CODEINSIGHTS_API_URL, etc.)
//  3. Config file ($XDG_CONFIG_HOME/codeinsights/config.yaml or --config)
//  4. Built-in defaults
//
// Dotenv files named with --env-file are loaded into the environment first by
// [LoadEnvFiles] and never override variables that are already set.
//
// Use [Load] to obtain a merged [Config], [Save] to write a config file, and
// [SetField] to update a single key.
package config
