// Codeinsights publishes ESLint results to Bitbucket Code Insights.
//
// It reads ESLint JSON reports, creates or replaces the commit's Code
// Insights report, and attaches one annotation per finding. It is meant to
// run as a Bitbucket Pipelines step, where API calls go through the
// authenticating Pipelines proxy.
//
// Usage:
//
//	codeinsights submit 'reports/*-eslint.json'         # publish report and annotations
//	codeinsights preview eslint.json --format markdown  # render locally, no network
//	codeinsights config show                            # print effective configuration
//
// Set DONT_BREAK_BUILD to keep submission failures from failing the step.
package main
