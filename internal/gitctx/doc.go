// Package gitctx reads commit and remote metadata from a local git checkout.
//
// It is used to fill in the repository owner, slug and commit when the
// Bitbucket Pipelines environment variables are absent, for example when
// running the tool on a developer machine. [ParseRemoteURL] understands
// HTTPS, ssh:// and scp-style remotes.
package gitctx
