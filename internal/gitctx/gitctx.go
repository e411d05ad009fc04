package gitctx

import (
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
	Remote string
	Owner  string
	Slug   string
}

// GetRepoMeta collects repository metadata from git, running in dir ("" for
// the working directory). Owner and Slug come from the origin remote and stay
// empty when there is none or it cannot be parsed.
func GetRepoMeta(dir string) (RepoMeta, error) {
	root, err := gitOutput(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}
	head, err := gitOutput(dir, "rev-parse", "HEAD")
	if err != nil {
		head = "" // new repo with no commits
	}
	branch, err := gitOutput(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}
	meta := RepoMeta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}

	remote, err := gitOutput(dir, "remote", "get-url", "origin")
	if err != nil {
		return meta, nil
	}
	meta.Remote = strings.TrimSpace(remote)
	if owner, slug, err := ParseRemoteURL(meta.Remote); err == nil {
		meta.Owner, meta.Slug = owner, slug
	}
	return meta, nil
}

var (
	httpsRemoteRe = regexp.MustCompile(`^(?:https?|ssh)://(?:[^@/]+@)?[^/]+/([^/\s]+)/([^/\s]+)$`)
	scpRemoteRe   = regexp.MustCompile(`^[^@\s]+@[^:\s]+:([^/\s]+)/([^/\s]+)$`)
)

// ErrUnparseableRemote is returned when a remote URL has no owner/slug path.
var ErrUnparseableRemote = errors.New("cannot parse owner/slug from remote URL")

// ParseRemoteURL extracts the workspace (owner) and repository slug from an
// HTTPS, ssh:// or scp-style remote URL.
func ParseRemoteURL(url string) (owner, slug string, err error) {
	url = strings.TrimSuffix(strings.TrimSpace(url), "/")
	url = strings.TrimSuffix(url, ".git")

	if m := httpsRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	if m := scpRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	return "", "", ErrUnparseableRemote
}

func gitOutput(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
