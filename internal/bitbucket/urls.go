package bitbucket

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultAPIURL is the API host reached through the Pipelines proxy. Plain
// HTTP is intentional: the proxy terminates TLS and adds credentials.
const DefaultAPIURL = "http://api.bitbucket.org"

// Target identifies the commit a report is attached to.
type Target struct {
	Owner  string
	Slug   string
	Commit string
}

// Validate checks that every component is set.
func (t Target) Validate() error {
	if t.Owner == "" || t.Slug == "" || t.Commit == "" {
		return ErrIncompleteTarget
	}
	return nil
}

func (t Target) String() string {
	return fmt.Sprintf("%s/%s@%s", t.Owner, t.Slug, t.Commit)
}

// ReportURL returns the report resource URL.
func ReportURL(baseURL string, t Target, reportKey string) string {
	return fmt.Sprintf("%s/2.0/repositories/%s/%s/commit/%s/reports/%s",
		strings.TrimRight(baseURL, "/"),
		url.PathEscape(t.Owner),
		url.PathEscape(t.Slug),
		url.PathEscape(t.Commit),
		url.PathEscape(reportKey),
	)
}

// AnnotationsURL returns the annotations collection URL of a report.
func AnnotationsURL(baseURL string, t Target, reportKey string) string {
	return ReportURL(baseURL, t, reportKey) + "/annotations"
}
