package redact

import (
	"net/url"
	"regexp"
)

const placeholder = "[REDACTED]"

// secretPatterns are regex heuristics for credentials that may appear in API
// responses or request logs.
var secretPatterns = []*regexp.Regexp{
	// Authorization header values
	regexp.MustCompile(`(?i)(Bearer|Basic)\s+[A-Za-z0-9._~+/=-]{16,}`),
	// Atlassian API tokens and Bitbucket app passwords / access tokens
	regexp.MustCompile(`ATAT[A-Za-z0-9_=.-]{20,}`),
	regexp.MustCompile(`ATBB[A-Za-z0-9_=.-]{20,}`),
	regexp.MustCompile(`ATCTT[A-Za-z0-9_=.-]{20,}`),
	// JWTs (three base64 segments separated by dots)
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	// Private key blocks
	regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`),
	// Credentials embedded in URLs
	regexp.MustCompile(`(?i)(https?|socks5)://[^/\s:@]+:[^/\s@]+@`),
	// Generic secrets/tokens/passwords in assignments
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential|api[_-]?key)["']?\s*[:=]\s*["']([^"']{8,})["']`),
}

// Secrets replaces detected secrets in text with [REDACTED].
func Secrets(text string) string {
	result := text
	for _, pat := range secretPatterns {
		result = pat.ReplaceAllString(result, placeholder)
	}
	return result
}

// URL returns raw with any userinfo removed. Unparseable input is passed
// through Secrets instead.
func URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return Secrets(raw)
	}
	u.User = nil
	return u.String()
}

// Truncate shortens s to at most max bytes, marking the cut.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
