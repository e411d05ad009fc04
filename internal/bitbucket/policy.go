package bitbucket

import "fmt"

// FailurePolicy decides what a failed annotation chunk does to the rest of
// the submission.
type FailurePolicy int

const (
	// FailFast aborts on the first failed chunk and returns its error.
	FailFast FailurePolicy = iota
	// FailOpen logs failed chunks and carries on with the next one.
	FailOpen
)

func (p FailurePolicy) String() string {
	switch p {
	case FailFast:
		return "fail-fast"
	case FailOpen:
		return "fail-open"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

// ParseFailurePolicy parses "fail-fast" or "fail-open". The empty string is
// FailFast.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "", "fail-fast":
		return FailFast, nil
	case "fail-open":
		return FailOpen, nil
	default:
		return FailFast, fmt.Errorf("unknown failure policy %q (want fail-fast or fail-open)", s)
	}
}
