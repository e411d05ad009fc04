package insights

import (
	"crypto/md5"
	"fmt"
)

// DefaultReportKind is the report type component of the report key.
const DefaultReportKind = "test"

// ReportKey derives the external id of a report from its kind and commit.
// The same inputs always yield the same key, so re-running a pipeline for a
// commit overwrites its report instead of creating a new one.
func ReportKey(kind, commitHash string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(kind+":"+commitHash)))
}
