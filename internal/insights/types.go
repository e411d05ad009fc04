package insights

// Severity represents the severity level of a finding.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// severityCodes maps the numeric codes emitted by the lint parser.
var severityCodes = map[int]Severity{
	0: SeverityLow,
	1: SeverityMedium,
	2: SeverityHigh,
}

// SeverityFromCode normalizes a numeric lint severity (0, 1, 2) to a Severity.
// Any other code is rejected.
func SeverityFromCode(code int) (Severity, error) {
	s, ok := severityCodes[code]
	if !ok {
		return "", &UnknownSeverityCodeError{Code: code}
	}
	return s, nil
}

// SeverityRank returns a numeric rank for sorting (higher = more severe).
// Unrecognized severities rank 0.
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	return SeverityRank(s) > 0
}

// ReportType is the Code Insights report category.
type ReportType string

const (
	ReportTypeSecurity ReportType = "SECURITY"
	ReportTypeCoverage ReportType = "COVERAGE"
	ReportTypeTest     ReportType = "TEST"
	ReportTypeBug      ReportType = "BUG"
)

// Result is the overall verdict of a report.
type Result string

const (
	ResultPassed Result = "PASSED"
	ResultFailed Result = "FAILED"
)

// AnnotationType categorizes an annotation.
type AnnotationType string

const (
	AnnotationVulnerability AnnotationType = "VULNERABILITY"
	AnnotationCodeSmell     AnnotationType = "CODE_SMELL"
	AnnotationBug           AnnotationType = "BUG"
)

// DataType is the type tag of a report data row.
type DataType string

const (
	DataBoolean    DataType = "BOOLEAN"
	DataDate       DataType = "DATE"
	DataDuration   DataType = "DURATION"
	DataLink       DataType = "LINK"
	DataNumber     DataType = "NUMBER"
	DataPercentage DataType = "PERCENTAGE"
	DataText       DataType = "TEXT"
)

// Row titles used in report data.
const (
	HeaderTotal            = "Total"
	HeaderCriticalSeverity = "Critical severity"
	HeaderHighSeverity     = "High severity"
	HeaderMediumSeverity   = "Medium severity"
	HeaderLowSeverity      = "Low severity"
	HeaderESLint           = "ESLint"
)

// Finding is one lint message attached to a file and line.
type Finding struct {
	Path     string   `json:"path"`
	Line     int      `json:"line"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	RuleID   string   `json:"ruleId,omitempty"`
	// ID is an optional identifier used in sorted-mode external ids.
	ID string `json:"id,omitempty"`
}

// FileResult is the lint result for a single source file. Its counts come from
// the linter and are independent of the per-finding severity tally.
type FileResult struct {
	Path                string    `json:"path"`
	ErrorCount          int       `json:"errorCount"`
	WarningCount        int       `json:"warningCount"`
	FixableErrorCount   int       `json:"fixableErrorCount"`
	FixableWarningCount int       `json:"fixableWarningCount"`
	Findings            []Finding `json:"findings"`
}

// Flatten returns every finding of every result in input order.
func Flatten(results []FileResult) []Finding {
	var n int
	for _, r := range results {
		n += len(r.Findings)
	}
	out := make([]Finding, 0, n)
	for _, r := range results {
		out = append(out, r.Findings...)
	}
	return out
}
