package insights

import (
	"errors"
	"strings"
	"testing"
)

func sampleResults() []FileResult {
	return []FileResult{
		{
			Path:                "src/a.js",
			ErrorCount:          2,
			WarningCount:        1,
			FixableErrorCount:   1,
			FixableWarningCount: 0,
			Findings: []Finding{
				{Path: "src/a.js", Line: 1, Severity: SeverityHigh, Message: "no-undef", RuleID: "no-undef"},
				{Path: "src/a.js", Line: 4, Severity: SeverityHigh, Message: "semi", RuleID: "semi"},
				{Path: "src/a.js", Line: 9, Severity: SeverityMedium, Message: "no-console", RuleID: "no-console"},
			},
		},
		{
			Path:                "src/b.js",
			ErrorCount:          0,
			WarningCount:        1,
			FixableWarningCount: 1,
			Findings: []Finding{
				{Path: "src/b.js", Line: 3, Severity: SeverityMedium, Message: "prefer-const", RuleID: "prefer-const"},
				{Path: "src/b.js", Line: 7, Severity: SeverityLow, Message: "off rule", RuleID: "eqeqeq"},
			},
		},
	}
}

func TestAggregate_Counts(t *testing.T) {
	r := NewAggregator("https://example.test/build/1").Aggregate(sampleResults())

	c := r.Counts
	if c.Errors != 2 || c.Warnings != 2 {
		t.Errorf("errors/warnings = %d/%d, want 2/2", c.Errors, c.Warnings)
	}
	if c.FixableErrors != 1 || c.FixableWarnings != 1 {
		t.Errorf("fixable = %d/%d, want 1/1", c.FixableErrors, c.FixableWarnings)
	}
	if c.Total != 4 {
		t.Errorf("Total = %d, want 4", c.Total)
	}
	if c.High != 2 || c.Medium != 2 || c.Low != 1 {
		t.Errorf("high/medium/low = %d/%d/%d, want 2/2/1", c.High, c.Medium, c.Low)
	}
	if c.Messages != 5 {
		t.Errorf("Messages = %d, want 5", c.Messages)
	}
	if r.Result != ResultFailed {
		t.Errorf("Result = %q, want FAILED", r.Result)
	}
	if r.ReportType != ReportTypeTest {
		t.Errorf("ReportType = %q, want TEST", r.ReportType)
	}
	if r.Reporter != "ESLint" || r.Title != "ESLint Report" {
		t.Errorf("header = %q/%q", r.Reporter, r.Title)
	}
	if r.Link != "https://example.test/build/1" {
		t.Errorf("Link = %q", r.Link)
	}
}

func TestAggregate_Verdict(t *testing.T) {
	tests := []struct {
		name     string
		errors   int
		warnings int
		want     Result
	}{
		{"clean", 0, 0, ResultPassed},
		{"errors only", 3, 0, ResultFailed},
		{"warnings only", 0, 1, ResultFailed},
		{"both", 2, 5, ResultFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregator{}.Aggregate([]FileResult{{ErrorCount: tt.errors, WarningCount: tt.warnings}})
			if got.Result != tt.want {
				t.Errorf("Result = %q, want %q", got.Result, tt.want)
			}
		})
	}
}

func TestAggregate_Empty(t *testing.T) {
	r := Aggregator{}.Aggregate(nil)
	if r.Result != ResultPassed {
		t.Errorf("Result = %q, want PASSED", r.Result)
	}
	if len(r.Data) != 4 {
		t.Errorf("Data rows = %d, want 4", len(r.Data))
	}
}

func TestAggregate_BucketsNeverExceedMessages(t *testing.T) {
	results := sampleResults()
	results[1].Findings = append(results[1].Findings, Finding{Severity: "BOGUS"})
	c := Aggregator{}.Aggregate(results).Counts
	if c.High+c.Medium+c.Low > c.Messages {
		t.Errorf("buckets %d exceed messages %d", c.High+c.Medium+c.Low, c.Messages)
	}
	if c.Messages != 6 {
		t.Errorf("Messages = %d, want 6", c.Messages)
	}
}

func TestAggregate_CriticalRow(t *testing.T) {
	r := Aggregator{}.Aggregate([]FileResult{{
		ErrorCount: 1,
		Findings:   []Finding{{Severity: SeverityCritical}},
	}})
	if len(r.Data) != 5 {
		t.Fatalf("Data rows = %d, want 5", len(r.Data))
	}
	if r.Data[1].Title != HeaderCriticalSeverity || r.Data[1].Value != 1 {
		t.Errorf("Data[1] = %+v", r.Data[1])
	}
}

func TestDetails(t *testing.T) {
	got := Details(Counts{Total: 4, Errors: 2, Warnings: 2, FixableErrors: 1, FixableWarnings: 1})
	want := "This pull request introduces 4 problems (2 errors, 2 warnings). " +
		"1 errors and 1 warnings potentially fixable with the '--fix' option."
	if got != want {
		t.Errorf("Details = %q, want %q", got, want)
	}
	if !strings.Contains(got, "--fix") {
		t.Error("Details should mention --fix")
	}
}

func TestSeverityFromCode(t *testing.T) {
	tests := []struct {
		code int
		want Severity
	}{
		{0, SeverityLow},
		{1, SeverityMedium},
		{2, SeverityHigh},
	}
	for _, tt := range tests {
		got, err := SeverityFromCode(tt.code)
		if err != nil {
			t.Fatalf("SeverityFromCode(%d) error: %v", tt.code, err)
		}
		if got != tt.want {
			t.Errorf("SeverityFromCode(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}

	_, err := SeverityFromCode(3)
	var codeErr *UnknownSeverityCodeError
	if !errors.As(err, &codeErr) {
		t.Fatalf("SeverityFromCode(3) error = %v, want UnknownSeverityCodeError", err)
	}
	if codeErr.Code != 3 {
		t.Errorf("Code = %d, want 3", codeErr.Code)
	}
}

func TestPipelinesLink(t *testing.T) {
	got := PipelinesLink("myteam", "myrepo", "42")
	want := "https://bitbucket.org/myteam/myrepo/addon/pipelines/home#!/results/42"
	if got != want {
		t.Errorf("PipelinesLink = %q, want %q", got, want)
	}
	if PipelinesLink("myteam", "myrepo", "") != "" {
		t.Error("PipelinesLink without build number should be empty")
	}
}

func TestReportKey(t *testing.T) {
	if got := ReportKey("test", "not-a-commit-hash"); got != "e441ce8f2dbf9f441655a07a67daee2f" {
		t.Errorf("ReportKey = %q", got)
	}
	if ReportKey("test", "a") == ReportKey("test", "b") {
		t.Error("different commits should yield different keys")
	}
	if ReportKey("test", "a") != ReportKey("test", "a") {
		t.Error("ReportKey should be deterministic")
	}
}
