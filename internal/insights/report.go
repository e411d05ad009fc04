package insights

import (
	"fmt"
	"net/url"
)

// LogoURL is the logo shown next to ESLint reports.
const LogoURL = "https://www.vectorlogo.zone/logos/eslint/eslint-icon.svg"

// DataField is one row of the report's data table.
type DataField struct {
	Title string   `json:"title"`
	Type  DataType `json:"type"`
	Value any      `json:"value"`
}

// Counts holds the tallies a report is built from.
type Counts struct {
	Total           int `json:"total"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	FixableErrors   int `json:"fixableErrors"`
	FixableWarnings int `json:"fixableWarnings"`
	Messages        int `json:"messages"`
	Critical        int `json:"critical"`
	High            int `json:"high"`
	Medium          int `json:"medium"`
	Low             int `json:"low"`
}

// ReportSummary is the body of a report upsert.
type ReportSummary struct {
	Type       string      `json:"type"`
	Title      string      `json:"title"`
	Details    string      `json:"details"`
	ReportType ReportType  `json:"report_type"`
	Reporter   string      `json:"reporter"`
	Result     Result      `json:"result"`
	Link       string      `json:"link,omitempty"`
	LogoURL    string      `json:"logo_url,omitempty"`
	Data       []DataField `json:"data"`

	Counts Counts `json:"-"`
}

// Aggregator builds a ReportSummary from lint results. The zero value produces
// an untitled TEST report; use NewAggregator for the ESLint defaults.
type Aggregator struct {
	Title      string
	Reporter   string
	ReportType ReportType
	Link       string
	LogoURL    string
}

// NewAggregator returns an Aggregator with the ESLint report header.
func NewAggregator(link string) Aggregator {
	return Aggregator{
		Title:      "ESLint Report",
		Reporter:   HeaderESLint,
		ReportType: ReportTypeTest,
		Link:       link,
		LogoURL:    LogoURL,
	}
}

// Aggregate reduces results into a single report.
func (a Aggregator) Aggregate(results []FileResult) ReportSummary {
	var c Counts
	for _, r := range results {
		c.Errors += r.ErrorCount
		c.Warnings += r.WarningCount
		c.FixableErrors += r.FixableErrorCount
		c.FixableWarnings += r.FixableWarningCount
		for _, f := range r.Findings {
			c.Messages++
			switch f.Severity {
			case SeverityCritical:
				c.Critical++
			case SeverityHigh:
				c.High++
			case SeverityMedium:
				c.Medium++
			case SeverityLow:
				c.Low++
			}
		}
	}
	c.Total = c.Errors + c.Warnings

	result := ResultPassed
	if c.Total > 0 {
		result = ResultFailed
	}

	reportType := a.ReportType
	if reportType == "" {
		reportType = ReportTypeTest
	}

	return ReportSummary{
		Type:       "report",
		Title:      a.Title,
		Details:    Details(c),
		ReportType: reportType,
		Reporter:   a.Reporter,
		Result:     result,
		Link:       a.Link,
		LogoURL:    a.LogoURL,
		Data:       dataRows(c),
		Counts:     c,
	}
}

// Details renders the human-readable report description.
func Details(c Counts) string {
	return fmt.Sprintf("This pull request introduces %d problems (%d errors, %d warnings). "+
		"%d errors and %d warnings potentially fixable with the '--fix' option.",
		c.Total, c.Errors, c.Warnings, c.FixableErrors, c.FixableWarnings)
}

func dataRows(c Counts) []DataField {
	rows := []DataField{{Title: HeaderTotal, Type: DataNumber, Value: c.Total}}
	if c.Critical > 0 {
		rows = append(rows, DataField{Title: HeaderCriticalSeverity, Type: DataNumber, Value: c.Critical})
	}
	return append(rows,
		DataField{Title: HeaderHighSeverity, Type: DataNumber, Value: c.High},
		DataField{Title: HeaderMediumSeverity, Type: DataNumber, Value: c.Medium},
		DataField{Title: HeaderLowSeverity, Type: DataNumber, Value: c.Low},
	)
}

// PipelinesLink returns the Bitbucket Pipelines results page for a build.
// It returns "" when any component is missing.
func PipelinesLink(owner, slug, buildNumber string) string {
	if owner == "" || slug == "" || buildNumber == "" {
		return ""
	}
	return fmt.Sprintf("https://bitbucket.org/%s/%s/addon/pipelines/home#!/results/%s",
		url.PathEscape(owner), url.PathEscape(slug), url.PathEscape(buildNumber))
}
