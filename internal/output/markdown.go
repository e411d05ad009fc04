package output

import (
	"io"
	"strings"

	"github.com/dshills/codeinsights/internal/insights"
)

// MarkdownWriter outputs a PR-comment-friendly markdown summary.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, p *Payload) error {
	ew := &errWriter{w: w}
	r := p.Report

	ew.printf("## %s\n\n", r.Title)
	ew.printf("**%s** %s\n\n", mdResultIcon(r.Result), r.Result)
	ew.printf("%s\n\n", r.Details)

	ew.println("| Metric | Value |")
	ew.println("|--------|-------|")
	for _, d := range r.Data {
		ew.printf("| %s | %v |\n", d.Title, d.Value)
	}
	ew.println("")

	if r.Link != "" {
		ew.printf("[Pipeline build](%s)\n\n", r.Link)
	}

	if len(p.Annotations) == 0 {
		ew.println("No annotations. :white_check_mark:")
		return ew.err
	}

	// Collapsible sections by severity, in annotation order within each.
	grouped := make(map[insights.Severity][]insights.Annotation)
	for _, a := range p.Annotations {
		grouped[a.Severity] = append(grouped[a.Severity], a)
	}
	for _, sev := range []insights.Severity{
		insights.SeverityCritical, insights.SeverityHigh, insights.SeverityMedium, insights.SeverityLow,
	} {
		anns := grouped[sev]
		if len(anns) == 0 {
			continue
		}
		ew.printf("<details>\n<summary>%s %s (%d)</summary>\n\n", mdSeverityIcon(sev), sev, len(anns))
		ew.println("| Location | Message | Rule |")
		ew.println("|----------|---------|------|")
		for _, a := range anns {
			ew.printf("| `%s:%d` | %s | %s |\n", a.Path, a.Line, mdEscape(a.Summary), mdEscape(a.RuleID()))
		}
		ew.println("\n</details>\n")
	}

	if p.Dropped > 0 {
		ew.printf("*%d annotations were dropped by the %d-per-report limit.*\n", p.Dropped, insights.MaxAnnotations)
	}

	return ew.err
}

func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

func mdResultIcon(r insights.Result) string {
	if r == insights.ResultPassed {
		return ":white_check_mark:"
	}
	return ":x:"
}

func mdSeverityIcon(s insights.Severity) string {
	switch s {
	case insights.SeverityCritical:
		return ":rotating_light:"
	case insights.SeverityHigh:
		return ":red_circle:"
	case insights.SeverityMedium:
		return ":orange_circle:"
	case insights.SeverityLow:
		return ":yellow_circle:"
	default:
		return ":white_circle:"
	}
}
