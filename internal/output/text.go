package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/codeinsights/internal/insights"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	passedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Faint(true)

	severityStyles = map[insights.Severity]lipgloss.Style{
		insights.SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
		insights.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		insights.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		insights.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	}
)

// TextWriter outputs a human-readable preview.
type TextWriter struct {
	Color bool
}

func (t *TextWriter) render(s lipgloss.Style, text string) string {
	if !t.Color {
		return text
	}
	return s.Render(text)
}

func (t *TextWriter) Write(w io.Writer, p *Payload) error {
	ew := &errWriter{w: w}
	r := p.Report

	ew.printf("%s\n", t.render(titleStyle, r.Title))
	if p.Target != "" {
		ew.printf("Commit: %s\n", p.Target)
	}
	ew.printf("Report key: %s\n", p.ReportKey)
	if r.Link != "" {
		ew.printf("Link: %s\n", r.Link)
	}
	ew.println(strings.Repeat("─", 60))

	resultStyle := passedStyle
	if r.Result == insights.ResultFailed {
		resultStyle = failedStyle
	}
	ew.printf("Result: %s\n", t.render(resultStyle, string(r.Result)))
	for _, line := range wrapText(r.Details, 70) {
		ew.printf("  %s\n", line)
	}
	for _, d := range r.Data {
		ew.printf("  %-18s %v\n", d.Title+":", d.Value)
	}
	ew.println(strings.Repeat("─", 60))

	if len(p.Annotations) == 0 {
		ew.println("\nNo annotations.")
		return ew.err
	}

	ew.printf("Annotations: %d", len(p.Annotations))
	if p.Dropped > 0 {
		ew.printf(" (%d dropped by the %d-per-report cap)", p.Dropped, insights.MaxAnnotations)
	}
	ew.println("")

	for _, a := range p.Annotations {
		label := fmt.Sprintf("%-8s", a.Severity)
		ew.printf("\n  %s %s:%d  %s\n",
			t.render(severityStyles[a.Severity], label), a.Path, a.Line, a.Summary)
		if rule := a.RuleID(); rule != "" {
			ew.printf("           %s\n", t.render(dimStyle, rule))
		}
	}

	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
