package output

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/dshills/codeinsights/internal/insights"
)

// Payload is everything that is, or would be, sent for one commit.
type Payload struct {
	Tool        string                 `json:"tool"`
	Version     string                 `json:"version"`
	Target      string                 `json:"target,omitempty"`
	ReportKey   string                 `json:"reportKey"`
	Report      insights.ReportSummary `json:"report"`
	Counts      insights.Counts        `json:"counts"`
	Annotations []insights.Annotation  `json:"annotations"`

	// Dropped counts annotations removed by the per-report cap.
	Dropped int `json:"dropped"`
}

// Writer writes a payload in a specific format.
type Writer interface {
	Write(w io.Writer, p *Payload) error
}

// GetWriter returns a writer for the specified format. color only affects the
// text format.
func GetWriter(format string, color bool) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{Color: color}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown":
		return &MarkdownWriter{}, nil
	case "sarif":
		return &SARIFWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WritePayload writes p to outPath, or to stdout when outPath is empty. Text
// output is colored only on a terminal.
func WritePayload(p *Payload, format, outPath string) error {
	var w io.Writer
	color := false
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
		color = isatty.IsTerminal(os.Stdout.Fd())
	}

	writer, err := GetWriter(format, color)
	if err != nil {
		return err
	}
	return writer.Write(w, p)
}
