package eslint

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"

	"github.com/dshills/codeinsights/internal/insights"
)

//go:embed schema.json
var schemaJSON string

var reportSchema = mustCompileSchema()

// ErrNoReports is returned when no report file matches the given patterns.
var ErrNoReports = errors.New("no ESLint report files matched")

// ValidationError describes a report that does not have ESLint's JSON shape.
type ValidationError struct {
	Source   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid ESLint report %s: %s", e.Source, strings.Join(e.Problems, "; "))
}

func mustCompileSchema() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		panic("compiling ESLint report schema: " + err.Error())
	}
	return s
}

// Parse validates and decodes ESLint JSON output. source names the input in
// error messages.
func Parse(data []byte, source string) ([]Result, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, &ValidationError{Source: source, Problems: []string{"empty input"}}
	}

	res, err := reportSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}
	if !res.Valid() {
		problems := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			problems = append(problems, e.String())
		}
		return nil, &ValidationError{Source: source, Problems: problems}
	}

	if data[0] == '[' {
		var results []Result
		if err := json.Unmarshal(data, &results); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", source, err)
		}
		return results, nil
	}

	var single Result
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", source, err)
	}
	return []Result{single}, nil
}

// ParseFile reads and parses one report file.
func ParseFile(path string) ([]Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	return Parse(data, path)
}

// ExpandPatterns resolves glob patterns to a sorted, de-duplicated file list.
// A pattern without glob metacharacters is returned as-is so that a missing
// file surfaces as a read error rather than an empty match.
func ExpandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, p := range patterns {
		var matches []string
		if strings.ContainsAny(p, "*?[") {
			m, err := filepath.Glob(p)
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", p, err)
			}
			matches = m
		} else {
			matches = []string{p}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	if len(files) == 0 {
		return nil, ErrNoReports
	}
	return files, nil
}

// LoadFiles parses every report matching patterns, in pattern order.
func LoadFiles(patterns []string, logger *zerolog.Logger) ([]Result, error) {
	files, err := ExpandPatterns(patterns)
	if err != nil {
		return nil, err
	}
	var all []Result
	for _, f := range files {
		logger.Info().Str("file", f).Msg("Processing ESLint report")
		results, err := ParseFile(f)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}
	return all, nil
}

// Normalize converts results into insights groups. Absolute file paths are
// made relative to baseDir; unknown severity codes are rejected.
func Normalize(results []Result, baseDir string) ([]insights.FileResult, error) {
	out := make([]insights.FileResult, 0, len(results))
	for _, r := range results {
		path := relativePath(r.FilePath, baseDir)
		fr := insights.FileResult{
			Path:                path,
			ErrorCount:          r.ErrorCount,
			WarningCount:        r.WarningCount,
			FixableErrorCount:   r.FixableErrorCount,
			FixableWarningCount: r.FixableWarningCount,
			Findings:            make([]insights.Finding, 0, len(r.Messages)),
		}
		for _, m := range r.Messages {
			sev, err := insights.SeverityFromCode(m.Severity)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, m.Line, err)
			}
			fr.Findings = append(fr.Findings, insights.Finding{
				Path:     path,
				Line:     m.Line,
				Severity: sev,
				Message:  m.Message,
				RuleID:   m.RuleID,
				ID:       m.RuleID,
			})
		}
		out = append(out, fr)
	}
	return out, nil
}

func relativePath(path, baseDir string) string {
	if baseDir == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(baseDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
