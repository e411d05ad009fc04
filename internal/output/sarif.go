package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/codeinsights/internal/insights"
)

// SARIFWriter outputs annotations in SARIF v2.1.0 format.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, p *Payload) error {
	sarif := buildSARIF(p)
	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
	HelpURI          string             `json:"helpUri,omitempty"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	Level               string            `json:"level"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLocation   `json:"locations,omitempty"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

const unknownRuleID = "eslint/unknown"

func buildSARIF(p *Payload) sarifLog {
	var rules []sarifRule
	seen := make(map[string]bool)
	results := make([]sarifResult, 0, len(p.Annotations))

	for _, a := range p.Annotations {
		ruleID := a.RuleID()
		helpURI := ""
		if ruleID == "" {
			ruleID = unknownRuleID
		} else {
			helpURI = ruleHelpURI(ruleID)
		}

		if !seen[ruleID] {
			seen[ruleID] = true
			rules = append(rules, sarifRule{
				ID:               ruleID,
				ShortDescription: sarifMessage{Text: ruleID},
				DefaultConfig:    sarifDefaultConfig{Level: severityToLevel(a.Severity)},
				HelpURI:          helpURI,
			})
		}

		result := sarifResult{
			RuleID:              ruleID,
			Level:               severityToLevel(a.Severity),
			Message:             sarifMessage{Text: a.Summary},
			PartialFingerprints: map[string]string{"externalId": a.ExternalID},
		}
		loc := sarifLocation{PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{URI: a.Path},
		}}
		// SARIF lines are 1-based; ESLint uses 0 for file-level messages.
		if a.Line > 0 {
			loc.PhysicalLocation.Region = &sarifRegion{StartLine: a.Line}
		}
		result.Locations = []sarifLocation{loc}

		results = append(results, result)
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           "codeinsights",
						Version:        p.Version,
						InformationURI: "https://github.com/dshills/codeinsights",
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}
}

// severityToLevel maps annotation severity to SARIF level.
func severityToLevel(s insights.Severity) string {
	switch s {
	case insights.SeverityCritical, insights.SeverityHigh:
		return "error"
	case insights.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

// ruleHelpURI links core ESLint rules to their documentation. Plugin rules
// (containing a slash) have no stable location.
func ruleHelpURI(ruleID string) string {
	if strings.Contains(ruleID, "/") {
		return ""
	}
	return "https://eslint.org/docs/latest/rules/" + ruleID
}
