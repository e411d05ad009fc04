package insights

import (
	"fmt"
	"sort"
	"strings"
)

// MaxAnnotations is the most annotations a single report can hold.
const MaxAnnotations = 1000

// RuleDetailsPrefix starts the details text of annotations that carry a rule id.
const RuleDetailsPrefix = "ESLint Rule ID: "

// Annotation is one per-finding record attached to a report. Line is omitted
// for findings without a position, such as ignored-file warnings.
type Annotation struct {
	ExternalID     string         `json:"external_id"`
	AnnotationType AnnotationType `json:"annotation_type"`
	Path           string         `json:"path"`
	Line           int            `json:"line,omitempty"`
	Summary        string         `json:"summary"`
	Details        string         `json:"details,omitempty"`
	Severity       Severity       `json:"severity"`
}

// Mapper converts findings into annotations.
type Mapper struct {
	// Sorted orders annotations by severity and caps them at Limit.
	// Unsorted output keeps file order and is never truncated here.
	Sorted bool
	// Type is the annotation type tag. Defaults to CODE_SMELL, or
	// VULNERABILITY when Sorted is set.
	Type AnnotationType
	// Limit caps sorted output. Defaults to MaxAnnotations.
	Limit int
}

// MapResult is the output of Mapper.Map.
type MapResult struct {
	Annotations []Annotation
	// Dropped counts findings removed by the sorted-mode cap.
	Dropped int
}

// Map builds one annotation per finding. batchKey scopes the external ids of
// unsorted output; it is normally the report key.
func (m Mapper) Map(results []FileResult, batchKey string) (MapResult, error) {
	findings := Flatten(results)

	if m.Sorted {
		if err := SortBySeverity(findings); err != nil {
			return MapResult{}, err
		}
	}

	var dropped int
	if m.Sorted {
		limit := m.Limit
		if limit <= 0 {
			limit = MaxAnnotations
		}
		if len(findings) > limit {
			dropped = len(findings) - limit
			findings = findings[:limit]
		}
	}

	annType := m.Type
	if annType == "" {
		annType = AnnotationCodeSmell
		if m.Sorted {
			annType = AnnotationVulnerability
		}
	}

	annotations := make([]Annotation, len(findings))
	for i, f := range findings {
		id := fmt.Sprintf("%s.%d", batchKey, i)
		if m.Sorted {
			id = fmt.Sprintf("%d:%s", i, findingID(f))
		}
		annotations[i] = Annotation{
			ExternalID:     id,
			AnnotationType: annType,
			Path:           f.Path,
			Line:           f.Line,
			Summary:        f.Message,
			Details:        annotationDetails(f),
			Severity:       f.Severity,
		}
	}

	return MapResult{Annotations: annotations, Dropped: dropped}, nil
}

// SortBySeverity stably orders findings CRITICAL, HIGH, MEDIUM, LOW. It fails
// without reordering if any finding has an unrecognized severity.
func SortBySeverity(findings []Finding) error {
	for _, f := range findings {
		if !f.Severity.Valid() {
			return &UnknownSeverityError{Severity: f.Severity, Path: f.Path, Line: f.Line}
		}
	}
	sort.SliceStable(findings, func(i, j int) bool {
		return SeverityRank(findings[i].Severity) > SeverityRank(findings[j].Severity)
	})
	return nil
}

func findingID(f Finding) string {
	if f.ID != "" {
		return f.ID
	}
	return f.RuleID
}

func annotationDetails(f Finding) string {
	if f.RuleID == "" {
		return ""
	}
	return RuleDetailsPrefix + f.RuleID
}

// RuleID returns the rule id recorded in the annotation details, or "".
func (a Annotation) RuleID() string {
	if !strings.HasPrefix(a.Details, RuleDetailsPrefix) {
		return ""
	}
	return strings.TrimPrefix(a.Details, RuleDetailsPrefix)
}
