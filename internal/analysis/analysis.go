// Package analysis implements validation passes over stored annotation
// documents. Passes never modify the document.
package analysis

import (
	"fmt"
	"strings"

	"github.com/sprite-ai/medannot/internal/persist"
)

// Severity ranks a finding.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Severity) UnmarshalText(b []byte) error {
	for _, v := range []Severity{SeverityInfo, SeverityWarning, SeverityError} {
		if v.String() == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", b)
}

// Finding is one issue attached to a shape. Index is the shape's position
// in the collection; -1 means document-level.
type Finding struct {
	Pass     string   `json:"pass"`
	ShapeID  string   `json:"shape_id,omitempty"`
	Index    int      `json:"index"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (f Finding) String() string {
	loc := "document"
	if f.Index >= 0 {
		loc = fmt.Sprintf("#%d", f.Index+1)
		if f.ShapeID != "" {
			loc += " " + f.ShapeID
		}
	}
	return fmt.Sprintf("[%s] %s: %s", f.Pass, loc, f.Message)
}

// Results holds all findings from running analysis passes.
type Results struct {
	Findings []Finding
}

// ByShape returns findings grouped by shape id.
func (r *Results) ByShape() map[string][]Finding {
	m := make(map[string][]Finding)
	for _, f := range r.Findings {
		m[f.ShapeID] = append(m[f.ShapeID], f)
	}
	return m
}

// AtLeast returns findings at or above the given severity.
func (r *Results) AtLeast(min Severity) []Finding {
	var result []Finding
	for _, f := range r.Findings {
		if f.Severity >= min {
			result = append(result, f)
		}
	}
	return result
}

// MaxSeverity returns the highest severity among all findings.
func (r *Results) MaxSeverity() Severity {
	max := SeverityInfo
	for _, f := range r.Findings {
		if f.Severity > max {
			max = f.Severity
		}
	}
	return max
}

// Summary returns a one-line summary of findings.
func (r *Results) Summary() string {
	if len(r.Findings) == 0 {
		return "No issues found"
	}

	counts := make(map[Severity]int)
	for _, f := range r.Findings {
		counts[f.Severity]++
	}

	var parts []string
	for _, level := range []Severity{SeverityError, SeverityWarning, SeverityInfo} {
		if c := counts[level]; c > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c, level))
		}
	}
	return strings.Join(parts, ", ")
}

// Pass is a function that inspects a document and returns findings.
type Pass func(doc persist.Document) []Finding

// passOrder fixes the order findings are reported in.
var passOrder = []string{"identity", "geometry", "bounds", "overlap", "style"}

// PassNames maps pass names (for --skip) to their functions.
var PassNames = map[string]Pass{
	"identity": IdentityPass,
	"geometry": GeometryPass,
	"bounds":   BoundsPass,
	"overlap":  OverlapPass,
	"style":    StylePass,
}

// Run executes all passes except those named in skip and returns the
// aggregated results.
func Run(doc persist.Document, skip []string) *Results {
	skipSet := make(map[string]bool)
	for _, s := range skip {
		skipSet[s] = true
	}

	results := &Results{}

	for _, name := range passOrder {
		if skipSet[name] {
			continue
		}
		findings := PassNames[name](doc)
		results.Findings = append(results.Findings, findings...)
	}

	return results
}
