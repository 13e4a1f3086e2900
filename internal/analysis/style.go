package analysis

import (
	"fmt"

	"github.com/sprite-ai/medannot/internal/model"
	"github.com/sprite-ai/medannot/internal/persist"
)

// StylePass reports unreadable colors and unlabeled shapes.
func StylePass(doc persist.Document) []Finding {
	var findings []Finding
	for i, s := range doc.Annotations {
		if s.Color != "" {
			if _, err := model.ParseColor(s.Color); err != nil {
				findings = append(findings, Finding{
					Pass:     "style",
					ShapeID:  s.ID,
					Index:    i,
					Message:  fmt.Sprintf("color %q is not recognized; drawn as %s", s.Color, model.DefaultColor),
					Severity: SeverityWarning,
				})
			}
		}
		if s.Label == "" {
			findings = append(findings, Finding{
				Pass:     "style",
				ShapeID:  s.ID,
				Index:    i,
				Message:  "shape has no label",
				Severity: SeverityInfo,
			})
		}
	}
	return findings
}
