package analysis

import (
	"fmt"

	"github.com/sprite-ai/medannot/internal/model"
	"github.com/sprite-ai/medannot/internal/persist"
)

// IdentityPass flags missing, duplicated and draft shape ids.
func IdentityPass(doc persist.Document) []Finding {
	var findings []Finding
	seen := make(map[string]int)

	for i, s := range doc.Annotations {
		switch s.ID {
		case "":
			findings = append(findings, Finding{
				Pass:     "identity",
				Index:    i,
				Message:  "shape has no id",
				Severity: SeverityError,
			})
			continue
		case model.DraftBBoxID, model.DraftFreehandID, model.DraftPolygonID:
			findings = append(findings, Finding{
				Pass:     "identity",
				ShapeID:  s.ID,
				Index:    i,
				Message:  "draft shape was stored",
				Severity: SeverityError,
			})
		}
		if first, dup := seen[s.ID]; dup {
			findings = append(findings, Finding{
				Pass:     "identity",
				ShapeID:  s.ID,
				Index:    i,
				Message:  fmt.Sprintf("id already used by shape #%d", first+1),
				Severity: SeverityError,
			})
			continue
		}
		seen[s.ID] = i
	}

	return findings
}
