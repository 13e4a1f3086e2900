package analysis

import (
	"fmt"

	"github.com/sprite-ai/medannot/internal/geom"
	"github.com/sprite-ai/medannot/internal/persist"
)

// duplicateIoU is the intersection-over-union above which two shapes of
// the same type are reported as probable duplicates.
const duplicateIoU = 0.9

// OverlapPass flags same-type shapes whose bounds nearly coincide, which is
// usually a double commit.
func OverlapPass(doc persist.Document) []Finding {
	var findings []Finding
	shapes := doc.Annotations

	for i := range shapes {
		bi, ok := shapes[i].Bounds()
		if !ok {
			continue
		}
		for j := 0; j < i; j++ {
			if shapes[j].Type != shapes[i].Type {
				continue
			}
			bj, ok := shapes[j].Bounds()
			if !ok || !geom.RectsIntersect(bi, bj) {
				continue
			}
			if iou(bi, bj) >= duplicateIoU {
				findings = append(findings, Finding{
					Pass:     "overlap",
					ShapeID:  shapes[i].ID,
					Index:    i,
					Message:  fmt.Sprintf("nearly identical to shape #%d", j+1),
					Severity: SeverityWarning,
				})
				break
			}
		}
	}
	return findings
}

func iou(a, b geom.Rect) float64 {
	w := min(a.MaxX(), b.MaxX()) - max(a.X, b.X)
	h := min(a.MaxY(), b.MaxY()) - max(a.Y, b.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	inter := w * h
	union := a.Width*a.Height + b.Width*b.Height - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
