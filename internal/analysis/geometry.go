package analysis

import (
	"fmt"
	"math"

	"github.com/sprite-ai/medannot/internal/editor"
	"github.com/sprite-ai/medannot/internal/geom"
	"github.com/sprite-ai/medannot/internal/model"
	"github.com/sprite-ai/medannot/internal/persist"
)

// GeometryPass checks that each shape carries the geometry its type needs.
func GeometryPass(doc persist.Document) []Finding {
	var findings []Finding

	add := func(i int, s model.AnnotationShape, sev Severity, format string, args ...any) {
		findings = append(findings, Finding{
			Pass:     "geometry",
			ShapeID:  s.ID,
			Index:    i,
			Message:  fmt.Sprintf(format, args...),
			Severity: sev,
		})
	}

	for i, s := range doc.Annotations {
		if !finite(s) {
			add(i, s, SeverityError, "coordinates are not finite")
			continue
		}
		switch s.Type {
		case model.ShapeBBox:
			if s.BBox == nil {
				add(i, s, SeverityError, "bbox has no rectangle")
				continue
			}
			if s.BBox.Width < editor.MinBoxSize || s.BBox.Height < editor.MinBoxSize {
				add(i, s, SeverityWarning, "bbox %.0fx%.0f is below the %v px minimum", s.BBox.Width, s.BBox.Height, editor.MinBoxSize)
			}
		case model.ShapePolygon:
			if n := len(s.Points); n < 3 {
				add(i, s, SeverityError, "polygon has %d vertices, needs at least 3", n)
			}
		case model.ShapeFreehand:
			if n := len(s.Points); n < 2 {
				add(i, s, SeverityError, "freehand path has %d points, needs at least 2", n)
			}
		}
	}

	return findings
}

func finite(s model.AnnotationShape) bool {
	ok := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
	if r := s.BBox; r != nil && !(ok(r.X) && ok(r.Y) && ok(r.Width) && ok(r.Height)) {
		return false
	}
	for _, p := range s.Points {
		if !ok(p.X) || !ok(p.Y) {
			return false
		}
	}
	return true
}

// BoundsPass flags shapes that leave the image. It needs the image size and
// is silent without one.
func BoundsPass(doc persist.Document) []Finding {
	if doc.Image.Width <= 0 || doc.Image.Height <= 0 {
		return nil
	}
	img := geom.Rect{Width: float64(doc.Image.Width), Height: float64(doc.Image.Height)}

	var findings []Finding
	for i, s := range doc.Annotations {
		b, ok := s.Bounds()
		if !ok {
			continue
		}
		switch {
		case b.MaxX() < 0 || b.MaxY() < 0 || b.X > img.Width || b.Y > img.Height:
			findings = append(findings, Finding{
				Pass:     "bounds",
				ShapeID:  s.ID,
				Index:    i,
				Message:  "shape lies entirely outside the image",
				Severity: SeverityError,
			})
		case b.X < 0 || b.Y < 0 || b.MaxX() > img.Width || b.MaxY() > img.Height:
			findings = append(findings, Finding{
				Pass:     "bounds",
				ShapeID:  s.ID,
				Index:    i,
				Message:  fmt.Sprintf("shape extends past the %dx%d image", doc.Image.Width, doc.Image.Height),
				Severity: SeverityWarning,
			})
		}
	}
	return findings
}
