// Package model defines the annotation data types shared across medannot.
package model

import (
	"fmt"
	"slices"

	"github.com/sprite-ai/medannot/internal/geom"
)

// ShapeType categorizes an annotation shape.
type ShapeType int

const (
	ShapeBBox ShapeType = iota
	ShapePolygon
	ShapeFreehand
)

func (t ShapeType) String() string {
	switch t {
	case ShapeBBox:
		return "bbox"
	case ShapePolygon:
		return "polygon"
	case ShapeFreehand:
		return "freehand"
	default:
		return "unknown"
	}
}

// ParseShapeType is the inverse of ShapeType.String.
func ParseShapeType(s string) (ShapeType, error) {
	switch s {
	case "bbox":
		return ShapeBBox, nil
	case "polygon":
		return ShapePolygon, nil
	case "freehand":
		return ShapeFreehand, nil
	}
	return 0, fmt.Errorf("unknown shape type %q", s)
}

func (t ShapeType) MarshalText() ([]byte, error) {
	if t < ShapeBBox || t > ShapeFreehand {
		return nil, fmt.Errorf("invalid shape type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *ShapeType) UnmarshalText(b []byte) error {
	v, err := ParseShapeType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Draft shapes are never committed under these ids.
const (
	DraftBBoxID     = "draft-bbox"
	DraftFreehandID = "draft-freehand"
	DraftPolygonID  = "draft-polygon"
)

// AnnotationShape is one committed (or draft) annotation. BBox is set for
// bounding boxes; Points for polygons and freehand strokes. Coordinates are
// native image pixels.
type AnnotationShape struct {
	ID     string       `json:"id"`
	Type   ShapeType    `json:"type"`
	Color  string       `json:"color,omitempty"`
	Label  string       `json:"label,omitempty"`
	BBox   *geom.Rect   `json:"bbox,omitempty"`
	Points []geom.Point `json:"points,omitempty"`
}

// Clone returns a deep copy so that snapshots never share mutable state.
func (s AnnotationShape) Clone() AnnotationShape {
	out := s
	if s.BBox != nil {
		r := *s.BBox
		out.BBox = &r
	}
	out.Points = slices.Clone(s.Points)
	return out
}

// Bounds returns the shape's bounding box: the stored rectangle for bounding
// boxes, or the extent of its points. ok is false when the shape has
// neither.
func (s AnnotationShape) Bounds() (geom.Rect, bool) {
	if s.BBox != nil {
		return *s.BBox, true
	}
	return geom.PointsBounds(s.Points)
}

// CloneShapes deep-copies a shape list. A nil input yields an empty,
// non-nil slice.
func CloneShapes(shapes []AnnotationShape) []AnnotationShape {
	out := make([]AnnotationShape, len(shapes))
	for i, s := range shapes {
		out[i] = s.Clone()
	}
	return out
}

// ImageInfo identifies the image under annotation and its native size.
type ImageInfo struct {
	ID     string `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Source string `json:"source,omitempty"` // path or URL of the pixels, if known
}

// SaveResult is what a persistence backend reports after a save.
type SaveResult struct {
	AnnotationCount int    `json:"annotation_count"`
	MaskRef         string `json:"mask_ref,omitempty"`
	LabelRef        string `json:"label_ref,omitempty"`
}
