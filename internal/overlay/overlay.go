// Package overlay projects editor state onto a drawing surface sized to the
// image's native resolution. The Renderer interface keeps the projection
// independent of the raster backend; Canvas implements it on gogpu/gg.
package overlay

import (
	"github.com/sprite-ai/medannot/internal/editor"
	"github.com/sprite-ai/medannot/internal/geom"
	"github.com/sprite-ai/medannot/internal/model"
)

// Style describes how one primitive is drawn. Fill is the fill opacity;
// zero means outline only. A zero LineWidth draws no outline.
type Style struct {
	Color     string
	LineWidth float64
	Dash      []float64
	Fill      float64
}

// Renderer is a 2D drawing surface in native image pixels.
type Renderer interface {
	Clear()
	DrawRect(r geom.Rect, st Style)
	DrawPath(pts []geom.Point, st Style)
	FillPath(pts []geom.Point, st Style)
}

// Visual parameters. None of these affect geometry.
const (
	StrokeWidth         = 2.0
	SelectedStrokeWidth = 3.0
	FillAlpha           = 0.15
	SelectedFillAlpha   = 0.35
	MarkerSize          = 6.0
	SelectionColor      = "#3b82f6"
	selectionPad        = 4.0
)

var dash = []float64{6, 4}

// Project redraws the whole overlay: committed shapes in collection order,
// then the draft, then the polygon being placed, then the selection drag
// rectangle.
func Project(r Renderer, st editor.State) {
	r.Clear()
	for _, s := range st.Shapes {
		drawShape(r, s, st.Color, st.IsSelected(s.ID), false)
	}
	if st.Draft != nil {
		drawShape(r, *st.Draft, st.Color, false, true)
	}
	drawPolygonPreview(r, st)
	if st.SelectionRect != nil {
		r.DrawRect(*st.SelectionRect, Style{Color: SelectionColor, LineWidth: 1, Dash: dash, Fill: 0.08})
	}
}

func drawShape(r Renderer, s model.AnnotationShape, fallback string, selected, draft bool) {
	bounds, ok := s.Bounds()
	if !ok {
		return
	}
	color := s.Color
	if color == "" {
		color = fallback
	}
	st := Style{Color: color, LineWidth: StrokeWidth, Fill: FillAlpha}
	switch {
	case draft:
		st.Dash = dash
		st.Fill = 0
	case selected:
		st.LineWidth = SelectedStrokeWidth
		st.Fill = SelectedFillAlpha
	}

	if s.BBox != nil {
		r.DrawRect(*s.BBox, st)
	} else {
		if len(s.Points) >= 3 && st.Fill > 0 {
			r.FillPath(s.Points, st)
		}
		r.DrawPath(s.Points, st)
	}
	if selected {
		r.DrawRect(bounds.Inset(selectionPad), Style{Color: color, LineWidth: 1, Dash: dash})
	}
}

func drawPolygonPreview(r Renderer, st editor.State) {
	if len(st.Polygon) == 0 {
		return
	}
	color := st.PolygonColor
	if color == "" {
		color = st.Color
	}
	path := st.Polygon
	if st.Hover != nil {
		path = append(path[:len(path):len(path)], *st.Hover)
	}
	if len(path) >= 2 {
		r.DrawPath(path, Style{Color: color, LineWidth: StrokeWidth, Dash: dash})
	}
	for i, p := range st.Polygon {
		size := MarkerSize
		ms := Style{Color: color, LineWidth: 1, Fill: 1}
		if i == 0 {
			size *= 1.6
			ms = Style{Color: "#ffffff", LineWidth: 2, Fill: 1}
		}
		r.DrawRect(geom.Rect{X: p.X - size/2, Y: p.Y - size/2, Width: size, Height: size}, ms)
	}
}
