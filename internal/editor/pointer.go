package editor

import (
	"math"

	"github.com/sprite-ai/medannot/internal/geom"
	"github.com/sprite-ai/medannot/internal/logging"
	"github.com/sprite-ai/medannot/internal/model"
)

// PointerDown starts the active tool's gesture at ev.Point.
func (e *Editor) PointerDown(ev PointerEvent) {
	p := ev.Point
	switch e.session.Tool {
	case ToolSelect:
		if !ev.Extend {
			clear(e.selected)
		}
		e.dragging = true
		e.anchor = p
		e.selRect = &geom.Rect{X: p.X, Y: p.Y}

	case ToolBBox:
		e.dragging = true
		e.anchor = p
		e.pinned = e.session.Color
		e.draft = &model.AnnotationShape{
			ID:    model.DraftBBoxID,
			Type:  model.ShapeBBox,
			Color: e.pinned,
			Label: e.session.Label,
			BBox:  &geom.Rect{X: p.X, Y: p.Y},
		}

	case ToolPolygon:
		e.addVertex(p)

	case ToolFreehand:
		e.dragging = true
		e.pinned = e.session.Color
		e.draft = &model.AnnotationShape{
			ID:     model.DraftFreehandID,
			Type:   model.ShapeFreehand,
			Color:  e.pinned,
			Label:  e.session.Label,
			Points: []geom.Point{p},
		}

	case ToolErase:
		hit, ok := e.HitTest(p)
		if !ok {
			return
		}
		e.store.RemoveByIDs(hit.ID)
		delete(e.selected, hit.ID)
		logging.Logger().Debug("shape erased", "id", hit.ID)
	}
}

// PointerMove updates the gesture in progress. Outside a drag it only
// tracks the hover point used for the polygon preview.
func (e *Editor) PointerMove(ev PointerEvent) {
	p := ev.Point
	e.hover = &p
	if !e.dragging {
		return
	}
	switch e.session.Tool {
	case ToolSelect:
		r := geom.RectFromPoints(e.anchor, p)
		e.selRect = &r
	case ToolBBox:
		r := geom.RectFromPoints(e.anchor, p)
		e.draft.BBox = &r
	case ToolFreehand:
		pts := e.draft.Points
		if pts[len(pts)-1].Dist(p) >= FreehandSampleDistance {
			e.draft.Points = append(pts, p)
		}
	}
}

// PointerUp ends a drag gesture at ev.Point.
func (e *Editor) PointerUp(ev PointerEvent) {
	if !e.dragging {
		return
	}
	e.endDrag(ev)
}

// PointerLeave is a pointer-up at the last position on the surface, for
// tools that drag. It also clears the hover point.
func (e *Editor) PointerLeave(ev PointerEvent) {
	e.hover = nil
	if !e.dragging {
		return
	}
	e.endDrag(ev)
}

func (e *Editor) endDrag(ev PointerEvent) {
	p := ev.Point
	e.dragging = false
	switch e.session.Tool {
	case ToolSelect:
		e.selRect = nil
		e.finishSelection(geom.RectFromPoints(e.anchor, p), p, ev.Extend)

	case ToolBBox:
		e.draft = nil
		r := geom.RectFromPoints(e.anchor, p)
		if r.Width < MinBoxSize || r.Height < MinBoxSize {
			logging.Logger().Debug("bbox discarded", "width", r.Width, "height", r.Height)
			return
		}
		e.commit(model.AnnotationShape{Type: model.ShapeBBox, Color: e.pinned, BBox: &r})

	case ToolFreehand:
		pts := append(e.draft.Points, p)
		e.draft = nil
		if len(pts) < 2 {
			return
		}
		e.commit(model.AnnotationShape{
			Type:   model.ShapeFreehand,
			Color:  e.pinned,
			Points: geom.ClosePath(pts, FreehandCloseDistance),
		})
	}
}

func (e *Editor) finishSelection(r geom.Rect, at geom.Point, extend bool) {
	if math.Max(r.Width, r.Height) < ClickThreshold {
		hit, ok := e.HitTest(at)
		switch {
		case !ok:
			if !extend {
				clear(e.selected)
			}
		case extend:
			if e.selected[hit.ID] {
				delete(e.selected, hit.ID)
			} else {
				e.selected[hit.ID] = true
			}
		default:
			clear(e.selected)
			e.selected[hit.ID] = true
		}
		return
	}

	if !extend {
		clear(e.selected)
	}
	for _, s := range e.store.Shapes() {
		if b, ok := s.Bounds(); ok && geom.RectsIntersect(b, r) {
			e.selected[s.ID] = true
		}
	}
}

func (e *Editor) addVertex(p geom.Point) {
	if len(e.polygon) >= 3 && p.Dist(e.polygon[0]) <= PolygonCloseDistance {
		e.FinishPolygon()
		return
	}
	if len(e.polygon) == 0 {
		e.pinned = e.session.Color
	}
	e.polygon = append(e.polygon, p)
}

// HitTest returns the topmost shape under p. Shapes without geometry never
// match.
func (e *Editor) HitTest(p geom.Point) (model.AnnotationShape, bool) {
	shapes := e.store.Shapes()
	for i := len(shapes) - 1; i >= 0; i-- {
		if hits(shapes[i], p) {
			return shapes[i], true
		}
	}
	return model.AnnotationShape{}, false
}

func hits(s model.AnnotationShape, p geom.Point) bool {
	if s.BBox != nil {
		return s.BBox.Contains(p)
	}
	if len(s.Points) >= 3 && geom.PointInPolygon(p, s.Points) {
		return true
	}
	return s.Type == model.ShapeFreehand && len(s.Points) >= 2 &&
		geom.PointNearPolyline(p, s.Points, HitTolerance)
}
