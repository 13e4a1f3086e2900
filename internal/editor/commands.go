package editor

import (
	"slices"

	"github.com/sprite-ai/medannot/internal/geom"
	"github.com/sprite-ai/medannot/internal/logging"
	"github.com/sprite-ai/medannot/internal/model"
)

// FinishPolygon commits the in-progress polygon regardless of where the
// last click landed. Fewer than three vertices is a no-op and the vertices
// are kept so the user can continue.
func (e *Editor) FinishPolygon() {
	if len(e.polygon) < 3 {
		return
	}
	pts := geom.ClosePath(slices.Clone(e.polygon), PolygonCloseDistance)
	color := e.pinned
	e.polygon = nil
	e.pinned = ""
	e.commit(model.AnnotationShape{Type: model.ShapePolygon, Color: color, Points: pts})
}

// UndoVertex pops the last in-progress polygon vertex.
func (e *Editor) UndoVertex() {
	if len(e.polygon) == 0 {
		return
	}
	e.polygon = e.polygon[:len(e.polygon)-1]
	if len(e.polygon) == 0 {
		e.pinned = ""
	}
}

// ClearPolygon abandons the in-progress polygon.
func (e *Editor) ClearPolygon() {
	e.polygon = nil
	e.pinned = ""
}

// Undo steps back one committed change. While a polygon is being placed it
// removes the last vertex instead.
func (e *Editor) Undo() {
	if e.session.Tool == ToolPolygon && len(e.polygon) > 0 {
		e.UndoVertex()
		return
	}
	if e.store.Undo() {
		e.pruneSelection()
		logging.Logger().Debug("undo", "shapes", e.store.Len())
	}
}

// Redo re-applies the most recently undone change.
func (e *Editor) Redo() {
	if e.store.Redo() {
		e.pruneSelection()
		logging.Logger().Debug("redo", "shapes", e.store.Len())
	}
}

// DeleteSelected removes every selected shape as one undoable change.
func (e *Editor) DeleteSelected() {
	ids := e.Selected()
	clear(e.selected)
	if len(ids) == 0 {
		return
	}
	n := e.store.RemoveByIDs(ids...)
	logging.Logger().Debug("deleted selection", "count", n)
}

// SelectAll selects every shape that has geometry.
func (e *Editor) SelectAll() {
	for _, s := range e.store.Shapes() {
		if _, ok := s.Bounds(); ok {
			e.selected[s.ID] = true
		}
	}
}

// ClearSelection empties the selection.
func (e *Editor) ClearSelection() { clear(e.selected) }

// RelabelSelected sets label on all selected shapes as one undoable change.
func (e *Editor) RelabelSelected(label string) {
	ids := e.Selected()
	if len(ids) == 0 {
		return
	}
	e.store.Update(ids, func(s *model.AnnotationShape) { s.Label = label })
}
