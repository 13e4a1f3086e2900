package editor

import (
	"github.com/sprite-ai/medannot/internal/geom"
	"github.com/sprite-ai/medannot/internal/model"
)

// State is a read-only snapshot of everything a view needs to draw the
// editor. It shares no memory with the Editor.
type State struct {
	Image         model.ImageInfo         `json:"image"`
	Shapes        []model.AnnotationShape `json:"shapes"`
	Selected      []string                `json:"selected"`
	Draft         *model.AnnotationShape  `json:"draft,omitempty"`
	Polygon       []geom.Point            `json:"polygon,omitempty"`
	PolygonColor  string                  `json:"polygon_color,omitempty"`
	Hover         *geom.Point             `json:"hover,omitempty"`
	SelectionRect *geom.Rect              `json:"selection_rect,omitempty"`
	Tool          Tool                    `json:"tool"`
	Color         string                  `json:"color"`
	Label         string                  `json:"label,omitempty"`
	CanUndo       bool                    `json:"can_undo"`
	CanRedo       bool                    `json:"can_redo"`
	Saving        bool                    `json:"saving"`
}

// IsSelected reports whether id is in the snapshot's selection.
func (s State) IsSelected(id string) bool {
	for _, sel := range s.Selected {
		if sel == id {
			return true
		}
	}
	return false
}

// State captures the editor for rendering or transmission.
func (e *Editor) State() State {
	st := State{
		Image:    e.image,
		Shapes:   e.store.Shapes(),
		Selected: e.Selected(),
		Polygon:  e.PolygonPoints(),
		Tool:     e.session.Tool,
		Color:    e.session.Color,
		Label:    e.session.Label,
		CanUndo:  e.CanUndo(),
		CanRedo:  e.CanRedo(),
		Saving:   e.Saving(),
	}
	if st.Selected == nil {
		st.Selected = []string{}
	}
	if d, ok := e.Draft(); ok {
		st.Draft = &d
	}
	if len(e.polygon) > 0 {
		st.PolygonColor = e.pinned
		if e.hover != nil {
			h := *e.hover
			st.Hover = &h
		}
	}
	if r, ok := e.SelectionRect(); ok {
		st.SelectionRect = &r
	}
	return st
}
