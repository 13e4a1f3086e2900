// Package editor implements the annotation tool state machine. An Editor
// owns the committed collection for one image plus all transient
// interaction state (draft shape, in-progress polygon, selection). It is
// driven by explicit pointer events in native coordinates and by discrete
// commands, and is not safe for concurrent use except for Saving and
// EndSave.
package editor

import (
	"slices"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sprite-ai/medannot/internal/geom"
	"github.com/sprite-ai/medannot/internal/history"
	"github.com/sprite-ai/medannot/internal/logging"
	"github.com/sprite-ai/medannot/internal/model"
	"github.com/sprite-ai/medannot/internal/store"
)

// Session is the user-chosen context every transition reads: which tool is
// active, which color new shapes get and which label they carry.
type Session struct {
	Tool  Tool
	Color string
	Label string
}

// PointerEvent is one pointer sample already mapped to native pixels.
// Extend is the "add to selection" modifier.
type PointerEvent struct {
	Point  geom.Point
	Extend bool
}

// Editor is the tool state machine for a single open image.
type Editor struct {
	image    model.ImageInfo
	store    *store.Store
	session  Session
	selected map[string]bool

	// transient; cleared on tool switch
	dragging bool
	anchor   geom.Point
	pinned   string
	draft    *model.AnnotationShape
	polygon  []geom.Point
	hover    *geom.Point
	selRect  *geom.Rect

	newID    func() string
	capacity int
	saving   atomic.Bool
}

// Option configures an Editor.
type Option func(*Editor)

// WithHistoryCapacity bounds the undo stack.
func WithHistoryCapacity(n int) Option {
	return func(e *Editor) { e.capacity = n }
}

// WithIDFunc overrides shape id generation.
func WithIDFunc(f func() string) Option {
	return func(e *Editor) { e.newID = f }
}

// WithColor sets the initial drawing color.
func WithColor(c string) Option {
	return func(e *Editor) { e.session.Color = c }
}

// New returns an editor with the select tool active and no image open.
func New(opts ...Option) *Editor {
	e := &Editor{
		session:  Session{Tool: ToolSelect, Color: model.DefaultColor},
		selected: make(map[string]bool),
		newID:    uuid.NewString,
		capacity: history.DefaultCapacity,
	}
	for _, o := range opts {
		o(e)
	}
	if e.session.Color == "" {
		e.session.Color = model.DefaultColor
	}
	e.store = store.New(history.New(e.capacity))
	return e
}

// Open switches to img, seeding the collection from shapes. Draft, selection
// and both history stacks are discarded.
func (e *Editor) Open(img model.ImageInfo, shapes []model.AnnotationShape) {
	e.image = img
	e.store.Reset(shapes)
	clear(e.selected)
	e.resetTransient()
	logging.Logger().Info("image opened", "image", img.ID, "shapes", len(shapes))
}

// Image is the currently open image.
func (e *Editor) Image() model.ImageInfo { return e.image }

// Session returns the current tool, color and label.
func (e *Editor) Session() Session { return e.session }

// Tool is the active tool.
func (e *Editor) Tool() Tool { return e.session.Tool }

// SetTool activates t. All transient interaction state is dropped, even
// when t is already active.
func (e *Editor) SetTool(t Tool) {
	e.resetTransient()
	e.session.Tool = t
	logging.Logger().Debug("tool changed", "tool", t)
}

// SetColor changes the palette color. A draw already in progress keeps the
// color it started with.
func (e *Editor) SetColor(c string) {
	if c == "" {
		c = model.DefaultColor
	}
	e.session.Color = c
}

// SetLabel sets the label attached to subsequently committed shapes.
func (e *Editor) SetLabel(label string) { e.session.Label = label }

func (e *Editor) resetTransient() {
	e.dragging = false
	e.anchor = geom.Point{}
	e.pinned = ""
	e.draft = nil
	e.polygon = nil
	e.hover = nil
	e.selRect = nil
}

// Shapes returns the committed collection in draw order.
func (e *Editor) Shapes() []model.AnnotationShape { return e.store.Shapes() }

// Selected returns selected ids in collection order.
func (e *Editor) Selected() []string {
	var ids []string
	for _, s := range e.store.Shapes() {
		if e.selected[s.ID] {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// IsSelected reports whether id is in the selection.
func (e *Editor) IsSelected(id string) bool { return e.selected[id] }

// Draft returns the uncommitted shape being drawn, if any.
func (e *Editor) Draft() (model.AnnotationShape, bool) {
	if e.draft == nil {
		return model.AnnotationShape{}, false
	}
	return e.draft.Clone(), true
}

// PolygonPoints returns the in-progress polygon vertices.
func (e *Editor) PolygonPoints() []geom.Point { return slices.Clone(e.polygon) }

// SelectionRect returns the active selection drag rectangle.
func (e *Editor) SelectionRect() (geom.Rect, bool) {
	if e.selRect == nil {
		return geom.Rect{}, false
	}
	return *e.selRect, true
}

func (e *Editor) CanUndo() bool {
	return e.session.Tool == ToolPolygon && len(e.polygon) > 0 || e.store.CanUndo()
}

func (e *Editor) CanRedo() bool { return e.store.CanRedo() }

// commit assigns a fresh id and appends shape, making it the sole
// selection.
func (e *Editor) commit(shape model.AnnotationShape) {
	shape.ID = e.newID()
	if shape.Label == "" {
		shape.Label = e.session.Label
	}
	e.store.Add(shape)
	clear(e.selected)
	e.selected[shape.ID] = true
	logging.Logger().Debug("shape committed", "id", shape.ID, "type", shape.Type, "color", shape.Color)
}

// pruneSelection drops ids no longer present in the collection.
func (e *Editor) pruneSelection() {
	present := make(map[string]bool, e.store.Len())
	for _, s := range e.store.Shapes() {
		present[s.ID] = true
	}
	for id := range e.selected {
		if !present[id] {
			delete(e.selected, id)
		}
	}
}
