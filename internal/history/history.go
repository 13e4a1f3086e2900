// Package history keeps bounded undo/redo snapshots of the annotation list.
package history

import "github.com/sprite-ai/medannot/internal/model"

// DefaultCapacity is the number of undo snapshots retained.
const DefaultCapacity = 50

// History is a pair of snapshot stacks. Snapshots are deep copies, so later
// edits to the live collection never leak into them. The undo stack drops
// its oldest entry once capacity is exceeded.
type History struct {
	undo     [][]model.AnnotationShape
	redo     [][]model.AnnotationShape
	capacity int
}

// New returns a History holding at most capacity undo snapshots. Values
// below one select DefaultCapacity.
func New(capacity int) *History {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &History{capacity: capacity}
}

// Push records shapes as the state to return to on the next Undo. Any redo
// entries are discarded.
func (h *History) Push(shapes []model.AnnotationShape) {
	h.undo = append(h.undo, model.CloneShapes(shapes))
	if len(h.undo) > h.capacity {
		h.undo = h.undo[1:]
	}
	h.redo = nil
}

// Undo pops the most recent snapshot. current is kept for Redo. ok is false
// when there is nothing to undo.
func (h *History) Undo(current []model.AnnotationShape) (shapes []model.AnnotationShape, ok bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	last := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, model.CloneShapes(current))
	return model.CloneShapes(last), true
}

// Redo reverses the last Undo.
func (h *History) Redo(current []model.AnnotationShape) (shapes []model.AnnotationShape, ok bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, model.CloneShapes(current))
	if len(h.undo) > h.capacity {
		h.undo = h.undo[1:]
	}
	return model.CloneShapes(next), true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Len is the number of undo snapshots held.
func (h *History) Len() int { return len(h.undo) }

// Capacity is the undo bound.
func (h *History) Capacity() int { return h.capacity }

// Clear drops both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}
