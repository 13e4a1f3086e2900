// Package store owns the ordered list of committed annotations. Every
// mutating operation except ReplaceAll snapshots the previous state into
// the undo history first.
package store

import (
	"slices"

	"github.com/sprite-ai/medannot/internal/history"
	"github.com/sprite-ai/medannot/internal/model"
)

// Store is the committed annotation collection. Order is insertion order;
// later shapes are drawn on top and win hit tests.
type Store struct {
	shapes  []model.AnnotationShape
	history *history.History
}

// New returns an empty store backed by h. A nil h gets a default history.
func New(h *history.History) *Store {
	if h == nil {
		h = history.New(history.DefaultCapacity)
	}
	return &Store{history: h}
}

// Shapes returns a copy of the collection in draw order.
func (s *Store) Shapes() []model.AnnotationShape {
	return model.CloneShapes(s.shapes)
}

// Len is the number of committed shapes.
func (s *Store) Len() int { return len(s.shapes) }

// Find returns the shape with the given id.
func (s *Store) Find(id string) (model.AnnotationShape, bool) {
	for _, sh := range s.shapes {
		if sh.ID == id {
			return sh.Clone(), true
		}
	}
	return model.AnnotationShape{}, false
}

// Add appends shape.
func (s *Store) Add(shape model.AnnotationShape) {
	s.history.Push(s.shapes)
	s.shapes = append(s.shapes, shape.Clone())
}

// RemoveByIDs deletes every shape whose id is listed and reports how many
// were removed. Nothing is recorded when no id matches.
func (s *Store) RemoveByIDs(ids ...string) int {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	if !slices.ContainsFunc(s.shapes, func(sh model.AnnotationShape) bool { return drop[sh.ID] }) {
		return 0
	}
	s.history.Push(s.shapes)
	before := len(s.shapes)
	s.shapes = slices.DeleteFunc(s.shapes, func(sh model.AnnotationShape) bool { return drop[sh.ID] })
	return before - len(s.shapes)
}

// Update applies fn to every listed shape and reports how many were
// touched. fn may change anything but the id.
func (s *Store) Update(ids []string, fn func(*model.AnnotationShape)) int {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	next := model.CloneShapes(s.shapes)
	n := 0
	for i := range next {
		if want[next[i].ID] {
			id := next[i].ID
			fn(&next[i])
			next[i].ID = id
			n++
		}
	}
	if n == 0 {
		return 0
	}
	s.history.Push(s.shapes)
	s.shapes = next
	return n
}

// ReplaceAll swaps in a new collection without touching history. Used to
// seed from persisted data and to restore snapshots.
func (s *Store) ReplaceAll(shapes []model.AnnotationShape) {
	s.shapes = model.CloneShapes(shapes)
}

// Undo restores the previous snapshot.
func (s *Store) Undo() bool {
	prev, ok := s.history.Undo(s.shapes)
	if ok {
		s.shapes = prev
	}
	return ok
}

// Redo re-applies the last undone change.
func (s *Store) Redo() bool {
	next, ok := s.history.Redo(s.shapes)
	if ok {
		s.shapes = next
	}
	return ok
}

func (s *Store) CanUndo() bool { return s.history.CanUndo() }
func (s *Store) CanRedo() bool { return s.history.CanRedo() }

// Reset replaces the collection and forgets all history.
func (s *Store) Reset(shapes []model.AnnotationShape) {
	s.history.Clear()
	s.ReplaceAll(shapes)
}
