package history

import (
	"fmt"
	"testing"

	"github.com/sprite-ai/medannot/internal/geom"
	"github.com/sprite-ai/medannot/internal/model"
)

func shapes(n int) []model.AnnotationShape {
	out := make([]model.AnnotationShape, n)
	for i := range out {
		out[i] = model.AnnotationShape{
			ID:   fmt.Sprintf("s%d", i),
			Type: model.ShapeBBox,
			BBox: &geom.Rect{X: float64(i), Y: 0, Width: 10, Height: 10},
		}
	}
	return out
}

func TestUndoEmpty(t *testing.T) {
	h := New(0)
	if h.Capacity() != DefaultCapacity {
		t.Errorf("Capacity() = %d, want %d", h.Capacity(), DefaultCapacity)
	}
	if _, ok := h.Undo(nil); ok {
		t.Error("Undo on empty history should report false")
	}
	if h.CanUndo() || h.CanRedo() {
		t.Error("empty history should not offer undo or redo")
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	h := New(50)
	for i := 0; i <= 50; i++ {
		h.Push(shapes(i))
	}
	if h.Len() != 50 {
		t.Fatalf("Len() = %d, want 50", h.Len())
	}

	var got []model.AnnotationShape
	for i := 0; i < 50; i++ {
		s, ok := h.Undo(got)
		if !ok {
			t.Fatalf("undo %d failed", i)
		}
		got = s
	}
	// The empty snapshot was evicted, so the oldest reachable state has
	// one shape.
	if len(got) != 1 {
		t.Errorf("oldest snapshot has %d shapes, want 1", len(got))
	}
	if _, ok := h.Undo(got); ok {
		t.Error("51st undo should be a no-op")
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	h := New(5)
	live := shapes(1)
	h.Push(live)
	live[0].BBox.Width = 500

	restored, ok := h.Undo(live)
	if !ok {
		t.Fatal("undo failed")
	}
	if restored[0].BBox.Width != 10 {
		t.Errorf("snapshot mutated through live slice: width = %v", restored[0].BBox.Width)
	}
}

func TestRedo(t *testing.T) {
	h := New(5)
	h.Push(shapes(0))
	current := shapes(1)

	prev, ok := h.Undo(current)
	if !ok || len(prev) != 0 {
		t.Fatalf("undo = %v, %v", prev, ok)
	}
	if !h.CanRedo() {
		t.Fatal("expected redo to be available")
	}
	next, ok := h.Redo(prev)
	if !ok || len(next) != 1 {
		t.Fatalf("redo = %v, %v", next, ok)
	}
	if !h.CanUndo() {
		t.Error("redo should make undo available again")
	}

	h.Push(next)
	if h.CanRedo() {
		t.Error("push should clear redo stack")
	}
}
