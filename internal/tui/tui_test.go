package tui

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sprite-ai/medannot/internal/editor"
	"github.com/sprite-ai/medannot/internal/geom"
	"github.com/sprite-ai/medannot/internal/model"
	"github.com/sprite-ai/medannot/internal/overlay"
	"github.com/sprite-ai/medannot/internal/viewport"
)

type fakeSaver struct {
	block chan struct{}
	got   []model.AnnotationShape
	err   error
}

func (f *fakeSaver) SaveAnnotations(_ context.Context, _ model.ImageInfo, shapes []model.AnnotationShape) (model.SaveResult, error) {
	if f.block != nil {
		<-f.block
	}
	f.got = shapes
	if f.err != nil {
		return model.SaveResult{}, f.err
	}
	return model.SaveResult{AnnotationCount: len(shapes)}, nil
}

// setupModel opens a 200x100 image in a 102x54 terminal. The canvas is
// 100x25 cells at origin (1,2): one cell is 2 native pixels wide and 4 tall.
func setupModel(t *testing.T, saver editor.Saver) Model {
	t.Helper()
	n := 0
	ed := editor.New(editor.WithIDFunc(func() string {
		n++
		return strings.Repeat("s", n)
	}))
	ed.Open(model.ImageInfo{ID: "scan", Width: 200, Height: 100}, nil)
	m := New(ed, saver, nil)
	newM, _ := m.Update(tea.WindowSizeMsg{Width: 102, Height: 54})
	return newM.(Model)
}

func press(m Model, s string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch s {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	newM, cmd := m.Update(msg)
	return newM.(Model), cmd
}

func mouse(m Model, action tea.MouseAction, x, y int) Model {
	newM, _ := m.Update(tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft})
	return newM.(Model)
}

func drawBox(m Model) Model {
	m, _ = press(m, "b")
	m = mouse(m, tea.MouseActionPress, 11, 4)
	m = mouse(m, tea.MouseActionMotion, 21, 9)
	return mouse(m, tea.MouseActionRelease, 21, 9)
}

func TestCanvasMapping(t *testing.T) {
	m := setupModel(t, nil)
	mp := m.mapper()
	if mp.Displayed != (viewport.Size{Width: 100, Height: 25}) {
		t.Fatalf("displayed = %+v", mp.Displayed)
	}
	got := mp.ToNative(geom.Pt(11.5, 4.5))
	if got != geom.Pt(21, 10) {
		t.Errorf("ToNative = %+v, want (21,10)", got)
	}
}

func TestToolKeys(t *testing.T) {
	m := setupModel(t, nil)
	tests := []struct {
		key  string
		want editor.Tool
	}{
		{"b", editor.ToolBBox},
		{"p", editor.ToolPolygon},
		{"f", editor.ToolFreehand},
		{"e", editor.ToolErase},
		{"s", editor.ToolSelect},
	}
	for _, tt := range tests {
		m, _ = press(m, tt.key)
		if m.ed.Tool() != tt.want {
			t.Errorf("key %q: tool = %v, want %v", tt.key, m.ed.Tool(), tt.want)
		}
	}
}

func TestPaletteKey(t *testing.T) {
	m := setupModel(t, nil)
	m, _ = press(m, "3")
	if got := m.ed.Session().Color; got != model.DefaultPalette[2] {
		t.Errorf("color = %q, want %q", got, model.DefaultPalette[2])
	}
	m, _ = press(m, "9") // not bound
	if got := m.ed.Session().Color; got != model.DefaultPalette[2] {
		t.Errorf("color changed to %q", got)
	}
}

func TestMouseDrawsBox(t *testing.T) {
	m := drawBox(setupModel(t, nil))

	shapes := m.ed.Shapes()
	if len(shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(shapes))
	}
	want := geom.Rect{X: 21, Y: 10, Width: 20, Height: 20}
	if shapes[0].BBox == nil || *shapes[0].BBox != want {
		t.Errorf("bbox = %+v, want %+v", shapes[0].BBox, want)
	}
}

func TestMouseOutsideCanvasIgnored(t *testing.T) {
	m := setupModel(t, nil)
	m, _ = press(m, "b")
	m = mouse(m, tea.MouseActionPress, 0, 0)
	m = mouse(m, tea.MouseActionMotion, 30, 20)
	m = mouse(m, tea.MouseActionRelease, 30, 20)
	if n := len(m.ed.Shapes()); n != 0 {
		t.Errorf("press on title bar drew %d shapes", n)
	}
}

func TestLeavingCanvasEndsDrag(t *testing.T) {
	m := setupModel(t, nil)
	m, _ = press(m, "b")
	m = mouse(m, tea.MouseActionPress, 11, 4)
	m = mouse(m, tea.MouseActionMotion, 21, 9)
	m = mouse(m, tea.MouseActionMotion, 21, 40) // below the canvas
	if _, ok := m.ed.Draft(); ok {
		t.Error("draft should end when the pointer leaves")
	}
	if n := len(m.ed.Shapes()); n != 1 {
		t.Errorf("expected leave to commit, got %d shapes", n)
	}
}

func TestUndoRedoDeleteKeys(t *testing.T) {
	m := drawBox(setupModel(t, nil))

	m, _ = press(m, "u")
	if n := len(m.ed.Shapes()); n != 0 {
		t.Fatalf("after undo: %d shapes", n)
	}
	m, _ = press(m, "U")
	if n := len(m.ed.Shapes()); n != 1 {
		t.Fatalf("after redo: %d shapes", n)
	}

	m, _ = press(m, "esc")
	if len(m.ed.Selected()) != 0 {
		t.Error("esc should clear the selection")
	}
	m, _ = press(m, "a")
	m, _ = press(m, "x")
	if n := len(m.ed.Shapes()); n != 0 {
		t.Errorf("after delete: %d shapes", n)
	}
}

func TestPolygonKeys(t *testing.T) {
	m := setupModel(t, nil)
	m, _ = press(m, "p")
	for _, c := range [][2]int{{11, 4}, {41, 4}, {41, 14}, {11, 14}} {
		m = mouse(m, tea.MouseActionPress, c[0], c[1])
		m = mouse(m, tea.MouseActionRelease, c[0], c[1])
	}
	if n := len(m.ed.PolygonPoints()); n != 4 {
		t.Fatalf("expected 4 vertices, got %d", n)
	}
	newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = newM.(Model)
	if n := len(m.ed.PolygonPoints()); n != 3 {
		t.Fatalf("backspace: expected 3 vertices, got %d", n)
	}
	m, _ = press(m, "enter")
	shapes := m.ed.Shapes()
	if len(shapes) != 1 || shapes[0].Type != model.ShapePolygon {
		t.Fatalf("expected committed polygon, got %+v", shapes)
	}
}

func TestLabelPrompt(t *testing.T) {
	m := drawBox(setupModel(t, nil))

	m, _ = press(m, "l")
	if !m.labeling {
		t.Fatal("expected label prompt")
	}
	m, _ = press(m, "lesion")
	if m.ed.Tool() != editor.ToolBBox {
		t.Error("typing into the prompt must not switch tools")
	}
	m, _ = press(m, "enter")
	if m.labeling {
		t.Error("prompt should close on enter")
	}
	if got := m.ed.Session().Label; got != "lesion" {
		t.Errorf("session label = %q", got)
	}
	if got := m.ed.Shapes()[0].Label; got != "lesion" {
		t.Errorf("selected shape label = %q", got)
	}
}

func TestSave(t *testing.T) {
	saver := &fakeSaver{}
	m := drawBox(setupModel(t, saver))

	m, cmd := press(m, "w")
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	newM, _ := m.Update(cmd())
	m = newM.(Model)

	if m.statusErr || !strings.Contains(m.status, "saved 1") {
		t.Errorf("status = %q (err=%v)", m.status, m.statusErr)
	}
	if len(saver.got) != 1 {
		t.Errorf("saver got %d shapes", len(saver.got))
	}
	if m.ed.Saving() {
		t.Error("saving flag not cleared")
	}
}

func TestSaveFailure(t *testing.T) {
	m := setupModel(t, &fakeSaver{err: errors.New("disk full")})
	m, cmd := press(m, "w")
	newM, _ := m.Update(cmd())
	m = newM.(Model)
	if !m.statusErr || !strings.Contains(m.status, "disk full") {
		t.Errorf("status = %q (err=%v)", m.status, m.statusErr)
	}
}

func TestSaveWithoutStorage(t *testing.T) {
	m := setupModel(t, nil)
	m, cmd := press(m, "w")
	if cmd != nil || !m.statusErr {
		t.Errorf("expected error status, got %q", m.status)
	}
}

func TestQuitWaitsForSave(t *testing.T) {
	saver := &fakeSaver{block: make(chan struct{})}
	m := setupModel(t, saver)

	m, saveCmd := press(m, "w")
	m, cmd := press(m, "q")
	if cmd != nil {
		t.Fatal("quit should wait for the running save")
	}
	if _, again := press(m, "w"); again != nil {
		t.Error("second save should be refused while one runs")
	}

	close(saver.block)
	_, cmd = m.Update(saveCmd())
	if cmd == nil {
		t.Fatal("expected quit after save")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestHelpToggle(t *testing.T) {
	m := setupModel(t, nil)
	m, _ = press(m, "?")
	if !strings.Contains(m.View(), "keyboard and mouse") {
		t.Error("expected help view")
	}
	m, _ = press(m, "?")
	if m.showHelp {
		t.Error("help should toggle off")
	}
}

func TestView(t *testing.T) {
	m := drawBox(setupModel(t, nil))
	view := m.View()
	for _, want := range []string{"scan 200x100", "bbox", "1 shapes", "1 selected"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewBeforeResize(t *testing.T) {
	ed := editor.New()
	m := New(ed, nil, nil)
	if m.View() != "Loading..." {
		t.Errorf("unexpected view: %q", m.View())
	}
}

// --- grid ---

func TestGridRect(t *testing.T) {
	g := newGrid(6, 4, viewport.Size{Width: 6, Height: 4})
	g.DrawRect(geom.Rect{X: 0, Y: 0, Width: 5, Height: 3}, overlay.Style{Color: "#ff0000", LineWidth: 2, Fill: 0.15})

	want := "┌────┐\n" +
		"│░░░░│\n" +
		"│░░░░│\n" +
		"└────┘"
	if got := g.plain(); got != want {
		t.Errorf("grid:\n%s\nwant:\n%s", got, want)
	}
}

func TestGridMarkerAndPath(t *testing.T) {
	g := newGrid(5, 5, viewport.Size{Width: 10, Height: 10})
	g.DrawPath([]geom.Point{{X: 0, Y: 0}, {X: 8, Y: 8}}, overlay.Style{Color: "red", LineWidth: 2})
	g.DrawRect(geom.Rect{X: 4, Y: 0, Width: 1, Height: 1}, overlay.Style{Color: "red", LineWidth: 1, Fill: 1})

	lines := strings.Split(g.plain(), "\n")
	for i := 0; i < 5; i++ {
		if []rune(lines[i])[i] != '•' {
			t.Errorf("row %d: diagonal cell missing: %q", i, lines[i])
		}
	}
	if []rune(lines[0])[2] != '■' {
		t.Errorf("marker missing: %q", lines[0])
	}
}

func TestGridFillPath(t *testing.T) {
	g := newGrid(4, 4, viewport.Size{Width: 4, Height: 4})
	tri := []geom.Point{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 4}}
	g.FillPath(tri, overlay.Style{Color: "red", Fill: 0.3})

	if g.at(0, 0).ch != '░' {
		t.Error("corner inside triangle should be shaded")
	}
	if g.at(3, 3).ch != 0 {
		t.Error("cell outside triangle should be empty")
	}
}

func TestGridClipsOutOfBounds(t *testing.T) {
	g := newGrid(3, 3, viewport.Size{Width: 3, Height: 3})
	g.DrawRect(geom.Rect{X: -5, Y: -5, Width: 20, Height: 20}, overlay.Style{Color: "red", LineWidth: 2})
	g.DrawPath([]geom.Point{{X: -10, Y: 1}, {X: 10, Y: 1}}, overlay.Style{Color: "red", LineWidth: 2})
	if got := g.plain(); got != "   \n•••\n   " {
		t.Errorf("unexpected grid:\n%s", got)
	}
}

func TestGridHugeShapes(t *testing.T) {
	native := viewport.Size{Width: 100, Height: 100}

	g := newGrid(40, 20, native)
	g.DrawRect(geom.Rect{X: 0, Y: 0, Width: 1e6, Height: 1e6}, overlay.Style{Color: "red", LineWidth: 2, Fill: 0.15})
	cases := []struct {
		c, r int
		want rune
	}{
		{0, 0, '┌'},
		{39, 0, '─'},
		{0, 19, '│'},
		{39, 19, '░'},
	}
	for _, tc := range cases {
		if got := g.at(tc.c, tc.r).ch; got != tc.want {
			t.Errorf("cell (%d,%d) = %q, want %q", tc.c, tc.r, got, tc.want)
		}
	}

	g = newGrid(40, 20, native)
	g.DrawPath([]geom.Point{{X: 0, Y: 0}, {X: 1e9, Y: 1e9}}, overlay.Style{Color: "red", LineWidth: 2})
	if n := strings.Count(g.plain(), "•"); n != 40 {
		t.Errorf("expected one dot per column, got %d", n)
	}

	g = newGrid(40, 20, native)
	g.DrawPath([]geom.Point{{X: math.NaN(), Y: 0}, {X: 10, Y: 10}}, overlay.Style{Color: "red", LineWidth: 2})
	g.DrawRect(geom.Rect{X: -1e12, Y: 5e11, Width: 1, Height: 1}, overlay.Style{Color: "red", LineWidth: 1, Fill: 1})
	if strings.TrimSpace(g.plain()) != "" {
		t.Errorf("non-finite and far-away shapes should draw nothing:\n%s", g.plain())
	}
}
