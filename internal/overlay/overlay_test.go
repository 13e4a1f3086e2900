package overlay

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/sprite-ai/medannot/internal/editor"
	"github.com/sprite-ai/medannot/internal/geom"
	"github.com/sprite-ai/medannot/internal/model"
	"github.com/sprite-ai/medannot/internal/viewport"
)

type recorder struct {
	ops []string
}

func (r *recorder) Clear() { r.ops = append(r.ops, "clear") }

func (r *recorder) DrawRect(rect geom.Rect, st Style) {
	r.ops = append(r.ops, fmt.Sprintf("rect %s%s", st.Color, dashed(st)))
}

func (r *recorder) DrawPath(pts []geom.Point, st Style) {
	r.ops = append(r.ops, fmt.Sprintf("path %s%s n=%d", st.Color, dashed(st), len(pts)))
}

func (r *recorder) FillPath(pts []geom.Point, st Style) {
	r.ops = append(r.ops, fmt.Sprintf("fill %s", st.Color))
}

func dashed(st Style) string {
	if len(st.Dash) > 0 {
		return " dashed"
	}
	return ""
}

func TestProjectOrder(t *testing.T) {
	hover := geom.Pt(60, 60)
	sel := geom.Rect{X: 0, Y: 0, Width: 5, Height: 5}
	st := editor.State{
		Shapes: []model.AnnotationShape{
			{ID: "a", Type: model.ShapeBBox, Color: "#111", BBox: &geom.Rect{Width: 10, Height: 10}},
			{ID: "inert", Type: model.ShapePolygon, Color: "#999"},
			{ID: "b", Type: model.ShapePolygon, Points: []geom.Point{geom.Pt(0, 0), geom.Pt(9, 0), geom.Pt(9, 9), geom.Pt(0, 0)}},
		},
		Selected:      []string{"b"},
		Draft:         &model.AnnotationShape{ID: model.DraftBBoxID, Type: model.ShapeBBox, Color: "#333", BBox: &geom.Rect{Width: 3, Height: 3}},
		Polygon:       []geom.Point{geom.Pt(40, 40), geom.Pt(50, 40)},
		PolygonColor:  "#444",
		Hover:         &hover,
		SelectionRect: &sel,
		Color:         "#222",
	}

	r := &recorder{}
	Project(r, st)

	want := []string{
		"clear",
		"rect #111",
		"fill #222",
		"path #222 n=4",
		"rect #222 dashed",
		"rect #333 dashed",
		"path #444 dashed n=3",
		"rect #ffffff",
		"rect #444",
		"rect " + SelectionColor + " dashed",
	}
	if strings.Join(r.ops, "\n") != strings.Join(want, "\n") {
		t.Errorf("ops =\n%s\nwant\n%s", strings.Join(r.ops, "\n"), strings.Join(want, "\n"))
	}
}

func TestProjectEmpty(t *testing.T) {
	r := &recorder{}
	Project(r, editor.State{})
	if len(r.ops) != 1 || r.ops[0] != "clear" {
		t.Errorf("ops = %v, want [clear]", r.ops)
	}
}

func rgba(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestCanvasFillsAtNativeResolution(t *testing.T) {
	c := NewCanvas(64, 32)
	defer c.Close()
	c.Clear()
	c.DrawRect(geom.Rect{X: 10, Y: 10, Width: 20, Height: 10}, Style{Color: "#ff0000", Fill: 1})
	if err := c.Err(); err != nil {
		t.Fatalf("render error: %v", err)
	}

	img := c.Image()
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Fatalf("bounds = %v, want 64x32", b)
	}
	inside := rgba(img, 20, 15)
	if inside.A < 200 || inside.R < 200 || inside.G > 50 {
		t.Errorf("inside pixel = %v, want opaque red", inside)
	}
	if outside := rgba(img, 2, 2); outside.A != 0 {
		t.Errorf("outside pixel = %v, want transparent", outside)
	}
}

func TestRenderEncodesPNG(t *testing.T) {
	st := editor.State{Shapes: []model.AnnotationShape{
		{ID: "a", Type: model.ShapeBBox, Color: "blue", BBox: &geom.Rect{X: 4, Y: 4, Width: 8, Height: 8}},
	}}
	c := Render(st, 16, 16)
	defer c.Close()

	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("bounds = %v", b)
	}
}

func TestPresentScalesToDisplay(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	got := Present(src, viewport.Size{Width: 40, Height: 20})
	if b := got.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Errorf("bounds = %v, want 40x20", b)
	}
}

func TestComposite(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range base.Pix {
		base.Pix[i] = 0xff
	}
	over := image.NewRGBA(image.Rect(0, 0, 8, 8))
	over.Set(1, 1, color.RGBA{R: 0xff, A: 0xff})

	got := Composite(base, over)
	if c := got.RGBAAt(1, 1); c != (color.RGBA{R: 0xff, A: 0xff}) {
		t.Errorf("overlay pixel = %v", c)
	}
	if c := got.RGBAAt(5, 5); c != (color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) {
		t.Errorf("base pixel = %v", c)
	}

	small := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if b := Composite(small, over).Bounds(); b.Dx() != 8 {
		t.Errorf("scaled composite bounds = %v", b)
	}
}
