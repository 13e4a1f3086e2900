package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sprite-ai/medannot/internal/geom"
	"github.com/sprite-ai/medannot/internal/model"
	"github.com/sprite-ai/medannot/internal/overlay"
	"github.com/sprite-ai/medannot/internal/viewport"
)

// cell is one character of the canvas.
type cell struct {
	ch    rune
	color string
	shade bool // fill only; strokes draw over it
}

// border glyphs: horizontal, vertical, then the four corners.
type glyphs struct {
	h, v, tl, tr, bl, br rune
}

var (
	thinGlyphs   = glyphs{'─', '│', '┌', '┐', '└', '┘'}
	thickGlyphs  = glyphs{'━', '┃', '┏', '┓', '┗', '┛'}
	dashedGlyphs = glyphs{'╌', '╎', '┌', '┐', '└', '┘'}
)

// grid rasterizes the overlay onto terminal cells. It implements
// overlay.Renderer; mapper converts native pixels to cell units with the
// grid's top-left cell at the origin.
type grid struct {
	cols, rows int
	cells      []cell
	mapper     viewport.Mapper
}

var _ overlay.Renderer = (*grid)(nil)

func newGrid(cols, rows int, native viewport.Size) *grid {
	cols, rows = max(cols, 0), max(rows, 0)
	return &grid{
		cols:   cols,
		rows:   rows,
		cells:  make([]cell, cols*rows),
		mapper: viewport.New(viewport.Size{Width: float64(cols), Height: float64(rows)}, native),
	}
}

func (g *grid) Clear() { clear(g.cells) }

func (g *grid) at(c, r int) *cell {
	if c < 0 || r < 0 || c >= g.cols || r >= g.rows {
		return nil
	}
	return &g.cells[r*g.cols+c]
}

func (g *grid) set(c, r int, ch rune, color string) {
	if p := g.at(c, r); p != nil {
		*p = cell{ch: ch, color: color}
	}
}

func (g *grid) shade(c, r int, color string) {
	if p := g.at(c, r); p != nil && (p.ch == 0 || p.shade) {
		*p = cell{ch: '░', color: color, shade: true}
	}
}

// toCell maps a native point to a cell, clamped to one cell beyond each
// edge so shapes far outside the image cost no more than the grid itself.
func (g *grid) toCell(p geom.Point) (int, int) {
	d := g.mapper.ToDisplayed(p)
	return clampCell(d.X, g.cols), clampCell(d.Y, g.rows)
}

func clampCell(v float64, n int) int {
	switch {
	case math.IsNaN(v) || v < -1:
		return -1
	case v >= float64(n):
		return n
	}
	return int(math.Floor(v))
}

func (g *grid) DrawRect(r geom.Rect, st overlay.Style) {
	x0, y0 := g.toCell(geom.Pt(r.X, r.Y))
	x1, y1 := g.toCell(geom.Pt(r.MaxX(), r.MaxY()))
	x1, y1 = max(x1, x0), max(y1, y0)

	// Markers and anything smaller than a cell collapse to one glyph.
	if st.Fill >= 1 || (x0 == x1 && y0 == y1) {
		ch := '■'
		if st.Fill < 1 {
			ch = '□'
		}
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				g.set(x, y, ch, st.Color)
			}
		}
		return
	}

	if st.Fill > 0 {
		for y := y0 + 1; y < y1; y++ {
			for x := x0 + 1; x < x1; x++ {
				g.shade(x, y, st.Color)
			}
		}
	}
	if st.LineWidth <= 0 {
		return
	}
	gl := thinGlyphs
	switch {
	case len(st.Dash) > 0:
		gl = dashedGlyphs
	case st.LineWidth >= overlay.SelectedStrokeWidth:
		gl = thickGlyphs
	}
	for x := x0 + 1; x < x1; x++ {
		g.set(x, y0, gl.h, st.Color)
		g.set(x, y1, gl.h, st.Color)
	}
	for y := y0 + 1; y < y1; y++ {
		g.set(x0, y, gl.v, st.Color)
		g.set(x1, y, gl.v, st.Color)
	}
	g.set(x0, y0, gl.tl, st.Color)
	g.set(x1, y0, gl.tr, st.Color)
	g.set(x0, y1, gl.bl, st.Color)
	g.set(x1, y1, gl.br, st.Color)
}

func (g *grid) DrawPath(pts []geom.Point, st overlay.Style) {
	if len(pts) < 2 || st.LineWidth <= 0 {
		return
	}
	ch := '•'
	switch {
	case len(st.Dash) > 0:
		ch = '·'
	case st.LineWidth >= overlay.SelectedStrokeWidth:
		ch = '●'
	}
	for i := 1; i < len(pts); i++ {
		a, b, ok := g.clip(g.mapper.ToDisplayed(pts[i-1]), g.mapper.ToDisplayed(pts[i]))
		if !ok {
			continue
		}
		g.line(int(math.Floor(a.X)), int(math.Floor(a.Y)), int(math.Floor(b.X)), int(math.Floor(b.Y)), ch, st.Color)
	}
}

// clip trims a displayed-space segment to the grid plus a one cell margin
// (Liang-Barsky). Segments with non-finite ends are dropped.
func (g *grid) clip(a, b geom.Point) (geom.Point, geom.Point, bool) {
	for _, v := range []float64{a.X, a.Y, b.X, b.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return a, b, false
		}
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, a.X + 1},
		{dx, float64(g.cols+1) - a.X},
		{-dy, a.Y + 1},
		{dy, float64(g.rows+1) - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = max(t0, t)
		} else {
			t1 = min(t1, t)
		}
		if t0 > t1 {
			return a, b, false
		}
	}
	return geom.Pt(a.X+t0*dx, a.Y+t0*dy), geom.Pt(a.X+t1*dx, a.Y+t1*dy), true
}

// line plots a Bresenham segment.
func (g *grid) line(x0, y0, x1, y1 int, ch rune, color string) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		g.set(x0, y0, ch, color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// FillPath shades every cell whose centre lies inside the polygon.
func (g *grid) FillPath(pts []geom.Point, st overlay.Style) {
	if len(pts) < 3 || st.Fill <= 0 {
		return
	}
	b, ok := geom.PointsBounds(pts)
	if !ok {
		return
	}
	x0, y0 := g.toCell(geom.Pt(b.X, b.Y))
	x1, y1 := g.toCell(geom.Pt(b.MaxX(), b.MaxY()))
	for y := max(y0, 0); y <= min(y1, g.rows-1); y++ {
		for x := max(x0, 0); x <= min(x1, g.cols-1); x++ {
			if geom.PointInPolygon(g.mapper.ToNative(geom.Pt(float64(x)+0.5, float64(y)+0.5)), pts) {
				g.shade(x, y, st.Color)
			}
		}
	}
}

// String renders the grid as styled terminal lines.
func (g *grid) String() string {
	var b strings.Builder
	styles := make(map[string]lipgloss.Style)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			cl := g.cells[r*g.cols+c]
			if cl.ch == 0 {
				b.WriteByte(' ')
				continue
			}
			st, ok := styles[cl.color]
			if !ok {
				hex := model.HexString(model.ResolveColor(cl.color, model.DefaultColor))
				st = lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
				styles[cl.color] = st
			}
			b.WriteString(st.Render(string(cl.ch)))
		}
		if r < g.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// plain returns the grid's glyphs without styling.
func (g *grid) plain() string {
	var b strings.Builder
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if ch := g.cells[r*g.cols+c].ch; ch != 0 {
				b.WriteRune(ch)
			} else {
				b.WriteByte(' ')
			}
		}
		if r < g.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
