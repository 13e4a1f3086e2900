// Package viewport converts between displayed (scaled) surface coordinates
// and native image pixels. It is the only place displayed-space values are
// interpreted.
package viewport

import "github.com/sprite-ai/medannot/internal/geom"

// Size is a width and height in some unit.
type Size struct {
	Width  float64
	Height float64
}

// Mapper scales a displayed surface onto an image's native pixel grid with
// independent X and Y factors. Origin is the surface's top-left corner in
// the pointer's coordinate space.
type Mapper struct {
	Origin    geom.Point
	Displayed Size
	Native    Size
}

// New returns a mapper with its origin at zero.
func New(displayed, native Size) Mapper {
	return Mapper{Displayed: displayed, Native: native}
}

// Scale returns native/displayed per axis. A degenerate displayed size maps
// one to one.
func (m Mapper) Scale() (sx, sy float64) {
	sx, sy = 1, 1
	if m.Displayed.Width > 0 && m.Native.Width > 0 {
		sx = m.Native.Width / m.Displayed.Width
	}
	if m.Displayed.Height > 0 && m.Native.Height > 0 {
		sy = m.Native.Height / m.Displayed.Height
	}
	return sx, sy
}

// ToNative maps a pointer position onto native pixels.
func (m Mapper) ToNative(p geom.Point) geom.Point {
	sx, sy := m.Scale()
	return geom.Point{X: (p.X - m.Origin.X) * sx, Y: (p.Y - m.Origin.Y) * sy}
}

// ToDisplayed is the inverse of ToNative.
func (m Mapper) ToDisplayed(p geom.Point) geom.Point {
	sx, sy := m.Scale()
	return geom.Point{X: p.X/sx + m.Origin.X, Y: p.Y/sy + m.Origin.Y}
}

// RectToDisplayed maps a native rectangle onto the displayed surface.
func (m Mapper) RectToDisplayed(r geom.Rect) geom.Rect {
	sx, sy := m.Scale()
	o := m.ToDisplayed(geom.Point{X: r.X, Y: r.Y})
	return geom.Rect{X: o.X, Y: o.Y, Width: r.Width / sx, Height: r.Height / sy}
}

// Contains reports whether a pointer position falls on the surface.
func (m Mapper) Contains(p geom.Point) bool {
	return p.X >= m.Origin.X && p.Y >= m.Origin.Y &&
		p.X < m.Origin.X+m.Displayed.Width && p.Y < m.Origin.Y+m.Displayed.Height
}

// Fit returns the largest size with native's aspect ratio that fits inside
// bounds.
func Fit(native, bounds Size) Size {
	if native.Width <= 0 || native.Height <= 0 {
		return bounds
	}
	k := min(bounds.Width/native.Width, bounds.Height/native.Height)
	return Size{Width: native.Width * k, Height: native.Height * k}
}
