// Package geom holds the pure geometry used for hit testing and shape
// finalization. Everything here works in native image pixels.
package geom

import "math"

// Point is a position in native image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Rect is an axis-aligned rectangle. Width and Height are never negative
// for rectangles produced by this package.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MaxX is the right edge.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY is the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.MaxX() && p.Y >= r.Y && p.Y <= r.MaxY()
}

// Inset grows r by d on every side (shrinks it for negative d).
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// RectFromPoints returns the normalized rectangle spanned by two corners,
// regardless of drag direction.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// RectsIntersect reports whether a and b overlap. The comparison is
// strict, so rectangles that only share an edge do not intersect.
func RectsIntersect(a, b Rect) bool {
	return a.X < b.MaxX() && a.MaxX() > b.X && a.Y < b.MaxY() && a.MaxY() > b.Y
}

// PointsBounds returns the bounding box of pts. ok is false for an empty
// slice.
func PointsBounds(pts []Point) (r Rect, ok bool) {
	if len(pts) == 0 {
		return Rect{}, false
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

// PointInPolygon runs the even-odd ray cast from p towards +X. Edges whose
// endpoints straddle the ray are tested with a guarded denominator so that
// horizontal edges never divide by zero.
func PointInPolygon(p Point, poly []Point) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := range poly {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			dy := b.Y - a.Y
			if dy == 0 {
				dy = 1e-12
			}
			xCross := (b.X-a.X)*(p.Y-a.Y)/dy + a.X
			if p.X < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// DistancePointToSegment returns the shortest distance from p to the
// segment ab. A zero-length segment degrades to point distance.
func DistancePointToSegment(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Dist(Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

// PointNearPolyline reports whether p is within tol of any segment joining
// consecutive points of pts.
func PointNearPolyline(p Point, pts []Point, tol float64) bool {
	for i := 1; i < len(pts); i++ {
		if DistancePointToSegment(p, pts[i-1], pts[i]) <= tol {
			return true
		}
	}
	return false
}

// ClosePath makes the last point coincide with the first. If the path is
// already closed (or has fewer than two points) it is returned unchanged.
// When the last point lies within threshold of the first it is snapped
// onto it, otherwise the first point is appended. The input slice is
// never modified.
func ClosePath(pts []Point, threshold float64) []Point {
	if len(pts) < 2 {
		return pts
	}
	first, last := pts[0], pts[len(pts)-1]
	d := first.Dist(last)
	if d == 0 {
		return pts
	}
	n := len(pts)
	if d <= threshold {
		n--
	}
	out := make([]Point, n, n+1)
	copy(out, pts[:n])
	return append(out, first)
}
