package geom

import (
	"math"
	"testing"
)

func square() []Point {
	return []Point{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}
}

func TestPointInPolygon(t *testing.T) {
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"center", Pt(5, 5), true},
		{"outside right", Pt(15, 5), false},
		{"outside above", Pt(5, -1), false},
		{"left edge", Pt(0, 5), true},
		{"right edge", Pt(10, 5), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointInPolygon(tt.p, square()); got != tt.want {
				t.Errorf("PointInPolygon(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestPointInPolygonDegenerate(t *testing.T) {
	if PointInPolygon(Pt(1, 1), []Point{Pt(0, 0), Pt(5, 5)}) {
		t.Error("two-point polygon should contain nothing")
	}
	// Horizontal edges must not blow up the ray cast.
	flat := []Point{Pt(0, 0), Pt(10, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}
	if !PointInPolygon(Pt(5, 5), flat) {
		t.Error("expected point inside polygon with repeated vertex")
	}
}

func TestDistancePointToSegment(t *testing.T) {
	tests := []struct {
		name    string
		p, a, b Point
		want    float64
	}{
		{"perpendicular", Pt(5, 3), Pt(0, 0), Pt(10, 0), 3},
		{"clamped to start", Pt(-3, 4), Pt(0, 0), Pt(10, 0), 5},
		{"clamped to end", Pt(13, 4), Pt(0, 0), Pt(10, 0), 5},
		{"zero length", Pt(3, 4), Pt(0, 0), Pt(0, 0), 5},
		{"on segment", Pt(4, 0), Pt(0, 0), Pt(10, 0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistancePointToSegment(tt.p, tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if got < 0 {
				t.Errorf("distance must be non-negative, got %v", got)
			}
		})
	}
}

func TestPointNearPolyline(t *testing.T) {
	line := []Point{Pt(0, 0), Pt(20, 0), Pt(20, 20)}
	if !PointNearPolyline(Pt(10, 7), line, 8) {
		t.Error("expected (10,7) within 8 of first segment")
	}
	if !PointNearPolyline(Pt(27, 10), line, 8) {
		t.Error("expected (27,10) within 8 of second segment")
	}
	if PointNearPolyline(Pt(10, 9), line, 8) {
		t.Error("expected (10,9) outside tolerance")
	}
	if PointNearPolyline(Pt(0, 0), line[:1], 8) {
		t.Error("single point has no segments")
	}
}

func TestRectsIntersect(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"overlap", Rect{X: 5, Y: 5, Width: 10, Height: 10}, true},
		{"contained", Rect{X: 2, Y: 2, Width: 2, Height: 2}, true},
		{"touching right edge", Rect{X: 10, Y: 0, Width: 5, Height: 5}, false},
		{"touching bottom edge", Rect{X: 0, Y: 10, Width: 5, Height: 5}, false},
		{"disjoint", Rect{X: 20, Y: 20, Width: 5, Height: 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RectsIntersect(a, tt.b); got != tt.want {
				t.Errorf("RectsIntersect = %v, want %v", got, tt.want)
			}
			if got := RectsIntersect(tt.b, a); got != tt.want {
				t.Errorf("RectsIntersect (swapped) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectFromPoints(t *testing.T) {
	got := RectFromPoints(Pt(30, 25), Pt(10, 10))
	want := Rect{X: 10, Y: 10, Width: 20, Height: 15}
	if got != want {
		t.Errorf("RectFromPoints = %+v, want %+v", got, want)
	}
}

func TestPointsBounds(t *testing.T) {
	if _, ok := PointsBounds(nil); ok {
		t.Error("empty slice should have no bounds")
	}
	r, ok := PointsBounds([]Point{Pt(3, 8), Pt(-2, 4), Pt(6, 1)})
	if !ok {
		t.Fatal("expected bounds")
	}
	want := Rect{X: -2, Y: 1, Width: 8, Height: 7}
	if r != want {
		t.Errorf("PointsBounds = %+v, want %+v", r, want)
	}
}

func TestClosePath(t *testing.T) {
	t.Run("appends first point", func(t *testing.T) {
		in := []Point{Pt(0, 0), Pt(10, 0), Pt(10, 10)}
		got := ClosePath(in, 12)
		if len(got) != 4 || got[3] != Pt(0, 0) {
			t.Errorf("ClosePath = %v", got)
		}
		if len(in) != 3 {
			t.Error("input must not be modified")
		}
	})
	t.Run("snaps near last point", func(t *testing.T) {
		in := []Point{Pt(0, 0), Pt(30, 0), Pt(30, 30), Pt(3, 4)}
		got := ClosePath(in, 12)
		want := []Point{Pt(0, 0), Pt(30, 0), Pt(30, 30), Pt(0, 0)}
		if len(got) != len(want) {
			t.Fatalf("ClosePath = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("point %d = %v, want %v", i, got[i], want[i])
			}
		}
		if in[3] != Pt(3, 4) {
			t.Error("input must not be modified")
		}
	})
	t.Run("already closed", func(t *testing.T) {
		in := []Point{Pt(0, 0), Pt(10, 0), Pt(0, 0)}
		got := ClosePath(in, 12)
		if len(got) != 3 {
			t.Errorf("closed path changed: %v", got)
		}
	})
	t.Run("short path", func(t *testing.T) {
		in := []Point{Pt(1, 1)}
		if got := ClosePath(in, 12); len(got) != 1 {
			t.Errorf("single point changed: %v", got)
		}
	})
	t.Run("idempotent", func(t *testing.T) {
		once := ClosePath([]Point{Pt(0, 0), Pt(50, 0), Pt(50, 50)}, 12)
		twice := ClosePath(once, 12)
		if len(once) != len(twice) {
			t.Errorf("second close changed length: %d -> %d", len(once), len(twice))
		}
	})
}
