package inkboard

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestScreenWorldRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		vp   Viewport
		p    Vec2
	}{
		{"identity", Viewport{Scale: 1}, Vec2{123, -45}},
		{"offset", Viewport{Position: Vec2{300, -120}, Scale: 1}, Vec2{10, 10}},
		{"zoomed in", Viewport{Position: Vec2{-50, 75}, Scale: 3.7}, Vec2{640, 360}},
		{"zoomed out", Viewport{Position: Vec2{12.5, 9}, Scale: 0.13}, Vec2{-999, 1e4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.vp.ScreenToWorld(tt.p)
			s := tt.vp.WorldToScreen(w)
			if !approxEqual(s.X, tt.p.X, 1e-6) || !approxEqual(s.Y, tt.p.Y, 1e-6) {
				t.Errorf("round trip %v -> %v -> %v", tt.p, w, s)
			}
		})
	}
}

func TestScreenToWorld(t *testing.T) {
	vp := Viewport{Position: Vec2{100, 50}, Scale: 2}
	w := vp.ScreenToWorld(Vec2{300, 250})
	if !approxEqual(w.X, 100, epsilon) || !approxEqual(w.Y, 100, epsilon) {
		t.Errorf("ScreenToWorld = %v, want (100,100)", w)
	}
}

func TestZoomAtKeepsPointerFixed(t *testing.T) {
	pointers := []Vec2{{0, 0}, {400, 300}, {17, 911}, {-20, 5}}
	for _, p := range pointers {
		for _, dy := range []float64{-1, 1, -120, 3} {
			vp := Viewport{Position: Vec2{37, -12}, Scale: 1.3}
			before := vp.ScreenToWorld(p)
			next := vp.ZoomAt(p, dy, 1.1, 0.1, 5)
			after := next.ScreenToWorld(p)
			if !approxEqual(before.X, after.X, 1e-9) || !approxEqual(before.Y, after.Y, 1e-9) {
				t.Errorf("pointer %v dy %v: world moved %v -> %v", p, dy, before, after)
			}
		}
	}
}

func TestZoomAtDirection(t *testing.T) {
	vp := Viewport{Scale: 1}
	if got := vp.ZoomAt(Vec2{}, -1, 1.1, 0.1, 5).Scale; !approxEqual(got, 1.1, epsilon) {
		t.Errorf("zoom in scale = %v, want 1.1", got)
	}
	if got := vp.ZoomAt(Vec2{}, 1, 1.1, 0.1, 5).Scale; !approxEqual(got, 1/1.1, epsilon) {
		t.Errorf("zoom out scale = %v, want %v", got, 1/1.1)
	}
	if got := vp.ZoomAt(Vec2{50, 50}, 0, 1.1, 0.1, 5); got != vp {
		t.Errorf("deltaY 0 changed viewport: %v", got)
	}
}

func TestZoomAtClamps(t *testing.T) {
	vp := Viewport{Scale: 4.9}
	if got := vp.ZoomAt(Vec2{}, -1, 1.1, 0.1, 5).Scale; got != 5 {
		t.Errorf("scale = %v, want clamped to 5", got)
	}
	vp = Viewport{Scale: 0.105}
	if got := vp.ZoomAt(Vec2{}, 1, 1.1, 0.1, 5).Scale; got != 0.1 {
		t.Errorf("scale = %v, want clamped to 0.1", got)
	}
}

func TestPanBy(t *testing.T) {
	vp := Viewport{Position: Vec2{10, 20}, Scale: 2}
	got := vp.PanBy(5, -7)
	if got.Position != (Vec2{5, 27}) || got.Scale != 2 {
		t.Errorf("PanBy = %v, want pos (5,27) scale 2", got)
	}
}

func TestInvertAffine(t *testing.T) {
	m := itemTransform(30, -40, 33)
	inv := invertAffine(m)
	x, y := transformPoint(m, 12, 7)
	bx, by := transformPoint(inv, x, y)
	if !approxEqual(bx, 12, 1e-9) || !approxEqual(by, 7, 1e-9) {
		t.Errorf("inverse round trip = (%v,%v), want (12,7)", bx, by)
	}
	if got := invertAffine([6]float64{0, 0, 0, 0, 5, 5}); got != identityTransform {
		t.Errorf("singular inverse = %v, want identity", got)
	}
}

func TestClientRectRotation(t *testing.T) {
	it := &Item{X: 0, Y: 0, Rotation: 90}
	r := ClientRect(it, Size{100, 50})
	// 90 degrees clockwise about the origin: width runs down +Y, height runs to -X.
	if !approxEqual(r.X, -50, 1e-9) || !approxEqual(r.Y, 0, 1e-9) ||
		!approxEqual(r.Width, 50, 1e-9) || !approxEqual(r.Height, 100, 1e-9) {
		t.Errorf("ClientRect = %+v, want {-50 0 50 100}", r)
	}

	flat := ClientRect(&Item{X: 3, Y: 4}, Size{10, 20})
	if flat != (Rect{3, 4, 10, 20}) {
		t.Errorf("ClientRect unrotated = %+v", flat)
	}
}

func TestContainsWorldPoint(t *testing.T) {
	it := &Item{X: 100, Y: 100, Rotation: 45}
	size := Size{100, 100}
	if !containsWorldPoint(it, size, Vec2{100, 150}) {
		t.Error("point on the rotated square's axis should hit")
	}
	if containsWorldPoint(it, size, Vec2{190, 110}) {
		t.Error("corner outside the rotated square should miss")
	}
	if containsWorldPoint(&Item{}, Size{}, Vec2{}) {
		t.Error("zero-size items are never hit")
	}
}
