package inkboard

import (
	"testing"

	"github.com/tanema/gween/ease"
)

func TestCameraDefaults(t *testing.T) {
	cam := newCamera(800, 600, 0.1, 5)
	v := cam.Viewport()
	if v.Scale != 1 || v.Position != (Vec2{}) {
		t.Errorf("Viewport = %+v, want scale 1 at origin", v)
	}
	if cam.Animating() {
		t.Error("new camera should not be animating")
	}
}

func TestCameraSetViewportClamps(t *testing.T) {
	cam := newCamera(800, 600, 0.1, 5)
	cam.SetViewport(Viewport{Scale: 50})
	if got := cam.Viewport().Scale; got != 5 {
		t.Errorf("Scale = %v, want 5", got)
	}
	if !cam.takeChanged() {
		t.Error("SetViewport should mark the camera changed")
	}
	if cam.takeChanged() {
		t.Error("takeChanged should clear the flag")
	}
	cam.SetViewport(cam.Viewport())
	if cam.takeChanged() {
		t.Error("setting an identical viewport is not a change")
	}
}

func TestCameraVisibleBounds(t *testing.T) {
	cam := newCamera(800, 600, 0.1, 5)
	cam.SetViewport(Viewport{Position: Vec2{-200, -100}, Scale: 2})
	r := cam.VisibleBounds()
	if !approxEqual(r.X, 100, epsilon) || !approxEqual(r.Y, 50, epsilon) ||
		!approxEqual(r.Width, 400, epsilon) || !approxEqual(r.Height, 300, epsilon) {
		t.Errorf("VisibleBounds = %+v, want {100 50 400 300}", r)
	}
	c := cam.WorldCenter()
	if !approxEqual(c.X, 300, epsilon) || !approxEqual(c.Y, 200, epsilon) {
		t.Errorf("WorldCenter = %v, want (300,200)", c)
	}
}

func TestCameraDragBy(t *testing.T) {
	cam := newCamera(800, 600, 0.1, 5)
	cam.DragBy(30, -10)
	if got := cam.Viewport().Position; got != (Vec2{30, -10}) {
		t.Errorf("Position = %v, want (30,-10)", got)
	}
}

func TestCameraFitViewport(t *testing.T) {
	cam := newCamera(1000, 800, 0.1, 5)
	v, ok := cam.FitViewport(Rect{X: 0, Y: 0, Width: 840, Height: 320}, 80)
	if !ok {
		t.Fatal("FitViewport returned !ok")
	}
	if !approxEqual(v.Scale, 1, epsilon) {
		t.Errorf("Scale = %v, want 1", v.Scale)
	}
	center := v.WorldToScreen(Vec2{420, 160})
	if !approxEqual(center.X, 500, epsilon) || !approxEqual(center.Y, 400, epsilon) {
		t.Errorf("rect centre on screen = %v, want (500,400)", center)
	}

	if _, ok := cam.FitViewport(Rect{}, 80); ok {
		t.Error("empty rect should not fit")
	}
	small := newCamera(100, 100, 0.1, 5)
	if _, ok := small.FitViewport(Rect{Width: 10, Height: 10}, 80); ok {
		t.Error("margin larger than the screen should not fit")
	}
}

func TestCameraFitToAnimates(t *testing.T) {
	cam := newCamera(1000, 800, 0.1, 5)
	target := Rect{X: 1000, Y: 1000, Width: 420, Height: 320}
	want, _ := cam.FitViewport(target, 80)

	if !cam.FitTo(target, 80, 0.5, ease.Linear) {
		t.Fatal("FitTo returned false")
	}
	if !cam.Animating() {
		t.Fatal("expected animation")
	}
	cam.update(0.25)
	mid := cam.Viewport()
	if mid == want || mid.Scale == 1 && mid.Position == (Vec2{}) {
		t.Errorf("mid-animation viewport = %+v, want between start and %+v", mid, want)
	}
	for i := 0; i < 10 && cam.Animating(); i++ {
		cam.update(0.1)
	}
	if cam.Animating() {
		t.Fatal("animation did not finish")
	}
	if got := cam.Viewport(); got != want {
		t.Errorf("final viewport = %+v, want exactly %+v", got, want)
	}
}

func TestCameraFitToImmediate(t *testing.T) {
	cam := newCamera(1000, 800, 0.1, 5)
	target := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	if !cam.FitTo(target, 80, 0, nil) {
		t.Fatal("FitTo returned false")
	}
	if cam.Animating() {
		t.Error("zero duration should not animate")
	}
	if got := cam.Viewport().Scale; got != 5 {
		t.Errorf("Scale = %v, want clamped to 5", got)
	}
}

func TestCameraZoomStopsFit(t *testing.T) {
	cam := newCamera(1000, 800, 0.1, 5)
	cam.FitTo(Rect{Width: 2000, Height: 2000}, 80, 1, nil)
	cam.ZoomAt(Vec2{500, 400}, -1, 1.1)
	if cam.Animating() {
		t.Error("user zoom should cancel the fit animation")
	}
}
