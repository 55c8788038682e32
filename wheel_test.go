package inkboard

import "testing"

func TestWheelTrackpad(t *testing.T) {
	b := newTestBoard(t)

	if !b.Wheel(WheelEvent{X: 500, Y: 400, DeltaX: 10, DeltaY: 20}) {
		t.Fatal("plain scroll should pan")
	}
	if got := b.Viewport(); got.Position != (Vec2{-10, -20}) || got.Scale != 1 {
		t.Errorf("viewport = %+v, want pan by (-10,-20)", got)
	}

	pointer := Vec2{500, 400}
	before := b.ScreenToWorld(pointer)
	if !b.Wheel(WheelEvent{X: pointer.X, Y: pointer.Y, DeltaY: -3, Modifiers: ModCtrl}) {
		t.Fatal("ctrl+scroll should zoom")
	}
	if got := b.Viewport().Scale; !approxEqual(got, 1.1, epsilon) {
		t.Errorf("Scale = %v, want 1.1", got)
	}
	after := b.ScreenToWorld(pointer)
	if !approxEqual(before.X, after.X, 1e-9) || !approxEqual(before.Y, after.Y, 1e-9) {
		t.Errorf("world point under pointer moved: %v -> %v", before, after)
	}

	if b.Wheel(WheelEvent{X: 1, Y: 1}) {
		t.Error("zero delta should not be consumed")
	}
}

func TestWheelMouseMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Navigation = NavigationMouse
	b := NewBoard(cfg)
	b.SetScreenSize(1000, 800)

	b.Wheel(WheelEvent{X: 0, Y: 0, DeltaY: 1})
	if got := b.Viewport().Scale; !approxEqual(got, 1/1.1, epsilon) {
		t.Errorf("Scale = %v, want zoomed out", got)
	}
	b.Wheel(WheelEvent{DeltaX: 5, Modifiers: ModMeta})
	if got := b.Viewport().Position.X; got != -5 {
		t.Errorf("Position.X = %v, want -5", got)
	}
}

func TestWheelClampsScale(t *testing.T) {
	b := newTestBoard(t)
	for i := 0; i < 100; i++ {
		b.Wheel(WheelEvent{X: 500, Y: 400, DeltaY: -1, Modifiers: ModCtrl})
	}
	if got := b.Viewport().Scale; got != 5 {
		t.Errorf("Scale = %v, want max 5", got)
	}
	if b.LOD() != LODDetail {
		t.Errorf("LOD = %v", b.LOD())
	}
	for i := 0; i < 100; i++ {
		b.Wheel(WheelEvent{X: 500, Y: 400, DeltaY: 1, Modifiers: ModCtrl})
	}
	if got := b.Viewport().Scale; got != 0.1 {
		t.Errorf("Scale = %v, want min 0.1", got)
	}
	if b.LOD() != LODOverview {
		t.Errorf("LOD = %v, want overview", b.LOD())
	}
}

func TestNavigationModeString(t *testing.T) {
	if NavigationTrackpad.String() != "trackpad" || NavigationMouse.String() != "mouse" {
		t.Error("unexpected mode names")
	}
}
