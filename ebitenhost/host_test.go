package ebitenhost

import (
	"image/color"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/inkboard"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"after-fit", "after-fit"},
		{"frame.01", "frame.01"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnpremultiply(t *testing.T) {
	pixels := []byte{
		100, 50, 0, 255, // opaque: unchanged
		64, 32, 0, 128, // half alpha: doubled
		0, 0, 0, 0, // transparent
	}
	img := unpremultiply(pixels, 3, 1)
	want := []byte{100, 50, 0, 255, 127, 63, 0, 128, 0, 0, 0, 0}
	for i, w := range want {
		if img.Pix[i] != w {
			t.Errorf("Pix[%d] = %d, want %d", i, img.Pix[i], w)
		}
	}
}

func TestWheelEventFlipsSign(t *testing.T) {
	ev := wheelEvent(10, 20, 0, 1, inkboard.ModCtrl, 40)
	if ev.DeltaY != -40 {
		t.Errorf("DeltaY = %v, want -40 (scroll up zooms in)", ev.DeltaY)
	}
	if ev.DeltaX != 0 {
		t.Errorf("DeltaX = %v, want 0", ev.DeltaX)
	}
	if ev.X != 10 || ev.Y != 20 || ev.Modifiers != inkboard.ModCtrl {
		t.Errorf("event = %+v", ev)
	}
}

func TestCursorShape(t *testing.T) {
	tests := []struct {
		in   inkboard.CursorShape
		want ebiten.CursorShapeType
	}{
		{inkboard.CursorDefault, ebiten.CursorShapeDefault},
		{inkboard.CursorGrab, ebiten.CursorShapeMove},
		{inkboard.CursorGrabbing, ebiten.CursorShapeMove},
		{inkboard.CursorMove, ebiten.CursorShapeMove},
		{inkboard.CursorCrosshair, ebiten.CursorShapeCrosshair},
		{inkboard.CursorPointer, ebiten.CursorShapePointer},
	}
	for _, tt := range tests {
		if got := cursorShape(tt.in); got != tt.want {
			t.Errorf("cursorShape(%d) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTypeColorStable(t *testing.T) {
	a := typeColor(inkboard.TypeImageModal)
	if b := typeColor(inkboard.TypeImageModal); a != b {
		t.Errorf("typeColor not stable: %v vs %v", a, b)
	}
	if a.A != 0xff {
		t.Errorf("alpha = %d, want opaque", a.A)
	}
	if typeColor(inkboard.TypeImage) == typeColor(inkboard.TypeVideoModal) {
		t.Log("distinct types share a colour; acceptable but unexpected")
	}
}

func TestRunConfigDefaults(t *testing.T) {
	cfg := RunConfig{}.withDefaults()
	if cfg.Width != 1280 || cfg.Height != 800 {
		t.Errorf("size = %dx%d, want 1280x800", cfg.Width, cfg.Height)
	}
	if cfg.WheelLineHeight != 40 {
		t.Errorf("WheelLineHeight = %v, want 40", cfg.WheelLineHeight)
	}
	if cfg.ScreenshotDir != "screenshots" {
		t.Errorf("ScreenshotDir = %q", cfg.ScreenshotDir)
	}
	if cfg.Background == (color.RGBA{}) {
		t.Error("Background should default to a non-zero colour")
	}
}

func TestLayoutSetsBoardScreenSize(t *testing.T) {
	b := inkboard.NewBoard(inkboard.DefaultConfig())
	g := NewGame(b, RunConfig{})
	w, h := g.Layout(800, 600)
	if w != 800 || h != 600 {
		t.Fatalf("Layout = %dx%d", w, h)
	}
	if c := b.Camera(); c.ScreenWidth != 800 || c.ScreenHeight != 600 {
		t.Errorf("board screen = %vx%v, want 800x600", c.ScreenWidth, c.ScreenHeight)
	}
}
