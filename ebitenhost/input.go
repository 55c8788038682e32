package ebitenhost

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/inkboard"
)

var mouseButtons = []struct {
	eb ebiten.MouseButton
	ib inkboard.MouseButton
}{
	{ebiten.MouseButtonLeft, inkboard.MouseButtonLeft},
	{ebiten.MouseButtonRight, inkboard.MouseButtonRight},
	{ebiten.MouseButtonMiddle, inkboard.MouseButtonMiddle},
}

var keys = []struct {
	eb ebiten.Key
	ik inkboard.Key
}{
	{ebiten.KeyA, inkboard.KeyA},
	{ebiten.KeyG, inkboard.KeyG},
	{ebiten.KeyI, inkboard.KeyI},
	{ebiten.KeyM, inkboard.KeyM},
	{ebiten.KeyP, inkboard.KeyP},
	{ebiten.KeyV, inkboard.KeyV},
	{ebiten.KeyY, inkboard.KeyY},
	{ebiten.KeyZ, inkboard.KeyZ},
	{ebiten.KeyDelete, inkboard.KeyDelete},
	{ebiten.KeyBackspace, inkboard.KeyBackspace},
	{ebiten.KeyEscape, inkboard.KeyEscape},
	{ebiten.KeySpace, inkboard.KeySpace},
}

// inputState remembers what the previous poll saw.
type inputState struct {
	focused      bool
	lastX, lastY int
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() inkboard.KeyModifiers {
	var mods inkboard.KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= inkboard.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= inkboard.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= inkboard.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= inkboard.ModMeta
	}
	return mods
}

// poll feeds one tick of ebiten input to the board. Losing window focus is
// reported as a blur so an open session releases its listeners.
func (s *inputState) poll(b *inkboard.Board, lineHeight float64) {
	if !ebiten.IsFocused() {
		if s.focused {
			b.Blur()
		}
		s.focused = false
		return
	}
	s.focused = true

	mods := readModifiers()
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	ev := inkboard.PointerEvent{X: x, Y: y, Modifiers: mods}

	if mx != s.lastX || my != s.lastY {
		b.PointerMove(ev)
		s.lastX, s.lastY = mx, my
	}
	for _, m := range mouseButtons {
		if inpututil.IsMouseButtonJustPressed(m.eb) {
			ev.Button = m.ib
			b.PointerDown(ev)
		}
	}
	for _, m := range mouseButtons {
		if inpututil.IsMouseButtonJustReleased(m.eb) {
			ev.Button = m.ib
			b.PointerUp(ev)
		}
	}

	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		b.Wheel(wheelEvent(x, y, wx, wy, mods, lineHeight))
	}

	for _, k := range keys {
		if inpututil.IsKeyJustPressed(k.eb) {
			b.KeyDown(k.ik, mods)
		}
		if inpututil.IsKeyJustReleased(k.eb) {
			b.KeyUp(k.ik, mods)
		}
	}
}

// wheelEvent converts ebiten's wheel offsets (positive = scroll up/left) to
// a pixel delta where positive DeltaY scrolls down, as browsers report it.
func wheelEvent(x, y, wx, wy float64, mods inkboard.KeyModifiers, lineHeight float64) inkboard.WheelEvent {
	return inkboard.WheelEvent{
		X:         x,
		Y:         y,
		DeltaX:    -wx * lineHeight,
		DeltaY:    -wy * lineHeight,
		Modifiers: mods,
	}
}

// cursorShape maps a board cursor to the closest ebiten cursor. Ebiten has
// no hand cursors, so grab and grabbing use the move cursor.
func cursorShape(c inkboard.CursorShape) ebiten.CursorShapeType {
	switch c {
	case inkboard.CursorGrab, inkboard.CursorGrabbing, inkboard.CursorMove:
		return ebiten.CursorShapeMove
	case inkboard.CursorCrosshair:
		return ebiten.CursorShapeCrosshair
	case inkboard.CursorPointer:
		return ebiten.CursorShapePointer
	default:
		return ebiten.CursorShapeDefault
	}
}
