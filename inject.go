package inkboard

type syntheticKind uint8

const (
	syntheticPress syntheticKind = iota
	syntheticMove
	syntheticRelease
	syntheticWheel
	syntheticKey
)

// syntheticEvent is one injected input event. Pointer coordinates are in
// screen space, exactly like real input.
type syntheticEvent struct {
	kind   syntheticKind
	x, y   float64
	dx, dy float64
	button MouseButton
	mods   KeyModifiers
	key    Key
}

// InjectPress queues a left-button press at screen coordinates. Events are
// consumed one per Update.
func (b *Board) InjectPress(x, y float64) {
	b.InjectPressWith(x, y, MouseButtonLeft, 0)
}

// InjectPressWith queues a press with an explicit button and modifiers.
func (b *Board) InjectPressWith(x, y float64, button MouseButton, mods KeyModifiers) {
	b.injectQueue = append(b.injectQueue, syntheticEvent{
		kind: syntheticPress, x: x, y: y, button: button, mods: mods,
	})
}

// InjectMove queues a pointer move at screen coordinates.
func (b *Board) InjectMove(x, y float64) {
	b.injectQueue = append(b.injectQueue, syntheticEvent{kind: syntheticMove, x: x, y: y})
}

// InjectRelease queues a pointer release at screen coordinates.
func (b *Board) InjectRelease(x, y float64) {
	b.injectQueue = append(b.injectQueue, syntheticEvent{kind: syntheticRelease, x: x, y: y})
}

// InjectClick queues a press followed by a release at the same point.
// Consumes two frames.
func (b *Board) InjectClick(x, y float64) {
	b.InjectPress(x, y)
	b.InjectRelease(x, y)
}

// InjectDrag queues a press at (fromX, fromY), frames-2 interpolated moves and
// a release at (toX, toY). Minimum frames is 2.
func (b *Board) InjectDrag(fromX, fromY, toX, toY float64, frames int, mods KeyModifiers) {
	if frames < 2 {
		frames = 2
	}
	b.InjectPressWith(fromX, fromY, MouseButtonLeft, mods)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		b.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	b.InjectRelease(toX, toY)
}

// InjectWheel queues a wheel event.
func (b *Board) InjectWheel(x, y, dx, dy float64, mods KeyModifiers) {
	b.injectQueue = append(b.injectQueue, syntheticEvent{
		kind: syntheticWheel, x: x, y: y, dx: dx, dy: dy, mods: mods,
	})
}

// InjectKey queues a key press and release.
func (b *Board) InjectKey(k Key, mods KeyModifiers) {
	b.injectQueue = append(b.injectQueue, syntheticEvent{kind: syntheticKey, key: k, mods: mods})
}

// PendingInjections returns the number of queued synthetic events.
func (b *Board) PendingInjections() int {
	return len(b.injectQueue)
}

// processInjectedInput pops one event from the queue and feeds it through the
// same entry points as real input. Reports whether an event was consumed.
func (b *Board) processInjectedInput() bool {
	if len(b.injectQueue) == 0 {
		return false
	}
	evt := b.injectQueue[0]
	copy(b.injectQueue, b.injectQueue[1:])
	b.injectQueue = b.injectQueue[:len(b.injectQueue)-1]

	// Releases and moves carry the button and modifiers of the press.
	button, mods := evt.button, evt.mods
	if evt.kind == syntheticMove || evt.kind == syntheticRelease {
		button, mods = b.in.button, b.in.mods
	}
	pe := PointerEvent{X: evt.x, Y: evt.y, Button: button, Modifiers: mods}

	switch evt.kind {
	case syntheticPress:
		b.PointerDown(pe)
	case syntheticMove:
		b.PointerMove(pe)
	case syntheticRelease:
		b.PointerUp(pe)
	case syntheticWheel:
		b.Wheel(WheelEvent{X: evt.x, Y: evt.y, DeltaX: evt.dx, DeltaY: evt.dy, Modifiers: evt.mods})
	case syntheticKey:
		b.KeyDown(evt.key, evt.mods)
		b.KeyUp(evt.key, evt.mods)
	}
	return true
}
