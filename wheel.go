package inkboard

// NavigationMode selects how wheel events are interpreted.
type NavigationMode uint8

const (
	// NavigationTrackpad pans on plain scroll and zooms with Ctrl/Cmd (or a
	// pinch, which platforms report as Ctrl+wheel).
	NavigationTrackpad NavigationMode = iota
	// NavigationMouse zooms on plain scroll and pans with Ctrl/Cmd.
	NavigationMouse
)

// String returns the mode's config name.
func (m NavigationMode) String() string {
	if m == NavigationMouse {
		return "mouse"
	}
	return "trackpad"
}

// WheelEvent is a wheel or trackpad scroll at a screen point.
type WheelEvent struct {
	X, Y           float64
	DeltaX, DeltaY float64
	Modifiers      KeyModifiers
}

// Wheel zooms around the pointer or pans the canvas depending on the
// navigation mode and modifiers. Wheel input is ignored while a middle-button
// pan is in progress. Reports whether the event was consumed.
func (b *Board) Wheel(ev WheelEvent) bool {
	if b.in.state == StatePanning && b.in.middlePan {
		return false
	}
	zoom := ev.Modifiers.command()
	if b.cfg.Navigation == NavigationMouse {
		zoom = !zoom
	}
	if zoom {
		if ev.DeltaY == 0 {
			return false
		}
		b.camera.ZoomAt(Vec2{ev.X, ev.Y}, ev.DeltaY, b.cfg.ZoomStep)
		return true
	}
	if ev.DeltaX == 0 && ev.DeltaY == 0 {
		return false
	}
	b.camera.PanBy(ev.DeltaX, ev.DeltaY)
	return true
}
