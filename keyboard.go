package inkboard

import "strings"

// Key is a keyboard key the board reacts to.
type Key uint8

const (
	KeyUnknown Key = iota
	KeyA
	KeyG
	KeyI
	KeyM
	KeyP
	KeyV
	KeyY
	KeyZ
	KeyDelete
	KeyBackspace
	KeyEscape
	KeySpace
)

var keyNames = map[string]Key{
	"a":         KeyA,
	"g":         KeyG,
	"i":         KeyI,
	"m":         KeyM,
	"p":         KeyP,
	"v":         KeyV,
	"y":         KeyY,
	"z":         KeyZ,
	"delete":    KeyDelete,
	"backspace": KeyBackspace,
	"escape":    KeyEscape,
	"esc":       KeyEscape,
	"space":     KeySpace,
}

// ParseKey maps a key name ("z", "delete", "escape", ...) to a Key.
func ParseKey(name string) Key {
	return keyNames[strings.ToLower(strings.TrimSpace(name))]
}

// ParseModifiers maps names like "shift" or "cmd" to a modifier mask.
// Unknown names are ignored.
func ParseModifiers(names []string) KeyModifiers {
	var m KeyModifiers
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "shift":
			m |= ModShift
		case "ctrl", "control":
			m |= ModCtrl
		case "alt", "option":
			m |= ModAlt
		case "meta", "cmd", "command", "super":
			m |= ModMeta
		}
	}
	return m
}

// History receives undo and redo requests from the keyboard shortcuts.
type History interface {
	Undo()
	Redo()
}

type nopHistory struct{}

func (nopHistory) Undo() {}
func (nopHistory) Redo() {}

// SetTextEditing tells the board a text field has focus, so every shortcut
// except Escape is left to the field.
func (b *Board) SetTextEditing(editing bool) {
	b.textEditing = editing
}

// TextEditing reports whether a text field has focus.
func (b *Board) TextEditing() bool {
	return b.textEditing
}

// KeyDown handles a key press. Reports whether the board consumed it.
func (b *Board) KeyDown(k Key, mods KeyModifiers) bool {
	if k == KeyEscape {
		switch {
		case b.in.state != StateIdle:
			b.cancelInteraction()
		case b.menu != nil:
			b.menu = nil
		default:
			b.ClearSelection(true)
		}
		return true
	}
	if b.textEditing {
		return false
	}
	if k == KeySpace {
		b.in.spaceHeld = true
		if b.in.state == StateIdle {
			b.in.cursor = CursorGrab
		}
		return true
	}
	if b.in.state != StateIdle {
		return false
	}

	if mods.command() {
		shift := mods.Has(ModShift)
		switch {
		case k == KeyZ && shift, k == KeyY:
			b.history.Redo()
		case k == KeyZ:
			b.history.Undo()
		case k == KeyA:
			b.SelectAll()
		case k == KeyG && shift:
			b.UngroupSelection()
		case k == KeyG:
			b.CreateGroupFromSelection()
		default:
			return false
		}
		return true
	}

	switch k {
	case KeyDelete, KeyBackspace:
		b.DeleteSelection()
	case KeyZ:
		b.FitToView()
	case KeyP:
		b.TogglePin()
	case KeyI:
		b.Spawn(TypeImageModal)
	case KeyV:
		b.Spawn(TypeVideoModal)
	case KeyM:
		b.Spawn(TypeMusicModal)
	default:
		return false
	}
	return true
}

// KeyUp handles a key release.
func (b *Board) KeyUp(k Key, _ KeyModifiers) {
	if k != KeySpace {
		return
	}
	b.in.spaceHeld = false
	if b.in.state == StateIdle {
		b.in.cursor = b.idleCursor()
	}
}
