package inkboard

// --- Handler registry ---

type handler[T any] struct {
	id uint32
	fn func(T)
}

// handlerList is an ordered list of callbacks of one event kind.
type handlerList[T any] struct {
	entries []handler[T]
}

func (l *handlerList[T]) add(id uint32, fn func(T)) {
	l.entries = append(l.entries, handler[T]{id: id, fn: fn})
}

// remove unregisters a callback. The entry is removed from the slice to avoid
// nil iteration waste.
func (l *handlerList[T]) remove(id uint32) {
	for i := range l.entries {
		if l.entries[i].id == id {
			copy(l.entries[i:], l.entries[i+1:])
			l.entries[len(l.entries)-1] = handler[T]{}
			l.entries = l.entries[:len(l.entries)-1]
			return
		}
	}
}

// fire calls every handler. Handlers may remove themselves (or others) while
// firing; the snapshot taken up front is what runs.
func (l *handlerList[T]) fire(v T) {
	if len(l.entries) == 0 {
		return
	}
	snapshot := make([]handler[T], len(l.entries))
	copy(snapshot, l.entries)
	for _, h := range snapshot {
		h.fn(v)
	}
}

func (l *handlerList[T]) len() int {
	return len(l.entries)
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	id     uint32
	remove func(id uint32)
}

// Remove unregisters this callback so it no longer fires. Calling Remove
// more than once is harmless.
func (h CallbackHandle) Remove() {
	if h.remove == nil {
		return
	}
	h.remove(h.id)
}

// register adds fn to list and returns its handle.
func register[T any](b *Board, list *handlerList[T], fn func(T)) CallbackHandle {
	b.nextHandlerID++
	id := b.nextHandlerID
	list.add(id, fn)
	return CallbackHandle{id: id, remove: list.remove}
}

// --- Window-level listeners ---

// windowListeners mirrors listeners attached to the host window rather than
// the canvas: they receive pointer moves and releases anywhere on screen for
// the duration of one interaction session.
type windowListeners struct {
	move handlerList[PointerEvent]
	up   handlerList[PointerEvent]
}

// count returns the number of attached window listeners.
func (w *windowListeners) count() int {
	return w.move.len() + w.up.len()
}

// capture is the scoped acquisition of window listeners for one session.
// release is idempotent and reachable from pointer-up, pointer-cancel, blur
// and Escape.
type capture struct {
	state     InteractionState
	pointerID int
	handles   []CallbackHandle
	released  bool
}

func (c *capture) release() {
	if c == nil || c.released {
		return
	}
	c.released = true
	for _, h := range c.handles {
		h.Remove()
	}
	c.handles = nil
}

// --- Board-level events ---

// SelectionChange describes the selection after a change.
type SelectionChange struct {
	Order []string
	Refs  []ItemRef
	Tight *Rect
}

// NoticeLevel grades a user-visible notice.
type NoticeLevel uint8

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
)

// Notice is a user-visible message, e.g. a refused group creation.
type Notice struct {
	Level   NoticeLevel
	Message string
	Err     error
}

// OnSelectionChange registers a callback fired after every selection change.
func (b *Board) OnSelectionChange(fn func(SelectionChange)) CallbackHandle {
	return register(b, &b.events.selection, fn)
}

// OnViewportChange registers a callback fired once per frame in which the
// viewport changed.
func (b *Board) OnViewportChange(fn func(Viewport)) CallbackHandle {
	return register(b, &b.events.viewport, fn)
}

// OnNotice registers a callback for user-visible notices.
func (b *Board) OnNotice(fn func(Notice)) CallbackHandle {
	return register(b, &b.events.notice, fn)
}

// OnItemsChange registers a callback fired when items are created, moved,
// deleted or updated. The argument lists the affected refs.
func (b *Board) OnItemsChange(fn func([]ItemRef)) CallbackHandle {
	return register(b, &b.events.items, fn)
}

// boardEvents groups the board-level handler lists.
type boardEvents struct {
	selection handlerList[SelectionChange]
	viewport  handlerList[Viewport]
	notice    handlerList[Notice]
	items     handlerList[[]ItemRef]
	connector map[string]*handlerList[ConnectorEvent]
}

func (b *Board) notify(level NoticeLevel, msg string, err error) {
	b.events.notice.fire(Notice{Level: level, Message: msg, Err: err})
}
