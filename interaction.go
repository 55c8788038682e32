package inkboard

// InteractionState is the phase of the current pointer session.
type InteractionState uint8

const (
	StateIdle          InteractionState = iota // no session
	StatePanning                               // dragging the canvas
	StateRectPending                           // pressed on empty canvas, below the drag threshold
	StateRectSelecting                         // live selection rectangle
	StateDragPending                           // pressed on an item, below the drag threshold
	StateDragging                              // moving the dragged items
	StateToolCreating                          // spawning an item from a creation tool
	StateConnecting                            // dragging a connector from a node port
)

// String returns the state name.
func (s InteractionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePanning:
		return "panning"
	case StateRectPending:
		return "rect-pending"
	case StateRectSelecting:
		return "rect-selecting"
	case StateDragPending:
		return "drag-pending"
	case StateDragging:
		return "dragging"
	case StateToolCreating:
		return "tool-creating"
	case StateConnecting:
		return "connecting"
	}
	return "unknown"
}

// PointerEvent is a pointer press, move or release in screen coordinates.
type PointerEvent struct {
	X, Y      float64
	Button    MouseButton
	Modifiers KeyModifiers
	PointerID int
}

func (ev PointerEvent) screen() Vec2 { return Vec2{ev.X, ev.Y} }

// ContextMenu is an open context menu anchored at the pointer.
type ContextMenu struct {
	Target ItemRef
	Screen Vec2
	World  Vec2
}

// dragEntry is one entity moved by an element drag.
type dragEntry struct {
	ref   ItemRef
	start Vec2
	last  Vec2
}

// interaction is the per-board pointer state.
type interaction struct {
	state     InteractionState
	tool      Tool
	spaceHeld bool
	middlePan bool
	panArmed  bool

	button       MouseButton
	pointerID    int
	mods         KeyModifiers
	originScreen Vec2
	originWorld  Vec2
	lastScreen   Vec2

	target *ItemRef
	drag   []dragEntry

	pending *PointerEvent
	cap     *capture

	hover          *ItemRef
	cursor         CursorShape
	stageDraggable bool

	connSource ConnectorEvent
	connTarget *ConnectorEvent
}

// State returns the current interaction state.
func (b *Board) State() InteractionState {
	return b.in.state
}

// Tool returns the active tool.
func (b *Board) Tool() Tool {
	return b.in.tool
}

// Cursor returns the cursor shape the host should display.
func (b *Board) Cursor() CursorShape {
	return b.in.cursor
}

// StageDraggable reports whether the canvas surface itself is being dragged
// (panning).
func (b *Board) StageDraggable() bool {
	return b.in.stageDraggable
}

// Hovered returns the entity under the pointer, or nil.
func (b *Board) Hovered() *ItemRef {
	if b.in.hover == nil {
		return nil
	}
	h := *b.in.hover
	return &h
}

// ListenerCount returns the number of window-level listeners currently
// attached. It is zero whenever no session is active.
func (b *Board) ListenerCount() int {
	return b.window.count()
}

// HasCapture reports whether a session currently holds the pointer.
func (b *Board) HasCapture() bool {
	return b.in.cap != nil
}

// ContextMenu returns the open context menu, or nil.
func (b *Board) ContextMenu() *ContextMenu {
	if b.menu == nil {
		return nil
	}
	m := *b.menu
	return &m
}

// CloseContextMenu closes any open context menu.
func (b *Board) CloseContextMenu() {
	b.menu = nil
}

// SelectTool activates a tool. Creation tools spawn exactly one item near the
// centre of the screen and fall back to the cursor tool; the spawned item is
// returned when one was created.
func (b *Board) SelectTool(t Tool) (*Item, bool) {
	typ, creates := t.creationType()
	if !creates {
		b.in.tool = t
		if b.in.state == StateIdle {
			b.in.cursor = b.idleCursor()
		}
		return nil, false
	}
	if b.in.state != StateIdle {
		return nil, false
	}
	b.in.state = StateToolCreating
	it, ok := b.Spawn(typ)
	b.in.state = StateIdle
	b.in.tool = ToolCursor
	b.in.cursor = b.idleCursor()
	return it, ok
}

// --- Pointer entry points ---

// PointerDown handles a press on the canvas surface.
func (b *Board) PointerDown(ev PointerEvent) {
	if b.in.state != StateIdle {
		return
	}
	screen := ev.screen()
	world := b.ScreenToWorld(screen)
	target := b.hitTest(world)

	b.in.button = ev.Button
	b.in.pointerID = ev.PointerID
	b.in.mods = ev.Modifiers
	b.in.originScreen = screen
	b.in.originWorld = world
	b.in.lastScreen = screen

	switch ev.Button {
	case MouseButtonMiddle:
		b.menu = nil
		b.beginPan(true)
	case MouseButtonRight:
		if target == nil {
			b.menu = nil
			return
		}
		if !b.selection.IsSelected(*target) {
			b.selection.Select(*target, false)
		}
		b.menu = &ContextMenu{Target: *target, Screen: screen, World: world}
	case MouseButtonLeft:
		b.menu = nil
		shift := ev.Modifiers.Has(ModShift)
		if target == nil {
			switch {
			case b.in.spaceHeld || (b.in.tool == ToolMove && !shift):
				b.beginPan(false)
			case b.in.tool == ToolCursor || shift:
				b.beginRectSelect(world, shift)
			}
			return
		}
		if b.in.tool == ToolCursor {
			b.beginElementDrag(*target, shift)
		}
	}
}

// PointerMove handles pointer motion anywhere over the host window. During a
// session it goes to the window-level listeners; otherwise it updates hover.
func (b *Board) PointerMove(ev PointerEvent) {
	if b.window.move.len() > 0 {
		b.window.move.fire(ev)
		return
	}
	b.updateHover(ev)
}

// PointerUp handles a release anywhere over the host window.
func (b *Board) PointerUp(ev PointerEvent) {
	if b.window.up.len() > 0 {
		b.window.up.fire(ev)
	}
}

// PointerCancel aborts the active session, e.g. when the platform steals the
// pointer.
func (b *Board) PointerCancel() {
	b.cancelInteraction()
}

// Blur handles the host window losing focus: the active session ends, every
// window listener is released and held keys are forgotten.
func (b *Board) Blur() {
	b.cancelInteraction()
	b.in.spaceHeld = false
	b.in.cursor = b.idleCursor()
}

// --- Session entry ---

func (b *Board) beginPan(middle bool) {
	b.in.state = StatePanning
	b.in.middlePan = middle
	b.in.panArmed = false
	b.in.stageDraggable = true
	b.in.cursor = CursorGrabbing
	b.acquireCapture(StatePanning, b.in.pointerID)
}

func (b *Board) beginRectSelect(world Vec2, shift bool) {
	if !shift {
		b.ClearSelection(false)
	}
	b.selection.BeginRectSelect(world)
	b.in.state = StateRectPending
	b.acquireCapture(StateRectPending, b.in.pointerID)
}

func (b *Board) beginElementDrag(target ItemRef, shift bool) {
	switch {
	case shift:
		b.selection.Toggle(target)
		if !b.selection.IsSelected(target) {
			return
		}
	case !b.selection.IsSelected(target):
		b.selection.Select(target, false)
	}
	t := target
	b.in.target = &t
	b.in.state = StateDragPending
	b.acquireCapture(StateDragPending, b.in.pointerID)
}

// acquireCapture attaches the window-level listeners for a session. Any
// previous capture is released first so listeners never accumulate.
func (b *Board) acquireCapture(state InteractionState, pointerID int) {
	b.in.cap.release()
	c := &capture{state: state, pointerID: pointerID}
	c.handles = append(c.handles,
		register(b, &b.window.move, b.onWindowMove),
		register(b, &b.window.up, b.onWindowUp),
	)
	b.in.cap = c
}

// --- Window listeners ---

func (b *Board) onWindowMove(ev PointerEvent) {
	if !b.cfg.CoalesceMoves {
		b.applyMove(ev)
		return
	}
	if b.in.pending != nil {
		b.stats.coalescedMoves++
	}
	e := ev
	b.in.pending = &e
}

func (b *Board) onWindowUp(ev PointerEvent) {
	// Only the button that opened the session can end it.
	if ev.Button != b.in.button {
		return
	}
	b.flushPointer()
	b.applyMove(ev)
	b.endSession(false)
}

// flushPointer applies the latest coalesced pointer move, if any.
func (b *Board) flushPointer() {
	if b.in.pending == nil {
		return
	}
	ev := *b.in.pending
	b.in.pending = nil
	b.applyMove(ev)
}

// applyMove advances the session with one pointer position.
func (b *Board) applyMove(ev PointerEvent) {
	screen := ev.screen()
	world := b.ScreenToWorld(screen)

	switch b.in.state {
	case StatePanning:
		// The view stays put until the pointer leaves the drag threshold,
		// then catches up with the full travel.
		if !b.in.panArmed {
			if world.Sub(b.in.originWorld).Len() <= b.cfg.DragThreshold {
				return
			}
			b.in.panArmed = true
		}
		d := screen.Sub(b.in.lastScreen)
		if d.X != 0 || d.Y != 0 {
			b.camera.DragBy(d.X, d.Y)
		}
	case StateRectPending, StateRectSelecting:
		if b.selection.UpdateRectSelect(world) && b.in.state == StateRectPending {
			b.in.state = StateRectSelecting
			b.in.stageDraggable = false
			b.in.cursor = CursorCrosshair
		}
	case StateDragPending:
		if world.Sub(b.in.originWorld).Len() > b.cfg.DragThreshold {
			b.beginDragging()
			b.dragTo(world)
		}
	case StateDragging:
		b.dragTo(world)
	}
	b.in.lastScreen = screen
}

// beginDragging promotes a pending element drag and collects what moves:
// the whole selection when the pressed entity is selected, otherwise just the
// pressed entity. Pinned items stay put.
func (b *Board) beginDragging() {
	b.in.state = StateDragging
	b.in.cursor = CursorMove
	b.in.stageDraggable = false

	refs := []ItemRef{*b.in.target}
	if b.selection.IsSelected(*b.in.target) {
		refs = b.selection.Refs()
	}
	b.in.drag = b.in.drag[:0]
	for _, ref := range refs {
		if ref.Type == TypeGroup {
			if g, ok := b.groups.Get(ref.ID); ok {
				p := Vec2{g.X, g.Y}
				b.in.drag = append(b.in.drag, dragEntry{ref: ref, start: p, last: p})
			}
			continue
		}
		it, ok := b.reg.Get(ref.Type, ref.ID)
		if !ok || it.Pinned {
			continue
		}
		if _, grouped := b.groups.GroupOf(it.ID); grouped {
			continue
		}
		p := Vec2{it.X, it.Y}
		b.in.drag = append(b.in.drag, dragEntry{ref: ref, start: p, last: p})
	}
}

// dragTo places every dragged entity at its start position plus the pointer
// travel since the press.
func (b *Board) dragTo(world Vec2) {
	d := world.Sub(b.in.originWorld)
	var moved []ItemRef
	for i := range b.in.drag {
		e := &b.in.drag[i]
		p := e.start.Add(d)
		if p == e.last {
			continue
		}
		if e.ref.Type == TypeGroup {
			if _, ok := b.groups.Move(e.ref.ID, p.X, p.Y); !ok {
				continue
			}
		} else if !b.reg.Move(e.ref.Type, e.ref.ID, p.X, p.Y) {
			continue
		}
		e.last = p
		moved = append(moved, e.ref)
	}
	if len(moved) > 0 {
		b.selection.Refresh()
		b.events.items.fire(moved)
	}
}

// --- Session exit ---

// cancelInteraction ends the active session from Escape, pointer-cancel or
// blur. The last coalesced move is still applied.
func (b *Board) cancelInteraction() {
	if b.in.state == StateIdle && b.in.cap == nil {
		return
	}
	b.flushPointer()
	b.endSession(true)
}

// endSession finishes the active session and releases its capture. Every
// exit path goes through here.
func (b *Board) endSession(cancelled bool) {
	shift := b.in.mods.Has(ModShift)
	switch b.in.state {
	case StateRectPending, StateRectSelecting:
		if cancelled {
			b.selection.CancelRectSelect()
		} else {
			b.selection.CommitRectSelect(shift)
		}
	case StateDragPending:
		// A click on an item of a multi-selection narrows it to that item.
		if !cancelled && !shift && b.in.target != nil && b.selection.Count() > 1 {
			b.selection.Select(*b.in.target, false)
		}
	case StateDragging:
		b.persistDrag()
	case StateConnecting:
		b.finishConnector(!cancelled)
	}

	b.in.cap.release()
	b.in.cap = nil
	b.in.state = StateIdle
	b.in.middlePan = false
	b.in.panArmed = false
	b.in.stageDraggable = false
	b.in.pending = nil
	b.in.target = nil
	b.in.drag = b.in.drag[:0]
	b.in.cursor = b.idleCursor()
}

// persistDrag writes one move per entity that actually moved.
func (b *Board) persistDrag() {
	for _, e := range b.in.drag {
		if e.last == e.start {
			continue
		}
		if e.ref.Type == TypeGroup {
			if g, ok := b.groups.Get(e.ref.ID); ok {
				b.persistGroupPosition(g)
			}
			continue
		}
		b.persistItemPosition(e.ref, e.last.X, e.last.Y)
	}
}

// --- Hover & hit testing ---

func (b *Board) updateHover(ev PointerEvent) {
	world := b.ScreenToWorld(ev.screen())
	b.in.hover = b.hitTest(world)
	if b.in.state != StateIdle {
		return
	}
	if b.in.hover != nil && b.in.tool == ToolCursor && !b.in.spaceHeld {
		b.in.cursor = CursorPointer
		return
	}
	b.in.cursor = b.idleCursor()
}

func (b *Board) idleCursor() CursorShape {
	if b.in.spaceHeld || b.in.tool == ToolMove {
		return CursorGrab
	}
	return CursorDefault
}

// hitTest finds the topmost entity at a world point. Items are tested in
// reverse painter order at their effective positions; a grouped item
// resolves to its group. Group frames are tested last.
func (b *Board) hitTest(world Vec2) *ItemRef {
	types := b.reg.Types()
	for i := len(types) - 1; i >= 0; i-- {
		t := types[i]
		list := b.groups.ResolveList(b.reg.Bucket(t).Items())
		for j := len(list) - 1; j >= 0; j-- {
			it := list[j]
			if !containsWorldPoint(it, b.dims(t, it.ID, b.reg), world) {
				continue
			}
			if g, ok := b.groups.GroupOf(it.ID); ok {
				return &ItemRef{Type: TypeGroup, ID: g.ID}
			}
			return &ItemRef{Type: t, ID: it.ID}
		}
	}
	groups := b.groups.Groups()
	for i := len(groups) - 1; i >= 0; i-- {
		if groups[i].Bounds().Contains(world.X, world.Y) {
			return &ItemRef{Type: TypeGroup, ID: groups[i].ID}
		}
	}
	return nil
}
