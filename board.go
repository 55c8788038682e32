package inkboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Board is the canvas interaction engine: it owns the item registry, the
// selection, groups and the viewport, and turns pointer, wheel and keyboard
// input into changes on them. All methods must be called from the host's
// update loop.
type Board struct {
	cfg Config

	// Logger receives structured diagnostics. Replace with SetLogger.
	Logger   *slog.Logger
	logLevel *slog.LevelVar

	reg       *Registry
	groups    *GroupStore
	selection *Selection
	camera    *Camera
	cull      *culler
	persist   *dispatcher
	persister Persister
	history   History
	dims      DimensionResolver

	in     interaction
	window windowListeners
	events boardEvents
	menu   *ContextMenu

	nextHandlerID uint32
	textEditing   bool

	lastSpawn map[ItemType]time.Time
	now       func() time.Time
	newID     func() string

	injectQueue []syntheticEvent
	testRunner  *TestRunner
	screenshots []string

	stats debugStats
}

// NewBoard creates an empty board with every built-in item type registered.
// The screen size defaults to 0x0 until SetScreenSize is called. cfg is
// validated; an invalid config falls back to DefaultConfig with a warning.
func NewBoard(cfg Config) *Board {
	level := new(slog.LevelVar)
	logger := newLogger(level)
	if err := cfg.Validate(); err != nil {
		logger.Warn("invalid config, using defaults", "err", err)
		cfg = DefaultConfig()
	}
	if cfg.Debug {
		level.Set(slog.LevelDebug)
	}

	b := &Board{
		cfg:       cfg,
		Logger:    logger,
		logLevel:  level,
		reg:       NewRegistry(),
		groups:    NewGroupStore(cfg.GroupPadding),
		camera:    newCamera(0, 0, cfg.MinScale, cfg.MaxScale),
		cull:      newCuller(),
		persister: NopPersister{},
		history:   nopHistory{},
		dims:      ResolveDimensions,
		lastSpawn: make(map[ItemType]time.Time),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	b.selection = NewSelection(boardGeometry{b}, cfg.DragThreshold, cfg.MinSelectionSize, cfg.SelectionPadding)
	b.selection.onChange(b.selectionChanged)
	b.in.cursor = CursorDefault
	return b
}

// --- Wiring ---

// SetScreenSize sets the size of the host surface in pixels.
func (b *Board) SetScreenSize(w, h float64) {
	b.camera.ScreenWidth = w
	b.camera.ScreenHeight = h
}

// SetPersister sets the persistence backend. It must be called before the
// first write.
func (b *Board) SetPersister(p Persister) {
	if p == nil {
		p = NopPersister{}
	}
	b.persister = p
	if b.persist != nil {
		b.persist.close()
		b.persist = nil
	}
}

// SetHistory sets the undo/redo target of the keyboard shortcuts.
func (b *Board) SetHistory(h History) {
	if h == nil {
		h = nopHistory{}
	}
	b.history = h
}

// SetDimensionResolver replaces the size lookup used for culling, hit
// testing, selection and group bounds.
func (b *Board) SetDimensionResolver(d DimensionResolver) {
	if d == nil {
		d = ResolveDimensions
	}
	b.dims = d
	b.selection.Refresh()
}

// SetLogger replaces the board's logger.
func (b *Board) SetLogger(l *slog.Logger) {
	if l == nil {
		l = newLogger(b.logLevel)
	}
	b.Logger = l
	if b.persist != nil {
		b.persist.log = l
	}
}

// SetDebugMode toggles debug-level logging and per-frame stats.
func (b *Board) SetDebugMode(enabled bool) {
	b.cfg.Debug = enabled
	if enabled {
		b.logLevel.Set(slog.LevelDebug)
	} else {
		b.logLevel.Set(slog.LevelInfo)
	}
}

// --- Accessors ---

// Config returns the board's configuration.
func (b *Board) Config() Config { return b.cfg }

// Registry returns the item registry. Mutating it directly bypasses
// persistence and change events.
func (b *Board) Registry() *Registry { return b.reg }

// Groups returns the group store.
func (b *Board) Groups() *GroupStore { return b.groups }

// Selection returns the selection store.
func (b *Board) Selection() *Selection { return b.selection }

// Camera returns the board's camera.
func (b *Board) Camera() *Camera { return b.camera }

// Viewport returns the current viewport.
func (b *Board) Viewport() Viewport { return b.camera.Viewport() }

// ScreenToWorld converts a screen point using the current viewport.
func (b *Board) ScreenToWorld(p Vec2) Vec2 { return b.camera.Viewport().ScreenToWorld(p) }

// WorldToScreen converts a world point using the current viewport.
func (b *Board) WorldToScreen(p Vec2) Vec2 { return b.camera.Viewport().WorldToScreen(p) }

// LOD returns the level-of-detail band for the current scale.
func (b *Board) LOD() LOD {
	return LODForScale(b.camera.Viewport().Scale, b.cfg.LODDetail, b.cfg.LODLabel)
}

// Size returns the current size of an item.
func (b *Board) Size(ref ItemRef) Size {
	return b.dims(ref.Type, ref.ID, b.reg)
}

// --- Frame loop ---

// Update advances the board by one frame: scripted and injected input is
// replayed, the coalesced pointer move is applied, the fit animation steps
// and viewport listeners are notified once if the viewport changed.
func (b *Board) Update(dt float64) {
	if b.testRunner != nil {
		b.testRunner.step(b)
	}
	b.processInjectedInput()
	b.flushPointer()
	b.camera.update(float32(dt))
	if b.camera.takeChanged() {
		b.events.viewport.fire(b.camera.Viewport())
	}
	if b.cfg.Debug {
		b.logFrameStats()
	}
}

// Frame is everything a presentation layer needs to paint one frame.
type Frame struct {
	Viewport Viewport
	Bounds   Bounds
	LOD      LOD
	// Items holds the visible items of each type at their effective
	// positions. A slice is reused across frames while unchanged.
	Items  map[ItemType][]*Item
	Groups []*Group

	SelectionBox   *SelectionBox
	TightRect      *Rect
	Cursor         CursorShape
	StageDraggable bool
}

// PaddedBounds returns the culling bounds for the current viewport.
func (b *Board) PaddedBounds() Bounds {
	return PaddedBounds(b.camera.VisibleBounds(), b.cfg.ViewportPadding)
}

// VisibleItems returns the items of type t that intersect the padded
// viewport, at their effective positions. The previous slice is returned
// when nothing changed.
func (b *Board) VisibleItems(t ItemType) []*Item {
	bucket := b.reg.Bucket(t)
	if bucket == nil {
		return nil
	}
	bounds := b.PaddedBounds()
	list := b.groups.ResolveList(bucket.Items())
	return b.cull.items(t, list, func(it *Item) bool {
		r := ClientRect(it, b.dims(t, it.ID, b.reg))
		return bounds.IsRectInViewport(r.X, r.Y, r.Width, r.Height)
	})
}

// VisibleGroups returns the groups whose frame intersects the padded
// viewport.
func (b *Board) VisibleGroups() []*Group {
	bounds := b.PaddedBounds()
	return b.cull.groups(b.groups.Groups(), func(g *Group) bool {
		return bounds.IsRectInViewport(g.X, g.Y, g.Width, g.Height)
	})
}

// Frame collects the visible state for painting.
func (b *Board) Frame() Frame {
	f := Frame{
		Viewport:       b.camera.Viewport(),
		Bounds:         b.PaddedBounds(),
		LOD:            b.LOD(),
		Items:          make(map[ItemType][]*Item, len(b.reg.Types())),
		Groups:         b.VisibleGroups(),
		SelectionBox:   b.selection.Box(),
		TightRect:      b.selection.TightRect(),
		Cursor:         b.in.cursor,
		StageDraggable: b.in.stageDraggable,
	}
	for _, t := range b.reg.Types() {
		vis := b.VisibleItems(t)
		f.Items[t] = vis
		b.stats.visible += len(vis)
	}
	return f
}

// Flush blocks until every queued persistence write has run.
func (b *Board) Flush() {
	if b.persist != nil {
		b.persist.flush()
	}
}

// Close ends any session, drains persistence and stops its worker.
func (b *Board) Close() {
	b.cancelInteraction()
	if b.persist != nil {
		b.persist.close()
		b.persist = nil
	}
}

// --- Items ---

// AddItem stores a new item and persists it. An empty ID is filled in.
func (b *Board) AddItem(it Item) (*Item, error) {
	if it.ID == "" {
		it.ID = b.newID()
	}
	stored, err := b.reg.Add(it)
	if err != nil {
		return nil, err
	}
	cp := *stored
	b.enqueue("create-item", cp.ID, func(ctx context.Context, p Persister) error {
		return p.CreateItem(ctx, cp)
	})
	b.events.items.fire([]ItemRef{{Type: cp.Type, ID: cp.ID}})
	return stored, nil
}

// MoveItem places an ungrouped item and persists the move. Grouped items move
// with their group; missing ids are a no-op. Reports whether the item moved.
func (b *Board) MoveItem(ref ItemRef, x, y float64) bool {
	if _, grouped := b.groups.GroupOf(ref.ID); grouped {
		return false
	}
	if !b.reg.Move(ref.Type, ref.ID, x, y) {
		return false
	}
	b.persistItemPosition(ref, x, y)
	b.selection.Refresh()
	b.events.items.fire([]ItemRef{ref})
	return true
}

// DeleteItems removes items and persists each removal. Ids are also dropped
// from the selection and from any group that held them.
func (b *Board) DeleteItems(refs []ItemRef) int {
	var removed []ItemRef
	for _, ref := range refs {
		if ref.Type == TypeGroup {
			continue
		}
		if _, ok := b.reg.Remove(ref.Type, ref.ID); !ok {
			continue
		}
		b.detachFromGroup(ref.ID)
		b.persistDelete(ref)
		removed = append(removed, ref)
	}
	if len(removed) == 0 {
		return 0
	}
	b.selection.DeselectMany(removed)
	b.events.items.fire(removed)
	return len(removed)
}

// detachFromGroup drops a deleted item from its group's children.
func (b *Board) detachFromGroup(itemID string) {
	b.groups.dropChild(itemID)
}

// DeleteSelection deletes every selected item and group. Groups are deleted
// together with their children. Returns the number of removed entities.
func (b *Board) DeleteSelection() int {
	refs := b.selection.Refs()
	if len(refs) == 0 {
		return 0
	}
	var items []ItemRef
	var groupIDs []string
	for _, ref := range refs {
		if ref.Type == TypeGroup {
			groupIDs = append(groupIDs, ref.ID)
			continue
		}
		items = append(items, ref)
	}
	n := b.DeleteGroups(groupIDs, true)
	n += b.DeleteItems(items)
	b.ClearSelection(true)
	return n
}

// SelectAll selects every ungrouped item and every group.
func (b *Board) SelectAll() {
	var refs []ItemRef
	for _, c := range (boardGeometry{b}).Candidates() {
		refs = append(refs, c.Ref)
	}
	b.menu = nil
	b.selection.SelectMany(refs, false)
}

// ClearSelection deselects everything and closes the context menu.
func (b *Board) ClearSelection(clearBoxes bool) {
	b.menu = nil
	b.selection.ClearAll(clearBoxes)
}

// TogglePin pins every selected item if any of them is unpinned, otherwise
// unpins them all. Groups are skipped. Reports the new pinned state.
func (b *Board) TogglePin() (pinned bool, ok bool) {
	var refs []ItemRef
	for _, ref := range b.selection.Refs() {
		if ref.Type != TypeGroup {
			refs = append(refs, ref)
		}
	}
	if len(refs) == 0 {
		return false, false
	}
	for _, ref := range refs {
		if it, found := b.reg.Get(ref.Type, ref.ID); found && !it.Pinned {
			pinned = true
			break
		}
	}
	var changed []ItemRef
	for _, ref := range refs {
		if _, found := b.reg.Update(ref.Type, ref.ID, func(it *Item) { it.Pinned = pinned }); !found {
			continue
		}
		v := pinned
		r := ref
		b.enqueue("pin-item", r.ID, func(ctx context.Context, p Persister) error {
			return p.MoveItem(ctx, r.Type, r.ID, ItemPatch{Pinned: &v})
		})
		changed = append(changed, ref)
	}
	b.events.items.fire(changed)
	return pinned, true
}

// SetCollapsed collapses or expands an item and persists the change.
func (b *Board) SetCollapsed(ref ItemRef, collapsed bool) bool {
	if _, ok := b.reg.Update(ref.Type, ref.ID, func(it *Item) { it.Collapsed = collapsed }); !ok {
		return false
	}
	b.enqueue("collapse-item", ref.ID, func(ctx context.Context, p Persister) error {
		return p.MoveItem(ctx, ref.Type, ref.ID, ItemPatch{Collapsed: &collapsed})
	})
	b.selection.Refresh()
	b.events.items.fire([]ItemRef{ref})
	return true
}

// FitToView animates the viewport onto the selection, or onto everything
// when nothing is selected.
func (b *Board) FitToView() bool {
	var target Rect
	if r := b.selection.TightRect(); r != nil {
		target = *r
	} else {
		var rects []Rect
		for _, c := range (boardGeometry{b}).Candidates() {
			rects = append(rects, c.Rect)
		}
		u, ok := unionRects(rects)
		if !ok {
			return false
		}
		target = u
	}
	return b.camera.FitTo(target, b.cfg.FitMargin, b.cfg.FitDuration, nil)
}

// --- Groups ---

// CreateGroupFromSelection groups the selected items, replacing the
// selection with the new group. Refusals are reported through OnNotice.
func (b *Board) CreateGroupFromSelection() (*Group, error) {
	selected := make(map[ItemType][]string)
	for _, ref := range b.selection.Refs() {
		selected[ref.Type] = append(selected[ref.Type], ref.ID)
	}
	g, err := b.groups.Create(b.reg, b.dims, selected, b.selection.TightRect())
	if err != nil {
		b.notify(NoticeWarning, groupRefusal(err), err)
		return nil, err
	}
	snapshot := cloneGroup(g)
	b.enqueue("create-group", g.ID, func(ctx context.Context, p Persister) error {
		return p.CreateGroup(ctx, snapshot)
	})
	b.selection.Select(ItemRef{Type: TypeGroup, ID: g.ID}, false)
	return g, nil
}

func groupRefusal(err error) string {
	switch {
	case errors.Is(err, ErrTooFewItems):
		return "Select at least two items to group"
	case errors.Is(err, ErrNoBounds):
		return "Could not compute group bounds"
	}
	return "Could not create group"
}

// MoveGroup moves a group and persists its new origin.
func (b *Board) MoveGroup(id string, x, y float64) bool {
	g, ok := b.groups.Move(id, x, y)
	if !ok {
		return false
	}
	b.persistGroupPosition(g)
	b.selection.Refresh()
	b.events.items.fire([]ItemRef{{Type: TypeGroup, ID: id}})
	return true
}

// RenameGroup sets a group's display name and persists it.
func (b *Board) RenameGroup(id, name string) error {
	g, ok := b.groups.Rename(id, name)
	if !ok {
		return fmt.Errorf("rename %q: %w", id, ErrUnknownGroup)
	}
	snapshot := cloneGroup(g)
	n := name
	b.enqueue("update-group", id, func(ctx context.Context, p Persister) error {
		return p.UpdateGroup(ctx, id, GroupUpdate{Name: &n}, snapshot)
	})
	return nil
}

// Ungroup dissolves groups, writing each child's absolute position back to
// its bucket. Exactly one move is persisted per child.
func (b *Board) Ungroup(ids []string) int {
	moves, removed := b.groups.Ungroup(b.reg, ids)
	for _, m := range moves {
		b.persistItemPosition(m.Ref, m.X, m.Y)
	}
	var refs []ItemRef
	for _, g := range removed {
		b.persistGroupDelete(g.ID)
		refs = append(refs, ItemRef{Type: TypeGroup, ID: g.ID})
	}
	if len(removed) == 0 {
		return 0
	}
	b.selection.DeselectMany(refs)
	for _, m := range moves {
		refs = append(refs, m.Ref)
	}
	b.events.items.fire(refs)
	return len(removed)
}

// UngroupSelection dissolves every selected group and selects its former
// children.
func (b *Board) UngroupSelection() int {
	var ids []string
	var children []ItemRef
	for _, ref := range b.selection.Refs() {
		if ref.Type != TypeGroup {
			continue
		}
		ids = append(ids, ref.ID)
		if g, ok := b.groups.Get(ref.ID); ok {
			for _, c := range g.Children {
				children = append(children, ItemRef{Type: c.Type, ID: c.ID})
			}
		}
	}
	n := b.Ungroup(ids)
	if n > 0 {
		b.selection.SelectMany(children, true)
	}
	return n
}

// DeleteGroups removes groups. With withChildren their children are deleted
// too; otherwise the groups are dissolved like Ungroup, so each child keeps
// its current absolute position.
func (b *Board) DeleteGroups(ids []string, withChildren bool) int {
	if !withChildren {
		return b.Ungroup(ids)
	}
	var childRefs []ItemRef
	for _, id := range ids {
		if g, ok := b.groups.Get(id); ok {
			for _, c := range g.Children {
				childRefs = append(childRefs, ItemRef{Type: c.Type, ID: c.ID})
			}
		}
	}
	removed := b.groups.Delete(ids)
	var refs []ItemRef
	for _, g := range removed {
		b.persistGroupDelete(g.ID)
		refs = append(refs, ItemRef{Type: TypeGroup, ID: g.ID})
	}
	n := len(removed)
	if len(refs) > 0 {
		b.selection.DeselectMany(refs)
		b.events.items.fire(refs)
	}
	return n + b.DeleteItems(childRefs)
}

// --- Hydration ---

// Hydrate replaces the board's items and groups with a backend snapshot.
// Any session is cancelled and the selection cleared. Items with unknown
// types or duplicate ids are skipped and reported in the returned error.
func (b *Board) Hydrate(items []Item, groups []Group) error {
	b.cancelInteraction()
	b.menu = nil
	b.reg.reset()
	b.groups.reset()
	b.cull.reset()

	var errs []error
	for _, it := range items {
		if _, err := b.reg.Add(it); err != nil {
			errs = append(errs, err)
		}
	}
	for i := range groups {
		g := cloneGroup(&groups[i])
		if _, dup := b.groups.Get(g.ID); dup || g.ID == "" {
			errs = append(errs, fmt.Errorf("hydrate group %q: %w", g.ID, ErrDuplicateID))
			continue
		}
		b.groups.add(&g)
	}
	b.selection.ClearAll(true)
	if err := errors.Join(errs...); err != nil {
		b.Logger.Warn("hydrate skipped entries", "err", err)
		return err
	}
	b.Logger.Debug("hydrated", "items", b.reg.Len(), "groups", b.groups.Len())
	return nil
}

func cloneGroup(g *Group) Group {
	cp := *g
	cp.Children = append([]GroupChild(nil), g.Children...)
	return cp
}

// --- Persistence helpers ---

func (b *Board) enqueue(op, id string, run func(ctx context.Context, p Persister) error) {
	if b.persist == nil {
		b.persist = newDispatcher(b.persister, b.Logger, b.cfg.SyncPersistence)
	}
	b.persist.enqueue(op, id, run)
}

func (b *Board) persistItemPosition(ref ItemRef, x, y float64) {
	patch := positionPatch(x, y)
	b.enqueue("move-item", ref.ID, func(ctx context.Context, p Persister) error {
		return p.MoveItem(ctx, ref.Type, ref.ID, patch)
	})
}

func (b *Board) persistGroupPosition(g *Group) {
	snapshot := cloneGroup(g)
	x, y := g.X, g.Y
	b.enqueue("update-group", g.ID, func(ctx context.Context, p Persister) error {
		return p.UpdateGroup(ctx, snapshot.ID, GroupUpdate{X: &x, Y: &y}, snapshot)
	})
}

func (b *Board) persistDelete(ref ItemRef) {
	b.enqueue("delete-item", ref.ID, func(ctx context.Context, p Persister) error {
		return p.DeleteItem(ctx, ref.Type, ref.ID)
	})
}

func (b *Board) persistGroupDelete(id string) {
	b.enqueue("delete-group", id, func(ctx context.Context, p Persister) error {
		return p.DeleteGroup(ctx, id)
	})
}

// --- Selection plumbing ---

func (b *Board) selectionChanged() {
	if b.events.selection.len() == 0 {
		return
	}
	b.events.selection.fire(SelectionChange{
		Order: append([]string(nil), b.selection.Order()...),
		Refs:  b.selection.Refs(),
		Tight: b.selection.TightRect(),
	})
}

// boardGeometry adapts a Board to SelectionGeometry over effective
// positions. Grouped items are represented by their group.
type boardGeometry struct {
	b *Board
}

func (g boardGeometry) ClientRect(ref ItemRef) (Rect, bool) {
	b := g.b
	if ref.Type == TypeGroup {
		grp, ok := b.groups.Get(ref.ID)
		if !ok {
			return Rect{}, false
		}
		return grp.Bounds(), true
	}
	it, ok := b.reg.Get(ref.Type, ref.ID)
	if !ok {
		return Rect{}, false
	}
	return ClientRect(b.groups.Effective(it), b.dims(ref.Type, ref.ID, b.reg)), true
}

func (g boardGeometry) Candidates() []Candidate {
	b := g.b
	var out []Candidate
	for _, t := range b.reg.Types() {
		for _, it := range b.reg.Bucket(t).Items() {
			if _, grouped := b.groups.GroupOf(it.ID); grouped {
				continue
			}
			out = append(out, Candidate{
				Ref:  ItemRef{Type: t, ID: it.ID},
				Rect: ClientRect(it, b.dims(t, it.ID, b.reg)),
			})
		}
	}
	for _, grp := range b.groups.Groups() {
		out = append(out, Candidate{Ref: ItemRef{Type: TypeGroup, ID: grp.ID}, Rect: grp.Bounds()})
	}
	return out
}
