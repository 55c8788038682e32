package inkboard

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"testing"
)

// newTestBoard returns a 1000x800 board with inline persistence and a silent
// logger.
func newTestBoard(t *testing.T) *Board {
	t.Helper()
	cfg := DefaultConfig()
	cfg.SyncPersistence = true
	b := NewBoard(cfg)
	b.SetLogger(slog.New(slog.DiscardHandler))
	b.SetScreenSize(1000, 800)
	t.Cleanup(b.Close)
	return b
}

// addImage adds a 100x100 image at (x, y).
func addImage(t *testing.T, b *Board, id string, x, y float64) *Item {
	t.Helper()
	it, err := b.AddItem(Item{ID: id, Type: TypeImage, X: x, Y: y, Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("AddItem(%s): %v", id, err)
	}
	return it
}

// persistLog records the calls a board makes to its persister.
type persistLog struct {
	creates      []string
	moves        []string
	deletes      []string
	groupCreates []string
	groupUpdates []GroupUpdate
	groupDeletes []string
}

func (l *persistLog) persister() PersistFuncs {
	return PersistFuncs{
		OnCreateItem: func(_ context.Context, it Item) error {
			l.creates = append(l.creates, it.ID)
			return nil
		},
		OnMoveItem: func(_ context.Context, _ ItemType, id string, p ItemPatch) error {
			if p.X != nil {
				l.moves = append(l.moves, id)
			}
			return nil
		},
		OnDeleteItem: func(_ context.Context, _ ItemType, id string) error {
			l.deletes = append(l.deletes, id)
			return nil
		},
		OnCreateGroup: func(_ context.Context, g Group) error {
			l.groupCreates = append(l.groupCreates, g.ID)
			return nil
		},
		OnUpdateGroup: func(_ context.Context, _ string, u GroupUpdate, _ Group) error {
			l.groupUpdates = append(l.groupUpdates, u)
			return nil
		},
		OnDeleteGroup: func(_ context.Context, id string) error {
			l.groupDeletes = append(l.groupDeletes, id)
			return nil
		},
	}
}

func TestNewBoardInvalidConfigFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ZoomStep = 0.5
	b := NewBoard(cfg)
	if b.Config().ZoomStep != DefaultConfig().ZoomStep {
		t.Errorf("ZoomStep = %v, want default", b.Config().ZoomStep)
	}
}

func TestAddItemFillsIDAndPersists(t *testing.T) {
	b := newTestBoard(t)
	var log persistLog
	b.SetPersister(log.persister())
	b.newID = func() string { return "fresh" }

	var changed []ItemRef
	b.OnItemsChange(func(refs []ItemRef) { changed = append(changed, refs...) })

	it, err := b.AddItem(Item{Type: TypeText})
	if err != nil {
		t.Fatal(err)
	}
	if it.ID != "fresh" {
		t.Errorf("ID = %q, want fresh", it.ID)
	}
	if !slices.Equal(log.creates, []string{"fresh"}) {
		t.Errorf("creates = %v", log.creates)
	}
	if len(changed) != 1 || changed[0] != (ItemRef{TypeText, "fresh"}) {
		t.Errorf("items event = %v", changed)
	}
}

func TestMoveItemRefusesGrouped(t *testing.T) {
	b := newTestBoard(t)
	addImage(t, b, "a", 0, 0)
	addImage(t, b, "b", 200, 0)
	if !b.MoveItem(ItemRef{TypeImage, "a"}, 10, 10) {
		t.Fatal("MoveItem of a free item failed")
	}
	b.Selection().SelectMany([]ItemRef{{TypeImage, "a"}, {TypeImage, "b"}}, false)
	if _, err := b.CreateGroupFromSelection(); err != nil {
		t.Fatal(err)
	}
	if b.MoveItem(ItemRef{TypeImage, "a"}, 500, 500) {
		t.Error("grouped item should not move on its own")
	}
	if b.MoveItem(ItemRef{TypeImage, "ghost"}, 1, 1) {
		t.Error("missing item should report false")
	}
}

func TestPersistFailureKeepsLocalState(t *testing.T) {
	b := newTestBoard(t)
	addImage(t, b, "a", 0, 0)
	b.SetPersister(PersistFuncs{
		OnMoveItem: func(context.Context, ItemType, string, ItemPatch) error {
			return errors.New("offline")
		},
	})
	if !b.MoveItem(ItemRef{TypeImage, "a"}, 40, 50) {
		t.Fatal("MoveItem failed")
	}
	it, _ := b.Registry().Get(TypeImage, "a")
	if it.X != 40 || it.Y != 50 {
		t.Errorf("position = (%v,%v), want (40,50) despite the failed write", it.X, it.Y)
	}
}

func TestVisibleItemsCulls(t *testing.T) {
	b := newTestBoard(t)
	addImage(t, b, "near", 1400, 0) // inside the 500px padding
	addImage(t, b, "far", 5000, 5000)

	vis := b.VisibleItems(TypeImage)
	if len(vis) != 1 || vis[0].ID != "near" {
		t.Fatalf("visible = %v, want [near]", vis)
	}
	if b.VisibleItems("nope") != nil {
		t.Error("unknown type should have no visible items")
	}
}

func TestVisibleItemsStableAcrossPan(t *testing.T) {
	b := newTestBoard(t)
	addImage(t, b, "a", 100, 100)
	addImage(t, b, "b", 300, 100)

	first := b.Frame().Items[TypeImage]
	b.Camera().PanBy(15, 5)
	second := b.Frame().Items[TypeImage]
	if !sameSlice(first, second) {
		t.Error("a pan that changes nothing in view should reuse the visible slice")
	}

	b.MoveItem(ItemRef{TypeImage, "a"}, 120, 100)
	third := b.Frame().Items[TypeImage]
	if sameSlice(second, third) {
		t.Error("moving an item should produce a new slice")
	}
}

func TestFrameCarriesSelectionState(t *testing.T) {
	b := newTestBoard(t)
	addImage(t, b, "a", 100, 100)
	addImage(t, b, "b", 200, 200)
	b.Selection().SelectMany([]ItemRef{{TypeImage, "a"}, {TypeImage, "b"}}, false)

	f := b.Frame()
	if f.TightRect == nil || *f.TightRect != (Rect{80, 80, 240, 240}) {
		t.Errorf("TightRect = %v, want {80 80 240 240}", f.TightRect)
	}
	if f.LOD != LODDetail || f.Cursor != CursorDefault {
		t.Errorf("LOD=%v Cursor=%v", f.LOD, f.Cursor)
	}
}

func TestGroupedItemsRenderAtEffectivePosition(t *testing.T) {
	b := newTestBoard(t)
	addImage(t, b, "a", 100, 100)
	addImage(t, b, "b", 300, 100)
	b.Selection().SelectMany([]ItemRef{{TypeImage, "a"}, {TypeImage, "b"}}, false)
	g, err := b.CreateGroupFromSelection()
	if err != nil {
		t.Fatal(err)
	}
	b.MoveGroup(g.ID, 180, 80)

	vis := b.VisibleItems(TypeImage)
	if len(vis) != 2 || vis[0].X != 200 || vis[1].X != 400 {
		t.Fatalf("visible positions = %v", vis)
	}
	stored, _ := b.Registry().Get(TypeImage, "a")
	if stored.X != 100 {
		t.Errorf("stored position changed to %v", stored.X)
	}
	if got := b.VisibleGroups(); len(got) != 1 || got[0].ID != g.ID {
		t.Errorf("VisibleGroups = %v", got)
	}
}

func TestCreateGroupFromSelection(t *testing.T) {
	b := newTestBoard(t)
	var log persistLog
	b.SetPersister(log.persister())
	addImage(t, b, "a", 100, 100)
	addImage(t, b, "b", 300, 100)
	b.Selection().SelectMany([]ItemRef{{TypeImage, "a"}, {TypeImage, "b"}}, false)

	g, err := b.CreateGroupFromSelection()
	if err != nil {
		t.Fatal(err)
	}
	if g.Bounds() != (Rect{80, 80, 340, 140}) {
		t.Errorf("bounds = %+v", g.Bounds())
	}
	if !slices.Equal(log.groupCreates, []string{g.ID}) {
		t.Errorf("groupCreates = %v", log.groupCreates)
	}
	if refs := b.Selection().Refs(); len(refs) != 1 || refs[0] != (ItemRef{TypeGroup, g.ID}) {
		t.Errorf("selection = %v, want only the group", refs)
	}
}

func TestCreateGroupUsesSelectionBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SyncPersistence = true
	cfg.SelectionPadding = 30
	b := NewBoard(cfg)
	b.SetLogger(slog.New(slog.DiscardHandler))
	t.Cleanup(b.Close)
	addImage(t, b, "a", 100, 100)
	addImage(t, b, "b", 300, 100)
	b.Selection().SelectMany([]ItemRef{{TypeImage, "a"}, {TypeImage, "b"}}, false)

	g, err := b.CreateGroupFromSelection()
	if err != nil {
		t.Fatal(err)
	}
	if g.Bounds() != (Rect{70, 70, 360, 160}) {
		t.Errorf("bounds = %+v, want the selection's tight rect", g.Bounds())
	}
	if c := g.Children[0]; c.Relative.X != 30 || c.Relative.Y != 30 {
		t.Errorf("relative = %+v", c.Relative)
	}
}

func TestCreateGroupRefusalNotice(t *testing.T) {
	b := newTestBoard(t)
	addImage(t, b, "a", 0, 0)
	var notices []Notice
	b.OnNotice(func(n Notice) { notices = append(notices, n) })

	b.Selection().Select(ItemRef{TypeImage, "a"}, false)
	if _, err := b.CreateGroupFromSelection(); !errors.Is(err, ErrTooFewItems) {
		t.Fatalf("err = %v, want ErrTooFewItems", err)
	}
	if len(notices) != 1 || notices[0].Level != NoticeWarning || notices[0].Message != "Select at least two items to group" {
		t.Errorf("notices = %+v", notices)
	}
	if b.Groups().Len() != 0 {
		t.Error("no group should be created")
	}
}

func TestUngroupSelectionPersistsOneMovePerChild(t *testing.T) {
	b := newTestBoard(t)
	var log persistLog
	b.SetPersister(log.persister())
	addImage(t, b, "a", 100, 100)
	addImage(t, b, "b", 300, 100)
	b.Selection().SelectMany([]ItemRef{{TypeImage, "a"}, {TypeImage, "b"}}, false)
	g, _ := b.CreateGroupFromSelection()
	b.MoveGroup(g.ID, 180, 80)

	log.moves = nil
	if n := b.UngroupSelection(); n != 1 {
		t.Fatalf("UngroupSelection = %d, want 1", n)
	}
	if !slices.Equal(log.moves, []string{"a", "b"}) {
		t.Errorf("moves = %v, want one per child", log.moves)
	}
	if !slices.Equal(log.groupDeletes, []string{g.ID}) {
		t.Errorf("groupDeletes = %v", log.groupDeletes)
	}
	a, _ := b.Registry().Get(TypeImage, "a")
	if a.X != 200 || a.Y != 100 {
		t.Errorf("a = (%v,%v), want (200,100)", a.X, a.Y)
	}
	if got := b.Selection().Order(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("selection = %v, want the former children", got)
	}
}

func TestDeleteSelectionWithGroup(t *testing.T) {
	b := newTestBoard(t)
	var log persistLog
	b.SetPersister(log.persister())
	addImage(t, b, "a", 100, 100)
	addImage(t, b, "b", 300, 100)
	addImage(t, b, "c", 600, 100)
	b.Selection().SelectMany([]ItemRef{{TypeImage, "a"}, {TypeImage, "b"}}, false)
	g, _ := b.CreateGroupFromSelection()
	b.Selection().Select(ItemRef{TypeImage, "c"}, true)

	if n := b.DeleteSelection(); n != 4 {
		t.Errorf("DeleteSelection = %d, want 4", n)
	}
	if b.Registry().Len() != 0 || b.Groups().Len() != 0 {
		t.Errorf("left %d items, %d groups", b.Registry().Len(), b.Groups().Len())
	}
	if !b.Selection().Empty() {
		t.Error("selection should be empty")
	}
	if len(log.deletes) != 3 || !slices.Equal(log.groupDeletes, []string{g.ID}) {
		t.Errorf("deletes=%v groupDeletes=%v", log.deletes, log.groupDeletes)
	}
}

func TestDeleteItemDetachesFromGroup(t *testing.T) {
	b := newTestBoard(t)
	addImage(t, b, "a", 100, 100)
	addImage(t, b, "b", 300, 100)
	addImage(t, b, "c", 500, 100)
	b.Selection().SelectMany([]ItemRef{{TypeImage, "a"}, {TypeImage, "b"}, {TypeImage, "c"}}, false)
	g, _ := b.CreateGroupFromSelection()

	b.DeleteItems([]ItemRef{{TypeImage, "b"}})
	got, ok := b.Groups().Get(g.ID)
	if !ok || len(got.Children) != 2 {
		t.Fatalf("group children = %v", got)
	}
	if got.Bounds() != g.Bounds() {
		t.Error("group bounds should be kept")
	}
}

func TestDeleteGroupsKeepsChildren(t *testing.T) {
	b := newTestBoard(t)
	var log persistLog
	b.SetPersister(log.persister())
	addImage(t, b, "a", 100, 100)
	addImage(t, b, "b", 300, 100)
	b.Selection().SelectMany([]ItemRef{{TypeImage, "a"}, {TypeImage, "b"}}, false)
	g, _ := b.CreateGroupFromSelection()
	b.MoveGroup(g.ID, 0, 0)

	log.moves = nil
	if n := b.DeleteGroups([]string{g.ID}, false); n != 1 {
		t.Fatalf("DeleteGroups = %d", n)
	}
	// The group moved by (-80,-80); children keep that offset.
	a, _ := b.Registry().Get(TypeImage, "a")
	if a.X != 20 || a.Y != 20 {
		t.Errorf("a = (%v,%v), want (20,20)", a.X, a.Y)
	}
	c, _ := b.Registry().Get(TypeImage, "b")
	if c.X != 220 || c.Y != 20 {
		t.Errorf("b = (%v,%v), want (220,20)", c.X, c.Y)
	}
	if !slices.Equal(log.moves, []string{"a", "b"}) {
		t.Errorf("moves = %v, want one per child", log.moves)
	}
	if !slices.Equal(log.groupDeletes, []string{g.ID}) {
		t.Errorf("groupDeletes = %v", log.groupDeletes)
	}
}

func TestRenameGroup(t *testing.T) {
	b := newTestBoard(t)
	var log persistLog
	b.SetPersister(log.persister())
	if err := b.RenameGroup("missing", "x"); !errors.Is(err, ErrUnknownGroup) {
		t.Errorf("err = %v, want ErrUnknownGroup", err)
	}
	addImage(t, b, "a", 0, 0)
	addImage(t, b, "b", 200, 0)
	b.SelectAll()
	g, _ := b.CreateGroupFromSelection()
	if err := b.RenameGroup(g.ID, "moodboard"); err != nil {
		t.Fatal(err)
	}
	if len(log.groupUpdates) != 1 || *log.groupUpdates[0].Name != "moodboard" {
		t.Errorf("groupUpdates = %+v", log.groupUpdates)
	}
}

func TestTogglePin(t *testing.T) {
	b := newTestBoard(t)
	addImage(t, b, "a", 0, 0)
	addImage(t, b, "b", 200, 0)
	if _, ok := b.TogglePin(); ok {
		t.Error("empty selection should not toggle")
	}
	b.Selection().Select(ItemRef{TypeImage, "a"}, false)
	b.TogglePin()
	b.Selection().Select(ItemRef{TypeImage, "b"}, true)

	// One unpinned item in the selection pins them all.
	if pinned, ok := b.TogglePin(); !ok || !pinned {
		t.Fatalf("TogglePin = %v, %v", pinned, ok)
	}
	if pinned, _ := b.TogglePin(); pinned {
		t.Error("all pinned: toggle should unpin")
	}
	a, _ := b.Registry().Get(TypeImage, "a")
	if a.Pinned {
		t.Error("a should be unpinned")
	}
}

func TestSetCollapsedResizesSelection(t *testing.T) {
	b := newTestBoard(t)
	b.AddItem(Item{ID: "m", Type: TypeImageModal})
	b.Selection().Select(ItemRef{TypeImageModal, "m"}, false)
	if !b.SetCollapsed(ItemRef{TypeImageModal, "m"}, true) {
		t.Fatal("SetCollapsed failed")
	}
	if got := b.Size(ItemRef{TypeImageModal, "m"}); got != (Size{600, 420}) {
		t.Errorf("Size = %v", got)
	}
	if r := b.Selection().TightRect(); r == nil || r.Height != 460 {
		t.Errorf("TightRect = %v, want height 460", r)
	}
}

func TestFitToView(t *testing.T) {
	b := newTestBoard(t)
	if b.FitToView() {
		t.Error("empty board should not fit")
	}
	addImage(t, b, "a", 2000, 2000)
	if !b.FitToView() {
		t.Fatal("FitToView failed")
	}
	for i := 0; i < 60 && b.Camera().Animating(); i++ {
		b.Update(1.0 / 60)
	}
	c := b.WorldToScreen(Vec2{2050, 2050})
	if !approxEqual(c.X, 500, 1e-3) || !approxEqual(c.Y, 400, 1e-3) {
		t.Errorf("item centre on screen = %v, want (500,400)", c)
	}
}

func TestViewportChangeFiresOncePerUpdate(t *testing.T) {
	b := newTestBoard(t)
	var calls int
	b.OnViewportChange(func(Viewport) { calls++ })
	b.Camera().PanBy(10, 0)
	b.Camera().PanBy(10, 0)
	b.Update(1.0 / 60)
	b.Update(1.0 / 60)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestSelectionChangeEvent(t *testing.T) {
	b := newTestBoard(t)
	addImage(t, b, "a", 0, 0)
	var got []SelectionChange
	h := b.OnSelectionChange(func(c SelectionChange) { got = append(got, c) })
	b.SelectAll()
	h.Remove()
	b.ClearSelection(true)
	if len(got) != 1 || !slices.Equal(got[0].Order, []string{"a"}) || got[0].Tight == nil {
		t.Errorf("events = %+v", got)
	}
}

func TestHydrate(t *testing.T) {
	b := newTestBoard(t)
	addImage(t, b, "old", 0, 0)
	b.SelectAll()

	items := []Item{
		{ID: "a", Type: TypeImage, X: 0, Y: 0},
		{ID: "b", Type: TypeText, X: 600, Y: 0},
		{ID: "x", Type: "unknown"},
	}
	groups := []Group{{
		ID: "g", X: -20, Y: -20, Width: 1000, Height: 600,
		Children: []GroupChild{
			{ID: "a", Type: TypeImage, Relative: RelativeTransform{X: 20, Y: 20, ScaleX: 1, ScaleY: 1}},
			{ID: "b", Type: TypeText, Relative: RelativeTransform{X: 620, Y: 20, ScaleX: 1, ScaleY: 1}},
		},
	}}
	err := b.Hydrate(items, groups)
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("err = %v, want ErrUnknownType", err)
	}
	if b.Registry().Len() != 2 || b.Groups().Len() != 1 {
		t.Errorf("items=%d groups=%d", b.Registry().Len(), b.Groups().Len())
	}
	if _, ok := b.Registry().Get(TypeImage, "old"); ok {
		t.Error("hydrate should replace existing items")
	}
	if !b.Selection().Empty() {
		t.Error("hydrate should clear the selection")
	}
	if g, ok := b.Groups().GroupOf("b"); !ok || g.ID != "g" {
		t.Error("b should belong to g")
	}

	// Mutating the caller's slice must not reach the board.
	groups[0].Children[0].Relative.X = 999
	g, _ := b.Groups().Get("g")
	if g.Children[0].Relative.X != 20 {
		t.Error("hydrated groups should be copied")
	}
}
