package inkboard

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrTooFewItems is returned when a group would hold fewer than two items.
	ErrTooFewItems = errors.New("inkboard: select at least two items to group")
	// ErrNoBounds is returned when none of the selected ids can be found.
	ErrNoBounds = errors.New("inkboard: could not compute bounds for the selection")
	// ErrUnknownGroup is returned for operations on a missing group.
	ErrUnknownGroup = errors.New("inkboard: unknown group")
)

// RelativeTransform is a group child's placement relative to the group's
// origin.
type RelativeTransform struct {
	X, Y           float64
	ScaleX, ScaleY float64
	Rotation       float64
}

// GroupChild is one member of a Group.
type GroupChild struct {
	ID       string
	Type     ItemType
	Relative RelativeTransform
}

// GroupMeta carries descriptive fields that do not affect geometry.
type GroupMeta struct {
	Name      string
	CreatedAt time.Time
}

// Group is a container whose children move with it as a rigid body. Width
// and Height are fixed at creation.
type Group struct {
	ID            string
	X, Y          float64
	Width, Height float64
	Padding       float64
	Children      []GroupChild
	Meta          GroupMeta
}

// Bounds returns the group's world rectangle.
func (g *Group) Bounds() Rect {
	return Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
}

// ChildPosition returns the absolute world position of a child.
func (g *Group) ChildPosition(c GroupChild) Vec2 {
	return Vec2{g.X + c.Relative.X, g.Y + c.Relative.Y}
}

// GroupUpdate is a partial group change reported to persistence.
type GroupUpdate struct {
	X, Y *float64
	Name *string
}

// ItemMove is an absolute position written back to an item.
type ItemMove struct {
	Ref  ItemRef
	X, Y float64
}

// overrideEntry caches the effective copy of a grouped item so repeated
// resolution passes hand back the same pointer while nothing moved.
type overrideEntry struct {
	src  *Item
	x, y float64
	out  *Item
}

// GroupStore owns every group and resolves the effective positions of their
// children. It never mutates the registry's canonical items except when an
// ungroup writes absolute positions back.
type GroupStore struct {
	groups  []*Group
	index   map[string]int
	byChild map[string]string

	overrides map[string]overrideEntry

	padding float64
	newID   func() string
	now     func() time.Time
}

// NewGroupStore creates an empty store. padding is added around computed
// group bounds.
func NewGroupStore(padding float64) *GroupStore {
	return &GroupStore{
		index:     make(map[string]int),
		byChild:   make(map[string]string),
		overrides: make(map[string]overrideEntry),
		padding:   padding,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Groups returns every group in creation order. The returned slice MUST NOT
// be mutated.
func (s *GroupStore) Groups() []*Group {
	return s.groups
}

// Len returns the number of groups.
func (s *GroupStore) Len() int {
	return len(s.groups)
}

// Get returns the group with the given id.
func (s *GroupStore) Get(id string) (*Group, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.groups[i], true
}

// GroupOf returns the group that claims the item id.
func (s *GroupStore) GroupOf(itemID string) (*Group, bool) {
	gid, ok := s.byChild[itemID]
	if !ok {
		return nil, false
	}
	return s.Get(gid)
}

// Create builds a group from the selected ids. Ids are looked up across every
// bucket in registry order; ids that are groups or already grouped are
// skipped. When hint is non-nil it is used as the group's bounds, otherwise
// the union of the children's client rects padded by the store padding.
func (s *GroupStore) Create(reg *Registry, dims DimensionResolver, selected map[ItemType][]string, hint *Rect) (*Group, error) {
	requested := 0
	for t, ids := range selected {
		if t != TypeGroup {
			requested += len(ids)
		}
	}
	if requested < 2 {
		return nil, ErrTooFewItems
	}

	var (
		found []*Item
		rects []Rect
	)
	for _, t := range reg.Types() {
		for _, id := range selected[t] {
			if _, grouped := s.byChild[id]; grouped {
				continue
			}
			it, ok := reg.Find(id)
			if !ok {
				continue
			}
			found = append(found, it)
			rects = append(rects, ClientRect(it, dims(it.Type, it.ID, reg)))
		}
	}
	if len(found) == 0 {
		return nil, ErrNoBounds
	}
	if len(found) < 2 {
		return nil, ErrTooFewItems
	}

	var bounds Rect
	if hint != nil {
		bounds = *hint
	} else {
		u, _ := unionRects(rects)
		bounds = u.Pad(s.padding)
	}

	g := &Group{
		ID:      s.newID(),
		X:       bounds.X,
		Y:       bounds.Y,
		Width:   bounds.Width,
		Height:  bounds.Height,
		Padding: s.padding,
		Meta:    GroupMeta{CreatedAt: s.now()},
	}
	for _, it := range found {
		g.Children = append(g.Children, GroupChild{
			ID:   it.ID,
			Type: it.Type,
			Relative: RelativeTransform{
				X:      it.X - bounds.X,
				Y:      it.Y - bounds.Y,
				ScaleX: 1,
				ScaleY: 1,
			},
		})
	}
	s.add(g)
	return g, nil
}

// Move rewrites the group's origin. Children follow lazily through Resolve.
func (s *GroupStore) Move(id string, x, y float64) (*Group, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	cp := *s.groups[i]
	cp.X, cp.Y = x, y
	s.groups[i] = &cp
	return &cp, true
}

// Rename sets the group's display name.
func (s *GroupStore) Rename(id, name string) (*Group, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	cp := *s.groups[i]
	cp.Meta.Name = name
	s.groups[i] = &cp
	return &cp, true
}

// Resolve returns a copy of items with every grouped child placed at its
// effective position. Types without grouped children keep their original
// slice; canonical items are never modified.
func (s *GroupStore) Resolve(items map[ItemType][]*Item) map[ItemType][]*Item {
	out := make(map[ItemType][]*Item, len(items))
	for t, list := range items {
		out[t] = s.ResolveList(list)
	}
	return out
}

// ResolveList applies group overrides to one item list.
func (s *GroupStore) ResolveList(list []*Item) []*Item {
	if len(s.byChild) == 0 {
		return list
	}
	var out []*Item
	for i, it := range list {
		eff, overridden := s.effective(it)
		if !overridden {
			if out != nil {
				out = append(out, it)
			}
			continue
		}
		if out == nil {
			out = make([]*Item, i, len(list))
			copy(out, list[:i])
		}
		out = append(out, eff)
	}
	if out == nil {
		return list
	}
	return out
}

// Effective returns the item as presented: at its group-relative position
// when grouped, otherwise unchanged.
func (s *GroupStore) Effective(it *Item) *Item {
	eff, _ := s.effective(it)
	return eff
}

func (s *GroupStore) effective(it *Item) (*Item, bool) {
	g, ok := s.GroupOf(it.ID)
	if !ok {
		return it, false
	}
	ci := slices.IndexFunc(g.Children, func(c GroupChild) bool { return c.ID == it.ID })
	if ci < 0 {
		return it, false
	}
	p := g.ChildPosition(g.Children[ci])
	if e, ok := s.overrides[it.ID]; ok && e.src == it && e.x == p.X && e.y == p.Y {
		return e.out, true
	}
	cp := *it
	cp.X, cp.Y = p.X, p.Y
	s.overrides[it.ID] = overrideEntry{src: it, x: p.X, y: p.Y, out: &cp}
	return &cp, true
}

// Ungroup writes every child's absolute position back to its bucket and
// deletes the groups. The returned moves hold one entry per child that still
// exists; callers persist each exactly once.
func (s *GroupStore) Ungroup(reg *Registry, ids []string) ([]ItemMove, []*Group) {
	var moves []ItemMove
	var removed []*Group
	for _, id := range ids {
		g, ok := s.Get(id)
		if !ok {
			continue
		}
		for _, c := range g.Children {
			p := g.ChildPosition(c)
			if reg.Move(c.Type, c.ID, p.X, p.Y) {
				moves = append(moves, ItemMove{Ref: ItemRef{Type: c.Type, ID: c.ID}, X: p.X, Y: p.Y})
			}
		}
		s.remove(id)
		removed = append(removed, g)
	}
	return moves, removed
}

// Delete removes groups without touching their children.
func (s *GroupStore) Delete(ids []string) []*Group {
	var removed []*Group
	for _, id := range ids {
		if g, ok := s.remove(id); ok {
			removed = append(removed, g)
		}
	}
	return removed
}

// dropChild removes an item from the children of the group that claims it.
// The group keeps its bounds.
func (s *GroupStore) dropChild(itemID string) {
	gid, ok := s.byChild[itemID]
	if !ok {
		return
	}
	i := s.index[gid]
	cp := *s.groups[i]
	cp.Children = slices.DeleteFunc(slices.Clone(cp.Children), func(c GroupChild) bool { return c.ID == itemID })
	s.groups[i] = &cp
	delete(s.byChild, itemID)
	delete(s.overrides, itemID)
}

func (s *GroupStore) add(g *Group) {
	s.index[g.ID] = len(s.groups)
	s.groups = append(s.groups, g)
	for _, c := range g.Children {
		s.byChild[c.ID] = g.ID
	}
}

func (s *GroupStore) remove(id string) (*Group, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	g := s.groups[i]
	for _, c := range g.Children {
		if s.byChild[c.ID] == id {
			delete(s.byChild, c.ID)
			delete(s.overrides, c.ID)
		}
	}
	s.groups = slices.Delete(s.groups, i, i+1)
	delete(s.index, id)
	for j := i; j < len(s.groups); j++ {
		s.index[s.groups[j].ID] = j
	}
	return g, true
}

func (s *GroupStore) reset() {
	s.groups = nil
	clear(s.index)
	clear(s.byChild)
	clear(s.overrides)
}
