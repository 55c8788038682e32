package inkboard

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownType is returned when an item names a type with no bucket.
	ErrUnknownType = errors.New("inkboard: unknown item type")
	// ErrDuplicateID is returned when an id is already used by another item.
	ErrDuplicateID = errors.New("inkboard: duplicate item id")
)

// Item is one element on the canvas. Coordinates are in world space.
//
// Items held by a Registry are treated as immutable: every change installs a
// fresh *Item, so a pointer comparison tells whether an item changed.
type Item struct {
	ID   string
	Type ItemType

	// X and Y are the world position of the item's top-left corner.
	X, Y float64
	// Width and Height override the type's SizeRule when non-zero
	// (e.g. the natural size of an image).
	Width, Height float64
	// Rotation is in degrees, clockwise about (X, Y).
	Rotation float64

	Collapsed bool
	Pinned    bool

	// Data carries type-specific fields owned by presentation collaborators.
	Data any
}

// SizeRule gives the default dimensions of a type when an item carries none.
type SizeRule struct {
	Width, Height                   float64
	CollapsedWidth, CollapsedHeight float64
}

// size resolves the rule for an item.
func (r SizeRule) size(it *Item) Size {
	if it.Width > 0 || it.Height > 0 {
		return Size{it.Width, it.Height}
	}
	if it.Collapsed && (r.CollapsedWidth > 0 || r.CollapsedHeight > 0) {
		return Size{r.CollapsedWidth, r.CollapsedHeight}
	}
	return Size{r.Width, r.Height}
}

// DefaultSizeRules are the sizes of the built-in types, in registry order.
var DefaultSizeRules = []struct {
	Type ItemType
	Rule SizeRule
}{
	{TypeImage, SizeRule{Width: 512, Height: 512}},
	{TypeText, SizeRule{Width: 300, Height: 60}},
	{TypeImageModal, SizeRule{600, 700, 600, 420}},
	{TypeVideoModal, SizeRule{600, 700, 600, 420}},
	{TypeMusicModal, SizeRule{600, 300, 600, 200}},
	{TypeUpscaleModal, SizeRule{600, 520, 600, 400}},
	{TypeRemoveBgModal, SizeRule{600, 520, 600, 400}},
	{TypeEraseModal, SizeRule{600, 520, 600, 400}},
	{TypeExpandModal, SizeRule{600, 520, 600, 400}},
	{TypeVectorizeModal, SizeRule{600, 520, 600, 400}},
	{TypeMultiangleModal, SizeRule{600, 520, 600, 400}},
	{TypeCompareModal, SizeRule{800, 520, 800, 400}},
	{TypeNextSceneModal, SizeRule{600, 520, 600, 400}},
	{TypeStoryboardModal, SizeRule{900, 600, 900, 400}},
	{TypeScriptFrame, SizeRule{400, 500, 400, 120}},
	{TypeSceneFrame, SizeRule{400, 300, 400, 120}},
	{TypeTextInput, SizeRule{400, 300, 400, 200}},
}

// Bucket holds every item of one type in insertion order.
type Bucket struct {
	Type ItemType
	Rule SizeRule

	items []*Item
	index map[string]int
}

// Items returns the bucket's items. The returned slice MUST NOT be mutated
// and is only valid until the next change to the bucket.
func (b *Bucket) Items() []*Item {
	return b.items
}

// Len returns the number of items.
func (b *Bucket) Len() int {
	return len(b.items)
}

// Get returns the item with the given id.
func (b *Bucket) Get(id string) (*Item, bool) {
	i, ok := b.index[id]
	if !ok {
		return nil, false
	}
	return b.items[i], true
}

func (b *Bucket) add(it *Item) {
	b.index[it.ID] = len(b.items)
	b.items = append(b.items, it)
}

// update installs a modified copy of the item. Reports false if the id is
// not present.
func (b *Bucket) update(id string, fn func(*Item)) (*Item, bool) {
	i, ok := b.index[id]
	if !ok {
		return nil, false
	}
	cp := *b.items[i]
	fn(&cp)
	b.items[i] = &cp
	return &cp, true
}

func (b *Bucket) remove(id string) (*Item, bool) {
	i, ok := b.index[id]
	if !ok {
		return nil, false
	}
	it := b.items[i]
	b.items = slices.Delete(b.items, i, i+1)
	delete(b.index, id)
	for j := i; j < len(b.items); j++ {
		b.index[b.items[j].ID] = j
	}
	return it, true
}

func (b *Bucket) reset() {
	b.items = nil
	b.index = make(map[string]int)
}

// Registry is the typed store of every item bucket, keyed by ItemType.
type Registry struct {
	order   []ItemType
	buckets map[ItemType]*Bucket
}

// NewRegistry creates a registry with every built-in type registered.
func NewRegistry() *Registry {
	r := &Registry{buckets: make(map[ItemType]*Bucket)}
	for _, d := range DefaultSizeRules {
		r.Register(d.Type, d.Rule)
	}
	return r
}

// Register adds a bucket for t, or replaces the size rule of an existing one.
// New types are appended to the registry order (painted on top).
func (r *Registry) Register(t ItemType, rule SizeRule) *Bucket {
	if b, ok := r.buckets[t]; ok {
		b.Rule = rule
		return b
	}
	b := &Bucket{Type: t, Rule: rule, index: make(map[string]int)}
	r.buckets[t] = b
	r.order = append(r.order, t)
	return b
}

// Types returns the registered types in registry order. The returned slice
// MUST NOT be mutated.
func (r *Registry) Types() []ItemType {
	return r.order
}

// Bucket returns the bucket for t, or nil.
func (r *Registry) Bucket(t ItemType) *Bucket {
	return r.buckets[t]
}

// Get returns the item of type t with the given id.
func (r *Registry) Get(t ItemType, id string) (*Item, bool) {
	b := r.buckets[t]
	if b == nil {
		return nil, false
	}
	return b.Get(id)
}

// Find walks every bucket in registry order and returns the first item with
// the given id.
func (r *Registry) Find(id string) (*Item, bool) {
	for _, t := range r.order {
		if it, ok := r.buckets[t].Get(id); ok {
			return it, true
		}
	}
	return nil, false
}

// Len returns the total number of items.
func (r *Registry) Len() int {
	n := 0
	for _, b := range r.buckets {
		n += b.Len()
	}
	return n
}

// Add stores a copy of it and returns the stored pointer.
func (r *Registry) Add(it Item) (*Item, error) {
	b := r.buckets[it.Type]
	if b == nil {
		return nil, fmt.Errorf("add %q: %w", it.Type, ErrUnknownType)
	}
	if _, dup := r.Find(it.ID); dup {
		return nil, fmt.Errorf("add %s %q: %w", it.Type, it.ID, ErrDuplicateID)
	}
	cp := it
	b.add(&cp)
	return &cp, nil
}

// Move sets the position of an item. A missing id is a no-op returning false.
func (r *Registry) Move(t ItemType, id string, x, y float64) bool {
	_, ok := r.Update(t, id, func(it *Item) {
		it.X, it.Y = x, y
	})
	return ok
}

// Update applies fn to a copy of the item and installs the copy.
func (r *Registry) Update(t ItemType, id string, fn func(*Item)) (*Item, bool) {
	b := r.buckets[t]
	if b == nil {
		return nil, false
	}
	return b.update(id, fn)
}

// Remove deletes an item. A missing id is a no-op returning false.
func (r *Registry) Remove(t ItemType, id string) (*Item, bool) {
	b := r.buckets[t]
	if b == nil {
		return nil, false
	}
	return b.remove(id)
}

// Snapshot returns every bucket's item slice keyed by type. The slices share
// storage with the buckets and MUST NOT be mutated.
func (r *Registry) Snapshot() map[ItemType][]*Item {
	out := make(map[ItemType][]*Item, len(r.order))
	for _, t := range r.order {
		out[t] = r.buckets[t].items
	}
	return out
}

func (r *Registry) reset() {
	for _, b := range r.buckets {
		b.reset()
	}
}

// DimensionResolver returns the current size of an item in world units.
// Implementations must be pure and O(1) amortized.
type DimensionResolver func(t ItemType, id string, reg *Registry) Size

// ResolveDimensions is the default DimensionResolver: explicit item size,
// then the type's collapsed or expanded SizeRule. Unknown ids resolve to a
// zero size.
func ResolveDimensions(t ItemType, id string, reg *Registry) Size {
	b := reg.Bucket(t)
	if b == nil {
		return Size{}
	}
	it, ok := b.Get(id)
	if !ok {
		return Size{}
	}
	return b.Rule.size(it)
}
