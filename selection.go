package inkboard

import "slices"

// ItemRef names one selectable entity: an item, or a group under TypeGroup.
type ItemRef struct {
	Type ItemType
	ID   string
}

// SelectionBox is the live drag rectangle in world space.
type SelectionBox struct {
	StartX, StartY     float64
	CurrentX, CurrentY float64
}

// Rect returns the normalized rectangle spanned by the box.
func (b SelectionBox) Rect() Rect {
	x0, x1 := b.StartX, b.CurrentX
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	y0, y1 := b.StartY, b.CurrentY
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Candidate is a selectable entity with its world-space client rect.
type Candidate struct {
	Ref  ItemRef
	Rect Rect
}

// SelectionGeometry supplies the rectangles the selection store tests
// against. The Board implements it over effective (group-resolved) positions.
type SelectionGeometry interface {
	// ClientRect returns the world rect of one entity.
	ClientRect(ref ItemRef) (Rect, bool)
	// Candidates returns every selectable entity in painter order.
	Candidates() []Candidate
}

// Selection tracks selected ids per type, the global order in which they
// were selected, the live drag rectangle and the padded bounding rect of the
// current selection.
type Selection struct {
	byType map[ItemType][]string
	types  []ItemType // types in order of first use
	order  []string

	origin  *Vec2 // pending rectangle origin
	box     *SelectionBox
	tight   *Rect
	geom    SelectionGeometry
	changed func()

	threshold float64
	minSize   float64
	padding   float64
}

// NewSelection creates an empty selection store. threshold is the travel
// needed to turn a pending rectangle into a live one, minSize the smallest
// committed rectangle edge and padding the tight-rect margin.
func NewSelection(geom SelectionGeometry, threshold, minSize, padding float64) *Selection {
	return &Selection{
		byType:    make(map[ItemType][]string),
		geom:      geom,
		threshold: threshold,
		minSize:   minSize,
		padding:   padding,
	}
}

// IDs returns the selected ids of type t in selection order. The returned
// slice MUST NOT be mutated.
func (s *Selection) IDs(t ItemType) []string {
	return s.byType[t]
}

// Primary returns the first selected id of type t, or "".
func (s *Selection) Primary(t ItemType) string {
	if ids := s.byType[t]; len(ids) > 0 {
		return ids[0]
	}
	return ""
}

// IsSelected reports whether the entity is selected.
func (s *Selection) IsSelected(ref ItemRef) bool {
	return slices.Contains(s.byType[ref.Type], ref.ID)
}

// Order returns every selected id in the order the user selected them. The
// returned slice MUST NOT be mutated.
func (s *Selection) Order() []string {
	return s.order
}

// Refs returns every selected entity in selection order.
func (s *Selection) Refs() []ItemRef {
	typeOf := make(map[string]ItemType, len(s.order))
	for _, t := range s.types {
		for _, id := range s.byType[t] {
			typeOf[id] = t
		}
	}
	refs := make([]ItemRef, 0, len(s.order))
	for _, id := range s.order {
		refs = append(refs, ItemRef{Type: typeOf[id], ID: id})
	}
	return refs
}

// Count returns the number of selected entities.
func (s *Selection) Count() int {
	return len(s.order)
}

// Empty reports whether nothing is selected.
func (s *Selection) Empty() bool {
	return len(s.order) == 0
}

// Box returns a copy of the live drag rectangle, or nil.
func (s *Selection) Box() *SelectionBox {
	if s.box == nil {
		return nil
	}
	b := *s.box
	return &b
}

// TightRect returns a copy of the padded bounds of the selection, or nil
// when nothing is selected.
func (s *Selection) TightRect() *Rect {
	if s.tight == nil {
		return nil
	}
	r := *s.tight
	return &r
}

// Pending reports whether a rectangle selection has begun but not yet moved
// past the threshold.
func (s *Selection) Pending() bool {
	return s.origin != nil && s.box == nil
}

// Active reports whether a live drag rectangle exists.
func (s *Selection) Active() bool {
	return s.box != nil
}

// Select adds the entity to the selection. Unless additive, everything else
// is deselected first.
func (s *Selection) Select(ref ItemRef, additive bool) {
	if !additive {
		s.clearIDs()
	}
	s.add(ref)
	s.reconcile()
}

// SelectMany selects every ref. Unless additive, the previous selection is
// replaced.
func (s *Selection) SelectMany(refs []ItemRef, additive bool) {
	if !additive {
		s.clearIDs()
	}
	for _, ref := range refs {
		s.add(ref)
	}
	s.reconcile()
}

// Toggle selects the entity if unselected and deselects it otherwise.
func (s *Selection) Toggle(ref ItemRef) {
	if s.IsSelected(ref) {
		s.Deselect(ref)
		return
	}
	s.add(ref)
	s.reconcile()
}

// Deselect removes the entity. Unknown refs are a no-op.
func (s *Selection) Deselect(ref ItemRef) {
	ids := s.byType[ref.Type]
	i := slices.Index(ids, ref.ID)
	if i < 0 {
		return
	}
	s.byType[ref.Type] = slices.Delete(slices.Clone(ids), i, i+1)
	s.reconcile()
}

// DeselectMany removes every ref that is selected.
func (s *Selection) DeselectMany(refs []ItemRef) {
	for _, ref := range refs {
		ids := s.byType[ref.Type]
		if i := slices.Index(ids, ref.ID); i >= 0 {
			s.byType[ref.Type] = slices.Delete(slices.Clone(ids), i, i+1)
		}
	}
	s.reconcile()
}

// Set replaces the selected ids of one type, leaving other types alone.
func (s *Selection) Set(t ItemType, ids []string) {
	s.byType[t] = nil
	for _, id := range ids {
		s.add(ItemRef{Type: t, ID: id})
	}
	s.reconcile()
}

// ClearAll deselects everything. The drag rectangle and tight rect are only
// cleared when clearBoxes is set.
func (s *Selection) ClearAll(clearBoxes bool) {
	s.clearIDs()
	if clearBoxes {
		s.box = nil
		s.origin = nil
	}
	s.reconcile()
}

// BeginRectSelect opens a pending rectangle selection at a world point. The
// drag rectangle only appears once the pointer travels past the threshold.
func (s *Selection) BeginRectSelect(origin Vec2) {
	o := origin
	s.origin = &o
	s.box = nil
}

// UpdateRectSelect moves the rectangle's free corner. It reports whether the
// rectangle is live.
func (s *Selection) UpdateRectSelect(current Vec2) bool {
	if s.origin == nil {
		return false
	}
	if s.box == nil {
		if current.Sub(*s.origin).Len() <= s.threshold {
			return false
		}
		s.box = &SelectionBox{StartX: s.origin.X, StartY: s.origin.Y}
	}
	s.box.CurrentX = current.X
	s.box.CurrentY = current.Y
	return true
}

// CancelRectSelect discards any pending or live rectangle.
func (s *Selection) CancelRectSelect() {
	s.origin = nil
	s.box = nil
}

// CommitRectSelect selects every entity whose client rect intersects the
// drag rectangle. Matches are unioned into each type's selection when
// isMultiSelect is set and replace it otherwise; types without matches are
// left alone. Rectangles narrower or shorter than the minimum size are
// discarded without touching the selection. Reports whether a commit happened.
func (s *Selection) CommitRectSelect(isMultiSelect bool) bool {
	box := s.box
	s.origin = nil
	s.box = nil
	if box == nil {
		return false
	}
	r := box.Rect()
	if r.Width < s.minSize || r.Height < s.minSize {
		return false
	}

	matches := make(map[ItemType][]string)
	var matchTypes []ItemType
	for _, c := range s.geom.Candidates() {
		if !c.Rect.Intersects(r) {
			continue
		}
		if _, seen := matches[c.Ref.Type]; !seen {
			matchTypes = append(matchTypes, c.Ref.Type)
		}
		matches[c.Ref.Type] = append(matches[c.Ref.Type], c.Ref.ID)
	}
	for _, t := range matchTypes {
		if !isMultiSelect {
			s.byType[t] = nil
		}
		for _, id := range matches[t] {
			s.add(ItemRef{Type: t, ID: id})
		}
	}
	s.reconcile()
	return true
}

// Refresh recomputes the tight rect, e.g. after selected items moved.
func (s *Selection) Refresh() {
	s.recomputeTight()
}

// onChange registers the callback fired after every reconciliation.
func (s *Selection) onChange(fn func()) {
	s.changed = fn
}

func (s *Selection) add(ref ItemRef) {
	ids := s.byType[ref.Type]
	if slices.Contains(ids, ref.ID) {
		return
	}
	if !slices.Contains(s.types, ref.Type) {
		s.types = append(s.types, ref.Type)
	}
	s.byType[ref.Type] = append(slices.Clip(ids), ref.ID)
	s.order = append(s.order, ref.ID)
}

func (s *Selection) clearIDs() {
	for t := range s.byType {
		s.byType[t] = nil
	}
}

// reconcile keeps the global order consistent with the per-type selections:
// stale ids are dropped, duplicates keep their first occurrence, and selected
// ids missing from the order are appended.
func (s *Selection) reconcile() {
	selected := make(map[string]struct{})
	for _, ids := range s.byType {
		for _, id := range ids {
			selected[id] = struct{}{}
		}
	}
	seen := make(map[string]struct{}, len(selected))
	order := make([]string, 0, len(selected))
	for _, id := range s.order {
		if _, ok := selected[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		order = append(order, id)
	}
	for _, t := range s.types {
		for _, id := range s.byType[t] {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				order = append(order, id)
			}
		}
	}
	s.order = order
	s.recomputeTight()
	if s.changed != nil {
		s.changed()
	}
}

func (s *Selection) recomputeTight() {
	if len(s.order) == 0 || s.geom == nil {
		s.tight = nil
		return
	}
	var rects []Rect
	for _, t := range s.types {
		for _, id := range s.byType[t] {
			if r, ok := s.geom.ClientRect(ItemRef{Type: t, ID: id}); ok {
				rects = append(rects, r)
			}
		}
	}
	u, ok := unionRects(rects)
	if !ok {
		s.tight = nil
		return
	}
	u = u.Pad(s.padding)
	s.tight = &u
}
