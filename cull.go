package inkboard

import "slices"

// Bounds is a world-space rectangle expressed by its edges.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// PaddedBounds expands the visible world rectangle by padding world units on
// every side.
func PaddedBounds(visible Rect, padding float64) Bounds {
	return Bounds{
		MinX: visible.X - padding,
		MinY: visible.Y - padding,
		MaxX: visible.X + visible.Width + padding,
		MaxY: visible.Y + visible.Height + padding,
	}
}

// IsRectInViewport reports whether the rectangle (x, y, w, h) is at least
// partly inside b. Touching an edge counts as inside.
func (b Bounds) IsRectInViewport(x, y, w, h float64) bool {
	if x+w < b.MinX || x > b.MaxX {
		return false
	}
	if y+h < b.MinY || y > b.MaxY {
		return false
	}
	return true
}

// LODForScale picks the level-of-detail band for a viewport scale.
func LODForScale(scale, detailMin, labelMin float64) LOD {
	switch {
	case scale >= detailMin:
		return LODDetail
	case scale >= labelMin:
		return LODLabel
	default:
		return LODOverview
	}
}

// culler filters item lists down to the padded viewport, handing back the
// previous frame's slice when nothing changed.
type culler struct {
	prev       map[ItemType][]*Item
	prevGroups []*Group
}

func newCuller() *culler {
	return &culler{prev: make(map[ItemType][]*Item)}
}

// reset forgets cached output, e.g. after a hydrate.
func (c *culler) reset() {
	clear(c.prev)
	c.prevGroups = nil
}

// items filters src for type t.
func (c *culler) items(t ItemType, src []*Item, keep func(*Item) bool) []*Item {
	out := stableFilter(c.prev[t], src, keep)
	c.prev[t] = out
	return out
}

// groups filters the group list.
func (c *culler) groups(src []*Group, keep func(*Group) bool) []*Group {
	out := stableFilter(c.prevGroups, src, keep)
	c.prevGroups = out
	return out
}

// stableFilter returns the elements of src accepted by keep. When the result
// is element-wise identical to prev, prev itself is returned so consumers can
// skip work by comparing slice identity.
func stableFilter[T any](prev, src []*T, keep func(*T) bool) []*T {
	n := 0 // length of the prefix of prev matched so far
	var out []*T
	for _, it := range src {
		if !keep(it) {
			continue
		}
		if out == nil {
			if n < len(prev) && prev[n] == it {
				n++
				continue
			}
			out = make([]*T, n, len(src))
			copy(out, prev[:n])
		}
		out = append(out, it)
	}
	if out != nil {
		return out
	}
	if n == len(prev) {
		return prev
	}
	if n == 0 {
		return nil
	}
	return slices.Clone(prev[:n])
}

// sameSlice reports whether a and b share identity (same backing array and
// length). Two empty slices are considered the same.
func sameSlice[T any](a, b []*T) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}
