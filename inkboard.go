package inkboard

import "math"

// Vec2 is a 2D vector used for positions, offsets and deltas throughout the
// API. Whether it is in screen or world space depends on the call site.
type Vec2 struct {
	X, Y float64
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Size is a width/height pair in world units.
type Size struct {
	Width, Height float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	minX := math.Min(r.X, other.X)
	minY := math.Min(r.Y, other.Y)
	maxX := math.Max(r.X+r.Width, other.X+other.Width)
	maxY := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Pad grows the rectangle by p on every side.
func (r Rect) Pad(p float64) Rect {
	return Rect{X: r.X - p, Y: r.Y - p, Width: r.Width + 2*p, Height: r.Height + 2*p}
}

// Center returns the centre point of the rectangle.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// unionRects folds rects into one bounding rectangle. ok is false when rects
// is empty.
func unionRects(rects []Rect) (out Rect, ok bool) {
	for i, r := range rects {
		if i == 0 {
			out = r
			continue
		}
		out = out.Union(r)
	}
	return out, len(rects) > 0
}

// ItemType is the tag of an item bucket in the Registry.
type ItemType string

// Built-in item types, in registry order. Order matters: it is the order in
// which id lookups walk the buckets and the painter order used for hit testing
// (later types are on top).
const (
	TypeImage           ItemType = "image"
	TypeText            ItemType = "text"
	TypeImageModal      ItemType = "image-modal"
	TypeVideoModal      ItemType = "video-modal"
	TypeMusicModal      ItemType = "music-modal"
	TypeUpscaleModal    ItemType = "upscale-modal"
	TypeRemoveBgModal   ItemType = "removebg-modal"
	TypeEraseModal      ItemType = "erase-modal"
	TypeExpandModal     ItemType = "expand-modal"
	TypeVectorizeModal  ItemType = "vectorize-modal"
	TypeMultiangleModal ItemType = "multiangle-modal"
	TypeCompareModal    ItemType = "compare-modal"
	TypeNextSceneModal  ItemType = "next-scene-modal"
	TypeStoryboardModal ItemType = "storyboard-modal"
	TypeScriptFrame     ItemType = "script-frame"
	TypeSceneFrame      ItemType = "scene-frame"
	TypeTextInput       ItemType = "text-input"

	// TypeGroup is the pseudo type under which groups are selected. It is
	// never registered as an item bucket.
	TypeGroup ItemType = "group"
)

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// Has reports whether every modifier in m is held.
func (k KeyModifiers) Has(m KeyModifiers) bool { return k&m == m }

// command reports whether Ctrl or Cmd is held.
func (k KeyModifiers) command() bool { return k&(ModCtrl|ModMeta) != 0 }

// Tool is the active canvas tool.
type Tool uint8

const (
	ToolCursor Tool = iota // select and drag items
	ToolMove               // hand tool: drag pans the canvas
	ToolImage              // spawn an image generator
	ToolVideo              // spawn a video generator
	ToolMusic              // spawn a music generator
	ToolText               // spawn a canvas text node
)

// creationType returns the item type a creation tool spawns.
func (t Tool) creationType() (ItemType, bool) {
	switch t {
	case ToolImage:
		return TypeImageModal, true
	case ToolVideo:
		return TypeVideoModal, true
	case ToolMusic:
		return TypeMusicModal, true
	case ToolText:
		return TypeText, true
	}
	return "", false
}

// CursorShape is the pointer cursor the host should display.
type CursorShape uint8

const (
	CursorDefault   CursorShape = iota // arrow
	CursorGrab                         // open hand (move tool or space held)
	CursorGrabbing                     // closed hand while panning
	CursorCrosshair                    // rectangle selection
	CursorMove                         // element drag
	CursorPointer                      // hovering an item
)

// LOD is a level-of-detail band derived from the viewport scale.
type LOD uint8

const (
	LODDetail   LOD = iota // full detail
	LODLabel               // labels only
	LODOverview            // zoomed out, boxes only
)

// String returns the band name.
func (l LOD) String() string {
	switch l {
	case LODDetail:
		return "detail"
	case LODLabel:
		return "label"
	default:
		return "overview"
	}
}
