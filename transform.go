package inkboard

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// Viewport maps world space onto the screen: screen = world*Scale + Position.
type Viewport struct {
	// Position is the screen-space offset of the world origin.
	Position Vec2
	// Scale is the zoom factor (1 = one world unit per pixel).
	Scale float64
}

// ScreenToWorld converts a screen-space point to world space.
func (v Viewport) ScreenToWorld(p Vec2) Vec2 {
	return Vec2{(p.X - v.Position.X) / v.Scale, (p.Y - v.Position.Y) / v.Scale}
}

// WorldToScreen converts a world-space point to screen space.
func (v Viewport) WorldToScreen(p Vec2) Vec2 {
	return Vec2{p.X*v.Scale + v.Position.X, p.Y*v.Scale + v.Position.Y}
}

// ZoomAt zooms one step toward or away from the screen point pointer while
// keeping the world point under it fixed. A negative deltaY zooms in, a
// positive one zooms out and zero leaves the viewport unchanged.
func (v Viewport) ZoomAt(pointer Vec2, deltaY, step, minScale, maxScale float64) Viewport {
	if deltaY == 0 {
		return v
	}
	world := v.ScreenToWorld(pointer)
	scale := v.Scale * step
	if deltaY > 0 {
		scale = v.Scale / step
	}
	scale = clampScale(scale, minScale, maxScale)
	return Viewport{
		Position: Vec2{pointer.X - world.X*scale, pointer.Y - world.Y*scale},
		Scale:    scale,
	}
}

// PanBy moves the viewport by a wheel delta in screen pixels.
func (v Viewport) PanBy(dx, dy float64) Viewport {
	v.Position.X -= dx
	v.Position.Y -= dy
	return v
}

// clampScale restricts s to [lo, hi].
func clampScale(s, lo, hi float64) float64 {
	return math.Max(lo, math.Min(s, hi))
}

// itemTransform builds the affine matrix placing an item's local space in
// world space: rotate by degrees about the origin, then translate to (x, y).
// Returns [a, b, c, d, tx, ty].
func itemTransform(x, y, degrees float64) [6]float64 {
	if degrees == 0 {
		return [6]float64{1, 0, 0, 1, x, y}
	}
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	return [6]float64{cos, sin, -sin, cos, x, y}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ≈ 0).
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// transformAABB computes the axis-aligned bounding box for a rectangle of
// size (w, h) transformed by the given affine matrix.
func transformAABB(transform [6]float64, w, h float64) Rect {
	a, b, cc, d, tx, ty := transform[0], transform[2], transform[1], transform[3], transform[4], transform[5]

	// Transform four corners: (0,0), (w,0), (w,h), (0,h)
	x0, y0 := tx, ty
	x1, y1 := a*w+tx, cc*w+ty
	x2, y2 := a*w+b*h+tx, cc*w+d*h+ty
	x3, y3 := b*h+tx, d*h+ty

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// ClientRect returns the world-space bounding rectangle of an item of the
// given size, after rotation.
func ClientRect(it *Item, size Size) Rect {
	if it.Rotation == 0 {
		return Rect{X: it.X, Y: it.Y, Width: size.Width, Height: size.Height}
	}
	return transformAABB(itemTransform(it.X, it.Y, it.Rotation), size.Width, size.Height)
}

// containsWorldPoint reports whether the world point p falls inside the item's
// rotated rectangle.
func containsWorldPoint(it *Item, size Size, p Vec2) bool {
	if size.Width == 0 && size.Height == 0 {
		return false
	}
	inv := invertAffine(itemTransform(it.X, it.Y, it.Rotation))
	lx, ly := transformPoint(inv, p.X, p.Y)
	return lx >= 0 && lx <= size.Width && ly >= 0 && ly <= size.Height
}
