package inkboard

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// fitAnim holds the active fit-to-view tweens. The exact targets are kept in
// float64 so the camera lands precisely once the float32 tweens finish.
type fitAnim struct {
	tweenX, tweenY, tweenS *gween.Tween
	target                 Viewport
}

// Camera owns the board's Viewport and the screen size it projects onto.
type Camera struct {
	viewport Viewport

	// ScreenWidth and ScreenHeight are the size of the host surface in pixels.
	ScreenWidth, ScreenHeight float64

	minScale, maxScale float64

	fit     *fitAnim
	changed bool
}

// newCamera creates a Camera at the origin with scale 1.
func newCamera(screenW, screenH, minScale, maxScale float64) *Camera {
	return &Camera{
		viewport:     Viewport{Scale: 1},
		ScreenWidth:  screenW,
		ScreenHeight: screenH,
		minScale:     minScale,
		maxScale:     maxScale,
	}
}

// Viewport returns the current viewport.
func (c *Camera) Viewport() Viewport {
	return c.viewport
}

// SetViewport replaces the viewport, clamping its scale. Any running fit
// animation is stopped.
func (c *Camera) SetViewport(v Viewport) {
	c.fit = nil
	c.set(v)
}

func (c *Camera) set(v Viewport) {
	v.Scale = clampScale(v.Scale, c.minScale, c.maxScale)
	if v != c.viewport {
		c.viewport = v
		c.changed = true
	}
}

// ZoomAt zooms one wheel step around the screen point pointer.
func (c *Camera) ZoomAt(pointer Vec2, deltaY, step float64) {
	c.fit = nil
	c.set(c.viewport.ZoomAt(pointer, deltaY, step, c.minScale, c.maxScale))
}

// PanBy pans by a wheel delta in screen pixels.
func (c *Camera) PanBy(dx, dy float64) {
	c.fit = nil
	c.set(c.viewport.PanBy(dx, dy))
}

// DragBy moves the world with the pointer: a positive screen delta moves the
// content the same way on screen.
func (c *Camera) DragBy(dx, dy float64) {
	c.fit = nil
	v := c.viewport
	v.Position.X += dx
	v.Position.Y += dy
	c.set(v)
}

// VisibleBounds returns the world-space rectangle covered by the screen.
func (c *Camera) VisibleBounds() Rect {
	v := c.viewport
	tl := v.ScreenToWorld(Vec2{0, 0})
	br := v.ScreenToWorld(Vec2{c.ScreenWidth, c.ScreenHeight})
	return Rect{X: tl.X, Y: tl.Y, Width: br.X - tl.X, Height: br.Y - tl.Y}
}

// WorldCenter returns the world point at the centre of the screen.
func (c *Camera) WorldCenter() Vec2 {
	return c.viewport.ScreenToWorld(Vec2{c.ScreenWidth / 2, c.ScreenHeight / 2})
}

// FitViewport computes the viewport that shows r centred on screen with
// margin pixels on every side. ok is false for an empty rect or screen.
func (c *Camera) FitViewport(r Rect, margin float64) (Viewport, bool) {
	availW := c.ScreenWidth - 2*margin
	availH := c.ScreenHeight - 2*margin
	if availW <= 0 || availH <= 0 {
		return Viewport{}, false
	}
	if r.Width <= 0 && r.Height <= 0 {
		return Viewport{}, false
	}
	scale := c.maxScale
	if r.Width > 0 {
		scale = math.Min(scale, availW/r.Width)
	}
	if r.Height > 0 {
		scale = math.Min(scale, availH/r.Height)
	}
	scale = clampScale(scale, c.minScale, c.maxScale)
	center := r.Center()
	return Viewport{
		Position: Vec2{c.ScreenWidth/2 - center.X*scale, c.ScreenHeight/2 - center.Y*scale},
		Scale:    scale,
	}, true
}

// FitTo animates the viewport so r fills the screen. A non-positive duration
// jumps immediately. Reports whether a fit was started.
func (c *Camera) FitTo(r Rect, margin float64, duration float32, easeFn ease.TweenFunc) bool {
	target, ok := c.FitViewport(r, margin)
	if !ok {
		return false
	}
	if duration <= 0 {
		c.SetViewport(target)
		return true
	}
	if easeFn == nil {
		easeFn = ease.OutCubic
	}
	v := c.viewport
	c.fit = &fitAnim{
		tweenX: gween.New(float32(v.Position.X), float32(target.Position.X), duration, easeFn),
		tweenY: gween.New(float32(v.Position.Y), float32(target.Position.Y), duration, easeFn),
		tweenS: gween.New(float32(v.Scale), float32(target.Scale), duration, easeFn),
		target: target,
	}
	return true
}

// Animating reports whether a fit animation is running.
func (c *Camera) Animating() bool {
	return c.fit != nil
}

// update advances any fit animation. Called from Board.Update.
func (c *Camera) update(dt float32) {
	if c.fit == nil {
		return
	}
	x, doneX := c.fit.tweenX.Update(dt)
	y, doneY := c.fit.tweenY.Update(dt)
	s, doneS := c.fit.tweenS.Update(dt)
	if doneX && doneY && doneS {
		target := c.fit.target
		c.fit = nil
		c.set(target)
		return
	}
	c.set(Viewport{Position: Vec2{float64(x), float64(y)}, Scale: float64(s)})
}

// takeChanged reports and clears whether the viewport changed since the last
// call.
func (c *Camera) takeChanged() bool {
	ch := c.changed
	c.changed = false
	return ch
}
