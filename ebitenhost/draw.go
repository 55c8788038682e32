package ebitenhost

import (
	"hash/fnv"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/inkboard"
)

var (
	whitePixel *ebiten.Image

	groupFill      = color.RGBA{0x40, 0x60, 0x90, 0x30}
	groupStroke    = color.RGBA{0x70, 0x90, 0xc0, 0xff}
	selectStroke   = color.RGBA{0x3b, 0x82, 0xf6, 0xff}
	selectBoxFill  = color.RGBA{0x3b, 0x82, 0xf6, 0x33}
	pinnedStroke   = color.RGBA{0xf5, 0x9e, 0x0b, 0xff}
	labelThreshold = 40.0 // minimum on-screen width for a label
)

// pixel returns the shared 1x1 white image every rect is drawn from.
func pixel() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(color.White)
	}
	return whitePixel
}

// typeColor derives a stable muted colour from an item type name.
func typeColor(t inkboard.ItemType) color.RGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(t))
	v := h.Sum32()
	return color.RGBA{
		R: uint8(0x50 + v&0x5f),
		G: uint8(0x50 + (v>>8)&0x5f),
		B: uint8(0x50 + (v>>16)&0x5f),
		A: 0xff,
	}
}

// fillWorldRect paints a world-space rectangle of size (w, h) at (x, y),
// rotated by degrees about its origin.
func fillWorldRect(dst *ebiten.Image, vp inkboard.Viewport, x, y, w, h, degrees float64, clr color.Color) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	if degrees != 0 {
		op.GeoM.Rotate(degrees * math.Pi / 180)
	}
	op.GeoM.Translate(x, y)
	op.GeoM.Scale(vp.Scale, vp.Scale)
	op.GeoM.Translate(vp.Position.X, vp.Position.Y)
	op.ColorScale.ScaleWithColor(clr)
	dst.DrawImage(pixel(), op)
}

// fillScreenRect paints a screen-space rectangle.
func fillScreenRect(dst *ebiten.Image, x, y, w, h float64, clr color.Color) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	dst.DrawImage(pixel(), op)
}

// strokeWorldRect outlines a world rect with a 1px (screen) border.
func strokeWorldRect(dst *ebiten.Image, vp inkboard.Viewport, r inkboard.Rect, clr color.Color) {
	tl := vp.WorldToScreen(inkboard.Vec2{X: r.X, Y: r.Y})
	br := vp.WorldToScreen(inkboard.Vec2{X: r.X + r.Width, Y: r.Y + r.Height})
	w, h := br.X-tl.X, br.Y-tl.Y
	fillScreenRect(dst, tl.X, tl.Y, w, 1, clr)
	fillScreenRect(dst, tl.X, br.Y-1, w, 1, clr)
	fillScreenRect(dst, tl.X, tl.Y, 1, h, clr)
	fillScreenRect(dst, br.X-1, tl.Y, 1, h, clr)
}

// drawFrame paints groups, then items in registry order, then selection
// overlays.
func drawFrame(dst *ebiten.Image, b *inkboard.Board, f inkboard.Frame, showLabels bool) {
	vp := f.Viewport
	sel := b.Selection()

	for _, g := range f.Groups {
		fillWorldRect(dst, vp, g.X, g.Y, g.Width, g.Height, 0, groupFill)
		stroke := groupStroke
		if sel.IsSelected(inkboard.ItemRef{Type: inkboard.TypeGroup, ID: g.ID}) {
			stroke = selectStroke
		}
		strokeWorldRect(dst, vp, g.Bounds(), stroke)
		if showLabels && f.LOD != inkboard.LODOverview && g.Meta.Name != "" {
			p := vp.WorldToScreen(inkboard.Vec2{X: g.X, Y: g.Y})
			ebitenutil.DebugPrintAt(dst, g.Meta.Name, int(p.X)+4, int(p.Y)-16)
		}
	}

	for _, t := range b.Registry().Types() {
		clr := typeColor(t)
		for _, it := range f.Items[t] {
			size := b.Size(inkboard.ItemRef{Type: t, ID: it.ID})
			fillWorldRect(dst, vp, it.X, it.Y, size.Width, size.Height, it.Rotation, clr)

			rect := inkboard.ClientRect(it, size)
			switch {
			case sel.IsSelected(inkboard.ItemRef{Type: t, ID: it.ID}):
				strokeWorldRect(dst, vp, rect, selectStroke)
			case it.Pinned:
				strokeWorldRect(dst, vp, rect, pinnedStroke)
			}
			if showLabels && f.LOD != inkboard.LODOverview && size.Width*vp.Scale >= labelThreshold {
				p := vp.WorldToScreen(inkboard.Vec2{X: rect.X, Y: rect.Y})
				ebitenutil.DebugPrintAt(dst, string(t), int(p.X)+4, int(p.Y)+4)
			}
		}
	}

	if f.TightRect != nil {
		strokeWorldRect(dst, vp, *f.TightRect, selectStroke)
	}
	if f.SelectionBox != nil {
		r := f.SelectionBox.Rect()
		fillWorldRect(dst, vp, r.X, r.Y, r.Width, r.Height, 0, selectBoxFill)
		strokeWorldRect(dst, vp, r, selectStroke)
	}
}
