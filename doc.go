// Package inkboard is the interaction engine of an infinite pan/zoom canvas.
//
// A [Board] owns typed item buckets, a multi-type selection with a drag
// rectangle, rigid group containers and the viewport. It turns pointer,
// wheel and keyboard input into changes on them and writes every change
// through an injected [Persister] without waiting for it. Painting is left
// to the host; the [ebitenhost] sub-package is a ready-made [Ebitengine]
// host.
//
// # Quick start
//
//	board := inkboard.NewBoard(inkboard.DefaultConfig())
//	board.SetScreenSize(1280, 800)
//	board.AddItem(inkboard.Item{Type: inkboard.TypeImage, X: 100, Y: 100})
//
//	// every frame, from the host's update loop:
//	board.PointerDown(inkboard.PointerEvent{X: 120, Y: 120})
//	board.Update(1.0 / 60)
//	frame := board.Frame()
//
// # Coordinates
//
// Screen space is pixels on the host surface. World space is the canvas.
// A [Viewport] maps one onto the other as screen = world*Scale + Position.
// Item and group geometry is always in world space.
//
// # Sessions
//
// A press starts at most one interaction session: panning, rectangle
// selection, element drag or connector drag. While a session is active the
// board attaches window-level move and release listeners; they are removed
// again on release, cancel, blur or Escape. Pointer moves are coalesced to
// one per [Board.Update].
//
// # Virtualization
//
// [Board.VisibleItems] culls each bucket against the viewport grown by
// [Config.ViewportPadding] and returns the same slice across frames while
// nothing visible changed, so presentation layers can skip work by
// comparing slices.
//
// # Testing
//
// Synthetic input ([Board.InjectClick], [Board.InjectDrag], ...) and JSON
// scripts ([LoadTestScript]) replay through the same entry points as real
// input, one event per frame.
//
// [Ebitengine]: https://ebitengine.org
// [ebitenhost]: https://pkg.go.dev/github.com/phanxgames/inkboard/ebitenhost
package inkboard
