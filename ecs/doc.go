// Package ecs bridges inkboard events into a [Donburi] world.
//
// [Attach] subscribes to a board's selection, item and connector callbacks and
// republishes each one as a typed Donburi event, so ECS systems can react to
// canvas changes without holding a reference to the board:
//
//	bridge := ecs.Attach(board, world)
//	defer bridge.Detach()
//
//	ecs.SelectionEventType.Subscribe(world, func(w donburi.World, c inkboard.SelectionChange) {
//		// ...
//	})
//
// Events are queued by Donburi; call ProcessEvents (or events.ProcessAllEvents)
// from a system to deliver them.
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
