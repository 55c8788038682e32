package ecs

import (
	"github.com/phanxgames/inkboard"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// ItemsChanged lists the entities created, moved, updated or deleted by one
// board operation.
type ItemsChanged struct {
	Refs []inkboard.ItemRef
}

var (
	// SelectionEventType carries every selection change.
	SelectionEventType = events.NewEventType[inkboard.SelectionChange]()
	// ItemsEventType carries item and group changes.
	ItemsEventType = events.NewEventType[ItemsChanged]()
	// ConnectorEventType carries node connector events. Name tells them apart.
	ConnectorEventType = events.NewEventType[inkboard.ConnectorEvent]()
	// NoticeEventType carries user-visible notices such as refused groupings.
	NoticeEventType = events.NewEventType[inkboard.Notice]()
)

var connectorNames = []string{
	inkboard.EventNodeStart,
	inkboard.EventNodeActive,
	inkboard.EventNodeHover,
	inkboard.EventNodeLeave,
	inkboard.EventNodeComplete,
}

// Bridge is an attached board-to-world forwarder.
type Bridge struct {
	world   donburi.World
	handles []inkboard.CallbackHandle
}

// Attach forwards the board's events into world until Detach is called.
func Attach(b *inkboard.Board, world donburi.World) *Bridge {
	br := &Bridge{world: world}
	br.handles = append(br.handles,
		b.OnSelectionChange(func(c inkboard.SelectionChange) {
			SelectionEventType.Publish(world, c)
		}),
		b.OnItemsChange(func(refs []inkboard.ItemRef) {
			ItemsEventType.Publish(world, ItemsChanged{Refs: append([]inkboard.ItemRef(nil), refs...)})
		}),
		b.OnNotice(func(n inkboard.Notice) {
			NoticeEventType.Publish(world, n)
		}),
	)
	for _, name := range connectorNames {
		br.handles = append(br.handles, b.OnConnector(name, func(ev inkboard.ConnectorEvent) {
			ConnectorEventType.Publish(world, ev)
		}))
	}
	return br
}

// World returns the world events are published to.
func (br *Bridge) World() donburi.World {
	return br.world
}

// Detach stops forwarding. Calling it more than once is harmless.
func (br *Bridge) Detach() {
	for _, h := range br.handles {
		h.Remove()
	}
	br.handles = nil
}
