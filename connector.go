package inkboard

// Connector event names shared with connector-drawing collaborators.
const (
	EventNodeStart    = "canvas-node-start"
	EventNodeComplete = "canvas-node-complete"
	EventNodeHover    = "canvas-node-hover"
	EventNodeLeave    = "canvas-node-leave"
	EventNodeActive   = "canvas-node-active"
)

// ConnectorEvent is the payload of every connector event. SourceID is only
// set on completion and names the node the connection started from.
type ConnectorEvent struct {
	Name     string
	ID       string
	Side     string
	Color    string
	StartX   float64
	StartY   float64
	SourceID string
}

// OnConnector registers a callback for one connector event name.
func (b *Board) OnConnector(name string, fn func(ConnectorEvent)) CallbackHandle {
	if b.events.connector == nil {
		b.events.connector = make(map[string]*handlerList[ConnectorEvent])
	}
	list := b.events.connector[name]
	if list == nil {
		list = &handlerList[ConnectorEvent]{}
		b.events.connector[name] = list
	}
	return register(b, list, fn)
}

func (b *Board) emitConnector(name string, ev ConnectorEvent) {
	ev.Name = name
	if list := b.events.connector[name]; list != nil {
		list.fire(ev)
	}
}

// StartConnector begins dragging a connection from a node port. The pointer
// is captured until the next pointer-up, cancel, blur or Escape. Reports
// false if another interaction is in progress.
func (b *Board) StartConnector(ev ConnectorEvent) bool {
	if b.in.state != StateIdle {
		return false
	}
	b.in.state = StateConnecting
	b.in.button = MouseButtonLeft
	b.in.connSource = ev
	b.in.connTarget = nil
	b.acquireCapture(StateConnecting, 0)
	b.emitConnector(EventNodeStart, ev)
	b.emitConnector(EventNodeActive, ev)
	return true
}

// HoverConnector reports that the pointer entered a node port. While a
// connection is being dragged the port becomes the completion target.
func (b *Board) HoverConnector(ev ConnectorEvent) {
	if b.in.state == StateConnecting {
		t := ev
		b.in.connTarget = &t
	}
	b.emitConnector(EventNodeHover, ev)
}

// LeaveConnector reports that the pointer left a node port.
func (b *Board) LeaveConnector(ev ConnectorEvent) {
	if b.in.connTarget != nil && b.in.connTarget.ID == ev.ID && b.in.connTarget.Side == ev.Side {
		b.in.connTarget = nil
	}
	b.emitConnector(EventNodeLeave, ev)
}

// finishConnector completes the connection when a port is hovered.
func (b *Board) finishConnector(complete bool) {
	if complete && b.in.connTarget != nil && b.in.connTarget.ID != b.in.connSource.ID {
		src := b.in.connSource
		t := *b.in.connTarget
		b.emitConnector(EventNodeComplete, ConnectorEvent{
			ID:       t.ID,
			Side:     t.Side,
			Color:    src.Color,
			StartX:   src.StartX,
			StartY:   src.StartY,
			SourceID: src.ID,
		})
	}
	b.in.connSource = ConnectorEvent{}
	b.in.connTarget = nil
}
