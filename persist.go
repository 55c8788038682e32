package inkboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// ItemPatch is a partial item change reported to persistence. Nil fields are
// unchanged.
type ItemPatch struct {
	X, Y      *float64
	Pinned    *bool
	Collapsed *bool
}

// positionPatch builds a patch carrying only a position.
func positionPatch(x, y float64) ItemPatch {
	return ItemPatch{X: &x, Y: &y}
}

// Persister is the backend capability the board writes through. The board
// calls it after its own optimistic update and never waits for the result:
// errors are logged and local state is kept.
type Persister interface {
	CreateItem(ctx context.Context, item Item) error
	MoveItem(ctx context.Context, t ItemType, id string, patch ItemPatch) error
	DeleteItem(ctx context.Context, t ItemType, id string) error
	CreateGroup(ctx context.Context, g Group) error
	UpdateGroup(ctx context.Context, id string, update GroupUpdate, snapshot Group) error
	DeleteGroup(ctx context.Context, id string) error
}

// NopPersister discards every write.
type NopPersister struct{}

// CreateItem implements Persister.
func (NopPersister) CreateItem(context.Context, Item) error { return nil }

// MoveItem implements Persister.
func (NopPersister) MoveItem(context.Context, ItemType, string, ItemPatch) error { return nil }

// DeleteItem implements Persister.
func (NopPersister) DeleteItem(context.Context, ItemType, string) error { return nil }

// CreateGroup implements Persister.
func (NopPersister) CreateGroup(context.Context, Group) error { return nil }

// UpdateGroup implements Persister.
func (NopPersister) UpdateGroup(context.Context, string, GroupUpdate, Group) error { return nil }

// DeleteGroup implements Persister.
func (NopPersister) DeleteGroup(context.Context, string) error { return nil }

// PersistFuncs adapts optional callbacks to a Persister. Nil fields are
// skipped.
type PersistFuncs struct {
	OnCreateItem  func(ctx context.Context, item Item) error
	OnMoveItem    func(ctx context.Context, t ItemType, id string, patch ItemPatch) error
	OnDeleteItem  func(ctx context.Context, t ItemType, id string) error
	OnCreateGroup func(ctx context.Context, g Group) error
	OnUpdateGroup func(ctx context.Context, id string, update GroupUpdate, snapshot Group) error
	OnDeleteGroup func(ctx context.Context, id string) error
}

// CreateItem calls OnCreateItem when set.
func (p PersistFuncs) CreateItem(ctx context.Context, item Item) error {
	if p.OnCreateItem == nil {
		return nil
	}
	return p.OnCreateItem(ctx, item)
}

// MoveItem calls OnMoveItem when set.
func (p PersistFuncs) MoveItem(ctx context.Context, t ItemType, id string, patch ItemPatch) error {
	if p.OnMoveItem == nil {
		return nil
	}
	return p.OnMoveItem(ctx, t, id, patch)
}

// DeleteItem calls OnDeleteItem when set.
func (p PersistFuncs) DeleteItem(ctx context.Context, t ItemType, id string) error {
	if p.OnDeleteItem == nil {
		return nil
	}
	return p.OnDeleteItem(ctx, t, id)
}

// CreateGroup calls OnCreateGroup when set.
func (p PersistFuncs) CreateGroup(ctx context.Context, g Group) error {
	if p.OnCreateGroup == nil {
		return nil
	}
	return p.OnCreateGroup(ctx, g)
}

// UpdateGroup calls OnUpdateGroup when set.
func (p PersistFuncs) UpdateGroup(ctx context.Context, id string, update GroupUpdate, snapshot Group) error {
	if p.OnUpdateGroup == nil {
		return nil
	}
	return p.OnUpdateGroup(ctx, id, update, snapshot)
}

// DeleteGroup calls OnDeleteGroup when set.
func (p PersistFuncs) DeleteGroup(ctx context.Context, id string) error {
	if p.OnDeleteGroup == nil {
		return nil
	}
	return p.OnDeleteGroup(ctx, id)
}

// persistJob is one queued write.
type persistJob struct {
	op  string
	id  string
	run func(ctx context.Context, p Persister) error
}

// dispatcher runs persistence jobs in FIFO order on a single worker so writes
// for the same id keep their order, without blocking the caller.
type dispatcher struct {
	p      Persister
	log    *slog.Logger
	inline bool

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	queue   []persistJob
	wake    chan struct{}
	started bool
	closed  bool
	pending sync.WaitGroup
}

func newDispatcher(p Persister, log *slog.Logger, inline bool) *dispatcher {
	if p == nil {
		p = NopPersister{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &dispatcher{
		p:      p,
		log:    log,
		inline: inline,
		ctx:    ctx,
		cancel: cancel,
		wake:   make(chan struct{}, 1),
	}
}

// enqueue schedules a job. After close, jobs are dropped with a warning.
func (d *dispatcher) enqueue(op, id string, run func(ctx context.Context, p Persister) error) {
	job := persistJob{op: op, id: id, run: run}
	if d.inline {
		d.exec(job)
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.log.Warn("persist after close dropped", "op", op, "id", id)
		return
	}
	d.pending.Add(1)
	d.queue = append(d.queue, job)
	if !d.started {
		d.started = true
		go d.loop()
	}
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *dispatcher) loop() {
	for {
		select {
		case <-d.wake:
		case <-d.ctx.Done():
			return
		}
		for {
			d.mu.Lock()
			if len(d.queue) == 0 {
				d.mu.Unlock()
				break
			}
			job := d.queue[0]
			d.queue[0] = persistJob{}
			d.queue = d.queue[1:]
			d.mu.Unlock()

			d.exec(job)
			d.pending.Done()
		}
	}
}

// exec runs one job, logging failures and recovering panics so nothing
// escapes into the interaction handlers.
func (d *dispatcher) exec(job persistJob) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("persist panicked", "op", job.op, "id", job.id, "panic", fmt.Sprint(r))
		}
	}()
	if err := job.run(d.ctx, d.p); err != nil {
		d.log.Error("persist failed", "op", job.op, "id", job.id, "err", err)
	}
}

// flush blocks until every queued job has run.
func (d *dispatcher) flush() {
	d.pending.Wait()
}

// close drains the queue and stops the worker.
func (d *dispatcher) close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.pending.Wait()
	d.cancel()
}
