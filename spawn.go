package inkboard

// maxSpawnRings bounds the search for a free spot around the screen centre.
const maxSpawnRings = 8

// Spawn creates one item of type t centred on the screen, nudged to the
// nearest spot that does not overlap existing items, and selects it. Repeat
// calls for the same type inside the debounce window are ignored.
func (b *Board) Spawn(t ItemType) (*Item, bool) {
	bucket := b.reg.Bucket(t)
	if bucket == nil {
		b.Logger.Warn("spawn of unregistered type", "type", t)
		return nil, false
	}
	now := b.now()
	if last, ok := b.lastSpawn[t]; ok && now.Sub(last) < b.cfg.SpawnDebounce() {
		b.Logger.Debug("spawn debounced", "type", t)
		return nil, false
	}
	b.lastSpawn[t] = now

	size := bucket.Rule.size(&Item{})
	pos := b.spawnPosition(size)
	it, err := b.AddItem(Item{Type: t, X: pos.X, Y: pos.Y})
	if err != nil {
		b.Logger.Error("spawn failed", "type", t, "err", err)
		return nil, false
	}
	b.menu = nil
	b.selection.Select(ItemRef{Type: t, ID: it.ID}, false)
	return it, true
}

// spawnPosition searches rings of size+gap cells around the screen centre
// for a rectangle of the given size that overlaps nothing.
func (b *Board) spawnPosition(size Size) Vec2 {
	c := b.camera.WorldCenter()
	base := Vec2{c.X - size.Width/2, c.Y - size.Height/2}

	var occupied []Rect
	for _, cand := range (boardGeometry{b}).Candidates() {
		occupied = append(occupied, cand.Rect)
	}
	free := func(p Vec2) bool {
		r := Rect{X: p.X, Y: p.Y, Width: size.Width, Height: size.Height}
		for _, o := range occupied {
			if overlaps(r, o) {
				return false
			}
		}
		return true
	}
	if free(base) {
		return base
	}

	stepX := size.Width + b.cfg.SpawnGap
	stepY := size.Height + b.cfg.SpawnGap
	for ring := 1; ring <= maxSpawnRings; ring++ {
		for j := -ring; j <= ring; j++ {
			for i := -ring; i <= ring; i++ {
				if max(abs(i), abs(j)) != ring {
					continue
				}
				p := Vec2{base.X + float64(i)*stepX, base.Y + float64(j)*stepY}
				if free(p) {
					return p
				}
			}
		}
	}
	return base
}

// overlaps reports whether a and b share interior area. Touching edges do
// not overlap.
func overlaps(a, b Rect) bool {
	return a.X < b.X+b.Width && a.X+a.Width > b.X &&
		a.Y < b.Y+b.Height && a.Y+a.Height > b.Y
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
