package state

import (
	"log"
	"slices"
)

// BeginPath opens a stroke for owner at start and returns its id. An empty id
// gets a fresh one. A stroke still open for the same owner is committed first.
func (b *Board) BeginPath(owner, id string, start Vec, color string) string {
	owner = b.resolve(owner)
	if id == "" {
		id = newPathID()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.endPathLocked(owner)
	b.ownerLocked(owner)
	b.open[owner] = &Path{
		ID:      id,
		OwnerID: owner,
		Color:   color,
		Points:  []Vec{start},
	}
	return id
}

// ExtendPath appends points to the owner's open stroke when id is empty or
// names that stroke. Otherwise the points are committed straight away as a
// standalone segment under id, which is how a lost draw-start or a late-join
// replay still ends up on the board. A segment whose id is already committed
// is ignored.
func (b *Board) ExtendPath(owner, id string, points []Vec, color string) {
	if len(points) == 0 {
		return
	}
	owner = b.resolve(owner)
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.open[owner]; ok && (id == "" || p.ID == id) {
		p.Points = append(p.Points, points...)
		if color != "" {
			p.Color = color
		}
		return
	}
	if id != "" && b.hasPathLocked(id) {
		return
	}
	b.addPathLocked(owner, id, points, color)
}

func (b *Board) hasPathLocked(id string) bool {
	return slices.ContainsFunc(b.paths, func(p Path) bool { return p.ID == id })
}

// EndPath commits the owner's open stroke, if any.
func (b *Board) EndPath(owner string) {
	owner = b.resolve(owner)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.endPathLocked(owner)
}

func (b *Board) endPathLocked(owner string) {
	p, ok := b.open[owner]
	if !ok {
		return
	}
	delete(b.open, owner)
	if len(p.Points) > 0 {
		b.paths = append(b.paths, *p)
		log.Printf("[PATHS] Committed %s (%d points) for %s", p.ID, len(p.Points), owner)
	}
}

// AddPath commits a complete stroke and returns it.
func (b *Board) AddPath(owner string, points []Vec, color string) Path {
	owner = b.resolve(owner)
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addPathLocked(owner, "", points, color)
}

func (b *Board) addPathLocked(owner, id string, points []Vec, color string) Path {
	b.ownerLocked(owner)
	if id == "" {
		id = newPathID()
	}
	p := Path{ID: id, OwnerID: owner, Color: color, Points: slices.Clone(points)}
	b.paths = append(b.paths, p)
	return p
}

// OpenPath returns a copy of the owner's in-progress stroke.
func (b *Board) OpenPath(owner string) (Path, bool) {
	owner = b.resolve(owner)
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.open[owner]
	if !ok {
		return Path{}, false
	}
	c := *p
	c.Points = slices.Clone(p.Points)
	return c, true
}

// Paths returns copies of every committed stroke.
func (b *Board) Paths() []Path {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Path, len(b.paths))
	for i, p := range b.paths {
		out[i] = p
		out[i].Points = slices.Clone(p.Points)
	}
	return out
}

// ClearDrawing removes every stroke and mark but leaves stones alone.
func (b *Board) ClearDrawing() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paths = nil
	b.marks = nil
	b.open = make(map[string]*Path)
}
