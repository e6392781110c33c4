package state

import (
	"slices"

	"GoBoardOverlay/internal/geometry"
)

// OwnerSnapshot is one owner's stones at the time of a Snapshot.
type OwnerSnapshot struct {
	ID          string
	Stones      []Stone
	BoardStones []Stone
	NextColor   Color
	HistoryLen  int
	RedoLen     int
}

// Snapshot is a deep copy of the board that renderers read without holding
// any lock.
type Snapshot struct {
	Corners         []geometry.Point
	Grid            *geometry.Grid
	GridVisible     bool
	MarkerStyle     MarkerStyle
	CoordinateColor string
	Owners          []OwnerSnapshot
	Marks           []Mark
	Paths           []Path
	OpenPaths       []Path
}

// Calibrated reports whether the snapshot carries a grid.
func (s Snapshot) Calibrated() bool { return s.Grid != nil }

// Owner returns the named owner's snapshot.
func (s Snapshot) Owner(id string) (OwnerSnapshot, bool) {
	for _, o := range s.Owners {
		if o.ID == id {
			return o, true
		}
	}
	return OwnerSnapshot{}, false
}

// Snapshot copies the whole board.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := Snapshot{
		Corners:         slices.Clone(b.corners),
		GridVisible:     b.gridVisible,
		MarkerStyle:     b.markerStyle,
		CoordinateColor: b.coordinateColor,
		Marks:           slices.Clone(b.marks),
	}
	if b.grid != nil {
		g := *b.grid
		s.Grid = &g
	}
	for _, id := range b.order {
		o := b.owners[id]
		s.Owners = append(s.Owners, OwnerSnapshot{
			ID:          id,
			Stones:      slices.Clone(o.stones),
			BoardStones: slices.Clone(o.boardStones),
			NextColor:   o.color,
			HistoryLen:  len(o.history),
			RedoLen:     len(o.redo),
		})
	}
	for _, p := range b.paths {
		p.Points = slices.Clone(p.Points)
		s.Paths = append(s.Paths, p)
	}
	for _, id := range b.order {
		if p, ok := b.open[id]; ok {
			c := *p
			c.Points = slices.Clone(p.Points)
			s.OpenPaths = append(s.OpenPaths, c)
		}
	}
	return s
}
