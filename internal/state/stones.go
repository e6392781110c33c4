package state

import "slices"

func indexAt(stones []Stone, x, y int) int {
	return slices.IndexFunc(stones, func(s Stone) bool { return s.X == x && s.Y == y })
}

// PlaceStone puts a BLACK or WHITE stone at (x, y) for owner. A stone of the
// same color already there makes it a no-op; toggling off is the caller's
// job. Otherwise any stone or board-stone at the point is replaced. BOARD and
// REMOVE_BOARD are routed to PlaceBoardStone. It reports whether the board
// changed.
func (b *Board) PlaceStone(x, y int, color Color, owner string, opts PlaceOptions) bool {
	switch color {
	case BoardColor, RemoveBoard:
		return b.PlaceBoardStone(x, y, color, owner)
	case Black, White:
	default:
		return false
	}

	owner = b.resolve(owner)
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.placeStoneLocked(x, y, color, owner, opts)
}

func (b *Board) placeStoneLocked(x, y int, color Color, owner string, opts PlaceOptions) bool {
	o := b.ownerLocked(owner)
	markerColor := opts.MarkerColor
	if markerColor == "" {
		markerColor = defaultMarkerColor(owner)
	}

	if i := indexAt(o.stones, x, y); i >= 0 {
		if o.stones[i].Color == color {
			return false
		}
		o.stones = slices.Delete(o.stones, i, i+1)
	} else if i := indexAt(o.boardStones, x, y); i >= 0 {
		o.boardStones = slices.Delete(o.boardStones, i, i+1)
	}

	o.stones = append(o.stones, Stone{X: x, Y: y, Color: color, OwnerID: owner, MarkerColor: markerColor})
	if !opts.SkipHistory {
		o.history = append(o.history, HistoryEntry{X: x, Y: y, Color: color, MarkerColor: markerColor})
	}
	if !opts.KeepRedo {
		o.redo = nil
	}
	return true
}

// RemoveStone deletes the owner's stone at exactly (x, y). History is not
// touched.
func (b *Board) RemoveStone(x, y int, owner string) bool {
	owner = b.resolve(owner)
	b.mu.Lock()
	defer b.mu.Unlock()
	o := b.ownerLocked(owner)
	i := indexAt(o.stones, x, y)
	if i < 0 {
		return false
	}
	o.stones = slices.Delete(o.stones, i, i+1)
	return true
}

// PlaceBoardStone applies BOARD (clear the point, then insert a board-stone)
// or REMOVE_BOARD (delete the board-stone at the point).
func (b *Board) PlaceBoardStone(x, y int, action Color, owner string) bool {
	owner = b.resolve(owner)
	b.mu.Lock()
	defer b.mu.Unlock()
	o := b.ownerLocked(owner)

	switch action {
	case RemoveBoard:
		i := indexAt(o.boardStones, x, y)
		if i < 0 {
			return false
		}
		o.boardStones = slices.Delete(o.boardStones, i, i+1)
		return true
	case BoardColor:
		if i := indexAt(o.stones, x, y); i >= 0 {
			o.stones = slices.Delete(o.stones, i, i+1)
		}
		if i := indexAt(o.boardStones, x, y); i >= 0 {
			o.boardStones = slices.Delete(o.boardStones, i, i+1)
		}
		o.boardStones = append(o.boardStones, Stone{X: x, Y: y, Color: BoardColor, OwnerID: owner})
		return true
	}
	return false
}

// Undo removes the owner's most recent move that is still on the board and
// moves it to the redo stack. History entries whose stone is already gone are
// discarded along the way.
func (b *Board) Undo(owner string) bool {
	owner = b.resolve(owner)
	b.mu.Lock()
	defer b.mu.Unlock()
	o := b.ownerLocked(owner)

	for len(o.history) > 0 {
		last := o.history[len(o.history)-1]
		o.history = o.history[:len(o.history)-1]
		if i := indexAt(o.stones, last.X, last.Y); i >= 0 {
			o.stones = slices.Delete(o.stones, i, i+1)
			o.redo = append(o.redo, last)
			return true
		}
	}
	return false
}

// Redo replays the top of the owner's redo stack. The replay re-enters history
// and keeps the rest of the redo stack, so repeated redos walk forward until
// the stack is empty or a new move discards it.
func (b *Board) Redo(owner string) bool {
	owner = b.resolve(owner)
	b.mu.Lock()
	defer b.mu.Unlock()
	o := b.ownerLocked(owner)
	if len(o.redo) == 0 {
		return false
	}
	next := o.redo[len(o.redo)-1]
	o.redo = o.redo[:len(o.redo)-1]
	b.placeStoneLocked(next.X, next.Y, next.Color, owner, PlaceOptions{KeepRedo: true, MarkerColor: next.MarkerColor})
	return true
}

// Stones returns a copy of the owner's move stones in move order.
func (b *Board) Stones(owner string) []Stone {
	owner = b.resolve(owner)
	b.mu.RLock()
	defer b.mu.RUnlock()
	if o, ok := b.owners[owner]; ok {
		return slices.Clone(o.stones)
	}
	return nil
}

// BoardStones returns a copy of the owner's board-stones.
func (b *Board) BoardStones(owner string) []Stone {
	owner = b.resolve(owner)
	b.mu.RLock()
	defer b.mu.RUnlock()
	if o, ok := b.owners[owner]; ok {
		return slices.Clone(o.boardStones)
	}
	return nil
}

// StoneAt returns the owner's move stone at (x, y).
func (b *Board) StoneAt(x, y int, owner string) (Stone, bool) {
	owner = b.resolve(owner)
	b.mu.RLock()
	defer b.mu.RUnlock()
	o, ok := b.owners[owner]
	if !ok {
		return Stone{}, false
	}
	if i := indexAt(o.stones, x, y); i >= 0 {
		return o.stones[i], true
	}
	return Stone{}, false
}

// HasBoardStone reports whether the owner has a board-stone at (x, y).
func (b *Board) HasBoardStone(x, y int, owner string) bool {
	owner = b.resolve(owner)
	b.mu.RLock()
	defer b.mu.RUnlock()
	o, ok := b.owners[owner]
	return ok && indexAt(o.boardStones, x, y) >= 0
}

// HistoryLen is the size of the owner's undo stack.
func (b *Board) HistoryLen(owner string) int {
	owner = b.resolve(owner)
	b.mu.RLock()
	defer b.mu.RUnlock()
	if o, ok := b.owners[owner]; ok {
		return len(o.history)
	}
	return 0
}

// RedoLen is the size of the owner's redo stack.
func (b *Board) RedoLen(owner string) int {
	owner = b.resolve(owner)
	b.mu.RLock()
	defer b.mu.RUnlock()
	if o, ok := b.owners[owner]; ok {
		return len(o.redo)
	}
	return 0
}
