package state

import (
	"math"
	"slices"
)

// AddMark appends a mark. A LETTER mark claims its text from the owner's
// letter stack so every replica hands out the same next letter. A mark equal
// in owner, type, position and text to one already present is a no-op.
func (b *Board) AddMark(m Mark) bool {
	if !m.Type.Valid() {
		return false
	}
	m.OwnerID = b.resolve(m.OwnerID)
	b.mu.Lock()
	defer b.mu.Unlock()
	if slices.ContainsFunc(b.marks, func(x Mark) bool {
		return x.OwnerID == m.OwnerID && x.Type == m.Type && x.X == m.X && x.Y == m.Y && x.Text == m.Text
	}) {
		return false
	}
	o := b.ownerLocked(m.OwnerID)
	if m.Type == Letter {
		b.claimLetterLocked(o, m.Text)
	}
	b.marks = append(b.marks, m)
	return true
}

// RemoveMark deletes the first mark matching owner, type and position (and
// text for letters). A removed letter goes back into the owner's stack.
func (b *Board) RemoveMark(m Mark) bool {
	m.OwnerID = b.resolve(m.OwnerID)
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.marks, func(x Mark) bool {
		return x.OwnerID == m.OwnerID && x.Type == m.Type && x.X == m.X && x.Y == m.Y &&
			(m.Type != Letter || m.Text == "" || x.Text == m.Text)
	})
	if i < 0 {
		return false
	}
	removed := b.marks[i]
	b.marks = slices.Delete(b.marks, i, i+1)
	if removed.Type == Letter {
		b.releaseLetterLocked(b.ownerLocked(removed.OwnerID), removed.Text)
	}
	return true
}

// FindLetterMark returns the owner's first letter mark within radius pixels
// of (x, y).
func (b *Board) FindLetterMark(owner string, x, y int, radius float64) (Mark, bool) {
	owner = b.resolve(owner)
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, m := range b.marks {
		if m.Type != Letter || m.OwnerID != owner {
			continue
		}
		if math.Hypot(float64(m.X-x), float64(m.Y-y)) <= radius {
			return m, true
		}
	}
	return Mark{}, false
}

// Marks returns a copy of every mark in insertion order.
func (b *Board) Marks() []Mark {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.marks)
}
