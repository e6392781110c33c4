// Package presence tracks remote cursors and the display metadata (label,
// color, host tag) announced for each owner.
package presence

import (
	"slices"
	"strings"
	"sync"
	"time"

	"GoBoardOverlay/internal/colors"
)

const (
	// Timeout hides a cursor that has not moved for this long.
	Timeout = 3000 * time.Millisecond

	// LerpFactor is the fraction of the remaining distance covered per frame.
	LerpFactor = 0.3
)

// Meta is what an owner announced about itself.
type Meta struct {
	Label   string
	Color   string
	HostTag string
}

// Cursor is one remote pointer. Current* animates towards Target*.
type Cursor struct {
	OwnerID    string
	Label      string
	Color      string
	CurrentX   float64
	CurrentY   float64
	TargetX    float64
	TargetY    float64
	Visible    bool
	LastSeenAt time.Time
}

// Tracker is safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	now     func() time.Time
	cursors map[string]*Cursor
	order   []string
	meta    map[string]Meta
}

// NewTracker builds a tracker reading time from now, or time.Now when nil.
func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		now:     now,
		cursors: make(map[string]*Cursor),
		meta:    make(map[string]Meta),
	}
}

// mergeMetaLocked keeps earlier values for empty fields and derives a color
// from the host tag, label or owner id when none was ever given.
func (t *Tracker) mergeMetaLocked(owner string, m Meta) Meta {
	cur := t.meta[owner]
	if m.Label != "" {
		cur.Label = m.Label
	}
	if m.HostTag != "" {
		cur.HostTag = m.HostTag
	}
	if m.Color != "" {
		cur.Color = m.Color
	}
	if cur.Color == "" {
		source := cur.HostTag
		if source == "" {
			source = cur.Label
		}
		if source == "" {
			source = owner
		}
		cur.Color = colors.HostColor(source)
	}
	t.meta[owner] = cur
	return cur
}

func displayLabel(owner string, m Meta) string {
	if strings.TrimSpace(m.Label) != "" {
		return m.Label
	}
	short := owner
	if len(short) > 4 {
		short = short[:4]
	}
	return "User " + short
}

// Update moves the owner's cursor target and makes it visible. A cursor seen
// for the first time starts at the target instead of sliding in.
func (t *Tracker) Update(owner string, x, y float64, m Meta) {
	if owner == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	meta := t.mergeMetaLocked(owner, m)
	c, ok := t.cursors[owner]
	if !ok {
		c = &Cursor{OwnerID: owner, CurrentX: x, CurrentY: y}
		t.cursors[owner] = c
		t.order = append(t.order, owner)
	}
	c.Label = displayLabel(owner, meta)
	c.Color = meta.Color
	c.TargetX, c.TargetY = x, y
	c.Visible = true
	c.LastSeenAt = t.now()
}

// SetLabel records metadata for owner and refreshes an existing cursor.
func (t *Tracker) SetLabel(owner string, m Meta) {
	if owner == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	meta := t.mergeMetaLocked(owner, m)
	if c, ok := t.cursors[owner]; ok {
		c.Label = displayLabel(owner, meta)
		c.Color = meta.Color
	}
}

// Tick hides cursors idle past Timeout and eases visible ones towards their
// targets. Hidden cursors stay allocated.
func (t *Tracker) Tick(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range t.order {
		c := t.cursors[id]
		if !c.Visible {
			continue
		}
		if now.Sub(c.LastSeenAt) >= Timeout {
			c.Visible = false
			continue
		}
		c.CurrentX += (c.TargetX - c.CurrentX) * LerpFactor
		c.CurrentY += (c.TargetY - c.CurrentY) * LerpFactor
	}
}

// Remove forgets the owner's cursor and metadata at once.
func (t *Tracker) Remove(owner string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.cursors[owner]; ok {
		delete(t.cursors, owner)
		t.order = slices.DeleteFunc(t.order, func(id string) bool { return id == owner })
	}
	delete(t.meta, owner)
}

// Cursors returns copies of every tracked cursor in first-seen order.
func (t *Tracker) Cursors() []Cursor {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Cursor, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.cursors[id])
	}
	return out
}

// Cursor returns a copy of one owner's cursor.
func (t *Tracker) Cursor(owner string) (Cursor, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.cursors[owner]
	if !ok {
		return Cursor{}, false
	}
	return *c, true
}

// Meta returns what owner has announced so far.
func (t *Tracker) Meta(owner string) (Meta, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.meta[owner]
	return m, ok
}
