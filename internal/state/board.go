// Package state holds the shared annotation model: calibration, per-owner
// stones and board-stones with undo/redo, letter stacks, marks and freehand
// paths. It never talks to the network; callers emit commands themselves.
package state

import (
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"GoBoardOverlay/internal/colors"
	"GoBoardOverlay/internal/geometry"
)

// DefaultOwner is used when neither the caller nor the board names an owner.
const DefaultOwner = "local"

type ownerState struct {
	stones      []Stone
	boardStones []Stone
	history     []HistoryEntry
	redo        []HistoryEntry
	letters     []string
	color       Color
}

func newOwnerState() *ownerState {
	return &ownerState{letters: buildLetterStack(), color: Black}
}

// Board is the annotation store for one session. All methods are safe for
// concurrent use.
type Board struct {
	mu sync.RWMutex

	local  string
	owners map[string]*ownerState
	order  []string

	corners     []geometry.Point
	grid        *geometry.Grid
	gridVisible bool
	flashUntil  time.Time

	markerStyle     MarkerStyle
	coordinateColor string

	marks []Mark
	paths []Path
	open  map[string]*Path
}

// NewBoard creates an empty, uncalibrated board. Operations given an empty
// owner id act on localOwner.
func NewBoard(localOwner string) *Board {
	if localOwner == "" {
		localOwner = DefaultOwner
	}
	return &Board{
		local:           localOwner,
		owners:          make(map[string]*ownerState),
		gridVisible:     true,
		markerStyle:     MarkerNumbers,
		coordinateColor: "black",
		open:            make(map[string]*Path),
	}
}

// LocalOwner returns the owner id used for empty owner arguments.
func (b *Board) LocalOwner() string { return b.local }

func (b *Board) resolve(owner string) string {
	if owner == "" {
		return b.local
	}
	return owner
}

// ownerLocked returns the owner's state, creating it on first reference.
func (b *Board) ownerLocked(owner string) *ownerState {
	o, ok := b.owners[owner]
	if !ok {
		o = newOwnerState()
		b.owners[owner] = o
		b.order = append(b.order, owner)
	}
	return o
}

// SetGrid installs four corners and regenerates the grid.
func (b *Board) SetGrid(corners []geometry.Point) error {
	g, err := geometry.GenerateGrid(corners)
	if err != nil {
		return fmt.Errorf("set grid: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.corners = slices.Clone(corners)
	b.grid = g
	return nil
}

// ResetGrid returns the board to uncalibrated and drops every owner's stones,
// board-stones and history. Marks and paths survive.
func (b *Board) ResetGrid() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.corners = nil
	b.grid = nil
	b.flashUntil = time.Time{}
	for _, o := range b.owners {
		o.stones = nil
		o.boardStones = nil
		o.history = nil
		o.redo = nil
		o.letters = buildLetterStack()
	}
	log.Println("[BOARD] Grid reset")
}

// Calibrated reports whether a grid is installed.
func (b *Board) Calibrated() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.grid != nil
}

// Grid returns a copy of the grid, or nil when uncalibrated.
func (b *Board) Grid() *geometry.Grid {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.grid == nil {
		return nil
	}
	g := *b.grid
	return &g
}

// Corners returns the corners the grid was built from.
func (b *Board) Corners() []geometry.Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.corners)
}

// SetGridVisible shows or hides the grid dots and cancels any pending flash.
func (b *Board) SetGridVisible(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gridVisible = v
	b.flashUntil = time.Time{}
}

// FlashGrid shows the grid dots until now+d.
func (b *Board) FlashGrid(now time.Time, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gridVisible = true
	b.flashUntil = now.Add(d)
}

// GridVisible reports whether grid dots are currently shown.
func (b *Board) GridVisible() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.gridVisible
}

// Tick advances time-based board state; it ends an expired grid flash.
func (b *Board) Tick(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.flashUntil.IsZero() && !now.Before(b.flashUntil) {
		b.gridVisible = false
		b.flashUntil = time.Time{}
	}
}

// SetMarkerStyle switches between numbered and triangle last-move markers.
// Unknown styles are ignored.
func (b *Board) SetMarkerStyle(s MarkerStyle) bool {
	if s != MarkerNumbers && s != MarkerTriangle {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.markerStyle = s
	return true
}

// MarkerStyle returns the current marker style.
func (b *Board) MarkerStyle() MarkerStyle {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.markerStyle
}

// SetCoordinateColor sets the color of the A-T / 1-19 labels.
func (b *Board) SetCoordinateColor(c string) {
	if c == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.coordinateColor = c
}

// OwnerColor returns the owner's next alternating color.
func (b *Board) OwnerColor(owner string) Color {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ownerLocked(b.resolve(owner)).color
}

// SetOwnerColor sets the owner's next alternating color.
func (b *Board) SetOwnerColor(owner string, c Color) {
	if !c.IsMove() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ownerLocked(b.resolve(owner)).color = c
}

// SwitchColor flips the owner's alternating color and returns the new one.
func (b *Board) SwitchColor(owner string) Color {
	b.mu.Lock()
	defer b.mu.Unlock()
	o := b.ownerLocked(b.resolve(owner))
	o.color = o.color.Opposite()
	return o.color
}

// ClearOwner drops everything one owner has placed and refills their letter
// stack. Their alternating color is kept.
func (b *Board) ClearOwner(owner string) {
	owner = b.resolve(owner)
	b.mu.Lock()
	defer b.mu.Unlock()
	o := b.ownerLocked(owner)
	o.stones = nil
	o.boardStones = nil
	o.history = nil
	o.redo = nil
	o.letters = buildLetterStack()

	b.marks = slices.DeleteFunc(b.marks, func(m Mark) bool { return m.OwnerID == owner })
	b.paths = slices.DeleteFunc(b.paths, func(p Path) bool { return p.OwnerID == owner })
	delete(b.open, owner)
	log.Printf("[BOARD] Cleared owner %s", owner)
}

// ClearAll is ClearOwner for every owner at once, plus all drawing. The
// calibration is kept.
func (b *Board) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, o := range b.owners {
		o.stones = nil
		o.boardStones = nil
		o.history = nil
		o.redo = nil
		o.letters = buildLetterStack()
	}
	b.marks = nil
	b.paths = nil
	b.open = make(map[string]*Path)
	log.Println("[BOARD] Cleared all owners")
}

// Owners lists every owner seen so far in first-seen order.
func (b *Board) Owners() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.order)
}

func defaultMarkerColor(owner string) string {
	return colors.HostColor(owner)
}
