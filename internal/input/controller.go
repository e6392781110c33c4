package input

import (
	"log"
	"sync"
	"time"

	"GoBoardOverlay/internal/colors"
	"GoBoardOverlay/internal/geometry"
	"GoBoardOverlay/internal/protocol"
	"GoBoardOverlay/internal/state"
)

const (
	// CursorInterval is how often the pointer position is sampled.
	CursorInterval = 50 * time.Millisecond
	// FlashDuration is how long the grid dots show after calibration.
	FlashDuration = 3 * time.Second
	// LetterRadius is how close a click must be to hit an existing letter.
	LetterRadius = 20.0
)

// Emitter publishes a command to the other peers.
type Emitter interface {
	Publish(cmd protocol.Command) bool
}

// Options configures a Controller.
type Options struct {
	Role    protocol.Role
	Owner   string
	Color   string
	Label   string
	HostTag string
	Tool    Tool
	Now     func() time.Time
}

// Controller owns the local participant's tool state. Each event runs under
// one lock: the board mutation and its command are emitted together.
type Controller struct {
	mu    sync.Mutex
	board *state.Board
	emit  Emitter
	opts  Options
	tool  Tool

	corners []geometry.Point

	pointer    state.Vec
	hasPointer bool
	lastSent   state.Vec
	sent       bool
	stop       chan struct{}

	drawing bool
	stroke  string
	batch   []state.Vec
}

// NewController wires a controller to a board and an emitter.
func NewController(board *state.Board, emit Emitter, opts Options) *Controller {
	if opts.Owner == "" {
		opts.Owner = board.LocalOwner()
	}
	if opts.Role == "" {
		opts.Role = protocol.RoleHost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if !opts.Tool.Valid() {
		opts.Tool = ToolAlternating
	}
	return &Controller{board: board, emit: emit, opts: opts, tool: opts.Tool}
}

func (c *Controller) viewer() bool { return c.opts.Role == protocol.RoleViewer }

func (c *Controller) send(cmd protocol.Command) {
	if c.emit != nil {
		c.emit.Publish(cmd)
	}
}

// Owner returns the owner id local edits are made under.
func (c *Controller) Owner() string { return c.opts.Owner }

// State reports the calibration state.
func (c *Controller) State() Calibration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() Calibration {
	if c.board.Calibrated() {
		return Calibrated
	}
	if len(c.corners) > 0 {
		return Calibrating
	}
	return Uncalibrated
}

// PendingCorners returns the corners clicked so far while calibrating.
func (c *Controller) PendingCorners() []geometry.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]geometry.Point(nil), c.corners...)
}

// Tool returns the active tool.
func (c *Controller) Tool() Tool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tool
}

// SetTool switches the active tool and announces it.
func (c *Controller) SetTool(t Tool) bool {
	if !t.Valid() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drawing {
		c.finishStrokeLocked()
	}
	c.tool = t
	if !c.viewer() {
		c.send(&protocol.SetTool{Tool: string(t)})
	}
	return true
}

// Color returns the user color used for marks, pen strokes and stone markers.
func (c *Controller) Color() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.markerColorLocked()
}

// SetColor changes the user color and announces it with the label.
func (c *Controller) SetColor(color string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.Color = color
	c.announceLocked()
}

// Announce publishes the local label and color.
func (c *Controller) Announce() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.announceLocked()
}

func (c *Controller) announceLocked() {
	if c.viewer() {
		return
	}
	c.send(&protocol.SetLabel{Label: c.opts.Label, Color: c.markerColorLocked(), HostTag: c.opts.HostTag})
}

func (c *Controller) markerColorLocked() string {
	if c.opts.Color != "" {
		return c.opts.Color
	}
	source := c.opts.HostTag
	if source == "" {
		source = c.opts.Label
	}
	if source == "" {
		source = c.opts.Owner
	}
	return colors.HostColor(source)
}

// Press handles a pointer press at canvas position (x, y). It reports whether
// the board changed.
func (c *Controller) Press(x, y float64, btn Button) bool {
	if c.viewer() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pointer, c.hasPointer = state.Vec{X: x, Y: y}, true

	if !c.board.Calibrated() {
		return c.addCornerLocked(x, y)
	}
	if btn == Secondary {
		return c.toggleBoardStoneLocked(x, y)
	}
	switch {
	case c.tool == ToolPen:
		return c.beginStrokeLocked(x, y)
	case c.tool.isStone():
		return c.stoneLocked(x, y)
	case c.tool == ToolLetter:
		return c.letterLocked(x, y)
	default:
		return c.markLocked(x, y)
	}
}

func (c *Controller) addCornerLocked(x, y float64) bool {
	c.corners = append(c.corners, geometry.Point{X: int(x + 0.5), Y: int(y + 0.5)})
	if len(c.corners) < 4 {
		return false
	}
	corners := c.corners
	c.corners = nil
	if err := c.board.SetGrid(corners); err != nil {
		log.Printf("[INPUT] Calibration failed: %v", err)
		return false
	}
	c.board.FlashGrid(c.opts.Now(), FlashDuration)
	c.send(&protocol.SetGrid{Points: corners})
	log.Printf("[INPUT] Grid calibrated from %v", corners)
	return true
}

func (c *Controller) snap(x, y float64) (geometry.Point, bool) {
	return geometry.FindClosestPoint(x, y, c.board.Grid())
}

func (c *Controller) toggleBoardStoneLocked(x, y float64) bool {
	p, ok := c.snap(x, y)
	if !ok {
		return false
	}
	action := state.BoardColor
	if c.board.HasBoardStone(p.X, p.Y, c.opts.Owner) {
		action = state.RemoveBoard
	}
	if !c.board.PlaceBoardStone(p.X, p.Y, action, c.opts.Owner) {
		return false
	}
	c.send(&protocol.PlaceStone{X: p.X, Y: p.Y, Color: action})
	return true
}

func (c *Controller) stoneLocked(x, y float64) bool {
	p, ok := c.snap(x, y)
	if !ok {
		return false
	}
	owner := c.opts.Owner

	if c.board.HasBoardStone(p.X, p.Y, owner) {
		c.board.PlaceBoardStone(p.X, p.Y, state.RemoveBoard, owner)
		c.send(&protocol.PlaceStone{X: p.X, Y: p.Y, Color: state.RemoveBoard})
	}

	color := state.Black
	switch c.tool {
	case ToolWhite:
		color = state.White
	case ToolAlternating:
		color = c.board.OwnerColor(owner)
	}

	if s, ok := c.board.StoneAt(p.X, p.Y, owner); ok && s.Color == color {
		c.board.RemoveStone(p.X, p.Y, owner)
		c.send(&protocol.RemoveStone{X: p.X, Y: p.Y})
		return true
	}

	marker := c.markerColorLocked()
	if !c.board.PlaceStone(p.X, p.Y, color, owner, state.PlaceOptions{MarkerColor: marker}) {
		return false
	}
	c.send(&protocol.PlaceStone{X: p.X, Y: p.Y, Color: color, MarkerColor: marker})

	if c.tool == ToolAlternating {
		next := c.board.SwitchColor(owner)
		c.send(&protocol.SwitchColor{Color: next})
	}
	return true
}

func (c *Controller) markLocked(x, y float64) bool {
	kind, ok := c.tool.mark()
	if !ok {
		return false
	}
	p, ok := c.snap(x, y)
	if !ok {
		return false
	}
	color := c.markerColorLocked()
	if !c.board.AddMark(state.Mark{Type: kind, X: p.X, Y: p.Y, OwnerID: c.opts.Owner, Color: color}) {
		return false
	}
	c.send(&protocol.AddMark{Type: kind, X: p.X, Y: p.Y, Color: color})
	return true
}

func (c *Controller) letterLocked(x, y float64) bool {
	p, ok := c.snap(x, y)
	if !ok {
		return false
	}
	owner := c.opts.Owner
	if m, ok := c.board.FindLetterMark(owner, p.X, p.Y, LetterRadius); ok {
		c.board.RemoveMark(m)
		c.send(&protocol.RemoveMark{Type: state.Letter, X: m.X, Y: m.Y, Text: m.Text})
		return true
	}
	text := c.board.AllocateLetter(owner)
	color := c.markerColorLocked()
	c.board.AddMark(state.Mark{Type: state.Letter, X: p.X, Y: p.Y, Text: text, OwnerID: owner, Color: color})
	c.send(&protocol.AddMark{Type: state.Letter, X: p.X, Y: p.Y, Text: text, Color: color})
	return true
}

func (c *Controller) beginStrokeLocked(x, y float64) bool {
	color := c.markerColorLocked()
	c.drawing = true
	c.batch = nil
	c.stroke = c.board.BeginPath(c.opts.Owner, "", state.Vec{X: x, Y: y}, color)
	c.send(&protocol.DrawStart{ID: c.stroke, X: x, Y: y, Color: color})
	return true
}

func (c *Controller) flushStrokeLocked() {
	if len(c.batch) == 0 {
		return
	}
	c.send(&protocol.DrawBatch{ID: c.stroke, Points: c.batch, Color: c.markerColorLocked()})
	c.batch = nil
}

func (c *Controller) finishStrokeLocked() {
	c.flushStrokeLocked()
	c.drawing = false
	c.board.EndPath(c.opts.Owner)
	c.send(&protocol.DrawEnd{})
}

// Move records the pointer position and extends an active pen stroke.
func (c *Controller) Move(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pointer, c.hasPointer = state.Vec{X: x, Y: y}, true
	if c.drawing {
		v := state.Vec{X: x, Y: y}
		c.batch = append(c.batch, v)
		c.board.ExtendPath(c.opts.Owner, c.stroke, []state.Vec{v}, "")
	}
}

// Release ends an active pen stroke.
func (c *Controller) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drawing {
		c.finishStrokeLocked()
	}
}

// Key handles a keyboard shortcut. It reports whether anything changed.
func (c *Controller) Key(k Key) bool {
	if c.viewer() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	owner := c.opts.Owner

	switch k {
	case KeyReset:
		c.corners = nil
		c.board.ResetGrid()
		c.send(&protocol.ResetGrid{})
	case KeySwitchColor:
		next := c.board.SwitchColor(owner)
		c.send(&protocol.SwitchColor{Color: next})
	case KeyToggleGrid:
		visible := !c.board.GridVisible()
		c.board.SetGridVisible(visible)
		c.send(&protocol.ToggleGrid{Visible: visible})
	case KeyDelete, KeyBackspace:
		c.board.ClearAll()
		c.send(&protocol.ClearAll{})
	case KeySpace:
		c.board.ClearOwner(owner)
		c.send(&protocol.ClearOwner{})
	case KeyLeft:
		return c.undoLocked()
	case KeyRight:
		return c.redoLocked()
	default:
		return false
	}
	return true
}

// Scroll maps the wheel onto history: up undoes, down redoes.
func (c *Controller) Scroll(dy float64) bool {
	if c.viewer() || dy == 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if dy < 0 {
		return c.undoLocked()
	}
	return c.redoLocked()
}

func (c *Controller) undoLocked() bool {
	if !c.board.Undo(c.opts.Owner) {
		return false
	}
	c.send(&protocol.UndoStone{})
	return true
}

func (c *Controller) redoLocked() bool {
	if !c.board.Redo(c.opts.Owner) {
		return false
	}
	c.send(&protocol.RedoStone{})
	return true
}

// SetMarkerStyle switches the last-move markers for everyone.
func (c *Controller) SetMarkerStyle(s state.MarkerStyle) bool {
	if c.viewer() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.board.SetMarkerStyle(s) {
		return false
	}
	c.send(&protocol.StoneMarkerStyle{Style: s})
	return true
}

// SetCoordinateColor recolors the coordinate labels for everyone.
func (c *Controller) SetCoordinateColor(color string) bool {
	if c.viewer() || color == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.board.SetCoordinateColor(color)
	c.send(&protocol.CoordinateColor{Color: color})
	return true
}

// ClearDrawing wipes every stroke and mark for everyone.
func (c *Controller) ClearDrawing() {
	if c.viewer() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.board.ClearDrawing()
	c.send(&protocol.ClearDrawing{})
}

// Pointer returns the last known pointer position while it is over the canvas.
func (c *Controller) Pointer() (state.Vec, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pointer, c.hasPointer
}

// HoverColor is the stone color a primary click would place, or "" when the
// active tool does not place stones.
func (c *Controller) HoverColor() state.Color {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.tool {
	case ToolBlack:
		return state.Black
	case ToolWhite:
		return state.White
	case ToolAlternating:
		return c.board.OwnerColor(c.opts.Owner)
	}
	return ""
}
