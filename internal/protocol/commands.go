// Package protocol defines the commands peers exchange, how they are encoded,
// and how inbound commands are applied to the local board.
package protocol

import (
	"GoBoardOverlay/internal/geometry"
	"GoBoardOverlay/internal/state"
)

// Action is the wire discriminator of a command.
type Action string

const (
	ActionSetGrid          Action = "set-grid"
	ActionResetGrid        Action = "reset-grid"
	ActionToggleGrid       Action = "toggle-grid"
	ActionPlaceStone       Action = "place-stone"
	ActionRemoveStone      Action = "remove-stone"
	ActionAddMark          Action = "add-mark"
	ActionRemoveMark       Action = "remove-mark"
	ActionDrawStart        Action = "draw-start"
	ActionDrawBatch        Action = "draw-batch"
	ActionDrawEnd          Action = "draw-end"
	ActionSwitchColor      Action = "switch-color"
	ActionUndoStone        Action = "undo-stone"
	ActionRedoStone        Action = "redo-stone"
	ActionCursorMove       Action = "cursor-move"
	ActionSetLabel         Action = "set-label"
	ActionClearOwner       Action = "clear-owner"
	ActionClearAll         Action = "clear-all"
	ActionClearDrawing     Action = "clear-drawing"
	ActionStoneMarkerStyle Action = "stone-marker-style"
	ActionCoordinateColor  Action = "coordinate-color"
	ActionSetTool          Action = "set-tool"

	// older peers still send reset-board
	actionResetBoard Action = "reset-board"
)

// Role is the sender class stamped on every command.
type Role string

const (
	RoleHost   Role = "HOST"
	RoleViewer Role = "VIEWER"
)

// ParseRole accepts the wire names and the short share-link forms CO and VW.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "HOST", "host", "CO", "co":
		return RoleHost, true
	case "VIEWER", "viewer", "VW", "vw":
		return RoleViewer, true
	}
	return "", false
}

// Header is carried by every command.
type Header struct {
	Name      Action `json:"action"`
	OwnerID   string `json:"ownerId,omitempty"`
	Role      Role   `json:"role,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Head gives access to the embedded header.
func (h *Header) Head() *Header { return h }

func (h *Header) sealed() {}

// Command is implemented only by the pointer types in this file.
type Command interface {
	Action() Action
	Head() *Header
	sealed()
}

type SetGrid struct {
	Header
	Points []geometry.Point `json:"points"`
}

type ResetGrid struct{ Header }

type ToggleGrid struct {
	Header
	Visible bool `json:"visible"`
}

// PlaceStone covers move stones and, via BOARD and REMOVE_BOARD, board-stones.
type PlaceStone struct {
	Header
	X           int         `json:"x"`
	Y           int         `json:"y"`
	Color       state.Color `json:"color"`
	MarkerColor string      `json:"markerColor,omitempty"`
}

type RemoveStone struct {
	Header
	X int `json:"x"`
	Y int `json:"y"`
}

type AddMark struct {
	Header
	Type  state.MarkType `json:"type"`
	X     int            `json:"x"`
	Y     int            `json:"y"`
	Text  string         `json:"text,omitempty"`
	Color string         `json:"color,omitempty"`
}

type RemoveMark struct {
	Header
	Type state.MarkType `json:"type"`
	X    int            `json:"x"`
	Y    int            `json:"y"`
	Text string         `json:"text,omitempty"`
}

type DrawStart struct {
	Header
	ID    string  `json:"id,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color,omitempty"`
}

type DrawBatch struct {
	Header
	ID     string      `json:"id,omitempty"`
	Points []state.Vec `json:"points"`
	Color  string      `json:"color,omitempty"`
}

type DrawEnd struct{ Header }

// SwitchColor carries the owner's next alternating color.
type SwitchColor struct {
	Header
	Color state.Color `json:"color"`
}

type UndoStone struct{ Header }

type RedoStone struct{ Header }

type CursorMove struct {
	Header
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Label   string  `json:"label,omitempty"`
	Color   string  `json:"color,omitempty"`
	HostTag string  `json:"hostTag,omitempty"`
}

type SetLabel struct {
	Header
	Label   string `json:"label,omitempty"`
	Color   string `json:"color,omitempty"`
	HostTag string `json:"hostTag,omitempty"`
}

type ClearOwner struct{ Header }

type ClearAll struct{ Header }

type ClearDrawing struct{ Header }

type StoneMarkerStyle struct {
	Header
	Style state.MarkerStyle `json:"style"`
}

type CoordinateColor struct {
	Header
	Color string `json:"color"`
}

// SetTool announces the sender's active tool. It is informational only.
type SetTool struct {
	Header
	Tool string `json:"tool"`
}

func (*SetGrid) Action() Action          { return ActionSetGrid }
func (*ResetGrid) Action() Action        { return ActionResetGrid }
func (*ToggleGrid) Action() Action       { return ActionToggleGrid }
func (*PlaceStone) Action() Action       { return ActionPlaceStone }
func (*RemoveStone) Action() Action      { return ActionRemoveStone }
func (*AddMark) Action() Action          { return ActionAddMark }
func (*RemoveMark) Action() Action       { return ActionRemoveMark }
func (*DrawStart) Action() Action        { return ActionDrawStart }
func (*DrawBatch) Action() Action        { return ActionDrawBatch }
func (*DrawEnd) Action() Action          { return ActionDrawEnd }
func (*SwitchColor) Action() Action      { return ActionSwitchColor }
func (*UndoStone) Action() Action        { return ActionUndoStone }
func (*RedoStone) Action() Action        { return ActionRedoStone }
func (*CursorMove) Action() Action       { return ActionCursorMove }
func (*SetLabel) Action() Action         { return ActionSetLabel }
func (*ClearOwner) Action() Action       { return ActionClearOwner }
func (*ClearAll) Action() Action         { return ActionClearAll }
func (*ClearDrawing) Action() Action     { return ActionClearDrawing }
func (*StoneMarkerStyle) Action() Action { return ActionStoneMarkerStyle }
func (*CoordinateColor) Action() Action  { return ActionCoordinateColor }
func (*SetTool) Action() Action          { return ActionSetTool }

var registry = map[Action]func() Command{
	ActionSetGrid:          func() Command { return &SetGrid{} },
	ActionResetGrid:        func() Command { return &ResetGrid{} },
	actionResetBoard:       func() Command { return &ResetGrid{} },
	ActionToggleGrid:       func() Command { return &ToggleGrid{} },
	ActionPlaceStone:       func() Command { return &PlaceStone{} },
	ActionRemoveStone:      func() Command { return &RemoveStone{} },
	ActionAddMark:          func() Command { return &AddMark{} },
	ActionRemoveMark:       func() Command { return &RemoveMark{} },
	ActionDrawStart:        func() Command { return &DrawStart{} },
	ActionDrawBatch:        func() Command { return &DrawBatch{} },
	ActionDrawEnd:          func() Command { return &DrawEnd{} },
	ActionSwitchColor:      func() Command { return &SwitchColor{} },
	ActionUndoStone:        func() Command { return &UndoStone{} },
	ActionRedoStone:        func() Command { return &RedoStone{} },
	ActionCursorMove:       func() Command { return &CursorMove{} },
	ActionSetLabel:         func() Command { return &SetLabel{} },
	ActionClearOwner:       func() Command { return &ClearOwner{} },
	ActionClearAll:         func() Command { return &ClearAll{} },
	ActionClearDrawing:     func() Command { return &ClearDrawing{} },
	ActionStoneMarkerStyle: func() Command { return &StoneMarkerStyle{} },
	ActionCoordinateColor:  func() Command { return &CoordinateColor{} },
	ActionSetTool:          func() Command { return &SetTool{} },
}

// New returns an empty command for action, or false for an unknown action.
func New(action Action) (Command, bool) {
	f, ok := registry[action]
	if !ok {
		return nil, false
	}
	return f(), true
}

// Stamp fills in the header fields a publisher owns. The owner is only set
// when the command does not already name one.
func Stamp(cmd Command, owner string, role Role, ts int64) {
	h := cmd.Head()
	h.Name = cmd.Action()
	if h.OwnerID == "" {
		h.OwnerID = owner
	}
	h.Role = role
	h.Timestamp = ts
}
