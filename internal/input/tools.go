// Package input turns pointer and keyboard events into board mutations and
// the matching outbound commands.
package input

import (
	"GoBoardOverlay/internal/state"
)

// Tool is what a primary click does once the grid is calibrated.
type Tool string

const (
	ToolBlack       Tool = "BLACK"
	ToolWhite       Tool = "WHITE"
	ToolAlternating Tool = "ALTERNATING"
	ToolTriangle    Tool = "TRIANGLE"
	ToolCircle      Tool = "CIRCLE"
	ToolSquare      Tool = "SQUARE"
	ToolLetter      Tool = "LETTER"
	ToolPen         Tool = "PEN"
)

// Tools lists every tool in toolbar order.
var Tools = []Tool{ToolBlack, ToolWhite, ToolAlternating, ToolTriangle, ToolCircle, ToolSquare, ToolLetter, ToolPen}

// Valid reports whether t is a known tool.
func (t Tool) Valid() bool {
	for _, k := range Tools {
		if k == t {
			return true
		}
	}
	return false
}

func (t Tool) isStone() bool {
	return t == ToolBlack || t == ToolWhite || t == ToolAlternating
}

func (t Tool) mark() (state.MarkType, bool) {
	switch t {
	case ToolTriangle:
		return state.Triangle, true
	case ToolCircle:
		return state.Circle, true
	case ToolSquare:
		return state.Square, true
	case ToolLetter:
		return state.Letter, true
	}
	return "", false
}

// Calibration is where the controller is in collecting the four corners.
type Calibration int

const (
	Uncalibrated Calibration = iota
	Calibrating
	Calibrated
)

func (c Calibration) String() string {
	switch c {
	case Calibrating:
		return "CALIBRATING"
	case Calibrated:
		return "CALIBRATED"
	}
	return "UNCALIBRATED"
}

// Button is the pointer button of a press.
type Button int

const (
	Primary Button = iota
	Secondary
)

// Key is a keyboard shortcut.
type Key string

const (
	KeyReset       Key = "R"
	KeySwitchColor Key = "Q"
	KeyToggleGrid  Key = "S"
	KeyDelete      Key = "Delete"
	KeyBackspace   Key = "Backspace"
	KeySpace       Key = "Space"
	KeyLeft        Key = "Left"
	KeyRight       Key = "Right"
)
