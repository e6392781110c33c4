package state

import "GoBoardOverlay/internal/geometry"

// Color is the symbolic stone color carried on the wire.
type Color string

const (
	Black       Color = "BLACK"
	White       Color = "WHITE"
	BoardColor  Color = "BOARD"
	RemoveBoard Color = "REMOVE_BOARD"
)

// IsMove reports whether c is a move stone color that enters history.
func (c Color) IsMove() bool { return c == Black || c == White }

// Opposite flips BLACK and WHITE; anything else becomes BLACK.
func (c Color) Opposite() Color {
	if c == Black {
		return White
	}
	return Black
}

// Stone is a move stone or, with Color == BOARD, a board-stone.
type Stone struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Color       Color  `json:"color"`
	OwnerID     string `json:"ownerId"`
	MarkerColor string `json:"markerColor,omitempty"`
}

// Point returns the stone position in canvas space.
func (s Stone) Point() geometry.Point { return geometry.Point{X: s.X, Y: s.Y} }

// HistoryEntry records one BLACK/WHITE placement for undo/redo.
type HistoryEntry struct {
	X           int
	Y           int
	Color       Color
	MarkerColor string
}

// MarkType selects the shape drawn for a Mark.
type MarkType string

const (
	Triangle MarkType = "TRIANGLE"
	Circle   MarkType = "CIRCLE"
	Square   MarkType = "SQUARE"
	Letter   MarkType = "LETTER"
)

// Valid reports whether t is one of the known shapes.
func (t MarkType) Valid() bool {
	switch t {
	case Triangle, Circle, Square, Letter:
		return true
	}
	return false
}

// Mark is a shape or letter annotation at a grid point.
type Mark struct {
	Type    MarkType `json:"type"`
	X       int      `json:"x"`
	Y       int      `json:"y"`
	Text    string   `json:"text,omitempty"`
	OwnerID string   `json:"ownerId"`
	Color   string   `json:"color,omitempty"`
}

// Vec is a free canvas position used by freehand paths.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Path is a freehand stroke.
type Path struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
	Color   string `json:"color"`
	Points  []Vec  `json:"points"`
}

// MarkerStyle selects how the last moves are annotated.
type MarkerStyle string

const (
	MarkerNumbers  MarkerStyle = "numbers"
	MarkerTriangle MarkerStyle = "triangle"
)

// PlaceOptions tunes PlaceStone. The zero value records history and clears
// the redo stack, which is what a fresh local move wants.
type PlaceOptions struct {
	SkipHistory bool
	KeepRedo    bool
	MarkerColor string
}
