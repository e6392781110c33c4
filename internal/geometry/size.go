package geometry

import (
	"math"
	"strconv"
)

// SizePreference is the user's stone size setting. It only rescales stones
// once the user has actually changed it.
type SizePreference struct {
	Value   int
	Changed bool
}

// InterpolateStoneSize returns a stone diameter matching the local grid
// spacing around (x, y), so stones shrink towards the far side of a
// perspective-distorted board. Without a grid it returns base.
func InterpolateStoneSize(x, y float64, g *Grid, base float64, pref SizePreference) float64 {
	row, col, ok := closestIndex(x, y, g)
	if !ok {
		return base
	}
	center := g[row][col]

	spacing := math.Inf(1)
	measure := func(p Point) {
		d := math.Hypot(float64(center.X-p.X), float64(center.Y-p.Y))
		if d < spacing {
			spacing = d
		}
	}
	if row > 0 {
		measure(g[row-1][col])
	}
	if row < Size-1 {
		measure(g[row+1][col])
	}
	if col > 0 {
		measure(g[row][col-1])
	}
	if col < Size-1 {
		measure(g[row][col+1])
	}
	if math.IsInf(spacing, 1) || spacing <= 0 {
		spacing = base
	}

	diameter := spacing - stoneMargin
	if pref.Changed && pref.Value > 0 {
		diameter *= float64(pref.Value) / DefaultStoneSize
	}
	return math.Round(diameter)
}

// Go coordinates skip the letter I.
var columnLabels = [Size]string{
	"A", "B", "C", "D", "E", "F", "G", "H", "J", "K",
	"L", "M", "N", "O", "P", "Q", "R", "S", "T",
}

// ColumnLabel names a column, left to right.
func ColumnLabel(col int) string {
	if col < 0 || col >= Size {
		return "?"
	}
	return columnLabels[col]
}

// RowLabel names a row; row 0 is the top edge and is labelled "1".
func RowLabel(row int) string {
	if row < 0 || row >= Size {
		return "?"
	}
	return strconv.Itoa(row + 1)
}

// Vertex returns a human readable intersection name such as "K10".
func Vertex(row, col int) string {
	return ColumnLabel(col) + RowLabel(row)
}
