// Package geometry maps four clicked board corners onto a 19x19 grid of
// canvas pixels and answers nearest-point and stone-size queries against it.
package geometry

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

const (
	// Size is the number of lines on each side of the board.
	Size = 19

	// CanvasWidth and CanvasHeight are the fixed internal resolution every
	// participant shares, regardless of how large the overlay is displayed.
	CanvasWidth  = 1920
	CanvasHeight = 1080

	// DefaultStoneSize is the neutral value of the user's stone size preference.
	DefaultStoneSize = 125

	stoneMargin = 2
)

// ErrCornerCount is returned when a grid is requested from anything other
// than exactly four corners.
var ErrCornerCount = errors.New("geometry: grid needs exactly 4 corner points")

// Point is an integer pixel position in canvas space.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Grid holds the interpolated intersections, indexed [row][col] with row 0 at
// the top edge of the board.
type Grid [Size][Size]Point

// SortCorners orders four arbitrary corners as top-left, top-right,
// bottom-left, bottom-right: the two smallest y values form the top pair and
// each pair is then ordered by x.
func SortCorners(raw [4]Point) [4]Point {
	pts := raw
	sort.SliceStable(pts[:], func(i, j int) bool { return pts[i].Y < pts[j].Y })
	top := []Point{pts[0], pts[1]}
	bottom := []Point{pts[2], pts[3]}
	sort.SliceStable(top, func(i, j int) bool { return top[i].X < top[j].X })
	sort.SliceStable(bottom, func(i, j int) bool { return bottom[i].X < bottom[j].X })
	return [4]Point{top[0], top[1], bottom[0], bottom[1]}
}

// GenerateGrid bilinearly interpolates 19 evenly spaced lines between the
// corners. The result does not depend on the order the corners were clicked.
func GenerateGrid(corners []Point) (*Grid, error) {
	if len(corners) != 4 {
		return nil, fmt.Errorf("%w: got %d", ErrCornerCount, len(corners))
	}
	c := SortCorners([4]Point{corners[0], corners[1], corners[2], corners[3]})
	tl, tr, bl, br := c[0], c[1], c[2], c[3]

	var g Grid
	for i := 0; i < Size; i++ {
		fy := float64(i) / float64(Size-1)
		for j := 0; j < Size; j++ {
			fx := float64(j) / float64(Size-1)
			topX := lerp(float64(tl.X), float64(tr.X), fx)
			topY := lerp(float64(tl.Y), float64(tr.Y), fx)
			botX := lerp(float64(bl.X), float64(br.X), fx)
			botY := lerp(float64(bl.Y), float64(br.Y), fx)
			x := lerp(topX, botX, fy)
			y := lerp(topY, botY, fy)
			g[i][j] = Point{X: int(math.Floor(x)), Y: int(math.Floor(y))}
		}
	}
	return &g, nil
}

// lerp keeps each product rounded on its own so no platform fuses them and
// shifts a floored coordinate by one pixel.
func lerp(a, b, t float64) float64 {
	return float64(a*(1-t)) + float64(b*t)
}

// FindClosestPoint snaps (x, y) to the nearest intersection. Ties keep the
// first point found in row-major order. A nil grid reports ok == false.
func FindClosestPoint(x, y float64, g *Grid) (Point, bool) {
	row, col, ok := closestIndex(x, y, g)
	if !ok {
		return Point{}, false
	}
	return g[row][col], true
}

func closestIndex(x, y float64, g *Grid) (int, int, bool) {
	if g == nil {
		return 0, 0, false
	}
	bestRow, bestCol := 0, 0
	best := math.Hypot(x-float64(g[0][0].X), y-float64(g[0][0].Y))
	for i := 0; i < Size; i++ {
		for j := 0; j < Size; j++ {
			d := math.Hypot(x-float64(g[i][j].X), y-float64(g[i][j].Y))
			if d < best {
				best = d
				bestRow, bestCol = i, j
			}
		}
	}
	return bestRow, bestCol, true
}

// Locate returns the row and column of an exact intersection.
func (g *Grid) Locate(p Point) (row, col int, ok bool) {
	if g == nil {
		return 0, 0, false
	}
	for i := 0; i < Size; i++ {
		for j := 0; j < Size; j++ {
			if g[i][j] == p {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// Corners returns the four outer intersections as TL, TR, BL, BR.
func (g *Grid) Corners() [4]Point {
	return [4]Point{g[0][0], g[0][Size-1], g[Size-1][0], g[Size-1][Size-1]}
}
