// Package render turns a board snapshot and the visible cursors into a flat
// list of drawing primitives in canvas space. It has no drawing backend of its
// own; the fyne overlay and the PDF exporter both consume a Scene.
package render

import (
	"slices"

	"GoBoardOverlay/internal/geometry"
	"GoBoardOverlay/internal/presence"
	"GoBoardOverlay/internal/state"
)

const (
	GridDotSize        = 6
	CoordinateFontSize = 24
	columnLabelOffset  = 32
	rowLabelOffset     = 24

	// Stone images carry padding, so move stones are drawn slightly larger
	// than the grid spacing. Board-stones cover a little more still.
	moveStoneScale  = 1.25
	boardStoneScale = 1.275

	HoverAlpha  = 0.6
	StrokeWidth = 4
	CursorSize  = 8
)

// Align is the horizontal anchor of a text label.
type Align int

const (
	AlignCenter Align = iota
	AlignRight
)

type Dot struct {
	X, Y, Size float64
}

type Label struct {
	X, Y  float64
	Text  string
	Size  float64
	Color string
	Align Align
}

// Stone is a stone disc. Diameter already includes the image scale.
type Stone struct {
	X, Y     float64
	Diameter float64
	Color    state.Color
	OwnerID  string
	Alpha    float64
}

// Marker annotates a move stone with its move number or a small triangle.
type Marker struct {
	X, Y   float64
	Style  state.MarkerStyle
	Number int
	Size   float64
	Color  string
	// Triangle holds the outline for triangle markers.
	Triangle [3]state.Vec
}

type Mark struct {
	Type  state.MarkType
	X, Y  float64
	Size  float64
	Text  string
	Color string
}

type Stroke struct {
	Points []state.Vec
	Color  string
	Width  float64
}

type Cursor struct {
	X, Y  float64
	Size  float64
	Color string
	Label string
}

// Scene is everything to draw for one frame, in back-to-front order by
// field.
type Scene struct {
	Width, Height float64

	Dots        []Dot
	Labels      []Label
	BoardStones []Stone
	Stones      []Stone
	Markers     []Marker
	Hover       *Stone
	Marks       []Mark
	Strokes     []Stroke
	Cursors     []Cursor
}

// Hover asks for a translucent preview stone under the local pointer.
type Hover struct {
	X, Y  float64
	Color state.Color
}

type Options struct {
	// Viewer hides grid dots and always shows coordinates.
	Viewer          bool
	ShowCoordinates bool
	StoneSize       geometry.SizePreference
	LocalOwner      string
	Hover           *Hover
	// PenColor is used for strokes that carry no color.
	PenColor string
}

// Build lays out a frame. Nothing is placed before calibration except
// strokes, marks and cursors, which live in free canvas space.
func Build(snap state.Snapshot, cursors []presence.Cursor, opts Options) Scene {
	sc := Scene{Width: geometry.CanvasWidth, Height: geometry.CanvasHeight}
	g := snap.Grid

	if g != nil {
		if snap.GridVisible && !opts.Viewer {
			for i := range geometry.Size {
				for j := range geometry.Size {
					p := g[i][j]
					sc.Dots = append(sc.Dots, Dot{X: float64(p.X), Y: float64(p.Y), Size: GridDotSize})
				}
			}
		}
		if opts.Viewer || opts.ShowCoordinates {
			sc.Labels = coordinateLabels(g, snap.CoordinateColor)
		}

		for _, o := range snap.Owners {
			for _, s := range o.BoardStones {
				sc.BoardStones = append(sc.BoardStones, stoneAt(s, g, opts.StoneSize))
			}
		}
		for _, o := range snap.Owners {
			for i, s := range o.Stones {
				st := stoneAt(s, g, opts.StoneSize)
				sc.Stones = append(sc.Stones, st)
				sc.Markers = append(sc.Markers, markerFor(s, i+1, g, opts.StoneSize, snap.MarkerStyle))
			}
		}
		sc.Hover = hoverStone(snap, g, opts)
	}

	for _, m := range snap.Marks {
		size := geometry.InterpolateStoneSize(float64(m.X), float64(m.Y), g, geometry.DefaultStoneSize/3, opts.StoneSize)
		sc.Marks = append(sc.Marks, Mark{
			Type:  m.Type,
			X:     float64(m.X),
			Y:     float64(m.Y),
			Size:  size * 0.6,
			Text:  m.Text,
			Color: fallback(m.Color, "#ff0000"),
		})
	}

	for _, p := range slices.Concat(snap.Paths, snap.OpenPaths) {
		if len(p.Points) == 0 {
			continue
		}
		sc.Strokes = append(sc.Strokes, Stroke{
			Points: slices.Clone(p.Points),
			Color:  fallback(p.Color, fallback(opts.PenColor, "#ff0000")),
			Width:  StrokeWidth,
		})
	}

	for _, c := range cursors {
		if !c.Visible || c.OwnerID == opts.LocalOwner {
			continue
		}
		sc.Cursors = append(sc.Cursors, Cursor{
			X:     c.CurrentX,
			Y:     c.CurrentY,
			Size:  CursorSize,
			Color: c.Color,
			Label: c.Label,
		})
	}
	return sc
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func coordinateLabels(g *geometry.Grid, color string) []Label {
	color = fallback(color, "black")
	labels := make([]Label, 0, 2*geometry.Size)
	for j := range geometry.Size {
		p := g[0][j]
		labels = append(labels, Label{
			X: float64(p.X), Y: float64(p.Y) - columnLabelOffset,
			Text: geometry.ColumnLabel(j), Size: CoordinateFontSize, Color: color,
		})
	}
	for i := range geometry.Size {
		p := g[i][0]
		labels = append(labels, Label{
			X: float64(p.X) - rowLabelOffset, Y: float64(p.Y),
			Text: geometry.RowLabel(i), Size: CoordinateFontSize, Color: color, Align: AlignRight,
		})
	}
	return labels
}

func baseSize(x, y int, g *geometry.Grid, pref geometry.SizePreference) float64 {
	return geometry.InterpolateStoneSize(float64(x), float64(y), g, geometry.DefaultStoneSize, pref)
}

func stoneAt(s state.Stone, g *geometry.Grid, pref geometry.SizePreference) Stone {
	scale := moveStoneScale
	if s.Color == state.BoardColor {
		scale = boardStoneScale
	}
	return Stone{
		X:        float64(s.X),
		Y:        float64(s.Y),
		Diameter: baseSize(s.X, s.Y, g, pref) * scale,
		Color:    s.Color,
		OwnerID:  s.OwnerID,
		Alpha:    1,
	}
}

func markerFor(s state.Stone, number int, g *geometry.Grid, pref geometry.SizePreference, style state.MarkerStyle) Marker {
	size := baseSize(s.X, s.Y, g, pref)
	x, y := float64(s.X), float64(s.Y)
	contrast := "black"
	if s.Color == state.Black {
		contrast = "white"
	}

	if style == state.MarkerTriangle {
		h := size / 2.2
		half := h * 0.6
		return Marker{
			X: x, Y: y, Style: style, Number: number, Size: h,
			Color: fallback(s.MarkerColor, contrast),
			Triangle: [3]state.Vec{
				{X: x, Y: y - h/1.2},
				{X: x - half, Y: y + h/2.2},
				{X: x + half, Y: y + h/2.2},
			},
		}
	}
	return Marker{X: x, Y: y, Style: state.MarkerNumbers, Number: number, Size: size / 3, Color: contrast}
}

func hoverStone(snap state.Snapshot, g *geometry.Grid, opts Options) *Stone {
	h := opts.Hover
	if h == nil || opts.Viewer || !h.Color.IsMove() {
		return nil
	}
	p, ok := geometry.FindClosestPoint(h.X, h.Y, g)
	if !ok {
		return nil
	}
	if o, ok := snap.Owner(opts.LocalOwner); ok {
		if slices.ContainsFunc(o.Stones, func(s state.Stone) bool { return s.X == p.X && s.Y == p.Y }) {
			return nil
		}
	}
	st := stoneAt(state.Stone{X: p.X, Y: p.Y, Color: h.Color, OwnerID: opts.LocalOwner}, g, opts.StoneSize)
	st.Alpha = HoverAlpha
	return &st
}
