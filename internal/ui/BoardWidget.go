package ui

import (
	"context"
	"image/color"
	"strconv"
	"time"

	"GoBoardOverlay/internal/colors"
	"GoBoardOverlay/internal/geometry"
	"GoBoardOverlay/internal/input"
	"GoBoardOverlay/internal/overlay"
	"GoBoardOverlay/internal/render"
	"GoBoardOverlay/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// FrameInterval paces the render tick.
const FrameInterval = time.Second / 60

var (
	black      = color.NRGBA{A: 0xff}
	white      = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	boardColor = color.NRGBA{R: 0xdc, G: 0xb3, B: 0x5c, A: 0xff}
	background = color.NRGBA{R: 0x20, G: 0x22, B: 0x25, A: 0xff}
)

// BoardWidget draws a peer's scene over the video area and forwards pointer
// and keyboard input to its controller.
type BoardWidget struct {
	widget.BaseWidget
	peer      *overlay.Peer
	statusBar *widget.Label
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.Scrollable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)

func NewBoardWidget(p *overlay.Peer) *BoardWidget {
	b := &BoardWidget{
		peer:      p,
		statusBar: widget.NewLabel("Ready"),
	}
	b.ExtendBaseWidget(b)
	p.OnStatus(b.SetStatus)
	return b
}

// SetStatus may be called from any goroutine.
func (b *BoardWidget) SetStatus(text string) {
	fyne.Do(func() {
		b.statusBar.SetText(text)
	})
}

// Run refreshes the widget every frame until ctx is done.
func (b *BoardWidget) Run(ctx context.Context) {
	t := time.NewTicker(FrameInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			b.peer.Tick(now)
			fyne.Do(b.Refresh)
		}
	}
}

// viewport letterboxes the fixed canvas into the widget.
type viewport struct {
	scale, offX, offY float32
}

func newViewport(size fyne.Size) viewport {
	if size.Width <= 0 || size.Height <= 0 {
		return viewport{scale: 1}
	}
	scale := min(size.Width/geometry.CanvasWidth, size.Height/geometry.CanvasHeight)
	return viewport{
		scale: scale,
		offX:  (size.Width - geometry.CanvasWidth*scale) / 2,
		offY:  (size.Height - geometry.CanvasHeight*scale) / 2,
	}
}

func (v viewport) toCanvas(p fyne.Position) (float64, float64) {
	return float64((p.X - v.offX) / v.scale), float64((p.Y - v.offY) / v.scale)
}

func (v viewport) toScreen(x, y float64) fyne.Position {
	return fyne.NewPos(v.offX+float32(x)*v.scale, v.offY+float32(y)*v.scale)
}

func (v viewport) length(l float64) float32 { return float32(l) * v.scale }

func (b *BoardWidget) canvasPos(p fyne.Position) (float64, float64) {
	return newViewport(b.Size()).toCanvas(p)
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	btn := input.Primary
	switch e.Button {
	case desktop.MouseButtonPrimary:
	case desktop.MouseButtonSecondary:
		btn = input.Secondary
	default:
		return
	}
	x, y := b.canvasPos(e.Position)
	if b.peer.Controller.Press(x, y, btn) {
		b.Refresh()
	}
}

func (b *BoardWidget) MouseUp(*desktop.MouseEvent) {
	b.peer.Controller.Release()
	b.Refresh()
}

func (b *BoardWidget) MouseIn(e *desktop.MouseEvent) {
	b.peer.Controller.Enter()
	b.MouseMoved(e)
}

func (b *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	x, y := b.canvasPos(e.Position)
	b.peer.Controller.Move(x, y)
}

func (b *BoardWidget) MouseOut() {
	b.peer.Controller.Leave()
	b.Refresh()
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	x, y := b.canvasPos(e.Position)
	b.peer.Controller.Move(x, y)
}

func (b *BoardWidget) DragEnd() {
	b.peer.Controller.Release()
}

// Scrolled maps wheel up to undo and wheel down to redo.
func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	if b.peer.Controller.Scroll(float64(-e.Scrolled.DY)) {
		b.Refresh()
	}
}

var keyMap = map[fyne.KeyName]input.Key{
	fyne.KeyR:         input.KeyReset,
	fyne.KeyQ:         input.KeySwitchColor,
	fyne.KeyS:         input.KeyToggleGrid,
	fyne.KeyDelete:    input.KeyDelete,
	fyne.KeyBackspace: input.KeyBackspace,
	fyne.KeySpace:     input.KeySpace,
	fyne.KeyLeft:      input.KeyLeft,
	fyne.KeyRight:     input.KeyRight,
}

// TypedKey is installed on the window canvas so shortcuts work without
// focusing the widget.
func (b *BoardWidget) TypedKey(e *fyne.KeyEvent) {
	k, ok := keyMap[e.Name]
	if !ok {
		return
	}
	if b.peer.Controller.Key(k) {
		b.Refresh()
	}
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardWidgetRenderer{board: b}
	r.background = canvas.NewRectangle(background)
	r.objects = []fyne.CanvasObject{r.background}
	return r
}

type boardWidgetRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
	objects    []fyne.CanvasObject
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *boardWidgetRenderer) Refresh() {
	r.objects = append([]fyne.CanvasObject{r.background}, sceneObjects(r.board.peer.Scene(), newViewport(r.board.Size()))...)
	canvas.Refresh(r.board)
}

func (r *boardWidgetRenderer) Destroy() {}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.Refresh()
}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(480, 270)
}

func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	if a > 0 && a < 1 {
		c.A = uint8(float64(c.A) * a)
	}
	return c
}

func stoneFill(c state.Color) color.NRGBA {
	switch c {
	case state.White:
		return white
	case state.BoardColor:
		return boardColor
	}
	return black
}

// sceneObjects converts one frame into fyne canvas objects.
func sceneObjects(sc render.Scene, v viewport) []fyne.CanvasObject {
	var out []fyne.CanvasObject

	for _, d := range sc.Dots {
		dot := canvas.NewRectangle(white)
		dot.Resize(fyne.NewSquareSize(v.length(d.Size)))
		dot.Move(v.toScreen(d.X-d.Size/2, d.Y-d.Size/2))
		out = append(out, dot)
	}
	for _, l := range sc.Labels {
		out = append(out, text(l.Text, l.X, l.Y, l.Size, l.Align, colors.Parse(l.Color, black), v))
	}

	stones := append(append([]render.Stone{}, sc.BoardStones...), sc.Stones...)
	if sc.Hover != nil {
		stones = append(stones, *sc.Hover)
	}
	for _, s := range stones {
		c := canvas.NewCircle(withAlpha(stoneFill(s.Color), s.Alpha))
		if s.Color != state.BoardColor {
			c.StrokeColor = withAlpha(black, s.Alpha)
			c.StrokeWidth = 1
		}
		d := v.length(s.Diameter)
		c.Resize(fyne.NewSquareSize(d))
		c.Move(v.toScreen(s.X, s.Y).SubtractXY(d/2, d/2))
		out = append(out, c)
	}
	for _, m := range sc.Markers {
		c := colors.Parse(m.Color, black)
		if m.Style == state.MarkerTriangle {
			out = append(out, outline(m.Triangle[:], c, 2, v)...)
			continue
		}
		out = append(out, text(strconv.Itoa(m.Number), m.X, m.Y, m.Size, render.AlignCenter, c, v))
	}

	for _, m := range sc.Marks {
		out = append(out, markObjects(m, v)...)
	}
	for _, s := range sc.Strokes {
		c := colors.Parse(s.Color, black)
		for i := 1; i < len(s.Points); i++ {
			seg := canvas.NewLine(c)
			seg.StrokeWidth = v.length(s.Width)
			seg.Position1 = v.toScreen(s.Points[i-1].X, s.Points[i-1].Y)
			seg.Position2 = v.toScreen(s.Points[i].X, s.Points[i].Y)
			out = append(out, seg)
		}
	}
	for _, cur := range sc.Cursors {
		c := colors.Parse(cur.Color, white)
		dot := canvas.NewCircle(c)
		dot.StrokeColor = white
		dot.StrokeWidth = 1
		dot.Resize(fyne.NewSquareSize(float32(cur.Size)))
		dot.Move(v.toScreen(cur.X, cur.Y).SubtractXY(float32(cur.Size)/2, float32(cur.Size)/2))
		label := canvas.NewText(cur.Label, c)
		label.TextSize = 12
		label.Move(v.toScreen(cur.X, cur.Y).AddXY(float32(cur.Size), 0))
		out = append(out, dot, label)
	}
	return out
}

func text(s string, x, y, size float64, align render.Align, c color.Color, v viewport) *canvas.Text {
	t := canvas.NewText(s, c)
	t.TextSize = max(v.length(size), 6)
	dim := fyne.MeasureText(s, t.TextSize, t.TextStyle)
	p := v.toScreen(x, y).SubtractXY(0, dim.Height/2)
	if align == render.AlignRight {
		p = p.SubtractXY(dim.Width, 0)
	} else {
		p = p.SubtractXY(dim.Width/2, 0)
	}
	t.Move(p)
	return t
}

func outline(pts []state.Vec, c color.Color, width float32, v viewport) []fyne.CanvasObject {
	out := make([]fyne.CanvasObject, 0, len(pts))
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		l := canvas.NewLine(c)
		l.StrokeWidth = width
		l.Position1 = v.toScreen(a.X, a.Y)
		l.Position2 = v.toScreen(b.X, b.Y)
		out = append(out, l)
	}
	return out
}

func markObjects(m render.Mark, v viewport) []fyne.CanvasObject {
	c := colors.Parse(m.Color, black)
	r := m.Size / 2
	switch m.Type {
	case state.Circle:
		circle := canvas.NewCircle(color.Transparent)
		circle.StrokeColor = c
		circle.StrokeWidth = 3
		d := v.length(m.Size)
		circle.Resize(fyne.NewSquareSize(d))
		circle.Move(v.toScreen(m.X, m.Y).SubtractXY(d/2, d/2))
		return []fyne.CanvasObject{circle}
	case state.Square:
		sq := canvas.NewRectangle(color.Transparent)
		sq.StrokeColor = c
		sq.StrokeWidth = 3
		sq.Resize(fyne.NewSquareSize(v.length(m.Size)))
		sq.Move(v.toScreen(m.X-r, m.Y-r))
		return []fyne.CanvasObject{sq}
	case state.Triangle:
		return outline([]state.Vec{
			{X: m.X, Y: m.Y - r},
			{X: m.X - r, Y: m.Y + r*0.8},
			{X: m.X + r, Y: m.Y + r*0.8},
		}, c, 3, v)
	case state.Letter:
		return []fyne.CanvasObject{text(m.Text, m.X, m.Y, m.Size, render.AlignCenter, c, v)}
	}
	return nil
}
