package ui

import (
	"testing"

	"GoBoardOverlay/internal/geometry"
	"GoBoardOverlay/internal/input"
	"GoBoardOverlay/internal/overlay"
	"GoBoardOverlay/internal/session"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoard(t *testing.T) *BoardWidget {
	t.Helper()
	test.NewTempApp(t)
	ctx := session.Default()
	ctx.OwnerID = "me"
	p, err := overlay.New(ctx)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	b := NewBoardWidget(p)
	b.Resize(fyne.NewSize(geometry.CanvasWidth/2, geometry.CanvasHeight/2))
	return b
}

func TestViewportLetterbox(t *testing.T) {
	v := newViewport(fyne.NewSize(960, 640))
	assert.InDelta(t, 0.5, v.scale, 1e-6)
	assert.InDelta(t, 0, v.offX, 1e-6)
	assert.InDelta(t, 50, v.offY, 1e-6)

	x, y := v.toCanvas(fyne.NewPos(480, 320))
	assert.InDelta(t, 960, x, 1e-3)
	assert.InDelta(t, 540, y, 1e-3)
	assert.Equal(t, fyne.NewPos(480, 320), v.toScreen(960, 540))
}

func TestMouseCalibratesAndPlaces(t *testing.T) {
	b := newTestBoard(t)
	for _, p := range []fyne.Position{{X: 50, Y: 50}, {X: 500, Y: 50}, {X: 50, Y: 500}, {X: 500, Y: 500}} {
		b.MouseDown(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: p}, Button: desktop.MouseButtonPrimary})
	}
	require.True(t, b.peer.Board.Calibrated())
	assert.Equal(t, input.Calibrated, b.peer.Controller.State())

	g := b.peer.Board.Grid()
	pos := fyne.NewPos(float32(g[9][9].X)/2, float32(g[9][9].Y)/2)
	b.MouseDown(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: pos}, Button: desktop.MouseButtonPrimary})
	assert.Len(t, b.peer.Board.Stones("me"), 1)

	b.MouseDown(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: pos}, Button: desktop.MouseButtonSecondary})
	assert.Empty(t, b.peer.Board.Stones("me"))
	assert.Len(t, b.peer.Board.BoardStones("me"), 1)
}

func TestTypedKeyAndScroll(t *testing.T) {
	b := newTestBoard(t)
	visible := b.peer.Board.GridVisible()
	b.TypedKey(&fyne.KeyEvent{Name: fyne.KeyS})
	assert.Equal(t, !visible, b.peer.Board.GridVisible())

	b.TypedKey(&fyne.KeyEvent{Name: fyne.KeyZ})
	b.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: 1}})
}

func TestRendererDrawsScene(t *testing.T) {
	b := newTestBoard(t)
	require.NoError(t, b.peer.Board.SetGrid([]geometry.Point{{X: 100, Y: 100}, {X: 1000, Y: 100}, {X: 100, Y: 1000}, {X: 1000, Y: 1000}}))

	r := test.WidgetRenderer(b)
	r.Refresh()
	// background, 361 dots and 38 coordinate labels
	assert.Len(t, r.Objects(), 1+geometry.Size*geometry.Size+2*geometry.Size)
}
