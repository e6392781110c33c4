package input

import (
	"sync"
	"testing"
	"time"

	"GoBoardOverlay/internal/geometry"
	"GoBoardOverlay/internal/protocol"
	"GoBoardOverlay/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	mu   sync.Mutex
	cmds []protocol.Command
}

func (c *capture) Publish(cmd protocol.Command) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cmds = append(c.cmds, cmd)
	return true
}

func (c *capture) actions() []protocol.Action {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]protocol.Action, len(c.cmds))
	for i, cmd := range c.cmds {
		out[i] = cmd.Action()
	}
	return out
}

func (c *capture) last() protocol.Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cmds[len(c.cmds)-1]
}

func (c *capture) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cmds = nil
}

var corners = []geometry.Point{{X: 100, Y: 100}, {X: 1000, Y: 100}, {X: 100, Y: 1000}, {X: 1000, Y: 1000}}

func calibrate(t *testing.T, c *Controller) {
	t.Helper()
	for _, p := range corners {
		c.Press(float64(p.X), float64(p.Y), Primary)
	}
	require.Equal(t, Calibrated, c.State())
}

func newController(t *testing.T, opts Options) (*Controller, *state.Board, *capture) {
	t.Helper()
	b := state.NewBoard("A")
	em := &capture{}
	c := NewController(b, em, opts)
	t.Cleanup(c.Close)
	return c, b, em
}

func TestCalibration(t *testing.T) {
	now := time.Unix(500, 0)
	c, b, em := newController(t, Options{Now: func() time.Time { return now }})
	assert.Equal(t, Uncalibrated, c.State())

	c.Press(1000, 1000, Primary)
	c.Press(100, 100, Primary)
	assert.Equal(t, Calibrating, c.State())
	assert.Len(t, c.PendingCorners(), 2)
	assert.Empty(t, em.actions())

	c.Press(100, 1000, Secondary)
	assert.True(t, c.Press(1000, 100, Primary))
	assert.Equal(t, Calibrated, c.State())
	assert.Empty(t, c.PendingCorners())
	assert.Equal(t, []protocol.Action{protocol.ActionSetGrid}, em.actions())

	b.Tick(now.Add(FlashDuration))
	assert.False(t, b.GridVisible(), "grid flashes after calibration")

	em.reset()
	assert.True(t, c.Key(KeyReset))
	assert.Equal(t, Uncalibrated, c.State())
	assert.Equal(t, []protocol.Action{protocol.ActionResetGrid}, em.actions())
}

func TestUncalibratedClicksNeverPlace(t *testing.T) {
	c, b, _ := newController(t, Options{Tool: ToolBlack})
	c.Press(10, 10, Primary)
	assert.Empty(t, b.Stones(""))
}

func TestStoneTools(t *testing.T) {
	t.Run("toggle and replace", func(t *testing.T) {
		c, b, em := newController(t, Options{Tool: ToolBlack, Color: "#010203"})
		calibrate(t, c)
		g := b.Grid()
		em.reset()

		require.True(t, c.Press(552, 548, Primary))
		s, ok := b.StoneAt(g[9][9].X, g[9][9].Y, "A")
		require.True(t, ok)
		assert.Equal(t, "#010203", s.MarkerColor)
		place := em.last().(*protocol.PlaceStone)
		assert.Equal(t, g[9][9].X, place.X)
		assert.Equal(t, "#010203", place.MarkerColor)

		c.Press(552, 548, Primary)
		assert.Empty(t, b.Stones(""))

		c.Press(552, 548, Primary)
		c.SetTool(ToolWhite)
		c.Press(552, 548, Primary)
		stones := b.Stones("")
		require.Len(t, stones, 1)
		assert.Equal(t, state.White, stones[0].Color)

		assert.Equal(t, []protocol.Action{
			protocol.ActionPlaceStone, protocol.ActionRemoveStone, protocol.ActionPlaceStone,
			protocol.ActionSetTool, protocol.ActionPlaceStone,
		}, em.actions())
	})

	t.Run("alternating scenario", func(t *testing.T) {
		c, b, em := newController(t, Options{Tool: ToolAlternating})
		calibrate(t, c)
		g := b.Grid()
		em.reset()

		c.Press(float64(g[9][9].X), float64(g[9][9].Y), Primary)
		c.Press(float64(g[9][10].X), float64(g[9][10].Y), Primary)
		assert.Len(t, b.Stones(""), 2)
		assert.Equal(t, 2, b.HistoryLen(""))
		assert.Equal(t, 0, b.RedoLen(""))
		assert.Equal(t, state.Black, b.OwnerColor(""))

		assert.True(t, c.Key(KeyLeft))
		stones := b.Stones("")
		require.Len(t, stones, 1)
		assert.Equal(t, state.Black, stones[0].Color)
		assert.Equal(t, 1, b.RedoLen(""))

		assert.True(t, c.Key(KeyRight))
		assert.Len(t, b.Stones(""), 2)
		assert.Equal(t, 0, b.RedoLen(""))
		assert.False(t, c.Key(KeyRight))

		assert.Equal(t, []protocol.Action{
			protocol.ActionPlaceStone, protocol.ActionSwitchColor,
			protocol.ActionPlaceStone, protocol.ActionSwitchColor,
			protocol.ActionUndoStone, protocol.ActionRedoStone,
		}, em.actions())
	})

	t.Run("removal does not switch color", func(t *testing.T) {
		c, b, em := newController(t, Options{Tool: ToolAlternating})
		calibrate(t, c)
		g := b.Grid()
		b.PlaceStone(g[0][0].X, g[0][0].Y, state.Black, "", state.PlaceOptions{})
		em.reset()

		c.Press(float64(g[0][0].X), float64(g[0][0].Y), Primary)
		assert.Empty(t, b.Stones(""))
		assert.Equal(t, state.Black, b.OwnerColor(""))
		assert.Equal(t, []protocol.Action{protocol.ActionRemoveStone}, em.actions())
	})

	t.Run("stone over own board-stone", func(t *testing.T) {
		c, b, em := newController(t, Options{Tool: ToolBlack})
		calibrate(t, c)
		g := b.Grid()
		em.reset()

		c.Press(float64(g[3][3].X), float64(g[3][3].Y), Secondary)
		require.True(t, b.HasBoardStone(g[3][3].X, g[3][3].Y, ""))
		c.Press(float64(g[3][3].X), float64(g[3][3].Y), Primary)
		assert.False(t, b.HasBoardStone(g[3][3].X, g[3][3].Y, ""))
		assert.Len(t, b.Stones(""), 1)

		var colors []state.Color
		for _, cmd := range em.cmds {
			colors = append(colors, cmd.(*protocol.PlaceStone).Color)
		}
		assert.Equal(t, []state.Color{state.BoardColor, state.RemoveBoard, state.Black}, colors)
	})
}

func TestBoardStoneToggle(t *testing.T) {
	c, b, em := newController(t, Options{Tool: ToolTriangle})
	calibrate(t, c)
	g := b.Grid()
	b.PlaceStone(g[5][5].X, g[5][5].Y, state.Black, "", state.PlaceOptions{})
	em.reset()

	c.Press(float64(g[5][5].X), float64(g[5][5].Y), Secondary)
	assert.True(t, b.HasBoardStone(g[5][5].X, g[5][5].Y, ""))
	assert.Empty(t, b.Stones(""))

	c.Press(float64(g[5][5].X), float64(g[5][5].Y), Secondary)
	assert.Empty(t, b.BoardStones(""))
	assert.Empty(t, b.Marks(), "secondary clicks never place marks")
	assert.Len(t, em.actions(), 2)
}

func TestMarkTools(t *testing.T) {
	c, b, em := newController(t, Options{Tool: ToolCircle, Color: "#00ff00"})
	calibrate(t, c)
	g := b.Grid()
	em.reset()

	c.Press(float64(g[1][1].X), float64(g[1][1].Y), Primary)
	marks := b.Marks()
	require.Len(t, marks, 1)
	assert.Equal(t, state.Mark{Type: state.Circle, X: g[1][1].X, Y: g[1][1].Y, OwnerID: "A", Color: "#00ff00"}, marks[0])

	c.SetTool(ToolLetter)
	c.Press(float64(g[2][2].X), float64(g[2][2].Y), Primary)
	c.Press(float64(g[3][3].X), float64(g[3][3].Y), Primary)
	c.Press(float64(g[2][2].X)+4, float64(g[2][2].Y), Primary)
	assert.Equal(t, "A", b.NextLetter(""))
	c.Press(float64(g[4][4].X), float64(g[4][4].Y), Primary)

	var texts []string
	for _, m := range b.Marks() {
		texts = append(texts, m.Text)
	}
	assert.Equal(t, []string{"", "B", "A"}, texts)

	assert.Equal(t, []protocol.Action{
		protocol.ActionAddMark, protocol.ActionSetTool,
		protocol.ActionAddMark, protocol.ActionAddMark, protocol.ActionRemoveMark, protocol.ActionAddMark,
	}, em.actions())
	removed := em.cmds[4].(*protocol.RemoveMark)
	assert.Equal(t, "A", removed.Text)
}

func TestPen(t *testing.T) {
	c, b, em := newController(t, Options{Tool: ToolPen, Color: "#ff0000"})
	calibrate(t, c)
	em.reset()

	c.Press(10, 10, Primary)
	c.Move(11, 12)
	c.Move(13, 14)
	open, ok := b.OpenPath("")
	require.True(t, ok)
	assert.Len(t, open.Points, 3)

	c.Sample()
	c.Move(15, 16)
	c.Release()

	paths := b.Paths()
	require.Len(t, paths, 1)
	assert.Equal(t, []state.Vec{{X: 10, Y: 10}, {X: 11, Y: 12}, {X: 13, Y: 14}, {X: 15, Y: 16}}, paths[0].Points)

	assert.Equal(t, []protocol.Action{
		protocol.ActionDrawStart, protocol.ActionDrawBatch, protocol.ActionCursorMove,
		protocol.ActionDrawBatch, protocol.ActionDrawEnd,
	}, em.actions())
	first := em.cmds[1].(*protocol.DrawBatch)
	assert.Equal(t, []state.Vec{{X: 11, Y: 12}, {X: 13, Y: 14}}, first.Points)
	start := em.cmds[0].(*protocol.DrawStart)
	require.NotEmpty(t, start.ID)
	assert.Equal(t, paths[0].ID, start.ID)
	assert.Equal(t, start.ID, first.ID)
}

func TestCursorSampling(t *testing.T) {
	c, _, em := newController(t, Options{Label: "Host 1"})

	assert.False(t, c.Sample(), "nothing to send before the pointer moves")
	c.Move(100, 200)
	assert.True(t, c.Sample())
	assert.False(t, c.Sample(), "unchanged position is suppressed")
	c.Move(101, 200)
	assert.True(t, c.Sample())

	move := em.last().(*protocol.CursorMove)
	assert.Equal(t, 101.0, move.X)
	assert.Equal(t, "Host 1", move.Label)

	t.Run("ticker runs between enter and leave", func(t *testing.T) {
		em.reset()
		c.Enter()
		c.Enter()
		c.Move(300, 300)
		assert.Eventually(t, func() bool { return len(em.actions()) > 0 }, time.Second, 10*time.Millisecond)
		c.Leave()
		n := len(em.actions())
		time.Sleep(3 * CursorInterval)
		assert.Equal(t, n, len(em.actions()))
	})
}

func TestKeys(t *testing.T) {
	c, b, em := newController(t, Options{Tool: ToolBlack})
	calibrate(t, c)
	g := b.Grid()
	c.Press(float64(g[0][0].X), float64(g[0][0].Y), Primary)
	em.reset()

	assert.True(t, c.Key(KeySwitchColor))
	assert.Equal(t, state.White, b.OwnerColor(""))

	visible := b.GridVisible()
	c.Key(KeyToggleGrid)
	assert.Equal(t, !visible, b.GridVisible())

	c.Key(KeySpace)
	assert.Empty(t, b.Stones(""))

	c.Press(float64(g[0][0].X), float64(g[0][0].Y), Primary)
	c.Key(KeyBackspace)
	assert.Empty(t, b.Stones(""))
	assert.True(t, b.Calibrated())

	assert.False(t, c.Key(Key("Z")))
	assert.False(t, c.Scroll(-1), "nothing to undo")

	assert.Equal(t, []protocol.Action{
		protocol.ActionSwitchColor, protocol.ActionToggleGrid, protocol.ActionClearOwner,
		protocol.ActionPlaceStone, protocol.ActionClearAll,
	}, em.actions())
}

func TestSettings(t *testing.T) {
	c, b, em := newController(t, Options{Label: "Host 2", HostTag: "Host 2"})

	assert.True(t, c.SetMarkerStyle(state.MarkerTriangle))
	assert.False(t, c.SetMarkerStyle("stars"))
	assert.True(t, c.SetCoordinateColor("white"))
	c.ClearDrawing()
	c.Announce()
	assert.False(t, c.SetTool("HAMMER"))

	assert.Equal(t, state.MarkerTriangle, b.MarkerStyle())
	assert.Equal(t, []protocol.Action{
		protocol.ActionStoneMarkerStyle, protocol.ActionCoordinateColor,
		protocol.ActionClearDrawing, protocol.ActionSetLabel,
	}, em.actions())
	label := em.last().(*protocol.SetLabel)
	assert.Equal(t, "Host 2", label.Label)
	assert.NotEmpty(t, label.Color)
}

func TestViewerNeverMutates(t *testing.T) {
	c, b, em := newController(t, Options{Role: protocol.RoleViewer, Tool: ToolBlack})
	for _, p := range corners {
		c.Press(float64(p.X), float64(p.Y), Primary)
	}
	c.Move(5, 5)
	c.Sample()
	c.Key(KeyDelete)
	c.SetMarkerStyle(state.MarkerTriangle)
	c.Enter()

	assert.False(t, b.Calibrated())
	assert.Empty(t, em.actions())
	assert.Equal(t, Uncalibrated, c.State())
}
