package state

import (
	"testing"
	"time"

	"GoBoardOverlay/internal/colors"
	"GoBoardOverlay/internal/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var square = []geometry.Point{{X: 100, Y: 100}, {X: 1000, Y: 100}, {X: 100, Y: 1000}, {X: 1000, Y: 1000}}

func calibrated(t *testing.T) (*Board, *geometry.Grid) {
	t.Helper()
	b := NewBoard("A")
	require.NoError(t, b.SetGrid(square))
	g := b.Grid()
	require.NotNil(t, g)
	return b, g
}

func TestPlaceStone(t *testing.T) {
	t.Run("same color twice is a no-op", func(t *testing.T) {
		b := NewBoard("A")
		assert.True(t, b.PlaceStone(10, 10, Black, "", PlaceOptions{}))
		assert.False(t, b.PlaceStone(10, 10, Black, "", PlaceOptions{}))
		assert.Len(t, b.Stones(""), 1)
		assert.Equal(t, 1, b.HistoryLen(""))
	})

	t.Run("toggle through remove then place cancels out", func(t *testing.T) {
		b := NewBoard("A")
		b.PlaceStone(10, 10, Black, "", PlaceOptions{})
		assert.True(t, b.RemoveStone(10, 10, ""))
		assert.Empty(t, b.Stones(""))
		assert.False(t, b.RemoveStone(10, 10, ""))
	})

	t.Run("different color replaces", func(t *testing.T) {
		b := NewBoard("A")
		b.PlaceStone(10, 10, Black, "", PlaceOptions{})
		assert.True(t, b.PlaceStone(10, 10, White, "", PlaceOptions{}))
		stones := b.Stones("")
		require.Len(t, stones, 1)
		assert.Equal(t, White, stones[0].Color)
	})

	t.Run("owners do not collide", func(t *testing.T) {
		b := NewBoard("A")
		b.PlaceStone(10, 10, Black, "A", PlaceOptions{})
		b.PlaceStone(10, 10, White, "B", PlaceOptions{})
		assert.Len(t, b.Stones("A"), 1)
		assert.Len(t, b.Stones("B"), 1)
		assert.Equal(t, []string{"A", "B"}, b.Owners())
	})

	t.Run("options control history and redo", func(t *testing.T) {
		b := NewBoard("A")
		b.PlaceStone(1, 1, Black, "", PlaceOptions{SkipHistory: true})
		assert.Equal(t, 0, b.HistoryLen(""))

		b.PlaceStone(2, 2, Black, "", PlaceOptions{})
		require.True(t, b.Undo(""))
		assert.Equal(t, 1, b.RedoLen(""))
		b.PlaceStone(3, 3, Black, "", PlaceOptions{KeepRedo: true})
		assert.Equal(t, 1, b.RedoLen(""))
		b.PlaceStone(4, 4, Black, "", PlaceOptions{})
		assert.Equal(t, 0, b.RedoLen(""))
	})

	t.Run("marker color defaults to the owner color", func(t *testing.T) {
		b := NewBoard("Host 1")
		b.PlaceStone(1, 1, Black, "", PlaceOptions{})
		s, ok := b.StoneAt(1, 1, "")
		require.True(t, ok)
		assert.Equal(t, colors.Palette[0], s.MarkerColor)

		b.PlaceStone(2, 2, White, "", PlaceOptions{MarkerColor: "#123456"})
		s, _ = b.StoneAt(2, 2, "")
		assert.Equal(t, "#123456", s.MarkerColor)
	})

	t.Run("unknown color is rejected", func(t *testing.T) {
		b := NewBoard("A")
		assert.False(t, b.PlaceStone(1, 1, Color("PURPLE"), "", PlaceOptions{}))
		assert.Empty(t, b.Stones(""))
	})
}

func TestBoardStoneExclusivity(t *testing.T) {
	b := NewBoard("A")
	b.PlaceStone(5, 5, Black, "", PlaceOptions{})

	assert.True(t, b.PlaceBoardStone(5, 5, BoardColor, ""))
	assert.Empty(t, b.Stones(""))
	assert.True(t, b.HasBoardStone(5, 5, ""))

	b.PlaceStone(5, 5, White, "", PlaceOptions{})
	assert.False(t, b.HasBoardStone(5, 5, ""))
	assert.Len(t, b.Stones(""), 1)

	b.PlaceBoardStone(6, 6, BoardColor, "")
	b.PlaceBoardStone(6, 6, BoardColor, "")
	assert.Len(t, b.BoardStones(""), 1)

	assert.True(t, b.PlaceStone(6, 6, RemoveBoard, "", PlaceOptions{}))
	assert.Empty(t, b.BoardStones(""))
	assert.False(t, b.PlaceBoardStone(6, 6, RemoveBoard, ""))
	assert.Equal(t, 1, b.HistoryLen(""), "board stones never enter history")
}

func TestUndoRedo(t *testing.T) {
	t.Run("round trip keeps move order", func(t *testing.T) {
		b := NewBoard("A")
		moves := []Stone{{X: 1, Y: 1, Color: Black}, {X: 2, Y: 2, Color: White}, {X: 3, Y: 3, Color: Black}, {X: 4, Y: 4, Color: White}}
		for _, m := range moves {
			b.PlaceStone(m.X, m.Y, m.Color, "", PlaceOptions{})
		}
		before := b.Stones("")

		for range moves {
			require.True(t, b.Undo(""))
		}
		assert.Empty(t, b.Stones(""))
		assert.False(t, b.Undo(""))
		assert.Equal(t, len(moves), b.RedoLen(""))

		for range moves {
			require.True(t, b.Redo(""))
		}
		assert.False(t, b.Redo(""))
		assert.Equal(t, before, b.Stones(""))
		assert.Equal(t, len(moves), b.HistoryLen(""))
	})

	t.Run("entries for removed stones are skipped", func(t *testing.T) {
		b := NewBoard("A")
		b.PlaceStone(1, 1, Black, "", PlaceOptions{})
		b.PlaceStone(2, 2, White, "", PlaceOptions{})
		b.RemoveStone(2, 2, "")

		require.True(t, b.Undo(""))
		assert.Empty(t, b.Stones(""))
		assert.Equal(t, 0, b.HistoryLen(""))
		assert.Equal(t, 1, b.RedoLen(""))
	})

	t.Run("empty history", func(t *testing.T) {
		b := NewBoard("A")
		assert.False(t, b.Undo(""))
		assert.False(t, b.Redo(""))
	})
}

func TestScenario(t *testing.T) {
	b, g := calibrated(t)
	tengen, next := g[9][9], g[9][10]

	c := b.OwnerColor("A")
	require.Equal(t, Black, c)
	require.True(t, b.PlaceStone(tengen.X, tengen.Y, c, "A", PlaceOptions{}))
	c = b.SwitchColor("A")
	require.Equal(t, White, c)
	require.True(t, b.PlaceStone(next.X, next.Y, c, "A", PlaceOptions{}))
	b.SwitchColor("A")

	assert.Len(t, b.Stones("A"), 2)
	assert.Equal(t, 2, b.HistoryLen("A"))
	assert.Equal(t, 0, b.RedoLen("A"))

	require.True(t, b.Undo("A"))
	stones := b.Stones("A")
	require.Len(t, stones, 1)
	assert.Equal(t, Stone{X: tengen.X, Y: tengen.Y, Color: Black, OwnerID: "A", MarkerColor: stones[0].MarkerColor}, stones[0])
	assert.Equal(t, 1, b.RedoLen("A"))

	require.True(t, b.Redo("A"))
	assert.Len(t, b.Stones("A"), 2)
	assert.Equal(t, 0, b.RedoLen("A"))
}

func TestLetters(t *testing.T) {
	t.Run("A through Z then AA", func(t *testing.T) {
		b := NewBoard("A")
		var got []string
		for i := 0; i < 27; i++ {
			got = append(got, b.AllocateLetter(""))
		}
		assert.Equal(t, "A", got[0])
		assert.Equal(t, "Z", got[25])
		assert.Equal(t, "AA", got[26])
	})

	t.Run("released letter comes back in order", func(t *testing.T) {
		b := NewBoard("A")
		for i := 0; i < 5; i++ {
			b.AllocateLetter("")
		}
		b.ReleaseLetter("", "C")
		assert.Equal(t, "C", b.NextLetter(""))
		assert.Equal(t, "C", b.AllocateLetter(""))
		assert.Equal(t, "F", b.AllocateLetter(""))
	})

	t.Run("releasing twice does not duplicate", func(t *testing.T) {
		b := NewBoard("A")
		b.AllocateLetter("")
		b.ReleaseLetter("", "A")
		b.ReleaseLetter("", "A")
		assert.Len(t, b.Letters(""), 26+26*26)
	})

	t.Run("two letter labels sort after Z", func(t *testing.T) {
		b := NewBoard("A")
		for i := 0; i < 28; i++ {
			b.AllocateLetter("")
		}
		b.ReleaseLetter("", "AA")
		b.ReleaseLetter("", "Z")
		assert.Equal(t, []string{"Z", "AA", "AC"}, b.Letters("")[:3])
	})

	t.Run("exhausted stack yields A", func(t *testing.T) {
		b := NewBoard("A")
		for i := 0; i < 26+26*26; i++ {
			b.AllocateLetter("")
		}
		assert.Equal(t, "A", b.AllocateLetter(""))
	})
}

func TestMarks(t *testing.T) {
	b := NewBoard("A")
	letter := b.AllocateLetter("")
	require.True(t, b.AddMark(Mark{Type: Letter, X: 10, Y: 10, Text: letter}))
	require.True(t, b.AddMark(Mark{Type: Triangle, X: 20, Y: 20}))
	assert.False(t, b.AddMark(Mark{Type: "STAR"}))

	m, ok := b.FindLetterMark("", 14, 12, 15)
	require.True(t, ok)
	assert.Equal(t, "A", m.Text)
	_, ok = b.FindLetterMark("", 40, 40, 15)
	assert.False(t, ok)
	_, ok = b.FindLetterMark("B", 10, 10, 15)
	assert.False(t, ok)

	require.True(t, b.RemoveMark(m))
	assert.Equal(t, "A", b.NextLetter(""))
	assert.Len(t, b.Marks(), 1)

	t.Run("remote letter claims from the stack", func(t *testing.T) {
		r := NewBoard("local")
		r.AddMark(Mark{Type: Letter, X: 1, Y: 1, Text: "A", OwnerID: "host"})
		assert.Equal(t, "B", r.NextLetter("host"))
	})
}

func TestPaths(t *testing.T) {
	t.Run("begin extend end", func(t *testing.T) {
		b := NewBoard("A")
		b.BeginPath("", "", Vec{X: 1, Y: 1}, "#ff0000")
		b.ExtendPath("", "", []Vec{{X: 2, Y: 2}, {X: 3, Y: 3}}, "")
		open, ok := b.OpenPath("")
		require.True(t, ok)
		assert.Len(t, open.Points, 3)
		assert.Empty(t, b.Paths())

		b.EndPath("")
		paths := b.Paths()
		require.Len(t, paths, 1)
		assert.Equal(t, "#ff0000", paths[0].Color)
		assert.Len(t, paths[0].Points, 3)
		_, ok = b.OpenPath("")
		assert.False(t, ok)
	})

	t.Run("batch without an open path commits a segment", func(t *testing.T) {
		b := NewBoard("A")
		b.ExtendPath("remote", "", []Vec{{X: 1, Y: 1}, {X: 2, Y: 2}}, "#00ff00")
		paths := b.Paths()
		require.Len(t, paths, 1)
		assert.Equal(t, "remote", paths[0].OwnerID)
	})

	t.Run("a second begin commits the first stroke", func(t *testing.T) {
		b := NewBoard("A")
		b.BeginPath("", "", Vec{X: 1, Y: 1}, "")
		b.BeginPath("", "", Vec{X: 5, Y: 5}, "")
		assert.Len(t, b.Paths(), 1)
	})

	t.Run("clear drawing keeps stones", func(t *testing.T) {
		b := NewBoard("A")
		b.PlaceStone(1, 1, Black, "", PlaceOptions{})
		b.AddPath("", []Vec{{X: 1, Y: 1}}, "")
		b.AddMark(Mark{Type: Circle, X: 1, Y: 1})
		b.ClearDrawing()
		assert.Empty(t, b.Paths())
		assert.Empty(t, b.Marks())
		assert.Len(t, b.Stones(""), 1)
	})
}

func TestClearing(t *testing.T) {
	setup := func() *Board {
		b := NewBoard("A")
		require.NoError(t, b.SetGrid(square))
		for _, owner := range []string{"A", "B"} {
			b.PlaceStone(1, 1, Black, owner, PlaceOptions{})
			b.PlaceBoardStone(2, 2, BoardColor, owner)
			b.AllocateLetter(owner)
			b.AddMark(Mark{Type: Square, X: 3, Y: 3, OwnerID: owner})
			b.AddPath(owner, []Vec{{X: 1, Y: 1}}, "")
		}
		b.SwitchColor("A")
		return b
	}

	t.Run("clear owner", func(t *testing.T) {
		b := setup()
		b.ClearOwner("A")
		assert.Empty(t, b.Stones("A"))
		assert.Empty(t, b.BoardStones("A"))
		assert.Equal(t, 0, b.HistoryLen("A"))
		assert.Equal(t, "A", b.NextLetter("A"))
		assert.Equal(t, White, b.OwnerColor("A"))
		assert.Len(t, b.Stones("B"), 1)
		assert.Len(t, b.Marks(), 1)
		assert.Len(t, b.Paths(), 1)
	})

	t.Run("clear all keeps calibration", func(t *testing.T) {
		b := setup()
		b.ClearAll()
		for _, owner := range []string{"A", "B"} {
			assert.Empty(t, b.Stones(owner))
			assert.Empty(t, b.BoardStones(owner))
			assert.Equal(t, "A", b.NextLetter(owner))
		}
		assert.Empty(t, b.Marks())
		assert.Empty(t, b.Paths())
		assert.True(t, b.Calibrated())
	})

	t.Run("reset grid", func(t *testing.T) {
		b := setup()
		b.ResetGrid()
		assert.False(t, b.Calibrated())
		assert.Nil(t, b.Grid())
		assert.Empty(t, b.Corners())
		assert.Empty(t, b.Stones("B"))
		assert.Empty(t, b.BoardStones("B"))
		assert.Len(t, b.Marks(), 2)
	})
}

func TestGridVisibility(t *testing.T) {
	b := NewBoard("A")
	now := time.Unix(1000, 0)

	b.SetGridVisible(false)
	b.FlashGrid(now, 3*time.Second)
	assert.True(t, b.GridVisible())

	b.Tick(now.Add(time.Second))
	assert.True(t, b.GridVisible())
	b.Tick(now.Add(3 * time.Second))
	assert.False(t, b.GridVisible())

	b.FlashGrid(now, 3*time.Second)
	b.SetGridVisible(true)
	b.Tick(now.Add(time.Hour))
	assert.True(t, b.GridVisible(), "explicit toggle cancels the flash")

	assert.Error(t, b.SetGrid(square[:2]))
	assert.False(t, b.Calibrated())
}

func TestSnapshot(t *testing.T) {
	b, g := calibrated(t)
	b.PlaceStone(g[0][0].X, g[0][0].Y, Black, "", PlaceOptions{})
	b.BeginPath("", "", Vec{X: 1, Y: 1}, "")
	b.SetMarkerStyle(MarkerTriangle)
	assert.False(t, b.SetMarkerStyle("stars"))

	s := b.Snapshot()
	require.True(t, s.Calibrated())
	assert.Equal(t, MarkerTriangle, s.MarkerStyle)
	owner, ok := s.Owner("A")
	require.True(t, ok)
	assert.Len(t, owner.Stones, 1)
	assert.Len(t, s.OpenPaths, 1)

	s.Grid[0][0] = geometry.Point{}
	owner.Stones[0].X = -1
	assert.Equal(t, g[0][0], b.Grid()[0][0])
	assert.Equal(t, g[0][0].X, b.Stones("")[0].X)
}

func TestTimestamp(t *testing.T) {
	now := time.Now()
	a := Timestamp(now)
	b := Timestamp(now)
	assert.Greater(t, b, a)
}

func TestRepeatedAnnotations(t *testing.T) {
	t.Run("identical mark is added once", func(t *testing.T) {
		b := NewBoard("A")
		require.True(t, b.AddMark(Mark{Type: Letter, X: 1, Y: 1, Text: "A", OwnerID: "host"}))
		assert.False(t, b.AddMark(Mark{Type: Letter, X: 1, Y: 1, Text: "A", OwnerID: "host"}))
		assert.True(t, b.AddMark(Mark{Type: Letter, X: 1, Y: 1, Text: "A", OwnerID: "other"}))
		assert.True(t, b.AddMark(Mark{Type: Triangle, X: 1, Y: 1, OwnerID: "host"}))
		assert.Len(t, b.Marks(), 3)

		require.True(t, b.RemoveMark(Mark{Type: Letter, X: 1, Y: 1, Text: "A", OwnerID: "host"}))
		assert.False(t, b.RemoveMark(Mark{Type: Letter, X: 1, Y: 1, Text: "A", OwnerID: "host"}))
	})

	t.Run("committed path id is not committed again", func(t *testing.T) {
		b := NewBoard("A")
		b.ExtendPath("host", "p1", []Vec{{X: 1, Y: 1}, {X: 2, Y: 2}}, "")
		b.ExtendPath("host", "p1", []Vec{{X: 1, Y: 1}, {X: 2, Y: 2}}, "")
		paths := b.Paths()
		require.Len(t, paths, 1)
		assert.Equal(t, "p1", paths[0].ID)
	})

	t.Run("batch for another id leaves the open stroke alone", func(t *testing.T) {
		b := NewBoard("A")
		id := b.BeginPath("host", "live", Vec{X: 1, Y: 1}, "")
		assert.Equal(t, "live", id)
		b.ExtendPath("host", "old", []Vec{{X: 9, Y: 9}}, "")
		b.ExtendPath("host", "live", []Vec{{X: 2, Y: 2}}, "")

		open, ok := b.OpenPath("host")
		require.True(t, ok)
		assert.Equal(t, []Vec{{X: 1, Y: 1}, {X: 2, Y: 2}}, open.Points)
		paths := b.Paths()
		require.Len(t, paths, 1)
		assert.Equal(t, "old", paths[0].ID)

		b.EndPath("host")
		b.ExtendPath("host", "live", []Vec{{X: 3, Y: 3}}, "")
		assert.Len(t, b.Paths(), 2)
	})
}
