package protocol

import (
	"GoBoardOverlay/internal/presence"
	"GoBoardOverlay/internal/state"
)

// ReplayCommands rebuilds owner's share of the board as a command sequence a
// late joiner can apply from scratch: label, grid, marker style, stones,
// board-stones, paths and marks. Paths carry their id and marks are
// deduplicated, so a replica that already holds the data is left unchanged.
func ReplayCommands(board *state.Board, owner string, meta presence.Meta) []Command {
	snap := board.Snapshot()
	var out []Command

	if meta.Label != "" {
		out = append(out, &SetLabel{Label: meta.Label, Color: meta.Color, HostTag: meta.HostTag})
	}
	if len(snap.Corners) == 4 {
		out = append(out, &SetGrid{Points: snap.Corners})
	}
	out = append(out, &StoneMarkerStyle{Style: snap.MarkerStyle})

	if o, ok := snap.Owner(owner); ok {
		for _, s := range o.Stones {
			out = append(out, &PlaceStone{X: s.X, Y: s.Y, Color: s.Color, MarkerColor: s.MarkerColor})
		}
		for _, s := range o.BoardStones {
			out = append(out, &PlaceStone{X: s.X, Y: s.Y, Color: state.BoardColor})
		}
		out = append(out, &SwitchColor{Color: o.NextColor})
	}
	for _, p := range snap.Paths {
		if p.OwnerID == owner && len(p.Points) > 0 {
			out = append(out, &DrawBatch{ID: p.ID, Points: p.Points, Color: p.Color})
		}
	}
	for _, m := range snap.Marks {
		if m.OwnerID == owner {
			out = append(out, &AddMark{Type: m.Type, X: m.X, Y: m.Y, Text: m.Text, Color: m.Color})
		}
	}
	return out
}
