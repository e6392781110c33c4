package protocol

import (
	"errors"
	"log"
	"slices"
	"sync"

	"GoBoardOverlay/internal/presence"
	"GoBoardOverlay/internal/state"
)

// Reconciler applies commands from remote peers to the local board and
// cursor tracker. It never re-broadcasts what it applies.
type Reconciler struct {
	board   *state.Board
	cursors *presence.Tracker
	role    Role
	local   string

	mu      sync.Mutex
	selfID  string
	senders map[string][]string
	tools   map[string]string
}

// NewReconciler builds a reconciler for the local owner. role is the local
// participant's role; viewers always keep the grid dots hidden.
func NewReconciler(board *state.Board, cursors *presence.Tracker, role Role) *Reconciler {
	return &Reconciler{
		board:   board,
		cursors: cursors,
		role:    role,
		local:   board.LocalOwner(),
		senders: make(map[string][]string),
		tools:   make(map[string]string),
	}
}

// SetSelfID records this peer's transport identity so reflected frames are
// recognised.
func (r *Reconciler) SetSelfID(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selfID = id
}

// HandlePayload decodes and applies one command payload. Decode failures are
// logged and dropped.
func (r *Reconciler) HandlePayload(codec Codec, sender string, payload []byte) bool {
	cmd, err := codec.DecodeCommand(payload)
	if err != nil {
		if errors.Is(err, ErrUnknownAction) {
			log.Printf("[RECONCILE] Ignoring command from %s: %v", sender, err)
		} else {
			log.Printf("[RECONCILE] Dropping payload from %s: %v", sender, err)
		}
		return false
	}
	return r.Handle(sender, cmd)
}

// accept applies the echo and role filters and resolves the owner.
func (r *Reconciler) accept(sender string, h *Header) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h.OwnerID != "" && h.OwnerID == r.local {
		return "", false
	}
	if sender != "" && sender == r.selfID {
		return "", false
	}
	if h.Role != "" && h.Role != RoleHost {
		return "", false
	}
	owner := h.OwnerID
	if owner == "" {
		owner = sender
	}
	if owner == "" {
		log.Printf("[RECONCILE] Dropping %s without owner or sender", h.Name)
		return "", false
	}
	if sender != "" && !slices.Contains(r.senders[sender], owner) {
		r.senders[sender] = append(r.senders[sender], owner)
	}
	return owner, true
}

// Handle applies cmd sent by sender. It reports whether the command passed
// the filters and was applied.
func (r *Reconciler) Handle(sender string, cmd Command) bool {
	owner, ok := r.accept(sender, cmd.Head())
	if !ok {
		return false
	}

	switch c := cmd.(type) {
	case *SetGrid:
		if err := r.board.SetGrid(c.Points); err != nil {
			log.Printf("[RECONCILE] %v", err)
			return false
		}
		if r.role == RoleViewer {
			r.board.SetGridVisible(false)
		}
	case *ResetGrid:
		r.board.ResetGrid()
	case *ToggleGrid:
		r.board.SetGridVisible(c.Visible && r.role != RoleViewer)
	case *PlaceStone:
		r.board.PlaceStone(c.X, c.Y, c.Color, owner, state.PlaceOptions{MarkerColor: c.MarkerColor})
	case *RemoveStone:
		r.board.RemoveStone(c.X, c.Y, owner)
	case *AddMark:
		r.board.AddMark(state.Mark{Type: c.Type, X: c.X, Y: c.Y, Text: c.Text, OwnerID: owner, Color: r.ownerColor(owner, c.Color)})
	case *RemoveMark:
		r.board.RemoveMark(state.Mark{Type: c.Type, X: c.X, Y: c.Y, Text: c.Text, OwnerID: owner})
	case *DrawStart:
		r.board.BeginPath(owner, c.ID, state.Vec{X: c.X, Y: c.Y}, r.ownerColor(owner, c.Color))
	case *DrawBatch:
		color := c.Color
		if color == "" {
			if open, ok := r.board.OpenPath(owner); ok {
				color = open.Color
			}
		}
		r.board.ExtendPath(owner, c.ID, c.Points, r.ownerColor(owner, color))
	case *DrawEnd:
		r.board.EndPath(owner)
	case *SwitchColor:
		r.board.SetOwnerColor(owner, c.Color)
	case *UndoStone:
		r.board.Undo(owner)
	case *RedoStone:
		r.board.Redo(owner)
	case *CursorMove:
		r.cursors.Update(owner, c.X, c.Y, presence.Meta{Label: c.Label, Color: c.Color, HostTag: c.HostTag})
	case *SetLabel:
		r.cursors.SetLabel(owner, presence.Meta{Label: c.Label, Color: c.Color, HostTag: c.HostTag})
	case *ClearOwner:
		r.board.ClearOwner(owner)
	case *ClearAll:
		r.board.ClearAll()
	case *ClearDrawing:
		r.board.ClearDrawing()
	case *StoneMarkerStyle:
		r.board.SetMarkerStyle(c.Style)
	case *CoordinateColor:
		r.board.SetCoordinateColor(c.Color)
	case *SetTool:
		r.mu.Lock()
		r.tools[owner] = c.Tool
		r.mu.Unlock()
	default:
		log.Printf("[RECONCILE] Unhandled action %s", cmd.Action())
		return false
	}
	return true
}

// ownerColor prefers an explicit color, then whatever the owner announced.
func (r *Reconciler) ownerColor(owner, explicit string) string {
	if explicit != "" {
		return explicit
	}
	r.cursors.SetLabel(owner, presence.Meta{})
	m, _ := r.cursors.Meta(owner)
	return m.Color
}

// PeerLeft drops the cursors of every owner the departed peer spoke for.
// Their annotations stay on the board.
func (r *Reconciler) PeerLeft(sender string) {
	r.mu.Lock()
	owners := r.senders[sender]
	delete(r.senders, sender)
	r.mu.Unlock()

	r.cursors.Remove(sender)
	for _, owner := range owners {
		r.cursors.Remove(owner)
	}
	if len(owners) > 0 {
		log.Printf("[RECONCILE] Peer %s left, removed %d cursor(s)", sender, len(owners))
	}
}

// RemoteTool returns the last tool an owner announced.
func (r *Reconciler) RemoteTool(owner string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tools[owner]
}
