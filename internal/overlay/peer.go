// Package overlay wires one participant together: the board, the cursor
// tracker, the reconciler for inbound commands, the publisher and input
// controller for local ones, and the relay client carrying both.
package overlay

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"GoBoardOverlay/internal/export"
	"GoBoardOverlay/internal/geometry"
	"GoBoardOverlay/internal/input"
	"GoBoardOverlay/internal/net"
	"GoBoardOverlay/internal/presence"
	"GoBoardOverlay/internal/protocol"
	"GoBoardOverlay/internal/render"
	"GoBoardOverlay/internal/session"
	"GoBoardOverlay/internal/state"
)

// Peer is one participant. It implements protocol.EventHandler for its
// relay client.
type Peer struct {
	Session    session.Context
	Board      *state.Board
	Cursors    *presence.Tracker
	Reconciler *protocol.Reconciler
	Publisher  *protocol.Publisher
	Controller *input.Controller

	codec protocol.Codec

	mu         sync.Mutex
	client     *net.Client
	showCoords bool
	size       geometry.SizePreference
	onStatus   func(string)
}

// New builds a local-only peer from a resolved session. Connect attaches it
// to the relay.
func New(ctx session.Context) (*Peer, error) {
	codec, err := protocol.CodecByName(ctx.Codec)
	if err != nil {
		return nil, err
	}
	ctx.EnsureOwner()

	board := state.NewBoard(ctx.OwnerID)
	board.SetCoordinateColor(ctx.CoordinateColor)
	cursors := presence.NewTracker(nil)
	cursors.SetLabel(ctx.OwnerID, localMeta(ctx))

	p := &Peer{
		Session:    ctx,
		Board:      board,
		Cursors:    cursors,
		Reconciler: protocol.NewReconciler(board, cursors, ctx.Role),
		Publisher:  protocol.NewPublisher(nil, codec, ctx.OwnerID, ctx.Role),
		codec:      codec,
		showCoords: true,
		size:       ctx.SizePreference(),
	}
	p.Controller = input.NewController(board, p.Publisher, input.Options{
		Role:    ctx.Role,
		Owner:   ctx.OwnerID,
		Color:   ctx.UserColor,
		Label:   ctx.Label,
		HostTag: ctx.HostTag,
	})

	if len(ctx.InitialGrid) == 4 {
		if err := board.SetGrid(ctx.InitialGrid); err != nil {
			log.Printf("[PEER] Ignoring initial grid: %v", err)
		}
	}
	if ctx.IsViewer() {
		board.SetGridVisible(false)
	}
	return p, nil
}

func localMeta(ctx session.Context) presence.Meta {
	return presence.Meta{Label: ctx.Label, Color: ctx.UserColor, HostTag: ctx.HostTag}
}

// OnStatus registers a callback for connection status lines.
func (p *Peer) OnStatus(f func(string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onStatus = f
}

func (p *Peer) status(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("[PEER] %s", msg)
	p.mu.Lock()
	f := p.onStatus
	p.mu.Unlock()
	if f != nil {
		f(msg)
	}
}

// Connect joins the configured relay room. Without a relay the peer stays
// local-only; a failed dial does the same and reports the error.
func (p *Peer) Connect(ctx context.Context) error {
	if p.Session.RelayURL == "" {
		p.status("No relay configured, working offline")
		return nil
	}
	p.mu.Lock()
	if p.client == nil {
		p.client = net.NewClient(p.Session.RelayURL, p.Session.RoomID, p.Session.Label, p.codec, p)
	}
	c := p.client
	p.mu.Unlock()

	if err := c.Connect(ctx); err != nil {
		p.status("Connection failed, working offline: %v", err)
		return err
	}
	p.Publisher.Attach(c)
	return nil
}

// Close leaves the room and stops the cursor sampler.
func (p *Peer) Close() {
	p.Controller.Close()
	p.mu.Lock()
	c := p.client
	p.mu.Unlock()
	if c != nil {
		c.Close()
	}
}

// Connected implements protocol.EventHandler.
func (p *Peer) Connected(selfID string) {
	p.Reconciler.SetSelfID(selfID)
	p.status("Connected to room %s as %s", p.Session.RoomID, selfID)
	p.Controller.Announce()
}

// Disconnected implements protocol.EventHandler.
func (p *Peer) Disconnected(err error) {
	p.Publisher.Attach(nil)
	if err != nil {
		p.status("Disconnected from relay: %v", err)
		return
	}
	p.status("Disconnected from relay")
}

// PeerJoined replays this participant's annotations so the newcomer starts
// from the current board.
func (p *Peer) PeerJoined(id string) {
	if p.Session.IsViewer() {
		return
	}
	cmds := protocol.ReplayCommands(p.Board, p.Session.OwnerID, localMeta(p.Session))
	sent := 0
	for _, cmd := range cmds {
		if p.Publisher.Publish(cmd) {
			sent++
		}
	}
	log.Printf("[PEER] %s joined, replayed %d/%d command(s)", id, sent, len(cmds))
}

// PeerLeft implements protocol.EventHandler.
func (p *Peer) PeerLeft(id string) {
	p.Reconciler.PeerLeft(id)
}

// Command implements protocol.EventHandler.
func (p *Peer) Command(sender string, payload []byte) {
	p.Reconciler.HandlePayload(p.codec, sender, payload)
}

// Tick advances the grid flash and the cursor animation.
func (p *Peer) Tick(now time.Time) {
	p.Board.Tick(now)
	p.Cursors.Tick(now)
}

// SetShowCoordinates toggles the local coordinate labels. Viewers always
// see them.
func (p *Peer) SetShowCoordinates(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.showCoords = v
}

// ShowCoordinates reports the local coordinate label setting.
func (p *Peer) ShowCoordinates() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.showCoords
}

// StoneSize is the current stone size preference.
func (p *Peer) StoneSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size.Value
}

// SetStoneSize changes the stone size preference for this display only.
func (p *Peer) SetStoneSize(v int) {
	if v <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.size = geometry.SizePreference{Value: v, Changed: true}
}

// Scene builds the current frame.
func (p *Peer) Scene() render.Scene {
	p.mu.Lock()
	size, coords := p.size, p.showCoords
	p.mu.Unlock()

	opts := render.Options{
		Viewer:          p.Session.IsViewer(),
		ShowCoordinates: coords,
		StoneSize:       size,
		LocalOwner:      p.Session.OwnerID,
		PenColor:        p.Controller.Color(),
	}
	if pos, ok := p.Controller.Pointer(); ok {
		if c := p.Controller.HoverColor(); c != "" {
			opts.Hover = &render.Hover{X: pos.X, Y: pos.Y, Color: c}
		}
	}
	return render.Build(p.Board.Snapshot(), p.Cursors.Cursors(), opts)
}

// ExportPDF writes the current frame without the hover preview.
func (p *Peer) ExportPDF(path string) error {
	sc := p.Scene()
	sc.Hover = nil
	return export.PDF(path, sc)
}

// ShareLink returns a link other participants can open to join this room.
func (p *Peer) ShareLink(relayHost string, role protocol.Role) string {
	return p.Session.ShareLink(relayHost, role, p.Board.Corners())
}

// SelfID is the relay-assigned id, empty while offline.
func (p *Peer) SelfID() string {
	p.mu.Lock()
	c := p.client
	p.mu.Unlock()
	if c == nil {
		return ""
	}
	return c.SelfID()
}

// Peers lists the other participants currently in the room.
func (p *Peer) Peers() []string {
	p.mu.Lock()
	c := p.client
	p.mu.Unlock()
	if c == nil {
		return nil
	}
	return c.Peers()
}
