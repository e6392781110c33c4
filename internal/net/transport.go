package net

import (
	"log"
	"net/http"
	"slices"
	"sync"
	"time"

	"GoBoardOverlay/internal/protocol"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	sendQueue      = 256

	// DefaultRoom is used when a peer connects without naming a room.
	DefaultRoom = "default"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// peer is one websocket connection on the relay.
type peer struct {
	id    string
	label string
	room  string
	conn  *websocket.Conn
	codec protocol.Codec
	send  chan []byte
}

// enqueue never blocks; a full queue drops the frame.
func (p *peer) enqueue(data []byte) {
	select {
	case p.send <- data:
	default:
		log.Printf("[RELAY] Queue full for %s, dropping frame", p.id)
	}
}

func (p *peer) encode(f protocol.Frame) ([]byte, bool) {
	data, err := p.codec.EncodeFrame(f)
	if err != nil {
		log.Printf("[RELAY] Encoding %s for %s failed: %v", f.Type, p.id, err)
		return nil, false
	}
	return data, true
}

// Relay fans frames out to every other peer in the same room. It keeps no
// board state; late joiners are brought up to date by the commentators.
type Relay struct {
	// Echo also returns a peer's own commands to it. Peers filter them out
	// by owner id, so this only exercises that path.
	Echo bool

	mu    sync.Mutex
	rooms map[string]map[string]*peer
}

// NewRelay returns an empty relay.
func NewRelay() *Relay {
	return &Relay{rooms: make(map[string]map[string]*peer)}
}

// ServeHTTP upgrades /ws?room=<id>&label=<l>&codec=<json|msgpack>.
func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	codec, err := protocol.CodecByName(q.Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("[RELAY] WebSocket upgrade failed: %v", err)
		return
	}

	room := q.Get("room")
	if room == "" {
		room = DefaultRoom
	}
	p := &peer{
		id:    uuid.NewString(),
		label: q.Get("label"),
		room:  room,
		conn:  conn,
		codec: codec,
		send:  make(chan []byte, sendQueue),
	}

	r.join(p)
	go r.writePump(p)
	r.readPump(p)
}

func (r *Relay) join(p *peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[p.room]
	if !ok {
		members = make(map[string]*peer)
		r.rooms[p.room] = members
	}
	existing := make([]string, 0, len(members))
	for id := range members {
		existing = append(existing, id)
	}
	slices.Sort(existing)
	members[p.id] = p

	if data, ok := p.encode(protocol.Frame{Type: protocol.FrameWelcome, Sender: p.id, Peers: existing}); ok {
		p.enqueue(data)
	}
	r.broadcastLocked(p, protocol.Frame{Type: protocol.FramePeerJoined, Sender: p.id}, false)
	log.Printf("[RELAY] %s (%s) joined room %s, %d peer(s)", p.id, p.label, p.room, len(members))
}

func (r *Relay) leave(p *peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.rooms[p.room]
	if _, ok := members[p.id]; !ok {
		return
	}
	delete(members, p.id)
	close(p.send)
	if len(members) == 0 {
		delete(r.rooms, p.room)
		log.Printf("[RELAY] Room %s is empty, removed", p.room)
		return
	}
	r.broadcastLocked(p, protocol.Frame{Type: protocol.FramePeerLeft, Sender: p.id}, false)
	log.Printf("[RELAY] %s left room %s", p.id, p.room)
}

// broadcastLocked sends f to the room of from. Command payloads are
// re-encoded for peers using a different codec.
func (r *Relay) broadcastLocked(from *peer, f protocol.Frame, includeSelf bool) {
	for id, to := range r.rooms[from.room] {
		if id == from.id && !includeSelf {
			continue
		}
		out := f
		if f.Type == protocol.FrameCommand && to.codec.Name() != from.codec.Name() {
			payload, err := transcode(f.Payload, from.codec, to.codec)
			if err != nil {
				log.Printf("[RELAY] Cannot transcode for %s: %v", to.id, err)
				continue
			}
			out.Payload = payload
		}
		if data, ok := to.encode(out); ok {
			to.enqueue(data)
		}
	}
}

func transcode(payload []byte, from, to protocol.Codec) ([]byte, error) {
	cmd, err := from.DecodeCommand(payload)
	if err != nil {
		return nil, err
	}
	return to.EncodeCommand(cmd)
}

func (r *Relay) readPump(p *peer) {
	defer func() {
		r.leave(p)
		p.conn.Close()
	}()

	p.conn.SetReadLimit(maxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[RELAY] Read from %s failed: %v", p.id, err)
			}
			return
		}
		f, err := p.codec.DecodeFrame(data)
		if err != nil {
			log.Printf("[RELAY] Bad frame from %s: %v", p.id, err)
			continue
		}

		switch f.Type {
		case protocol.FrameCommand:
			f.Sender = p.id
			r.mu.Lock()
			r.broadcastLocked(p, f, r.Echo)
			r.mu.Unlock()
		case protocol.FrameCensus:
			r.mu.Lock()
			ids := r.peerIDsLocked(p.room)
			if reply, ok := p.encode(protocol.Frame{Type: protocol.FramePeers, Peers: ids}); ok {
				p.enqueue(reply)
			}
			r.mu.Unlock()
		case protocol.FrameBye:
			return
		default:
			log.Printf("[RELAY] Ignoring %q frame from %s", f.Type, p.id)
		}
	}
}

func (r *Relay) writePump(p *peer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	kind := websocket.TextMessage
	if p.codec.Binary() {
		kind = websocket.BinaryMessage
	}
	for {
		select {
		case data, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(kind, data); err != nil {
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (r *Relay) peerIDsLocked(room string) []string {
	ids := make([]string, 0, len(r.rooms[room]))
	for id := range r.rooms[room] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Peers lists the peer ids currently in room.
func (r *Relay) Peers(room string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peerIDsLocked(room)
}

// Rooms lists the rooms that currently have peers.
func (r *Relay) Rooms() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// ListenAndServe runs the relay on addr with the websocket endpoint at /ws.
func (r *Relay) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", r)
	log.Printf("[RELAY] Listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
