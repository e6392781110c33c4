package net

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"slices"
	"sync"
	"time"

	"GoBoardOverlay/internal/protocol"

	"github.com/gorilla/websocket"
)

// CensusInterval is how often a client asks the relay who is still in the room.
const CensusInterval = 5 * time.Second

var (
	ErrNotConnected = errors.New("net: not connected")
	ErrQueueFull    = errors.New("net: send queue full")
)

// Client is one peer's connection to the relay. It implements
// protocol.Transport. Delivery is fire-and-forget and there is no reconnect.
type Client struct {
	relayURL string
	room     string
	label    string
	codec    protocol.Codec
	handler  protocol.EventHandler

	// Census overrides CensusInterval; tests shorten it.
	Census time.Duration

	mu      sync.Mutex
	conn    *websocket.Conn
	send    chan []byte
	quit    chan struct{}
	done    chan struct{}
	selfID  string
	peers   map[string]bool
	closing bool
}

// NewClient prepares a client for relayURL (ws://host:port/ws). Nothing is
// dialled until Connect.
func NewClient(relayURL, room, label string, codec protocol.Codec, handler protocol.EventHandler) *Client {
	if codec == nil {
		codec = protocol.JSONCodec{}
	}
	return &Client{
		relayURL: relayURL,
		room:     room,
		label:    label,
		codec:    codec,
		handler:  handler,
		Census:   CensusInterval,
	}
}

func (c *Client) dialURL() (string, error) {
	u, err := url.Parse(c.relayURL)
	if err != nil {
		return "", fmt.Errorf("bad relay url %q: %w", c.relayURL, err)
	}
	q := u.Query()
	q.Set("room", c.room)
	if c.label != "" {
		q.Set("label", c.label)
	}
	q.Set("codec", c.codec.Name())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Connect dials the relay. Calling it while connected is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}

	target, err := c.dialURL()
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	log.Printf("[CLIENT] Connected to %s", target)

	c.conn = conn
	c.send = make(chan []byte, sendQueue)
	c.quit = make(chan struct{})
	c.done = make(chan struct{})
	c.peers = make(map[string]bool)
	c.selfID = ""
	c.closing = false

	go c.writeLoop(conn, c.send, c.quit, c.done)
	go c.readLoop(conn)
	go c.censusLoop(c.quit)
	return nil
}

// Connected reports whether the client holds a live connection.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// SelfID is the id the relay assigned, empty until the welcome arrives.
func (c *Client) SelfID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selfID
}

// Peers lists the other peers this client believes are in the room.
func (c *Client) Peers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.peers))
	for id := range c.peers {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Send queues a frame without blocking.
func (c *Client) Send(frameType string, payload []byte) error {
	data, err := c.codec.EncodeFrame(protocol.Frame{Type: frameType, Payload: payload})
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close sends a best-effort bye and shuts the connection down.
func (c *Client) Close() error {
	if err := c.Send(protocol.FrameBye, nil); errors.Is(err, ErrNotConnected) {
		return nil
	}
	c.mu.Lock()
	c.closing = true
	c.stopLocked()
	done := c.done
	c.mu.Unlock()

	select {
	case <-done:
	case <-time.After(time.Second):
	}
	return nil
}

func (c *Client) stopLocked() {
	select {
	case <-c.quit:
	default:
		close(c.quit)
	}
}

func (c *Client) writeLoop(conn *websocket.Conn, send chan []byte, quit, done chan struct{}) {
	defer close(done)
	kind := websocket.TextMessage
	if c.codec.Binary() {
		kind = websocket.BinaryMessage
	}
	write := func(data []byte) error {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(kind, data)
	}

	for {
		select {
		case data := <-send:
			if err := write(data); err != nil {
				log.Printf("[CLIENT] Write failed: %v", err)
				conn.Close()
				return
			}
		case <-quit:
			for {
				select {
				case data := <-send:
					if write(data) != nil {
						conn.Close()
						return
					}
				default:
					conn.SetWriteDeadline(time.Now().Add(writeWait))
					conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					conn.Close()
					return
				}
			}
		}
	}
}

func (c *Client) censusLoop(quit chan struct{}) {
	ticker := time.NewTicker(c.Census)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.Send(protocol.FrameCensus, nil); errors.Is(err, ErrNotConnected) {
				return
			}
		case <-quit:
			return
		}
	}
}

func (c *Client) readLoop(conn *websocket.Conn) {
	var readErr error
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
			c.stopLocked()
		}
		if c.closing {
			readErr = nil
		}
		c.mu.Unlock()
		if c.handler != nil {
			c.handler.Disconnected(readErr)
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				readErr = nil
			} else {
				readErr = err
			}
			return
		}
		f, err := c.codec.DecodeFrame(data)
		if err != nil {
			log.Printf("[CLIENT] Bad frame: %v", err)
			continue
		}
		c.dispatch(f)
	}
}

func (c *Client) dispatch(f protocol.Frame) {
	switch f.Type {
	case protocol.FrameWelcome:
		c.mu.Lock()
		c.selfID = f.Sender
		for _, id := range f.Peers {
			c.peers[id] = true
		}
		c.mu.Unlock()
		if c.handler != nil {
			c.handler.Connected(f.Sender)
		}
	case protocol.FramePeerJoined:
		if c.track(f.Sender, true) && c.handler != nil {
			c.handler.PeerJoined(f.Sender)
		}
	case protocol.FramePeerLeft:
		if c.track(f.Sender, false) && c.handler != nil {
			c.handler.PeerLeft(f.Sender)
		}
	case protocol.FramePeers:
		c.reconcilePeers(f.Peers)
	case protocol.FrameCommand:
		if c.handler != nil {
			c.handler.Command(f.Sender, f.Payload)
		}
	default:
		log.Printf("[CLIENT] Ignoring %q frame", f.Type)
	}
}

// track records a join or leave and reports whether it changed anything.
func (c *Client) track(id string, present bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == "" || id == c.selfID || c.peers[id] == present {
		return false
	}
	if present {
		c.peers[id] = true
	} else {
		delete(c.peers, id)
	}
	return true
}

// reconcilePeers diffs a census reply against the known peers so silent
// disconnects still surface as PeerLeft.
func (c *Client) reconcilePeers(current []string) {
	c.mu.Lock()
	seen := make(map[string]bool, len(current))
	var joined, left []string
	for _, id := range current {
		if id == c.selfID {
			continue
		}
		seen[id] = true
		if !c.peers[id] {
			c.peers[id] = true
			joined = append(joined, id)
		}
	}
	for id := range c.peers {
		if !seen[id] {
			delete(c.peers, id)
			left = append(left, id)
		}
	}
	c.mu.Unlock()

	slices.Sort(left)
	if c.handler == nil {
		return
	}
	for _, id := range left {
		c.handler.PeerLeft(id)
	}
	for _, id := range joined {
		c.handler.PeerJoined(id)
	}
}
