package protocol

import (
	"log"
	"sync"
	"time"

	"GoBoardOverlay/internal/state"
)

// Publisher stamps and sends local commands. It is fire-and-forget: a failed
// send is logged and the local state stays as it is.
type Publisher struct {
	codec Codec
	owner string
	role  Role
	now   func() time.Time

	mu        sync.RWMutex
	transport Transport
}

// NewPublisher returns a publisher for owner. A nil transport is allowed
// until one is attached; commands are dropped meanwhile.
func NewPublisher(t Transport, codec Codec, owner string, role Role) *Publisher {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Publisher{transport: t, codec: codec, owner: owner, role: role, now: time.Now}
}

// Attach swaps the transport, e.g. once the relay connection exists.
func (p *Publisher) Attach(t Transport) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transport = t
}

// Publish stamps cmd and hands it to the transport. Viewers never publish.
func (p *Publisher) Publish(cmd Command) bool {
	if p.role == RoleViewer {
		return false
	}
	Stamp(cmd, p.owner, p.role, state.Timestamp(p.now()))

	p.mu.RLock()
	t := p.transport
	p.mu.RUnlock()
	if t == nil {
		return false
	}

	data, err := p.codec.EncodeCommand(cmd)
	if err != nil {
		log.Printf("[PUBLISH] Encoding %s failed: %v", cmd.Action(), err)
		return false
	}
	if err := t.Send(FrameCommand, data); err != nil {
		log.Printf("[PUBLISH] Sending %s failed: %v", cmd.Action(), err)
		return false
	}
	return true
}

// Owner returns the owner id stamped on published commands.
func (p *Publisher) Owner() string { return p.owner }
