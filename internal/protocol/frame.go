package protocol

// Frame types exchanged between a peer and the relay.
const (
	// FrameWelcome is sent by the relay to a new peer; Sender is its id and
	// Peers lists everyone already in the room.
	FrameWelcome = "welcome"
	// FrameCommand carries an encoded Command. The relay fills in Sender.
	FrameCommand = "command"
	// FramePeerJoined and FramePeerLeft name the peer in Sender.
	FramePeerJoined = "peer-joined"
	FramePeerLeft   = "peer-left"
	// FrameCensus asks the relay for the current room members, answered
	// with FramePeers.
	FrameCensus = "census"
	FramePeers  = "peers"
	// FrameBye is a best-effort goodbye before closing.
	FrameBye = "bye"
)

// Frame is the envelope every transport message travels in.
type Frame struct {
	Type    string
	Sender  string
	Peers   []string
	Payload []byte
}

// Transport sends frames to every other peer in the room. Implementations
// must not block and give no delivery guarantee.
type Transport interface {
	Send(frameType string, payload []byte) error
}

// EventHandler receives transport events. Calls arrive on the transport's
// read goroutine.
type EventHandler interface {
	Connected(selfID string)
	Disconnected(err error)
	PeerJoined(id string)
	PeerLeft(id string)
	Command(sender string, payload []byte)
}
