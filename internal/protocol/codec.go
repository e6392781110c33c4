package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrMalformed wraps any payload that could not be decoded.
	ErrMalformed = errors.New("protocol: malformed payload")
	// ErrUnknownAction is returned for a well-formed command with an action
	// this build does not know.
	ErrUnknownAction = errors.New("protocol: unknown action")
	// ErrUnknownCodec is returned by CodecByName.
	ErrUnknownCodec = errors.New("protocol: unknown codec")
)

// Codec turns commands and transport frames into bytes and back.
type Codec interface {
	Name() string
	EncodeCommand(Command) ([]byte, error)
	DecodeCommand([]byte) (Command, error)
	EncodeFrame(Frame) ([]byte, error)
	DecodeFrame([]byte) (Frame, error)
	// Binary reports whether encoded data must travel as a binary message.
	Binary() bool
}

// CodecByName resolves the names accepted in config and on the command line.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}

type actionProbe struct {
	Action Action `json:"action"`
}

func decodeWith(data []byte, unmarshal func([]byte, any) error) (Command, error) {
	var probe actionProbe
	if err := unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if probe.Action == "" {
		return nil, fmt.Errorf("%w: missing action", ErrMalformed)
	}
	cmd, ok := New(probe.Action)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, probe.Action)
	}
	if err := unmarshal(data, cmd); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, probe.Action, err)
	}
	cmd.Head().Name = cmd.Action()
	return cmd, nil
}

// JSONCodec is the default text codec.
type JSONCodec struct{}

type jsonFrame struct {
	Type    string          `json:"type"`
	Sender  string          `json:"sender,omitempty"`
	Peers   []string        `json:"peers,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (JSONCodec) Name() string { return "json" }
func (JSONCodec) Binary() bool { return false }

func (JSONCodec) EncodeCommand(cmd Command) ([]byte, error) {
	cmd.Head().Name = cmd.Action()
	return json.Marshal(cmd)
}

func (JSONCodec) DecodeCommand(data []byte) (Command, error) {
	return decodeWith(data, json.Unmarshal)
}

func (JSONCodec) EncodeFrame(f Frame) ([]byte, error) {
	return json.Marshal(jsonFrame{Type: f.Type, Sender: f.Sender, Peers: f.Peers, Payload: f.Payload})
}

func (JSONCodec) DecodeFrame(data []byte) (Frame, error) {
	var jf jsonFrame
	if err := json.Unmarshal(data, &jf); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if jf.Type == "" {
		return Frame{}, fmt.Errorf("%w: frame without type", ErrMalformed)
	}
	return Frame{Type: jf.Type, Sender: jf.Sender, Peers: jf.Peers, Payload: []byte(jf.Payload)}, nil
}

// MsgpackCodec is a compact binary codec. It reuses the json field names so
// both codecs describe the same wire shape.
type MsgpackCodec struct{}

type msgpackFrame struct {
	Type    string             `json:"type"`
	Sender  string             `json:"sender,omitempty"`
	Peers   []string           `json:"peers,omitempty"`
	Payload msgpack.RawMessage `json:"payload,omitempty"`
}

func (MsgpackCodec) Name() string { return "msgpack" }
func (MsgpackCodec) Binary() bool { return true }

func msgpackMarshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func msgpackUnmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

func (MsgpackCodec) EncodeCommand(cmd Command) ([]byte, error) {
	cmd.Head().Name = cmd.Action()
	return msgpackMarshal(cmd)
}

func (MsgpackCodec) DecodeCommand(data []byte) (Command, error) {
	return decodeWith(data, msgpackUnmarshal)
}

func (MsgpackCodec) EncodeFrame(f Frame) ([]byte, error) {
	return msgpackMarshal(msgpackFrame{Type: f.Type, Sender: f.Sender, Peers: f.Peers, Payload: f.Payload})
}

func (MsgpackCodec) DecodeFrame(data []byte) (Frame, error) {
	var mf msgpackFrame
	if err := msgpackUnmarshal(data, &mf); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if mf.Type == "" {
		return Frame{}, fmt.Errorf("%w: frame without type", ErrMalformed)
	}
	return Frame{Type: mf.Type, Sender: mf.Sender, Peers: mf.Peers, Payload: []byte(mf.Payload)}, nil
}
