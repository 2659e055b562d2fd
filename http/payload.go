package http

import (
	"io"
)

// Payload is a message body. It is exactly one of: nil, Bytes, *Body, *ChunkedBody,
// *BodyIter or *ChunkedBodyIter. Nothing outside the package can implement it.
type Payload interface {
	payload()
}

// Bytes is an in-memory body.
type Bytes []byte

func (Bytes) payload() {}

// State of a body. Bodies only move forward: Ready -> Started -> Consumed or Error.
type State uint8

const (
	Ready State = iota
	Started
	Consumed
	Error
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Started:
		return "started"
	case Consumed:
		return "consumed"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// StateOf returns the state of a body. Absent and in-memory bodies are always consumed.
func StateOf(p Payload) State {
	switch b := p.(type) {
	case *Body:
		return b.State()
	case *ChunkedBody:
		return b.State()
	case *BodyIter:
		return b.State()
	case *ChunkedBodyIter:
		return b.State()
	default:
		return Consumed
	}
}

// Reader is a source of message bodies.
type Reader interface {
	// ReadInto fills dst entirely or fails.
	ReadInto(dst []byte) error
	// ReadLine returns the next CRLF-terminated line without the terminator. The line
	// including the terminator must fit into maxSize.
	ReadLine(maxSize int) ([]byte, error)
}

// abandon closes the source if it's closable. Called whenever a body fails, because
// message boundaries of the stream are lost from this moment.
func abandon(src Reader) {
	if closer, ok := src.(io.Closer); ok {
		_ = closer.Close()
	}
}
