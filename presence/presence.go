// Package presence implements the ephemeral cursor channel. Presence
// messages are transient collaboration hints — a peer's cursor position,
// identity, and color — broadcast alongside edits but causally independent
// of document state. They are never persisted, never acknowledged, and
// never retried.
package presence

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CursorKind distinguishes the acting entity behind a cursor.
type CursorKind string

const (
	CursorAI    CursorKind = "ai"
	CursorHuman CursorKind = "human"
)

// Fixed cursor colors per kind. Observing UIs rely on these to tell agent
// cursors from human ones at a glance.
const (
	ColorAI    = "#9333EA"
	ColorHuman = "#F59E0B"
)

// Color returns the fixed display color for the kind.
func (k CursorKind) Color() string {
	if k == CursorHuman {
		return ColorHuman
	}
	return ColorAI
}

// Message is one cursor broadcast. The CBOR field names are the wire
// contract shared with the browser clients; changing them breaks every
// observer.
type Message struct {
	Type       string     `cbor:"type"`
	PeerID     string     `cbor:"peerId"`
	Name       string     `cbor:"name"`
	CursorType CursorKind `cbor:"cursorType"`
	Position   int        `cbor:"position"`
	Color      string     `cbor:"color"`
	Timestamp  int64      `cbor:"timestamp"` // milliseconds since epoch
}

// Encode serializes the message as a CBOR map.
func Encode(msg Message) ([]byte, error) {
	payload, err := cbor.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode presence message: %w", err)
	}
	return payload, nil
}

// Decode parses a CBOR presence payload. Payloads whose type field is not
// "cursor" are returned as-is; callers decide whether to ignore them.
func Decode(payload []byte) (Message, error) {
	var msg Message
	if err := cbor.Unmarshal(payload, &msg); err != nil {
		return Message{}, fmt.Errorf("decode presence message: %w", err)
	}
	return msg, nil
}
