package presence_test

import (
	"context"
	"testing"
	"time"

	"github.com/spork-collab/spork/presence"
)

type captureSender struct {
	payloads [][]byte
	err      error
}

func (c *captureSender) Broadcast(_ context.Context, payload []byte) error {
	if c.err != nil {
		return c.err
	}
	c.payloads = append(c.payloads, payload)
	return nil
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	msg := presence.Message{
		Type:       "cursor",
		PeerID:     "ai-bot-1700000000",
		Name:       "GPT-4o",
		CursorType: presence.CursorAI,
		Position:   42,
		Color:      presence.ColorAI,
		Timestamp:  1700000000123,
	}

	payload, err := presence.Encode(msg)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := presence.Decode(payload)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got != msg {
		t.Errorf("round trip = %+v, want %+v", got, msg)
	}
}

func TestCursorKind_Color(t *testing.T) {
	tests := []struct {
		kind presence.CursorKind
		want string
	}{
		{presence.CursorAI, "#9333EA"},
		{presence.CursorHuman, "#F59E0B"},
	}
	for _, tt := range tests {
		if got := tt.kind.Color(); got != tt.want {
			t.Errorf("Color(%q) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestBroadcaster_Announce(t *testing.T) {
	sender := &captureSender{}
	fixed := time.UnixMilli(1700000000123)
	b := presence.NewBroadcaster(sender, "peer-1", "Bot", presence.WithClock(func() time.Time { return fixed }))

	if err := b.Announce(context.Background(), 7, presence.CursorAI); err != nil {
		t.Fatalf("Announce failed: %v", err)
	}
	if len(sender.payloads) != 1 {
		t.Fatalf("got %d payloads, want 1", len(sender.payloads))
	}

	msg, err := presence.Decode(sender.payloads[0])
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	want := presence.Message{
		Type:       "cursor",
		PeerID:     "peer-1",
		Name:       "Bot",
		CursorType: presence.CursorAI,
		Position:   7,
		Color:      presence.ColorAI,
		Timestamp:  1700000000123,
	}
	if msg != want {
		t.Errorf("announced %+v, want %+v", msg, want)
	}
}

func TestBroadcaster_HumanColor(t *testing.T) {
	sender := &captureSender{}
	b := presence.NewBroadcaster(sender, "peer-2", "Alice")

	if err := b.Announce(context.Background(), 0, presence.CursorHuman); err != nil {
		t.Fatalf("Announce failed: %v", err)
	}

	msg, err := presence.Decode(sender.payloads[0])
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if msg.Color != presence.ColorHuman {
		t.Errorf("color = %q, want %q", msg.Color, presence.ColorHuman)
	}
	if msg.CursorType != presence.CursorHuman {
		t.Errorf("cursorType = %q, want %q", msg.CursorType, presence.CursorHuman)
	}
}
