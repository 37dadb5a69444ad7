package presence

import (
	"context"
	"fmt"
	"time"
)

// Sender is the external broadcast primitive. doc.Handle satisfies it.
type Sender interface {
	Broadcast(ctx context.Context, payload []byte) error
}

// Broadcaster builds and sends cursor messages for one local actor.
type Broadcaster struct {
	sender Sender
	peerID string
	name   string
	now    func() time.Time
}

// Option configures a Broadcaster.
type Option func(*Broadcaster)

// WithClock overrides the timestamp source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(b *Broadcaster) { b.now = now }
}

// NewBroadcaster creates a Broadcaster identified as peerID/name.
func NewBroadcaster(sender Sender, peerID, name string, opts ...Option) *Broadcaster {
	b := &Broadcaster{
		sender: sender,
		peerID: peerID,
		name:   name,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Announce broadcasts the actor's cursor at the given position. Fire and
// forget: the only errors surfaced are local encode or send failures, and
// callers are expected to log rather than abort an edit on them — a stale
// cursor hint is harmless, the presence and document channels are
// independent.
func (b *Broadcaster) Announce(ctx context.Context, position int, kind CursorKind) error {
	payload, err := Encode(Message{
		Type:       "cursor",
		PeerID:     b.peerID,
		Name:       b.name,
		CursorType: kind,
		Position:   position,
		Color:      kind.Color(),
		Timestamp:  b.now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	if err := b.sender.Broadcast(ctx, payload); err != nil {
		return fmt.Errorf("broadcast cursor: %w", err)
	}
	return nil
}
