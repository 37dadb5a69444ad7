package doc

import (
	"context"
	"sync"
)

// broadcastChannel is a bounded, close-once delivery channel for ephemeral
// payloads. MemoryRepo hands one to each subscriber; a full channel drops
// the payload rather than blocking the sender, matching the fire-and-forget
// contract of the presence protocol.
//
// The mutex covers both the send in offer and close, so a broadcast racing
// a subscriber cancel can never send on a closed channel.
type broadcastChannel struct {
	mu     sync.Mutex
	ch     chan []byte
	closed bool
}

func newBroadcastChannel(buffer int) *broadcastChannel {
	return &broadcastChannel{ch: make(chan []byte, buffer)}
}

// offer delivers the payload if the subscriber has buffer room. Returns
// false when the payload was dropped or the channel is closed.
func (bc *broadcastChannel) offer(payload []byte) bool {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	if bc.closed {
		return false
	}
	select {
	case bc.ch <- payload:
		return true
	default:
		return false
	}
}

// receive blocks until a payload arrives, the context ends, or the channel
// closes. A closed, drained channel yields (nil, false).
func (bc *broadcastChannel) receive(ctx context.Context) ([]byte, bool) {
	select {
	case payload, ok := <-bc.ch:
		return payload, ok
	case <-ctx.Done():
		return nil, false
	}
}

func (bc *broadcastChannel) close() {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	if bc.closed {
		return
	}
	bc.closed = true
	close(bc.ch)
}
