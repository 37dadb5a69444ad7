package doc

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spork-collab/spork/splice"
)

// Frame types on the sync wire. The server echoes splice and ephemeral
// frames to every other peer attached to the same document.
const (
	frameHello     = "hello"
	frameSnapshot  = "snapshot"
	frameSplice    = "splice"
	frameEphemeral = "ephemeral"
)

type wsFrame struct {
	Type   string `json:"type"`
	DocID  string `json:"docId,omitempty"`
	PeerID string `json:"peerId,omitempty"`
	Text   string `json:"text,omitempty"`
	Pos    int    `json:"pos,omitempty"`
	Del    int    `json:"del,omitempty"`
	Insert string `json:"insert,omitempty"`
	Data   string `json:"data,omitempty"` // base64 ephemeral payload
}

// WSRepo is a Repo backed by a websocket sync server. One connection per
// document: Find dials, announces the document with a hello frame, waits
// for the server's snapshot, then keeps a local mirror of the text updated
// from remote splice frames.
type WSRepo struct {
	url    string
	peerID string
	dialer *websocket.Dialer

	mu      sync.Mutex
	handles []*wsHandle
	stopped bool
}

// NewWSRepo creates a repo that syncs through the given websocket URL.
func NewWSRepo(url string) *WSRepo {
	return &WSRepo{
		url:    url,
		peerID: uuid.Must(uuid.NewV7()).String(),
		dialer: websocket.DefaultDialer,
	}
}

func (r *WSRepo) PeerID() string {
	return r.peerID
}

// Find dials the sync server and attaches to the document. The dial is
// retried with exponential backoff until it succeeds or ctx ends.
func (r *WSRepo) Find(ctx context.Context, id string) (Handle, error) {
	bare, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil, ErrStopped
	}
	r.mu.Unlock()

	var conn *websocket.Conn
	dial := func() error {
		c, _, err := r.dialer.DialContext(ctx, r.url, nil)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}
	policy := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	if err := backoff.Retry(dial, policy); err != nil {
		return nil, fmt.Errorf("dial %s: %w", r.url, err)
	}

	h := &wsHandle{
		conn:   conn,
		docID:  bare,
		peerID: r.peerID,
	}

	if err := h.write(wsFrame{Type: frameHello, DocID: bare, PeerID: r.peerID}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("hello: %w", err)
	}
	if err := h.awaitSnapshot(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	go h.readPump()

	r.mu.Lock()
	r.handles = append(r.handles, h)
	r.mu.Unlock()
	return h, nil
}

// Stop closes every attached document connection. Call-once.
func (r *WSRepo) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return ErrStopped
	}
	r.stopped = true
	handles := r.handles
	r.handles = nil
	r.mu.Unlock()

	for _, h := range handles {
		h.close()
	}
	return nil
}

type wsHandle struct {
	docID  string
	peerID string

	writeMu sync.Mutex
	conn    *websocket.Conn

	mu     sync.Mutex
	text   []rune
	closed bool
}

const snapshotTimeout = 10 * time.Second

// awaitSnapshot blocks until the server sends the initial document state.
func (h *wsHandle) awaitSnapshot(ctx context.Context) error {
	deadline := time.Now().Add(snapshotTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	h.conn.SetReadDeadline(deadline)
	defer h.conn.SetReadDeadline(time.Time{})

	for {
		var f wsFrame
		if err := h.conn.ReadJSON(&f); err != nil {
			return fmt.Errorf("awaiting snapshot: %w", err)
		}
		if f.Type == frameSnapshot {
			h.mu.Lock()
			h.text = []rune(f.Text)
			h.mu.Unlock()
			return nil
		}
	}
}

// readPump applies remote frames to the local mirror until the connection
// drops. Remote splices from concurrent editors land here; convergence is
// the server's job, the mirror just follows it.
func (h *wsHandle) readPump() {
	for {
		var f wsFrame
		if err := h.conn.ReadJSON(&f); err != nil {
			h.close()
			return
		}
		switch f.Type {
		case frameSnapshot:
			h.mu.Lock()
			h.text = []rune(f.Text)
			h.mu.Unlock()
		case frameSplice:
			if f.PeerID == h.peerID {
				continue
			}
			h.mu.Lock()
			op := splice.Op{Pos: f.Pos, Del: f.Del, Insert: f.Insert}
			if op.Pos >= 0 && op.Del >= 0 && op.Pos+op.Del <= len(h.text) {
				h.text = []rune(splice.Apply(string(h.text), op))
			}
			h.mu.Unlock()
		}
	}
}

func (h *wsHandle) Text(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return "", ErrStopped
	}
	return string(h.text), nil
}

func (h *wsHandle) Splice(ctx context.Context, op splice.Op) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrStopped
	}
	if op.Pos < 0 || op.Del < 0 || op.Pos+op.Del > len(h.text) {
		length := len(h.text)
		h.mu.Unlock()
		return fmt.Errorf("splice out of bounds: pos=%d del=%d len=%d", op.Pos, op.Del, length)
	}
	h.text = []rune(splice.Apply(string(h.text), op))
	h.mu.Unlock()

	return h.write(wsFrame{
		Type:   frameSplice,
		DocID:  h.docID,
		PeerID: h.peerID,
		Pos:    op.Pos,
		Del:    op.Del,
		Insert: op.Insert,
	})
}

func (h *wsHandle) Broadcast(ctx context.Context, payload []byte) error {
	return h.write(wsFrame{
		Type:   frameEphemeral,
		DocID:  h.docID,
		PeerID: h.peerID,
		Data:   base64.StdEncoding.EncodeToString(payload),
	})
}

func (h *wsHandle) write(f wsFrame) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	return h.conn.WriteJSON(f)
}

func (h *wsHandle) close() {
	h.mu.Lock()
	already := h.closed
	h.closed = true
	h.mu.Unlock()
	if !already {
		h.conn.WriteMessage(websocket.CloseMessage, []byte{})
		h.conn.Close()
	}
}
