package doc

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/spork-collab/spork/splice"
)

const broadcastBuffer = 16

// MemoryRepo is an in-process Repo backed by plain rune buffers. It is the
// backend for tests and for running the binaries without a sync server.
// Broadcasts fan out to local subscribers only.
type MemoryRepo struct {
	mu      sync.Mutex
	peerID  string
	docs    map[string]*memoryDoc
	stopped bool
}

// NewMemoryRepo creates an empty in-memory repo with a unique peer ID.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		peerID: uuid.Must(uuid.NewV7()).String(),
		docs:   make(map[string]*memoryDoc),
	}
}

func (r *MemoryRepo) PeerID() string {
	return r.peerID
}

// Create adds a new document with the given initial text and returns its
// bare ID. Mirrors the external engine's create primitive for tests.
func (r *MemoryRepo) Create(initial string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return "", ErrStopped
	}

	id := uuid.Must(uuid.NewV7()).String()
	r.docs[id] = &memoryDoc{text: []rune(initial)}
	return id, nil
}

// Find resolves a document ID, with or without the scheme prefix.
func (r *MemoryRepo) Find(ctx context.Context, id string) (Handle, error) {
	bare, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return nil, ErrStopped
	}

	d, ok := r.docs[bare]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, bare)
	}
	return d, nil
}

// Stop releases the repo. Call-once: a second Stop returns ErrStopped.
func (r *MemoryRepo) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return ErrStopped
	}
	r.stopped = true
	for _, d := range r.docs {
		d.closeSubscribers()
	}
	return nil
}

// Subscribe registers a broadcast listener on a document and returns a
// receive function plus a cancel func. Test-side stand-in for a remote
// peer observing ephemeral messages.
func (r *MemoryRepo) Subscribe(id string) (func(context.Context) ([]byte, bool), func(), error) {
	h, err := r.Find(context.Background(), id)
	if err != nil {
		return nil, nil, err
	}
	recv, cancel := h.(*memoryDoc).subscribe()
	return recv, cancel, nil
}

type memoryDoc struct {
	mu   sync.Mutex
	text []rune
	subs []*broadcastChannel
}

func (d *memoryDoc) Text(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return string(d.text), nil
}

func (d *memoryDoc) Splice(ctx context.Context, op splice.Op) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if op.Pos < 0 || op.Del < 0 || op.Pos+op.Del > len(d.text) {
		return fmt.Errorf("splice out of bounds: pos=%d del=%d len=%d", op.Pos, op.Del, len(d.text))
	}
	d.text = []rune(splice.Apply(string(d.text), op))
	return nil
}

func (d *memoryDoc) Broadcast(ctx context.Context, payload []byte) error {
	d.mu.Lock()
	subs := make([]*broadcastChannel, len(d.subs))
	copy(subs, d.subs)
	d.mu.Unlock()

	for _, sub := range subs {
		sub.offer(payload)
	}
	return nil
}

func (d *memoryDoc) subscribe() (func(context.Context) ([]byte, bool), func()) {
	ch := newBroadcastChannel(broadcastBuffer)
	d.mu.Lock()
	d.subs = append(d.subs, ch)
	d.mu.Unlock()
	return ch.receive, ch.close
}

func (d *memoryDoc) closeSubscribers() {
	d.mu.Lock()
	subs := d.subs
	d.subs = nil
	d.mu.Unlock()
	for _, sub := range subs {
		sub.close()
	}
}
