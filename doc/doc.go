// Package doc defines the primitives this system uses to talk to the
// external replicated document engine: a Repo that locates documents, a
// Handle that reads, splices, and broadcasts against one document, and a
// Session tracking the local actor's connection lifecycle.
//
// The engine itself — sequence replication, merge, causality, storage — is
// an external collaborator. Two backends ship with the repo: MemoryRepo for
// tests and offline use, and WSRepo, a websocket sync client.
package doc

import (
	"context"
	"errors"

	"github.com/spork-collab/spork/splice"
)

// Sentinel errors for document access.
var (
	ErrBadID    = errors.New("invalid document id")
	ErrNotFound = errors.New("document not found")
	ErrStopped  = errors.New("repo already stopped")
)

// Handle provides access to a single replicated text document. All
// positions are rune offsets. Implementations must be safe for concurrent
// use; this core drives them from a single sequential loop regardless.
type Handle interface {
	// Text returns the document's current text value.
	Text(ctx context.Context) (string, error)
	// Splice applies one edit to the document.
	Splice(ctx context.Context, op splice.Op) error
	// Broadcast sends an ephemeral payload to connected peers. The payload
	// is never persisted and carries no delivery guarantee.
	Broadcast(ctx context.Context, payload []byte) error
}

// Repo locates documents and owns the connection to the sync layer.
type Repo interface {
	// PeerID returns this repo's unique peer identifier.
	PeerID() string
	// Find resolves a document ID to a Handle. The ID may carry the
	// "automerge:" prefix or not; see ParseID.
	Find(ctx context.Context, id string) (Handle, error)
	// Stop releases the connection. Stop is call-once: a second call
	// returns ErrStopped.
	Stop(ctx context.Context) error
}
