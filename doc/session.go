package doc

import (
	"context"
	"fmt"
	"sync"
)

// ConnState is the lifecycle state of a Session.
type ConnState int

const (
	Disconnected ConnState = iota
	Connecting
	Synced
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Synced:
		return "synced"
	}
	return fmt.Sprintf("ConnState(%d)", int(s))
}

// Session binds a local actor to one shared document. It is the only
// mutable shared state in the system and is owned by whichever component
// drives the loop: the tool server or the bot. It is never reached through
// package-level globals — callers pass it explicitly.
type Session struct {
	mu      sync.Mutex
	docID   string
	repo    Repo
	handle  Handle
	state   ConnState
	stopped bool
}

// NewSession creates a Disconnected session.
func NewSession() *Session {
	return &Session{}
}

// DocID returns the identifier of the document the session is (or was
// last) connecting to.
func (s *Session) DocID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docID
}

// State returns the current connection state.
func (s *Session) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PeerID returns the connected repo's peer identifier, or "" before Bind.
func (s *Session) PeerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo == nil {
		return ""
	}
	return s.repo.PeerID()
}

// Connecting marks the session as dialing the given document. Returns
// ErrStopped after Stop.
func (s *Session) Connecting(docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	s.docID = docID
	s.state = Connecting
	return nil
}

// Bind attaches the repo and document handle and marks the session Synced.
// Called once the external primitive has confirmed initial sync.
func (s *Session) Bind(repo Repo, handle Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	s.repo = repo
	s.handle = handle
	s.state = Synced
	return nil
}

// Handle returns the bound document handle. The boolean is false until the
// session reaches Synced.
func (s *Session) Handle() (Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Synced || s.handle == nil {
		return nil, false
	}
	return s.handle, true
}

// Unbind detaches the current repo binding and returns it so the caller
// can release it. The session drops to Disconnected but stays usable —
// this is how a reconnect to a different document swaps backends.
func (s *Session) Unbind() Repo {
	s.mu.Lock()
	defer s.mu.Unlock()
	repo := s.repo
	s.repo = nil
	s.handle = nil
	s.state = Disconnected
	return repo
}

// Stop releases the underlying repo and moves the session to Disconnected.
// Stop is call-once by contract: a second call returns ErrStopped without
// touching the repo again, so double-release bugs surface as a defined
// error rather than a crash or a silent no-op.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	s.stopped = true
	repo := s.repo
	s.repo = nil
	s.handle = nil
	s.state = Disconnected
	s.mu.Unlock()

	if repo == nil {
		return nil
	}
	return repo.Stop(ctx)
}
