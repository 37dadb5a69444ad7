package doc_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spork-collab/spork/doc"
)

func syncedSession(t *testing.T) (*doc.Session, *doc.MemoryRepo) {
	t.Helper()

	repo := doc.NewMemoryRepo()
	id, err := repo.Create("Hello")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	handle, err := repo.Find(context.Background(), id)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	sess := doc.NewSession()
	if err := sess.Connecting(doc.IDPrefix + id); err != nil {
		t.Fatalf("Connecting failed: %v", err)
	}
	if err := sess.Bind(repo, handle); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	return sess, repo
}

func TestSession_Lifecycle(t *testing.T) {
	sess := doc.NewSession()
	if got := sess.State(); got != doc.Disconnected {
		t.Errorf("initial state = %v, want Disconnected", got)
	}
	if _, ok := sess.Handle(); ok {
		t.Error("Handle() available before Synced")
	}

	if err := sess.Connecting("automerge:abc"); err != nil {
		t.Fatalf("Connecting failed: %v", err)
	}
	if got := sess.State(); got != doc.Connecting {
		t.Errorf("state after Connecting = %v, want Connecting", got)
	}
	if got := sess.DocID(); got != "automerge:abc" {
		t.Errorf("DocID = %q, want %q", got, "automerge:abc")
	}
	if _, ok := sess.Handle(); ok {
		t.Error("Handle() available before Synced")
	}
}

func TestSession_BindExposesHandle(t *testing.T) {
	sess, repo := syncedSession(t)

	if got := sess.State(); got != doc.Synced {
		t.Errorf("state = %v, want Synced", got)
	}
	if got := sess.PeerID(); got != repo.PeerID() {
		t.Errorf("PeerID = %q, want %q", got, repo.PeerID())
	}

	h, ok := sess.Handle()
	if !ok {
		t.Fatal("Handle() not available after Bind")
	}
	text, err := h.Text(context.Background())
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	if text != "Hello" {
		t.Errorf("text = %q, want %q", text, "Hello")
	}
}

func TestSession_StopIsCallOnce(t *testing.T) {
	sess, repo := syncedSession(t)
	ctx := context.Background()

	if err := sess.Stop(ctx); err != nil {
		t.Fatalf("first Stop failed: %v", err)
	}
	if got := sess.State(); got != doc.Disconnected {
		t.Errorf("state after Stop = %v, want Disconnected", got)
	}
	if _, ok := sess.Handle(); ok {
		t.Error("Handle() available after Stop")
	}

	// Double-release is a defined failure, not a crash or a silent no-op.
	if err := sess.Stop(ctx); !errors.Is(err, doc.ErrStopped) {
		t.Errorf("second Stop error = %v, want ErrStopped", err)
	}

	// The underlying repo was released by the first Stop.
	if err := repo.Stop(ctx); !errors.Is(err, doc.ErrStopped) {
		t.Errorf("repo.Stop after session Stop error = %v, want ErrStopped", err)
	}
}

func TestSession_RejectsUseAfterStop(t *testing.T) {
	sess := doc.NewSession()
	if err := sess.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if err := sess.Connecting("automerge:abc"); !errors.Is(err, doc.ErrStopped) {
		t.Errorf("Connecting after Stop error = %v, want ErrStopped", err)
	}
	if err := sess.Bind(doc.NewMemoryRepo(), nil); !errors.Is(err, doc.ErrStopped) {
		t.Errorf("Bind after Stop error = %v, want ErrStopped", err)
	}
}

func TestSession_UnbindKeepsSessionUsable(t *testing.T) {
	sess, repo := syncedSession(t)

	released := sess.Unbind()
	if released == nil {
		t.Fatal("Unbind returned nil repo")
	}
	if err := released.Stop(context.Background()); err != nil {
		t.Fatalf("stopping unbound repo failed: %v", err)
	}
	if got := sess.State(); got != doc.Disconnected {
		t.Errorf("state after Unbind = %v, want Disconnected", got)
	}

	// A fresh binding still works; the session was not stopped.
	repo2 := doc.NewMemoryRepo()
	id, _ := repo2.Create("again")
	handle, err := repo2.Find(context.Background(), id)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if err := sess.Connecting(doc.IDPrefix + id); err != nil {
		t.Fatalf("Connecting after Unbind failed: %v", err)
	}
	if err := sess.Bind(repo2, handle); err != nil {
		t.Fatalf("Bind after Unbind failed: %v", err)
	}
	if _, ok := sess.Handle(); !ok {
		t.Error("Handle() not available after rebind")
	}

	_ = repo
}
