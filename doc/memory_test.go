package doc_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spork-collab/spork/doc"
	"github.com/spork-collab/spork/splice"
)

func TestMemoryRepo_FindAndSplice(t *testing.T) {
	ctx := context.Background()
	repo := doc.NewMemoryRepo()

	id, err := repo.Create("Hello")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Find accepts both prefixed and bare IDs.
	for _, lookup := range []string{id, doc.IDPrefix + id} {
		h, err := repo.Find(ctx, lookup)
		if err != nil {
			t.Fatalf("Find(%q) failed: %v", lookup, err)
		}
		text, err := h.Text(ctx)
		if err != nil {
			t.Fatalf("Text failed: %v", err)
		}
		if text != "Hello" {
			t.Errorf("Find(%q) text = %q, want %q", lookup, text, "Hello")
		}
	}

	h, _ := repo.Find(ctx, id)
	if err := h.Splice(ctx, splice.Op{Pos: 5, Insert: " World"}); err != nil {
		t.Fatalf("Splice failed: %v", err)
	}
	text, _ := h.Text(ctx)
	if text != "Hello World" {
		t.Errorf("text after splice = %q, want %q", text, "Hello World")
	}
}

func TestMemoryRepo_SpliceOutOfBounds(t *testing.T) {
	ctx := context.Background()
	repo := doc.NewMemoryRepo()
	id, _ := repo.Create("Hi")
	h, _ := repo.Find(ctx, id)

	if err := h.Splice(ctx, splice.Op{Pos: 1, Del: 5}); err == nil {
		t.Error("out-of-bounds splice did not fail")
	}
	text, _ := h.Text(ctx)
	if text != "Hi" {
		t.Errorf("text mutated by rejected splice: %q", text)
	}
}

func TestMemoryRepo_FindUnknown(t *testing.T) {
	repo := doc.NewMemoryRepo()
	if _, err := repo.Find(context.Background(), "missing"); !errors.Is(err, doc.ErrNotFound) {
		t.Errorf("Find(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryRepo_BroadcastFanOut(t *testing.T) {
	ctx := context.Background()
	repo := doc.NewMemoryRepo()
	id, _ := repo.Create("")
	h, _ := repo.Find(ctx, id)

	recvA, cancelA, err := repo.Subscribe(id)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer cancelA()
	recvB, cancelB, err := repo.Subscribe(id)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer cancelB()

	payload := []byte("cursor-payload")
	if err := h.Broadcast(ctx, payload); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	for i, recv := range []func(context.Context) ([]byte, bool){recvA, recvB} {
		got, ok := recv(waitCtx)
		if !ok {
			t.Fatalf("subscriber %d received nothing", i)
		}
		if string(got) != string(payload) {
			t.Errorf("subscriber %d got %q, want %q", i, got, payload)
		}
	}
}

// Broadcasts racing subscriber cancels and repo Stop must never send on a
// closed channel. Run with -race.
func TestMemoryRepo_BroadcastDuringCancel(t *testing.T) {
	ctx := context.Background()
	repo := doc.NewMemoryRepo()
	id, _ := repo.Create("")
	h, _ := repo.Find(ctx, id)

	var wg sync.WaitGroup
	payload := []byte("cursor")

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			h.Broadcast(ctx, payload)
		}
	}()

	for i := 0; i < 50; i++ {
		_, cancel, err := repo.Subscribe(id)
		if err != nil {
			t.Fatalf("Subscribe failed: %v", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			cancel()
		}()
	}

	wg.Wait()

	// Stop closes the remaining subscribers while broadcasts may still be
	// racing in; exercise that path too.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			h.Broadcast(ctx, payload)
		}
	}()
	if err := repo.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	wg.Wait()
}

func TestMemoryRepo_StopIsCallOnce(t *testing.T) {
	ctx := context.Background()
	repo := doc.NewMemoryRepo()

	if err := repo.Stop(ctx); err != nil {
		t.Fatalf("first Stop failed: %v", err)
	}
	if err := repo.Stop(ctx); !errors.Is(err, doc.ErrStopped) {
		t.Errorf("second Stop error = %v, want ErrStopped", err)
	}
	if _, err := repo.Find(ctx, "anything"); !errors.Is(err, doc.ErrStopped) {
		t.Errorf("Find after Stop error = %v, want ErrStopped", err)
	}
	if _, err := repo.Create("x"); !errors.Is(err, doc.ErrStopped) {
		t.Errorf("Create after Stop error = %v, want ErrStopped", err)
	}
}
