// Package bot implements the collaborative agent loop: connect to a shared
// document, then repeatedly fetch the text, ask the external provider for
// an improved version, announce the edit position, and apply the minimal
// splice — waiting a fixed interval between iterations.
//
// The loop is a single sequential cycle. Edits from this actor are strictly
// serialized: iteration N+1 never starts before iteration N's splice has
// been issued. Convergence with concurrent editors is the document
// engine's job.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spork-collab/spork/doc"
	"github.com/spork-collab/spork/editor"
	"github.com/spork-collab/spork/observability"
	"github.com/spork-collab/spork/presence"
	"github.com/spork-collab/spork/suggest"
)

// Option configures a Bot after config-driven initialization.
type Option func(*Bot)

// WithProvider overrides the suggestion provider. Without this option New
// builds the OpenAI provider from the environment.
func WithProvider(p suggest.Provider) Option {
	return func(b *Bot) { b.provider = p }
}

// WithConnector overrides the sync connector.
func WithConnector(c editor.Connector) Option {
	return func(b *Bot) { b.connector = c }
}

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(b *Bot) { b.observer = o }
}

// WithLogger overrides the logger used by the dispatcher.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bot) { b.logger = l }
}

// Bot drives the connect → read → suggest → diff → apply → announce → wait
// cycle against one document.
type Bot struct {
	docID        string
	syncURL      string
	name         string
	editInterval time.Duration
	emptyPoll    time.Duration

	connector editor.Connector
	provider  suggest.Provider
	observer  observability.Observer
	logger    *slog.Logger
}

// New creates a Bot from configuration. The suggestion provider is built
// from the environment unless WithProvider overrides it — a missing API
// credential fails here, at startup, not inside the loop.
func New(cfg *Config, opts ...Option) (*Bot, error) {
	if cfg.DocID == "" {
		return nil, fmt.Errorf("doc_id is required")
	}
	if err := doc.RequirePrefix(cfg.DocID); err != nil {
		return nil, err
	}

	b := &Bot{
		docID:        cfg.DocID,
		syncURL:      cfg.SyncURL,
		name:         cfg.Name,
		editInterval: time.Duration(cfg.EditInterval),
		emptyPoll:    time.Duration(cfg.EmptyPoll),
		connector: doc.SyncConnector{
			DefaultURL: cfg.SyncURL,
			Wait:       time.Duration(cfg.SyncWait),
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.observer == nil {
		b.observer = observability.NewSlogObserver(b.logger)
	}
	if b.provider == nil {
		p, err := suggest.NewOpenAIProvider()
		if err != nil {
			return nil, err
		}
		b.provider = p
	}

	return b, nil
}

// Run connects and loops until ctx is cancelled or a connection-level
// error occurs. The session is released exactly once on the way out; the
// stop signal is honored only at iteration boundaries, never by aborting
// an in-flight splice.
func (b *Bot) Run(ctx context.Context) error {
	sess := doc.NewSession()
	dispatcher := editor.NewDispatcher(b.connector, presence.CursorAI, b.name, b.logger)

	b.emit(ctx, EventConnecting, observability.LevelInfo, map[string]any{
		"doc_id":   b.docID,
		"sync_url": b.syncURL,
	})

	if _, err := dispatcher.Dispatch(ctx, sess, editor.Connect{DocID: b.docID, SyncURL: b.syncURL}); err != nil {
		b.release(ctx, sess)
		return err
	}

	b.emit(ctx, EventSynced, observability.LevelInfo, map[string]any{
		"doc_id":  b.docID,
		"peer_id": sess.PeerID(),
	})

	err := b.loop(ctx, sess, dispatcher)
	b.release(ctx, sess)
	return err
}

func (b *Bot) loop(ctx context.Context, sess *doc.Session, dispatcher *editor.Dispatcher) error {
	for iteration := 1; ; iteration++ {
		if ctx.Err() != nil {
			return nil
		}

		b.emit(ctx, EventIterationStart, observability.LevelVerbose, map[string]any{
			"iteration": iteration,
		})

		wait, err := b.iterate(ctx, sess, dispatcher, iteration)
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// iterate runs one fetch → suggest → apply cycle and returns how long to
// wait before the next one. Only connection-level failures are returned;
// everything else is logged and absorbed.
func (b *Bot) iterate(ctx context.Context, sess *doc.Session, dispatcher *editor.Dispatcher, iteration int) (time.Duration, error) {
	out, err := dispatcher.Dispatch(ctx, sess, editor.ReadText{})
	if err != nil {
		return 0, fmt.Errorf("iteration %d: %w", iteration, err)
	}
	text := out.Text

	// Blank documents are not worth a suggestion request.
	if strings.TrimSpace(text) == "" {
		b.emit(ctx, EventIdle, observability.LevelVerbose, map[string]any{
			"iteration": iteration,
		})
		return b.emptyPoll, nil
	}

	suggested, err := b.provider.Suggest(ctx, text)
	if err != nil {
		// Non-fatal by contract, including real provider errors.
		level := observability.LevelWarning
		if errors.Is(err, suggest.ErrNoSuggestion) {
			level = observability.LevelVerbose
		}
		b.emit(ctx, EventSuggestFailed, level, map[string]any{
			"iteration": iteration,
			"error":     err.Error(),
		})
		return b.editInterval, nil
	}

	// The dispatcher re-reads the snapshot, diffs, announces the cursor at
	// the edit position, and applies the minimal splice. Once the apply is
	// in flight it must not be aborted by a stop signal.
	applyCtx := context.WithoutCancel(ctx)
	applied, err := dispatcher.Dispatch(applyCtx, sess, editor.SetText{Text: suggested})
	if err != nil {
		return 0, fmt.Errorf("iteration %d: %w", iteration, err)
	}

	if !applied.Applied {
		b.emit(ctx, EventNoChanges, observability.LevelVerbose, map[string]any{
			"iteration": iteration,
		})
	} else {
		b.emit(ctx, EventEditApplied, observability.LevelInfo, map[string]any{
			"iteration": iteration,
			"position":  applied.Op.Pos,
			"deleted":   applied.Op.Del,
			"inserted":  len([]rune(applied.Op.Insert)),
		})
	}
	return b.editInterval, nil
}

// release stops the session exactly once. A second release attempt inside
// the same Run is a bug; doc.ErrStopped from racing external stops is
// absorbed here because Run's own release already happened or will not.
func (b *Bot) release(ctx context.Context, sess *doc.Session) {
	if err := sess.Stop(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, doc.ErrStopped) {
		b.logger.Warn("session release failed", "error", err)
	}
	b.emit(ctx, EventStopped, observability.LevelInfo, nil)
}

func (b *Bot) emit(ctx context.Context, t observability.EventType, level observability.Level, data map[string]any) {
	b.observer.OnEvent(ctx, observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "bot.Run",
		Data:      data,
	})
}
