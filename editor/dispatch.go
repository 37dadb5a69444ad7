package editor

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/spork-collab/spork/doc"
	"github.com/spork-collab/spork/presence"
	"github.com/spork-collab/spork/splice"
)

// Connector is the external connect primitive: it dials the sync layer,
// resolves the document, and returns only after initial sync is confirmed.
type Connector interface {
	Connect(ctx context.Context, docID, syncURL string) (doc.Repo, doc.Handle, error)
}

// Outcome describes what a successful dispatch did. Rejections are
// returned as errors, not outcomes.
type Outcome struct {
	Text    string    // snapshot text, set by ReadText
	Count   int       // substitutions performed, set by RegexReplace
	Op      splice.Op // the splice derived for the command
	Applied bool      // whether a splice was transmitted
}

// Dispatcher validates commands against the current snapshot and applies
// the resulting splices. It owns no session — the caller passes its
// session into every dispatch, so there is no ambient connection state.
type Dispatcher struct {
	connector Connector
	kind      presence.CursorKind
	name      string
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher acting as the given display name and
// cursor kind. The connector may be nil if the caller never dispatches
// Connect.
func NewDispatcher(connector Connector, kind presence.CursorKind, name string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		connector: connector,
		kind:      kind,
		name:      name,
		logger:    logger,
	}
}

// Dispatch executes one command against the session. Validation and
// pattern failures come back wrapping the package sentinels; only
// connection-level failures are anything else.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *doc.Session, cmd Command) (Outcome, error) {
	if c, ok := cmd.(Connect); ok {
		return d.connect(ctx, sess, c)
	}

	handle, ok := sess.Handle()
	if !ok {
		return Outcome{}, fmt.Errorf("%w: use connect first", ErrNotConnected)
	}

	text, err := handle.Text(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("fetch text: %w", err)
	}

	switch c := cmd.(type) {
	case ReadText:
		return Outcome{Text: text}, nil
	case RegexReplace:
		return d.regexReplace(ctx, sess, handle, text, c)
	case InsertAt:
		return d.insertAt(ctx, sess, handle, text, c)
	case DeleteRange:
		return d.deleteRange(ctx, sess, handle, text, c)
	case SetText:
		return d.setText(ctx, sess, handle, text, c)
	}
	return Outcome{}, fmt.Errorf("unhandled command %T", cmd)
}

func (d *Dispatcher) connect(ctx context.Context, sess *doc.Session, c Connect) (Outcome, error) {
	if err := doc.RequirePrefix(c.DocID); err != nil {
		return Outcome{}, err
	}
	if _, ok := sess.Handle(); ok && sess.DocID() == c.DocID {
		// Already synced to this document; reuse the binding.
		return Outcome{}, nil
	}
	if old := sess.Unbind(); old != nil {
		if err := old.Stop(ctx); err != nil {
			d.logger.Warn("releasing previous connection failed", "error", err)
		}
	}
	if err := sess.Connecting(c.DocID); err != nil {
		return Outcome{}, err
	}

	repo, handle, err := d.connector.Connect(ctx, c.DocID, c.SyncURL)
	if err != nil {
		return Outcome{}, fmt.Errorf("connect %s: %w", c.DocID, err)
	}
	if err := sess.Bind(repo, handle); err != nil {
		if stopErr := repo.Stop(ctx); stopErr != nil {
			d.logger.Warn("releasing unbound connection failed", "error", stopErr)
		}
		return Outcome{}, err
	}
	return Outcome{}, nil
}

func (d *Dispatcher) regexReplace(ctx context.Context, sess *doc.Session, handle doc.Handle, text string, c RegexReplace) (Outcome, error) {
	// ^ and $ match at line boundaries, matching the reference semantics.
	re, err := regexp.Compile("(?m)" + c.Pattern)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrBadPattern, err)
	}

	var newText string
	var count int
	if c.Global {
		matches := re.FindAllStringSubmatchIndex(text, -1)
		count = len(matches)
		if count == 0 {
			return Outcome{}, fmt.Errorf("%w for pattern: %s", ErrNoMatch, c.Pattern)
		}
		newText = re.ReplaceAllString(text, c.Replacement)
	} else {
		m := re.FindStringSubmatchIndex(text)
		if m == nil {
			return Outcome{}, fmt.Errorf("%w for pattern: %s", ErrNoMatch, c.Pattern)
		}
		count = 1
		expanded := re.ExpandString(nil, c.Replacement, text, m)
		newText = text[:m[0]] + string(expanded) + text[m[1]:]
	}

	// The replacement ran on whole-text semantics; the wire still sees one
	// minimal splice against the original snapshot.
	op := splice.Compute(text, newText)
	if op.IsNoop() {
		return Outcome{Count: count, Op: op}, nil
	}
	if err := d.apply(ctx, sess, handle, op); err != nil {
		return Outcome{}, err
	}
	return Outcome{Count: count, Op: op, Applied: true}, nil
}

func (d *Dispatcher) insertAt(ctx context.Context, sess *doc.Session, handle doc.Handle, text string, c InsertAt) (Outcome, error) {
	length := len([]rune(text))
	if c.Position < 0 || c.Position > length {
		return Outcome{}, fmt.Errorf("%w: %d (text length is %d)", ErrInvalidPosition, c.Position, length)
	}

	// Already minimal by construction; no diff needed.
	op := splice.Op{Pos: c.Position, Insert: c.Text}
	if err := d.apply(ctx, sess, handle, op); err != nil {
		return Outcome{}, err
	}
	return Outcome{Op: op, Applied: true}, nil
}

func (d *Dispatcher) deleteRange(ctx context.Context, sess *doc.Session, handle doc.Handle, text string, c DeleteRange) (Outcome, error) {
	length := len([]rune(text))
	if c.Start < 0 || c.Start >= c.End || c.End > length {
		return Outcome{}, fmt.Errorf("%w: [%d, %d) (text length is %d)", ErrInvalidRange, c.Start, c.End, length)
	}

	op := splice.Op{Pos: c.Start, Del: c.End - c.Start}
	if err := d.apply(ctx, sess, handle, op); err != nil {
		return Outcome{}, err
	}
	return Outcome{Op: op, Applied: true}, nil
}

func (d *Dispatcher) setText(ctx context.Context, sess *doc.Session, handle doc.Handle, text string, c SetText) (Outcome, error) {
	op := splice.Compute(text, c.Text)
	if op.IsNoop() {
		return Outcome{Op: op}, nil
	}
	if err := d.apply(ctx, sess, handle, op); err != nil {
		return Outcome{}, err
	}
	return Outcome{Op: op, Applied: true}, nil
}

// apply announces the actor's cursor at the edit position, then transmits
// the splice. Announce failures are logged and dropped — presence is a
// separate channel and never blocks a document mutation.
func (d *Dispatcher) apply(ctx context.Context, sess *doc.Session, handle doc.Handle, op splice.Op) error {
	announcer := presence.NewBroadcaster(handle, sess.PeerID(), d.name)
	if err := announcer.Announce(ctx, op.Pos, d.kind); err != nil {
		d.logger.Warn("presence announce failed", "error", err, "position", op.Pos)
	}

	if err := handle.Splice(ctx, op); err != nil {
		return fmt.Errorf("apply splice: %w", err)
	}
	return nil
}
