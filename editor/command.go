// Package editor turns typed edit commands into minimal splice operations
// against the shared document. Dispatch validates each command against the
// current text, derives exactly one splice, applies it through the external
// document primitive, and announces the actor's cursor at the edit position.
//
// The command surface is a closed sum: adding or removing a command is a
// compile-time-checked change to the Dispatch switch, not a string lookup.
package editor

// Command is one edit intent. Implementations are the only six command
// types; the unexported marker keeps the sum closed.
type Command interface {
	isCommand()
}

// Connect establishes (or replaces) the session's binding to a document.
type Connect struct {
	DocID   string
	SyncURL string
}

// ReadText returns the current document text. Side-effect free.
type ReadText struct{}

// RegexReplace substitutes a regex pattern over the whole text. Multi-line
// matching is always enabled; Global selects all matches versus the first.
type RegexReplace struct {
	Pattern     string
	Replacement string
	Global      bool
}

// InsertAt inserts text at a rune position. Position may equal the text
// length (append) or zero (prepend).
type InsertAt struct {
	Position int
	Text     string
}

// DeleteRange deletes runes in [Start, End).
type DeleteRange struct {
	Start int
	End   int
}

// SetText replaces the full document text, transmitted as a minimal diff
// so concurrent edits outside the changed region survive.
type SetText struct {
	Text string
}

func (Connect) isCommand()      {}
func (ReadText) isCommand()     {}
func (RegexReplace) isCommand() {}
func (InsertAt) isCommand()     {}
func (DeleteRange) isCommand()  {}
func (SetText) isCommand()      {}
