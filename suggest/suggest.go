// Package suggest wraps the external suggestion provider: given the
// current document text, it returns an improved full text or a failure.
// Failures are expected and non-fatal — the agent loop treats any error as
// "no suggestion this iteration".
package suggest

import (
	"context"
	"errors"
)

// ErrNoSuggestion signals that the provider had nothing to offer: an empty
// response or one identical to the input.
var ErrNoSuggestion = errors.New("no suggestion available")

// Provider produces an improved version of the given text.
type Provider interface {
	Suggest(ctx context.Context, text string) (string, error)
}
