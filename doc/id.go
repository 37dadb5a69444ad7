package doc

import (
	"fmt"
	"strings"
)

// IDPrefix is the scheme tag carried by shareable document identifiers.
const IDPrefix = "automerge:"

// ParseID strips the scheme prefix from a document identifier and returns
// the bare ID. IDs without the prefix are accepted as-is; empty IDs are
// rejected. Command surfaces that require the prefixed form should call
// RequirePrefix first.
func ParseID(id string) (string, error) {
	bare := strings.TrimPrefix(id, IDPrefix)
	if bare == "" {
		return "", fmt.Errorf("%w: %q", ErrBadID, id)
	}
	return bare, nil
}

// RequirePrefix rejects identifiers lacking the scheme prefix. The tool
// surface validates shared IDs with this before attempting a connect.
func RequirePrefix(id string) error {
	if !strings.HasPrefix(id, IDPrefix) {
		return fmt.Errorf("%w: %q must start with %q", ErrBadID, id, IDPrefix)
	}
	if id == IDPrefix {
		return fmt.Errorf("%w: %q", ErrBadID, id)
	}
	return nil
}
