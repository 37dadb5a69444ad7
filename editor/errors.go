package editor

import "errors"

// Rejection sentinels. Every rejection is returned, never panicked, and
// wraps one of these so callers can match with errors.Is and adapt their
// next command. The wrapped messages echo the rejected bounds against the
// known text length so a caller can retry without refetching.
var (
	ErrNotConnected    = errors.New("not connected to a document")
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidRange    = errors.New("invalid range")
	ErrNoMatch         = errors.New("no matches found")
	ErrBadPattern      = errors.New("invalid regex pattern")
)
