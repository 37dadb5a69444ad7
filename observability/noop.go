package observability

import "context"

// NoopObserver discards all events. Default for tests.
type NoopObserver struct{}

func (NoopObserver) OnEvent(ctx context.Context, event Event) {}
