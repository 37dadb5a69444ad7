package bot

import "github.com/spork-collab/spork/observability"

// Bot event types emitted during the collaborative loop.
const (
	EventConnecting     observability.EventType = "bot.connecting"
	EventSynced         observability.EventType = "bot.synced"
	EventIterationStart observability.EventType = "bot.iteration.start"
	EventIdle           observability.EventType = "bot.idle"
	EventSuggestFailed  observability.EventType = "bot.suggest.failed"
	EventNoChanges      observability.EventType = "bot.no_changes"
	EventEditApplied    observability.EventType = "bot.edit.applied"
	EventStopped        observability.EventType = "bot.stopped"
)
