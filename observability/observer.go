// Package observability provides event-based observability for the bot
// loop and tool server. Level values align with OpenTelemetry
// SeverityNumbers so events translate to OTel collectors without mapping.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Level represents event severity aligned with OTel SeverityNumber ranges.
type Level int

const (
	LevelVerbose Level = 5  // OTel DEBUG, maps to slog.LevelDebug
	LevelInfo    Level = 9  // OTel INFO, maps to slog.LevelInfo
	LevelWarning Level = 13 // OTel WARN, maps to slog.LevelWarn
	LevelError   Level = 17 // OTel ERROR, maps to slog.LevelError
)

// SlogLevel maps this level to the corresponding slog.Level for emission.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// EventType identifies the kind of event. Each subsystem defines its own
// constants using this type (e.g., "bot.iteration.start").
type EventType string

// Event is an observability event emitted by subsystems.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// Observer receives events from subsystems for logging, tracing, or metrics.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}
