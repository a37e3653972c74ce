// Package observability carries change events from the session controller to
// renderers and logs. Events are signals only; observers read state through the
// controller snapshot.
package observability

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	FilesChanged      EventType = "files.changed"
	TranscriptChanged EventType = "transcript.changed"
	SessionBusy       EventType = "session.busy"
	SessionIdle       EventType = "session.idle"
	SessionError      EventType = "session.error"
	InputChanged      EventType = "input.changed"
	OperationRejected EventType = "operation.rejected"
)

type Event struct {
	Type      EventType
	Level     slog.Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

func NewEvent(eventType EventType, level slog.Level, source string, data map[string]any) Event {
	return Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	}
}

// Observer is called after the state change is visible and no lock is held.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(ctx context.Context, event Event)

func (f ObserverFunc) OnEvent(ctx context.Context, event Event) {
	f(ctx, event)
}

type NoOpObserver struct{}

func (NoOpObserver) OnEvent(ctx context.Context, event Event) {}
