// Package events is the in-process pub/sub layer the modules communicate
// over. Publishers fire domain events; subscribers (email, jobs) react
// without the modules importing each other.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the occurrence time. Embed it and let NewBaseEvent
// stamp it.
type BaseEvent struct {
	At time.Time `json:"occurredAt"`
}

func (e BaseEvent) OccurredAt() time.Time { return e.At }

func NewBaseEvent() BaseEvent {
	return BaseEvent{At: time.Now()}
}

// Handler reacts to a published event. Errors are the handler's problem;
// the publisher never sees them.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes events to the handlers subscribed under the event's name.
// Publish is fire-and-forget; delivery happens off the caller's goroutine.
type Bus interface {
	Publish(ctx context.Context, event Event)
	Subscribe(eventName string, handler Handler)
}
