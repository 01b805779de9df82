// Package event holds the event contract shared by the component registry,
// the observation manager and the components listening to them.
package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is something that happened. A listener registers filter events and
// receives every fired event its filters match.
type Event interface {
	// Matches reports whether the fired event other is covered by this
	// filter event.
	Matches(other Event) bool
}

// Notifier delivers fired events to interested listeners.
type Notifier interface {
	Notify(ctx context.Context, e Event, source, data interface{})
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, e Event, source, data interface{})

func (f NotifierFunc) Notify(ctx context.Context, e Event, source, data interface{}) {
	f(ctx, e, source, data)
}

// Envelope is a fired event with its delivery metadata.
type Envelope struct {
	ID     uuid.UUID
	Time   time.Time
	Event  Event
	Source interface{}
	Data   interface{}
}

// NewEnvelope stamps e with a fresh id and the current time.
func NewEnvelope(e Event, source, data interface{}) Envelope {
	return Envelope{ID: uuid.New(), Time: time.Now(), Event: e, Source: source, Data: data}
}

// Any matches every event.
type Any struct{}

func (Any) Matches(Event) bool { return true }

// DocumentEvent is fired when a document changes. A filter with an empty
// Reference matches every document.
type DocumentEvent struct {
	Action    DocumentAction
	Reference string
}

// DocumentAction is the kind of change.
type DocumentAction int

const (
	DocumentCreated DocumentAction = iota
	DocumentUpdated
	DocumentDeleted
)

func (a DocumentAction) String() string {
	switch a {
	case DocumentCreated:
		return "created"
	case DocumentUpdated:
		return "updated"
	case DocumentDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Matches implements Event.
func (e DocumentEvent) Matches(other Event) bool {
	o, ok := other.(DocumentEvent)
	if !ok || o.Action != e.Action {
		return false
	}
	return e.Reference == "" || e.Reference == o.Reference
}

// DocumentCreatedEvent is a filter or fired event for a new document.
func DocumentCreatedEvent(ref string) DocumentEvent {
	return DocumentEvent{Action: DocumentCreated, Reference: ref}
}

// DocumentUpdatedEvent is a filter or fired event for a changed document.
func DocumentUpdatedEvent(ref string) DocumentEvent {
	return DocumentEvent{Action: DocumentUpdated, Reference: ref}
}

// DocumentDeletedEvent is a filter or fired event for a removed document.
func DocumentDeletedEvent(ref string) DocumentEvent {
	return DocumentEvent{Action: DocumentDeleted, Reference: ref}
}
