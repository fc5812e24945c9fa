package event

import (
	"time"

	"github.com/dshills/inkwell/internal/event/topic"
	"github.com/google/uuid"
)

// Event is an immutable notification with a typed payload.
type Event[T any] struct {
	Type     topic.Topic
	Payload  T
	Metadata Metadata
}

// Metadata is attached to every event.
type Metadata struct {
	// ID uniquely identifies the event.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source names the publisher, such as "engine" or "collab".
	Source string

	// CorrelationID links events caused by the same request.
	CorrelationID string
}

// NewEvent creates an event.
func NewEvent[T any](eventType topic.Topic, payload T, source string) Event[T] {
	return Event[T]{
		Type:    eventType,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// EventTopic returns the event type.
func (e Event[T]) EventTopic() topic.Topic { return e.Type }

// EventMetadata returns the metadata.
func (e Event[T]) EventMetadata() Metadata { return e.Metadata }

// WithCorrelation returns a copy with the correlation ID set.
func (e Event[T]) WithCorrelation(id string) Event[T] {
	e.Metadata.CorrelationID = id
	return e
}

// TopicProvider is implemented by every publishable event.
type TopicProvider interface {
	EventTopic() topic.Topic
}

// PayloadOf extracts the typed payload from a type-erased event. Events
// built with an interface payload type match when the dynamic payload is
// a T.
func PayloadOf[T any](ev any) (T, bool) {
	switch e := ev.(type) {
	case Event[T]:
		return e.Payload, true
	case *Event[T]:
		if e != nil {
			return e.Payload, true
		}
	case Event[any]:
		p, ok := e.Payload.(T)
		return p, ok
	}
	var zero T
	return zero, false
}
