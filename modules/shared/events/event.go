// Package events defines the domain event contract modules publish and
// subscribe through. Payload types shared across modules live in contracts.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names a kind of event, qualified by the owning module
// (e.g. "identity.UserRegistered").
type EventType string

func (t EventType) String() string { return string(t) }

// Event is a fact raised by an aggregate. AggregateID is the string form of
// the raising aggregate's identifier.
type Event interface {
	EventID() string
	EventType() EventType
	OccurredAt() time.Time
	AggregateID() string
}

// BaseEvent carries the envelope fields. Concrete events embed it and add
// their payload.
type BaseEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregateId"`
}

// NewBaseEvent stamps a fresh ID and the current UTC time.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) EventType() EventType  { return e.Type }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) AggregateID() string   { return e.AggregateId }

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// Subscriber registers handlers. Which bus a module subscribes on decides
// whether its handler runs inside the publishing transaction or after it.
type Subscriber interface {
	Subscribe(eventType EventType, handler Handler) error
}

type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Typed adapts a handler for one concrete event type. Events of any
// other type are ignored.
func Typed[E Event](fn func(ctx context.Context, event E) error) Handler {
	return HandlerFunc(func(ctx context.Context, event Event) error {
		e, ok := event.(E)
		if !ok {
			return nil
		}
		return fn(ctx, e)
	})
}
