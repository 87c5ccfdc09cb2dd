// Package domain holds building blocks shared by every module's domain layer.
package domain

import "github.com/AlagappanMk24/Gymunity/modules/shared/events"

// AggregateRoot records the events an aggregate raises while its methods
// run. Command handlers hand the aggregate to the unit of work after saving
// it, which dispatches the events in the same transaction.
//
//	type User struct {
//		shareddomain.AggregateRoot
//		...
//	}
//
//	func (u *User) Suspend() error {
//		u.lockoutEnd = &SuspendedUntil
//		u.AddDomainEvent(newUserSuspendedEvent(u.id))
//		return nil
//	}
type AggregateRoot struct {
	pending []events.Event
}

func (a *AggregateRoot) AddDomainEvent(event events.Event) {
	a.pending = append(a.pending, event)
}

// DomainEvents returns the events raised since the last clear, oldest first.
func (a *AggregateRoot) DomainEvents() []events.Event {
	return a.pending
}

func (a *AggregateRoot) ClearDomainEvents() {
	a.pending = nil
}

// EventSource is satisfied by any aggregate embedding AggregateRoot.
type EventSource interface {
	DomainEvents() []events.Event
	ClearDomainEvents()
}
