// Package contracts defines public event contracts for inter-module communication.
// Modules should import event types from here, NOT from other module's domain packages.
package contracts

import (
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// Identity module event types.
// These are the "public API" of the identity module for event-driven communication.
const (
	UserRegisteredEventType         events.EventType = "identity.UserRegistered"
	UserSignedInEventType           events.EventType = "identity.UserSignedIn"
	UserSuspendedEventType          events.EventType = "identity.UserSuspended"
	UserReactivatedEventType        events.EventType = "identity.UserReactivated"
	UserRoleChangedEventType        events.EventType = "identity.UserRoleChanged"
	UserDeletedEventType            events.EventType = "identity.UserDeleted"
	PasswordResetRequestedEventType events.EventType = "identity.PasswordResetRequested"
)

// UserRegisteredEvent is published when an account is created, by password
// registration or by a first Google sign-in.
type UserRegisteredEvent struct {
	events.BaseEvent
	UserID   types.UserID `json:"userId"`
	Email    string       `json:"email"`
	FullName string       `json:"fullName"`
	UserName string       `json:"userName"`
	Role     types.Role   `json:"role"`
	Method   string       `json:"method"`
}

// UserSignedInEvent is published after every successful sign-in.
type UserSignedInEvent struct {
	events.BaseEvent
	UserID   types.UserID `json:"userId"`
	Email    string       `json:"email"`
	FullName string       `json:"fullName"`
	Method   string       `json:"method"`
}

type UserSuspendedEvent struct {
	events.BaseEvent
	UserID types.UserID `json:"userId"`
}

type UserReactivatedEvent struct {
	events.BaseEvent
	UserID types.UserID `json:"userId"`
}

type UserRoleChangedEvent struct {
	events.BaseEvent
	UserID  types.UserID `json:"userId"`
	OldRole types.Role   `json:"oldRole"`
	NewRole types.Role   `json:"newRole"`
}

// UserDeletedEvent is the public contract for user deletion events.
// Other modules should use this type to handle user deletions.
type UserDeletedEvent struct {
	events.BaseEvent
	UserID types.UserID `json:"userId"`
}

// PasswordResetRequestedEvent carries the reset link to be mailed.
type PasswordResetRequestedEvent struct {
	events.BaseEvent
	UserID    types.UserID `json:"userId"`
	Email     string       `json:"email"`
	FullName  string       `json:"fullName"`
	ResetLink string       `json:"-"`
}
