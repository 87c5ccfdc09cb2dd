package domain

import (
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// Domain events for the identity bounded context.
// The payloads are the public contracts other modules subscribe to.

func newUserRegisteredEvent(u *User, method string) contracts.UserRegisteredEvent {
	return contracts.UserRegisteredEvent{
		BaseEvent: events.NewBaseEvent(contracts.UserRegisteredEventType, u.id.String()),
		UserID:    u.id,
		Email:     u.email.String(),
		FullName:  u.fullName.String(),
		UserName:  u.userName.String(),
		Role:      u.role,
		Method:    method,
	}
}

func newUserSignedInEvent(u *User, method string) contracts.UserSignedInEvent {
	return contracts.UserSignedInEvent{
		BaseEvent: events.NewBaseEvent(contracts.UserSignedInEventType, u.id.String()),
		UserID:    u.id,
		Email:     u.email.String(),
		FullName:  u.fullName.String(),
		Method:    method,
	}
}

func newUserSuspendedEvent(id types.UserID) contracts.UserSuspendedEvent {
	return contracts.UserSuspendedEvent{
		BaseEvent: events.NewBaseEvent(contracts.UserSuspendedEventType, id.String()),
		UserID:    id,
	}
}

func newUserReactivatedEvent(id types.UserID) contracts.UserReactivatedEvent {
	return contracts.UserReactivatedEvent{
		BaseEvent: events.NewBaseEvent(contracts.UserReactivatedEventType, id.String()),
		UserID:    id,
	}
}

func newUserRoleChangedEvent(id types.UserID, oldRole, newRole types.Role) contracts.UserRoleChangedEvent {
	return contracts.UserRoleChangedEvent{
		BaseEvent: events.NewBaseEvent(contracts.UserRoleChangedEventType, id.String()),
		UserID:    id,
		OldRole:   oldRole,
		NewRole:   newRole,
	}
}

func newUserDeletedEvent(id types.UserID) contracts.UserDeletedEvent {
	return contracts.UserDeletedEvent{
		BaseEvent: events.NewBaseEvent(contracts.UserDeletedEventType, id.String()),
		UserID:    id,
	}
}

func newPasswordResetRequestedEvent(u *User, link string) contracts.PasswordResetRequestedEvent {
	return contracts.PasswordResetRequestedEvent{
		BaseEvent: events.NewBaseEvent(contracts.PasswordResetRequestedEventType, u.id.String()),
		UserID:    u.id,
		Email:     u.email.String(),
		FullName:  u.fullName.String(),
		ResetLink: link,
	}
}
