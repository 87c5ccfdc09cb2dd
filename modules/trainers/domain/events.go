package domain

import (
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func newTrainerVerifiedEvent(p *TrainerProfile) contracts.TrainerVerifiedEvent {
	return contracts.TrainerVerifiedEvent{
		BaseEvent: events.NewBaseEvent(contracts.TrainerVerifiedEventType, p.id.String()),
		TrainerID: p.id,
		UserID:    p.userID,
	}
}

func newTrainerSuspendedEvent(p *TrainerProfile) contracts.TrainerSuspendedEvent {
	return contracts.TrainerSuspendedEvent{
		BaseEvent: events.NewBaseEvent(contracts.TrainerSuspendedEventType, p.id.String()),
		TrainerID: p.id,
		UserID:    p.userID,
	}
}

func newReviewSubmittedEvent(r *Review) contracts.ReviewSubmittedEvent {
	return contracts.ReviewSubmittedEvent{
		BaseEvent: events.NewBaseEvent(contracts.ReviewSubmittedEventType, r.id.String()),
		ReviewID:  r.id,
		TrainerID: r.trainerID,
		ClientID:  r.clientID,
		Rating:    r.rating,
	}
}

func newReviewApprovedEvent(r *Review, trainerUserID types.UserID) contracts.ReviewApprovedEvent {
	return contracts.ReviewApprovedEvent{
		BaseEvent:     events.NewBaseEvent(contracts.ReviewApprovedEventType, r.id.String()),
		ReviewID:      r.id,
		TrainerID:     r.trainerID,
		TrainerUserID: trainerUserID,
		ClientID:      r.clientID,
	}
}
