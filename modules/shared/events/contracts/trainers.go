package contracts

import (
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

const (
	TrainerVerifiedEventType  events.EventType = "trainers.TrainerVerified"
	TrainerSuspendedEventType events.EventType = "trainers.TrainerSuspended"
	ReviewSubmittedEventType  events.EventType = "trainers.ReviewSubmitted"
	ReviewApprovedEventType   events.EventType = "trainers.ReviewApproved"
)

type TrainerVerifiedEvent struct {
	events.BaseEvent
	TrainerID types.TrainerID `json:"trainerId"`
	UserID    types.UserID    `json:"userId"`
}

type TrainerSuspendedEvent struct {
	events.BaseEvent
	TrainerID types.TrainerID `json:"trainerId"`
	UserID    types.UserID    `json:"userId"`
}

type ReviewSubmittedEvent struct {
	events.BaseEvent
	ReviewID  types.ReviewID  `json:"reviewId"`
	TrainerID types.TrainerID `json:"trainerId"`
	ClientID  types.UserID    `json:"clientId"`
	Rating    int             `json:"rating"`
}

type ReviewApprovedEvent struct {
	events.BaseEvent
	ReviewID      types.ReviewID  `json:"reviewId"`
	TrainerID     types.TrainerID `json:"trainerId"`
	TrainerUserID types.UserID    `json:"trainerUserId"`
	ClientID      types.UserID    `json:"clientId"`
}
