package domain

import (
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// ClientLink records that a client has subscribed to a trainer. It backs
// the trainer's client count and the right to leave a review.
type ClientLink struct {
	TrainerID           types.TrainerID
	ClientID            types.UserID
	ActiveSubscriptions int
	FirstSubscribedAt   time.Time
	UpdatedAt           time.Time
}

func NewClientLink(trainerID types.TrainerID, clientID types.UserID, now time.Time) *ClientLink {
	return &ClientLink{
		TrainerID:         trainerID,
		ClientID:          clientID,
		FirstSubscribedAt: now.UTC(),
		UpdatedAt:         now.UTC(),
	}
}

// Activate counts a newly active subscription and reports whether the
// client just became an active client of the trainer.
func (l *ClientLink) Activate(now time.Time) bool {
	l.ActiveSubscriptions++
	l.UpdatedAt = now.UTC()
	return l.ActiveSubscriptions == 1
}

// Deactivate counts an ended subscription and reports whether the client
// no longer has any active subscription with the trainer.
func (l *ClientLink) Deactivate(now time.Time) bool {
	if l.ActiveSubscriptions == 0 {
		return false
	}
	l.ActiveSubscriptions--
	l.UpdatedAt = now.UTC()
	return l.ActiveSubscriptions == 0
}
