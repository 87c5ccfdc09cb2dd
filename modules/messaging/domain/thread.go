// Package domain contains the chat rules between clients and trainers.
package domain

import (
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// PriorityFeature is the package feature that marks chats as priority.
const PriorityFeature = "priorityMessaging"

// Thread is the single conversation between a client and a trainer.
type Thread struct {
	id            types.ThreadID
	clientID      types.UserID
	trainerID     types.TrainerID
	trainerUserID types.UserID
	isPriority    bool
	lastMessageAt *time.Time
	createdAt     time.Time
}

func NewThread(clientID types.UserID, trainerID types.TrainerID, trainerUserID types.UserID, priority bool) *Thread {
	return &Thread{
		id:            types.NewID[types.ThreadKind](),
		clientID:      clientID,
		trainerID:     trainerID,
		trainerUserID: trainerUserID,
		isPriority:    priority,
		createdAt:     time.Now().UTC(),
	}
}

type ThreadState struct {
	ID            types.ThreadID
	ClientID      types.UserID
	TrainerID     types.TrainerID
	TrainerUserID types.UserID
	IsPriority    bool
	LastMessageAt *time.Time
	CreatedAt     time.Time
}

func ReconstituteThread(s ThreadState) *Thread {
	return &Thread{
		id:            s.ID,
		clientID:      s.ClientID,
		trainerID:     s.TrainerID,
		trainerUserID: s.TrainerUserID,
		isPriority:    s.IsPriority,
		lastMessageAt: s.LastMessageAt,
		createdAt:     s.CreatedAt,
	}
}

func (t *Thread) State() ThreadState {
	return ThreadState{
		ID:            t.id,
		ClientID:      t.clientID,
		TrainerID:     t.trainerID,
		TrainerUserID: t.trainerUserID,
		IsPriority:    t.isPriority,
		LastMessageAt: t.lastMessageAt,
		CreatedAt:     t.createdAt,
	}
}

func (t *Thread) ID() types.ThreadID          { return t.id }
func (t *Thread) ClientID() types.UserID      { return t.clientID }
func (t *Thread) TrainerID() types.TrainerID  { return t.trainerID }
func (t *Thread) TrainerUserID() types.UserID { return t.trainerUserID }
func (t *Thread) IsPriority() bool            { return t.isPriority }
func (t *Thread) LastMessageAt() *time.Time   { return t.lastMessageAt }
func (t *Thread) CreatedAt() time.Time        { return t.createdAt }
func (t *Thread) SetPriority(priority bool)   { t.isPriority = priority }

// HasParticipant reports whether userID is the client or the trainer.
func (t *Thread) HasParticipant(userID types.UserID) bool {
	return userID == t.clientID || userID == t.trainerUserID
}

// Counterpart returns the other participant of userID.
func (t *Thread) Counterpart(userID types.UserID) types.UserID {
	if userID == t.clientID {
		return t.trainerUserID
	}
	return t.clientID
}

// Post creates a message from sender in this thread.
func (t *Thread) Post(sender types.UserID, kind MessageType, content, mediaURL string, now time.Time) (*Message, error) {
	if !t.HasParticipant(sender) {
		return nil, ErrNotParticipant
	}
	m, err := newMessage(t, sender, kind, content, mediaURL, now)
	if err != nil {
		return nil, err
	}
	at := m.createdAt
	t.lastMessageAt = &at
	return m, nil
}
