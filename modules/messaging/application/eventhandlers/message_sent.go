package eventhandlers

import (
	"context"

	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// Pusher delivers a realtime payload to every open connection of a user.
type Pusher interface {
	Push(userID types.UserID, kind string, payload any) int
}

// MessagePushHandler forwards committed messages to both participants'
// open connections, so a sender's other devices stay in sync.
type MessagePushHandler struct {
	pusher Pusher
}

func NewMessagePushHandler(pusher Pusher) *MessagePushHandler {
	return &MessagePushHandler{pusher: pusher}
}

func (h *MessagePushHandler) Handle(_ context.Context, event contracts.MessageSentEvent) error {
	h.pusher.Push(event.RecipientID, "message", event)
	h.pusher.Push(event.SenderID, "message", event)
	return nil
}
