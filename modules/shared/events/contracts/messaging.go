package contracts

import (
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

const (
	MessageSentEventType events.EventType = "messaging.MessageSent"
)

// MessageSentEvent is published for every chat message. The realtime hub
// forwards it to connected participants.
type MessageSentEvent struct {
	events.BaseEvent
	MessageID   types.MessageID `json:"messageId"`
	ThreadID    types.ThreadID  `json:"threadId"`
	SenderID    types.UserID    `json:"senderId"`
	RecipientID types.UserID    `json:"recipientId"`
	Content     string          `json:"content"`
	MediaURL    string          `json:"mediaUrl,omitempty"`
	Type        string          `json:"type"`
	SentAt      time.Time       `json:"sentAt"`
}
