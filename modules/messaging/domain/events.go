package domain

import (
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
)

func newMessageSentEvent(m *Message) contracts.MessageSentEvent {
	return contracts.MessageSentEvent{
		BaseEvent:   events.NewBaseEvent(contracts.MessageSentEventType, m.threadID.String()),
		MessageID:   m.id,
		ThreadID:    m.threadID,
		SenderID:    m.senderID,
		RecipientID: m.recipientID,
		Content:     m.content,
		MediaURL:    m.mediaURL,
		Type:        m.kind.String(),
		SentAt:      m.createdAt,
	}
}
