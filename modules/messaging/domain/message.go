package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	shareddomain "github.com/AlagappanMk24/Gymunity/modules/shared/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

const MaxContentLength = 2000

type MessageType string

const (
	MessageText  MessageType = "Text"
	MessageImage MessageType = "Image"
	MessageVideo MessageType = "Video"
	MessageAudio MessageType = "Audio"
	MessageFile  MessageType = "File"
)

func (t MessageType) String() string { return string(t) }

// ParseMessageType accepts the type names case-insensitively; empty means Text.
func ParseMessageType(s string) (MessageType, error) {
	if strings.TrimSpace(s) == "" {
		return MessageText, nil
	}
	for _, t := range []MessageType{MessageText, MessageImage, MessageVideo, MessageAudio, MessageFile} {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", ErrInvalidMessageType
}

type Message struct {
	shareddomain.AggregateRoot

	id          types.MessageID
	threadID    types.ThreadID
	senderID    types.UserID
	recipientID types.UserID
	kind        MessageType
	content     string
	mediaURL    string
	isRead      bool
	readAt      *time.Time
	createdAt   time.Time
}

func newMessage(t *Thread, sender types.UserID, kind MessageType, content, mediaURL string, now time.Time) (*Message, error) {
	content = strings.TrimSpace(content)
	mediaURL = strings.TrimSpace(mediaURL)
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, ErrContentTooLong
	}
	switch kind {
	case MessageText:
		if content == "" {
			return nil, ErrContentRequired
		}
	case MessageImage, MessageVideo, MessageAudio, MessageFile:
		if mediaURL == "" {
			return nil, ErrMediaRequired
		}
	default:
		return nil, ErrInvalidMessageType
	}
	m := &Message{
		id:          types.NewID[types.MessageKind](),
		threadID:    t.id,
		senderID:    sender,
		recipientID: t.Counterpart(sender),
		kind:        kind,
		content:     content,
		mediaURL:    mediaURL,
		createdAt:   now.UTC(),
	}
	m.AddDomainEvent(newMessageSentEvent(m))
	return m, nil
}

type MessageState struct {
	ID          types.MessageID
	ThreadID    types.ThreadID
	SenderID    types.UserID
	RecipientID types.UserID
	Type        MessageType
	Content     string
	MediaURL    string
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

func ReconstituteMessage(s MessageState) *Message {
	return &Message{
		id:          s.ID,
		threadID:    s.ThreadID,
		senderID:    s.SenderID,
		recipientID: s.RecipientID,
		kind:        s.Type,
		content:     s.Content,
		mediaURL:    s.MediaURL,
		isRead:      s.IsRead,
		readAt:      s.ReadAt,
		createdAt:   s.CreatedAt,
	}
}

func (m *Message) State() MessageState {
	return MessageState{
		ID:          m.id,
		ThreadID:    m.threadID,
		SenderID:    m.senderID,
		RecipientID: m.recipientID,
		Type:        m.kind,
		Content:     m.content,
		MediaURL:    m.mediaURL,
		IsRead:      m.isRead,
		ReadAt:      m.readAt,
		CreatedAt:   m.createdAt,
	}
}

func (m *Message) ID() types.MessageID       { return m.id }
func (m *Message) ThreadID() types.ThreadID  { return m.threadID }
func (m *Message) SenderID() types.UserID    { return m.senderID }
func (m *Message) RecipientID() types.UserID { return m.recipientID }
func (m *Message) Type() MessageType         { return m.kind }
func (m *Message) Content() string           { return m.content }
func (m *Message) MediaURL() string          { return m.mediaURL }
func (m *Message) IsRead() bool              { return m.isRead }
func (m *Message) ReadAt() *time.Time        { return m.readAt }
func (m *Message) CreatedAt() time.Time      { return m.createdAt }

// MarkRead records that the recipient has seen the message. Marking twice
// keeps the first read time.
func (m *Message) MarkRead(reader types.UserID, now time.Time) error {
	if reader != m.recipientID {
		return ErrNotRecipient
	}
	if m.isRead {
		return nil
	}
	now = now.UTC()
	m.isRead = true
	m.readAt = &now
	return nil
}
