// Package queries contains the read use cases of the messaging module.
package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/messaging/domain"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type MessageDTO struct {
	ID          types.MessageID    `json:"id"`
	ThreadID    types.ThreadID     `json:"threadId"`
	SenderID    types.UserID       `json:"senderId"`
	RecipientID types.UserID       `json:"recipientId"`
	Type        domain.MessageType `json:"type"`
	Content     string             `json:"content"`
	MediaURL    string             `json:"mediaUrl,omitempty"`
	IsRead      bool               `json:"isRead"`
	ReadAt      *time.Time         `json:"readAt,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func toMessageDTO(m *domain.Message) *MessageDTO {
	return &MessageDTO{
		ID:          m.ID(),
		ThreadID:    m.ThreadID(),
		SenderID:    m.SenderID(),
		RecipientID: m.RecipientID(),
		Type:        m.Type(),
		Content:     m.Content(),
		MediaURL:    m.MediaURL(),
		IsRead:      m.IsRead(),
		ReadAt:      m.ReadAt(),
		CreatedAt:   m.CreatedAt(),
	}
}

type ChatDTO struct {
	ThreadID      types.ThreadID  `json:"threadId"`
	ClientID      types.UserID    `json:"clientId"`
	TrainerID     types.TrainerID `json:"trainerId"`
	TrainerUserID types.UserID    `json:"trainerUserId"`
	OtherUserID   types.UserID    `json:"otherUserId"`
	IsPriority    bool            `json:"isPriority"`
	LastMessage   *MessageDTO     `json:"lastMessage,omitempty"`
	LastMessageAt *time.Time      `json:"lastMessageAt,omitempty"`
	UnreadCount   int             `json:"unreadCount"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type ChatQueries struct {
	threads  domain.ThreadRepository
	messages domain.MessageRepository
}

func NewChatQueries(threads domain.ThreadRepository, messages domain.MessageRepository) *ChatQueries {
	return &ChatQueries{threads: threads, messages: messages}
}

// Chats lists the conversations of userID with their unread counts.
func (q *ChatQueries) Chats(ctx context.Context, userID types.UserID, page types.Page) (types.Paged[*ChatDTO], error) {
	rows, total, err := q.threads.ListForUser(ctx, userID, page)
	if err != nil {
		return types.Paged[*ChatDTO]{}, fmt.Errorf("listing chats: %w", err)
	}
	items := make([]*ChatDTO, 0, len(rows))
	for _, row := range rows {
		th := row.Thread
		dto := &ChatDTO{
			ThreadID:      th.ID(),
			ClientID:      th.ClientID(),
			TrainerID:     th.TrainerID(),
			TrainerUserID: th.TrainerUserID(),
			OtherUserID:   th.Counterpart(userID),
			IsPriority:    th.IsPriority(),
			LastMessageAt: th.LastMessageAt(),
			UnreadCount:   row.UnreadCount,
			CreatedAt:     th.CreatedAt(),
		}
		if row.LastMessage != nil {
			dto.LastMessage = toMessageDTO(row.LastMessage)
		}
		items = append(items, dto)
	}
	return types.NewPaged(items, total, page), nil
}

// Messages pages through a thread, newest first. Participants and
// administrators may read it.
func (q *ChatQueries) Messages(ctx context.Context, viewer sharedauth.Principal, id types.ThreadID, page types.Page) (types.Paged[*MessageDTO], error) {
	th, err := q.threads.FindByID(ctx, id)
	if err != nil {
		return types.Paged[*MessageDTO]{}, err
	}
	if !viewer.IsAdmin() && !th.HasParticipant(viewer.UserID) {
		return types.Paged[*MessageDTO]{}, domain.ErrNotParticipant
	}
	msgs, total, err := q.messages.ListByThread(ctx, id, page)
	if err != nil {
		return types.Paged[*MessageDTO]{}, fmt.Errorf("listing messages: %w", err)
	}
	items := make([]*MessageDTO, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, toMessageDTO(m))
	}
	return types.NewPaged(items, total, page), nil
}

func (q *ChatQueries) UnreadCount(ctx context.Context, userID types.UserID) (int, error) {
	return q.messages.UnreadCount(ctx, userID)
}
