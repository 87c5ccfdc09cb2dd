// Package queries contains the read use cases of the notifications module.
package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/notifications/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type NotificationDTO struct {
	ID              types.NotificationID `json:"id"`
	Title           string               `json:"title"`
	Message         string               `json:"message"`
	Type            domain.Type          `json:"type"`
	RelatedEntityID string               `json:"relatedEntityId,omitempty"`
	IsRead          bool                 `json:"isRead"`
	ReadAt          *time.Time           `json:"readAt,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
}

func toDTO(n *domain.Notification) *NotificationDTO {
	return &NotificationDTO{
		ID:              n.ID(),
		Title:           n.Title(),
		Message:         n.Message(),
		Type:            n.Type(),
		RelatedEntityID: n.RelatedEntityID(),
		IsRead:          n.IsRead(),
		ReadAt:          n.ReadAt(),
		CreatedAt:       n.CreatedAt(),
	}
}

type Queries struct {
	repo domain.Repository
}

func NewQueries(repo domain.Repository) *Queries {
	return &Queries{repo: repo}
}

func (q *Queries) List(ctx context.Context, userID types.UserID, unreadOnly bool, page types.Page) (types.Paged[*NotificationDTO], error) {
	items, total, err := q.repo.List(ctx, domain.Filter{UserID: userID, UnreadOnly: unreadOnly}, page)
	if err != nil {
		return types.Paged[*NotificationDTO]{}, fmt.Errorf("listing notifications: %w", err)
	}
	out := make([]*NotificationDTO, len(items))
	for i, n := range items {
		out[i] = toDTO(n)
	}
	return types.NewPaged(out, total, page), nil
}

func (q *Queries) UnreadCount(ctx context.Context, userID types.UserID) (int, error) {
	return q.repo.UnreadCount(ctx, userID)
}
