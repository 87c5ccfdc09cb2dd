package queries

import (
	"context"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/domain"
)

type ReviewDTO struct {
	ID         types.ReviewID  `json:"id"`
	TrainerID  types.TrainerID `json:"trainerId"`
	ClientID   types.UserID    `json:"clientId"`
	ClientName string          `json:"clientName,omitempty"`
	Rating     int             `json:"rating"`
	Comment    string          `json:"comment"`
	IsEdited   bool            `json:"isEdited"`
	EditedAt   *time.Time      `json:"editedAt,omitempty"`
	IsApproved bool            `json:"isApproved"`
	ApprovedAt *time.Time      `json:"approvedAt,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func toReviewDTO(r *domain.Review) *ReviewDTO {
	return &ReviewDTO{
		ID:         r.ID(),
		TrainerID:  r.TrainerID(),
		ClientID:   r.ClientID(),
		Rating:     r.Rating(),
		Comment:    r.Comment(),
		IsEdited:   r.IsEdited(),
		EditedAt:   r.EditedAt(),
		IsApproved: r.IsApproved(),
		ApprovedAt: r.ApprovedAt(),
		CreatedAt:  r.CreatedAt(),
	}
}

// ReviewsHandler lists approved reviews publicly and pending ones for
// moderation.
type ReviewsHandler struct {
	repo  domain.ReviewRepository
	users api.UserDirectory
}

func NewReviewsHandler(repo domain.ReviewRepository, users api.UserDirectory) *ReviewsHandler {
	return &ReviewsHandler{repo: repo, users: users}
}

func (h *ReviewsHandler) Approved(ctx context.Context, trainerID types.TrainerID, page types.Page) (types.Paged[*ReviewDTO], error) {
	reviews, total, err := h.repo.ListApproved(ctx, trainerID, page)
	if err != nil {
		return types.Paged[*ReviewDTO]{}, err
	}
	return types.NewPaged(h.toDTOs(ctx, reviews), total, page), nil
}

func (h *ReviewsHandler) Pending(ctx context.Context, page types.Page) (types.Paged[*ReviewDTO], error) {
	reviews, total, err := h.repo.ListPending(ctx, page)
	if err != nil {
		return types.Paged[*ReviewDTO]{}, err
	}
	return types.NewPaged(h.toDTOs(ctx, reviews), total, page), nil
}

func (h *ReviewsHandler) PendingCount(ctx context.Context) (int, error) {
	return h.repo.CountPending(ctx)
}

func (h *ReviewsHandler) toDTOs(ctx context.Context, reviews []*domain.Review) []*ReviewDTO {
	dtos := make([]*ReviewDTO, len(reviews))
	for i, r := range reviews {
		dtos[i] = toReviewDTO(r)
		if h.users == nil {
			continue
		}
		if c, err := h.users.Contact(ctx, r.ClientID()); err == nil {
			dtos[i].ClientName = c.FullName
		}
	}
	return dtos
}
