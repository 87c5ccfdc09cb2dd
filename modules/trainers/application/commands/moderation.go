package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/domain"
)

// ModerationHandler serves the administrator actions over profiles and
// reviews.
type ModerationHandler struct {
	profiles domain.ProfileRepository
	reviews  domain.ReviewRepository
	uow      *eventbus.UnitOfWork
	now      func() time.Time
}

func NewModerationHandler(profiles domain.ProfileRepository, reviews domain.ReviewRepository, uow *eventbus.UnitOfWork) *ModerationHandler {
	return &ModerationHandler{profiles: profiles, reviews: reviews, uow: uow, now: time.Now}
}

func (h *ModerationHandler) mutateProfile(ctx context.Context, name string, id types.TrainerID, fn func(p *domain.TrainerProfile)) error {
	return h.uow.Execute(ctx, name, func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		profile, err := h.profiles.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("finding profile: %w", err)
		}
		fn(profile)
		if err := h.profiles.Save(ctx, profile); err != nil {
			return fmt.Errorf("saving profile: %w", err)
		}
		return bus.Collect(ctx, profile)
	})
}

func (h *ModerationHandler) Verify(ctx context.Context, id types.TrainerID) error {
	return h.mutateProfile(ctx, "trainers.Verify", id, func(p *domain.TrainerProfile) { p.Verify(h.now()) })
}

func (h *ModerationHandler) Reject(ctx context.Context, id types.TrainerID) error {
	return h.mutateProfile(ctx, "trainers.Reject", id, func(p *domain.TrainerProfile) { p.Reject() })
}

func (h *ModerationHandler) Suspend(ctx context.Context, id types.TrainerID) error {
	return h.mutateProfile(ctx, "trainers.Suspend", id, func(p *domain.TrainerProfile) { p.Suspend(h.now()) })
}

func (h *ModerationHandler) Unsuspend(ctx context.Context, id types.TrainerID) error {
	return h.mutateProfile(ctx, "trainers.Unsuspend", id, func(p *domain.TrainerProfile) { p.Unsuspend() })
}

// ApproveReview publishes a review and refreshes the trainer's rating.
func (h *ModerationHandler) ApproveReview(ctx context.Context, id types.ReviewID) error {
	return h.uow.Execute(ctx, "trainers.ApproveReview", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		review, err := h.reviews.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("finding review: %w", err)
		}
		profile, err := h.profiles.FindByID(ctx, review.TrainerID())
		if err != nil {
			return fmt.Errorf("finding trainer: %w", err)
		}
		if err := review.Approve(profile.UserID(), h.now()); err != nil {
			return err
		}
		if err := h.reviews.Save(ctx, review); err != nil {
			return fmt.Errorf("saving review: %w", err)
		}
		if err := refreshRating(ctx, h.profiles, h.reviews, review.TrainerID()); err != nil {
			return err
		}
		return bus.Collect(ctx, review)
	})
}

// RejectReview soft-deletes a review.
func (h *ModerationHandler) RejectReview(ctx context.Context, id types.ReviewID) error {
	return h.uow.Execute(ctx, "trainers.RejectReview", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		review, err := h.reviews.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("finding review: %w", err)
		}
		wasApproved := review.IsApproved()
		review.Reject()
		if err := h.reviews.Save(ctx, review); err != nil {
			return fmt.Errorf("saving review: %w", err)
		}
		if wasApproved {
			return refreshRating(ctx, h.profiles, h.reviews, review.TrainerID())
		}
		return nil
	})
}

// DeleteReview removes a review permanently.
func (h *ModerationHandler) DeleteReview(ctx context.Context, id types.ReviewID) error {
	return h.uow.Execute(ctx, "trainers.DeleteReview", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		review, err := h.reviews.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("finding review: %w", err)
		}
		if err := h.reviews.Delete(ctx, id); err != nil {
			return fmt.Errorf("deleting review: %w", err)
		}
		if review.IsApproved() {
			return refreshRating(ctx, h.profiles, h.reviews, review.TrainerID())
		}
		return nil
	})
}
