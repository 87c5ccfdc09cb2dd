package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/domain"
)

// AddReviewCommand rates a trainer the client has subscribed to.
type AddReviewCommand struct {
	ClientID  types.UserID
	TrainerID types.TrainerID
	Rating    int
	Comment   string
}

type AddReviewHandler struct {
	profiles domain.ProfileRepository
	reviews  domain.ReviewRepository
	links    domain.ClientLinkRepository
	uow      *eventbus.UnitOfWork
}

func NewAddReviewHandler(profiles domain.ProfileRepository, reviews domain.ReviewRepository, links domain.ClientLinkRepository, uow *eventbus.UnitOfWork) *AddReviewHandler {
	return &AddReviewHandler{profiles: profiles, reviews: reviews, links: links, uow: uow}
}

func (h *AddReviewHandler) Handle(ctx context.Context, cmd AddReviewCommand) (types.ReviewID, error) {
	var id types.ReviewID
	err := h.uow.Execute(ctx, "trainers.AddReview", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		profile, err := h.profiles.FindByID(ctx, cmd.TrainerID)
		if err != nil {
			return fmt.Errorf("finding trainer: %w", err)
		}
		if profile.UserID() == cmd.ClientID {
			return domain.ErrCannotReviewSelf
		}
		link, err := h.links.Find(ctx, cmd.TrainerID, cmd.ClientID)
		if err != nil {
			return fmt.Errorf("finding client link: %w", err)
		}
		if link == nil {
			return domain.ErrNeverSubscribed
		}
		_, err = h.reviews.FindByTrainerAndClient(ctx, cmd.TrainerID, cmd.ClientID)
		switch {
		case err == nil:
			return domain.ErrReviewExists
		case !errors.Is(err, domain.ErrReviewNotFound):
			return fmt.Errorf("finding review: %w", err)
		}

		review, err := domain.NewReview(cmd.TrainerID, cmd.ClientID, cmd.Rating, cmd.Comment)
		if err != nil {
			return err
		}
		if err := h.reviews.Save(ctx, review); err != nil {
			return fmt.Errorf("saving review: %w", err)
		}
		id = review.ID()
		return bus.Collect(ctx, review)
	})
	return id, err
}

// EditReviewCommand changes the author's own review.
type EditReviewCommand struct {
	ClientID types.UserID
	ReviewID types.ReviewID
	Rating   int
	Comment  string
}

type EditReviewHandler struct {
	profiles domain.ProfileRepository
	reviews  domain.ReviewRepository
	uow      *eventbus.UnitOfWork
	now      func() time.Time
}

func NewEditReviewHandler(profiles domain.ProfileRepository, reviews domain.ReviewRepository, uow *eventbus.UnitOfWork) *EditReviewHandler {
	return &EditReviewHandler{profiles: profiles, reviews: reviews, uow: uow, now: time.Now}
}

func (h *EditReviewHandler) Handle(ctx context.Context, cmd EditReviewCommand) error {
	return h.uow.Execute(ctx, "trainers.EditReview", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		review, err := h.reviews.FindByID(ctx, cmd.ReviewID)
		if err != nil {
			return fmt.Errorf("finding review: %w", err)
		}
		wasApproved := review.IsApproved()
		if err := review.Edit(cmd.ClientID, cmd.Rating, cmd.Comment, h.now()); err != nil {
			return err
		}
		if err := h.reviews.Save(ctx, review); err != nil {
			return fmt.Errorf("saving review: %w", err)
		}
		if wasApproved {
			if err := refreshRating(ctx, h.profiles, h.reviews, review.TrainerID()); err != nil {
				return err
			}
		}
		return bus.Collect(ctx, review)
	})
}

// refreshRating recomputes a trainer's average from approved reviews.
func refreshRating(ctx context.Context, profiles domain.ProfileRepository, reviews domain.ReviewRepository, trainerID types.TrainerID) error {
	avg, _, err := reviews.ApprovedRating(ctx, trainerID)
	if err != nil {
		return fmt.Errorf("computing rating: %w", err)
	}
	profile, err := profiles.FindByID(ctx, trainerID)
	if err != nil {
		return fmt.Errorf("finding trainer: %w", err)
	}
	profile.SetRating(avg)
	if err := profiles.Save(ctx, profile); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}
