package eventhandlers

import (
	"context"
	"fmt"

	"github.com/AlagappanMk24/Gymunity/modules/notifications/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func (h *Handlers) TrainerVerified(ctx context.Context, e contracts.TrainerVerifiedEvent) error {
	return h.notifier.Notify(ctx, []types.UserID{e.UserID}, domain.TypeTrainerVerified,
		"Profile verified", "Your trainer profile is verified and now visible in search.", e.TrainerID.String())
}

// ReviewSubmitted asks administrators to moderate the review.
func (h *Handlers) ReviewSubmitted(ctx context.Context, e contracts.ReviewSubmittedEvent) error {
	admins, err := h.users.Admins(ctx)
	if err != nil {
		return fmt.Errorf("listing admins: %w", err)
	}
	message := fmt.Sprintf("A %d-star review is waiting for approval.", e.Rating)
	return h.notifier.Notify(ctx, ids(admins, types.UserID{}), domain.TypeNewReview, "New review pending approval", message, e.ReviewID.String())
}
