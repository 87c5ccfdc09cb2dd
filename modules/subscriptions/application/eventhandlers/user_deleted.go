// Package eventhandlers reacts to events of other modules inside the
// transaction that raised them.
package eventhandlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/domain"
)

const accountDeletedReason = "Account deleted"

// UserDeletedHandler cancels every open subscription of a deleted client.
type UserDeletedHandler struct {
	subs   domain.SubscriptionRepository
	logger *slog.Logger
}

func NewUserDeletedHandler(subs domain.SubscriptionRepository, logger *slog.Logger) *UserDeletedHandler {
	return &UserDeletedHandler{subs: subs, logger: logger}
}

func (h *UserDeletedHandler) Handle(ctx context.Context, event contracts.UserDeletedEvent) error {
	now := time.Now()
	for _, status := range []domain.Status{domain.StatusUnpaid, domain.StatusActive} {
		filter := domain.SubscriptionFilter{ClientID: &event.UserID, Status: &status}
		for {
			subs, _, err := h.subs.List(ctx, filter, types.NewPage(1, types.MaxPageSize))
			if err != nil {
				return fmt.Errorf("listing subscriptions: %w", err)
			}
			if len(subs) == 0 {
				break
			}
			for _, sub := range subs {
				if err := sub.Cancel(accountDeletedReason, now); err != nil {
					return err
				}
				if err := h.subs.Save(ctx, sub); err != nil {
					return fmt.Errorf("saving subscription %s: %w", sub.ID(), err)
				}
				if err := eventbus.CollectFrom(ctx, sub); err != nil {
					return err
				}
				h.logger.InfoContext(ctx, "canceled subscription of deleted user",
					slog.String("subscription_id", sub.ID().String()),
					slog.String("user_id", event.UserID.String()),
				)
			}
		}
	}
	return nil
}
