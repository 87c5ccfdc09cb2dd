package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/domain"
)

const expireBatchSize = 100

// ExpireHandler closes active subscriptions whose period has ended. Each
// subscription expires in its own unit of work so one failure does not
// hold back the rest.
type ExpireHandler struct {
	subs   domain.SubscriptionRepository
	uow    *eventbus.UnitOfWork
	logger *slog.Logger
}

func NewExpireHandler(subs domain.SubscriptionRepository, uow *eventbus.UnitOfWork, logger *slog.Logger) *ExpireHandler {
	return &ExpireHandler{subs: subs, uow: uow, logger: logger}
}

// Sweep expires every lapsed subscription as of now and returns how many
// were expired.
func (h *ExpireHandler) Sweep(ctx context.Context, now time.Time) (int, error) {
	active := domain.StatusActive
	filter := domain.SubscriptionFilter{Status: &active, PeriodEndsBefore: &now}
	failed := make(map[types.SubscriptionID]bool)
	expired := 0
	for {
		if err := ctx.Err(); err != nil {
			return expired, err
		}
		// Expired rows leave the filter; failed ones stay and are skipped by
		// reading past them.
		batch, _, err := h.subs.List(ctx, filter, types.Page{Number: len(failed)/expireBatchSize + 1, Size: expireBatchSize})
		if err != nil {
			return expired, fmt.Errorf("listing lapsed subscriptions: %w", err)
		}
		progressed := false
		for _, sub := range batch {
			if failed[sub.ID()] {
				continue
			}
			progressed = true
			if err := h.expire(ctx, sub.ID(), now); err != nil {
				failed[sub.ID()] = true
				h.logger.ErrorContext(ctx, "expiring subscription failed",
					slog.String("subscription_id", sub.ID().String()),
					slog.Any("error", err),
				)
				continue
			}
			expired++
		}
		if !progressed {
			return expired, nil
		}
	}
}

func (h *ExpireHandler) expire(ctx context.Context, id types.SubscriptionID, now time.Time) error {
	return h.uow.Execute(ctx, "subscriptions.Expire", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		sub, err := h.subs.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := sub.Expire(now); err != nil {
			return err
		}
		if err := h.subs.Save(ctx, sub); err != nil {
			return fmt.Errorf("saving subscription: %w", err)
		}
		return bus.Collect(ctx, sub)
	})
}
