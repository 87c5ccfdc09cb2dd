package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/domain"
)

type CancelCommand struct {
	SubscriptionID types.SubscriptionID
	Reason         string
}

// CancelHandler ends a subscription on behalf of its client or an
// administrator. Administrators must give a reason.
type CancelHandler struct {
	subs domain.SubscriptionRepository
	uow  *eventbus.UnitOfWork
	now  func() time.Time
}

func NewCancelHandler(subs domain.SubscriptionRepository, uow *eventbus.UnitOfWork) *CancelHandler {
	return &CancelHandler{subs: subs, uow: uow, now: time.Now}
}

func (h *CancelHandler) Handle(ctx context.Context, cmd CancelCommand) error {
	p, err := sharedauth.Require(ctx)
	if err != nil {
		return err
	}
	return h.uow.Execute(ctx, "subscriptions.Cancel", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		sub, err := h.subs.FindByID(ctx, cmd.SubscriptionID)
		if err != nil {
			return err
		}
		switch {
		case p.IsAdmin():
			if strings.TrimSpace(cmd.Reason) == "" {
				return domain.ErrReasonRequired
			}
		case !sub.BelongsTo(p.UserID):
			return domain.ErrNotSubscriber
		}
		if err := sub.Cancel(cmd.Reason, h.now()); err != nil {
			return err
		}
		if err := h.subs.Save(ctx, sub); err != nil {
			return fmt.Errorf("saving subscription: %w", err)
		}
		return bus.Collect(ctx, sub)
	})
}
