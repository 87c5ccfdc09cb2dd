// Package commands contains the write use cases of the subscriptions module.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/domain"
)

type SubscribeCommand struct {
	ClientID  types.UserID
	PackageID types.PackageID
	Annual    bool
}

// SubscribeHandler opens an unpaid subscription to an active package.
type SubscribeHandler struct {
	subs     domain.SubscriptionRepository
	packages api.PackageCatalog
	uow      *eventbus.UnitOfWork
	feeBps   int64
}

func NewSubscribeHandler(subs domain.SubscriptionRepository, packages api.PackageCatalog, uow *eventbus.UnitOfWork, feeBps int64) *SubscribeHandler {
	if feeBps <= 0 {
		feeBps = domain.DefaultPlatformFeeBps
	}
	return &SubscribeHandler{subs: subs, packages: packages, uow: uow, feeBps: feeBps}
}

func (h *SubscribeHandler) Handle(ctx context.Context, cmd SubscribeCommand) (types.SubscriptionID, error) {
	pkg, err := h.packages.Package(ctx, cmd.PackageID)
	if errors.Is(err, api.ErrNotFound) {
		return types.SubscriptionID{}, domain.ErrPackageUnavailable
	}
	if err != nil {
		return types.SubscriptionID{}, fmt.Errorf("loading package: %w", err)
	}
	if !pkg.IsActive {
		return types.SubscriptionID{}, domain.ErrPackageUnavailable
	}
	price := pkg.PriceMonthly
	if cmd.Annual {
		if pkg.PriceYearly == nil {
			return types.SubscriptionID{}, domain.ErrAnnualUnavailable
		}
		price = *pkg.PriceYearly
	}

	var id types.SubscriptionID
	err = h.uow.Execute(ctx, "subscriptions.Subscribe", func(ctx context.Context, _ *eventbus.TransactionalEventBus) error {
		_, err := h.subs.FindOpen(ctx, cmd.ClientID, cmd.PackageID)
		switch {
		case err == nil:
			return domain.ErrAlreadySubscribed
		case !errors.Is(err, domain.ErrSubscriptionNotFound):
			return fmt.Errorf("checking open subscriptions: %w", err)
		}

		sub := domain.NewSubscription(cmd.ClientID, domain.PackageTerms{
			PackageID:     pkg.ID,
			PackageName:   pkg.Name,
			TrainerID:     pkg.TrainerID,
			TrainerUserID: pkg.TrainerUserID,
			Price:         price,
		}, cmd.Annual, h.feeBps)
		if err := h.subs.Save(ctx, sub); err != nil {
			return fmt.Errorf("saving subscription: %w", err)
		}
		id = sub.ID()
		return nil
	})
	return id, err
}
