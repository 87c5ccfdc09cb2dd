// Package commands contains the write use cases of the clients module.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/clients/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// UpsertProfileHandler creates the caller's profile or replaces its fields.
type UpsertProfileHandler struct {
	profiles domain.ProfileRepository
	uow      *eventbus.UnitOfWork
}

func NewUpsertProfileHandler(profiles domain.ProfileRepository, uow *eventbus.UnitOfWork) *UpsertProfileHandler {
	return &UpsertProfileHandler{profiles: profiles, uow: uow}
}

// Handle reports whether the profile was created.
func (h *UpsertProfileHandler) Handle(ctx context.Context, userID types.UserID, details domain.ProfileDetails) (bool, error) {
	created := false
	err := h.uow.Execute(ctx, "clients.UpsertProfile", func(ctx context.Context, _ *eventbus.TransactionalEventBus) error {
		p, err := h.profiles.FindByUser(ctx, userID)
		switch {
		case err == nil:
			if err := p.Update(details); err != nil {
				return err
			}
		case errors.Is(err, domain.ErrProfileNotFound):
			if p, err = domain.NewProfile(userID, details); err != nil {
				return err
			}
			created = true
		default:
			return fmt.Errorf("finding profile: %w", err)
		}
		return h.profiles.Save(ctx, p)
	})
	return created, err
}
