// Package commands contains the write use cases of the trainers module.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/domain"
)

// CreateProfileCommand opens the caller's trainer storefront.
type CreateProfileCommand struct {
	UserID  types.UserID
	Role    types.Role
	Handle  string
	Details domain.ProfileDetails
}

type CreateProfileHandler struct {
	repo domain.ProfileRepository
	uow  *eventbus.UnitOfWork
}

func NewCreateProfileHandler(repo domain.ProfileRepository, uow *eventbus.UnitOfWork) *CreateProfileHandler {
	return &CreateProfileHandler{repo: repo, uow: uow}
}

func (h *CreateProfileHandler) Handle(ctx context.Context, cmd CreateProfileCommand) (types.TrainerID, error) {
	if cmd.Role != types.RoleTrainer {
		return types.TrainerID{}, domain.ErrNotTrainer
	}
	handle, err := domain.NewHandle(cmd.Handle)
	if err != nil {
		return types.TrainerID{}, err
	}

	var id types.TrainerID
	err = h.uow.Execute(ctx, "trainers.CreateProfile", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		_, err := h.repo.FindByUserID(ctx, cmd.UserID)
		switch {
		case err == nil:
			return domain.ErrProfileExists
		case !errors.Is(err, domain.ErrProfileNotFound):
			return fmt.Errorf("finding profile: %w", err)
		}
		if err := ensureHandleFree(ctx, h.repo, handle, types.TrainerID{}); err != nil {
			return err
		}

		profile, err := domain.NewProfile(cmd.UserID, handle, cmd.Details)
		if err != nil {
			return err
		}
		if err := h.repo.Save(ctx, profile); err != nil {
			return fmt.Errorf("saving profile: %w", err)
		}
		id = profile.ID()
		return bus.Collect(ctx, profile)
	})
	return id, err
}

func ensureHandleFree(ctx context.Context, repo domain.ProfileRepository, handle domain.Handle, self types.TrainerID) error {
	taken, err := repo.HandleTaken(ctx, handle, self)
	if err != nil {
		return fmt.Errorf("checking handle: %w", err)
	}
	if taken {
		return domain.ErrHandleTaken
	}
	return nil
}

// UpdateProfileCommand replaces the caller's profile fields.
type UpdateProfileCommand struct {
	UserID  types.UserID
	Handle  string
	Details domain.ProfileDetails
}

type UpdateProfileHandler struct {
	repo domain.ProfileRepository
	uow  *eventbus.UnitOfWork
}

func NewUpdateProfileHandler(repo domain.ProfileRepository, uow *eventbus.UnitOfWork) *UpdateProfileHandler {
	return &UpdateProfileHandler{repo: repo, uow: uow}
}

func (h *UpdateProfileHandler) Handle(ctx context.Context, cmd UpdateProfileCommand) error {
	handle, err := domain.NewHandle(cmd.Handle)
	if err != nil {
		return err
	}
	return h.uow.Execute(ctx, "trainers.UpdateProfile", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		profile, err := h.repo.FindByUserID(ctx, cmd.UserID)
		if err != nil {
			return fmt.Errorf("finding profile: %w", err)
		}
		if err := ensureHandleFree(ctx, h.repo, handle, profile.ID()); err != nil {
			return err
		}
		if err := profile.Update(handle, cmd.Details); err != nil {
			return err
		}
		if err := h.repo.Save(ctx, profile); err != nil {
			return fmt.Errorf("saving profile: %w", err)
		}
		return bus.Collect(ctx, profile)
	})
}

// UpdateStatusCommand sets the short status shown on the trainer's page.
type UpdateStatusCommand struct {
	UserID      types.UserID
	ImageURL    string
	Description string
}

type UpdateStatusHandler struct {
	repo domain.ProfileRepository
	uow  *eventbus.UnitOfWork
}

func NewUpdateStatusHandler(repo domain.ProfileRepository, uow *eventbus.UnitOfWork) *UpdateStatusHandler {
	return &UpdateStatusHandler{repo: repo, uow: uow}
}

func (h *UpdateStatusHandler) Handle(ctx context.Context, cmd UpdateStatusCommand) error {
	return h.uow.Execute(ctx, "trainers.UpdateStatus", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		profile, err := h.repo.FindByUserID(ctx, cmd.UserID)
		if err != nil {
			return fmt.Errorf("finding profile: %w", err)
		}
		if err := profile.UpdateStatus(cmd.ImageURL, cmd.Description); err != nil {
			return err
		}
		if err := h.repo.Save(ctx, profile); err != nil {
			return fmt.Errorf("saving profile: %w", err)
		}
		return bus.Collect(ctx, profile)
	})
}
