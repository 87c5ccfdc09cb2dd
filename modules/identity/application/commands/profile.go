package commands

import (
	"context"
	"fmt"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// UpdateProfileCommand replaces the caller's own profile fields.
type UpdateProfileCommand struct {
	UserID          types.UserID
	UserName        string
	FullName        string
	Email           string
	ProfilePhotoURL string
}

type UpdateProfileHandler struct {
	repo domain.UserRepository
	uow  *eventbus.UnitOfWork
}

func NewUpdateProfileHandler(repo domain.UserRepository, uow *eventbus.UnitOfWork) *UpdateProfileHandler {
	return &UpdateProfileHandler{repo: repo, uow: uow}
}

func (h *UpdateProfileHandler) Handle(ctx context.Context, cmd UpdateProfileCommand) error {
	userName, err := domain.NewUserName(cmd.UserName)
	if err != nil {
		return err
	}
	fullName, err := domain.NewFullName(cmd.FullName)
	if err != nil {
		return err
	}
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return err
	}

	return h.uow.Execute(ctx, "identity.UpdateProfile", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		user, err := h.repo.FindByID(ctx, cmd.UserID)
		if err != nil {
			return fmt.Errorf("finding user: %w", err)
		}
		if err := ensureUnique(ctx, h.repo, email, userName, user.ID()); err != nil {
			return err
		}
		if err := user.UpdateProfile(userName, fullName, email, cmd.ProfilePhotoURL); err != nil {
			return err
		}
		if err := h.repo.Save(ctx, user); err != nil {
			return fmt.Errorf("saving user: %w", err)
		}
		return bus.Collect(ctx, user)
	})
}

// ChangePasswordCommand replaces the caller's password.
type ChangePasswordCommand struct {
	UserID          types.UserID
	CurrentPassword string
	NewPassword     string
}

type ChangePasswordHandler struct {
	repo   domain.UserRepository
	uow    *eventbus.UnitOfWork
	hasher domain.PasswordHasher
}

func NewChangePasswordHandler(repo domain.UserRepository, uow *eventbus.UnitOfWork, hasher domain.PasswordHasher) *ChangePasswordHandler {
	return &ChangePasswordHandler{repo: repo, uow: uow, hasher: hasher}
}

// Handle requires the current password unless the account has none
// (Google-only accounts set their first password this way).
func (h *ChangePasswordHandler) Handle(ctx context.Context, cmd ChangePasswordCommand) error {
	if err := domain.ValidatePassword(cmd.NewPassword); err != nil {
		return err
	}

	return h.uow.Execute(ctx, "identity.ChangePassword", func(ctx context.Context, _ *eventbus.TransactionalEventBus) error {
		user, err := h.repo.FindByID(ctx, cmd.UserID)
		if err != nil {
			return fmt.Errorf("finding user: %w", err)
		}
		if user.HasPassword() {
			if err := h.hasher.Compare(user.PasswordHash(), cmd.CurrentPassword); err != nil {
				return domain.ErrPasswordMismatch
			}
		}
		hash, err := h.hasher.Hash(cmd.NewPassword)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}
		if err := user.SetPasswordHash(hash); err != nil {
			return err
		}
		return h.repo.Save(ctx, user)
	})
}
