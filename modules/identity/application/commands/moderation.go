package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// DefaultLockMinutes applies when an administrator locks without a duration.
const DefaultLockMinutes = 30

// AdminUpdateUserCommand edits another user's account.
type AdminUpdateUserCommand struct {
	UserID     types.UserID
	FullName   string
	Email      string
	UserName   string
	IsVerified *bool
}

// ModerationHandler serves the administrator use cases over single users.
// Every method loads the user, applies one domain operation and saves it
// in a unit of work.
type ModerationHandler struct {
	repo   domain.UserRepository
	uow    *eventbus.UnitOfWork
	hasher domain.PasswordHasher
	now    func() time.Time
}

func NewModerationHandler(repo domain.UserRepository, uow *eventbus.UnitOfWork, hasher domain.PasswordHasher) *ModerationHandler {
	return &ModerationHandler{repo: repo, uow: uow, hasher: hasher, now: time.Now}
}

func (h *ModerationHandler) mutate(ctx context.Context, name string, id types.UserID, fn func(ctx context.Context, u *domain.User) error) error {
	return h.uow.Execute(ctx, name, func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		user, err := h.repo.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("finding user: %w", err)
		}
		if err := fn(ctx, user); err != nil {
			return err
		}
		if err := h.repo.Save(ctx, user); err != nil {
			return fmt.Errorf("saving user: %w", err)
		}
		return bus.Collect(ctx, user)
	})
}

func (h *ModerationHandler) Update(ctx context.Context, cmd AdminUpdateUserCommand) error {
	fullName, err := domain.NewFullName(cmd.FullName)
	if err != nil {
		return err
	}
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return err
	}
	userName, err := domain.NewUserName(cmd.UserName)
	if err != nil {
		return err
	}
	return h.mutate(ctx, "identity.AdminUpdateUser", cmd.UserID, func(ctx context.Context, u *domain.User) error {
		if err := ensureUnique(ctx, h.repo, email, userName, u.ID()); err != nil {
			return err
		}
		if err := u.UpdateProfile(userName, fullName, email, ""); err != nil {
			return err
		}
		if cmd.IsVerified != nil {
			return u.SetVerified(*cmd.IsVerified)
		}
		return nil
	})
}

func (h *ModerationHandler) Suspend(ctx context.Context, id types.UserID) error {
	return h.mutate(ctx, "identity.SuspendUser", id, func(_ context.Context, u *domain.User) error {
		return u.Suspend()
	})
}

func (h *ModerationHandler) Reactivate(ctx context.Context, id types.UserID) error {
	return h.mutate(ctx, "identity.ReactivateUser", id, func(_ context.Context, u *domain.User) error {
		return u.Reactivate(h.now())
	})
}

// Lock blocks sign-in for minutes, or DefaultLockMinutes when minutes <= 0.
func (h *ModerationHandler) Lock(ctx context.Context, id types.UserID, minutes int) error {
	if minutes <= 0 {
		minutes = DefaultLockMinutes
	}
	return h.mutate(ctx, "identity.LockUser", id, func(_ context.Context, u *domain.User) error {
		return u.Lock(h.now().Add(time.Duration(minutes) * time.Minute))
	})
}

func (h *ModerationHandler) Unlock(ctx context.Context, id types.UserID) error {
	return h.mutate(ctx, "identity.UnlockUser", id, func(_ context.Context, u *domain.User) error {
		return u.Unlock()
	})
}

// ChangeRole refuses to demote the last remaining administrator.
func (h *ModerationHandler) ChangeRole(ctx context.Context, id types.UserID, role types.Role) error {
	return h.mutate(ctx, "identity.ChangeRole", id, func(ctx context.Context, u *domain.User) error {
		return h.changeRole(ctx, u, role)
	})
}

// BulkChangeRole assigns role to every existing user among ids and returns
// how many were changed. Unknown ids are skipped.
func (h *ModerationHandler) BulkChangeRole(ctx context.Context, ids []types.UserID, role types.Role) (int, error) {
	if !role.IsValid() {
		return 0, types.ErrInvalidRole
	}
	changed := 0
	err := h.uow.Execute(ctx, "identity.BulkChangeRole", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		users, err := h.repo.FindByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("finding users: %w", err)
		}
		for _, u := range users {
			if u.IsDeleted() || u.Role() == role {
				continue
			}
			if err := h.changeRole(ctx, u, role); err != nil {
				return err
			}
			if err := h.repo.Save(ctx, u); err != nil {
				return fmt.Errorf("saving user: %w", err)
			}
			if err := bus.Collect(ctx, u); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

func (h *ModerationHandler) changeRole(ctx context.Context, u *domain.User, role types.Role) error {
	if u.Role() == types.RoleAdmin && role != types.RoleAdmin {
		admins, err := h.repo.CountByRole(ctx, types.RoleAdmin)
		if err != nil {
			return fmt.Errorf("counting admins: %w", err)
		}
		if admins <= 1 {
			return domain.ErrLastAdmin
		}
	}
	return u.ChangeRole(role)
}

// Delete soft-deletes the user. Subscriptions, trainer profile and chat
// threads are cleaned up by UserDeleted subscribers.
func (h *ModerationHandler) Delete(ctx context.Context, id types.UserID) error {
	return h.mutate(ctx, "identity.DeleteUser", id, func(ctx context.Context, u *domain.User) error {
		if u.Role() == types.RoleAdmin {
			admins, err := h.repo.CountByRole(ctx, types.RoleAdmin)
			if err != nil {
				return fmt.Errorf("counting admins: %w", err)
			}
			if admins <= 1 {
				return domain.ErrLastAdmin
			}
		}
		return u.Delete()
	})
}

// ResetPassword replaces the password with a generated one and returns it.
func (h *ModerationHandler) ResetPassword(ctx context.Context, id types.UserID) (string, error) {
	password, err := temporaryPassword()
	if err != nil {
		return "", err
	}
	hash, err := h.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	err = h.mutate(ctx, "identity.AdminResetPassword", id, func(_ context.Context, u *domain.User) error {
		return u.SetPasswordHash(hash)
	})
	if err != nil {
		return "", err
	}
	return password, nil
}

// temporaryPassword satisfies the password policy by construction.
func temporaryPassword() (string, error) {
	token, err := newOpaqueToken(9)
	if err != nil {
		return "", err
	}
	return "Gx" + token + "7!", nil
}
