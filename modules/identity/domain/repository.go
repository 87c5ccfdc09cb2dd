package domain

import (
	"context"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// UserFilter narrows administrative user listings.
type UserFilter struct {
	// Search matches full name, email or user name, case-insensitively.
	Search string
	Role   *types.Role
	// IncludeDeleted also returns soft-deleted accounts.
	IncludeDeleted bool
}

// Statistics summarizes the account base.
type Statistics struct {
	Total          int `db:"total"`
	Clients        int `db:"clients"`
	Trainers       int `db:"trainers"`
	Admins         int `db:"admins"`
	Suspended      int `db:"suspended"`
	ActiveLastWeek int `db:"active_last_week"`
	NewThisMonth   int `db:"new_this_month"`
}

// ClientTrainerRatio returns clients per trainer, or 0 without trainers.
func (s Statistics) ClientTrainerRatio() float64 {
	if s.Trainers == 0 {
		return 0
	}
	return float64(s.Clients) / float64(s.Trainers)
}

// UserRepository defines the persistence interface for users.
// This is a port - defined in domain, implemented in infrastructure.
type UserRepository interface {
	// Save persists a user (create or update) with its external logins.
	Save(ctx context.Context, user *User) error

	// FindByID retrieves a user by ID, including deleted ones.
	// Returns ErrUserNotFound if user doesn't exist.
	FindByID(ctx context.Context, id types.UserID) (*User, error)

	// FindByEmail retrieves a non-deleted user by email.
	FindByEmail(ctx context.Context, email Email) (*User, error)

	// FindByUserName retrieves a non-deleted user by user name.
	FindByUserName(ctx context.Context, userName UserName) (*User, error)

	// FindByLogin retrieves the user linked to an external login.
	FindByLogin(ctx context.Context, login ExternalLogin) (*User, error)

	// FindByIDs retrieves the existing users among ids.
	FindByIDs(ctx context.Context, ids []types.UserID) ([]*User, error)

	// EmailTaken reports whether another account uses email.
	EmailTaken(ctx context.Context, email Email, except types.UserID) (bool, error)

	// UserNameTaken reports whether another account uses userName.
	UserNameTaken(ctx context.Context, userName UserName, except types.UserID) (bool, error)

	// List retrieves one page of users, newest first.
	List(ctx context.Context, filter UserFilter, page types.Page) ([]*User, int, error)

	// ListAll retrieves every user matching filter, newest first.
	ListAll(ctx context.Context, filter UserFilter) ([]*User, error)

	// CountByRole counts non-deleted users holding role.
	CountByRole(ctx context.Context, role types.Role) (int, error)

	// Statistics aggregates account counts relative to now.
	Statistics(ctx context.Context, now time.Time) (Statistics, error)
}
