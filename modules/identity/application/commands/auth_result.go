// Package commands contains write use cases for the identity module.
// Commands change state and typically don't return data (except IDs
// and freshly issued tokens).
package commands

import (
	"context"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// AuthResult is returned by every flow that signs a user in.
type AuthResult struct {
	ID              types.UserID `json:"id"`
	Name            string       `json:"name"`
	UserName        string       `json:"userName"`
	Email           string       `json:"email"`
	Role            types.Role   `json:"role"`
	ProfilePhotoURL string       `json:"profilePhotoUrl,omitempty"`
	Token           string       `json:"token"`
	ExpiresAt       time.Time    `json:"expiresAt"`
}

func newAuthResult(u *domain.User, token domain.AccessToken) AuthResult {
	return AuthResult{
		ID:              u.ID(),
		Name:            u.FullName().String(),
		UserName:        u.UserName().String(),
		Email:           u.Email().String(),
		Role:            u.Role(),
		ProfilePhotoURL: u.PhotoURL(),
		Token:           token.Value,
		ExpiresAt:       token.ExpiresAt,
	}
}

// ensureUnique rejects an email or user name already held by another account.
func ensureUnique(ctx context.Context, repo domain.UserRepository, email domain.Email, userName domain.UserName, self types.UserID) error {
	taken, err := repo.EmailTaken(ctx, email, self)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrEmailExists
	}
	taken, err = repo.UserNameTaken(ctx, userName, self)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrUserNameExists
	}
	return nil
}
