// Package queries contains read use cases for the identity module.
// Queries return data and don't change state (CQRS pattern).
package queries

import (
	"context"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// UserDTO is a read model for user data.
// DTOs are optimized for reading and decoupled from domain entities.
type UserDTO struct {
	ID              types.UserID `json:"id"`
	UserName        string       `json:"userName"`
	Email           string       `json:"email"`
	FullName        string       `json:"fullName"`
	ProfilePhotoURL string       `json:"profilePhotoUrl,omitempty"`
	Role            types.Role   `json:"role"`
	IsVerified      bool         `json:"isVerified"`
	EmailConfirmed  bool         `json:"emailConfirmed"`
	HasPassword     bool         `json:"hasPassword"`
	Status          string       `json:"status"`
	LockoutEnd      *time.Time   `json:"lockoutEnd,omitempty"`
	LastLoginAt     *time.Time   `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// GetUserHandler serves both the admin user view and Me.
type GetUserHandler struct {
	repo domain.UserRepository
}

func NewGetUserHandler(repo domain.UserRepository) *GetUserHandler {
	return &GetUserHandler{repo: repo}
}

// Handle executes the get user query.
func (h *GetUserHandler) Handle(ctx context.Context, id types.UserID) (*UserDTO, error) {
	user, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserDTO(user, time.Now()), nil
}

func toUserDTO(user *domain.User, now time.Time) *UserDTO {
	return &UserDTO{
		ID:              user.ID(),
		UserName:        user.UserName().String(),
		Email:           user.Email().String(),
		FullName:        user.FullName().String(),
		ProfilePhotoURL: user.PhotoURL(),
		Role:            user.Role(),
		IsVerified:      user.IsVerified(),
		EmailConfirmed:  user.EmailConfirmed(),
		HasPassword:     user.HasPassword(),
		Status:          user.Status(now).String(),
		LockoutEnd:      user.LockoutEnd(),
		LastLoginAt:     user.LastLoginAt(),
		CreatedAt:       user.CreatedAt(),
		UpdatedAt:       user.UpdatedAt(),
	}
}
