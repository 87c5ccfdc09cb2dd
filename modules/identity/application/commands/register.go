package commands

import (
	"context"
	"fmt"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// RegisterCommand represents the intent to open a password account.
type RegisterCommand struct {
	FullName string
	UserName string
	Email    string
	Password string
	// Role is Client or Trainer; empty means Client.
	Role string
}

// RegisterHandler handles the RegisterCommand.
type RegisterHandler struct {
	repo   domain.UserRepository
	uow    *eventbus.UnitOfWork
	hasher domain.PasswordHasher
	tokens domain.TokenIssuer
}

func NewRegisterHandler(repo domain.UserRepository, uow *eventbus.UnitOfWork, hasher domain.PasswordHasher, tokens domain.TokenIssuer) *RegisterHandler {
	return &RegisterHandler{repo: repo, uow: uow, hasher: hasher, tokens: tokens}
}

// Handle executes the register use case and signs the new user in.
func (h *RegisterHandler) Handle(ctx context.Context, cmd RegisterCommand) (AuthResult, error) {
	// Validate and create value objects
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return AuthResult{}, err
	}
	userName, err := domain.NewUserName(cmd.UserName)
	if err != nil {
		return AuthResult{}, err
	}
	fullName, err := domain.NewFullName(cmd.FullName)
	if err != nil {
		return AuthResult{}, err
	}
	role := types.RoleClient
	if cmd.Role != "" {
		if role, err = types.ParseRole(cmd.Role); err != nil {
			return AuthResult{}, err
		}
	}
	if err := domain.ValidatePassword(cmd.Password); err != nil {
		return AuthResult{}, err
	}

	hash, err := h.hasher.Hash(cmd.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hashing password: %w", err)
	}

	user, err := domain.NewUser(userName, email, fullName, role, hash)
	if err != nil {
		return AuthResult{}, err
	}

	err = h.uow.Execute(ctx, "identity.Register", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		if err := ensureUnique(ctx, h.repo, email, userName, types.UserID{}); err != nil {
			return err
		}
		if err := h.repo.Save(ctx, user); err != nil {
			return fmt.Errorf("saving user: %w", err)
		}
		return bus.Collect(ctx, user)
	})
	if err != nil {
		return AuthResult{}, err
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		return AuthResult{}, err
	}
	return newAuthResult(user, token), nil
}
