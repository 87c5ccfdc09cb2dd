package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
)

// LoginCommand signs in with an email or a user name.
type LoginCommand struct {
	EmailOrUserName string
	Password        string
}

type LoginHandler struct {
	repo   domain.UserRepository
	uow    *eventbus.UnitOfWork
	hasher domain.PasswordHasher
	tokens domain.TokenIssuer
	now    func() time.Time
}

func NewLoginHandler(repo domain.UserRepository, uow *eventbus.UnitOfWork, hasher domain.PasswordHasher, tokens domain.TokenIssuer) *LoginHandler {
	return &LoginHandler{repo: repo, uow: uow, hasher: hasher, tokens: tokens, now: time.Now}
}

// Handle verifies the credentials. Unknown accounts and wrong passwords
// both yield ErrInvalidCredentials.
func (h *LoginHandler) Handle(ctx context.Context, cmd LoginCommand) (AuthResult, error) {
	user, err := h.lookup(ctx, cmd.EmailOrUserName)
	if err != nil {
		return AuthResult{}, err
	}

	now := h.now()
	if err := user.CanSignIn(now); err != nil {
		return AuthResult{}, err
	}
	if !user.HasPassword() {
		return AuthResult{}, domain.ErrInvalidCredentials
	}
	if err := h.hasher.Compare(user.PasswordHash(), cmd.Password); err != nil {
		return AuthResult{}, err
	}

	user.RecordSignIn(domain.MethodPassword, now)
	err = h.uow.Execute(ctx, "identity.Login", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
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

// lookup tries the email first, then the user name.
func (h *LoginHandler) lookup(ctx context.Context, login string) (*domain.User, error) {
	login = strings.TrimSpace(login)
	if email, err := domain.NewEmail(login); err == nil {
		user, err := h.repo.FindByEmail(ctx, email)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("finding user by email: %w", err)
		}
	}

	userName, err := domain.NewUserName(login)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	user, err := h.repo.FindByUserName(ctx, userName)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("finding user by user name: %w", err)
	}
	return user, nil
}
