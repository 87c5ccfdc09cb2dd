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

// GoogleAuthCommand signs in with a Google ID token.
type GoogleAuthCommand struct {
	IDToken string
}

type GoogleAuthHandler struct {
	repo     domain.UserRepository
	uow      *eventbus.UnitOfWork
	verifier domain.GoogleVerifier
	tokens   domain.TokenIssuer
	now      func() time.Time
}

func NewGoogleAuthHandler(repo domain.UserRepository, uow *eventbus.UnitOfWork, verifier domain.GoogleVerifier, tokens domain.TokenIssuer) *GoogleAuthHandler {
	return &GoogleAuthHandler{repo: repo, uow: uow, verifier: verifier, tokens: tokens, now: time.Now}
}

// Handle resolves the Google identity to an account: an already linked
// login, an existing account with the same email (which gets linked), or a
// brand new client account.
func (h *GoogleAuthHandler) Handle(ctx context.Context, cmd GoogleAuthCommand) (AuthResult, error) {
	identity, err := h.verifier.Verify(ctx, cmd.IDToken)
	if err != nil {
		return AuthResult{}, err
	}
	if !identity.EmailVerified {
		return AuthResult{}, domain.ErrGoogleEmailUnverified
	}
	email, err := domain.NewEmail(identity.Email)
	if err != nil {
		return AuthResult{}, err
	}
	login := domain.ExternalLogin{Provider: domain.ProviderGoogle, ProviderKey: identity.Subject}

	var user *domain.User
	err = h.uow.Execute(ctx, "identity.GoogleAuth", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		user, err = h.resolve(ctx, identity, email, login)
		if err != nil {
			return err
		}
		if err := user.CanSignIn(h.now()); err != nil {
			return err
		}
		user.RecordSignIn(domain.MethodGoogle, h.now())
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

func (h *GoogleAuthHandler) resolve(ctx context.Context, identity domain.GoogleIdentity, email domain.Email, login domain.ExternalLogin) (*domain.User, error) {
	user, err := h.repo.FindByLogin(ctx, login)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("finding user by login: %w", err)
	}

	user, err = h.repo.FindByEmail(ctx, email)
	if err == nil {
		user.LinkLogin(login)
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("finding user by email: %w", err)
	}

	name := strings.TrimSpace(identity.GivenName + " " + identity.FamilyName)
	if len(name) < 3 {
		name = email.String()
	}
	fullName, err := domain.NewFullName(name)
	if err != nil {
		return nil, err
	}
	user, err = domain.NewExternalUser(email, fullName, identity.Picture, login)
	if err != nil {
		return nil, err
	}
	taken, err := h.repo.UserNameTaken(ctx, user.UserName(), user.ID())
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrUserNameExists
	}
	return user, nil
}
