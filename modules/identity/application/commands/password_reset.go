package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
)

// ResetTokenTTL bounds how long a reset link stays usable.
const ResetTokenTTL = time.Hour

// SendResetLinkCommand asks for a password reset email.
type SendResetLinkCommand struct {
	Email string
}

type SendResetLinkHandler struct {
	repo            domain.UserRepository
	uow             *eventbus.UnitOfWork
	store           domain.ResetTokenStore
	frontendBaseURL string
}

func NewSendResetLinkHandler(repo domain.UserRepository, uow *eventbus.UnitOfWork, store domain.ResetTokenStore, frontendBaseURL string) *SendResetLinkHandler {
	return &SendResetLinkHandler{repo: repo, uow: uow, store: store, frontendBaseURL: strings.TrimRight(frontendBaseURL, "/")}
}

// Handle reports false without error when no account uses the email.
func (h *SendResetLinkHandler) Handle(ctx context.Context, cmd SendResetLinkCommand) (bool, error) {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return false, err
	}
	user, err := h.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("finding user: %w", err)
	}

	token, err := newOpaqueToken(32)
	if err != nil {
		return false, err
	}
	if err := h.store.Save(ctx, user.ID().String(), token, ResetTokenTTL); err != nil {
		return false, fmt.Errorf("storing reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?email=%s&token=%s",
		h.frontendBaseURL, url.QueryEscape(email.String()), url.QueryEscape(token))
	if err := user.RequestPasswordReset(link); err != nil {
		return false, err
	}
	err = h.uow.Execute(ctx, "identity.SendResetLink", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		return bus.Collect(ctx, user)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// ResetPasswordCommand sets a new password with a token from the reset email.
type ResetPasswordCommand struct {
	Email       string
	Token       string
	NewPassword string
}

type ResetPasswordHandler struct {
	repo   domain.UserRepository
	uow    *eventbus.UnitOfWork
	store  domain.ResetTokenStore
	hasher domain.PasswordHasher
}

func NewResetPasswordHandler(repo domain.UserRepository, uow *eventbus.UnitOfWork, store domain.ResetTokenStore, hasher domain.PasswordHasher) *ResetPasswordHandler {
	return &ResetPasswordHandler{repo: repo, uow: uow, store: store, hasher: hasher}
}

func (h *ResetPasswordHandler) Handle(ctx context.Context, cmd ResetPasswordCommand) error {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return err
	}
	if err := domain.ValidatePassword(cmd.NewPassword); err != nil {
		return err
	}
	user, err := h.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("finding user: %w", err)
	}

	hash, err := h.hasher.Hash(cmd.NewPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := user.SetPasswordHash(hash); err != nil {
		return err
	}

	userID := user.ID().String()
	return h.uow.Execute(ctx, "identity.ResetPassword", func(ctx context.Context, _ *eventbus.TransactionalEventBus) error {
		ok, err := h.store.Consume(ctx, userID, cmd.Token)
		if err != nil {
			return fmt.Errorf("consuming reset token: %w", err)
		}
		if !ok {
			return domain.ErrInvalidResetToken
		}
		if err := h.repo.Save(ctx, user); err != nil {
			// Put the token back so the link still works on retry.
			if rerr := h.store.Save(ctx, userID, cmd.Token, ResetTokenTTL); rerr != nil {
				return errors.Join(err, fmt.Errorf("restoring reset token: %w", rerr))
			}
			return err
		}
		return nil
	})
}

func newOpaqueToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
