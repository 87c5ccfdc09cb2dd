// Package eventhandlers reacts to events of other modules inside the
// transaction that raised them.
package eventhandlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/domain"
)

// UserDeletedHandler suspends the storefront of a deleted trainer account.
type UserDeletedHandler struct {
	profiles domain.ProfileRepository
	logger   *slog.Logger
}

func NewUserDeletedHandler(profiles domain.ProfileRepository, logger *slog.Logger) *UserDeletedHandler {
	return &UserDeletedHandler{profiles: profiles, logger: logger}
}

func (h *UserDeletedHandler) Handle(ctx context.Context, event contracts.UserDeletedEvent) error {
	profile, err := h.profiles.FindByUserID(ctx, event.UserID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("finding profile: %w", err)
	}

	profile.Suspend(time.Now())
	if err := h.profiles.Save(ctx, profile); err != nil {
		return fmt.Errorf("saving profile %s: %w", profile.ID(), err)
	}
	h.logger.InfoContext(ctx, "suspended profile of deleted user",
		slog.String("trainer_id", profile.ID().String()),
		slog.String("user_id", event.UserID.String()),
	)
	return eventbus.CollectFrom(ctx, profile)
}
