package eventhandlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/domain"
)

// ClientCountHandler keeps TotalClients and review eligibility in step with
// subscription lifecycle events.
type ClientCountHandler struct {
	profiles domain.ProfileRepository
	links    domain.ClientLinkRepository
	logger   *slog.Logger
	now      func() time.Time
}

func NewClientCountHandler(profiles domain.ProfileRepository, links domain.ClientLinkRepository, logger *slog.Logger) *ClientCountHandler {
	return &ClientCountHandler{profiles: profiles, links: links, logger: logger, now: time.Now}
}

func (h *ClientCountHandler) Activated(ctx context.Context, event contracts.SubscriptionActivatedEvent) error {
	if event.Renewal {
		return nil
	}
	now := h.now()
	link, err := h.links.Find(ctx, event.TrainerID, event.ClientID)
	if err != nil {
		return fmt.Errorf("finding client link: %w", err)
	}
	if link == nil {
		link = domain.NewClientLink(event.TrainerID, event.ClientID, now)
	}
	joined := link.Activate(now)
	if err := h.links.Save(ctx, link); err != nil {
		return fmt.Errorf("saving client link: %w", err)
	}
	if !joined {
		return nil
	}
	return h.adjust(ctx, event.TrainerID, (*domain.TrainerProfile).ClientJoined)
}

func (h *ClientCountHandler) Canceled(ctx context.Context, event contracts.SubscriptionCanceledEvent) error {
	if !event.WasActive {
		return nil
	}
	return h.ended(ctx, event.TrainerID, event.ClientID)
}

func (h *ClientCountHandler) ended(ctx context.Context, trainerID types.TrainerID, clientID types.UserID) error {
	link, err := h.links.Find(ctx, trainerID, clientID)
	if err != nil {
		return fmt.Errorf("finding client link: %w", err)
	}
	if link == nil {
		h.logger.WarnContext(ctx, "subscription ended without a client link",
			slog.String("trainer_id", trainerID.String()),
			slog.String("client_id", clientID.String()),
		)
		return nil
	}
	left := link.Deactivate(h.now())
	if err := h.links.Save(ctx, link); err != nil {
		return fmt.Errorf("saving client link: %w", err)
	}
	if !left {
		return nil
	}
	return h.adjust(ctx, trainerID, (*domain.TrainerProfile).ClientLeft)
}

func (h *ClientCountHandler) adjust(ctx context.Context, trainerID types.TrainerID, fn func(*domain.TrainerProfile)) error {
	profile, err := h.profiles.FindByID(ctx, trainerID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("finding profile: %w", err)
	}
	fn(profile)
	if err := h.profiles.Save(ctx, profile); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}
