// Package eventhandlers reacts to events of other modules.
package eventhandlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AlagappanMk24/Gymunity/modules/clients/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
)

// UserDeletedHandler erases the fitness history of a deleted account.
type UserDeletedHandler struct {
	profiles domain.ProfileRepository
	stats    domain.BodyStatRepository
	workouts domain.WorkoutLogRepository
	logger   *slog.Logger
}

func NewUserDeletedHandler(profiles domain.ProfileRepository, stats domain.BodyStatRepository, workouts domain.WorkoutLogRepository, logger *slog.Logger) *UserDeletedHandler {
	return &UserDeletedHandler{profiles: profiles, stats: stats, workouts: workouts, logger: logger}
}

func (h *UserDeletedHandler) Handle(ctx context.Context, event contracts.UserDeletedEvent) error {
	if err := h.profiles.DeleteByUser(ctx, event.UserID); err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	stats, err := h.stats.DeleteByUser(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("deleting body stats: %w", err)
	}
	workouts, err := h.workouts.DeleteByUser(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("deleting workout logs: %w", err)
	}
	if stats+workouts > 0 {
		h.logger.InfoContext(ctx, "deleted fitness history of deleted user",
			slog.String("user_id", event.UserID.String()),
			slog.Int("body_stats", stats),
			slog.Int("workouts", workouts),
		)
	}
	return nil
}
