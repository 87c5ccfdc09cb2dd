// Package eventhandlers reacts to events of other modules.
package eventhandlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AlagappanMk24/Gymunity/modules/messaging/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
)

// UserDeletedHandler removes the chats of a deleted account.
type UserDeletedHandler struct {
	threads domain.ThreadRepository
	logger  *slog.Logger
}

func NewUserDeletedHandler(threads domain.ThreadRepository, logger *slog.Logger) *UserDeletedHandler {
	return &UserDeletedHandler{threads: threads, logger: logger}
}

func (h *UserDeletedHandler) Handle(ctx context.Context, event contracts.UserDeletedEvent) error {
	n, err := h.threads.DeleteForUser(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("deleting threads: %w", err)
	}
	if n > 0 {
		h.logger.InfoContext(ctx, "deleted chats of deleted user",
			slog.String("user_id", event.UserID.String()),
			slog.Int("threads", n),
		)
	}
	return nil
}
