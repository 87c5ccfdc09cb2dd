// Package commands contains the write use cases of the notifications module.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/notifications/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// Handler creates notifications and records their reading.
type Handler struct {
	repo domain.Repository
	now  func() time.Time
}

func NewHandler(repo domain.Repository) *Handler {
	return &Handler{repo: repo, now: time.Now}
}

// Notify stores one notification for every recipient.
func (h *Handler) Notify(ctx context.Context, recipients []types.UserID, kind domain.Type, title, message, relatedEntityID string) error {
	if len(recipients) == 0 {
		return nil
	}
	ns := make([]*domain.Notification, 0, len(recipients))
	for _, userID := range recipients {
		n, err := domain.New(userID, kind, title, message, relatedEntityID)
		if err != nil {
			return err
		}
		ns = append(ns, n)
	}
	if err := h.repo.SaveAll(ctx, ns); err != nil {
		return fmt.Errorf("saving notifications: %w", err)
	}
	return nil
}

// MarkRead marks a notification of userID as read. Notifications of other
// users are reported as not found.
func (h *Handler) MarkRead(ctx context.Context, userID types.UserID, id types.NotificationID) error {
	n, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID() != userID {
		return domain.ErrNotificationNotFound
	}
	if n.IsRead() {
		return nil
	}
	n.MarkRead(h.now())
	if err := h.repo.Save(ctx, n); err != nil {
		return fmt.Errorf("saving notification: %w", err)
	}
	return nil
}

func (h *Handler) MarkAllRead(ctx context.Context, userID types.UserID) (int, error) {
	return h.repo.MarkAllRead(ctx, userID, h.now().UTC())
}
