package domain

import (
	"context"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type Filter struct {
	UserID     types.UserID
	UnreadOnly bool
}

type Repository interface {
	Save(ctx context.Context, n *Notification) error
	SaveAll(ctx context.Context, ns []*Notification) error
	FindByID(ctx context.Context, id types.NotificationID) (*Notification, error)
	// List returns the newest notifications first.
	List(ctx context.Context, filter Filter, page types.Page) ([]*Notification, int, error)
	UnreadCount(ctx context.Context, userID types.UserID) (int, error)
	MarkAllRead(ctx context.Context, userID types.UserID, at time.Time) (int, error)
}
