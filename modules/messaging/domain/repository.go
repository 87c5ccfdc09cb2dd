package domain

import (
	"context"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// ChatSummary is one row of a user's chat list.
type ChatSummary struct {
	Thread      *Thread
	LastMessage *Message
	UnreadCount int
}

type ThreadRepository interface {
	Save(ctx context.Context, t *Thread) error
	FindByID(ctx context.Context, id types.ThreadID) (*Thread, error)
	// FindByPair returns the thread of a client with a trainer, or
	// ErrThreadNotFound.
	FindByPair(ctx context.Context, clientID types.UserID, trainerID types.TrainerID) (*Thread, error)
	// ListForUser lists the threads userID takes part in, priority threads
	// first, then by latest activity.
	ListForUser(ctx context.Context, userID types.UserID, page types.Page) ([]ChatSummary, int, error)
	// Delete removes a thread with its messages.
	Delete(ctx context.Context, id types.ThreadID) error
	// DeleteForUser removes every thread userID takes part in and returns
	// how many were removed.
	DeleteForUser(ctx context.Context, userID types.UserID) (int, error)
}

type MessageRepository interface {
	Save(ctx context.Context, m *Message) error
	FindByID(ctx context.Context, id types.MessageID) (*Message, error)
	// ListByThread returns messages newest first.
	ListByThread(ctx context.Context, threadID types.ThreadID, page types.Page) ([]*Message, int, error)
	// MarkThreadRead marks every unread message addressed to reader in the
	// thread and returns how many changed.
	MarkThreadRead(ctx context.Context, threadID types.ThreadID, reader types.UserID, at time.Time) (int, error)
	UnreadCount(ctx context.Context, userID types.UserID) (int, error)
}
