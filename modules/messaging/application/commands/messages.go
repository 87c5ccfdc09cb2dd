package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/messaging/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type SendMessageCommand struct {
	SenderID types.UserID
	ThreadID types.ThreadID
	Type     domain.MessageType
	Content  string
	MediaURL string
}

// MessageHandler sends messages and records their reading.
type MessageHandler struct {
	threads  domain.ThreadRepository
	messages domain.MessageRepository
	uow      *eventbus.UnitOfWork
	now      func() time.Time
}

func NewMessageHandler(threads domain.ThreadRepository, messages domain.MessageRepository, uow *eventbus.UnitOfWork) *MessageHandler {
	return &MessageHandler{threads: threads, messages: messages, uow: uow, now: time.Now}
}

func (h *MessageHandler) Send(ctx context.Context, cmd SendMessageCommand) (types.MessageID, error) {
	var id types.MessageID
	err := h.uow.Execute(ctx, "messaging.SendMessage", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		th, err := h.threads.FindByID(ctx, cmd.ThreadID)
		if err != nil {
			return err
		}
		m, err := th.Post(cmd.SenderID, cmd.Type, cmd.Content, cmd.MediaURL, h.now())
		if err != nil {
			return err
		}
		if err := h.messages.Save(ctx, m); err != nil {
			return fmt.Errorf("saving message: %w", err)
		}
		if err := h.threads.Save(ctx, th); err != nil {
			return fmt.Errorf("saving thread: %w", err)
		}
		id = m.ID()
		return bus.Collect(ctx, m)
	})
	return id, err
}

func (h *MessageHandler) MarkRead(ctx context.Context, reader types.UserID, id types.MessageID) error {
	return h.uow.Execute(ctx, "messaging.MarkMessageRead", func(ctx context.Context, _ *eventbus.TransactionalEventBus) error {
		m, err := h.messages.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := m.MarkRead(reader, h.now()); err != nil {
			return err
		}
		return h.messages.Save(ctx, m)
	})
}

// MarkThreadRead marks every message addressed to reader in the thread.
func (h *MessageHandler) MarkThreadRead(ctx context.Context, reader types.UserID, id types.ThreadID) (int, error) {
	var n int
	err := h.uow.Execute(ctx, "messaging.MarkThreadRead", func(ctx context.Context, _ *eventbus.TransactionalEventBus) error {
		th, err := h.threads.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !th.HasParticipant(reader) {
			return domain.ErrNotParticipant
		}
		n, err = h.messages.MarkThreadRead(ctx, id, reader, h.now().UTC())
		return err
	})
	return n, err
}
