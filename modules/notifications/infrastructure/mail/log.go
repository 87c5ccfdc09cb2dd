package mail

import (
	"context"
	"log/slog"
)

// LogSender records messages instead of delivering them. It is used when no
// SMTP server is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	rcpts := msg.Recipients()
	if len(rcpts) == 0 {
		return ErrNoRecipients
	}
	s.logger.InfoContext(ctx, "email not sent, smtp disabled",
		slog.Any("to", rcpts),
		slog.String("subject", msg.Subject),
	)
	return nil
}
