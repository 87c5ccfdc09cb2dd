// Package eventhandlers turns committed events of other modules into
// in-app notifications and emails. The handlers run after the producing
// transaction committed, so they never hold a database transaction open
// while talking to the mail server.
package eventhandlers

import (
	"context"
	"log/slog"

	"github.com/AlagappanMk24/Gymunity/modules/notifications/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// Notifier stores in-app notifications.
type Notifier interface {
	Notify(ctx context.Context, recipients []types.UserID, kind domain.Type, title, message, relatedEntityID string) error
}

// Mailer renders a template and sends it.
type Mailer interface {
	Mail(ctx context.Context, to api.UserContact, subject, template string, data any) error
	MailAll(ctx context.Context, to []api.UserContact, subject, template string, data any) error
}

// Email template names understood by the Mailer.
const (
	TemplateWelcome                  = "welcome"
	TemplateSignIn                   = "signin"
	TemplateResetPassword            = "reset_password"
	TemplateSubscriptionConfirmation = "subscription_confirmation"
	TemplateNewSubscriber            = "new_subscriber"
	TemplatePaymentFailed            = "payment_failed"
	TemplateAccountSuspended         = "account_suspended"
	TemplateTrainerRegistered        = "trainer_registered"
)

// Handlers holds every event reaction of the module.
type Handlers struct {
	notifier    Notifier
	mailer      Mailer
	users       api.UserDirectory
	frontendURL string
	logger      *slog.Logger
}

func New(notifier Notifier, mailer Mailer, users api.UserDirectory, frontendURL string, logger *slog.Logger) *Handlers {
	return &Handlers{notifier: notifier, mailer: mailer, users: users, frontendURL: frontendURL, logger: logger}
}

func amount(cents int64, currency string) string {
	m, err := types.NewMoney(cents, currency)
	if err != nil {
		return ""
	}
	return m.String()
}

func ids(contacts []api.UserContact, skip types.UserID) []types.UserID {
	out := make([]types.UserID, 0, len(contacts))
	for _, c := range contacts {
		if c.ID != skip {
			out = append(out, c.ID)
		}
	}
	return out
}
