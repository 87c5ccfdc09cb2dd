package eventhandlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AlagappanMk24/Gymunity/modules/notifications/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// UserRegistered tells every administrator about the new account and
// welcomes the user. New trainers await verification, so administrators
// are also emailed about them.
func (h *Handlers) UserRegistered(ctx context.Context, e contracts.UserRegisteredEvent) error {
	admins, err := h.users.Admins(ctx)
	if err != nil {
		return fmt.Errorf("listing admins: %w", err)
	}
	kind := domain.TypeNewClientRegistration
	if e.Role == types.RoleTrainer {
		kind = domain.TypeNewTrainerRegistration
	}
	title := fmt.Sprintf("New %s Registration", e.Role)
	message := fmt.Sprintf("%s (%s) has registered as a %s", e.FullName, e.Email, e.Role)
	if e.Method == "google" {
		title += " (Google Auth)"
		message += " using Google authentication"
	}
	if err := h.notifier.Notify(ctx, ids(admins, e.UserID), kind, title, message, e.UserID.String()); err != nil {
		return fmt.Errorf("notifying admins: %w", err)
	}
	if e.Role == types.RoleTrainer && len(admins) > 0 {
		data := map[string]string{"TrainerName": e.FullName, "Email": e.Email, "Link": h.frontendURL + "/admin/trainers?isVerified=false"}
		if err := h.mailer.MailAll(ctx, admins, title, TemplateTrainerRegistered, data); err != nil {
			h.logger.WarnContext(ctx, "emailing admins failed", slog.Any("error", err))
		}
	}

	to := api.UserContact{ID: e.UserID, Email: e.Email, FullName: e.FullName, UserName: e.UserName, Role: e.Role}
	return h.mailer.Mail(ctx, to, "Welcome to Gymunity", TemplateWelcome, map[string]string{
		"Name": e.FullName,
		"Role": e.Role.String(),
		"Link": h.frontendURL,
	})
}

func (h *Handlers) UserSignedIn(ctx context.Context, e contracts.UserSignedInEvent) error {
	method := "your password"
	if e.Method == "google" {
		method = "Google"
	}
	to := api.UserContact{ID: e.UserID, Email: e.Email, FullName: e.FullName}
	return h.mailer.Mail(ctx, to, "New sign-in to your Gymunity account", TemplateSignIn, map[string]string{
		"Name":   e.FullName,
		"At":     e.OccurredAt().UTC().Format("Jan 2, 2006 15:04 MST"),
		"Method": method,
	})
}

func (h *Handlers) PasswordResetRequested(ctx context.Context, e contracts.PasswordResetRequestedEvent) error {
	to := api.UserContact{ID: e.UserID, Email: e.Email, FullName: e.FullName}
	return h.mailer.Mail(ctx, to, "Reset your Gymunity password", TemplateResetPassword, map[string]string{
		"Name": e.FullName,
		"Link": e.ResetLink,
	})
}

func (h *Handlers) UserSuspended(ctx context.Context, e contracts.UserSuspendedEvent) error {
	to, err := h.users.Contact(ctx, e.UserID)
	if err != nil {
		return fmt.Errorf("resolving user: %w", err)
	}
	return h.mailer.Mail(ctx, to, "Your Gymunity account was suspended", TemplateAccountSuspended, map[string]string{
		"Name": to.FullName,
	})
}
