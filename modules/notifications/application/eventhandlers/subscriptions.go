package eventhandlers

import (
	"context"
	"fmt"

	"github.com/AlagappanMk24/Gymunity/modules/notifications/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// SubscriptionActivated confirms the subscription to the client. First
// activations also tell the trainer about the new subscriber.
func (h *Handlers) SubscriptionActivated(ctx context.Context, e contracts.SubscriptionActivatedEvent) error {
	client, err := h.users.Contact(ctx, e.ClientID)
	if err != nil {
		return fmt.Errorf("resolving client: %w", err)
	}
	price := amount(e.AmountCents, e.Currency)
	subject := "Your subscription is active"
	if e.Renewal {
		subject = "Your subscription was renewed"
	}
	if err := h.mailer.Mail(ctx, client, subject, TemplateSubscriptionConfirmation, map[string]string{
		"Name":        client.FullName,
		"PackageName": e.PackageName,
		"Amount":      price,
		"PeriodEnd":   e.PeriodEnd.UTC().Format("Jan 2, 2006"),
	}); err != nil {
		return fmt.Errorf("emailing client: %w", err)
	}
	if e.Renewal {
		return nil
	}

	message := fmt.Sprintf("%s subscribed to %s", client.FullName, e.PackageName)
	if err := h.notifier.Notify(ctx, []types.UserID{e.TrainerUserID}, domain.TypeNewSubscriber, "New subscriber", message, e.SubscriptionID.String()); err != nil {
		return fmt.Errorf("notifying trainer: %w", err)
	}
	trainer, err := h.users.Contact(ctx, e.TrainerUserID)
	if err != nil {
		return fmt.Errorf("resolving trainer: %w", err)
	}
	return h.mailer.Mail(ctx, trainer, "You have a new subscriber", TemplateNewSubscriber, map[string]string{
		"Name":        trainer.FullName,
		"ClientName":  client.FullName,
		"PackageName": e.PackageName,
		"Amount":      price,
	})
}

func (h *Handlers) PaymentFailed(ctx context.Context, e contracts.PaymentFailedEvent) error {
	client, err := h.users.Contact(ctx, e.ClientID)
	if err != nil {
		return fmt.Errorf("resolving client: %w", err)
	}
	return h.mailer.Mail(ctx, client, "Your payment failed", TemplatePaymentFailed, map[string]string{
		"Name":   client.FullName,
		"Amount": amount(e.AmountCents, e.Currency),
		"Reason": e.Reason,
	})
}

func (h *Handlers) PaymentRefunded(ctx context.Context, e contracts.PaymentRefundedEvent) error {
	message := fmt.Sprintf("Your payment of %s was refunded.", amount(e.AmountCents, e.Currency))
	return h.notifier.Notify(ctx, []types.UserID{e.ClientID}, domain.TypePaymentRefunded, "Payment refunded", message, e.PaymentID.String())
}
