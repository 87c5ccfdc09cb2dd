package commands

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/domain"
)

type InitiatePaymentCommand struct {
	ClientID       types.UserID
	SubscriptionID types.SubscriptionID
	Method         domain.Method
}

// Checkout is what a client needs to pay at the provider.
type Checkout struct {
	PaymentID   types.PaymentID `json:"paymentId"`
	Reference   string          `json:"reference"`
	AmountCents int64           `json:"amountCents"`
	Currency    string          `json:"currency"`
	CheckoutURL string          `json:"checkoutUrl"`
}

// InitiatePaymentHandler opens a pending payment for the next billing
// period of an open subscription.
type InitiatePaymentHandler struct {
	subs        domain.SubscriptionRepository
	payments    domain.PaymentRepository
	uow         *eventbus.UnitOfWork
	checkoutURL string
}

func NewInitiatePaymentHandler(subs domain.SubscriptionRepository, payments domain.PaymentRepository, uow *eventbus.UnitOfWork, checkoutURL string) *InitiatePaymentHandler {
	return &InitiatePaymentHandler{subs: subs, payments: payments, uow: uow, checkoutURL: checkoutURL}
}

func (h *InitiatePaymentHandler) Handle(ctx context.Context, cmd InitiatePaymentCommand) (Checkout, error) {
	var out Checkout
	err := h.uow.Execute(ctx, "subscriptions.InitiatePayment", func(ctx context.Context, _ *eventbus.TransactionalEventBus) error {
		sub, err := h.subs.FindByID(ctx, cmd.SubscriptionID)
		if err != nil {
			return err
		}
		if !sub.BelongsTo(cmd.ClientID) {
			return domain.ErrNotSubscriber
		}
		if !sub.Status().IsOpen() {
			return domain.ErrSubscriptionClosed
		}
		p := domain.NewPayment(sub, cmd.Method)
		if err := h.payments.Save(ctx, p); err != nil {
			return fmt.Errorf("saving payment: %w", err)
		}
		out = Checkout{
			PaymentID:   p.ID(),
			Reference:   p.ProviderReference(),
			AmountCents: p.Amount().Amount(),
			Currency:    p.Amount().Currency(),
			CheckoutURL: h.url(p.ProviderReference()),
		}
		return nil
	})
	return out, err
}

func (h *InitiatePaymentHandler) url(ref string) string {
	if h.checkoutURL == "" {
		return ""
	}
	return strings.TrimRight(h.checkoutURL, "/") + "?reference=" + url.QueryEscape(ref)
}

// Webhook outcomes reported by the payment provider.
const (
	WebhookSucceeded = "succeeded"
	WebhookFailed    = "failed"
)

// WebhookHandler applies signed provider notifications. A notification
// is {"reference", "status": "succeeded"|"failed", "transactionId",
// "failureReason"}. Replays of an applied outcome are accepted and ignored.
type WebhookHandler struct {
	subs     domain.SubscriptionRepository
	payments domain.PaymentRepository
	uow      *eventbus.UnitOfWork
	secret   []byte
	logger   *slog.Logger
	now      func() time.Time
}

func NewWebhookHandler(subs domain.SubscriptionRepository, payments domain.PaymentRepository, uow *eventbus.UnitOfWork, secret string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{subs: subs, payments: payments, uow: uow, secret: []byte(secret), logger: logger, now: time.Now}
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks signature, optionally prefixed with "sha256=", against body.
func (h *WebhookHandler) Verify(body []byte, signature string) error {
	if len(h.secret) == 0 {
		return domain.ErrWebhookDisabled
	}
	got, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(signature), "sha256="))
	if err != nil {
		return domain.ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return domain.ErrInvalidSignature
	}
	return nil
}

func (h *WebhookHandler) Handle(ctx context.Context, body []byte, signature string) error {
	if err := h.Verify(body, signature); err != nil {
		return err
	}
	if !gjson.ValidBytes(body) {
		return domain.ErrInvalidWebhook
	}
	doc := gjson.ParseBytes(body)
	ref := doc.Get("reference").String()
	outcome := strings.ToLower(doc.Get("status").String())
	if ref == "" || (outcome != WebhookSucceeded && outcome != WebhookFailed) {
		return domain.ErrInvalidWebhook
	}

	return h.uow.Execute(ctx, "subscriptions.PaymentWebhook", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		p, err := h.payments.FindByProviderReference(ctx, ref)
		if err != nil {
			return err
		}
		now := h.now()
		switch {
		case outcome == WebhookFailed && p.Status() == domain.PaymentFailed,
			outcome == WebhookSucceeded && (p.Status() == domain.PaymentCompleted || p.Status() == domain.PaymentRefunded):
			return nil
		case outcome == WebhookFailed:
			if err := p.Fail(doc.Get("failureReason").String(), now); err != nil {
				return err
			}
		default:
			if err := p.Complete(doc.Get("transactionId").String(), now); err != nil {
				return err
			}
			if err := h.activate(ctx, bus, p, now); err != nil {
				return err
			}
		}
		if err := h.payments.Save(ctx, p); err != nil {
			return fmt.Errorf("saving payment: %w", err)
		}
		return bus.Collect(ctx, p)
	})
}

func (h *WebhookHandler) activate(ctx context.Context, bus *eventbus.TransactionalEventBus, p *domain.Payment, now time.Time) error {
	sub, err := h.subs.FindByID(ctx, p.SubscriptionID())
	if err != nil {
		return fmt.Errorf("loading subscription: %w", err)
	}
	if err := sub.Activate(p.Amount(), now); err != nil {
		if errors.Is(err, domain.ErrSubscriptionClosed) {
			// The money is kept on record; an administrator refunds it.
			h.logger.WarnContext(ctx, "payment completed for closed subscription",
				slog.String("payment_id", p.ID().String()),
				slog.String("subscription_id", sub.ID().String()),
			)
			return nil
		}
		return err
	}
	if err := h.subs.Save(ctx, sub); err != nil {
		return fmt.Errorf("saving subscription: %w", err)
	}
	return bus.Collect(ctx, sub)
}

type RefundCommand struct {
	PaymentID types.PaymentID
	Reason    string
}

// RefundHandler returns a completed payment and cancels the subscription
// it paid for. Administrators only.
type RefundHandler struct {
	subs     domain.SubscriptionRepository
	payments domain.PaymentRepository
	uow      *eventbus.UnitOfWork
	now      func() time.Time
}

func NewRefundHandler(subs domain.SubscriptionRepository, payments domain.PaymentRepository, uow *eventbus.UnitOfWork) *RefundHandler {
	return &RefundHandler{subs: subs, payments: payments, uow: uow, now: time.Now}
}

func (h *RefundHandler) Handle(ctx context.Context, cmd RefundCommand) error {
	if _, err := sharedauth.RequireRole(ctx, types.RoleAdmin); err != nil {
		return err
	}
	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		reason = "Payment refunded"
	}
	return h.uow.Execute(ctx, "subscriptions.RefundPayment", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		p, err := h.payments.FindByID(ctx, cmd.PaymentID)
		if err != nil {
			return err
		}
		now := h.now()
		if err := p.Refund(now); err != nil {
			return err
		}
		if err := h.payments.Save(ctx, p); err != nil {
			return fmt.Errorf("saving payment: %w", err)
		}
		if err := bus.Collect(ctx, p); err != nil {
			return err
		}

		sub, err := h.subs.FindByID(ctx, p.SubscriptionID())
		if err != nil {
			return fmt.Errorf("loading subscription: %w", err)
		}
		if !sub.Status().IsOpen() {
			return nil
		}
		if err := sub.Cancel(reason, now); err != nil {
			return err
		}
		if err := h.subs.Save(ctx, sub); err != nil {
			return fmt.Errorf("saving subscription: %w", err)
		}
		return bus.Collect(ctx, sub)
	})
}
