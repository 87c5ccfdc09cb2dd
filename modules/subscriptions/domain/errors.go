package domain

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrPackageUnavailable   = errors.New("package is not available for subscription")
	ErrAnnualUnavailable    = errors.New("package has no yearly price")
	ErrAlreadySubscribed    = errors.New("client already holds an open subscription to this package")
	ErrNotSubscriber        = errors.New("subscription belongs to another client")
	ErrSubscriptionClosed   = errors.New("subscription is canceled or expired")
	ErrNotExpired           = errors.New("subscription period has not ended")
	ErrPaymentNotPending    = errors.New("payment is not pending")
	ErrPaymentNotCompleted  = errors.New("only completed payments can be refunded")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidMethod        = errors.New("payment method must be Stripe, PayPal, Paymob or Manual")
	ErrInvalidSignature     = errors.New("webhook signature does not match")
	ErrInvalidWebhook       = errors.New("webhook payload is malformed")
	ErrWebhookDisabled      = errors.New("payment webhook is not configured")
	ErrReasonRequired       = errors.New("a reason is required")
	ErrReasonTooLong        = errors.New("cancel reason must be at most 500 characters")
)
