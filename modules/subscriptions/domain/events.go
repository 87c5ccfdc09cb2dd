package domain

import (
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func newSubscriptionActivatedEvent(s *Subscription, paid types.Money, renewal bool) contracts.SubscriptionActivatedEvent {
	return contracts.SubscriptionActivatedEvent{
		BaseEvent:      events.NewBaseEvent(contracts.SubscriptionActivatedEventType, s.id.String()),
		SubscriptionID: s.id,
		ClientID:       s.clientID,
		TrainerID:      s.terms.TrainerID,
		TrainerUserID:  s.terms.TrainerUserID,
		PackageID:      s.terms.PackageID,
		PackageName:    s.terms.PackageName,
		AmountCents:    paid.Amount(),
		Currency:       paid.Currency(),
		PeriodEnd:      *s.currentPeriodEnd,
		Renewal:        renewal,
	}
}

func newSubscriptionCanceledEvent(s *Subscription, wasActive, expired bool) contracts.SubscriptionCanceledEvent {
	return contracts.SubscriptionCanceledEvent{
		BaseEvent:      events.NewBaseEvent(contracts.SubscriptionCanceledEventType, s.id.String()),
		SubscriptionID: s.id,
		ClientID:       s.clientID,
		TrainerID:      s.terms.TrainerID,
		WasActive:      wasActive,
		Expired:        expired,
		Reason:         s.cancelReason,
	}
}

func newPaymentCompletedEvent(p *Payment) contracts.PaymentCompletedEvent {
	return contracts.PaymentCompletedEvent{
		BaseEvent:      events.NewBaseEvent(contracts.PaymentCompletedEventType, p.id.String()),
		PaymentID:      p.id,
		SubscriptionID: p.subscriptionID,
		ClientID:       p.clientID,
		AmountCents:    p.amount.Amount(),
		Currency:       p.amount.Currency(),
	}
}

func newPaymentFailedEvent(p *Payment) contracts.PaymentFailedEvent {
	return contracts.PaymentFailedEvent{
		BaseEvent:      events.NewBaseEvent(contracts.PaymentFailedEventType, p.id.String()),
		PaymentID:      p.id,
		SubscriptionID: p.subscriptionID,
		ClientID:       p.clientID,
		AmountCents:    p.amount.Amount(),
		Currency:       p.amount.Currency(),
		Reason:         p.failureReason,
	}
}

func newPaymentRefundedEvent(p *Payment) contracts.PaymentRefundedEvent {
	return contracts.PaymentRefundedEvent{
		BaseEvent:      events.NewBaseEvent(contracts.PaymentRefundedEventType, p.id.String()),
		PaymentID:      p.id,
		SubscriptionID: p.subscriptionID,
		ClientID:       p.clientID,
		AmountCents:    p.amount.Amount(),
		Currency:       p.amount.Currency(),
	}
}
