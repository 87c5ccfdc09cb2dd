package contracts

import (
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

const (
	SubscriptionActivatedEventType events.EventType = "subscriptions.SubscriptionActivated"
	SubscriptionCanceledEventType  events.EventType = "subscriptions.SubscriptionCanceled"
	PaymentCompletedEventType      events.EventType = "subscriptions.PaymentCompleted"
	PaymentFailedEventType         events.EventType = "subscriptions.PaymentFailed"
	PaymentRefundedEventType       events.EventType = "subscriptions.PaymentRefunded"
)

// SubscriptionActivatedEvent is published when a payment activates or
// renews a subscription.
type SubscriptionActivatedEvent struct {
	events.BaseEvent
	SubscriptionID types.SubscriptionID `json:"subscriptionId"`
	ClientID       types.UserID         `json:"clientId"`
	TrainerID      types.TrainerID      `json:"trainerId"`
	TrainerUserID  types.UserID         `json:"trainerUserId"`
	PackageID      types.PackageID      `json:"packageId"`
	PackageName    string               `json:"packageName"`
	AmountCents    int64                `json:"amountCents"`
	Currency       string               `json:"currency"`
	PeriodEnd      time.Time            `json:"periodEnd"`
	Renewal        bool                 `json:"renewal"`
}

// SubscriptionCanceledEvent is published when a subscription closes, either
// canceled by a client or admin or, with Expired set, by the expiry sweep.
type SubscriptionCanceledEvent struct {
	events.BaseEvent
	SubscriptionID types.SubscriptionID `json:"subscriptionId"`
	ClientID       types.UserID         `json:"clientId"`
	TrainerID      types.TrainerID      `json:"trainerId"`
	WasActive      bool                 `json:"wasActive"`
	Expired        bool                 `json:"expired"`
	Reason         string               `json:"reason"`
}

type PaymentCompletedEvent struct {
	events.BaseEvent
	PaymentID      types.PaymentID      `json:"paymentId"`
	SubscriptionID types.SubscriptionID `json:"subscriptionId"`
	ClientID       types.UserID         `json:"clientId"`
	AmountCents    int64                `json:"amountCents"`
	Currency       string               `json:"currency"`
}

type PaymentFailedEvent struct {
	events.BaseEvent
	PaymentID      types.PaymentID      `json:"paymentId"`
	SubscriptionID types.SubscriptionID `json:"subscriptionId"`
	ClientID       types.UserID         `json:"clientId"`
	AmountCents    int64                `json:"amountCents"`
	Currency       string               `json:"currency"`
	Reason         string               `json:"reason"`
}

type PaymentRefundedEvent struct {
	events.BaseEvent
	PaymentID      types.PaymentID      `json:"paymentId"`
	SubscriptionID types.SubscriptionID `json:"subscriptionId"`
	ClientID       types.UserID         `json:"clientId"`
	AmountCents    int64                `json:"amountCents"`
	Currency       string               `json:"currency"`
}
