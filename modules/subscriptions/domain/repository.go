package domain

import (
	"context"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// SubscriptionFilter narrows subscription listings. Zero fields match all.
type SubscriptionFilter struct {
	Status    *Status
	ClientID  *types.UserID
	TrainerID *types.TrainerID
	PackageID *types.PackageID
	// CreatedFrom and CreatedTo bound the creation time, inclusive.
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	// PeriodEndsBefore selects subscriptions whose current period ends
	// before the given time.
	PeriodEndsBefore *time.Time
}

// SubscriptionStats counts subscriptions by status.
type SubscriptionStats struct {
	Total    int `db:"total" json:"total"`
	Unpaid   int `db:"unpaid" json:"unpaid"`
	Active   int `db:"active" json:"active"`
	Canceled int `db:"canceled" json:"canceled"`
	Expired  int `db:"expired" json:"expired"`
}

type SubscriptionRepository interface {
	Save(ctx context.Context, s *Subscription) error
	FindByID(ctx context.Context, id types.SubscriptionID) (*Subscription, error)
	// FindOpen returns the unpaid or active subscription of a client to a
	// package, or ErrSubscriptionNotFound.
	FindOpen(ctx context.Context, clientID types.UserID, packageID types.PackageID) (*Subscription, error)
	// FindActive returns the client's active subscription with a trainer
	// whose period has not ended, or ErrSubscriptionNotFound.
	FindActive(ctx context.Context, clientID types.UserID, trainerID types.TrainerID, now time.Time) (*Subscription, error)
	// List orders by creation time, newest first, or by period end when
	// PeriodEndsBefore is set.
	List(ctx context.Context, filter SubscriptionFilter, page types.Page) ([]*Subscription, int, error)
	Stats(ctx context.Context) (SubscriptionStats, error)
}

// PaymentFilter narrows payment listings. Zero fields match all.
type PaymentFilter struct {
	Status         *PaymentStatus
	ClientID       *types.UserID
	TrainerID      *types.TrainerID
	SubscriptionID *types.SubscriptionID
	MinAmountCents *int64
	MaxAmountCents *int64
	From           *time.Time
	To             *time.Time
}

// PaymentStats counts payments by status.
type PaymentStats struct {
	Total     int `db:"total" json:"total"`
	Pending   int `db:"pending" json:"pending"`
	Completed int `db:"completed" json:"completed"`
	Failed    int `db:"failed" json:"failed"`
	Refunded  int `db:"refunded" json:"refunded"`
}

// Revenue sums completed payments of one currency.
type Revenue struct {
	Currency       string `db:"currency" json:"currency"`
	Payments       int    `db:"payments" json:"payments"`
	GrossCents     int64  `db:"gross_cents" json:"grossCents"`
	PlatformCents  int64  `db:"platform_cents" json:"platformFeeCents"`
	TrainerPayouts int64  `db:"trainer_cents" json:"trainerPayoutCents"`
}

type PaymentRepository interface {
	Save(ctx context.Context, p *Payment) error
	FindByID(ctx context.Context, id types.PaymentID) (*Payment, error)
	FindByProviderReference(ctx context.Context, ref string) (*Payment, error)
	// List orders by creation time, newest first.
	List(ctx context.Context, filter PaymentFilter, page types.Page) ([]*Payment, int, error)
	Stats(ctx context.Context) (PaymentStats, error)
	// Revenue sums payments completed within [from, to), per currency.
	// A nil bound is open.
	Revenue(ctx context.Context, from, to *time.Time) ([]Revenue, error)
}
