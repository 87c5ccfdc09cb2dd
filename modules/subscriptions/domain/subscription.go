// Package domain contains the subscription and payment rules.
package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	shareddomain "github.com/AlagappanMk24/Gymunity/modules/shared/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

const (
	// DefaultPlatformFeeBps is the platform share of every payment, 15%.
	DefaultPlatformFeeBps = 1500
	MaxReasonLength       = 500
)

// PackageTerms is the snapshot of a package taken when a client subscribes.
type PackageTerms struct {
	PackageID     types.PackageID
	PackageName   string
	TrainerID     types.TrainerID
	TrainerUserID types.UserID
	Price         types.Money
}

// Subscription is a client's access to a trainer package. It starts
// Unpaid, becomes Active when a payment completes and ends Canceled or
// Expired.
type Subscription struct {
	shareddomain.AggregateRoot

	id               types.SubscriptionID
	clientID         types.UserID
	terms            PackageTerms
	status           Status
	isAnnual         bool
	platformFeeBps   int64
	amountPaid       types.Money
	startDate        *time.Time
	currentPeriodEnd *time.Time
	canceledAt       *time.Time
	cancelReason     string
	createdAt        time.Time
	updatedAt        time.Time
}

func NewSubscription(clientID types.UserID, terms PackageTerms, isAnnual bool, feeBps int64) *Subscription {
	now := time.Now().UTC()
	return &Subscription{
		id:             types.NewID[types.SubscriptionKind](),
		clientID:       clientID,
		terms:          terms,
		status:         StatusUnpaid,
		isAnnual:       isAnnual,
		platformFeeBps: feeBps,
		amountPaid:     types.MustNewMoney(0, terms.Price.Currency()),
		createdAt:      now,
		updatedAt:      now,
	}
}

// SubscriptionState is the persisted form of a Subscription.
type SubscriptionState struct {
	ID               types.SubscriptionID
	ClientID         types.UserID
	Terms            PackageTerms
	Status           Status
	IsAnnual         bool
	PlatformFeeBps   int64
	AmountPaid       types.Money
	StartDate        *time.Time
	CurrentPeriodEnd *time.Time
	CanceledAt       *time.Time
	CancelReason     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func ReconstituteSubscription(s SubscriptionState) *Subscription {
	return &Subscription{
		id:               s.ID,
		clientID:         s.ClientID,
		terms:            s.Terms,
		status:           s.Status,
		isAnnual:         s.IsAnnual,
		platformFeeBps:   s.PlatformFeeBps,
		amountPaid:       s.AmountPaid,
		startDate:        s.StartDate,
		currentPeriodEnd: s.CurrentPeriodEnd,
		canceledAt:       s.CanceledAt,
		cancelReason:     s.CancelReason,
		createdAt:        s.CreatedAt,
		updatedAt:        s.UpdatedAt,
	}
}

func (s *Subscription) State() SubscriptionState {
	return SubscriptionState{
		ID:               s.id,
		ClientID:         s.clientID,
		Terms:            s.terms,
		Status:           s.status,
		IsAnnual:         s.isAnnual,
		PlatformFeeBps:   s.platformFeeBps,
		AmountPaid:       s.amountPaid,
		StartDate:        s.startDate,
		CurrentPeriodEnd: s.currentPeriodEnd,
		CanceledAt:       s.canceledAt,
		CancelReason:     s.cancelReason,
		CreatedAt:        s.createdAt,
		UpdatedAt:        s.updatedAt,
	}
}

func (s *Subscription) ID() types.SubscriptionID       { return s.id }
func (s *Subscription) ClientID() types.UserID         { return s.clientID }
func (s *Subscription) Terms() PackageTerms            { return s.terms }
func (s *Subscription) PackageID() types.PackageID     { return s.terms.PackageID }
func (s *Subscription) TrainerID() types.TrainerID     { return s.terms.TrainerID }
func (s *Subscription) Status() Status                 { return s.status }
func (s *Subscription) IsAnnual() bool                 { return s.isAnnual }
func (s *Subscription) PlatformFeeBps() int64          { return s.platformFeeBps }
func (s *Subscription) AmountPaid() types.Money        { return s.amountPaid }
func (s *Subscription) StartDate() *time.Time          { return s.startDate }
func (s *Subscription) CurrentPeriodEnd() *time.Time   { return s.currentPeriodEnd }
func (s *Subscription) CanceledAt() *time.Time         { return s.canceledAt }
func (s *Subscription) CancelReason() string           { return s.cancelReason }
func (s *Subscription) CreatedAt() time.Time           { return s.createdAt }
func (s *Subscription) BelongsTo(id types.UserID) bool { return s.clientID == id }

// Price is the amount due for one billing period.
func (s *Subscription) Price() types.Money { return s.terms.Price }

// periodEnd returns the end of a billing period starting at from. The end
// falls on anchorDay, or on the last day of the month when it is shorter.
func (s *Subscription) periodEnd(from time.Time, anchorDay int) time.Time {
	if s.isAnnual {
		return addMonths(from, 12, anchorDay)
	}
	return addMonths(from, 1, anchorDay)
}

// addMonths moves t forward by months calendar months without overflowing
// into the following month: Jan 31 plus one month is Feb 28 (or 29).
func addMonths(t time.Time, months, day int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, months, 0)
	last := target.AddDate(0, 1, -1).Day()
	return target.AddDate(0, 0, min(day, last)-1)
}

// Activate records a completed payment. An unpaid subscription starts its
// first period now; an active one is renewed from the end of the current
// period.
func (s *Subscription) Activate(paid types.Money, now time.Time) error {
	now = now.UTC()
	renewal := false
	switch s.status {
	case StatusUnpaid:
		s.startDate = &now
		end := s.periodEnd(now, now.Day())
		s.currentPeriodEnd = &end
	case StatusActive:
		// Early renewals keep the billing day of the original start; a
		// lapsed period restarts from now.
		from, anchor := now, now.Day()
		if s.currentPeriodEnd != nil && s.currentPeriodEnd.After(now) {
			from = *s.currentPeriodEnd
			if s.startDate != nil {
				anchor = s.startDate.Day()
			}
		}
		end := s.periodEnd(from, anchor)
		s.currentPeriodEnd = &end
		renewal = true
	default:
		return ErrSubscriptionClosed
	}
	total, err := s.amountPaid.Add(paid)
	if err != nil {
		return err
	}
	s.amountPaid = total
	s.status = StatusActive
	s.updatedAt = now
	s.AddDomainEvent(newSubscriptionActivatedEvent(s, paid, renewal))
	return nil
}

// Cancel ends an unpaid or active subscription immediately.
func (s *Subscription) Cancel(reason string, now time.Time) error {
	if !s.status.IsOpen() {
		return ErrSubscriptionClosed
	}
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return ErrReasonTooLong
	}
	now = now.UTC()
	wasActive := s.status == StatusActive
	s.status = StatusCanceled
	s.canceledAt = &now
	s.cancelReason = reason
	s.updatedAt = now
	s.AddDomainEvent(newSubscriptionCanceledEvent(s, wasActive, false))
	return nil
}

// Expire closes an active subscription whose period ended before now.
func (s *Subscription) Expire(now time.Time) error {
	if s.status != StatusActive {
		return ErrSubscriptionClosed
	}
	if s.currentPeriodEnd == nil || !s.currentPeriodEnd.Before(now) {
		return ErrNotExpired
	}
	s.status = StatusExpired
	s.updatedAt = now.UTC()
	s.AddDomainEvent(newSubscriptionCanceledEvent(s, true, true))
	return nil
}

// IsActiveAt reports whether the subscription grants access at t.
func (s *Subscription) IsActiveAt(t time.Time) bool {
	return s.status == StatusActive && s.currentPeriodEnd != nil && s.currentPeriodEnd.After(t)
}
