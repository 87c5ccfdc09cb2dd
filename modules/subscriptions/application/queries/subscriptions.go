// Package queries contains the read use cases of the subscriptions module.
package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/domain"
)

type SubscriptionDTO struct {
	ID               types.SubscriptionID `json:"id"`
	ClientID         types.UserID         `json:"clientId"`
	PackageID        types.PackageID      `json:"packageId"`
	PackageName      string               `json:"packageName"`
	TrainerID        types.TrainerID      `json:"trainerId"`
	Status           domain.Status        `json:"status"`
	IsAnnual         bool                 `json:"isAnnual"`
	PriceCents       int64                `json:"priceCents"`
	AmountPaidCents  int64                `json:"amountPaidCents"`
	Currency         string               `json:"currency"`
	PlatformFeeBps   int64                `json:"platformFeeBps"`
	StartDate        *time.Time           `json:"startDate,omitempty"`
	CurrentPeriodEnd *time.Time           `json:"currentPeriodEnd,omitempty"`
	CanceledAt       *time.Time           `json:"canceledAt,omitempty"`
	CancelReason     string               `json:"cancelReason,omitempty"`
	CreatedAt        time.Time            `json:"createdAt"`
}

func toSubscriptionDTO(s *domain.Subscription) *SubscriptionDTO {
	t := s.Terms()
	return &SubscriptionDTO{
		ID:               s.ID(),
		ClientID:         s.ClientID(),
		PackageID:        t.PackageID,
		PackageName:      t.PackageName,
		TrainerID:        t.TrainerID,
		Status:           s.Status(),
		IsAnnual:         s.IsAnnual(),
		PriceCents:       t.Price.Amount(),
		AmountPaidCents:  s.AmountPaid().Amount(),
		Currency:         t.Price.Currency(),
		PlatformFeeBps:   s.PlatformFeeBps(),
		StartDate:        s.StartDate(),
		CurrentPeriodEnd: s.CurrentPeriodEnd(),
		CanceledAt:       s.CanceledAt(),
		CancelReason:     s.CancelReason(),
		CreatedAt:        s.CreatedAt(),
	}
}

// GetSubscriptionHandler returns a subscription to its client, its
// trainer or an administrator.
type GetSubscriptionHandler struct {
	subs domain.SubscriptionRepository
}

func NewGetSubscriptionHandler(subs domain.SubscriptionRepository) *GetSubscriptionHandler {
	return &GetSubscriptionHandler{subs: subs}
}

func (h *GetSubscriptionHandler) Handle(ctx context.Context, id types.SubscriptionID, viewer sharedauth.Principal) (*SubscriptionDTO, error) {
	sub, err := h.subs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin() && !sub.BelongsTo(viewer.UserID) && sub.Terms().TrainerUserID != viewer.UserID {
		return nil, domain.ErrSubscriptionNotFound
	}
	return toSubscriptionDTO(sub), nil
}

type ListSubscriptionsHandler struct {
	subs     domain.SubscriptionRepository
	trainers api.TrainerDirectory
	now      func() time.Time
}

func NewListSubscriptionsHandler(subs domain.SubscriptionRepository, trainers api.TrainerDirectory) *ListSubscriptionsHandler {
	return &ListSubscriptionsHandler{subs: subs, trainers: trainers, now: time.Now}
}

func (h *ListSubscriptionsHandler) list(ctx context.Context, filter domain.SubscriptionFilter, page types.Page) (types.Paged[*SubscriptionDTO], error) {
	subs, total, err := h.subs.List(ctx, filter, page)
	if err != nil {
		return types.Paged[*SubscriptionDTO]{}, fmt.Errorf("listing subscriptions: %w", err)
	}
	items := make([]*SubscriptionDTO, 0, len(subs))
	for _, s := range subs {
		items = append(items, toSubscriptionDTO(s))
	}
	return types.NewPaged(items, total, page), nil
}

func (h *ListSubscriptionsHandler) Mine(ctx context.Context, clientID types.UserID, status *domain.Status, page types.Page) (types.Paged[*SubscriptionDTO], error) {
	return h.list(ctx, domain.SubscriptionFilter{ClientID: &clientID, Status: status}, page)
}

// Subscribers lists the subscriptions sold by the caller's trainer profile.
func (h *ListSubscriptionsHandler) Subscribers(ctx context.Context, userID types.UserID, status *domain.Status, page types.Page) (types.Paged[*SubscriptionDTO], error) {
	t, err := h.trainers.TrainerByUser(ctx, userID)
	if errors.Is(err, api.ErrNotFound) {
		return types.NewPaged([]*SubscriptionDTO{}, 0, page), nil
	}
	if err != nil {
		return types.Paged[*SubscriptionDTO]{}, fmt.Errorf("resolving trainer: %w", err)
	}
	return h.list(ctx, domain.SubscriptionFilter{TrainerID: &t.ID, Status: status}, page)
}

func (h *ListSubscriptionsHandler) Admin(ctx context.Context, filter domain.SubscriptionFilter, page types.Page) (types.Paged[*SubscriptionDTO], error) {
	return h.list(ctx, filter, page)
}

// ExpiringSoon lists active subscriptions whose period ends within days.
func (h *ListSubscriptionsHandler) ExpiringSoon(ctx context.Context, days int, page types.Page) (types.Paged[*SubscriptionDTO], error) {
	if days < 1 {
		days = 7
	}
	active := domain.StatusActive
	before := h.now().UTC().AddDate(0, 0, days)
	return h.list(ctx, domain.SubscriptionFilter{Status: &active, PeriodEndsBefore: &before}, page)
}

func (h *ListSubscriptionsHandler) Stats(ctx context.Context) (domain.SubscriptionStats, error) {
	return h.subs.Stats(ctx)
}

// Ledger implements api.SubscriptionLedger.
type Ledger struct {
	subs domain.SubscriptionRepository
	now  func() time.Time
}

func NewLedger(subs domain.SubscriptionRepository) *Ledger {
	return &Ledger{subs: subs, now: time.Now}
}

var _ api.SubscriptionLedger = (*Ledger)(nil)

func (l *Ledger) ActiveSubscription(ctx context.Context, clientID types.UserID, trainerID types.TrainerID) (types.PackageID, bool, error) {
	sub, err := l.subs.FindActive(ctx, clientID, trainerID, l.now())
	if errors.Is(err, domain.ErrSubscriptionNotFound) {
		return types.PackageID{}, false, nil
	}
	if err != nil {
		return types.PackageID{}, false, err
	}
	return sub.PackageID(), true, nil
}
