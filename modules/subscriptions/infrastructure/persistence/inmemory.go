package persistence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/domain"
)

func window(n int, page types.Page) (int, int) {
	start := min(page.Offset(), n)
	return start, min(start+page.Size, n)
}

// InMemorySubscriptionRepository implements SubscriptionRepository in
// memory for tests and local development.
type InMemorySubscriptionRepository struct {
	mu   sync.RWMutex
	subs map[types.SubscriptionID]domain.SubscriptionState
}

func NewInMemorySubscriptionRepository() *InMemorySubscriptionRepository {
	return &InMemorySubscriptionRepository{subs: make(map[types.SubscriptionID]domain.SubscriptionState)}
}

var _ domain.SubscriptionRepository = (*InMemorySubscriptionRepository)(nil)

func (r *InMemorySubscriptionRepository) Save(_ context.Context, s *domain.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := s.State()
	if st.Status.IsOpen() {
		for id, other := range r.subs {
			if id != st.ID && other.Status.IsOpen() && other.ClientID == st.ClientID && other.Terms.PackageID == st.Terms.PackageID {
				return domain.ErrAlreadySubscribed
			}
		}
	}
	r.subs[st.ID] = st
	return nil
}

func (r *InMemorySubscriptionRepository) FindByID(_ context.Context, id types.SubscriptionID) (*domain.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.subs[id]
	if !ok {
		return nil, domain.ErrSubscriptionNotFound
	}
	return domain.ReconstituteSubscription(st), nil
}

func (r *InMemorySubscriptionRepository) first(match func(domain.SubscriptionState) bool) (*domain.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, st := range r.subs {
		if match(st) {
			return domain.ReconstituteSubscription(st), nil
		}
	}
	return nil, domain.ErrSubscriptionNotFound
}

func (r *InMemorySubscriptionRepository) FindOpen(_ context.Context, clientID types.UserID, packageID types.PackageID) (*domain.Subscription, error) {
	return r.first(func(st domain.SubscriptionState) bool {
		return st.Status.IsOpen() && st.ClientID == clientID && st.Terms.PackageID == packageID
	})
}

func (r *InMemorySubscriptionRepository) FindActive(_ context.Context, clientID types.UserID, trainerID types.TrainerID, now time.Time) (*domain.Subscription, error) {
	return r.first(func(st domain.SubscriptionState) bool {
		return st.Status == domain.StatusActive && st.ClientID == clientID && st.Terms.TrainerID == trainerID &&
			st.CurrentPeriodEnd != nil && st.CurrentPeriodEnd.After(now)
	})
}

func matchesSubscription(st domain.SubscriptionState, f domain.SubscriptionFilter) bool {
	switch {
	case f.Status != nil && st.Status != *f.Status,
		f.ClientID != nil && st.ClientID != *f.ClientID,
		f.TrainerID != nil && st.Terms.TrainerID != *f.TrainerID,
		f.PackageID != nil && st.Terms.PackageID != *f.PackageID,
		f.CreatedFrom != nil && st.CreatedAt.Before(*f.CreatedFrom),
		f.CreatedTo != nil && st.CreatedAt.After(*f.CreatedTo),
		f.PeriodEndsBefore != nil && (st.CurrentPeriodEnd == nil || !st.CurrentPeriodEnd.Before(*f.PeriodEndsBefore)):
		return false
	}
	return true
}

func (r *InMemorySubscriptionRepository) List(_ context.Context, filter domain.SubscriptionFilter, page types.Page) ([]*domain.Subscription, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found []domain.SubscriptionState
	for _, st := range r.subs {
		if matchesSubscription(st, filter) {
			found = append(found, st)
		}
	}
	if filter.PeriodEndsBefore != nil {
		sort.Slice(found, func(i, j int) bool { return found[i].CurrentPeriodEnd.Before(*found[j].CurrentPeriodEnd) })
	} else {
		sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.After(found[j].CreatedAt) })
	}
	start, end := window(len(found), page)
	out := make([]*domain.Subscription, 0, end-start)
	for _, st := range found[start:end] {
		out = append(out, domain.ReconstituteSubscription(st))
	}
	return out, len(found), nil
}

func (r *InMemorySubscriptionRepository) Stats(_ context.Context) (domain.SubscriptionStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var s domain.SubscriptionStats
	for _, st := range r.subs {
		s.Total++
		switch st.Status {
		case domain.StatusUnpaid:
			s.Unpaid++
		case domain.StatusActive:
			s.Active++
		case domain.StatusCanceled:
			s.Canceled++
		case domain.StatusExpired:
			s.Expired++
		}
	}
	return s, nil
}

// InMemoryPaymentRepository implements PaymentRepository in memory.
type InMemoryPaymentRepository struct {
	mu       sync.RWMutex
	payments map[types.PaymentID]domain.PaymentState
}

func NewInMemoryPaymentRepository() *InMemoryPaymentRepository {
	return &InMemoryPaymentRepository{payments: make(map[types.PaymentID]domain.PaymentState)}
}

var _ domain.PaymentRepository = (*InMemoryPaymentRepository)(nil)

func (r *InMemoryPaymentRepository) Save(_ context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[p.ID()] = p.State()
	return nil
}

func (r *InMemoryPaymentRepository) FindByID(_ context.Context, id types.PaymentID) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return domain.ReconstitutePayment(st), nil
}

func (r *InMemoryPaymentRepository) FindByProviderReference(_ context.Context, ref string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, st := range r.payments {
		if st.ProviderReference == ref {
			return domain.ReconstitutePayment(st), nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func matchesPayment(st domain.PaymentState, f domain.PaymentFilter) bool {
	amount := st.Amount.Amount()
	switch {
	case f.Status != nil && st.Status != *f.Status,
		f.ClientID != nil && st.ClientID != *f.ClientID,
		f.TrainerID != nil && st.TrainerID != *f.TrainerID,
		f.SubscriptionID != nil && st.SubscriptionID != *f.SubscriptionID,
		f.MinAmountCents != nil && amount < *f.MinAmountCents,
		f.MaxAmountCents != nil && amount > *f.MaxAmountCents,
		f.From != nil && st.CreatedAt.Before(*f.From),
		f.To != nil && st.CreatedAt.After(*f.To):
		return false
	}
	return true
}

func (r *InMemoryPaymentRepository) List(_ context.Context, filter domain.PaymentFilter, page types.Page) ([]*domain.Payment, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found []domain.PaymentState
	for _, st := range r.payments {
		if matchesPayment(st, filter) {
			found = append(found, st)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.After(found[j].CreatedAt) })
	start, end := window(len(found), page)
	out := make([]*domain.Payment, 0, end-start)
	for _, st := range found[start:end] {
		out = append(out, domain.ReconstitutePayment(st))
	}
	return out, len(found), nil
}

func (r *InMemoryPaymentRepository) Stats(_ context.Context) (domain.PaymentStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var s domain.PaymentStats
	for _, st := range r.payments {
		s.Total++
		switch st.Status {
		case domain.PaymentPending:
			s.Pending++
		case domain.PaymentCompleted:
			s.Completed++
		case domain.PaymentFailed:
			s.Failed++
		case domain.PaymentRefunded:
			s.Refunded++
		}
	}
	return s, nil
}

func (r *InMemoryPaymentRepository) Revenue(_ context.Context, from, to *time.Time) ([]domain.Revenue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byCurrency := make(map[string]*domain.Revenue)
	for _, st := range r.payments {
		if st.Status != domain.PaymentCompleted || st.PaidAt == nil {
			continue
		}
		if (from != nil && st.PaidAt.Before(*from)) || (to != nil && !st.PaidAt.Before(*to)) {
			continue
		}
		c := st.Amount.Currency()
		rev, ok := byCurrency[c]
		if !ok {
			rev = &domain.Revenue{Currency: c}
			byCurrency[c] = rev
		}
		rev.Payments++
		rev.GrossCents += st.Amount.Amount()
		rev.PlatformCents += st.PlatformFee.Amount()
		rev.TrainerPayouts += st.Amount.Amount() - st.PlatformFee.Amount()
	}
	out := make([]domain.Revenue, 0, len(byCurrency))
	for _, rev := range byCurrency {
		out = append(out, *rev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}
