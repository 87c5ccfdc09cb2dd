package persistence

import (
	"context"
	"sort"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/reporting/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// Payment is one completed payment known to a StaticSource.
type Payment struct {
	Currency      string
	AmountCents   int64
	PlatformCents int64
	PaidAt        time.Time
}

// StaticSource serves fixed figures. It backs the dashboard when the
// platform runs on in-memory stores, and tests.
type StaticSource struct {
	Users         map[types.Role]int
	Active        int
	Reviews       int
	Verifications int
	Payments      []Payment
	Trainers      []domain.TopTrainer
	// Err, when set, fails every call.
	Err error
}

var _ domain.Source = (*StaticSource)(nil)

func (s *StaticSource) UsersByRole(context.Context) (map[types.Role]int, error) {
	out := make(map[types.Role]int, len(s.Users))
	for role, n := range s.Users {
		out[role] = n
	}
	return out, s.Err
}

func (s *StaticSource) ActiveSubscriptions(context.Context) (int, error) { return s.Active, s.Err }
func (s *StaticSource) PendingReviews(context.Context) (int, error)      { return s.Reviews, s.Err }

func (s *StaticSource) PendingTrainerVerifications(context.Context) (int, error) {
	return s.Verifications, s.Err
}

func (s *StaticSource) Revenue(_ context.Context, since *time.Time) ([]domain.CurrencyAmount, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	byCurrency := map[string]*domain.CurrencyAmount{}
	for _, p := range s.Payments {
		if since != nil && p.PaidAt.Before(*since) {
			continue
		}
		c, ok := byCurrency[p.Currency]
		if !ok {
			c = &domain.CurrencyAmount{Currency: p.Currency}
			byCurrency[p.Currency] = c
		}
		c.AmountCents += p.AmountCents
		c.PlatformCents += p.PlatformCents
		c.Payments++
	}
	out := make([]domain.CurrencyAmount, 0, len(byCurrency))
	for _, c := range byCurrency {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

func (s *StaticSource) DailyRevenue(_ context.Context, currency string, from, to time.Time) ([]domain.DailyRevenue, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	byDay := map[time.Time]*domain.DailyRevenue{}
	for _, p := range s.Payments {
		if p.Currency != currency || p.PaidAt.Before(from) || !p.PaidAt.Before(to) {
			continue
		}
		day := domain.StartOfDay(p.PaidAt)
		d, ok := byDay[day]
		if !ok {
			d = &domain.DailyRevenue{Day: day}
			byDay[day] = d
		}
		d.AmountCents += p.AmountCents
		d.Payments++
	}
	out := make([]domain.DailyRevenue, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (s *StaticSource) TopTrainers(_ context.Context, limit int) ([]domain.TopTrainer, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := append([]domain.TopTrainer(nil), s.Trainers...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ActiveSubscribers > out[j].ActiveSubscribers })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
