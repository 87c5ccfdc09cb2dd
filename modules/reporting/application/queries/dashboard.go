// Package queries assembles the admin dashboard.
package queries

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AlagappanMk24/Gymunity/internal/platform/export"
	"github.com/AlagappanMk24/Gymunity/modules/reporting/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type Dashboard struct {
	source domain.Source
	now    func() time.Time
}

func NewDashboard(source domain.Source) *Dashboard {
	return &Dashboard{source: source, now: time.Now}
}

// Overview runs the headline queries concurrently.
func (d *Dashboard) Overview(ctx context.Context) (*domain.Overview, error) {
	now := d.now().UTC()
	month := domain.StartOfMonth(now)
	o := &domain.Overview{GeneratedAt: now}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		o.UsersByRole, err = d.source.UsersByRole(ctx)
		return wrap("counting users", err)
	})
	g.Go(func() (err error) {
		o.ActiveSubscriptions, err = d.source.ActiveSubscriptions(ctx)
		return wrap("counting active subscriptions", err)
	})
	g.Go(func() (err error) {
		o.PendingReviews, err = d.source.PendingReviews(ctx)
		return wrap("counting pending reviews", err)
	})
	g.Go(func() (err error) {
		o.PendingTrainerVerifications, err = d.source.PendingTrainerVerifications(ctx)
		return wrap("counting pending verifications", err)
	})
	g.Go(func() (err error) {
		o.RevenueThisMonth, err = d.source.Revenue(ctx, &month)
		return wrap("summing monthly revenue", err)
	})
	g.Go(func() (err error) {
		o.RevenueTotal, err = d.source.Revenue(ctx, nil)
		return wrap("summing revenue", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if o.UsersByRole == nil {
		o.UsersByRole = map[types.Role]int{}
	}
	for _, role := range []types.Role{types.RoleAdmin, types.RoleTrainer, types.RoleClient} {
		if _, ok := o.UsersByRole[role]; !ok {
			o.UsersByRole[role] = 0
		}
	}
	for _, n := range o.UsersByRole {
		o.TotalUsers += n
	}
	if o.RevenueThisMonth == nil {
		o.RevenueThisMonth = []domain.CurrencyAmount{}
	}
	if o.RevenueTotal == nil {
		o.RevenueTotal = []domain.CurrencyAmount{}
	}
	return o, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

// RevenueChart returns completed payments per day for the last days days,
// today included.
func (d *Dashboard) RevenueChart(ctx context.Context, currency string, days int) (*domain.RevenueChart, error) {
	now := d.now().UTC()
	days = domain.ClampDays(days)
	from := domain.StartOfDay(now).AddDate(0, 0, -(days - 1))
	to := domain.StartOfDay(now).AddDate(0, 0, 1)
	rows, err := d.source.DailyRevenue(ctx, currency, from, to)
	if err != nil {
		return nil, fmt.Errorf("reading daily revenue: %w", err)
	}
	chart := domain.BuildChart(currency, days, now, rows)
	chart.GeneratedAt = now
	return &chart, nil
}

func (d *Dashboard) TopTrainers(ctx context.Context, limit int) ([]domain.TopTrainer, error) {
	if limit < 1 {
		limit = domain.DefaultTopLimit
	}
	limit = min(limit, domain.MaxTopLimit)
	rows, err := d.source.TopTrainers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("ranking trainers: %w", err)
	}
	if rows == nil {
		rows = []domain.TopTrainer{}
	}
	return rows, nil
}

// Statistics renders the overview and the trainer ranking as one table
// for export.
func (d *Dashboard) Statistics(ctx context.Context) (export.Table, error) {
	var (
		overview *domain.Overview
		top      []domain.TopTrainer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		overview, err = d.Overview(gctx)
		return err
	})
	g.Go(func() (err error) {
		top, err = d.TopTrainers(gctx, domain.DefaultTopLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return export.Table{}, err
	}

	t := export.Table{
		Title:   "Gymunity Platform Statistics",
		Headers: []string{"Section", "Metric", "Value"},
	}
	add := func(section, metric, value string) {
		t.Rows = append(t.Rows, []string{section, metric, value})
	}
	add("Users", "Total", strconv.Itoa(overview.TotalUsers))
	for _, role := range []types.Role{types.RoleAdmin, types.RoleTrainer, types.RoleClient} {
		add("Users", role.String()+"s", strconv.Itoa(overview.UsersByRole[role]))
	}
	add("Subscriptions", "Active", strconv.Itoa(overview.ActiveSubscriptions))
	add("Moderation", "Pending reviews", strconv.Itoa(overview.PendingReviews))
	add("Moderation", "Pending trainer verifications", strconv.Itoa(overview.PendingTrainerVerifications))
	for _, r := range overview.RevenueThisMonth {
		add("Revenue", "This month ("+r.Currency+")", money(r.AmountCents, r.Currency))
	}
	for _, r := range overview.RevenueTotal {
		add("Revenue", "Total ("+r.Currency+")", money(r.AmountCents, r.Currency))
		add("Revenue", "Platform fees ("+r.Currency+")", money(r.PlatformCents, r.Currency))
	}
	for i, tr := range top {
		name := tr.FullName
		if name == "" {
			name = tr.Handle
		}
		add("Top trainers", fmt.Sprintf("%d. %s", i+1, name), fmt.Sprintf("%d active subscribers", tr.ActiveSubscribers))
	}
	return t, nil
}

func money(cents int64, currency string) string {
	m, err := types.NewMoney(cents, currency)
	if err != nil {
		return strconv.FormatInt(cents, 10) + " " + currency
	}
	return m.String()
}
