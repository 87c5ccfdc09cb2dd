// Package persistence reads dashboard figures straight from the tables of
// the other modules.
package persistence

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/reporting/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

const (
	statusActive           = "Active"
	paymentStatusCompleted = "Completed"
)

// PostgresSource implements domain.Source with read-only queries.
type PostgresSource struct {
	db *postgres.DB
}

func NewPostgresSource(db *postgres.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

var _ domain.Source = (*PostgresSource)(nil)

type roleCount struct {
	Role  string `db:"role"`
	Count int    `db:"count"`
}

func (s *PostgresSource) UsersByRole(ctx context.Context) (map[types.Role]int, error) {
	q := postgres.Builder().Select("role", "COUNT(*) AS count").From("users").
		Where(sq.Eq{"is_deleted": false}).
		GroupBy("role")
	var rows []roleCount
	if err := s.db.Select(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("counting users by role: %w", err)
	}
	out := make(map[types.Role]int, len(rows))
	for _, r := range rows {
		role, err := types.ParseRole(r.Role)
		if err != nil {
			continue
		}
		out[role] += r.Count
	}
	return out, nil
}

func (s *PostgresSource) ActiveSubscriptions(ctx context.Context) (int, error) {
	return s.db.Count(ctx, postgres.Builder().Select("COUNT(*)").From("subscriptions").
		Where(sq.Eq{"status": statusActive}))
}

func (s *PostgresSource) PendingReviews(ctx context.Context) (int, error) {
	return s.db.Count(ctx, postgres.Builder().Select("COUNT(*)").From("trainer_reviews").
		Where(sq.Eq{"is_approved": false, "is_deleted": false}))
}

func (s *PostgresSource) PendingTrainerVerifications(ctx context.Context) (int, error) {
	return s.db.Count(ctx, postgres.Builder().Select("COUNT(*)").From("trainer_profiles").
		Where(sq.Eq{"is_verified": false, "is_suspended": false}))
}

func (s *PostgresSource) Revenue(ctx context.Context, since *time.Time) ([]domain.CurrencyAmount, error) {
	q := postgres.Builder().Select(
		"currency",
		"COALESCE(SUM(amount_cents), 0) AS amount_cents",
		"COALESCE(SUM(platform_fee_cents), 0) AS platform_cents",
		"COUNT(*) AS payments",
	).From("payments").
		Where(sq.Eq{"status": paymentStatusCompleted})
	if since != nil {
		q = q.Where(sq.GtOrEq{"paid_at": *since})
	}
	q = q.GroupBy("currency").OrderBy("currency")
	var rows []domain.CurrencyAmount
	if err := s.db.Select(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("summing revenue: %w", err)
	}
	return rows, nil
}

func (s *PostgresSource) DailyRevenue(ctx context.Context, currency string, from, to time.Time) ([]domain.DailyRevenue, error) {
	q := postgres.Builder().Select(
		"date_trunc('day', paid_at AT TIME ZONE 'UTC') AS day",
		"COALESCE(SUM(amount_cents), 0) AS amount_cents",
		"COUNT(*) AS payments",
	).From("payments").
		Where(sq.Eq{"currency": currency, "status": paymentStatusCompleted}).
		Where(sq.GtOrEq{"paid_at": from}).
		Where(sq.Lt{"paid_at": to}).
		GroupBy("1").
		OrderBy("1")
	var rows []domain.DailyRevenue
	if err := s.db.Select(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("reading daily revenue: %w", err)
	}
	return rows, nil
}

func (s *PostgresSource) TopTrainers(ctx context.Context, limit int) ([]domain.TopTrainer, error) {
	q := postgres.Builder().Select(
		"tp.id AS trainer_id",
		"tp.user_id",
		"tp.handle",
		"COALESCE(u.full_name, '') AS full_name",
		"tp.rating_average",
		"COUNT(DISTINCT s.client_id) AS active_subscribers",
	).From("trainer_profiles tp").
		LeftJoin("users u ON u.id = tp.user_id").
		LeftJoin("subscriptions s ON s.trainer_id = tp.id AND s.status = ?", statusActive).
		Where(sq.Eq{"tp.is_suspended": false}).
		GroupBy("tp.id", "tp.user_id", "tp.handle", "u.full_name", "tp.rating_average").
		OrderBy("active_subscribers DESC", "tp.rating_average DESC", "tp.handle").
		Limit(uint64(limit))
	var rows []domain.TopTrainer
	if err := s.db.Select(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("ranking trainers: %w", err)
	}
	return rows, nil
}
