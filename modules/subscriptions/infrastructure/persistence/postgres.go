// Package persistence stores subscriptions and payments.
package persistence

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/domain"
)

const (
	subscriptionsTable = "subscriptions"
	paymentsTable      = "payments"
)

var subscriptionColumns = []string{
	"id", "client_id", "package_id", "package_name", "trainer_id", "trainer_user_id",
	"price_cents", "currency", "status", "is_annual", "platform_fee_bps", "amount_paid_cents",
	"start_date", "current_period_end", "canceled_at", "cancel_reason", "created_at", "updated_at",
}

type subscriptionRow struct {
	ID               types.SubscriptionID `db:"id"`
	ClientID         types.UserID         `db:"client_id"`
	PackageID        types.PackageID      `db:"package_id"`
	PackageName      string               `db:"package_name"`
	TrainerID        types.TrainerID      `db:"trainer_id"`
	TrainerUserID    types.UserID         `db:"trainer_user_id"`
	PriceCents       int64                `db:"price_cents"`
	Currency         string               `db:"currency"`
	Status           string               `db:"status"`
	IsAnnual         bool                 `db:"is_annual"`
	PlatformFeeBps   int64                `db:"platform_fee_bps"`
	AmountPaidCents  int64                `db:"amount_paid_cents"`
	StartDate        *time.Time           `db:"start_date"`
	CurrentPeriodEnd *time.Time           `db:"current_period_end"`
	CanceledAt       *time.Time           `db:"canceled_at"`
	CancelReason     string               `db:"cancel_reason"`
	CreatedAt        time.Time            `db:"created_at"`
	UpdatedAt        time.Time            `db:"updated_at"`
}

func money(cents int64, currency string) types.Money {
	m, err := types.NewMoney(cents, currency)
	if err != nil {
		return types.MustNewMoney(cents, types.DefaultCurrency)
	}
	return m
}

func (r subscriptionRow) toDomain() (*domain.Subscription, error) {
	status, err := domain.ParseStatus(r.Status)
	if err != nil {
		return nil, fmt.Errorf("subscription %s: %w", r.ID, err)
	}
	return domain.ReconstituteSubscription(domain.SubscriptionState{
		ID:       r.ID,
		ClientID: r.ClientID,
		Terms: domain.PackageTerms{
			PackageID:     r.PackageID,
			PackageName:   r.PackageName,
			TrainerID:     r.TrainerID,
			TrainerUserID: r.TrainerUserID,
			Price:         money(r.PriceCents, r.Currency),
		},
		Status:           status,
		IsAnnual:         r.IsAnnual,
		PlatformFeeBps:   r.PlatformFeeBps,
		AmountPaid:       money(r.AmountPaidCents, r.Currency),
		StartDate:        r.StartDate,
		CurrentPeriodEnd: r.CurrentPeriodEnd,
		CanceledAt:       r.CanceledAt,
		CancelReason:     r.CancelReason,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}), nil
}

func toSubscriptions(rows []subscriptionRow) ([]*domain.Subscription, error) {
	out := make([]*domain.Subscription, 0, len(rows))
	for _, row := range rows {
		s, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// PostgresSubscriptionRepository implements SubscriptionRepository on
// PostgreSQL.
type PostgresSubscriptionRepository struct {
	db *postgres.DB
}

func NewPostgresSubscriptionRepository(db *postgres.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

var _ domain.SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)

func (r *PostgresSubscriptionRepository) Save(ctx context.Context, s *domain.Subscription) error {
	st := s.State()
	q := postgres.Builder().
		Insert(subscriptionsTable).
		Columns(subscriptionColumns...).
		Values(
			st.ID, st.ClientID, st.Terms.PackageID, st.Terms.PackageName, st.Terms.TrainerID, st.Terms.TrainerUserID,
			st.Terms.Price.Amount(), st.Terms.Price.Currency(), st.Status.String(), st.IsAnnual, st.PlatformFeeBps, st.AmountPaid.Amount(),
			st.StartDate, st.CurrentPeriodEnd, st.CanceledAt, st.CancelReason, st.CreatedAt, st.UpdatedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			amount_paid_cents = EXCLUDED.amount_paid_cents,
			start_date = EXCLUDED.start_date,
			current_period_end = EXCLUDED.current_period_end,
			canceled_at = EXCLUDED.canceled_at,
			cancel_reason = EXCLUDED.cancel_reason,
			updated_at = EXCLUDED.updated_at`)
	if _, err := r.db.Exec(ctx, q); err != nil {
		if postgres.IsUniqueViolation(err, "uq_subscriptions_open") {
			return domain.ErrAlreadySubscribed
		}
		return fmt.Errorf("saving subscription: %w", err)
	}
	return nil
}

func (r *PostgresSubscriptionRepository) findOne(ctx context.Context, where sq.Sqlizer, order string) (*domain.Subscription, error) {
	q := postgres.Builder().Select(subscriptionColumns...).From(subscriptionsTable).Where(where).Limit(1)
	if order != "" {
		q = q.OrderBy(order)
	}
	var row subscriptionRow
	if err := r.db.Get(ctx, &row, q); err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("finding subscription: %w", err)
	}
	return row.toDomain()
}

func (r *PostgresSubscriptionRepository) FindByID(ctx context.Context, id types.SubscriptionID) (*domain.Subscription, error) {
	return r.findOne(ctx, sq.Eq{"id": id}, "")
}

func (r *PostgresSubscriptionRepository) FindOpen(ctx context.Context, clientID types.UserID, packageID types.PackageID) (*domain.Subscription, error) {
	return r.findOne(ctx, sq.Eq{
		"client_id":  clientID,
		"package_id": packageID,
		"status":     []string{domain.StatusUnpaid.String(), domain.StatusActive.String()},
	}, "")
}

func (r *PostgresSubscriptionRepository) FindActive(ctx context.Context, clientID types.UserID, trainerID types.TrainerID, now time.Time) (*domain.Subscription, error) {
	return r.findOne(ctx, sq.And{
		sq.Eq{"client_id": clientID, "status": domain.StatusActive.String(), "trainer_id": trainerID},
		sq.Gt{"current_period_end": now.UTC()},
	}, "current_period_end DESC")
}

func applySubscriptionFilter(q sq.SelectBuilder, f domain.SubscriptionFilter) sq.SelectBuilder {
	if f.Status != nil {
		q = q.Where(sq.Eq{"status": f.Status.String()})
	}
	if f.ClientID != nil {
		q = q.Where(sq.Eq{"client_id": *f.ClientID})
	}
	if f.TrainerID != nil {
		q = q.Where(sq.Eq{"trainer_id": *f.TrainerID})
	}
	if f.PackageID != nil {
		q = q.Where(sq.Eq{"package_id": *f.PackageID})
	}
	if f.CreatedFrom != nil {
		q = q.Where(sq.GtOrEq{"created_at": *f.CreatedFrom})
	}
	if f.CreatedTo != nil {
		q = q.Where(sq.LtOrEq{"created_at": *f.CreatedTo})
	}
	if f.PeriodEndsBefore != nil {
		q = q.Where(sq.Lt{"current_period_end": *f.PeriodEndsBefore})
	}
	return q
}

func (r *PostgresSubscriptionRepository) List(ctx context.Context, filter domain.SubscriptionFilter, page types.Page) ([]*domain.Subscription, int, error) {
	total, err := r.db.Count(ctx, applySubscriptionFilter(postgres.Builder().Select("COUNT(*)").From(subscriptionsTable), filter))
	if err != nil {
		return nil, 0, fmt.Errorf("counting subscriptions: %w", err)
	}
	order := "created_at DESC"
	if filter.PeriodEndsBefore != nil {
		order = "current_period_end"
	}
	q := applySubscriptionFilter(postgres.Builder().Select(subscriptionColumns...).From(subscriptionsTable), filter).
		OrderBy(order).
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset()))
	var rows []subscriptionRow
	if err := r.db.Select(ctx, &rows, q); err != nil {
		return nil, 0, fmt.Errorf("listing subscriptions: %w", err)
	}
	subs, err := toSubscriptions(rows)
	return subs, total, err
}

func (r *PostgresSubscriptionRepository) Stats(ctx context.Context) (domain.SubscriptionStats, error) {
	q := postgres.Builder().Select(
		"COUNT(*) AS total",
		"COUNT(*) FILTER (WHERE status = 'Unpaid') AS unpaid",
		"COUNT(*) FILTER (WHERE status = 'Active') AS active",
		"COUNT(*) FILTER (WHERE status = 'Canceled') AS canceled",
		"COUNT(*) FILTER (WHERE status = 'Expired') AS expired",
	).From(subscriptionsTable)
	var stats domain.SubscriptionStats
	if err := r.db.Get(ctx, &stats, q); err != nil {
		return domain.SubscriptionStats{}, fmt.Errorf("counting subscriptions: %w", err)
	}
	return stats, nil
}

var paymentColumns = []string{
	"id", "subscription_id", "client_id", "trainer_id", "amount_cents", "platform_fee_cents",
	"currency", "status", "method", "provider_reference", "transaction_id", "failure_reason",
	"created_at", "paid_at", "failed_at", "refunded_at",
}

type paymentRow struct {
	ID                types.PaymentID      `db:"id"`
	SubscriptionID    types.SubscriptionID `db:"subscription_id"`
	ClientID          types.UserID         `db:"client_id"`
	TrainerID         types.TrainerID      `db:"trainer_id"`
	AmountCents       int64                `db:"amount_cents"`
	PlatformFeeCents  int64                `db:"platform_fee_cents"`
	Currency          string               `db:"currency"`
	Status            string               `db:"status"`
	Method            string               `db:"method"`
	ProviderReference string               `db:"provider_reference"`
	TransactionID     string               `db:"transaction_id"`
	FailureReason     string               `db:"failure_reason"`
	CreatedAt         time.Time            `db:"created_at"`
	PaidAt            *time.Time           `db:"paid_at"`
	FailedAt          *time.Time           `db:"failed_at"`
	RefundedAt        *time.Time           `db:"refunded_at"`
}

func (r paymentRow) toDomain() (*domain.Payment, error) {
	status, err := domain.ParsePaymentStatus(r.Status)
	if err != nil {
		return nil, fmt.Errorf("payment %s: %w", r.ID, err)
	}
	method, err := domain.ParseMethod(r.Method)
	if err != nil {
		return nil, fmt.Errorf("payment %s: %w", r.ID, err)
	}
	return domain.ReconstitutePayment(domain.PaymentState{
		ID:                r.ID,
		SubscriptionID:    r.SubscriptionID,
		ClientID:          r.ClientID,
		TrainerID:         r.TrainerID,
		Amount:            money(r.AmountCents, r.Currency),
		PlatformFee:       money(r.PlatformFeeCents, r.Currency),
		Status:            status,
		Method:            method,
		ProviderReference: r.ProviderReference,
		TransactionID:     r.TransactionID,
		FailureReason:     r.FailureReason,
		CreatedAt:         r.CreatedAt,
		PaidAt:            r.PaidAt,
		FailedAt:          r.FailedAt,
		RefundedAt:        r.RefundedAt,
	}), nil
}

// PostgresPaymentRepository implements PaymentRepository on PostgreSQL.
type PostgresPaymentRepository struct {
	db *postgres.DB
}

func NewPostgresPaymentRepository(db *postgres.DB) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db}
}

var _ domain.PaymentRepository = (*PostgresPaymentRepository)(nil)

func (r *PostgresPaymentRepository) Save(ctx context.Context, p *domain.Payment) error {
	s := p.State()
	q := postgres.Builder().
		Insert(paymentsTable).
		Columns(paymentColumns...).
		Values(
			s.ID, s.SubscriptionID, s.ClientID, s.TrainerID, s.Amount.Amount(), s.PlatformFee.Amount(),
			s.Amount.Currency(), s.Status.String(), string(s.Method), s.ProviderReference, s.TransactionID, s.FailureReason,
			s.CreatedAt, s.PaidAt, s.FailedAt, s.RefundedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			transaction_id = EXCLUDED.transaction_id,
			failure_reason = EXCLUDED.failure_reason,
			paid_at = EXCLUDED.paid_at,
			failed_at = EXCLUDED.failed_at,
			refunded_at = EXCLUDED.refunded_at`)
	if _, err := r.db.Exec(ctx, q); err != nil {
		return fmt.Errorf("saving payment: %w", err)
	}
	return nil
}

func (r *PostgresPaymentRepository) findOne(ctx context.Context, where sq.Eq) (*domain.Payment, error) {
	q := postgres.Builder().Select(paymentColumns...).From(paymentsTable).Where(where).Limit(1)
	var row paymentRow
	if err := r.db.Get(ctx, &row, q); err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("finding payment: %w", err)
	}
	return row.toDomain()
}

func (r *PostgresPaymentRepository) FindByID(ctx context.Context, id types.PaymentID) (*domain.Payment, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *PostgresPaymentRepository) FindByProviderReference(ctx context.Context, ref string) (*domain.Payment, error) {
	return r.findOne(ctx, sq.Eq{"provider_reference": ref})
}

func applyPaymentFilter(q sq.SelectBuilder, f domain.PaymentFilter) sq.SelectBuilder {
	if f.Status != nil {
		q = q.Where(sq.Eq{"status": f.Status.String()})
	}
	if f.ClientID != nil {
		q = q.Where(sq.Eq{"client_id": *f.ClientID})
	}
	if f.TrainerID != nil {
		q = q.Where(sq.Eq{"trainer_id": *f.TrainerID})
	}
	if f.SubscriptionID != nil {
		q = q.Where(sq.Eq{"subscription_id": *f.SubscriptionID})
	}
	if f.MinAmountCents != nil {
		q = q.Where(sq.GtOrEq{"amount_cents": *f.MinAmountCents})
	}
	if f.MaxAmountCents != nil {
		q = q.Where(sq.LtOrEq{"amount_cents": *f.MaxAmountCents})
	}
	if f.From != nil {
		q = q.Where(sq.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(sq.LtOrEq{"created_at": *f.To})
	}
	return q
}

func (r *PostgresPaymentRepository) List(ctx context.Context, filter domain.PaymentFilter, page types.Page) ([]*domain.Payment, int, error) {
	total, err := r.db.Count(ctx, applyPaymentFilter(postgres.Builder().Select("COUNT(*)").From(paymentsTable), filter))
	if err != nil {
		return nil, 0, fmt.Errorf("counting payments: %w", err)
	}
	q := applyPaymentFilter(postgres.Builder().Select(paymentColumns...).From(paymentsTable), filter).
		OrderBy("created_at DESC").
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset()))
	var rows []paymentRow
	if err := r.db.Select(ctx, &rows, q); err != nil {
		return nil, 0, fmt.Errorf("listing payments: %w", err)
	}
	out := make([]*domain.Payment, 0, len(rows))
	for _, row := range rows {
		p, err := row.toDomain()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, nil
}

func (r *PostgresPaymentRepository) Stats(ctx context.Context) (domain.PaymentStats, error) {
	q := postgres.Builder().Select(
		"COUNT(*) AS total",
		"COUNT(*) FILTER (WHERE status = 'Pending') AS pending",
		"COUNT(*) FILTER (WHERE status = 'Completed') AS completed",
		"COUNT(*) FILTER (WHERE status = 'Failed') AS failed",
		"COUNT(*) FILTER (WHERE status = 'Refunded') AS refunded",
	).From(paymentsTable)
	var stats domain.PaymentStats
	if err := r.db.Get(ctx, &stats, q); err != nil {
		return domain.PaymentStats{}, fmt.Errorf("counting payments: %w", err)
	}
	return stats, nil
}

func (r *PostgresPaymentRepository) Revenue(ctx context.Context, from, to *time.Time) ([]domain.Revenue, error) {
	q := postgres.Builder().Select(
		"currency",
		"COUNT(*) AS payments",
		"COALESCE(SUM(amount_cents), 0) AS gross_cents",
		"COALESCE(SUM(platform_fee_cents), 0) AS platform_cents",
		"COALESCE(SUM(amount_cents - platform_fee_cents), 0) AS trainer_cents",
	).From(paymentsTable).
		Where(sq.Eq{"status": domain.PaymentCompleted.String()})
	if from != nil {
		q = q.Where(sq.GtOrEq{"paid_at": *from})
	}
	if to != nil {
		q = q.Where(sq.Lt{"paid_at": *to})
	}
	q = q.GroupBy("currency").OrderBy("currency")
	var rows []domain.Revenue
	if err := r.db.Select(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("summing revenue: %w", err)
	}
	return rows, nil
}
