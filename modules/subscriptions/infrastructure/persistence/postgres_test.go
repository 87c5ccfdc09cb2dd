package persistence_test

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/domain"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/infrastructure/persistence"
)

func newMockDB(t *testing.T) (*postgres.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return postgres.NewDB(sqlx.NewDb(raw, "postgres")), mock
}

var subscriptionRowColumns = []string{
	"id", "client_id", "package_id", "package_name", "trainer_id", "trainer_user_id",
	"price_cents", "currency", "status", "is_annual", "platform_fee_bps", "amount_paid_cents",
	"start_date", "current_period_end", "canceled_at", "cancel_reason", "created_at", "updated_at",
}

func TestPostgresSubscriptionRepository_FindOpen(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresSubscriptionRepository(db)
	clientID := types.NewUserID()
	packageID := types.NewID[types.PackageKind]()
	id := types.NewID[types.SubscriptionKind]()
	now := time.Now().UTC()
	end := now.AddDate(0, 1, 0)

	mock.ExpectQuery(`SELECT (.+) FROM subscriptions WHERE client_id = \$1 AND package_id = \$2 AND status IN \(\$3,\$4\) LIMIT 1`).
		WithArgs(clientID.String(), packageID.String(), "Unpaid", "Active").
		WillReturnRows(sqlmock.NewRows(subscriptionRowColumns).AddRow(
			id.String(), clientID.String(), packageID.String(), "Starter Pack",
			types.NewID[types.TrainerKind]().String(), types.NewUserID().String(),
			2999, "EGP", "Active", false, 1500, 2999,
			now, end, nil, "", now, now,
		))

	sub, err := repo.FindOpen(context.Background(), clientID, packageID)

	require.NoError(t, err)
	assert.Equal(t, id, sub.ID())
	assert.Equal(t, domain.StatusActive, sub.Status())
	assert.Equal(t, "EGP", sub.Price().Currency())
	assert.True(t, sub.IsActiveAt(now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSubscriptionRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresSubscriptionRepository(db)
	mock.ExpectQuery(`SELECT (.+) FROM subscriptions WHERE id = \$1 LIMIT 1`).
		WillReturnRows(sqlmock.NewRows(subscriptionRowColumns))

	_, err := repo.FindByID(context.Background(), types.NewID[types.SubscriptionKind]())

	assert.ErrorIs(t, err, domain.ErrSubscriptionNotFound)
}

func TestPostgresSubscriptionRepository_SaveMapsOpenConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresSubscriptionRepository(db)
	sub := domain.NewSubscription(types.NewUserID(), domain.PackageTerms{
		PackageID: types.NewID[types.PackageKind](),
		TrainerID: types.NewID[types.TrainerKind](),
		Price:     types.MustNewMoney(2999, "EGP"),
	}, false, domain.DefaultPlatformFeeBps)

	mock.ExpectExec(`INSERT INTO subscriptions (.+) ON CONFLICT \(id\) DO UPDATE SET`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_subscriptions_open"})

	err := repo.Save(context.Background(), sub)

	assert.ErrorIs(t, err, domain.ErrAlreadySubscribed)
}

func TestPostgresSubscriptionRepository_Stats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresSubscriptionRepository(db)
	mock.ExpectQuery(`SELECT COUNT\(\*\) AS total, (.+) FROM subscriptions`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "unpaid", "active", "canceled", "expired"}).AddRow(10, 2, 5, 2, 1))

	stats, err := repo.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStats{Total: 10, Unpaid: 2, Active: 5, Canceled: 2, Expired: 1}, stats)
}

func TestPostgresPaymentRepository_RevenueGroupsByCurrency(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresPaymentRepository(db)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT currency, (.+) FROM payments WHERE status = \$1 AND paid_at >= \$2 GROUP BY currency ORDER BY currency`).
		WithArgs("Completed", from).
		WillReturnRows(sqlmock.NewRows([]string{"currency", "payments", "gross_cents", "platform_cents", "trainer_cents"}).
			AddRow("EGP", 3, 8997, 1350, 7647).
			AddRow("USD", 1, 10000, 1500, 8500))

	rows, err := repo.Revenue(context.Background(), &from, nil)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.Revenue{Currency: "EGP", Payments: 3, GrossCents: 8997, PlatformCents: 1350, TrainerPayouts: 7647}, rows[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPaymentRepository_ListFiltersByStatusAndAmount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresPaymentRepository(db)
	status := domain.PaymentFailed
	minAmount := int64(1000)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM payments WHERE status = \$1 AND amount_cents >= \$2`).
		WithArgs("Failed", minAmount).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT (.+) FROM payments WHERE status = \$1 AND amount_cents >= \$2 ORDER BY created_at DESC LIMIT 20 OFFSET 0`).
		WithArgs("Failed", minAmount).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	items, total, err := repo.List(context.Background(), domain.PaymentFilter{Status: &status, MinAmountCents: &minAmount}, types.NewPage(1, 0))

	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}
