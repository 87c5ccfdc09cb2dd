package persistence_test

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/reporting/infrastructure/persistence"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func newMockDB(t *testing.T) (*postgres.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return postgres.NewDB(sqlx.NewDb(raw, "postgres")), mock
}

func TestPostgresSource_UsersByRole(t *testing.T) {
	db, mock := newMockDB(t)
	src := persistence.NewPostgresSource(db)

	mock.ExpectQuery(`SELECT role, COUNT\(\*\) AS count FROM users WHERE is_deleted = \$1 GROUP BY role`).
		WithArgs(false).
		WillReturnRows(sqlmock.NewRows([]string{"role", "count"}).
			AddRow("Client", 12).AddRow("Trainer", 3).AddRow("Admin", 1))

	got, err := src.UsersByRole(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[types.Role]int{types.RoleClient: 12, types.RoleTrainer: 3, types.RoleAdmin: 1}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_RevenueSince(t *testing.T) {
	db, mock := newMockDB(t)
	src := persistence.NewPostgresSource(db)
	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT currency, (.+) FROM payments WHERE status = \$1 AND paid_at >= \$2 GROUP BY currency ORDER BY currency`).
		WithArgs("Completed", since).
		WillReturnRows(sqlmock.NewRows([]string{"currency", "amount_cents", "platform_cents", "payments"}).
			AddRow("EGP", 8997, 900, 3))

	rows, err := src.Revenue(context.Background(), &since)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(8997), rows[0].AmountCents)
	assert.Equal(t, 3, rows[0].Payments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_DailyRevenue(t *testing.T) {
	db, mock := newMockDB(t)
	src := persistence.NewPostgresSource(db)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	mock.ExpectQuery(`SELECT date_trunc\('day', paid_at AT TIME ZONE 'UTC'\) AS day, (.+) FROM payments WHERE currency = \$1 AND status = \$2 AND paid_at >= \$3 AND paid_at < \$4 GROUP BY 1 ORDER BY 1`).
		WithArgs("EGP", "Completed", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"day", "amount_cents", "payments"}).
			AddRow(from.AddDate(0, 0, 2), 2999, 1))

	rows, err := src.DailyRevenue(context.Background(), "EGP", from, to)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2999), rows[0].AmountCents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_TopTrainers(t *testing.T) {
	db, mock := newMockDB(t)
	src := persistence.NewPostgresSource(db)
	trainerID := types.NewID[types.TrainerKind]()
	userID := types.NewUserID()

	mock.ExpectQuery(`SELECT tp.id AS trainer_id, (.+) FROM trainer_profiles tp LEFT JOIN users u ON u.id = tp.user_id LEFT JOIN subscriptions s ON s.trainer_id = tp.id AND s.status = \$1 WHERE tp.is_suspended = \$2 GROUP BY (.+) ORDER BY active_subscribers DESC, tp.rating_average DESC, tp.handle LIMIT 5`).
		WithArgs("Active", false).
		WillReturnRows(sqlmock.NewRows([]string{"trainer_id", "user_id", "handle", "full_name", "rating_average", "active_subscribers"}).
			AddRow(trainerID.String(), userID.String(), "coach", "Coach Carter", 4.8, 17))

	rows, err := src.TopTrainers(context.Background(), 5)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, trainerID, rows[0].TrainerID)
	assert.Equal(t, 17, rows[0].ActiveSubscribers)
	assert.NoError(t, mock.ExpectationsWereMet())
}
