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
	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
	"github.com/AlagappanMk24/Gymunity/modules/identity/infrastructure/persistence"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func newMockRepo(t *testing.T) (*persistence.PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return persistence.NewPostgresRepository(postgres.NewDB(sqlx.NewDb(raw, "postgres"))), mock
}

var userRowColumns = []string{
	"id", "user_name", "email", "full_name", "profile_photo_url", "role",
	"is_verified", "email_confirmed", "password_hash", "created_at", "updated_at",
	"last_login_at", "lockout_end", "access_failed_count", "is_deleted",
}

func TestPostgresRepository_FindByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := types.NewUserID()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1 AND is_deleted = \$2 LIMIT 1`).
		WithArgs("coach@example.com", false).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
			id.String(), "coach", "coach@example.com", "Coach Mo", "", "Trainer",
			true, true, "hash", now, now, nil, nil, 0, false,
		))
	mock.ExpectQuery(`SELECT provider, provider_key FROM user_logins WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"provider", "provider_key"}).AddRow("Google", "sub-9"))

	email, _ := domain.NewEmail("coach@example.com")
	user, err := repo.FindByEmail(context.Background(), email)

	require.NoError(t, err)
	assert.Equal(t, id, user.ID())
	assert.Equal(t, types.RoleTrainer, user.Role())
	assert.Equal(t, []domain.ExternalLogin{{Provider: "Google", ProviderKey: "sub-9"}}, user.Logins())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_FindByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := repo.FindByID(context.Background(), types.NewUserID())

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestPostgresRepository_SaveMapsUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`INSERT INTO users (.+) ON CONFLICT \(id\) DO UPDATE`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_users_email"})

	user := newUser(t, "dup@example.com", "dup")
	err := repo.Save(context.Background(), user)

	assert.ErrorIs(t, err, domain.ErrEmailExists)
}

func TestPostgresRepository_SaveWritesLogins(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`INSERT INTO users`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO user_logins \(provider,provider_key,user_id\) VALUES \(\$1,\$2,\$3\) ON CONFLICT`).
		WithArgs("Google", "sub-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := newUser(t, "g@example.com", "g.user")
	user.LinkLogin(domain.ExternalLogin{Provider: "Google", ProviderKey: "sub-1"})

	require.NoError(t, repo.Save(context.Background(), user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListAppliesFilter(t *testing.T) {
	repo, mock := newMockRepo(t)
	role := types.RoleTrainer

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE is_deleted = \$1 AND role = \$2 AND \(full_name ILIKE \$3 OR email ILIKE \$4 OR user_name ILIKE \$5\)`).
		WithArgs(false, "Trainer", "%mo%", "%mo%", "%mo%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE (.+) ORDER BY created_at DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
			types.NewUserID().String(), "coach.mo", "mo@example.com", "Coach Mo", "", "Trainer",
			false, true, "hash", time.Now(), time.Now(), nil, nil, 0, false,
		))

	users, total, err := repo.List(context.Background(),
		domain.UserFilter{Search: "mo", Role: &role},
		types.NewPage(2, 10))

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, users, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Statistics(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) AS total, (.+) FROM users WHERE is_deleted = \$4`).
		WillReturnRows(sqlmock.NewRows([]string{
			"total", "clients", "trainers", "admins", "suspended", "active_last_week", "new_this_month",
		}).AddRow(10, 6, 3, 1, 2, 4, 5))

	st, err := repo.Statistics(context.Background(), time.Now())

	require.NoError(t, err)
	assert.Equal(t, domain.Statistics{Total: 10, Clients: 6, Trainers: 3, Admins: 1, Suspended: 2, ActiveLastWeek: 4, NewThisMonth: 5}, st)
}

func newUser(t *testing.T, email, userName string) *domain.User {
	t.Helper()
	e, err := domain.NewEmail(email)
	require.NoError(t, err)
	n, err := domain.NewUserName(userName)
	require.NoError(t, err)
	f, err := domain.NewFullName("Test User")
	require.NoError(t, err)
	u, err := domain.NewUser(n, e, f, types.RoleClient, "hash")
	require.NoError(t, err)
	return u
}
