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
	"github.com/AlagappanMk24/Gymunity/modules/trainers/domain"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/infrastructure/persistence"
)

func newMockDB(t *testing.T) (*postgres.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return postgres.NewDB(sqlx.NewDb(raw, "postgres")), mock
}

var profileRowColumns = []string{
	"id", "user_id", "handle", "bio", "cover_image_url", "video_intro_url",
	"branding_colors", "years_experience", "is_verified", "verified_at",
	"is_suspended", "suspended_at", "rating_average", "total_clients",
	"status_image_url", "status_description", "created_at", "updated_at",
}

func TestPostgresProfileRepository_FindByHandle(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresProfileRepository(db)
	id := types.NewID[types.TrainerKind]()
	userID := types.NewUserID()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM trainer_profiles WHERE handle = \$1 LIMIT 1`).
		WithArgs("coach").
		WillReturnRows(sqlmock.NewRows(profileRowColumns).AddRow(
			id.String(), userID.String(), "coach", "Bio", "", "", "", 7, true, now,
			false, nil, 4.5, 12, "", "", now, now,
		))

	handle, _ := domain.NewHandle("coach")
	p, err := repo.FindByHandle(context.Background(), handle)

	require.NoError(t, err)
	assert.Equal(t, id, p.ID())
	assert.Equal(t, userID, p.UserID())
	assert.True(t, p.IsListed())
	assert.Equal(t, 12, p.TotalClients())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProfileRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresProfileRepository(db)
	mock.ExpectQuery(`SELECT (.+) FROM trainer_profiles WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(profileRowColumns))

	_, err := repo.FindByID(context.Background(), types.NewID[types.TrainerKind]())

	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestPostgresProfileRepository_SaveMapsHandleConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresProfileRepository(db)
	mock.ExpectExec(`INSERT INTO trainer_profiles (.+) ON CONFLICT \(id\) DO UPDATE`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_trainer_profiles_handle"})

	handle, _ := domain.NewHandle("taken")
	p, err := domain.NewProfile(types.NewUserID(), handle, domain.ProfileDetails{})
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Save(context.Background(), p), domain.ErrHandleTaken)
}

func TestPostgresProfileRepository_ListedSearchOrdersByRating(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresProfileRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM trainer_profiles WHERE is_suspended = \$1 AND is_verified = \$2 AND years_experience >= \$3`).
		WithArgs(false, true, 3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY rating_average DESC, total_clients DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows(profileRowColumns))

	profiles, total, err := repo.List(context.Background(),
		domain.ProfileFilter{Listed: true, MinExperience: 3}, types.NewPage(1, 10))

	require.NoError(t, err)
	assert.Empty(t, profiles)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReviewRepository_ApprovedRating(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresReviewRepository(db)
	trainerID := types.NewID[types.TrainerKind]()

	mock.ExpectQuery(`SELECT COALESCE\(AVG\(rating\), 0\) AS average, COUNT\(\*\) AS count FROM trainer_reviews WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"average", "count"}).AddRow(4.25, 4))

	avg, n, err := repo.ApprovedRating(context.Background(), trainerID)

	require.NoError(t, err)
	assert.InDelta(t, 4.25, avg, 0.0001)
	assert.Equal(t, 4, n)
}

func TestPostgresReviewRepository_DeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresReviewRepository(db)
	mock.ExpectExec(`DELETE FROM trainer_reviews WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), types.NewID[types.ReviewKind]())

	assert.ErrorIs(t, err, domain.ErrReviewNotFound)
}

func TestPostgresClientLinkRepository_FindMissingIsNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresClientLinkRepository(db)
	mock.ExpectQuery(`SELECT (.+) FROM trainer_clients WHERE client_id = \$1 AND trainer_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"trainer_id", "client_id", "active_subscriptions", "first_subscribed_at", "updated_at"}))

	link, err := repo.Find(context.Background(), types.NewID[types.TrainerKind](), types.NewUserID())

	require.NoError(t, err)
	assert.Nil(t, link)
}
