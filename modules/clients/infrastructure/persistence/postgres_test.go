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
	"github.com/AlagappanMk24/Gymunity/modules/clients/domain"
	"github.com/AlagappanMk24/Gymunity/modules/clients/infrastructure/persistence"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func newMockDB(t *testing.T) (*postgres.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return postgres.NewDB(sqlx.NewDb(raw, "postgres")), mock
}

var (
	profileRowColumns  = []string{"user_id", "height_cm", "starting_weight_kg", "gender", "goal", "experience_level", "created_at", "updated_at"}
	bodyStatRowColumns = []string{"id", "user_id", "weight_kg", "body_fat_percent", "measurements_json", "photo_front_url", "photo_side_url", "photo_back_url", "notes", "logged_at"}
)

func TestPostgresProfileRepository_FindByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresProfileRepository(db)
	userID := types.NewUserID()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM client_profiles WHERE user_id = \$1`).
		WithArgs(userID.String()).
		WillReturnRows(sqlmock.NewRows(profileRowColumns).AddRow(userID.String(), 178, 84.0, "Male", nil, "Intermediate", now, now))

	p, err := repo.FindByUser(context.Background(), userID)

	require.NoError(t, err)
	d := p.Details()
	require.NotNil(t, d.HeightCm)
	assert.Equal(t, 178, *d.HeightCm)
	require.NotNil(t, d.Gender)
	assert.Equal(t, domain.GenderMale, *d.Gender)
	assert.Nil(t, d.Goal)
	assert.Equal(t, domain.LevelIntermediate, d.ExperienceLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProfileRepository_FindByUserMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresProfileRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM client_profiles`).WillReturnRows(sqlmock.NewRows(profileRowColumns))

	_, err := repo.FindByUser(context.Background(), types.NewUserID())

	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestPostgresProfileRepository_SaveUpserts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresProfileRepository(db)
	p, err := domain.NewProfile(types.NewUserID(), domain.ProfileDetails{})
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO client_profiles \(user_id,height_cm,starting_weight_kg,gender,goal,experience_level,created_at,updated_at\) VALUES \(.+\) ON CONFLICT \(user_id\) DO UPDATE`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBodyStatRepository_LatestWeighed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresBodyStatRepository(db)
	userID := types.NewUserID()
	id := types.NewID[types.BodyStatKind]()

	mock.ExpectQuery(`SELECT (.+) FROM body_stat_logs WHERE user_id = \$1 AND weight_kg IS NOT NULL ORDER BY logged_at DESC LIMIT 1`).
		WithArgs(userID.String()).
		WillReturnRows(sqlmock.NewRows(bodyStatRowColumns).AddRow(
			id.String(), userID.String(), 81.2, nil, `{"waistCm":80}`, "", "", "", "", time.Now().UTC(),
		))

	b, err := repo.LatestWeighed(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, id, b.ID())
	assert.Equal(t, 81.2, *b.Details().WeightKg)
	assert.Nil(t, b.Details().BodyFatPercent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWorkoutLogRepository_Stats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresWorkoutLogRepository(db)
	userID := types.NewUserID()
	since := time.Now().UTC().Add(-domain.ProgressWindow)
	last := time.Now().UTC()

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS total, COUNT\(\*\) FILTER \(WHERE completed_at >= \$1\) AS recent, COALESCE\(SUM\(duration_minutes\), 0\) AS total_minutes, MAX\(completed_at\) AS last_at FROM workout_logs WHERE user_id = \$2`).
		WithArgs(since, userID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"total", "recent", "total_minutes", "last_at"}).AddRow(9, 4, 420, last))

	stats, err := repo.Stats(context.Background(), userID, since)

	require.NoError(t, err)
	assert.Equal(t, 9, stats.Total)
	assert.Equal(t, 4, stats.Recent)
	assert.Equal(t, 420, stats.TotalMinutes)
	require.NotNil(t, stats.LastAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWorkoutLogRepository_DeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresWorkoutLogRepository(db)
	id := types.NewID[types.WorkoutLogKind]()

	mock.ExpectExec(`DELETE FROM workout_logs WHERE id = \$1`).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), id), domain.ErrWorkoutLogNotFound)
}
