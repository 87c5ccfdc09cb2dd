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
	"github.com/AlagappanMk24/Gymunity/modules/programs/domain"
	"github.com/AlagappanMk24/Gymunity/modules/programs/infrastructure/persistence"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func newMockDB(t *testing.T) (*postgres.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return postgres.NewDB(sqlx.NewDb(raw, "postgres")), mock
}

var programRowColumns = []string{
	"id", "trainer_id", "title", "description", "type", "duration_weeks",
	"price_cents", "currency", "is_public", "max_clients", "thumbnail_url",
	"created_at", "updated_at", "deleted_at",
}

func TestPostgresProgramRepository_FindByIDAssemblesTree(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresProgramRepository(db)
	id := types.NewID[types.ProgramKind]()
	trainerID := types.NewID[types.TrainerKind]()
	weekID := types.NewID[domain.WeekKind]()
	dayID := types.NewID[types.ProgramDayKind]()
	exID := types.NewID[types.ExerciseKind]()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM programs WHERE deleted_at IS NULL AND id = \$1 LIMIT 1`).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(programRowColumns).AddRow(
			id.String(), trainerID.String(), "Strength", "", "Workout", 4,
			4999, "USD", true, 0, "", now, now, nil,
		))
	mock.ExpectQuery(`SELECT id, program_id, week_number FROM program_weeks WHERE program_id = \$1 ORDER BY week_number`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "program_id", "week_number"}).
			AddRow(weekID.String(), id.String(), 1))
	mock.ExpectQuery(`SELECT (.+) FROM program_days WHERE program_id = \$1 ORDER BY day_number`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "week_id", "day_number", "title", "notes"}).
			AddRow(dayID.String(), weekID.String(), 1, "Lower Body A", ""))
	mock.ExpectQuery(`SELECT (.+) FROM program_day_exercises WHERE program_id = \$1 ORDER BY order_index`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "day_id", "exercise_id", "order_index", "sets", "reps", "rest_seconds", "tempo", "notes"}).
			AddRow(types.NewID[domain.DayExerciseKind]().String(), dayID.String(), exID.String(), 1, 4, "8-10", 90, "", ""))

	p, err := repo.FindByID(context.Background(), id)

	require.NoError(t, err)
	require.Len(t, p.Weeks(), 1)
	require.Len(t, p.Weeks()[0].Days, 1)
	assert.Equal(t, "Lower Body A", p.Weeks()[0].Days[0].Title)
	assert.Equal(t, exID, p.Weeks()[0].Days[0].Exercises[0].ExerciseID)
	assert.Equal(t, int64(4999), p.Details().Price.Amount())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProgramRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresProgramRepository(db)
	mock.ExpectQuery(`SELECT (.+) FROM programs`).WillReturnRows(sqlmock.NewRows(programRowColumns))

	_, err := repo.FindByID(context.Background(), types.NewID[types.ProgramKind]())

	assert.ErrorIs(t, err, domain.ErrProgramNotFound)
}

func TestPostgresProgramRepository_SaveReplacesTree(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresProgramRepository(db)
	p, err := domain.NewProgram(types.NewID[types.TrainerKind](), domain.ProgramDetails{Title: "Strength", DurationWeeks: 2}, false)
	require.NoError(t, err)
	w, err := p.AddWeek()
	require.NoError(t, err)
	_, err = p.AddDay(w.ID, 1, "Day 1", "")
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO programs (.+) ON CONFLICT \(id\) DO UPDATE`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM program_weeks WHERE program_id = \$1`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO program_weeks \(id,program_id,week_number\) VALUES \(\$1,\$2,\$3\)`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO program_days`).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProgramRepository_SaveMapsTitleConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresProgramRepository(db)
	p, err := domain.NewProgram(types.NewID[types.TrainerKind](), domain.ProgramDetails{Title: "Strength", DurationWeeks: 2}, false)
	require.NoError(t, err)
	mock.ExpectExec(`INSERT INTO programs`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_programs_trainer_title"})

	assert.ErrorIs(t, repo.Save(context.Background(), p), domain.ErrTitleTaken)
}

func TestPostgresProgramRepository_CountOwned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresProgramRepository(db)
	trainerID := types.NewID[types.TrainerKind]()
	a, b := types.NewID[types.ProgramKind](), types.NewID[types.ProgramKind]()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM programs WHERE deleted_at IS NULL AND id IN \(\$1,\$2\) AND trainer_id = \$3`).
		WithArgs(a.String(), b.String(), trainerID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	n, err := repo.CountOwned(context.Background(), trainerID, []types.ProgramID{a, b})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPostgresExerciseRepository_NameTakenGlobal(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresExerciseRepository(db)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM exercises WHERE trainer_id IS NULL AND lower\(name\) = lower\(\$1\)`).
		WithArgs("Back Squat").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	taken, err := repo.NameTaken(context.Background(), nil, " Back Squat ")

	require.NoError(t, err)
	assert.True(t, taken)
}
