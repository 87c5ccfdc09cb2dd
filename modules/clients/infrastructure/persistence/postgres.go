// Package persistence stores client profiles, body stats and workout logs.
package persistence

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/clients/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

const (
	profilesTable  = "client_profiles"
	bodyStatsTable = "body_stat_logs"
	workoutsTable  = "workout_logs"
)

var profileColumns = []string{
	"user_id", "height_cm", "starting_weight_kg", "gender", "goal", "experience_level", "created_at", "updated_at",
}

type profileRow struct {
	UserID           types.UserID `db:"user_id"`
	HeightCm         *int         `db:"height_cm"`
	StartingWeightKg *float64     `db:"starting_weight_kg"`
	Gender           *string      `db:"gender"`
	Goal             *string      `db:"goal"`
	ExperienceLevel  string       `db:"experience_level"`
	CreatedAt        time.Time    `db:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at"`
}

func (r profileRow) toDomain() *domain.Profile {
	d := domain.ProfileDetails{
		HeightCm:         r.HeightCm,
		StartingWeightKg: r.StartingWeightKg,
		ExperienceLevel:  domain.ExperienceLevel(r.ExperienceLevel),
	}
	if r.Gender != nil {
		if g, err := domain.ParseGender(*r.Gender); err == nil {
			d.Gender = &g
		}
	}
	if r.Goal != nil {
		if g, err := domain.ParseGoal(*r.Goal); err == nil {
			d.Goal = &g
		}
	}
	return domain.ReconstituteProfile(domain.ProfileState{
		UserID:    r.UserID,
		Details:   d,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	})
}

func nullable[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

type PostgresProfileRepository struct {
	db *postgres.DB
}

func NewPostgresProfileRepository(db *postgres.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

var _ domain.ProfileRepository = (*PostgresProfileRepository)(nil)

func (r *PostgresProfileRepository) Save(ctx context.Context, p *domain.Profile) error {
	s := p.State()
	d := s.Details
	q := postgres.Builder().
		Insert(profilesTable).
		Columns(profileColumns...).
		Values(s.UserID, d.HeightCm, d.StartingWeightKg, nullable(d.Gender), nullable(d.Goal), string(d.ExperienceLevel), s.CreatedAt, s.UpdatedAt).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			height_cm = EXCLUDED.height_cm,
			starting_weight_kg = EXCLUDED.starting_weight_kg,
			gender = EXCLUDED.gender,
			goal = EXCLUDED.goal,
			experience_level = EXCLUDED.experience_level,
			updated_at = EXCLUDED.updated_at`)
	if _, err := r.db.Exec(ctx, q); err != nil {
		return fmt.Errorf("saving client profile: %w", err)
	}
	return nil
}

func (r *PostgresProfileRepository) FindByUser(ctx context.Context, userID types.UserID) (*domain.Profile, error) {
	q := postgres.Builder().Select(profileColumns...).From(profilesTable).Where(sq.Eq{"user_id": userID})
	var row profileRow
	if err := r.db.Get(ctx, &row, q); err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("finding client profile: %w", err)
	}
	return row.toDomain(), nil
}

func (r *PostgresProfileRepository) DeleteByUser(ctx context.Context, userID types.UserID) error {
	if _, err := r.db.Exec(ctx, postgres.Builder().Delete(profilesTable).Where(sq.Eq{"user_id": userID})); err != nil {
		return fmt.Errorf("deleting client profile: %w", err)
	}
	return nil
}

var bodyStatColumns = []string{
	"id", "user_id", "weight_kg", "body_fat_percent", "measurements_json",
	"photo_front_url", "photo_side_url", "photo_back_url", "notes", "logged_at",
}

type bodyStatRow struct {
	ID               types.BodyStatID `db:"id"`
	UserID           types.UserID     `db:"user_id"`
	WeightKg         *float64         `db:"weight_kg"`
	BodyFatPercent   *float64         `db:"body_fat_percent"`
	MeasurementsJSON string           `db:"measurements_json"`
	PhotoFrontURL    string           `db:"photo_front_url"`
	PhotoSideURL     string           `db:"photo_side_url"`
	PhotoBackURL     string           `db:"photo_back_url"`
	Notes            string           `db:"notes"`
	LoggedAt         time.Time        `db:"logged_at"`
}

func (r bodyStatRow) toDomain() *domain.BodyStatLog {
	return domain.ReconstituteBodyStatLog(domain.BodyStatState{
		ID:     r.ID,
		UserID: r.UserID,
		Details: domain.BodyStatDetails{
			WeightKg:         r.WeightKg,
			BodyFatPercent:   r.BodyFatPercent,
			MeasurementsJSON: r.MeasurementsJSON,
			PhotoFrontURL:    r.PhotoFrontURL,
			PhotoSideURL:     r.PhotoSideURL,
			PhotoBackURL:     r.PhotoBackURL,
			Notes:            r.Notes,
			LoggedAt:         r.LoggedAt,
		},
	})
}

type PostgresBodyStatRepository struct {
	db *postgres.DB
}

func NewPostgresBodyStatRepository(db *postgres.DB) *PostgresBodyStatRepository {
	return &PostgresBodyStatRepository{db: db}
}

var _ domain.BodyStatRepository = (*PostgresBodyStatRepository)(nil)

func (r *PostgresBodyStatRepository) Save(ctx context.Context, b *domain.BodyStatLog) error {
	s := b.State()
	d := s.Details
	q := postgres.Builder().
		Insert(bodyStatsTable).
		Columns(bodyStatColumns...).
		Values(s.ID, s.UserID, d.WeightKg, d.BodyFatPercent, d.MeasurementsJSON,
			d.PhotoFrontURL, d.PhotoSideURL, d.PhotoBackURL, d.Notes, d.LoggedAt)
	if _, err := r.db.Exec(ctx, q); err != nil {
		return fmt.Errorf("saving body stat: %w", err)
	}
	return nil
}

func (r *PostgresBodyStatRepository) ListByUser(ctx context.Context, userID types.UserID, page types.Page) ([]*domain.BodyStatLog, int, error) {
	where := sq.Eq{"user_id": userID}
	total, err := r.db.Count(ctx, postgres.Builder().Select("COUNT(*)").From(bodyStatsTable).Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("counting body stats: %w", err)
	}
	q := postgres.Builder().Select(bodyStatColumns...).From(bodyStatsTable).
		Where(where).
		OrderBy("logged_at DESC").
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset()))
	var rows []bodyStatRow
	if err := r.db.Select(ctx, &rows, q); err != nil {
		return nil, 0, fmt.Errorf("listing body stats: %w", err)
	}
	out := make([]*domain.BodyStatLog, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, total, nil
}

func (r *PostgresBodyStatRepository) LatestWeighed(ctx context.Context, userID types.UserID) (*domain.BodyStatLog, error) {
	q := postgres.Builder().Select(bodyStatColumns...).From(bodyStatsTable).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.NotEq{"weight_kg": nil}).
		OrderBy("logged_at DESC").
		Limit(1)
	var row bodyStatRow
	if err := r.db.Get(ctx, &row, q); err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrBodyStatNotFound
		}
		return nil, fmt.Errorf("finding latest body stat: %w", err)
	}
	return row.toDomain(), nil
}

func (r *PostgresBodyStatRepository) DeleteByUser(ctx context.Context, userID types.UserID) (int, error) {
	n, err := r.db.Exec(ctx, postgres.Builder().Delete(bodyStatsTable).Where(sq.Eq{"user_id": userID}))
	if err != nil {
		return 0, fmt.Errorf("deleting body stats: %w", err)
	}
	return int(n), nil
}

var workoutColumns = []string{
	"id", "user_id", "program_day_id", "completed_at", "notes", "duration_minutes", "exercises_logged_json",
}

type workoutRow struct {
	ID                  types.WorkoutLogID `db:"id"`
	UserID              types.UserID       `db:"user_id"`
	ProgramDayID        types.ProgramDayID `db:"program_day_id"`
	CompletedAt         time.Time          `db:"completed_at"`
	Notes               string             `db:"notes"`
	DurationMinutes     int                `db:"duration_minutes"`
	ExercisesLoggedJSON string             `db:"exercises_logged_json"`
}

func (r workoutRow) toDomain() *domain.WorkoutLog {
	return domain.ReconstituteWorkoutLog(domain.WorkoutState{
		ID:     r.ID,
		UserID: r.UserID,
		Details: domain.WorkoutDetails{
			ProgramDayID:        r.ProgramDayID,
			CompletedAt:         r.CompletedAt,
			Notes:               r.Notes,
			DurationMinutes:     r.DurationMinutes,
			ExercisesLoggedJSON: r.ExercisesLoggedJSON,
		},
	})
}

type PostgresWorkoutLogRepository struct {
	db *postgres.DB
}

func NewPostgresWorkoutLogRepository(db *postgres.DB) *PostgresWorkoutLogRepository {
	return &PostgresWorkoutLogRepository{db: db}
}

var _ domain.WorkoutLogRepository = (*PostgresWorkoutLogRepository)(nil)

func (r *PostgresWorkoutLogRepository) Save(ctx context.Context, w *domain.WorkoutLog) error {
	s := w.State()
	d := s.Details
	q := postgres.Builder().
		Insert(workoutsTable).
		Columns(workoutColumns...).
		Values(s.ID, s.UserID, d.ProgramDayID, d.CompletedAt, d.Notes, d.DurationMinutes, d.ExercisesLoggedJSON)
	if _, err := r.db.Exec(ctx, q); err != nil {
		return fmt.Errorf("saving workout log: %w", err)
	}
	return nil
}

func (r *PostgresWorkoutLogRepository) FindByID(ctx context.Context, id types.WorkoutLogID) (*domain.WorkoutLog, error) {
	q := postgres.Builder().Select(workoutColumns...).From(workoutsTable).Where(sq.Eq{"id": id})
	var row workoutRow
	if err := r.db.Get(ctx, &row, q); err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrWorkoutLogNotFound
		}
		return nil, fmt.Errorf("finding workout log: %w", err)
	}
	return row.toDomain(), nil
}

func (r *PostgresWorkoutLogRepository) ListByUser(ctx context.Context, userID types.UserID, page types.Page) ([]*domain.WorkoutLog, int, error) {
	where := sq.Eq{"user_id": userID}
	total, err := r.db.Count(ctx, postgres.Builder().Select("COUNT(*)").From(workoutsTable).Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("counting workout logs: %w", err)
	}
	q := postgres.Builder().Select(workoutColumns...).From(workoutsTable).
		Where(where).
		OrderBy("completed_at DESC").
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset()))
	var rows []workoutRow
	if err := r.db.Select(ctx, &rows, q); err != nil {
		return nil, 0, fmt.Errorf("listing workout logs: %w", err)
	}
	out := make([]*domain.WorkoutLog, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, total, nil
}

type statsRow struct {
	Total        int        `db:"total"`
	Recent       int        `db:"recent"`
	TotalMinutes int        `db:"total_minutes"`
	LastAt       *time.Time `db:"last_at"`
}

func (r *PostgresWorkoutLogRepository) Stats(ctx context.Context, userID types.UserID, since time.Time) (domain.WorkoutStats, error) {
	q := postgres.Builder().
		Select("COUNT(*) AS total").
		Column(sq.Expr("COUNT(*) FILTER (WHERE completed_at >= ?) AS recent", since)).
		Column("COALESCE(SUM(duration_minutes), 0) AS total_minutes").
		Column("MAX(completed_at) AS last_at").
		From(workoutsTable).
		Where(sq.Eq{"user_id": userID})
	var row statsRow
	if err := r.db.Get(ctx, &row, q); err != nil {
		return domain.WorkoutStats{}, fmt.Errorf("reading workout stats: %w", err)
	}
	return domain.WorkoutStats(row), nil
}

func (r *PostgresWorkoutLogRepository) Delete(ctx context.Context, id types.WorkoutLogID) error {
	n, err := r.db.Exec(ctx, postgres.Builder().Delete(workoutsTable).Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("deleting workout log: %w", err)
	}
	if n == 0 {
		return domain.ErrWorkoutLogNotFound
	}
	return nil
}

func (r *PostgresWorkoutLogRepository) DeleteByUser(ctx context.Context, userID types.UserID) (int, error) {
	n, err := r.db.Exec(ctx, postgres.Builder().Delete(workoutsTable).Where(sq.Eq{"user_id": userID}))
	if err != nil {
		return 0, fmt.Errorf("deleting workout logs: %w", err)
	}
	return int(n), nil
}
