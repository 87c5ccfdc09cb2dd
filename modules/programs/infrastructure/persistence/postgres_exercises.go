package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/programs/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

const exercisesTable = "exercises"

var exerciseColumns = []string{
	"id", "trainer_id", "name", "category", "muscle_group", "equipment",
	"video_demo_url", "thumbnail_url", "created_at",
}

type exerciseRow struct {
	ID           types.ExerciseID `db:"id"`
	TrainerID    *types.TrainerID `db:"trainer_id"`
	Name         string           `db:"name"`
	Category     string           `db:"category"`
	MuscleGroup  string           `db:"muscle_group"`
	Equipment    string           `db:"equipment"`
	VideoDemoURL string           `db:"video_demo_url"`
	ThumbnailURL string           `db:"thumbnail_url"`
	CreatedAt    time.Time        `db:"created_at"`
}

func (r exerciseRow) toDomain() *domain.Exercise {
	return &domain.Exercise{
		ID:        r.ID,
		TrainerID: r.TrainerID,
		Details: domain.ExerciseDetails{
			Name:         r.Name,
			Category:     r.Category,
			MuscleGroup:  r.MuscleGroup,
			Equipment:    r.Equipment,
			VideoDemoURL: r.VideoDemoURL,
			ThumbnailURL: r.ThumbnailURL,
		},
		CreatedAt: r.CreatedAt,
	}
}

// PostgresExerciseRepository implements ExerciseRepository on PostgreSQL.
type PostgresExerciseRepository struct {
	db *postgres.DB
}

func NewPostgresExerciseRepository(db *postgres.DB) *PostgresExerciseRepository {
	return &PostgresExerciseRepository{db: db}
}

var _ domain.ExerciseRepository = (*PostgresExerciseRepository)(nil)

func (r *PostgresExerciseRepository) Save(ctx context.Context, e *domain.Exercise) error {
	d := e.Details
	q := postgres.Builder().
		Insert(exercisesTable).
		Columns(exerciseColumns...).
		Values(e.ID, e.TrainerID, d.Name, d.Category, d.MuscleGroup, d.Equipment, d.VideoDemoURL, d.ThumbnailURL, e.CreatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			muscle_group = EXCLUDED.muscle_group,
			equipment = EXCLUDED.equipment,
			video_demo_url = EXCLUDED.video_demo_url,
			thumbnail_url = EXCLUDED.thumbnail_url`)
	if _, err := r.db.Exec(ctx, q); err != nil {
		return fmt.Errorf("saving exercise: %w", err)
	}
	return nil
}

func (r *PostgresExerciseRepository) FindByID(ctx context.Context, id types.ExerciseID) (*domain.Exercise, error) {
	q := postgres.Builder().Select(exerciseColumns...).From(exercisesTable).Where(sq.Eq{"id": id}).Limit(1)
	var row exerciseRow
	if err := r.db.Get(ctx, &row, q); err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrExerciseNotFound
		}
		return nil, fmt.Errorf("finding exercise: %w", err)
	}
	return row.toDomain(), nil
}

func (r *PostgresExerciseRepository) FindByIDs(ctx context.Context, ids []types.ExerciseID) ([]*domain.Exercise, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := postgres.Builder().Select(exerciseColumns...).From(exercisesTable).Where(sq.Eq{"id": ids})
	var rows []exerciseRow
	if err := r.db.Select(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("finding exercises: %w", err)
	}
	out := make([]*domain.Exercise, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

// visibleTo limits rows to the global library plus trainerID's own.
func visibleTo(trainerID types.TrainerID) sq.Sqlizer {
	if trainerID.IsZero() {
		return sq.Eq{"trainer_id": nil}
	}
	return sq.Or{sq.Eq{"trainer_id": nil}, sq.Eq{"trainer_id": trainerID}}
}

func applyExerciseFilter(q sq.SelectBuilder, f domain.ExerciseFilter) sq.SelectBuilder {
	q = q.Where(visibleTo(f.TrainerID))
	if c := strings.TrimSpace(f.Category); c != "" {
		q = q.Where(sq.ILike{"category": c})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := postgres.Like(s)
		q = q.Where(sq.Or{sq.ILike{"name": like}, sq.ILike{"muscle_group": like}})
	}
	return q
}

func (r *PostgresExerciseRepository) List(ctx context.Context, filter domain.ExerciseFilter, page types.Page) ([]*domain.Exercise, int, error) {
	total, err := r.db.Count(ctx, applyExerciseFilter(postgres.Builder().Select("COUNT(*)").From(exercisesTable), filter))
	if err != nil {
		return nil, 0, fmt.Errorf("counting exercises: %w", err)
	}
	q := applyExerciseFilter(postgres.Builder().Select(exerciseColumns...).From(exercisesTable), filter).
		OrderBy("name").
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset()))
	var rows []exerciseRow
	if err := r.db.Select(ctx, &rows, q); err != nil {
		return nil, 0, fmt.Errorf("listing exercises: %w", err)
	}
	out := make([]*domain.Exercise, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, total, nil
}

func (r *PostgresExerciseRepository) NameTaken(ctx context.Context, trainerID *types.TrainerID, name string) (bool, error) {
	var owner types.TrainerID
	if trainerID != nil {
		owner = *trainerID
	}
	q := postgres.Builder().Select("COUNT(*)").From(exercisesTable).
		Where(visibleTo(owner)).
		Where("lower(name) = lower(?)", strings.TrimSpace(name))
	n, err := r.db.Count(ctx, q)
	if err != nil {
		return false, fmt.Errorf("checking exercise name: %w", err)
	}
	return n > 0, nil
}
