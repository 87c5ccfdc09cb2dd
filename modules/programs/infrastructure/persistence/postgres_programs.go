// Package persistence stores program trees and the exercise library.
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

const (
	programsTable     = "programs"
	weeksTable        = "program_weeks"
	daysTable         = "program_days"
	dayExercisesTable = "program_day_exercises"

	uniqueProgramTitle = "uq_programs_trainer_title"
)

var programColumns = []string{
	"id", "trainer_id", "title", "description", "type", "duration_weeks",
	"price_cents", "currency", "is_public", "max_clients", "thumbnail_url",
	"created_at", "updated_at", "deleted_at",
}

type programRow struct {
	ID            types.ProgramID `db:"id"`
	TrainerID     types.TrainerID `db:"trainer_id"`
	Title         string          `db:"title"`
	Description   string          `db:"description"`
	Type          string          `db:"type"`
	DurationWeeks int             `db:"duration_weeks"`
	PriceCents    int64           `db:"price_cents"`
	Currency      string          `db:"currency"`
	IsPublic      bool            `db:"is_public"`
	MaxClients    int             `db:"max_clients"`
	ThumbnailURL  string          `db:"thumbnail_url"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
	DeletedAt     *time.Time      `db:"deleted_at"`
}

func (r programRow) toDomain(weeks []*domain.Week) *domain.Program {
	price, err := types.NewMoney(r.PriceCents, r.Currency)
	if err != nil {
		price = types.MustNewMoney(r.PriceCents, types.DefaultCurrency)
	}
	return domain.ReconstituteProgram(domain.ProgramState{
		ID:        r.ID,
		TrainerID: r.TrainerID,
		Details: domain.ProgramDetails{
			Title:         r.Title,
			Description:   r.Description,
			Type:          domain.ProgramType(r.Type),
			DurationWeeks: r.DurationWeeks,
			Price:         price,
			MaxClients:    r.MaxClients,
			ThumbnailURL:  r.ThumbnailURL,
		},
		IsPublic:  r.IsPublic,
		Weeks:     weeks,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		DeletedAt: r.DeletedAt,
	})
}

type weekRow struct {
	ID         domain.WeekID   `db:"id"`
	ProgramID  types.ProgramID `db:"program_id"`
	WeekNumber int             `db:"week_number"`
}

type dayRow struct {
	ID        types.ProgramDayID `db:"id"`
	WeekID    domain.WeekID      `db:"week_id"`
	DayNumber int                `db:"day_number"`
	Title     string             `db:"title"`
	Notes     string             `db:"notes"`
}

type dayExerciseRow struct {
	ID          domain.DayExerciseID `db:"id"`
	DayID       types.ProgramDayID   `db:"day_id"`
	ExerciseID  types.ExerciseID     `db:"exercise_id"`
	OrderIndex  int                  `db:"order_index"`
	Sets        int                  `db:"sets"`
	Reps        string               `db:"reps"`
	RestSeconds int                  `db:"rest_seconds"`
	Tempo       string               `db:"tempo"`
	Notes       string               `db:"notes"`
}

// PostgresProgramRepository implements ProgramRepository on PostgreSQL.
// Save replaces the week tree, so it must run inside a transaction.
type PostgresProgramRepository struct {
	db *postgres.DB
}

func NewPostgresProgramRepository(db *postgres.DB) *PostgresProgramRepository {
	return &PostgresProgramRepository{db: db}
}

var _ domain.ProgramRepository = (*PostgresProgramRepository)(nil)

func (r *PostgresProgramRepository) Save(ctx context.Context, p *domain.Program) error {
	s := p.State()
	d := s.Details
	q := postgres.Builder().
		Insert(programsTable).
		Columns(programColumns...).
		Values(
			s.ID, s.TrainerID, d.Title, d.Description, string(d.Type), d.DurationWeeks,
			d.Price.Amount(), d.Price.Currency(), s.IsPublic, d.MaxClients, d.ThumbnailURL,
			s.CreatedAt, s.UpdatedAt, s.DeletedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			type = EXCLUDED.type,
			duration_weeks = EXCLUDED.duration_weeks,
			price_cents = EXCLUDED.price_cents,
			currency = EXCLUDED.currency,
			is_public = EXCLUDED.is_public,
			max_clients = EXCLUDED.max_clients,
			thumbnail_url = EXCLUDED.thumbnail_url,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at`)
	if _, err := r.db.Exec(ctx, q); err != nil {
		if postgres.IsUniqueViolation(err, uniqueProgramTitle) {
			return domain.ErrTitleTaken
		}
		return fmt.Errorf("saving program: %w", err)
	}
	return r.replaceTree(ctx, s.ID, s.Weeks)
}

// replaceTree rewrites the weeks of a program. Days and day exercises go
// with their week through ON DELETE CASCADE.
func (r *PostgresProgramRepository) replaceTree(ctx context.Context, id types.ProgramID, weeks []*domain.Week) error {
	if _, err := r.db.Exec(ctx, postgres.Builder().Delete(weeksTable).Where(sq.Eq{"program_id": id})); err != nil {
		return fmt.Errorf("clearing program weeks: %w", err)
	}
	if len(weeks) == 0 {
		return nil
	}

	wq := postgres.Builder().Insert(weeksTable).Columns("id", "program_id", "week_number")
	dq := postgres.Builder().Insert(daysTable).Columns("id", "program_id", "week_id", "day_number", "title", "notes")
	eq := postgres.Builder().Insert(dayExercisesTable).Columns(
		"id", "program_id", "day_id", "exercise_id", "order_index",
		"sets", "reps", "rest_seconds", "tempo", "notes",
	)
	var days, exercises int
	for _, w := range weeks {
		wq = wq.Values(w.ID, id, w.WeekNumber)
		for _, d := range w.Days {
			dq = dq.Values(d.ID, id, w.ID, d.DayNumber, d.Title, d.Notes)
			days++
			for _, e := range d.Exercises {
				eq = eq.Values(e.ID, id, d.ID, e.ExerciseID, e.OrderIndex, e.Sets, e.Reps, e.RestSeconds, e.Tempo, e.Notes)
				exercises++
			}
		}
	}

	if _, err := r.db.Exec(ctx, wq); err != nil {
		return fmt.Errorf("saving program weeks: %w", err)
	}
	if days > 0 {
		if _, err := r.db.Exec(ctx, dq); err != nil {
			return fmt.Errorf("saving program days: %w", err)
		}
	}
	if exercises > 0 {
		if _, err := r.db.Exec(ctx, eq); err != nil {
			return fmt.Errorf("saving day exercises: %w", err)
		}
	}
	return nil
}

func (r *PostgresProgramRepository) FindByID(ctx context.Context, id types.ProgramID) (*domain.Program, error) {
	q := postgres.Builder().
		Select(programColumns...).
		From(programsTable).
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		Limit(1)
	var row programRow
	if err := r.db.Get(ctx, &row, q); err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrProgramNotFound
		}
		return nil, fmt.Errorf("finding program: %w", err)
	}
	weeks, err := r.loadTree(ctx, id)
	if err != nil {
		return nil, err
	}
	return row.toDomain(weeks), nil
}

func (r *PostgresProgramRepository) loadTree(ctx context.Context, id types.ProgramID) ([]*domain.Week, error) {
	var weekRows []weekRow
	wq := postgres.Builder().Select("id", "program_id", "week_number").From(weeksTable).
		Where(sq.Eq{"program_id": id}).OrderBy("week_number")
	if err := r.db.Select(ctx, &weekRows, wq); err != nil {
		return nil, fmt.Errorf("loading program weeks: %w", err)
	}
	if len(weekRows) == 0 {
		return nil, nil
	}

	var dayRows []dayRow
	dq := postgres.Builder().Select("id", "week_id", "day_number", "title", "notes").From(daysTable).
		Where(sq.Eq{"program_id": id}).OrderBy("day_number")
	if err := r.db.Select(ctx, &dayRows, dq); err != nil {
		return nil, fmt.Errorf("loading program days: %w", err)
	}

	var exRows []dayExerciseRow
	eq := postgres.Builder().
		Select("id", "day_id", "exercise_id", "order_index", "sets", "reps", "rest_seconds", "tempo", "notes").
		From(dayExercisesTable).
		Where(sq.Eq{"program_id": id}).
		OrderBy("order_index")
	if err := r.db.Select(ctx, &exRows, eq); err != nil {
		return nil, fmt.Errorf("loading day exercises: %w", err)
	}

	days := make(map[types.ProgramDayID]*domain.Day, len(dayRows))
	weeks := make([]*domain.Week, 0, len(weekRows))
	byWeek := make(map[domain.WeekID]*domain.Week, len(weekRows))
	for _, w := range weekRows {
		week := &domain.Week{ID: w.ID, WeekNumber: w.WeekNumber}
		weeks = append(weeks, week)
		byWeek[w.ID] = week
	}
	for _, d := range dayRows {
		day := &domain.Day{ID: d.ID, DayNumber: d.DayNumber, Title: d.Title, Notes: d.Notes}
		days[d.ID] = day
		if w, ok := byWeek[d.WeekID]; ok {
			w.Days = append(w.Days, day)
		}
	}
	for _, e := range exRows {
		if d, ok := days[e.DayID]; ok {
			d.Exercises = append(d.Exercises, &domain.DayExercise{
				ID:          e.ID,
				ExerciseID:  e.ExerciseID,
				OrderIndex:  e.OrderIndex,
				Sets:        e.Sets,
				Reps:        e.Reps,
				RestSeconds: e.RestSeconds,
				Tempo:       e.Tempo,
				Notes:       e.Notes,
			})
		}
	}
	return weeks, nil
}

func (r *PostgresProgramRepository) TitleTaken(ctx context.Context, trainerID types.TrainerID, title string, except types.ProgramID) (bool, error) {
	q := postgres.Builder().Select("COUNT(*)").From(programsTable).
		Where(sq.Eq{"trainer_id": trainerID, "deleted_at": nil}).
		Where("lower(title) = lower(?)", strings.TrimSpace(title))
	if !except.IsZero() {
		q = q.Where(sq.NotEq{"id": except})
	}
	n, err := r.db.Count(ctx, q)
	if err != nil {
		return false, fmt.Errorf("checking program title: %w", err)
	}
	return n > 0, nil
}

func applyProgramFilter(q sq.SelectBuilder, f domain.ProgramFilter) sq.SelectBuilder {
	q = q.Where(sq.Eq{"deleted_at": nil})
	if f.TrainerID != nil {
		q = q.Where(sq.Eq{"trainer_id": *f.TrainerID})
	}
	if f.IsPublic != nil {
		q = q.Where(sq.Eq{"is_public": *f.IsPublic})
	}
	if f.Type != "" {
		q = q.Where(sq.Eq{"type": string(f.Type)})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := postgres.Like(s)
		q = q.Where(sq.Or{sq.ILike{"title": like}, sq.ILike{"description": like}})
	}
	return q
}

func (r *PostgresProgramRepository) List(ctx context.Context, filter domain.ProgramFilter, page types.Page) ([]*domain.Program, int, error) {
	total, err := r.db.Count(ctx, applyProgramFilter(postgres.Builder().Select("COUNT(*)").From(programsTable), filter))
	if err != nil {
		return nil, 0, fmt.Errorf("counting programs: %w", err)
	}
	q := applyProgramFilter(postgres.Builder().Select(programColumns...).From(programsTable), filter).
		OrderBy("created_at DESC").
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset()))
	var rows []programRow
	if err := r.db.Select(ctx, &rows, q); err != nil {
		return nil, 0, fmt.Errorf("listing programs: %w", err)
	}
	programs := make([]*domain.Program, len(rows))
	for i, row := range rows {
		programs[i] = row.toDomain(nil)
	}
	return programs, total, nil
}

func (r *PostgresProgramRepository) Stats(ctx context.Context) (domain.ProgramStats, error) {
	q := postgres.Builder().
		Select(
			"COUNT(*) AS total",
			"COUNT(*) FILTER (WHERE is_public) AS public",
			"COUNT(*) FILTER (WHERE NOT is_public) AS private",
		).
		From(programsTable).
		Where(sq.Eq{"deleted_at": nil})
	var s domain.ProgramStats
	if err := r.db.Get(ctx, &s, q); err != nil {
		return domain.ProgramStats{}, fmt.Errorf("counting programs: %w", err)
	}
	return s, nil
}

func (r *PostgresProgramRepository) CountOwned(ctx context.Context, trainerID types.TrainerID, ids []types.ProgramID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := postgres.Builder().Select("COUNT(*)").From(programsTable).
		Where(sq.Eq{"id": ids, "trainer_id": trainerID, "deleted_at": nil})
	n, err := r.db.Count(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("counting owned programs: %w", err)
	}
	return n, nil
}

func (r *PostgresProgramRepository) DayExists(ctx context.Context, id types.ProgramDayID) (bool, error) {
	q := postgres.Builder().Select("COUNT(*)").
		From(daysTable + " d").
		Join(programsTable + " p ON p.id = d.program_id").
		Where(sq.Eq{"d.id": id, "p.deleted_at": nil})
	n, err := r.db.Count(ctx, q)
	if err != nil {
		return false, fmt.Errorf("checking program day: %w", err)
	}
	return n > 0, nil
}
