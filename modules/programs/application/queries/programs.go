// Package queries contains the read use cases of the programs module.
package queries

import (
	"context"
	"errors"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/programs/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// ProgramDTO is the list view of a program.
type ProgramDTO struct {
	ID            types.ProgramID `json:"id"`
	TrainerID     types.TrainerID `json:"trainerId"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Type          string          `json:"type"`
	DurationWeeks int             `json:"durationWeeks"`
	PriceCents    int64           `json:"priceCents"`
	Currency      string          `json:"currency"`
	IsPublic      bool            `json:"isPublic"`
	MaxClients    int             `json:"maxClients"`
	ThumbnailURL  string          `json:"thumbnailUrl,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func toProgramDTO(p *domain.Program) *ProgramDTO {
	d := p.Details()
	return &ProgramDTO{
		ID:            p.ID(),
		TrainerID:     p.TrainerID(),
		Title:         d.Title,
		Description:   d.Description,
		Type:          string(d.Type),
		DurationWeeks: d.DurationWeeks,
		PriceCents:    d.Price.Amount(),
		Currency:      d.Price.Currency(),
		IsPublic:      p.IsPublic(),
		MaxClients:    d.MaxClients,
		ThumbnailURL:  d.ThumbnailURL,
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

// ProgramDetailDTO is a program with its full week tree.
type ProgramDetailDTO struct {
	ProgramDTO
	WeeksCount    int        `json:"weeksCount"`
	ExerciseCount int        `json:"exerciseCount"`
	Weeks         []*WeekDTO `json:"weeks"`
}

type WeekDTO struct {
	ID         domain.WeekID `json:"id"`
	WeekNumber int           `json:"weekNumber"`
	Days       []*DayDTO     `json:"days"`
}

type DayDTO struct {
	ID        types.ProgramDayID `json:"id"`
	DayNumber int                `json:"dayNumber"`
	Title     string             `json:"title,omitempty"`
	Notes     string             `json:"notes,omitempty"`
	Exercises []*DayExerciseDTO  `json:"exercises"`
}

type DayExerciseDTO struct {
	ID           domain.DayExerciseID `json:"id"`
	ExerciseID   types.ExerciseID     `json:"exerciseId"`
	ExerciseName string               `json:"exerciseName,omitempty"`
	MuscleGroup  string               `json:"muscleGroup,omitempty"`
	OrderIndex   int                  `json:"orderIndex"`
	Sets         int                  `json:"sets"`
	Reps         string               `json:"reps,omitempty"`
	RestSeconds  int                  `json:"restSeconds"`
	Tempo        string               `json:"tempo,omitempty"`
	Notes        string               `json:"notes,omitempty"`
}

// GetProgramHandler loads a program tree. Private programs are visible to
// their trainer and administrators only.
type GetProgramHandler struct {
	repo      domain.ProgramRepository
	exercises domain.ExerciseRepository
	trainers  api.TrainerDirectory
}

func NewGetProgramHandler(repo domain.ProgramRepository, exercises domain.ExerciseRepository, trainers api.TrainerDirectory) *GetProgramHandler {
	return &GetProgramHandler{repo: repo, exercises: exercises, trainers: trainers}
}

func (h *GetProgramHandler) Handle(ctx context.Context, id types.ProgramID, viewer sharedauth.Principal) (*ProgramDetailDTO, error) {
	p, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsPublic() && !viewer.IsAdmin() && !h.owns(ctx, viewer, p) {
		return nil, domain.ErrProgramNotFound
	}

	names, err := h.exerciseIndex(ctx, p)
	if err != nil {
		return nil, err
	}
	dto := &ProgramDetailDTO{
		ProgramDTO:    *toProgramDTO(p),
		WeeksCount:    len(p.Weeks()),
		ExerciseCount: p.ExerciseCount(),
		Weeks:         make([]*WeekDTO, 0, len(p.Weeks())),
	}
	for _, w := range p.Weeks() {
		wd := &WeekDTO{ID: w.ID, WeekNumber: w.WeekNumber, Days: make([]*DayDTO, 0, len(w.Days))}
		for _, d := range w.Days {
			dd := &DayDTO{ID: d.ID, DayNumber: d.DayNumber, Title: d.Title, Notes: d.Notes, Exercises: make([]*DayExerciseDTO, 0, len(d.Exercises))}
			for _, e := range d.Exercises {
				ed := &DayExerciseDTO{
					ID:          e.ID,
					ExerciseID:  e.ExerciseID,
					OrderIndex:  e.OrderIndex,
					Sets:        e.Sets,
					Reps:        e.Reps,
					RestSeconds: e.RestSeconds,
					Tempo:       e.Tempo,
					Notes:       e.Notes,
				}
				if ex, ok := names[e.ExerciseID]; ok {
					ed.ExerciseName = ex.Details.Name
					ed.MuscleGroup = ex.Details.MuscleGroup
				}
				dd.Exercises = append(dd.Exercises, ed)
			}
			wd.Days = append(wd.Days, dd)
		}
		dto.Weeks = append(dto.Weeks, wd)
	}
	return dto, nil
}

func (h *GetProgramHandler) owns(ctx context.Context, viewer sharedauth.Principal, p *domain.Program) bool {
	if !viewer.IsTrainer() || h.trainers == nil {
		return false
	}
	t, err := h.trainers.TrainerByUser(ctx, viewer.UserID)
	return err == nil && p.OwnedBy(t.ID)
}

func (h *GetProgramHandler) exerciseIndex(ctx context.Context, p *domain.Program) (map[types.ExerciseID]*domain.Exercise, error) {
	seen := make(map[types.ExerciseID]bool)
	var ids []types.ExerciseID
	for _, w := range p.Weeks() {
		for _, d := range w.Days {
			for _, e := range d.Exercises {
				if !seen[e.ExerciseID] {
					seen[e.ExerciseID] = true
					ids = append(ids, e.ExerciseID)
				}
			}
		}
	}
	index := make(map[types.ExerciseID]*domain.Exercise, len(ids))
	if len(ids) == 0 {
		return index, nil
	}
	found, err := h.exercises.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, ex := range found {
		index[ex.ID] = ex
	}
	return index, nil
}

// ListProgramsHandler serves the trainer's own list, public discovery and
// the admin listing.
type ListProgramsHandler struct {
	repo     domain.ProgramRepository
	trainers api.TrainerDirectory
}

func NewListProgramsHandler(repo domain.ProgramRepository, trainers api.TrainerDirectory) *ListProgramsHandler {
	return &ListProgramsHandler{repo: repo, trainers: trainers}
}

func (h *ListProgramsHandler) list(ctx context.Context, filter domain.ProgramFilter, page types.Page) (types.Paged[*ProgramDTO], error) {
	programs, total, err := h.repo.List(ctx, filter, page)
	if err != nil {
		return types.Paged[*ProgramDTO]{}, err
	}
	items := make([]*ProgramDTO, len(programs))
	for i, p := range programs {
		items[i] = toProgramDTO(p)
	}
	return types.NewPaged(items, total, page), nil
}

// Mine lists the caller's programs, public and private.
func (h *ListProgramsHandler) Mine(ctx context.Context, userID types.UserID, page types.Page) (types.Paged[*ProgramDTO], error) {
	t, err := h.trainers.TrainerByUser(ctx, userID)
	if errors.Is(err, api.ErrNotFound) {
		return types.NewPaged[*ProgramDTO](nil, 0, page), nil
	}
	if err != nil {
		return types.Paged[*ProgramDTO]{}, err
	}
	return h.list(ctx, domain.ProgramFilter{TrainerID: &t.ID}, page)
}

// PublicQuery searches public programs, optionally of one trainer.
type PublicQuery struct {
	Search    string
	Type      string
	TrainerID *types.TrainerID
	Page      types.Page
}

func (h *ListProgramsHandler) Public(ctx context.Context, q PublicQuery) (types.Paged[*ProgramDTO], error) {
	filter := domain.ProgramFilter{IsPublic: boolPtr(true), Search: q.Search, TrainerID: q.TrainerID}
	if q.Type != "" {
		typ, err := domain.ParseProgramType(q.Type)
		if err != nil {
			return types.Paged[*ProgramDTO]{}, err
		}
		filter.Type = typ
	}
	return h.list(ctx, filter, q.Page)
}

// AdminQuery is the admin program listing filter.
type AdminQuery struct {
	Search    string
	IsPublic  *bool
	TrainerID *types.TrainerID
	Page      types.Page
}

func (h *ListProgramsHandler) Admin(ctx context.Context, q AdminQuery) (types.Paged[*ProgramDTO], error) {
	return h.list(ctx, domain.ProgramFilter{Search: q.Search, IsPublic: q.IsPublic, TrainerID: q.TrainerID}, q.Page)
}

func (h *ListProgramsHandler) Stats(ctx context.Context) (domain.ProgramStats, error) {
	return h.repo.Stats(ctx)
}

func boolPtr(b bool) *bool { return &b }
