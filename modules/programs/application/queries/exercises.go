package queries

import (
	"context"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/programs/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type ExerciseDTO struct {
	ID           types.ExerciseID `json:"id"`
	Name         string           `json:"name"`
	Category     string           `json:"category"`
	MuscleGroup  string           `json:"muscleGroup"`
	Equipment    string           `json:"equipment,omitempty"`
	VideoDemoURL string           `json:"videoDemoUrl,omitempty"`
	ThumbnailURL string           `json:"thumbnailUrl,omitempty"`
	IsCustom     bool             `json:"isCustom"`
	CreatedAt    time.Time        `json:"createdAt"`
}

func ToExerciseDTO(e *domain.Exercise) *ExerciseDTO {
	return &ExerciseDTO{
		ID:           e.ID,
		Name:         e.Details.Name,
		Category:     e.Details.Category,
		MuscleGroup:  e.Details.MuscleGroup,
		Equipment:    e.Details.Equipment,
		VideoDemoURL: e.Details.VideoDemoURL,
		ThumbnailURL: e.Details.ThumbnailURL,
		IsCustom:     e.IsCustom(),
		CreatedAt:    e.CreatedAt,
	}
}

// ExercisesHandler lists the global library plus, for trainers, their own
// custom exercises.
type ExercisesHandler struct {
	repo     domain.ExerciseRepository
	trainers api.TrainerDirectory
}

func NewExercisesHandler(repo domain.ExerciseRepository, trainers api.TrainerDirectory) *ExercisesHandler {
	return &ExercisesHandler{repo: repo, trainers: trainers}
}

type ExercisesQuery struct {
	Viewer   sharedauth.Principal
	Category string
	Search   string
	Page     types.Page
}

func (h *ExercisesHandler) Handle(ctx context.Context, q ExercisesQuery) (types.Paged[*ExerciseDTO], error) {
	filter := domain.ExerciseFilter{Category: q.Category, Search: q.Search}
	if q.Viewer.IsTrainer() && h.trainers != nil {
		if t, err := h.trainers.TrainerByUser(ctx, q.Viewer.UserID); err == nil {
			filter.TrainerID = t.ID
		}
	}
	exercises, total, err := h.repo.List(ctx, filter, q.Page)
	if err != nil {
		return types.Paged[*ExerciseDTO]{}, err
	}
	items := make([]*ExerciseDTO, len(exercises))
	for i, e := range exercises {
		items[i] = ToExerciseDTO(e)
	}
	return types.NewPaged(items, total, q.Page), nil
}
