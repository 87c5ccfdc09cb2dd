package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/programs/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// CreateExerciseCommand adds a custom exercise to the caller's library.
type CreateExerciseCommand struct {
	UserID  types.UserID
	Details domain.ExerciseDetails
}

type CreateExerciseHandler struct {
	repo     domain.ExerciseRepository
	trainers api.TrainerDirectory
	uow      *eventbus.UnitOfWork
}

func NewCreateExerciseHandler(repo domain.ExerciseRepository, trainers api.TrainerDirectory, uow *eventbus.UnitOfWork) *CreateExerciseHandler {
	return &CreateExerciseHandler{repo: repo, trainers: trainers, uow: uow}
}

func (h *CreateExerciseHandler) Handle(ctx context.Context, cmd CreateExerciseCommand) (*domain.Exercise, error) {
	trainerID, err := trainerOf(ctx, h.trainers, cmd.UserID)
	if err != nil {
		return nil, err
	}
	ex, err := domain.NewCustomExercise(trainerID, cmd.Details)
	if err != nil {
		return nil, err
	}
	err = h.uow.Execute(ctx, "programs.CreateExercise", func(ctx context.Context, _ *eventbus.TransactionalEventBus) error {
		return saveExercise(ctx, h.repo, ex)
	})
	if err != nil {
		return nil, err
	}
	return ex, nil
}

// EnsureGlobalExercise adds a library exercise unless a global one with the
// same name exists, returning the exercise and whether it was created.
func EnsureGlobalExercise(ctx context.Context, repo domain.ExerciseRepository, details domain.ExerciseDetails) (types.ExerciseID, bool, error) {
	ex, err := domain.NewGlobalExercise(details)
	if err != nil {
		return types.ExerciseID{}, false, err
	}
	existing, _, err := repo.List(ctx, domain.ExerciseFilter{Search: ex.Details.Name}, types.NewPage(1, types.MaxPageSize))
	if err != nil {
		return types.ExerciseID{}, false, fmt.Errorf("finding exercise: %w", err)
	}
	for _, e := range existing {
		if !e.IsCustom() && strings.EqualFold(e.Details.Name, ex.Details.Name) {
			return e.ID, false, nil
		}
	}
	if err := repo.Save(ctx, ex); err != nil {
		return types.ExerciseID{}, false, fmt.Errorf("saving exercise: %w", err)
	}
	return ex.ID, true, nil
}

func saveExercise(ctx context.Context, repo domain.ExerciseRepository, ex *domain.Exercise) error {
	taken, err := repo.NameTaken(ctx, ex.TrainerID, ex.Details.Name)
	if err != nil {
		return fmt.Errorf("checking exercise name: %w", err)
	}
	if taken {
		return domain.ErrExerciseNameTaken
	}
	if err := repo.Save(ctx, ex); err != nil {
		return fmt.Errorf("saving exercise: %w", err)
	}
	return nil
}
