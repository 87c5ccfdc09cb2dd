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

// ProgramTemplate describes a whole program. Every week repeats Days.
type ProgramTemplate struct {
	Input ProgramInput
	Weeks int
	Days  []DayTemplate
}

type DayTemplate struct {
	DayNumber int
	Title     string
	Exercises []PrescriptionTemplate
}

// PrescriptionTemplate names a global library exercise.
type PrescriptionTemplate struct {
	Exercise    string
	Sets        int
	Reps        string
	RestSeconds int
}

// EnsureProgramHandler builds a program from a template unless the trainer
// already has one with the same title.
type EnsureProgramHandler struct {
	repo      domain.ProgramRepository
	exercises domain.ExerciseRepository
	trainers  api.TrainerDirectory
	uow       *eventbus.UnitOfWork
}

func NewEnsureProgramHandler(repo domain.ProgramRepository, exercises domain.ExerciseRepository, trainers api.TrainerDirectory, uow *eventbus.UnitOfWork) *EnsureProgramHandler {
	return &EnsureProgramHandler{repo: repo, exercises: exercises, trainers: trainers, uow: uow}
}

func (h *EnsureProgramHandler) Handle(ctx context.Context, trainerUserID types.UserID, tmpl ProgramTemplate) (types.ProgramID, bool, error) {
	trainerID, err := trainerOf(ctx, h.trainers, trainerUserID)
	if err != nil {
		return types.ProgramID{}, false, err
	}
	details, err := tmpl.Input.details()
	if err != nil {
		return types.ProgramID{}, false, err
	}

	var (
		id      types.ProgramID
		created bool
	)
	err = h.uow.Execute(ctx, "programs.EnsureProgram", func(ctx context.Context, _ *eventbus.TransactionalEventBus) error {
		existing, _, err := h.repo.List(ctx, domain.ProgramFilter{TrainerID: &trainerID, Search: details.Title}, types.NewPage(1, types.MaxPageSize))
		if err != nil {
			return fmt.Errorf("finding program: %w", err)
		}
		for _, p := range existing {
			if strings.EqualFold(p.Title(), strings.TrimSpace(details.Title)) {
				id = p.ID()
				return nil
			}
		}

		program, err := domain.NewProgram(trainerID, details, tmpl.Input.IsPublic)
		if err != nil {
			return err
		}
		ids := make(map[string]types.ExerciseID)
		for w := 0; w < tmpl.Weeks; w++ {
			week, err := program.AddWeek()
			if err != nil {
				return err
			}
			for _, dt := range tmpl.Days {
				day, err := program.AddDay(week.ID, dt.DayNumber, dt.Title, "")
				if err != nil {
					return err
				}
				for _, pt := range dt.Exercises {
					exID, ok := ids[pt.Exercise]
					if !ok {
						if exID, _, err = EnsureGlobalExercise(ctx, h.exercises, domain.ExerciseDetails{Name: pt.Exercise, Category: "Strength"}); err != nil {
							return err
						}
						ids[pt.Exercise] = exID
					}
					if _, err := program.AddDayExercise(day.ID, domain.Prescription{
						ExerciseID:  exID,
						Sets:        pt.Sets,
						Reps:        pt.Reps,
						RestSeconds: pt.RestSeconds,
					}); err != nil {
						return err
					}
				}
			}
		}
		if err := h.repo.Save(ctx, program); err != nil {
			return fmt.Errorf("saving program: %w", err)
		}
		id, created = program.ID(), true
		return nil
	})
	return id, created, err
}
