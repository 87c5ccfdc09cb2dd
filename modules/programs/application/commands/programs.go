// Package commands contains the write use cases of the programs module.
package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/programs/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// trainerOf resolves the caller's trainer profile.
func trainerOf(ctx context.Context, trainers api.TrainerDirectory, userID types.UserID) (types.TrainerID, error) {
	t, err := trainers.TrainerByUser(ctx, userID)
	if errors.Is(err, api.ErrNotFound) {
		return types.TrainerID{}, domain.ErrTrainerRequired
	}
	if err != nil {
		return types.TrainerID{}, fmt.Errorf("resolving trainer: %w", err)
	}
	return t.ID, nil
}

// ProgramInput carries the editable fields of a program.
type ProgramInput struct {
	Title         string
	Description   string
	Type          string
	DurationWeeks int
	PriceCents    int64
	Currency      string
	MaxClients    int
	ThumbnailURL  string
	IsPublic      bool
}

func (in ProgramInput) details() (domain.ProgramDetails, error) {
	typ, err := domain.ParseProgramType(in.Type)
	if err != nil {
		return domain.ProgramDetails{}, err
	}
	currency := in.Currency
	if currency == "" {
		currency = types.DefaultCurrency
	}
	price, err := types.NewMoney(in.PriceCents, currency)
	if err != nil {
		return domain.ProgramDetails{}, err
	}
	return domain.ProgramDetails{
		Title:         in.Title,
		Description:   in.Description,
		Type:          typ,
		DurationWeeks: in.DurationWeeks,
		Price:         price,
		MaxClients:    in.MaxClients,
		ThumbnailURL:  in.ThumbnailURL,
	}, nil
}

func ensureTitleFree(ctx context.Context, repo domain.ProgramRepository, trainerID types.TrainerID, title string, self types.ProgramID) error {
	taken, err := repo.TitleTaken(ctx, trainerID, title, self)
	if err != nil {
		return fmt.Errorf("checking title: %w", err)
	}
	if taken {
		return domain.ErrTitleTaken
	}
	return nil
}

type CreateProgramCommand struct {
	UserID types.UserID
	Input  ProgramInput
}

type CreateProgramHandler struct {
	repo     domain.ProgramRepository
	trainers api.TrainerDirectory
	uow      *eventbus.UnitOfWork
}

func NewCreateProgramHandler(repo domain.ProgramRepository, trainers api.TrainerDirectory, uow *eventbus.UnitOfWork) *CreateProgramHandler {
	return &CreateProgramHandler{repo: repo, trainers: trainers, uow: uow}
}

func (h *CreateProgramHandler) Handle(ctx context.Context, cmd CreateProgramCommand) (types.ProgramID, error) {
	details, err := cmd.Input.details()
	if err != nil {
		return types.ProgramID{}, err
	}
	trainerID, err := trainerOf(ctx, h.trainers, cmd.UserID)
	if err != nil {
		return types.ProgramID{}, err
	}

	var id types.ProgramID
	err = h.uow.Execute(ctx, "programs.CreateProgram", func(ctx context.Context, _ *eventbus.TransactionalEventBus) error {
		program, err := domain.NewProgram(trainerID, details, cmd.Input.IsPublic)
		if err != nil {
			return err
		}
		if err := ensureTitleFree(ctx, h.repo, trainerID, program.Title(), types.ProgramID{}); err != nil {
			return err
		}
		if err := h.repo.Save(ctx, program); err != nil {
			return fmt.Errorf("saving program: %w", err)
		}
		id = program.ID()
		return nil
	})
	return id, err
}

// EditHandler runs the ownership-checked mutations of a program tree.
// Administrators may act on any program.
type EditHandler struct {
	repo      domain.ProgramRepository
	exercises domain.ExerciseRepository
	trainers  api.TrainerDirectory
	uow       *eventbus.UnitOfWork
	now       func() time.Time
}

func NewEditHandler(repo domain.ProgramRepository, exercises domain.ExerciseRepository, trainers api.TrainerDirectory, uow *eventbus.UnitOfWork) *EditHandler {
	return &EditHandler{repo: repo, exercises: exercises, trainers: trainers, uow: uow, now: time.Now}
}

func (h *EditHandler) mutate(ctx context.Context, name string, actor sharedauth.Principal, id types.ProgramID, fn func(p *domain.Program) error) error {
	var trainerID types.TrainerID
	if !actor.IsAdmin() {
		var err error
		if trainerID, err = trainerOf(ctx, h.trainers, actor.UserID); err != nil {
			return err
		}
	}
	return h.uow.Execute(ctx, name, func(ctx context.Context, _ *eventbus.TransactionalEventBus) error {
		program, err := h.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && !program.OwnedBy(trainerID) {
			return domain.ErrNotOwner
		}
		if err := fn(program); err != nil {
			return err
		}
		if err := h.repo.Save(ctx, program); err != nil {
			return fmt.Errorf("saving program: %w", err)
		}
		return nil
	})
}

func (h *EditHandler) Update(ctx context.Context, actor sharedauth.Principal, id types.ProgramID, in ProgramInput) error {
	details, err := in.details()
	if err != nil {
		return err
	}
	return h.mutate(ctx, "programs.UpdateProgram", actor, id, func(p *domain.Program) error {
		if err := ensureTitleFree(ctx, h.repo, p.TrainerID(), details.Title, p.ID()); err != nil {
			return err
		}
		if err := p.Update(details); err != nil {
			return err
		}
		if p.IsPublic() != in.IsPublic {
			p.ToggleVisibility()
		}
		return nil
	})
}

func (h *EditHandler) Delete(ctx context.Context, actor sharedauth.Principal, id types.ProgramID) error {
	return h.mutate(ctx, "programs.DeleteProgram", actor, id, func(p *domain.Program) error {
		p.Delete(h.now())
		return nil
	})
}

// ToggleVisibility flips a program between public and private and returns
// the new visibility.
func (h *EditHandler) ToggleVisibility(ctx context.Context, actor sharedauth.Principal, id types.ProgramID) (bool, error) {
	var public bool
	err := h.mutate(ctx, "programs.ToggleVisibility", actor, id, func(p *domain.Program) error {
		public = p.ToggleVisibility()
		return nil
	})
	return public, err
}

func (h *EditHandler) AddWeek(ctx context.Context, actor sharedauth.Principal, id types.ProgramID) (*domain.Week, error) {
	var week *domain.Week
	err := h.mutate(ctx, "programs.AddWeek", actor, id, func(p *domain.Program) error {
		var err error
		week, err = p.AddWeek()
		return err
	})
	return week, err
}

type AddDayCommand struct {
	ProgramID types.ProgramID
	WeekID    domain.WeekID
	DayNumber int
	Title     string
	Notes     string
}

func (h *EditHandler) AddDay(ctx context.Context, actor sharedauth.Principal, cmd AddDayCommand) (*domain.Day, error) {
	var day *domain.Day
	err := h.mutate(ctx, "programs.AddDay", actor, cmd.ProgramID, func(p *domain.Program) error {
		var err error
		day, err = p.AddDay(cmd.WeekID, cmd.DayNumber, cmd.Title, cmd.Notes)
		return err
	})
	return day, err
}

func (h *EditHandler) RemoveDayExercise(ctx context.Context, actor sharedauth.Principal, programID types.ProgramID, id domain.DayExerciseID) error {
	return h.mutate(ctx, "programs.RemoveDayExercise", actor, programID, func(p *domain.Program) error {
		return p.RemoveDayExercise(id)
	})
}

type AddDayExerciseCommand struct {
	ProgramID    types.ProgramID
	DayID        types.ProgramDayID
	Prescription domain.Prescription
}

// AddDayExercise prescribes a library exercise the program's trainer may use.
func (h *EditHandler) AddDayExercise(ctx context.Context, actor sharedauth.Principal, cmd AddDayExerciseCommand) (*domain.DayExercise, error) {
	var added *domain.DayExercise
	err := h.mutate(ctx, "programs.AddDayExercise", actor, cmd.ProgramID, func(p *domain.Program) error {
		ex, err := h.exercises.FindByID(ctx, cmd.Prescription.ExerciseID)
		if err != nil {
			return err
		}
		if !ex.AvailableTo(p.TrainerID()) {
			return domain.ErrExerciseUnavailable
		}
		added, err = p.AddDayExercise(cmd.DayID, cmd.Prescription)
		return err
	})
	return added, err
}
