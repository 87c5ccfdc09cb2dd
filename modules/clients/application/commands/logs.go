package commands

import (
	"context"
	"fmt"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/clients/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type LogBodyStatsHandler struct {
	stats domain.BodyStatRepository
	uow   *eventbus.UnitOfWork
}

func NewLogBodyStatsHandler(stats domain.BodyStatRepository, uow *eventbus.UnitOfWork) *LogBodyStatsHandler {
	return &LogBodyStatsHandler{stats: stats, uow: uow}
}

func (h *LogBodyStatsHandler) Handle(ctx context.Context, userID types.UserID, details domain.BodyStatDetails) (types.BodyStatID, error) {
	b, err := domain.NewBodyStatLog(userID, details)
	if err != nil {
		return types.BodyStatID{}, err
	}
	err = h.uow.Execute(ctx, "clients.LogBodyStats", func(ctx context.Context, _ *eventbus.TransactionalEventBus) error {
		return h.stats.Save(ctx, b)
	})
	if err != nil {
		return types.BodyStatID{}, err
	}
	return b.ID(), nil
}

// WorkoutHandler records and removes completed workouts.
type WorkoutHandler struct {
	logs     domain.WorkoutLogRepository
	programs api.ProgramCatalog
	uow      *eventbus.UnitOfWork
}

func NewWorkoutHandler(logs domain.WorkoutLogRepository, programs api.ProgramCatalog, uow *eventbus.UnitOfWork) *WorkoutHandler {
	return &WorkoutHandler{logs: logs, programs: programs, uow: uow}
}

// Log records a workout against an existing program day.
func (h *WorkoutHandler) Log(ctx context.Context, userID types.UserID, details domain.WorkoutDetails) (types.WorkoutLogID, error) {
	w, err := domain.NewWorkoutLog(userID, details)
	if err != nil {
		return types.WorkoutLogID{}, err
	}
	ok, err := h.programs.DayExists(ctx, details.ProgramDayID)
	if err != nil {
		return types.WorkoutLogID{}, fmt.Errorf("checking program day: %w", err)
	}
	if !ok {
		return types.WorkoutLogID{}, domain.ErrProgramDayNotFound
	}
	err = h.uow.Execute(ctx, "clients.LogWorkout", func(ctx context.Context, _ *eventbus.TransactionalEventBus) error {
		return h.logs.Save(ctx, w)
	})
	if err != nil {
		return types.WorkoutLogID{}, err
	}
	return w.ID(), nil
}

// Delete removes a workout log of the caller. Another client's log is
// reported as not found.
func (h *WorkoutHandler) Delete(ctx context.Context, id types.WorkoutLogID) error {
	p, err := sharedauth.Require(ctx)
	if err != nil {
		return err
	}
	return h.uow.Execute(ctx, "clients.DeleteWorkout", func(ctx context.Context, _ *eventbus.TransactionalEventBus) error {
		w, err := h.logs.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if w.UserID() != p.UserID && !p.IsAdmin() {
			return domain.ErrWorkoutLogNotFound
		}
		return h.logs.Delete(ctx, id)
	})
}
