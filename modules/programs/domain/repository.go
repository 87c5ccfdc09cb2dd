package domain

import (
	"context"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// ProgramFilter narrows program listings. Deleted programs never match.
type ProgramFilter struct {
	TrainerID *types.TrainerID
	IsPublic  *bool
	Type      ProgramType
	Search    string
}

// ProgramStats counts live programs by visibility.
type ProgramStats struct {
	Total   int `db:"total" json:"total"`
	Public  int `db:"public" json:"public"`
	Private int `db:"private" json:"private"`
}

// ProgramRepository persists whole program trees.
type ProgramRepository interface {
	Save(ctx context.Context, p *Program) error
	// FindByID loads the full tree of a live program.
	FindByID(ctx context.Context, id types.ProgramID) (*Program, error)
	// TitleTaken compares titles case-insensitively among the trainer's
	// live programs.
	TitleTaken(ctx context.Context, trainerID types.TrainerID, title string, except types.ProgramID) (bool, error)
	// List returns programs without their weeks.
	List(ctx context.Context, filter ProgramFilter, page types.Page) ([]*Program, int, error)
	Stats(ctx context.Context) (ProgramStats, error)
	// CountOwned counts live programs among ids that belong to trainerID.
	CountOwned(ctx context.Context, trainerID types.TrainerID, ids []types.ProgramID) (int, error)
	DayExists(ctx context.Context, id types.ProgramDayID) (bool, error)
}

// ExerciseFilter narrows the library. A zero TrainerID lists global
// exercises only; otherwise the trainer's own are included.
type ExerciseFilter struct {
	TrainerID types.TrainerID
	Category  string
	Search    string
}

type ExerciseRepository interface {
	Save(ctx context.Context, e *Exercise) error
	FindByID(ctx context.Context, id types.ExerciseID) (*Exercise, error)
	// FindByIDs returns the exercises that exist among ids, in no order.
	FindByIDs(ctx context.Context, ids []types.ExerciseID) ([]*Exercise, error)
	List(ctx context.Context, filter ExerciseFilter, page types.Page) ([]*Exercise, int, error)
	// NameTaken checks among global exercises and the trainer's own.
	NameTaken(ctx context.Context, trainerID *types.TrainerID, name string) (bool, error)
}
