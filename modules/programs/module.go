// Package programs provides workout program authoring, program discovery
// and the exercise library.
package programs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/programs/application/commands"
	"github.com/AlagappanMk24/Gymunity/modules/programs/application/queries"
	"github.com/AlagappanMk24/Gymunity/modules/programs/domain"
	httphandler "github.com/AlagappanMk24/Gymunity/modules/programs/infrastructure/http"
	"github.com/AlagappanMk24/Gymunity/modules/programs/infrastructure/persistence"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// Store names accepted by Config.Store.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Module is the public API for the programs bounded context.
// External communication: HTTP API (RegisterRoutes)
// Cross-module communication: the ProgramCatalog port
type Module interface {
	RegisterRoutes(r chi.Router)
	// Catalog exposes program ownership and day lookups to other modules.
	Catalog() api.ProgramCatalog
	// EnsureExercise adds a global library exercise unless it exists.
	EnsureExercise(ctx context.Context, details domain.ExerciseDetails) (types.ExerciseID, bool, error)
	// EnsureProgram builds a program from a template unless the trainer
	// already has one with that title.
	EnsureProgram(ctx context.Context, trainerUserID types.UserID, tmpl commands.ProgramTemplate) (types.ProgramID, bool, error)
}

// Config holds the module configuration.
type Config struct {
	// Store selects the repositories; empty means postgres.
	Store      string
	DB         *postgres.DB
	UnitOfWork *eventbus.UnitOfWork
	// Trainers resolves the trainer profile of a caller.
	Trainers api.TrainerDirectory
	Logger   *slog.Logger
}

type module struct {
	exercises domain.ExerciseRepository
	handlers  httphandler.Handlers
	catalog   *queries.Catalog
	ensure    *commands.EnsureProgramHandler
	uow       *eventbus.UnitOfWork
	logger    *slog.Logger
}

// New creates a new programs module with all dependencies wired.
func New(cfg Config) (Module, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "programs")
	if cfg.Trainers == nil {
		return nil, errors.New("programs: a trainer directory is required")
	}

	var (
		programs  domain.ProgramRepository
		exercises domain.ExerciseRepository
	)
	switch cfg.Store {
	case "", StorePostgres:
		if cfg.DB == nil {
			return nil, errors.New("programs: postgres store requires a database")
		}
		programs = persistence.NewPostgresProgramRepository(cfg.DB)
		exercises = persistence.NewPostgresExerciseRepository(cfg.DB)
	case StoreMemory:
		store := persistence.NewInMemoryStore()
		programs, exercises = store.Programs(), store.Exercises()
	default:
		return nil, fmt.Errorf("programs: unknown store %q", cfg.Store)
	}

	uow := cfg.UnitOfWork
	return &module{
		exercises: exercises,
		handlers: httphandler.Handlers{
			CreateProgram:  commands.NewCreateProgramHandler(programs, cfg.Trainers, uow),
			Edit:           commands.NewEditHandler(programs, exercises, cfg.Trainers, uow),
			CreateExercise: commands.NewCreateExerciseHandler(exercises, cfg.Trainers, uow),

			GetProgram:   queries.NewGetProgramHandler(programs, exercises, cfg.Trainers),
			ListPrograms: queries.NewListProgramsHandler(programs, cfg.Trainers),
			Exercises:    queries.NewExercisesHandler(exercises, cfg.Trainers),
		},
		catalog: queries.NewCatalog(programs),
		ensure:  commands.NewEnsureProgramHandler(programs, exercises, cfg.Trainers, uow),
		uow:     uow,
		logger:  logger,
	}, nil
}

func (m *module) RegisterRoutes(r chi.Router) {
	httphandler.RegisterRoutes(r, m.handlers, m.logger)
}

func (m *module) Catalog() api.ProgramCatalog { return m.catalog }

func (m *module) EnsureExercise(ctx context.Context, details domain.ExerciseDetails) (types.ExerciseID, bool, error) {
	var (
		id      types.ExerciseID
		created bool
	)
	err := m.uow.Execute(ctx, "programs.EnsureExercise", func(ctx context.Context, _ *eventbus.TransactionalEventBus) error {
		var err error
		id, created, err = commands.EnsureGlobalExercise(ctx, m.exercises, details)
		return err
	})
	return id, created, err
}

func (m *module) EnsureProgram(ctx context.Context, trainerUserID types.UserID, tmpl commands.ProgramTemplate) (types.ProgramID, bool, error) {
	id, created, err := m.ensure.Handle(ctx, trainerUserID, tmpl)
	if err == nil && created {
		m.logger.InfoContext(ctx, "program created from template",
			slog.String("program_id", id.String()),
			slog.String("title", tmpl.Input.Title),
		)
	}
	return id, created, err
}
