// Package clients keeps a client's fitness profile, body measurements and
// workout history.
package clients

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/clients/application/commands"
	"github.com/AlagappanMk24/Gymunity/modules/clients/application/eventhandlers"
	"github.com/AlagappanMk24/Gymunity/modules/clients/application/queries"
	"github.com/AlagappanMk24/Gymunity/modules/clients/domain"
	httphandler "github.com/AlagappanMk24/Gymunity/modules/clients/infrastructure/http"
	"github.com/AlagappanMk24/Gymunity/modules/clients/infrastructure/persistence"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
)

// Store names accepted by Config.Store.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Module is the public API for the clients bounded context.
// External communication: HTTP API (RegisterRoutes)
// Cross-module communication: events only
type Module interface {
	RegisterRoutes(r chi.Router)
}

type Config struct {
	// Store selects the repositories; empty means postgres.
	Store      string
	DB         *postgres.DB
	UnitOfWork *eventbus.UnitOfWork
	// Subscriber receives in-transaction handlers.
	Subscriber events.Subscriber
	Programs   api.ProgramCatalog
	Trainers   api.TrainerDirectory
	Ledger     api.SubscriptionLedger
	Logger     *slog.Logger
}

type module struct {
	handlers httphandler.Handlers
	logger   *slog.Logger
}

func New(cfg Config) (Module, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "clients")
	if cfg.Programs == nil || cfg.Trainers == nil || cfg.Ledger == nil {
		return nil, errors.New("clients: program catalog, trainer directory and subscription ledger are required")
	}

	var (
		profiles domain.ProfileRepository
		stats    domain.BodyStatRepository
		workouts domain.WorkoutLogRepository
	)
	switch cfg.Store {
	case "", StorePostgres:
		if cfg.DB == nil {
			return nil, errors.New("clients: postgres store requires a database")
		}
		profiles = persistence.NewPostgresProfileRepository(cfg.DB)
		stats = persistence.NewPostgresBodyStatRepository(cfg.DB)
		workouts = persistence.NewPostgresWorkoutLogRepository(cfg.DB)
	case StoreMemory:
		store := persistence.NewStore()
		profiles, stats, workouts = store.Profiles(), store.BodyStats(), store.Workouts()
	default:
		return nil, fmt.Errorf("clients: unknown store %q", cfg.Store)
	}

	if cfg.Subscriber != nil {
		deleted := eventhandlers.NewUserDeletedHandler(profiles, stats, workouts, logger)
		if err := cfg.Subscriber.Subscribe(contracts.UserDeletedEventType, events.Typed(deleted.Handle)); err != nil {
			return nil, fmt.Errorf("clients: subscribing: %w", err)
		}
	}

	uow := cfg.UnitOfWork
	return &module{
		handlers: httphandler.Handlers{
			UpsertProfile: commands.NewUpsertProfileHandler(profiles, uow),
			LogBodyStats:  commands.NewLogBodyStatsHandler(stats, uow),
			Workouts:      commands.NewWorkoutHandler(workouts, cfg.Programs, uow),
			Queries:       queries.NewClientQueries(profiles, stats, workouts, cfg.Trainers, cfg.Ledger),
		},
		logger: logger,
	}, nil
}

func (m *module) RegisterRoutes(r chi.Router) {
	httphandler.RegisterRoutes(r, m.handlers, m.logger)
}
