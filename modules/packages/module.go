// Package packages provides the subscription offers trainers sell.
package packages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/packages/application/commands"
	"github.com/AlagappanMk24/Gymunity/modules/packages/application/eventhandlers"
	"github.com/AlagappanMk24/Gymunity/modules/packages/application/queries"
	"github.com/AlagappanMk24/Gymunity/modules/packages/domain"
	httphandler "github.com/AlagappanMk24/Gymunity/modules/packages/infrastructure/http"
	"github.com/AlagappanMk24/Gymunity/modules/packages/infrastructure/persistence"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// Store names accepted by Config.Store.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Module is the public API for the packages bounded context.
// External communication: HTTP API (RegisterRoutes)
// Cross-module communication: the PackageCatalog port and trainers events
type Module interface {
	RegisterRoutes(r chi.Router)
	Catalog() api.PackageCatalog
	// EnsurePackage creates a package for the trainer unless one with the
	// same name exists.
	EnsurePackage(ctx context.Context, trainerUserID types.UserID, in commands.PackageInput) (types.PackageID, bool, error)
}

// Config holds the module configuration.
type Config struct {
	// Store selects the repository; empty means postgres.
	Store      string
	DB         *postgres.DB
	UnitOfWork *eventbus.UnitOfWork
	Subscriber events.Subscriber
	Trainers   api.TrainerDirectory
	Programs   api.ProgramCatalog
	Logger     *slog.Logger
}

type module struct {
	handlers httphandler.Handlers
	catalog  *queries.Catalog
	logger   *slog.Logger
}

// New creates a new packages module with all dependencies wired.
func New(cfg Config) (Module, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "packages")
	if cfg.Trainers == nil || cfg.Programs == nil {
		return nil, errors.New("packages: trainer directory and program catalog are required")
	}

	var repo domain.PackageRepository
	switch cfg.Store {
	case "", StorePostgres:
		if cfg.DB == nil {
			return nil, errors.New("packages: postgres store requires a database")
		}
		repo = persistence.NewPostgresPackageRepository(cfg.DB)
	case StoreMemory:
		repo = persistence.NewInMemoryPackageRepository()
	default:
		return nil, fmt.Errorf("packages: unknown store %q", cfg.Store)
	}

	if cfg.Subscriber != nil {
		suspended := eventhandlers.NewTrainerSuspendedHandler(repo, logger)
		if err := cfg.Subscriber.Subscribe(contracts.TrainerSuspendedEventType, events.Typed(suspended.Handle)); err != nil {
			return nil, fmt.Errorf("packages: subscribing: %w", err)
		}
	}

	uow := cfg.UnitOfWork
	return &module{
		handlers: httphandler.Handlers{
			Create: commands.NewCreatePackageHandler(repo, cfg.Trainers, cfg.Programs, uow),
			Edit:   commands.NewEditHandler(repo, cfg.Trainers, cfg.Programs, uow),
			Get:    queries.NewGetPackageHandler(repo, cfg.Trainers),
			List:   queries.NewListPackagesHandler(repo, cfg.Trainers),
		},
		catalog: queries.NewCatalog(repo, cfg.Trainers),
		logger:  logger,
	}, nil
}

func (m *module) RegisterRoutes(r chi.Router) {
	httphandler.RegisterRoutes(r, m.handlers, m.logger)
}

func (m *module) Catalog() api.PackageCatalog { return m.catalog }

func (m *module) EnsurePackage(ctx context.Context, trainerUserID types.UserID, in commands.PackageInput) (types.PackageID, bool, error) {
	return m.handlers.Create.Ensure(ctx, commands.CreatePackageCommand{UserID: trainerUserID, Input: in})
}
