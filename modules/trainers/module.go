// Package trainers provides trainer profiles, discovery, client reviews and
// trainer moderation.
package trainers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/application/commands"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/application/eventhandlers"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/application/queries"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/domain"
	httphandler "github.com/AlagappanMk24/Gymunity/modules/trainers/infrastructure/http"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/infrastructure/persistence"
)

// Store names accepted by Config.Store.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Module is the public API for the trainers bounded context.
// External communication: HTTP API (RegisterRoutes)
// Cross-module communication: Domain Events and the TrainerDirectory port
type Module interface {
	RegisterRoutes(r chi.Router)
	// Directory exposes trainer profiles to other modules.
	Directory() api.TrainerDirectory
	// EnsureProfile creates a trainer profile for userID unless one exists.
	// Seeded profiles can start out verified.
	EnsureProfile(ctx context.Context, userID types.UserID, handle string, details domain.ProfileDetails, verified bool) (types.TrainerID, bool, error)
}

// Config holds the module configuration.
type Config struct {
	// Store selects the repositories; empty means postgres.
	Store      string
	DB         *postgres.DB
	UnitOfWork *eventbus.UnitOfWork
	// Subscriber receives the module's in-transaction event handlers.
	Subscriber events.Subscriber
	// Users resolves display names; nil leaves them empty.
	Users  api.UserDirectory
	Logger *slog.Logger
}

type module struct {
	profiles  domain.ProfileRepository
	handlers  httphandler.Handlers
	directory *queries.Directory
	logger    *slog.Logger
}

// New creates a new trainers module with all dependencies wired.
func New(cfg Config) (Module, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "trainers")

	var (
		profiles domain.ProfileRepository
		reviews  domain.ReviewRepository
		links    domain.ClientLinkRepository
	)
	switch cfg.Store {
	case "", StorePostgres:
		if cfg.DB == nil {
			return nil, errors.New("trainers: postgres store requires a database")
		}
		profiles = persistence.NewPostgresProfileRepository(cfg.DB)
		reviews = persistence.NewPostgresReviewRepository(cfg.DB)
		links = persistence.NewPostgresClientLinkRepository(cfg.DB)
	case StoreMemory:
		store := persistence.NewInMemoryStore()
		profiles, reviews, links = store.Profiles(), store.Reviews(), store.Links()
	default:
		return nil, fmt.Errorf("trainers: unknown store %q", cfg.Store)
	}

	if cfg.Subscriber != nil {
		if err := subscribe(cfg.Subscriber, profiles, links, logger); err != nil {
			return nil, err
		}
	}

	uow := cfg.UnitOfWork
	list := queries.NewListTrainersHandler(profiles, cfg.Users)

	return &module{
		profiles: profiles,
		handlers: httphandler.Handlers{
			CreateProfile: commands.NewCreateProfileHandler(profiles, uow),
			UpdateProfile: commands.NewUpdateProfileHandler(profiles, uow),
			UpdateStatus:  commands.NewUpdateStatusHandler(profiles, uow),
			AddReview:     commands.NewAddReviewHandler(profiles, reviews, links, uow),
			EditReview:    commands.NewEditReviewHandler(profiles, reviews, uow),
			Moderation:    commands.NewModerationHandler(profiles, reviews, uow),

			GetProfile:     queries.NewGetProfileHandler(profiles, cfg.Users),
			Search:         queries.NewSearchHandler(profiles, cfg.Users),
			ListTrainers:   list,
			ExportTrainers: queries.NewExportTrainersHandler(list),
			Reviews:        queries.NewReviewsHandler(reviews, cfg.Users),
		},
		directory: queries.NewDirectory(profiles),
		logger:    logger,
	}, nil
}

// subscribe registers the handlers that keep profiles in step with accounts
// and subscriptions. They run inside the publishing transaction.
func subscribe(sub events.Subscriber, profiles domain.ProfileRepository, links domain.ClientLinkRepository, logger *slog.Logger) error {
	userDeleted := eventhandlers.NewUserDeletedHandler(profiles, logger)
	clients := eventhandlers.NewClientCountHandler(profiles, links, logger)

	return errors.Join(
		sub.Subscribe(contracts.UserDeletedEventType, events.Typed(userDeleted.Handle)),
		sub.Subscribe(contracts.SubscriptionActivatedEventType, events.Typed(clients.Activated)),
		sub.Subscribe(contracts.SubscriptionCanceledEventType, events.Typed(clients.Canceled)),
	)
}

func (m *module) RegisterRoutes(r chi.Router) {
	httphandler.RegisterRoutes(r, m.handlers, m.logger)
}

func (m *module) Directory() api.TrainerDirectory { return m.directory }

func (m *module) EnsureProfile(ctx context.Context, userID types.UserID, handle string, details domain.ProfileDetails, verified bool) (types.TrainerID, bool, error) {
	existing, err := m.profiles.FindByUserID(ctx, userID)
	switch {
	case err == nil:
		return existing.ID(), false, nil
	case !errors.Is(err, domain.ErrProfileNotFound):
		return types.TrainerID{}, false, err
	}
	h, err := domain.NewHandle(handle)
	if err != nil {
		return types.TrainerID{}, false, err
	}
	taken, err := m.profiles.HandleTaken(ctx, h, types.TrainerID{})
	if err != nil {
		return types.TrainerID{}, false, err
	}
	if taken {
		return types.TrainerID{}, false, domain.ErrHandleTaken
	}
	profile, err := domain.NewProfile(userID, h, details)
	if err != nil {
		return types.TrainerID{}, false, err
	}
	if verified {
		profile.Verify(time.Now())
		profile.ClearDomainEvents()
	}
	if err := m.profiles.Save(ctx, profile); err != nil {
		return types.TrainerID{}, false, err
	}
	m.logger.InfoContext(ctx, "trainer profile created", slog.String("handle", h.String()))
	return profile.ID(), true, nil
}
