// Package messaging lets subscribed clients chat with their trainers.
package messaging

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/messaging/application/commands"
	"github.com/AlagappanMk24/Gymunity/modules/messaging/application/eventhandlers"
	"github.com/AlagappanMk24/Gymunity/modules/messaging/application/queries"
	"github.com/AlagappanMk24/Gymunity/modules/messaging/domain"
	httphandler "github.com/AlagappanMk24/Gymunity/modules/messaging/infrastructure/http"
	"github.com/AlagappanMk24/Gymunity/modules/messaging/infrastructure/persistence"
	"github.com/AlagappanMk24/Gymunity/modules/messaging/infrastructure/realtime"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
)

// Store names accepted by Config.Store.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Module is the public API for the messaging bounded context.
// External communication: HTTP API and websocket feed (RegisterRoutes)
// Cross-module communication: events only
type Module interface {
	RegisterRoutes(r chi.Router)
	// Close disconnects every websocket client.
	Close()
}

type Config struct {
	// Store selects the repositories; empty means postgres.
	Store      string
	DB         *postgres.DB
	UnitOfWork *eventbus.UnitOfWork
	// Subscriber receives in-transaction handlers.
	Subscriber events.Subscriber
	// AfterCommit receives handlers that push committed messages to
	// connected clients.
	AfterCommit events.Subscriber
	Trainers    api.TrainerDirectory
	Ledger      api.SubscriptionLedger
	Packages    api.PackageCatalog
	// AllowedOrigins limits cross-origin websocket upgrades; "*" allows all.
	AllowedOrigins []string
	Logger         *slog.Logger
}

type module struct {
	handlers httphandler.Handlers
	hub      *realtime.Hub
	logger   *slog.Logger
}

func New(cfg Config) (Module, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "messaging")
	if cfg.Trainers == nil || cfg.Ledger == nil || cfg.Packages == nil {
		return nil, errors.New("messaging: trainer directory, subscription ledger and package catalog are required")
	}

	var (
		threads  domain.ThreadRepository
		messages domain.MessageRepository
	)
	switch cfg.Store {
	case "", StorePostgres:
		if cfg.DB == nil {
			return nil, errors.New("messaging: postgres store requires a database")
		}
		threads = persistence.NewPostgresThreadRepository(cfg.DB)
		messages = persistence.NewPostgresMessageRepository(cfg.DB)
	case StoreMemory:
		store := persistence.NewStore()
		threads, messages = store.Threads(), store.Messages()
	default:
		return nil, fmt.Errorf("messaging: unknown store %q", cfg.Store)
	}

	hub := realtime.NewHub(logger, cfg.AllowedOrigins)
	if cfg.Subscriber != nil {
		deleted := eventhandlers.NewUserDeletedHandler(threads, logger)
		if err := cfg.Subscriber.Subscribe(contracts.UserDeletedEventType, events.Typed(deleted.Handle)); err != nil {
			return nil, fmt.Errorf("messaging: subscribing: %w", err)
		}
	}
	if cfg.AfterCommit != nil {
		push := eventhandlers.NewMessagePushHandler(hub)
		if err := cfg.AfterCommit.Subscribe(contracts.MessageSentEventType, events.Typed(push.Handle)); err != nil {
			return nil, fmt.Errorf("messaging: subscribing: %w", err)
		}
	}

	uow := cfg.UnitOfWork
	return &module{
		handlers: httphandler.Handlers{
			CreateThread: commands.NewCreateThreadHandler(threads, cfg.Trainers, cfg.Ledger, cfg.Packages, uow, logger),
			DeleteThread: commands.NewDeleteThreadHandler(threads, uow),
			Messages:     commands.NewMessageHandler(threads, messages, uow),
			Queries:      queries.NewChatQueries(threads, messages),
			Stream:       hub.ServeWS,
		},
		hub:    hub,
		logger: logger,
	}, nil
}

func (m *module) RegisterRoutes(r chi.Router) {
	httphandler.RegisterRoutes(r, m.handlers, m.logger)
}

func (m *module) Close() { m.hub.Close() }
