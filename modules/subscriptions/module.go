// Package subscriptions sells trainer packages to clients and records the
// payments behind them.
package subscriptions

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/application/commands"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/application/eventhandlers"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/application/queries"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/domain"
	httphandler "github.com/AlagappanMk24/Gymunity/modules/subscriptions/infrastructure/http"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/infrastructure/persistence"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/infrastructure/scheduler"
)

// Store names accepted by Config.Store.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Module is the public API for the subscriptions bounded context.
// External communication: HTTP API (RegisterRoutes) and the payment webhook
// Cross-module communication: the SubscriptionLedger port and events
type Module interface {
	RegisterRoutes(r chi.Router)
	Ledger() api.SubscriptionLedger
	// Sweeper expires lapsed subscriptions; the caller schedules it.
	Sweeper() scheduler.Sweeper
}

// Config holds the module configuration.
type Config struct {
	// Store selects the repositories; empty means postgres.
	Store      string
	DB         *postgres.DB
	UnitOfWork *eventbus.UnitOfWork
	Subscriber events.Subscriber
	Packages   api.PackageCatalog
	Trainers   api.TrainerDirectory
	// PlatformFeeBps is the platform share in basis points; zero means
	// domain.DefaultPlatformFeeBps.
	PlatformFeeBps int64
	// WebhookSecret signs provider notifications. Empty disables the webhook.
	WebhookSecret string
	// CheckoutURL is the provider page a client is sent to with the payment
	// reference.
	CheckoutURL string
	Logger      *slog.Logger
}

type module struct {
	handlers httphandler.Handlers
	ledger   *queries.Ledger
	logger   *slog.Logger
}

// New creates a new subscriptions module with all dependencies wired.
func New(cfg Config) (Module, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "subscriptions")
	if cfg.Packages == nil || cfg.Trainers == nil {
		return nil, errors.New("subscriptions: package catalog and trainer directory are required")
	}

	var (
		subs     domain.SubscriptionRepository
		payments domain.PaymentRepository
	)
	switch cfg.Store {
	case "", StorePostgres:
		if cfg.DB == nil {
			return nil, errors.New("subscriptions: postgres store requires a database")
		}
		subs = persistence.NewPostgresSubscriptionRepository(cfg.DB)
		payments = persistence.NewPostgresPaymentRepository(cfg.DB)
	case StoreMemory:
		subs = persistence.NewInMemorySubscriptionRepository()
		payments = persistence.NewInMemoryPaymentRepository()
	default:
		return nil, fmt.Errorf("subscriptions: unknown store %q", cfg.Store)
	}
	if cfg.WebhookSecret == "" {
		logger.Warn("payment webhook secret not set; provider notifications are rejected")
	}

	if cfg.Subscriber != nil {
		deleted := eventhandlers.NewUserDeletedHandler(subs, logger)
		if err := cfg.Subscriber.Subscribe(contracts.UserDeletedEventType, events.Typed(deleted.Handle)); err != nil {
			return nil, fmt.Errorf("subscriptions: subscribing: %w", err)
		}
	}

	uow := cfg.UnitOfWork
	return &module{
		handlers: httphandler.Handlers{
			Subscribe: commands.NewSubscribeHandler(subs, cfg.Packages, uow, cfg.PlatformFeeBps),
			Cancel:    commands.NewCancelHandler(subs, uow),
			Initiate:  commands.NewInitiatePaymentHandler(subs, payments, uow, cfg.CheckoutURL),
			Webhook:   commands.NewWebhookHandler(subs, payments, uow, cfg.WebhookSecret, logger),
			Refund:    commands.NewRefundHandler(subs, payments, uow),
			Expire:    commands.NewExpireHandler(subs, uow, logger),
			Get:       queries.NewGetSubscriptionHandler(subs),
			List:      queries.NewListSubscriptionsHandler(subs, cfg.Trainers),
			Payments:  queries.NewPaymentsHandler(payments),
		},
		ledger: queries.NewLedger(subs),
		logger: logger,
	}, nil
}

func (m *module) RegisterRoutes(r chi.Router) {
	httphandler.RegisterRoutes(r, m.handlers, m.logger)
}

func (m *module) Ledger() api.SubscriptionLedger { return m.ledger }

func (m *module) Sweeper() scheduler.Sweeper { return m.handlers.Expire }
