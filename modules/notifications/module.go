// Package notifications keeps users informed through in-app notifications
// and email.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/notifications/application/commands"
	"github.com/AlagappanMk24/Gymunity/modules/notifications/application/eventhandlers"
	"github.com/AlagappanMk24/Gymunity/modules/notifications/application/queries"
	"github.com/AlagappanMk24/Gymunity/modules/notifications/domain"
	httphandler "github.com/AlagappanMk24/Gymunity/modules/notifications/infrastructure/http"
	"github.com/AlagappanMk24/Gymunity/modules/notifications/infrastructure/mail"
	"github.com/AlagappanMk24/Gymunity/modules/notifications/infrastructure/persistence"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
)

// Store names accepted by Config.Store.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Module is the public API for the notifications bounded context.
// External communication: HTTP API (RegisterRoutes) and email
// Cross-module communication: reacts to committed events only
type Module interface {
	RegisterRoutes(r chi.Router)
	// Close waits for queued emails to be delivered.
	Close(ctx context.Context) error
}

type Config struct {
	// Store selects the repository; empty means postgres.
	Store string
	DB    *postgres.DB
	// AfterCommit receives the event handlers. They send email, so they
	// must not run inside a transaction.
	AfterCommit events.Subscriber
	Users       api.UserDirectory
	// Sender delivers email; nil logs messages instead.
	Sender       mail.Sender
	QueueSize    int
	QueueWorkers int
	// FrontendBaseURL prefixes links in emails.
	FrontendBaseURL string
	Logger          *slog.Logger
}

type module struct {
	commands *commands.Handler
	queries  *queries.Queries
	queue    *mail.Queue
	logger   *slog.Logger
}

func New(cfg Config) (Module, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "notifications")
	if cfg.AfterCommit == nil || cfg.Users == nil {
		return nil, errors.New("notifications: event subscriber and user directory are required")
	}

	var repo domain.Repository
	switch cfg.Store {
	case "", StorePostgres:
		if cfg.DB == nil {
			return nil, errors.New("notifications: postgres store requires a database")
		}
		repo = persistence.NewPostgresRepository(cfg.DB)
	case StoreMemory:
		repo = persistence.NewInMemoryRepository()
	default:
		return nil, fmt.Errorf("notifications: unknown store %q", cfg.Store)
	}

	templates, err := mail.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("notifications: %w", err)
	}
	sender := cfg.Sender
	if sender == nil {
		sender = mail.NewLogSender(logger)
	}
	queue := mail.NewQueue(sender, cfg.QueueSize, cfg.QueueWorkers, logger)

	cmds := commands.NewHandler(repo)
	h := eventhandlers.New(cmds, mail.NewTemplateMailer(queue, templates), cfg.Users, cfg.FrontendBaseURL, logger)
	subs := []struct {
		eventType events.EventType
		handler   events.Handler
	}{
		{contracts.UserRegisteredEventType, events.Typed(h.UserRegistered)},
		{contracts.UserSignedInEventType, events.Typed(h.UserSignedIn)},
		{contracts.PasswordResetRequestedEventType, events.Typed(h.PasswordResetRequested)},
		{contracts.UserSuspendedEventType, events.Typed(h.UserSuspended)},
		{contracts.SubscriptionActivatedEventType, events.Typed(h.SubscriptionActivated)},
		{contracts.PaymentFailedEventType, events.Typed(h.PaymentFailed)},
		{contracts.PaymentRefundedEventType, events.Typed(h.PaymentRefunded)},
		{contracts.TrainerVerifiedEventType, events.Typed(h.TrainerVerified)},
		{contracts.ReviewSubmittedEventType, events.Typed(h.ReviewSubmitted)},
	}
	for _, s := range subs {
		if err := cfg.AfterCommit.Subscribe(s.eventType, s.handler); err != nil {
			_ = queue.Close(context.Background())
			return nil, fmt.Errorf("notifications: subscribing to %s: %w", s.eventType, err)
		}
	}

	return &module{
		commands: cmds,
		queries:  queries.NewQueries(repo),
		queue:    queue,
		logger:   logger,
	}, nil
}

func (m *module) RegisterRoutes(r chi.Router) {
	httphandler.RegisterRoutes(r, m.commands, m.queries, m.logger)
}

func (m *module) Close(ctx context.Context) error { return m.queue.Close(ctx) }
