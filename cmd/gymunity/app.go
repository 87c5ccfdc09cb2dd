package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	gspanner "cloud.google.com/go/spanner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"

	"github.com/AlagappanMk24/Gymunity/internal/config"
	"github.com/AlagappanMk24/Gymunity/internal/platform/auth"
	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/internal/platform/httpserver"
	"github.com/AlagappanMk24/Gymunity/internal/platform/httpx"
	"github.com/AlagappanMk24/Gymunity/internal/platform/metrics"
	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/internal/platform/ratelimit"
	"github.com/AlagappanMk24/Gymunity/internal/platform/spanner"
	"github.com/AlagappanMk24/Gymunity/internal/platform/transaction"
	"github.com/AlagappanMk24/Gymunity/modules/clients"
	"github.com/AlagappanMk24/Gymunity/modules/identity"
	"github.com/AlagappanMk24/Gymunity/modules/messaging"
	"github.com/AlagappanMk24/Gymunity/modules/notifications"
	"github.com/AlagappanMk24/Gymunity/modules/notifications/infrastructure/mail"
	"github.com/AlagappanMk24/Gymunity/modules/packages"
	"github.com/AlagappanMk24/Gymunity/modules/programs"
	"github.com/AlagappanMk24/Gymunity/modules/reporting"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions"
	"github.com/AlagappanMk24/Gymunity/modules/trainers"
)

// countedEvents are exported as Prometheus counters once committed.
var countedEvents = []events.EventType{
	contracts.UserRegisteredEventType,
	contracts.UserSignedInEventType,
	contracts.UserSuspendedEventType,
	contracts.UserDeletedEventType,
	contracts.TrainerVerifiedEventType,
	contracts.ReviewSubmittedEventType,
	contracts.SubscriptionActivatedEventType,
	contracts.SubscriptionCanceledEventType,
	contracts.PaymentCompletedEventType,
	contracts.PaymentFailedEventType,
	contracts.PaymentRefundedEventType,
	contracts.MessageSentEventType,
}

// app is the composition root: shared infrastructure plus every module.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	db      *postgres.DB
	spanner *gspanner.Client
	redis   redis.UniversalClient
	tokens  *auth.TokenService
	metrics *metrics.Metrics
	limiter *ratelimit.Limiter

	identity      identity.Module
	trainers      trainers.Module
	programs      programs.Module
	packages      packages.Module
	subscriptions subscriptions.Module
	messaging     messaging.Module
	clients       clients.Module
	notifications notifications.Module
	reporting     reporting.Module
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
		limiter: ratelimit.New(cfg.HTTP.AuthRatePerMin, cfg.HTTP.AuthRateBurst),
		tokens: auth.NewTokenService(auth.Config{
			SigningKey: cfg.JWT.AuthKey,
			Issuer:     cfg.JWT.ValidIssuer,
			Audience:   cfg.JWT.ValidAudience,
			Lifetime:   cfg.JWT.Lifetime(),
		}),
	}
	defer func() {
		if err != nil {
			a.closeInfrastructure()
		}
	}()

	// Initialize PostgreSQL
	a.db, err = connectPostgres(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize event buses. Handlers in the registry run inside the
	// publishing transaction; the in-memory bus delivers after commit.
	registry := eventbus.NewEventHandlerRegistry(logger)
	afterCommit := eventbus.New(logger)
	uow := eventbus.NewUnitOfWork(transaction.WithTracing(postgres.NewTxScope(a.db), "postgresql"), registry, afterCommit)

	if err := a.metrics.SubscribeDomainEvents(afterCommit, countedEvents...); err != nil {
		return nil, fmt.Errorf("subscribing metrics: %w", err)
	}

	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		logger.Info("connected to redis", slog.String("addr", cfg.Redis.Addr))
	}

	// Initialize modules. Each module subscribes to the events it cares
	// about internally.
	identityCfg := identity.Config{
		Store:           cfg.IdentityStore,
		DB:              a.db,
		UnitOfWork:      uow,
		Tokens:          a.tokens,
		Redis:           a.redis,
		GoogleClientID:  cfg.Google.ClientID,
		FrontendBaseURL: cfg.FrontendBaseURL,
		AuthLimiter:     a.limiter.Middleware,
		Logger:          logger,
	}
	if cfg.IdentityStore == identity.StoreSpanner {
		spannerCfg := spannerConfig(cfg)
		if a.spanner, err = spanner.NewClient(ctx, spannerCfg); err != nil {
			return nil, fmt.Errorf("creating spanner client: %w", err)
		}
		logger.Info("connected to spanner", slog.String("dsn", spannerCfg.DSN()))
		identityCfg.Spanner = a.spanner
		identityCfg.UnitOfWork = eventbus.NewUnitOfWork(
			transaction.WithTracing(spanner.NewReadWriteTransactionScope(a.spanner), "spanner"), registry, afterCommit)
	}
	if a.identity, err = identity.New(identityCfg); err != nil {
		return nil, err
	}
	users := a.identity.Directory()

	if a.trainers, err = trainers.New(trainers.Config{
		DB:         a.db,
		UnitOfWork: uow,
		Subscriber: registry,
		Users:      users,
		Logger:     logger,
	}); err != nil {
		return nil, err
	}
	trainerDir := a.trainers.Directory()

	if a.programs, err = programs.New(programs.Config{
		DB:         a.db,
		UnitOfWork: uow,
		Trainers:   trainerDir,
		Logger:     logger,
	}); err != nil {
		return nil, err
	}

	if a.packages, err = packages.New(packages.Config{
		DB:         a.db,
		UnitOfWork: uow,
		Subscriber: registry,
		Trainers:   trainerDir,
		Programs:   a.programs.Catalog(),
		Logger:     logger,
	}); err != nil {
		return nil, err
	}

	if a.subscriptions, err = subscriptions.New(subscriptions.Config{
		DB:             a.db,
		UnitOfWork:     uow,
		Subscriber:     registry,
		Packages:       a.packages.Catalog(),
		Trainers:       trainerDir,
		PlatformFeeBps: int64(cfg.Payments.PlatformFeePercentage) * 100,
		WebhookSecret:  cfg.Payments.WebhookSecret,
		CheckoutURL:    cfg.Payments.CheckoutBaseURL,
		Logger:         logger,
	}); err != nil {
		return nil, err
	}
	ledger := a.subscriptions.Ledger()

	if a.messaging, err = messaging.New(messaging.Config{
		DB:          a.db,
		UnitOfWork:  uow,
		Subscriber:  registry,
		AfterCommit: afterCommit,
		Trainers:    trainerDir,
		Ledger:      ledger,
		Packages:    a.packages.Catalog(),
		Logger:      logger,
		// Same list the CORS middleware serves.
		AllowedOrigins: a.cfg.HTTP.CORSOrigins,
	}); err != nil {
		return nil, err
	}

	if a.clients, err = clients.New(clients.Config{
		DB:         a.db,
		UnitOfWork: uow,
		Subscriber: registry,
		Programs:   a.programs.Catalog(),
		Trainers:   trainerDir,
		Ledger:     ledger,
		Logger:     logger,
	}); err != nil {
		return nil, err
	}

	notificationsCfg := notifications.Config{
		DB:              a.db,
		AfterCommit:     afterCommit,
		Users:           users,
		QueueSize:       cfg.SMTP.QueueSize,
		QueueWorkers:    cfg.SMTP.Workers,
		FrontendBaseURL: cfg.FrontendBaseURL,
		Logger:          logger,
	}
	if cfg.SMTP.Enabled() {
		notificationsCfg.Sender = mail.NewSMTPSender(mail.SMTPConfig{
			Host:        cfg.SMTP.Host,
			Port:        cfg.SMTP.Port,
			From:        cfg.SMTP.From,
			DisplayName: cfg.SMTP.DisplayName,
			UserName:    cfg.SMTP.UserName,
			Password:    cfg.SMTP.Password,
			ImplicitTLS: cfg.SMTP.ImplicitTLS,
		})
	} else {
		logger.Warn("SMTP_HOST is not set, emails will only be logged")
	}
	if a.notifications, err = notifications.New(notificationsCfg); err != nil {
		return nil, err
	}

	if a.reporting, err = reporting.New(reporting.Config{DB: a.db, Logger: logger}); err != nil {
		return nil, err
	}

	return a, nil
}

func spannerConfig(cfg config.Config) spanner.Config {
	return spanner.Config{
		ProjectID:    cfg.Spanner.ProjectID,
		InstanceID:   cfg.Spanner.InstanceID,
		DatabaseID:   cfg.Spanner.DatabaseID,
		DatabaseRole: cfg.Spanner.Role,
		Endpoint:     cfg.Spanner.Endpoint,
	}
}

func connectPostgres(ctx context.Context, cfg config.Config, logger *slog.Logger) (*postgres.DB, error) {
	db, err := postgres.Connect(ctx, postgres.Config{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		ConnectAttempts: cfg.Postgres.ConnectAttempts,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return db, nil
}

// router builds the HTTP handler with every module's routes.
func (a *app) router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		httpserver.Recovery(a.logger),
		httpserver.Logging(a.logger),
		httpserver.CORS(a.cfg.HTTP.CORSOrigins),
		a.metrics.Middleware,
		a.tokens.Verifier(),
		a.tokens.Authenticate,
	)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status, code := "ok", http.StatusOK
		if err := a.db.PingContext(r.Context()); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		httpx.WriteJSON(w, code, map[string]string{"status": status})
	})
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	// Each module registers its own routes
	a.identity.RegisterRoutes(r)
	a.trainers.RegisterRoutes(r)
	a.programs.RegisterRoutes(r)
	a.packages.RegisterRoutes(r)
	a.subscriptions.RegisterRoutes(r)
	a.messaging.RegisterRoutes(r)
	a.clients.RegisterRoutes(r)
	a.notifications.RegisterRoutes(r)
	a.reporting.RegisterRoutes(r)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "")
	})
	return r
}

// Close drains the modules that own background work, then releases
// connections.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.messaging != nil {
		a.messaging.Close()
	}
	if a.notifications != nil {
		if err := a.notifications.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("draining mail queue: %w", err))
		}
	}
	a.closeInfrastructure()
	return errors.Join(errs...)
}

func (a *app) closeInfrastructure() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("closing redis", slog.Any("error", err))
		}
	}
	if a.spanner != nil {
		a.spanner.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("closing postgres", slog.Any("error", err))
		}
	}
}
