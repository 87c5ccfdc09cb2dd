// Package identity provides accounts, authentication and user administration.
// This file defines the module's public API - the single interface
// that other modules and the composition root use to interact with the
// identity bounded context.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"cloud.google.com/go/spanner"
	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"

	"github.com/AlagappanMk24/Gymunity/internal/platform/auth"
	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/identity/application/commands"
	"github.com/AlagappanMk24/Gymunity/modules/identity/application/queries"
	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
	httphandler "github.com/AlagappanMk24/Gymunity/modules/identity/infrastructure/http"
	"github.com/AlagappanMk24/Gymunity/modules/identity/infrastructure/persistence"
	"github.com/AlagappanMk24/Gymunity/modules/identity/infrastructure/security"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// Store names accepted by Config.Store.
const (
	StorePostgres = "postgres"
	StoreSpanner  = "spanner"
	StoreMemory   = "memory"
)

// Module is the public API for the identity bounded context.
// External communication: HTTP API (RegisterRoutes)
// Cross-module communication: Domain Events and the UserDirectory port
type Module interface {
	// RegisterRoutes registers the module's HTTP routes on r.
	RegisterRoutes(r chi.Router)
	// Directory exposes accounts to other modules.
	Directory() api.UserDirectory
	// EnsureAdmin creates an administrator unless the email is taken.
	EnsureAdmin(ctx context.Context, userName, email, fullName, password string) (bool, error)
	// EnsureAccount creates a confirmed account of role unless the email is
	// taken, in which case the existing account's ID is returned.
	EnsureAccount(ctx context.Context, role types.Role, userName, email, fullName, password string) (types.UserID, bool, error)
}

// Config holds the module configuration.
type Config struct {
	// Store selects the user repository; empty means postgres.
	Store      string
	DB         *postgres.DB
	Spanner    *spanner.Client
	UnitOfWork *eventbus.UnitOfWork
	Tokens     *auth.TokenService

	// Redis keeps reset tokens; nil keeps them in memory.
	Redis           redis.UniversalClient
	GoogleClientID  string
	FrontendBaseURL string
	// AuthLimiter throttles the credential endpoints.
	AuthLimiter func(http.Handler) http.Handler
	Logger      *slog.Logger
}

// module implements the Module interface.
type module struct {
	repo      domain.UserRepository
	hasher    domain.PasswordHasher
	handlers  httphandler.Handlers
	directory *queries.Directory
	limiter   func(http.Handler) http.Handler
	logger    *slog.Logger
}

// New creates a new identity module with all dependencies wired.
func New(cfg Config) (Module, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "identity")

	var repo domain.UserRepository
	switch cfg.Store {
	case "", StorePostgres:
		if cfg.DB == nil {
			return nil, errors.New("identity: postgres store requires a database")
		}
		repo = persistence.NewPostgresRepository(cfg.DB)
	case StoreSpanner:
		if cfg.Spanner == nil {
			return nil, errors.New("identity: spanner store requires a client")
		}
		repo = persistence.NewSpannerRepository(cfg.Spanner)
	case StoreMemory:
		repo = persistence.NewInMemoryRepository()
	default:
		return nil, fmt.Errorf("identity: unknown store %q", cfg.Store)
	}

	var resetTokens domain.ResetTokenStore = security.NewMemoryResetTokenStore()
	if cfg.Redis != nil {
		resetTokens = security.NewRedisResetTokenStore(cfg.Redis)
	}

	hasher := security.NewBcryptHasher(0)
	tokens := security.NewJWTIssuer(cfg.Tokens)
	uow := cfg.UnitOfWork

	return &module{
		repo:   repo,
		hasher: hasher,
		handlers: httphandler.Handlers{
			// Wire up command handlers
			Register:       commands.NewRegisterHandler(repo, uow, hasher, tokens),
			Login:          commands.NewLoginHandler(repo, uow, hasher, tokens),
			GoogleAuth:     commands.NewGoogleAuthHandler(repo, uow, security.NewGoogleVerifier(cfg.GoogleClientID), tokens),
			UpdateProfile:  commands.NewUpdateProfileHandler(repo, uow),
			ChangePassword: commands.NewChangePasswordHandler(repo, uow, hasher),
			SendResetLink:  commands.NewSendResetLinkHandler(repo, uow, resetTokens, cfg.FrontendBaseURL),
			ResetPassword:  commands.NewResetPasswordHandler(repo, uow, resetTokens, hasher),
			Moderation:     commands.NewModerationHandler(repo, uow, hasher),

			// Wire up query handlers
			GetUser:     queries.NewGetUserHandler(repo),
			ListUsers:   queries.NewListUsersHandler(repo),
			Statistics:  queries.NewStatisticsHandler(repo),
			ExportUsers: queries.NewExportUsersHandler(repo),
		},
		directory: queries.NewDirectory(repo),
		limiter:   cfg.AuthLimiter,
		logger:    logger,
	}, nil
}

func (m *module) RegisterRoutes(r chi.Router) {
	httphandler.RegisterRoutes(r, m.handlers, m.limiter, m.logger)
}

func (m *module) Directory() api.UserDirectory { return m.directory }

func (m *module) EnsureAdmin(ctx context.Context, userName, email, fullName, password string) (bool, error) {
	_, created, err := m.EnsureAccount(ctx, types.RoleAdmin, userName, email, fullName, password)
	return created, err
}

func (m *module) EnsureAccount(ctx context.Context, role types.Role, userName, email, fullName, password string) (types.UserID, bool, error) {
	e, err := domain.NewEmail(email)
	if err != nil {
		return types.UserID{}, false, err
	}
	existing, err := m.repo.FindByEmail(ctx, e)
	switch {
	case err == nil:
		return existing.ID(), false, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return types.UserID{}, false, err
	}
	n, err := domain.NewUserName(userName)
	if err != nil {
		return types.UserID{}, false, err
	}
	f, err := domain.NewFullName(fullName)
	if err != nil {
		return types.UserID{}, false, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return types.UserID{}, false, err
	}
	hash, err := m.hasher.Hash(password)
	if err != nil {
		return types.UserID{}, false, err
	}
	user := domain.NewSeededUser(n, e, f, role, hash)
	if err := m.repo.Save(ctx, user); err != nil {
		return types.UserID{}, false, err
	}
	m.logger.InfoContext(ctx, "account created",
		slog.String("email", e.String()),
		slog.String("role", role.String()),
	)
	return user.ID(), true, nil
}
