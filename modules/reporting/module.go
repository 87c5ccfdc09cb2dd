// Package reporting serves the read-only admin dashboard.
package reporting

import (
	"errors"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/reporting/application/queries"
	"github.com/AlagappanMk24/Gymunity/modules/reporting/domain"
	httphandler "github.com/AlagappanMk24/Gymunity/modules/reporting/infrastructure/http"
	"github.com/AlagappanMk24/Gymunity/modules/reporting/infrastructure/persistence"
)

// Module is the public API for the reporting context.
// External communication: HTTP API (RegisterRoutes)
// Cross-module communication: none; it reads the other modules' tables
type Module interface {
	RegisterRoutes(r chi.Router)
}

type Config struct {
	DB *postgres.DB
	// Source overrides the database queries, for tests and in-memory runs.
	Source domain.Source
	Logger *slog.Logger
}

type module struct {
	dashboard *queries.Dashboard
	logger    *slog.Logger
}

func New(cfg Config) (Module, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "reporting")

	source := cfg.Source
	if source == nil {
		if cfg.DB == nil {
			return nil, errors.New("reporting: a database or a source is required")
		}
		source = persistence.NewPostgresSource(cfg.DB)
	}
	return &module{dashboard: queries.NewDashboard(source), logger: logger}, nil
}

func (m *module) RegisterRoutes(r chi.Router) {
	httphandler.RegisterRoutes(r, m.dashboard, m.logger)
}
