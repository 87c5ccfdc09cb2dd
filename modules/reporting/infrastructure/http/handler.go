// Package http serves the admin dashboard.
package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AlagappanMk24/Gymunity/internal/platform/auth"
	"github.com/AlagappanMk24/Gymunity/internal/platform/export"
	"github.com/AlagappanMk24/Gymunity/internal/platform/httpx"
	"github.com/AlagappanMk24/Gymunity/modules/reporting/application/queries"
	"github.com/AlagappanMk24/Gymunity/modules/reporting/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// DefaultCurrency is charted when the request names none.
const DefaultCurrency = "EGP"

type Handler struct {
	dashboard *queries.Dashboard
	logger    *slog.Logger
}

func RegisterRoutes(r chi.Router, dashboard *queries.Dashboard, logger *slog.Logger) {
	h := &Handler{dashboard: dashboard, logger: logger}

	r.Route("/admin/dashboard", func(r chi.Router) {
		r.Use(auth.RequireRole(types.RoleAdmin))
		r.Get("/", h.handleOverview)
		r.Get("/revenue-chart", h.handleRevenueChart)
		r.Get("/top-trainers", h.handleTopTrainers)
		r.Get("/statistics/export", h.handleExport)
	})
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	o, err := h.dashboard.Overview(r.Context())
	if err != nil {
		httpx.HandleCommonError(w, r, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) handleRevenueChart(w http.ResponseWriter, r *http.Request) {
	days, err := httpx.QueryInt(r, "days", domain.DefaultChartDays)
	if err != nil {
		httpx.HandleCommonError(w, r, err, h.logger)
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("currency")))
	if currency == "" {
		currency = DefaultCurrency
	}
	chart, err := h.dashboard.RevenueChart(r.Context(), currency, days)
	if err != nil {
		httpx.HandleCommonError(w, r, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, chart)
}

func (h *Handler) handleTopTrainers(w http.ResponseWriter, r *http.Request) {
	limit, err := httpx.QueryInt(r, "limit", domain.DefaultTopLimit)
	if err != nil {
		httpx.HandleCommonError(w, r, err, h.logger)
		return
	}
	rows, err := h.dashboard.TopTrainers(r.Context(), limit)
	if err != nil {
		httpx.HandleCommonError(w, r, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rows)
}

// handleExport renders PDF unless another format is asked for.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	format := export.FormatPDF
	if raw := r.URL.Query().Get("format"); raw != "" {
		f, err := export.ParseFormat(raw)
		if err != nil {
			httpx.HandleCommonError(w, r, err, h.logger)
			return
		}
		format = f
	}
	table, err := h.dashboard.Statistics(r.Context())
	if err != nil {
		httpx.HandleCommonError(w, r, err, h.logger)
		return
	}
	if err := httpx.WriteExport(w, format, "platform_statistics", table); err != nil {
		httpx.HandleCommonError(w, r, err, h.logger)
	}
}
