// Package http exposes a user's in-app notifications.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AlagappanMk24/Gymunity/internal/platform/auth"
	"github.com/AlagappanMk24/Gymunity/internal/platform/httpx"
	"github.com/AlagappanMk24/Gymunity/modules/notifications/application/commands"
	"github.com/AlagappanMk24/Gymunity/modules/notifications/application/queries"
	"github.com/AlagappanMk24/Gymunity/modules/notifications/domain"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type Handler struct {
	commands *commands.Handler
	queries  *queries.Queries
	logger   *slog.Logger
}

func RegisterRoutes(r chi.Router, cmds *commands.Handler, qs *queries.Queries, logger *slog.Logger) {
	h := &Handler{commands: cmds, queries: qs, logger: logger}
	r.Route("/api/notifications", func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/unread-count", h.handleUnreadCount)
		r.Post("/read-all", h.handleReadAll)
		r.Post("/{id}/read", h.handleRead)
	})
}

func userID(r *http.Request) types.UserID {
	p, _ := sharedauth.FromContext(r.Context())
	return p.UserID
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	unread, err := httpx.QueryBool(r, "unread")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	page, err := h.queries.List(r.Context(), userID(r), unread != nil && *unread, httpx.PageFromQuery(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.queries.UnreadCount(r.Context(), userID(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int{"unreadCount": n})
}

func (h *Handler) handleRead(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID[types.NotificationKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.commands.MarkRead(r.Context(), userID(r), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleReadAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.commands.MarkAllRead(r.Context(), userID(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int{"marked": n})
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotificationNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	default:
		httpx.HandleCommonError(w, r, err, h.logger)
	}
}
