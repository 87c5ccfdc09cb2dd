// Package http exposes chats over REST and a websocket feed.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AlagappanMk24/Gymunity/internal/platform/auth"
	"github.com/AlagappanMk24/Gymunity/internal/platform/httpx"
	"github.com/AlagappanMk24/Gymunity/modules/messaging/application/commands"
	"github.com/AlagappanMk24/Gymunity/modules/messaging/application/queries"
	"github.com/AlagappanMk24/Gymunity/modules/messaging/domain"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type Handlers struct {
	CreateThread *commands.CreateThreadHandler
	DeleteThread *commands.DeleteThreadHandler
	Messages     *commands.MessageHandler
	Queries      *queries.ChatQueries
	// Stream serves the websocket upgrade.
	Stream http.HandlerFunc
}

type Handler struct {
	h      Handlers
	logger *slog.Logger
}

func RegisterRoutes(r chi.Router, handlers Handlers, logger *slog.Logger) {
	h := &Handler{h: handlers, logger: logger}

	r.Route("/api/chat", func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/ws", handlers.Stream)
		r.Get("/unread-count", h.handleUnreadCount)
		r.Get("/threads", h.handleChats)
		r.With(auth.RequireRole(types.RoleClient)).Post("/threads", h.handleCreateThread)
		r.Get("/threads/{id}/messages", h.handleMessages)
		r.Post("/threads/{id}/messages", h.handleSend)
		r.Post("/threads/{id}/read", h.handleReadThread)
		r.Delete("/threads/{id}", h.handleDeleteThread)
		r.Post("/messages/{id}/read", h.handleReadMessage)
	})
}

type createThreadRequest struct {
	TrainerID string `json:"trainerId" validate:"required,uuid"`
}

type sendRequest struct {
	Type     string `json:"type" validate:"omitempty,oneof=Text Image Video Audio File"`
	Content  string `json:"content"`
	MediaURL string `json:"mediaUrl" validate:"omitempty,url"`
}

func viewer(r *http.Request) sharedauth.Principal {
	p, _ := sharedauth.FromContext(r.Context())
	return p
}

func (h *Handler) handleCreateThread(w http.ResponseWriter, r *http.Request) {
	var req createThreadRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	trainerID, err := types.ParseTrainerID(req.TrainerID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	id, created, err := h.h.CreateThread.Handle(r.Context(), commands.CreateThreadCommand{
		ClientID:  viewer(r).UserID,
		TrainerID: trainerID,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httpx.WriteJSON(w, status, map[string]any{"threadId": id, "created": created})
}

func (h *Handler) handleChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.h.Queries.Chats(r.Context(), viewer(r).UserID, httpx.PageFromQuery(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, chats)
}

func (h *Handler) handleMessages(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID[types.ThreadKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	msgs, err := h.h.Queries.Messages(r.Context(), viewer(r), id, httpx.PageFromQuery(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, msgs)
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID[types.ThreadKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req sendRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	kind, err := domain.ParseMessageType(req.Type)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	msgID, err := h.h.Messages.Send(r.Context(), commands.SendMessageCommand{
		SenderID: viewer(r).UserID,
		ThreadID: id,
		Type:     kind,
		Content:  req.Content,
		MediaURL: req.MediaURL,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"id": msgID})
}

func (h *Handler) handleReadThread(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID[types.ThreadKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	n, err := h.h.Messages.MarkThreadRead(r.Context(), viewer(r).UserID, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int{"marked": n})
}

func (h *Handler) handleReadMessage(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID[types.MessageKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.h.Messages.MarkRead(r.Context(), viewer(r).UserID, id); err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleDeleteThread(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID[types.ThreadKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.h.DeleteThread.Handle(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.h.Queries.UnreadCount(r.Context(), viewer(r).UserID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int{"unreadCount": n})
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrThreadNotFound),
		errors.Is(err, domain.ErrMessageNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotParticipant),
		errors.Is(err, domain.ErrNotRecipient),
		errors.Is(err, domain.ErrSubscriptionRequired):
		httpx.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrTrainerUnavailable),
		errors.Is(err, domain.ErrContentRequired),
		errors.Is(err, domain.ErrContentTooLong),
		errors.Is(err, domain.ErrMediaRequired),
		errors.Is(err, domain.ErrInvalidMessageType):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httpx.HandleCommonError(w, r, err, h.logger)
	}
}
