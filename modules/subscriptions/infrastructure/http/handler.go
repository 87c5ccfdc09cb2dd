// Package http exposes subscriptions and payments to clients, trainers,
// the payment provider and administrators.
package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AlagappanMk24/Gymunity/internal/platform/auth"
	"github.com/AlagappanMk24/Gymunity/internal/platform/httpx"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/application/commands"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/application/queries"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/domain"
)

// SignatureHeader carries the hex HMAC-SHA256 of a webhook body.
const SignatureHeader = "X-Gymunity-Signature"

const maxWebhookBytes = 64 << 10

type Handlers struct {
	Subscribe *commands.SubscribeHandler
	Cancel    *commands.CancelHandler
	Initiate  *commands.InitiatePaymentHandler
	Webhook   *commands.WebhookHandler
	Refund    *commands.RefundHandler
	Expire    *commands.ExpireHandler

	Get      *queries.GetSubscriptionHandler
	List     *queries.ListSubscriptionsHandler
	Payments *queries.PaymentsHandler
}

type Handler struct {
	h      Handlers
	logger *slog.Logger
}

func RegisterRoutes(r chi.Router, handlers Handlers, logger *slog.Logger) {
	h := &Handler{h: handlers, logger: logger}

	r.Route("/api/subscriptions", func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.With(auth.RequireRole(types.RoleClient)).Post("/", h.handleSubscribe)
		r.Get("/", h.handleListMine)
		r.Get("/{id}", h.handleGet)
		r.Post("/{id}/cancel", h.handleCancel)
		r.With(auth.RequireRole(types.RoleClient)).Post("/{id}/pay", h.handleInitiatePayment)
	})

	r.Post("/api/payments/webhook", h.handleWebhook)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/api/payments", h.handleListMyPayments)
		r.Get("/api/payments/{id}", h.handleGetPayment)
	})

	r.With(auth.RequireRole(types.RoleTrainer)).Get("/api/trainer/subscribers", h.handleSubscribers)

	r.Route("/admin/subscriptions", func(r chi.Router) {
		r.Use(auth.RequireRole(types.RoleAdmin))
		r.Get("/", h.handleAdminList)
		r.Get("/expiring", h.handleExpiring)
		r.Get("/stats", h.handleStats)
		r.Post("/expire", h.handleExpireNow)
		r.Get("/{id}", h.handleGet)
		r.Post("/{id}/cancel", h.handleCancel)
	})

	r.Route("/admin/payments", func(r chi.Router) {
		r.Use(auth.RequireRole(types.RoleAdmin))
		r.Get("/", h.handleAdminPayments)
		r.Get("/stats", h.handlePaymentStats)
		r.Get("/revenue", h.handleRevenue)
		r.Get("/export", h.handleExport)
		r.Get("/{id}", h.handleGetPayment)
		r.Post("/{id}/refund", h.handleRefund)
	})
}

type subscribeRequest struct {
	PackageID string `json:"packageId" validate:"required,uuid"`
	IsAnnual  bool   `json:"isAnnual"`
}

type reasonRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type payRequest struct {
	Method string `json:"method" validate:"required"`
}

func viewer(r *http.Request) sharedauth.Principal {
	p, _ := sharedauth.FromContext(r.Context())
	return p
}

func statusFromQuery(r *http.Request) (*domain.Status, error) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil, nil
	}
	s, err := domain.ParseStatus(raw)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (h *Handler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	packageID, err := types.ParsePackageID(req.PackageID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	id, err := h.h.Subscribe.Handle(r.Context(), commands.SubscribeCommand{
		ClientID:  viewer(r).UserID,
		PackageID: packageID,
		Annual:    req.IsAnnual,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	dto, err := h.h.Get.Handle(r.Context(), id, viewer(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, dto)
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	status, err := statusFromQuery(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.h.List.Mine(r.Context(), viewer(r).UserID, status, httpx.PageFromQuery(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID[types.SubscriptionKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	dto, err := h.h.Get.Handle(r.Context(), id, viewer(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID[types.SubscriptionKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req reasonRequest
	if r.ContentLength != 0 {
		if err := httpx.Decode(r, &req); err != nil {
			h.handleError(w, r, err)
			return
		}
	}
	if err := h.h.Cancel.Handle(r.Context(), commands.CancelCommand{SubscriptionID: id, Reason: req.Reason}); err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleInitiatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID[types.SubscriptionKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req payRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	method, err := domain.ParseMethod(req.Method)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	checkout, err := h.h.Initiate.Handle(r.Context(), commands.InitiatePaymentCommand{
		ClientID:       viewer(r).UserID,
		SubscriptionID: id,
		Method:         method,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, checkout)
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "")
		return
	}
	if err := h.h.Webhook.Handle(r.Context(), body, r.Header.Get(SignatureHeader)); err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *Handler) handleListMyPayments(w http.ResponseWriter, r *http.Request) {
	res, err := h.h.Payments.Mine(r.Context(), viewer(r).UserID, httpx.PageFromQuery(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID[types.PaymentKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	dto, err := h.h.Payments.Get(r.Context(), id, viewer(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto)
}

func (h *Handler) handleSubscribers(w http.ResponseWriter, r *http.Request) {
	status, err := statusFromQuery(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.h.List.Subscribers(r.Context(), viewer(r).UserID, status, httpx.PageFromQuery(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func subscriptionFilter(r *http.Request) (domain.SubscriptionFilter, error) {
	var f domain.SubscriptionFilter
	var err error
	if f.Status, err = statusFromQuery(r); err != nil {
		return f, err
	}
	q := r.URL.Query()
	if raw := q.Get("clientId"); raw != "" {
		id, err := types.ParseUserID(raw)
		if err != nil {
			return f, err
		}
		f.ClientID = &id
	}
	if raw := q.Get("trainerId"); raw != "" {
		id, err := types.ParseTrainerID(raw)
		if err != nil {
			return f, err
		}
		f.TrainerID = &id
	}
	if raw := q.Get("packageId"); raw != "" {
		id, err := types.ParsePackageID(raw)
		if err != nil {
			return f, err
		}
		f.PackageID = &id
	}
	if f.CreatedFrom, err = httpx.QueryTime(r, "from"); err != nil {
		return f, err
	}
	if f.CreatedTo, err = httpx.QueryTime(r, "to"); err != nil {
		return f, err
	}
	return f, nil
}

func (h *Handler) handleAdminList(w http.ResponseWriter, r *http.Request) {
	filter, err := subscriptionFilter(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.h.List.Admin(r.Context(), filter, httpx.PageFromQuery(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleExpiring(w http.ResponseWriter, r *http.Request) {
	days, err := httpx.QueryInt(r, "days", 7)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.h.List.ExpiringSoon(r.Context(), days, httpx.PageFromQuery(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.h.List.Stats(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleExpireNow(w http.ResponseWriter, r *http.Request) {
	n, err := h.h.Expire.Sweep(r.Context(), time.Now())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int{"expired": n})
}

func paymentFilter(r *http.Request) (domain.PaymentFilter, error) {
	var f domain.PaymentFilter
	q := r.URL.Query()
	if raw := q.Get("status"); raw != "" {
		s, err := domain.ParsePaymentStatus(raw)
		if err != nil {
			return f, err
		}
		f.Status = &s
	}
	if raw := q.Get("clientId"); raw != "" {
		id, err := types.ParseUserID(raw)
		if err != nil {
			return f, err
		}
		f.ClientID = &id
	}
	if raw := q.Get("trainerId"); raw != "" {
		id, err := types.ParseTrainerID(raw)
		if err != nil {
			return f, err
		}
		f.TrainerID = &id
	}
	for key, dst := range map[string]**int64{"minAmount": &f.MinAmountCents, "maxAmount": &f.MaxAmountCents} {
		if q.Get(key) == "" {
			continue
		}
		v, err := httpx.QueryInt(r, key, 0)
		if err != nil {
			return f, err
		}
		cents := int64(v)
		*dst = &cents
	}
	var err error
	if f.From, err = httpx.QueryTime(r, "from"); err != nil {
		return f, err
	}
	if f.To, err = httpx.QueryTime(r, "to"); err != nil {
		return f, err
	}
	return f, nil
}

func (h *Handler) handleAdminPayments(w http.ResponseWriter, r *http.Request) {
	filter, err := paymentFilter(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.h.Payments.Admin(r.Context(), filter, httpx.PageFromQuery(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handlePaymentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.h.Payments.Stats(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleRevenue(w http.ResponseWriter, r *http.Request) {
	from, err := httpx.QueryTime(r, "from")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	to, err := httpx.QueryTime(r, "to")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	rows, err := h.h.Payments.Revenue(r.Context(), from, to)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := httpx.FormatFromQuery(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	filter, err := paymentFilter(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	table, err := h.h.Payments.Export(r.Context(), filter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := httpx.WriteExport(w, format, "payments", table); err != nil {
		h.handleError(w, r, err)
	}
}

func (h *Handler) handleRefund(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID[types.PaymentKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req reasonRequest
	if r.ContentLength != 0 {
		if err := httpx.Decode(r, &req); err != nil {
			h.handleError(w, r, err)
			return
		}
	}
	if err := h.h.Refund.Handle(r.Context(), commands.RefundCommand{PaymentID: id, Reason: req.Reason}); err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrSubscriptionNotFound),
		errors.Is(err, domain.ErrPaymentNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotSubscriber):
		httpx.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrAlreadySubscribed),
		errors.Is(err, domain.ErrSubscriptionClosed),
		errors.Is(err, domain.ErrPaymentNotPending),
		errors.Is(err, domain.ErrPaymentNotCompleted):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidSignature):
		httpx.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrWebhookDisabled):
		httpx.WriteError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, domain.ErrPackageUnavailable),
		errors.Is(err, domain.ErrAnnualUnavailable),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidMethod),
		errors.Is(err, domain.ErrInvalidWebhook),
		errors.Is(err, domain.ErrReasonRequired),
		errors.Is(err, domain.ErrReasonTooLong):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httpx.HandleCommonError(w, r, err, h.logger)
	}
}
