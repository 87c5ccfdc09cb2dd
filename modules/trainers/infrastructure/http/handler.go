// Package http exposes trainer discovery, the trainer's own profile and
// the trainer and review moderation endpoints.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AlagappanMk24/Gymunity/internal/platform/auth"
	"github.com/AlagappanMk24/Gymunity/internal/platform/httpx"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/application/commands"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/application/queries"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/domain"
)

// Handlers groups the use cases the HTTP adapter dispatches to.
type Handlers struct {
	CreateProfile *commands.CreateProfileHandler
	UpdateProfile *commands.UpdateProfileHandler
	UpdateStatus  *commands.UpdateStatusHandler
	AddReview     *commands.AddReviewHandler
	EditReview    *commands.EditReviewHandler
	Moderation    *commands.ModerationHandler

	GetProfile     *queries.GetProfileHandler
	Search         *queries.SearchHandler
	ListTrainers   *queries.ListTrainersHandler
	ExportTrainers *queries.ExportTrainersHandler
	Reviews        *queries.ReviewsHandler
}

type Handler struct {
	h      Handlers
	logger *slog.Logger
}

func RegisterRoutes(r chi.Router, handlers Handlers, logger *slog.Logger) {
	h := &Handler{h: handlers, logger: logger}

	r.Route("/api/trainers", func(r chi.Router) {
		r.Get("/", h.handleSearch)
		r.Get("/handle/{handle}", h.handleGetByHandle)
		r.Get("/{id}", h.handleGetByID)
		r.Get("/{id}/reviews", h.handleListReviews)
		r.With(auth.RequireRole(types.RoleClient)).Post("/{id}/reviews", h.handleAddReview)
	})
	r.With(auth.RequireRole(types.RoleClient)).Put("/api/reviews/{id}", h.handleEditReview)

	r.Route("/api/trainer/profile", func(r chi.Router) {
		r.Use(auth.RequireRole(types.RoleTrainer))
		r.Get("/", h.handleGetMine)
		r.Post("/", h.handleCreateProfile)
		r.Put("/", h.handleUpdateProfile)
		r.Put("/status", h.handleUpdateStatus)
	})

	r.Route("/admin/trainers", func(r chi.Router) {
		r.Use(auth.RequireRole(types.RoleAdmin))
		r.Get("/", h.handleListTrainers)
		r.Get("/counts", h.handleCounts)
		r.Get("/export", h.handleExportTrainers)
		r.Get("/{id}", h.handleGetByID)
		r.Post("/{id}/verify", h.moderate(h.h.Moderation.Verify))
		r.Post("/{id}/reject", h.moderate(h.h.Moderation.Reject))
		r.Post("/{id}/suspend", h.moderate(h.h.Moderation.Suspend))
		r.Post("/{id}/unsuspend", h.moderate(h.h.Moderation.Unsuspend))
	})

	r.Route("/admin/reviews", func(r chi.Router) {
		r.Use(auth.RequireRole(types.RoleAdmin))
		r.Get("/pending", h.handlePendingReviews)
		r.Post("/{id}/approve", h.moderateReview(h.h.Moderation.ApproveReview))
		r.Post("/{id}/reject", h.moderateReview(h.h.Moderation.RejectReview))
		r.Delete("/{id}", h.moderateReview(h.h.Moderation.DeleteReview))
	})
}

// Request DTOs

type profileRequest struct {
	Handle          string `json:"handle" validate:"required,min=3,max=51"`
	Bio             string `json:"bio" validate:"max=2000"`
	CoverImageURL   string `json:"coverImageUrl" validate:"omitempty,url"`
	VideoIntroURL   string `json:"videoIntroUrl" validate:"omitempty,url"`
	BrandingColors  string `json:"brandingColors" validate:"max=500"`
	YearsExperience int    `json:"yearsExperience" validate:"min=0,max=80"`
}

func (req profileRequest) details() domain.ProfileDetails {
	return domain.ProfileDetails{
		Bio:             req.Bio,
		CoverImageURL:   req.CoverImageURL,
		VideoIntroURL:   req.VideoIntroURL,
		BrandingColors:  req.BrandingColors,
		YearsExperience: req.YearsExperience,
	}
}

type statusRequest struct {
	StatusImageURL    string `json:"statusImageUrl" validate:"omitempty,url"`
	StatusDescription string `json:"statusDescription" validate:"max=200"`
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// Public handlers

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	minExp, err := httpx.QueryInt(r, "minExperience", 0)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.h.Search.Handle(r.Context(), queries.SearchQuery{
		Search:        r.URL.Query().Get("search"),
		MinExperience: minExp,
		Page:          httpx.PageFromQuery(r),
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func viewer(r *http.Request) sharedauth.Principal {
	p, _ := sharedauth.FromContext(r.Context())
	return p
}

func (h *Handler) handleGetByHandle(w http.ResponseWriter, r *http.Request) {
	dto, err := h.h.GetProfile.ByHandle(r.Context(), chi.URLParam(r, "handle"), viewer(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto)
}

func (h *Handler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID[types.TrainerKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	dto, err := h.h.GetProfile.ByID(r.Context(), id, viewer(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto)
}

func (h *Handler) handleListReviews(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID[types.TrainerKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.h.Reviews.Approved(r.Context(), id, httpx.PageFromQuery(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleAddReview(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	trainerID, err := httpx.PathID[types.TrainerKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req reviewRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	id, err := h.h.AddReview.Handle(r.Context(), commands.AddReviewCommand{
		ClientID:  p.UserID,
		TrainerID: trainerID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]types.ReviewID{"id": id})
}

func (h *Handler) handleEditReview(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	id, err := httpx.PathID[types.ReviewKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req reviewRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	err = h.h.EditReview.Handle(r.Context(), commands.EditReviewCommand{
		ClientID: p.UserID,
		ReviewID: id,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

// Trainer handlers

func (h *Handler) handleGetMine(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	dto, err := h.h.GetProfile.Mine(r.Context(), p.UserID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto)
}

func (h *Handler) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req profileRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	if _, err := h.h.CreateProfile.Handle(r.Context(), commands.CreateProfileCommand{
		UserID:  p.UserID,
		Role:    p.Role,
		Handle:  req.Handle,
		Details: req.details(),
	}); err != nil {
		h.handleError(w, r, err)
		return
	}
	dto, err := h.h.GetProfile.Mine(r.Context(), p.UserID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, dto)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req profileRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	err = h.h.UpdateProfile.Handle(r.Context(), commands.UpdateProfileCommand{
		UserID:  p.UserID,
		Handle:  req.Handle,
		Details: req.details(),
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req statusRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	err = h.h.UpdateStatus.Handle(r.Context(), commands.UpdateStatusCommand{
		UserID:      p.UserID,
		ImageURL:    req.StatusImageURL,
		Description: req.StatusDescription,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

// Admin handlers

func listQuery(r *http.Request) (queries.ListTrainersQuery, error) {
	q := queries.ListTrainersQuery{
		Search: r.URL.Query().Get("search"),
		Page:   httpx.PageFromQuery(r),
	}
	var err error
	if q.IsVerified, err = httpx.QueryBool(r, "isVerified"); err != nil {
		return q, err
	}
	if q.IsSuspended, err = httpx.QueryBool(r, "isSuspended"); err != nil {
		return q, err
	}
	return q, nil
}

func (h *Handler) handleListTrainers(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.h.ListTrainers.Handle(r.Context(), q)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.h.ListTrainers.Counts(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	pending, err := h.h.Reviews.PendingCount(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"total":               counts.Total,
		"verified":            counts.Verified,
		"pendingVerification": counts.Pending,
		"suspended":           counts.Suspended,
		"pendingReviews":      pending,
	})
}

func (h *Handler) handleExportTrainers(w http.ResponseWriter, r *http.Request) {
	format, err := httpx.FormatFromQuery(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	q, err := listQuery(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	table, err := h.h.ExportTrainers.Handle(r.Context(), q)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := httpx.WriteExport(w, format, "trainers", table); err != nil {
		h.handleError(w, r, err)
	}
}

func (h *Handler) moderate(fn func(ctx context.Context, id types.TrainerID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID[types.TrainerKind](r, "id")
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		if err := fn(r.Context(), id); err != nil {
			h.handleError(w, r, err)
			return
		}
		httpx.NoContent(w)
	}
}

func (h *Handler) handlePendingReviews(w http.ResponseWriter, r *http.Request) {
	res, err := h.h.Reviews.Pending(r.Context(), httpx.PageFromQuery(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) moderateReview(fn func(ctx context.Context, id types.ReviewID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID[types.ReviewKind](r, "id")
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		if err := fn(r.Context(), id); err != nil {
			h.handleError(w, r, err)
			return
		}
		httpx.NoContent(w)
	}
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrReviewNotFound):
		httpx.WriteError(w, http.StatusNotFound, "")
	case errors.Is(err, domain.ErrProfileExists),
		errors.Is(err, domain.ErrHandleTaken),
		errors.Is(err, domain.ErrReviewExists):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNotTrainer),
		errors.Is(err, domain.ErrNotReviewAuthor),
		errors.Is(err, domain.ErrNeverSubscribed),
		errors.Is(err, domain.ErrCannotReviewSelf):
		httpx.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrReviewDeleted):
		httpx.WriteError(w, http.StatusGone, err.Error())
	case errors.Is(err, domain.ErrHandleInvalid),
		errors.Is(err, domain.ErrBioTooLong),
		errors.Is(err, domain.ErrYearsOutOfRange),
		errors.Is(err, domain.ErrStatusTooLong),
		errors.Is(err, domain.ErrRatingOutOfRange),
		errors.Is(err, domain.ErrCommentTooLong):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httpx.HandleCommonError(w, r, err, h.logger)
	}
}
