// Package http exposes trainer packages to clients, trainers and
// administrators.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AlagappanMk24/Gymunity/internal/platform/auth"
	"github.com/AlagappanMk24/Gymunity/internal/platform/httpx"
	"github.com/AlagappanMk24/Gymunity/modules/packages/application/commands"
	"github.com/AlagappanMk24/Gymunity/modules/packages/application/queries"
	"github.com/AlagappanMk24/Gymunity/modules/packages/domain"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type Handlers struct {
	Create *commands.CreatePackageHandler
	Edit   *commands.EditHandler

	Get  *queries.GetPackageHandler
	List *queries.ListPackagesHandler
}

type Handler struct {
	h      Handlers
	logger *slog.Logger
}

func RegisterRoutes(r chi.Router, handlers Handlers, logger *slog.Logger) {
	h := &Handler{h: handlers, logger: logger}

	r.Get("/api/packages", h.handleListActive)
	r.Get("/api/packages/{id}", h.handleGet)

	r.Route("/api/trainer/packages", func(r chi.Router) {
		r.Use(auth.RequireRole(types.RoleTrainer))
		r.Get("/", h.handleListMine)
		r.Post("/", h.handleCreate)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Post("/{id}/toggle-active", h.handleToggle)
	})

	r.Route("/admin/packages", func(r chi.Router) {
		r.Use(auth.RequireRole(types.RoleAdmin))
		r.Get("/", h.handleAdminList)
		r.Get("/{id}", h.handleGet)
		r.Post("/{id}/toggle-active", h.handleToggle)
		r.Delete("/{id}", h.handleDelete)
	})
}

type createRequest struct {
	Name              string          `json:"name" validate:"required,min=3,max=100"`
	Description       string          `json:"description" validate:"max=2000"`
	PriceMonthlyCents int64           `json:"priceMonthlyCents" validate:"required,gt=0"`
	PriceYearlyCents  *int64          `json:"priceYearlyCents" validate:"omitempty,gt=0"`
	Currency          string          `json:"currency" validate:"omitempty,len=3"`
	Features          json.RawMessage `json:"features"`
	ThumbnailURL      string          `json:"thumbnailUrl" validate:"omitempty,url"`
	PromoCode         string          `json:"promoCode" validate:"max=20"`
	ProgramIDs        []string        `json:"programIds" validate:"dive,uuid"`
}

type updateRequest struct {
	Name              *string         `json:"name" validate:"omitempty,min=3,max=100"`
	Description       *string         `json:"description" validate:"omitempty,max=2000"`
	PriceMonthlyCents *int64          `json:"priceMonthlyCents" validate:"omitempty,gt=0"`
	PriceYearlyCents  *int64          `json:"priceYearlyCents" validate:"omitempty,gt=0"`
	ClearYearlyPrice  bool            `json:"clearYearlyPrice"`
	Currency          *string         `json:"currency" validate:"omitempty,len=3"`
	Features          json.RawMessage `json:"features"`
	ThumbnailURL      *string         `json:"thumbnailUrl" validate:"omitempty,max=500"`
	PromoCode         *string         `json:"promoCode" validate:"omitempty,max=20"`
	IsActive          *bool           `json:"isActive"`
	ProgramIDs        *[]string       `json:"programIds"`
}

func viewer(r *http.Request) sharedauth.Principal {
	p, _ := sharedauth.FromContext(r.Context())
	return p
}

func (h *Handler) handleListActive(w http.ResponseWriter, r *http.Request) {
	var trainerID *types.TrainerID
	if raw := r.URL.Query().Get("trainerId"); raw != "" {
		id, err := types.ParseTrainerID(raw)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		trainerID = &id
	}
	res, err := h.h.List.Active(r.Context(), trainerID, r.URL.Query().Get("search"), httpx.PageFromQuery(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID[types.PackageKind](r, "id")
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

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.h.List.Mine(r.Context(), p.UserID, httpx.PageFromQuery(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req createRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	programIDs, err := types.ParseIDs[types.ProgramKind](req.ProgramIDs)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	id, err := h.h.Create.Handle(r.Context(), commands.CreatePackageCommand{
		UserID: p.UserID,
		Input: commands.PackageInput{
			Name:              req.Name,
			Description:       req.Description,
			PriceMonthlyCents: req.PriceMonthlyCents,
			PriceYearlyCents:  req.PriceYearlyCents,
			Currency:          req.Currency,
			FeaturesJSON:      string(req.Features),
			ThumbnailURL:      req.ThumbnailURL,
			PromoCode:         req.PromoCode,
			ProgramIDs:        programIDs,
		},
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	dto, err := h.h.Get.Handle(r.Context(), id, p)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, dto)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	id, err := httpx.PathID[types.PackageKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req updateRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	patch := commands.PackagePatch{
		Name:              req.Name,
		Description:       req.Description,
		PriceMonthlyCents: req.PriceMonthlyCents,
		PriceYearlyCents:  req.PriceYearlyCents,
		ClearYearly:       req.ClearYearlyPrice,
		Currency:          req.Currency,
		ThumbnailURL:      req.ThumbnailURL,
		PromoCode:         req.PromoCode,
		IsActive:          req.IsActive,
	}
	if len(req.Features) > 0 && string(req.Features) != "null" {
		features := string(req.Features)
		patch.FeaturesJSON = &features
	}
	if req.ProgramIDs != nil {
		if patch.ProgramIDs, err = types.ParseIDs[types.ProgramKind](*req.ProgramIDs); err != nil {
			h.handleError(w, r, err)
			return
		}
		patch.ReplacePrograms = true
	}
	if err := h.h.Edit.Update(r.Context(), p, id, patch); err != nil {
		h.handleError(w, r, err)
		return
	}
	dto, err := h.h.Get.Handle(r.Context(), id, p)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	id, err := httpx.PathID[types.PackageKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.h.Edit.Delete(r.Context(), p, id); err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	id, err := httpx.PathID[types.PackageKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	active, err := h.h.Edit.ToggleActive(r.Context(), p, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"isActive": active})
}

func (h *Handler) handleAdminList(w http.ResponseWriter, r *http.Request) {
	isActive, err := httpx.QueryBool(r, "isActive")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	filter := domain.PackageFilter{IsActive: isActive, Search: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("trainerId"); raw != "" {
		id, err := types.ParseTrainerID(raw)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		filter.TrainerID = &id
	}
	res, err := h.h.List.Admin(r.Context(), filter, httpx.PageFromQuery(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrPackageNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrTrainerRequired),
		errors.Is(err, domain.ErrProgramsNotOwned):
		httpx.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNameInvalid),
		errors.Is(err, domain.ErrDescriptionTooLong),
		errors.Is(err, domain.ErrPriceInvalid),
		errors.Is(err, domain.ErrYearlyPriceInvalid),
		errors.Is(err, domain.ErrFeaturesInvalid),
		errors.Is(err, domain.ErrPromoCodeInvalid):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httpx.HandleCommonError(w, r, err, h.logger)
	}
}
