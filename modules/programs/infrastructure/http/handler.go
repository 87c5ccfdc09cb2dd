// Package http exposes program authoring, discovery and the exercise
// library.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AlagappanMk24/Gymunity/internal/platform/auth"
	"github.com/AlagappanMk24/Gymunity/internal/platform/httpx"
	"github.com/AlagappanMk24/Gymunity/modules/programs/application/commands"
	"github.com/AlagappanMk24/Gymunity/modules/programs/application/queries"
	"github.com/AlagappanMk24/Gymunity/modules/programs/domain"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type Handlers struct {
	CreateProgram  *commands.CreateProgramHandler
	Edit           *commands.EditHandler
	CreateExercise *commands.CreateExerciseHandler

	GetProgram   *queries.GetProgramHandler
	ListPrograms *queries.ListProgramsHandler
	Exercises    *queries.ExercisesHandler
}

type Handler struct {
	h      Handlers
	logger *slog.Logger
}

func RegisterRoutes(r chi.Router, handlers Handlers, logger *slog.Logger) {
	h := &Handler{h: handlers, logger: logger}

	r.Get("/api/programs", h.handleSearch)
	r.Get("/api/programs/{id}", h.handleGet)
	r.Get("/api/exercises", h.handleListExercises)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(types.RoleTrainer))
		r.Get("/api/trainer/programs", h.handleListMine)
		r.Post("/api/trainer/programs", h.handleCreate)
		r.Put("/api/trainer/programs/{id}", h.handleUpdate)
		r.Delete("/api/trainer/programs/{id}", h.handleDelete)
		r.Post("/api/trainer/programs/{id}/visibility", h.handleToggle)
		r.Post("/api/trainer/programs/{id}/weeks", h.handleAddWeek)
		r.Post("/api/trainer/programs/{id}/weeks/{weekId}/days", h.handleAddDay)
		r.Post("/api/trainer/programs/{id}/days/{dayId}/exercises", h.handleAddDayExercise)
		r.Delete("/api/trainer/programs/{id}/exercises/{dayExerciseId}", h.handleRemoveDayExercise)
		r.Post("/api/trainer/exercises", h.handleCreateExercise)
	})

	r.Route("/admin/programs", func(r chi.Router) {
		r.Use(auth.RequireRole(types.RoleAdmin))
		r.Get("/", h.handleAdminList)
		r.Get("/stats", h.handleStats)
		r.Get("/{id}", h.handleGet)
		r.Post("/{id}/visibility", h.handleToggle)
		r.Delete("/{id}", h.handleDelete)
	})
}

type programRequest struct {
	Title         string `json:"title" validate:"required,min=3,max=200"`
	Description   string `json:"description" validate:"max=2000"`
	Type          string `json:"type" validate:"omitempty,oneof=Workout Nutrition Hybrid"`
	DurationWeeks int    `json:"durationWeeks" validate:"required,min=1,max=52"`
	PriceCents    int64  `json:"priceCents" validate:"min=0"`
	Currency      string `json:"currency" validate:"omitempty,len=3"`
	IsPublic      bool   `json:"isPublic"`
	MaxClients    int    `json:"maxClients" validate:"min=0"`
	ThumbnailURL  string `json:"thumbnailUrl" validate:"omitempty,url"`
}

func (req programRequest) input() commands.ProgramInput {
	return commands.ProgramInput{
		Title:         req.Title,
		Description:   req.Description,
		Type:          req.Type,
		DurationWeeks: req.DurationWeeks,
		PriceCents:    req.PriceCents,
		Currency:      req.Currency,
		MaxClients:    req.MaxClients,
		ThumbnailURL:  req.ThumbnailURL,
		IsPublic:      req.IsPublic,
	}
}

type dayRequest struct {
	DayNumber int    `json:"dayNumber" validate:"required,min=1,max=7"`
	Title     string `json:"title" validate:"max=100"`
	Notes     string `json:"notes" validate:"max=500"`
}

type dayExerciseRequest struct {
	ExerciseID  string `json:"exerciseId" validate:"required,uuid"`
	OrderIndex  int    `json:"orderIndex" validate:"min=0"`
	Sets        int    `json:"sets" validate:"required,min=1,max=20"`
	Reps        string `json:"reps" validate:"max=20"`
	RestSeconds int    `json:"restSeconds" validate:"min=0,max=600"`
	Tempo       string `json:"tempo" validate:"max=20"`
	Notes       string `json:"notes" validate:"max=500"`
}

type exerciseRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=100"`
	Category     string `json:"category" validate:"required,max=50"`
	MuscleGroup  string `json:"muscleGroup" validate:"max=50"`
	Equipment    string `json:"equipment" validate:"max=100"`
	VideoDemoURL string `json:"videoDemoUrl" validate:"omitempty,url"`
	ThumbnailURL string `json:"thumbnailUrl" validate:"omitempty,url"`
}

func optionalTrainerID(r *http.Request) (*types.TrainerID, error) {
	raw := r.URL.Query().Get("trainerId")
	if raw == "" {
		return nil, nil
	}
	id, err := types.ParseTrainerID(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func viewer(r *http.Request) sharedauth.Principal {
	p, _ := sharedauth.FromContext(r.Context())
	return p
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	trainerID, err := optionalTrainerID(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.h.ListPrograms.Public(r.Context(), queries.PublicQuery{
		Search:    r.URL.Query().Get("search"),
		Type:      r.URL.Query().Get("type"),
		TrainerID: trainerID,
		Page:      httpx.PageFromQuery(r),
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID[types.ProgramKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	dto, err := h.h.GetProgram.Handle(r.Context(), id, viewer(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto)
}

func (h *Handler) handleListExercises(w http.ResponseWriter, r *http.Request) {
	res, err := h.h.Exercises.Handle(r.Context(), queries.ExercisesQuery{
		Viewer:   viewer(r),
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
		Page:     httpx.PageFromQuery(r),
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.h.ListPrograms.Mine(r.Context(), p.UserID, httpx.PageFromQuery(r))
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
	var req programRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	id, err := h.h.CreateProgram.Handle(r.Context(), commands.CreateProgramCommand{UserID: p.UserID, Input: req.input()})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	dto, err := h.h.GetProgram.Handle(r.Context(), id, p)
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
	id, err := httpx.PathID[types.ProgramKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req programRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.h.Edit.Update(r.Context(), p, id, req.input()); err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	id, err := httpx.PathID[types.ProgramKind](r, "id")
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
	id, err := httpx.PathID[types.ProgramKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	public, err := h.h.Edit.ToggleVisibility(r.Context(), p, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"isPublic": public})
}

func (h *Handler) handleAddWeek(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	id, err := httpx.PathID[types.ProgramKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	week, err := h.h.Edit.AddWeek(r.Context(), p, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, queries.WeekDTO{ID: week.ID, WeekNumber: week.WeekNumber, Days: []*queries.DayDTO{}})
}

func (h *Handler) handleAddDay(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	id, err := httpx.PathID[types.ProgramKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	weekID, err := httpx.PathID[domain.WeekKind](r, "weekId")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req dayRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	day, err := h.h.Edit.AddDay(r.Context(), p, commands.AddDayCommand{
		ProgramID: id,
		WeekID:    weekID,
		DayNumber: req.DayNumber,
		Title:     req.Title,
		Notes:     req.Notes,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, queries.DayDTO{
		ID: day.ID, DayNumber: day.DayNumber, Title: day.Title, Notes: day.Notes,
		Exercises: []*queries.DayExerciseDTO{},
	})
}

func (h *Handler) handleAddDayExercise(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	id, err := httpx.PathID[types.ProgramKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	dayID, err := httpx.PathID[types.ProgramDayKind](r, "dayId")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req dayExerciseRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	exerciseID, err := types.ParseExerciseID(req.ExerciseID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	added, err := h.h.Edit.AddDayExercise(r.Context(), p, commands.AddDayExerciseCommand{
		ProgramID: id,
		DayID:     dayID,
		Prescription: domain.Prescription{
			ExerciseID:  exerciseID,
			OrderIndex:  req.OrderIndex,
			Sets:        req.Sets,
			Reps:        req.Reps,
			RestSeconds: req.RestSeconds,
			Tempo:       req.Tempo,
			Notes:       req.Notes,
		},
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, queries.DayExerciseDTO{
		ID:          added.ID,
		ExerciseID:  added.ExerciseID,
		OrderIndex:  added.OrderIndex,
		Sets:        added.Sets,
		Reps:        added.Reps,
		RestSeconds: added.RestSeconds,
		Tempo:       added.Tempo,
		Notes:       added.Notes,
	})
}

func (h *Handler) handleRemoveDayExercise(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	id, err := httpx.PathID[types.ProgramKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	exID, err := httpx.PathID[domain.DayExerciseKind](r, "dayExerciseId")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.h.Edit.RemoveDayExercise(r.Context(), p, id, exID); err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req exerciseRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	ex, err := h.h.CreateExercise.Handle(r.Context(), commands.CreateExerciseCommand{
		UserID: p.UserID,
		Details: domain.ExerciseDetails{
			Name:         req.Name,
			Category:     req.Category,
			MuscleGroup:  req.MuscleGroup,
			Equipment:    req.Equipment,
			VideoDemoURL: req.VideoDemoURL,
			ThumbnailURL: req.ThumbnailURL,
		},
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, queries.ToExerciseDTO(ex))
}

func (h *Handler) handleAdminList(w http.ResponseWriter, r *http.Request) {
	isPublic, err := httpx.QueryBool(r, "isPublic")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	trainerID, err := optionalTrainerID(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.h.ListPrograms.Admin(r.Context(), queries.AdminQuery{
		Search:    r.URL.Query().Get("search"),
		IsPublic:  isPublic,
		TrainerID: trainerID,
		Page:      httpx.PageFromQuery(r),
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.h.ListPrograms.Stats(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrProgramNotFound),
		errors.Is(err, domain.ErrWeekNotFound),
		errors.Is(err, domain.ErrDayNotFound),
		errors.Is(err, domain.ErrDayExerciseNotFound),
		errors.Is(err, domain.ErrExerciseNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrTitleTaken),
		errors.Is(err, domain.ErrDayExists),
		errors.Is(err, domain.ErrWeekLimit),
		errors.Is(err, domain.ErrExerciseNameTaken):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrTrainerRequired),
		errors.Is(err, domain.ErrExerciseUnavailable):
		httpx.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrTitleInvalid),
		errors.Is(err, domain.ErrDescriptionTooLong),
		errors.Is(err, domain.ErrTypeInvalid),
		errors.Is(err, domain.ErrDurationOutOfRange),
		errors.Is(err, domain.ErrMaxClientsInvalid),
		errors.Is(err, domain.ErrDayNumberInvalid),
		errors.Is(err, domain.ErrSetsOutOfRange),
		errors.Is(err, domain.ErrRepsInvalid),
		errors.Is(err, domain.ErrRestOutOfRange),
		errors.Is(err, domain.ErrNotesTooLong),
		errors.Is(err, domain.ErrExerciseNameInvalid),
		errors.Is(err, domain.ErrExerciseCategory):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httpx.HandleCommonError(w, r, err, h.logger)
	}
}
