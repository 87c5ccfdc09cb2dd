// Package http exposes client profiles and training history.
package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AlagappanMk24/Gymunity/internal/platform/auth"
	"github.com/AlagappanMk24/Gymunity/internal/platform/httpx"
	"github.com/AlagappanMk24/Gymunity/modules/clients/application/commands"
	"github.com/AlagappanMk24/Gymunity/modules/clients/application/queries"
	"github.com/AlagappanMk24/Gymunity/modules/clients/domain"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type Handlers struct {
	UpsertProfile *commands.UpsertProfileHandler
	LogBodyStats  *commands.LogBodyStatsHandler
	Workouts      *commands.WorkoutHandler
	Queries       *queries.ClientQueries
}

type Handler struct {
	h      Handlers
	logger *slog.Logger
}

func RegisterRoutes(r chi.Router, handlers Handlers, logger *slog.Logger) {
	h := &Handler{h: handlers, logger: logger}

	r.Route("/api/client", func(r chi.Router) {
		r.Use(auth.RequireRole(types.RoleClient))
		r.Get("/profile", h.handleGetProfile)
		r.Put("/profile", h.handleUpsertProfile)
		r.Get("/body-stats", h.handleListBodyStats)
		r.Post("/body-stats", h.handleLogBodyStats)
		r.Get("/workout-logs", h.handleListWorkouts)
		r.Post("/workout-logs", h.handleLogWorkout)
		r.Delete("/workout-logs/{id}", h.handleDeleteWorkout)
		r.Get("/progress", h.handleProgress)
	})
	r.With(auth.RequireRole(types.RoleTrainer, types.RoleAdmin)).
		Get("/api/trainer/clients/{userId}/progress", h.handleClientProgress)
}

type profileRequest struct {
	HeightCm         *int     `json:"heightCm" validate:"omitempty,min=50,max=300"`
	StartingWeightKg *float64 `json:"startingWeightKg" validate:"omitempty,min=20,max=500"`
	Gender           string   `json:"gender" validate:"omitempty,oneof=Male Female"`
	Goal             string   `json:"goal" validate:"omitempty,oneof=WeightLoss MuscleGain Maintenance Strength Endurance"`
	ExperienceLevel  string   `json:"experienceLevel" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
}

func (req profileRequest) details() domain.ProfileDetails {
	d := domain.ProfileDetails{
		HeightCm:         req.HeightCm,
		StartingWeightKg: req.StartingWeightKg,
		ExperienceLevel:  domain.ExperienceLevel(req.ExperienceLevel),
	}
	if req.Gender != "" {
		g := domain.Gender(req.Gender)
		d.Gender = &g
	}
	if req.Goal != "" {
		g := domain.Goal(req.Goal)
		d.Goal = &g
	}
	return d
}

type bodyStatRequest struct {
	WeightKg         *float64   `json:"weightKg" validate:"omitempty,min=20,max=500"`
	BodyFatPercent   *float64   `json:"bodyFatPercent" validate:"omitempty,min=0,max=100"`
	MeasurementsJSON string     `json:"measurementsJson"`
	PhotoFrontURL    string     `json:"photoFrontUrl" validate:"omitempty,url"`
	PhotoSideURL     string     `json:"photoSideUrl" validate:"omitempty,url"`
	PhotoBackURL     string     `json:"photoBackUrl" validate:"omitempty,url"`
	Notes            string     `json:"notes" validate:"max=2000"`
	LoggedAt         *time.Time `json:"loggedAt"`
}

type workoutRequest struct {
	ProgramDayID        string     `json:"programDayId" validate:"required,uuid"`
	CompletedAt         *time.Time `json:"completedAt"`
	Notes               string     `json:"notes" validate:"max=2000"`
	DurationMinutes     int        `json:"durationMinutes" validate:"required,min=1,max=600"`
	ExercisesLoggedJSON string     `json:"exercisesLoggedJson"`
}

func caller(r *http.Request) sharedauth.Principal {
	p, _ := sharedauth.FromContext(r.Context())
	return p
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.h.Queries.Profile(r.Context(), caller(r).UserID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	userID := caller(r).UserID
	created, err := h.h.UpsertProfile.Handle(r.Context(), userID, req.details())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	p, err := h.h.Queries.Profile(r.Context(), userID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httpx.WriteJSON(w, status, p)
}

func (h *Handler) handleListBodyStats(w http.ResponseWriter, r *http.Request) {
	logs, err := h.h.Queries.BodyStats(r.Context(), caller(r).UserID, httpx.PageFromQuery(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, logs)
}

func (h *Handler) handleLogBodyStats(w http.ResponseWriter, r *http.Request) {
	var req bodyStatRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	d := domain.BodyStatDetails{
		WeightKg:         req.WeightKg,
		BodyFatPercent:   req.BodyFatPercent,
		MeasurementsJSON: req.MeasurementsJSON,
		PhotoFrontURL:    req.PhotoFrontURL,
		PhotoSideURL:     req.PhotoSideURL,
		PhotoBackURL:     req.PhotoBackURL,
		Notes:            req.Notes,
	}
	if req.LoggedAt != nil {
		d.LoggedAt = *req.LoggedAt
	}
	id, err := h.h.LogBodyStats.Handle(r.Context(), caller(r).UserID, d)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	logs, err := h.h.Queries.WorkoutLogs(r.Context(), caller(r).UserID, httpx.PageFromQuery(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, logs)
}

func (h *Handler) handleLogWorkout(w http.ResponseWriter, r *http.Request) {
	var req workoutRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	dayID, err := types.ParseProgramDayID(req.ProgramDayID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	d := domain.WorkoutDetails{
		ProgramDayID:        dayID,
		Notes:               req.Notes,
		DurationMinutes:     req.DurationMinutes,
		ExercisesLoggedJSON: req.ExercisesLoggedJSON,
	}
	if req.CompletedAt != nil {
		d.CompletedAt = *req.CompletedAt
	}
	id, err := h.h.Workouts.Log(r.Context(), caller(r).UserID, d)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID[types.WorkoutLogKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.h.Workouts.Delete(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	p, err := h.h.Queries.Progress(r.Context(), caller(r).UserID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleClientProgress(w http.ResponseWriter, r *http.Request) {
	clientID, err := httpx.PathID[types.UserKind](r, "userId")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	p, err := h.h.Queries.ClientProgress(r.Context(), caller(r), clientID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrWorkoutLogNotFound),
		errors.Is(err, domain.ErrBodyStatNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotYourClient):
		httpx.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrHeightOutOfRange),
		errors.Is(err, domain.ErrStartingWeightRange),
		errors.Is(err, domain.ErrInvalidGender),
		errors.Is(err, domain.ErrInvalidGoal),
		errors.Is(err, domain.ErrInvalidExperienceLevel),
		errors.Is(err, domain.ErrWeightOutOfRange),
		errors.Is(err, domain.ErrBodyFatOutOfRange),
		errors.Is(err, domain.ErrMeasurementsInvalid),
		errors.Is(err, domain.ErrBodyStatEmpty),
		errors.Is(err, domain.ErrNotesTooLong),
		errors.Is(err, domain.ErrDurationOutOfRange),
		errors.Is(err, domain.ErrExercisesLoggedInvalid),
		errors.Is(err, domain.ErrExercisesLoggedTooLarge),
		errors.Is(err, domain.ErrCompletedInFuture),
		errors.Is(err, domain.ErrProgramDayNotFound):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httpx.HandleCommonError(w, r, err, h.logger)
	}
}
