// Package http provides HTTP handlers for the identity module.
// Handlers translate HTTP requests into commands/queries and format responses.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AlagappanMk24/Gymunity/internal/platform/auth"
	"github.com/AlagappanMk24/Gymunity/internal/platform/httpx"
	"github.com/AlagappanMk24/Gymunity/modules/identity/application/commands"
	"github.com/AlagappanMk24/Gymunity/modules/identity/application/queries"
	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// Handlers groups the use cases the HTTP adapter dispatches to.
type Handlers struct {
	Register       *commands.RegisterHandler
	Login          *commands.LoginHandler
	GoogleAuth     *commands.GoogleAuthHandler
	UpdateProfile  *commands.UpdateProfileHandler
	ChangePassword *commands.ChangePasswordHandler
	SendResetLink  *commands.SendResetLinkHandler
	ResetPassword  *commands.ResetPasswordHandler
	Moderation     *commands.ModerationHandler

	GetUser     *queries.GetUserHandler
	ListUsers   *queries.ListUsersHandler
	Statistics  *queries.StatisticsHandler
	ExportUsers *queries.ExportUsersHandler
}

// Handler handles HTTP requests for the identity module.
type Handler struct {
	h      Handlers
	logger *slog.Logger
}

// RegisterRoutes mounts the account API and the user administration API.
// limit throttles the anonymous credential endpoints; it may be nil.
func RegisterRoutes(r chi.Router, handlers Handlers, limit func(http.Handler) http.Handler, logger *slog.Logger) {
	h := &Handler{h: handlers, logger: logger}
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	r.Route("/api/account", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Post("/register", h.handleRegister)
			r.Post("/login", h.handleLogin)
			r.Post("/google-auth", h.handleGoogleAuth)
			r.Post("/send-reset-password-link", h.handleSendResetLink)
			r.Post("/reset-password", h.handleResetPassword)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Get("/me", h.handleMe)
			r.Put("/update-profile", h.handleUpdateProfile)
			r.Put("/change-password", h.handleChangePassword)
		})
	})

	r.Route("/admin/users", func(r chi.Router) {
		r.Use(auth.RequireRole(types.RoleAdmin))
		r.Get("/", h.handleListUsers)
		r.Get("/export", h.handleExportUsers)
		r.Get("/statistics", h.handleStatistics)
		r.Get("/statistics/export", h.handleExportStatistics)
		r.Post("/bulk-role", h.handleBulkChangeRole)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetUser)
			r.Put("/", h.handleUpdateUser)
			r.Delete("/", h.handleDeleteUser)
			r.Put("/role", h.handleChangeRole)
			r.Post("/suspend", h.handleSuspend)
			r.Post("/reactivate", h.handleReactivate)
			r.Post("/lock", h.handleLock)
			r.Post("/unlock", h.handleUnlock)
			r.Post("/reset-password", h.handleAdminResetPassword)
		})
	})
}

// Request DTOs

type registerRequest struct {
	FullName        string `json:"fullName" validate:"required,min=3,max=100"`
	UserName        string `json:"userName" validate:"required,min=3,max=256"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"omitempty,oneof=Client Trainer client trainer"`
}

type loginRequest struct {
	EmailOrUserName string `json:"emailOrUserName" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

type googleAuthRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type updateProfileRequest struct {
	UserName        string `json:"userName" validate:"required,min=3,max=256"`
	FullName        string `json:"fullName" validate:"required,min=3,max=100"`
	Email           string `json:"email" validate:"required,email"`
	ProfilePhotoURL string `json:"profilePhotoUrl" validate:"omitempty,url"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmNewPassword" validate:"required,eqfield=NewPassword"`
}

type sendResetLinkRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type adminUpdateUserRequest struct {
	FullName   string `json:"fullName" validate:"required,min=3,max=100"`
	Email      string `json:"email" validate:"required,email"`
	UserName   string `json:"userName" validate:"required,min=3,max=256"`
	IsVerified *bool  `json:"isVerified"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type bulkChangeRoleRequest struct {
	UserIDs []string `json:"userIds" validate:"required,min=1,dive,uuid"`
	Role    string   `json:"role" validate:"required"`
}

// Account handlers

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.h.Register.Handle(r.Context(), commands.RegisterCommand{
		FullName: req.FullName,
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.h.Login.Handle(r.Context(), commands.LoginCommand{
		EmailOrUserName: req.EmailOrUserName,
		Password:        req.Password,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleGoogleAuth(w http.ResponseWriter, r *http.Request) {
	var req googleAuthRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.h.GoogleAuth.Handle(r.Context(), commands.GoogleAuthCommand{IDToken: req.IDToken})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	user, err := h.h.GetUser.Handle(r.Context(), p.UserID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req updateProfileRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	err = h.h.UpdateProfile.Handle(r.Context(), commands.UpdateProfileCommand{
		UserID:          p.UserID,
		UserName:        req.UserName,
		FullName:        req.FullName,
		Email:           req.Email,
		ProfilePhotoURL: req.ProfilePhotoURL,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	p, err := sharedauth.Require(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req changePasswordRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	err = h.h.ChangePassword.Handle(r.Context(), commands.ChangePasswordCommand{
		UserID:          p.UserID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleSendResetLink(w http.ResponseWriter, r *http.Request) {
	var req sendResetLinkRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	sent, err := h.h.SendResetLink.Handle(r.Context(), commands.SendResetLinkCommand{Email: req.Email})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sent)
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	err := h.h.ResetPassword.Handle(r.Context(), commands.ResetPasswordCommand{
		Email:       req.Email,
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

// Admin handlers

func listQuery(r *http.Request) (queries.ListUsersQuery, error) {
	q := queries.ListUsersQuery{
		Search: r.URL.Query().Get("search"),
		Page:   httpx.PageFromQuery(r),
	}
	if raw := r.URL.Query().Get("role"); raw != "" {
		role, err := types.ParseRole(raw)
		if err != nil {
			return q, err
		}
		q.Role = &role
	}
	deleted, err := httpx.QueryBool(r, "includeDeleted")
	if err != nil {
		return q, err
	}
	q.IncludeDeleted = deleted != nil && *deleted
	return q, nil
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	query, err := listQuery(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	result, err := h.h.ListUsers.Handle(r.Context(), query)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleExportUsers(w http.ResponseWriter, r *http.Request) {
	format, err := httpx.FormatFromQuery(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	query, err := listQuery(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	table, err := h.h.ExportUsers.Handle(r.Context(), query)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := httpx.WriteExport(w, format, "users", table); err != nil {
		h.handleError(w, r, err)
	}
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.h.Statistics.Handle(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleExportStatistics(w http.ResponseWriter, r *http.Request) {
	format, err := httpx.FormatFromQuery(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	stats, err := h.h.Statistics.Handle(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := httpx.WriteExport(w, format, "user_statistics", stats.Table()); err != nil {
		h.handleError(w, r, err)
	}
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID[types.UserKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	user, err := h.h.GetUser.Handle(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID[types.UserKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req adminUpdateUserRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	err = h.h.Moderation.Update(r.Context(), commands.AdminUpdateUserCommand{
		UserID:     id,
		FullName:   req.FullName,
		Email:      req.Email,
		UserName:   req.UserName,
		IsVerified: req.IsVerified,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID[types.UserKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req changeRoleRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	role, err := types.ParseRole(req.Role)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.h.Moderation.ChangeRole(r.Context(), id, role); err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleBulkChangeRole(w http.ResponseWriter, r *http.Request) {
	var req bulkChangeRoleRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	ids, err := types.ParseIDs[types.UserKind](req.UserIDs)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	role, err := types.ParseRole(req.Role)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	n, err := h.h.Moderation.BulkChangeRole(r.Context(), ids, role)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int{"updated": n})
}

func (h *Handler) moderate(w http.ResponseWriter, r *http.Request, fn func(r *http.Request, id types.UserID) error) {
	id, err := httpx.PathID[types.UserKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := fn(r, id); err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleSuspend(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, func(r *http.Request, id types.UserID) error {
		return h.h.Moderation.Suspend(r.Context(), id)
	})
}

func (h *Handler) handleReactivate(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, func(r *http.Request, id types.UserID) error {
		return h.h.Moderation.Reactivate(r.Context(), id)
	})
}

func (h *Handler) handleLock(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, func(r *http.Request, id types.UserID) error {
		minutes, err := httpx.QueryInt(r, "minutes", commands.DefaultLockMinutes)
		if err != nil {
			return err
		}
		return h.h.Moderation.Lock(r.Context(), id, minutes)
	})
}

func (h *Handler) handleUnlock(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, func(r *http.Request, id types.UserID) error {
		return h.h.Moderation.Unlock(r.Context(), id)
	})
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, func(r *http.Request, id types.UserID) error {
		return h.h.Moderation.Delete(r.Context(), id)
	})
}

func (h *Handler) handleAdminResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID[types.UserKind](r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	password, err := h.h.Moderation.ResetPassword(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"temporaryPassword": password})
}

// Helper functions

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, "")
	case errors.Is(err, domain.ErrEmailExists),
		errors.Is(err, domain.ErrUserNameExists),
		errors.Is(err, domain.ErrLastAdmin):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUserDeleted):
		httpx.WriteError(w, http.StatusGone, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid credentials.")
	case errors.Is(err, domain.ErrInvalidGoogleToken):
		httpx.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrLockedOut):
		httpx.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrGoogleSignInDisabled):
		httpx.WriteError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, domain.ErrEmailInvalid),
		errors.Is(err, domain.ErrEmailRequired),
		errors.Is(err, domain.ErrUserNameRequired),
		errors.Is(err, domain.ErrUserNameInvalid),
		errors.Is(err, domain.ErrFullNameRequired),
		errors.Is(err, domain.ErrFullNameLength),
		errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrPasswordMismatch),
		errors.Is(err, domain.ErrRoleNotAllowed),
		errors.Is(err, domain.ErrInvalidResetToken),
		errors.Is(err, domain.ErrGoogleEmailUnverified):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httpx.HandleCommonError(w, r, err, h.logger)
	}
}
