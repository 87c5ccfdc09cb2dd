// Package httpx holds the JSON response, error and request decoding helpers
// every module's HTTP adapter uses.
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/AlagappanMk24/Gymunity/internal/platform/export"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors,omitempty"`
}

// DefaultMessage returns the stock message for status.
func DefaultMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "A bad request, you have made"
	case http.StatusUnauthorized:
		return "Authorized, you are not"
	case http.StatusForbidden:
		return "Forbidden, this resource is"
	case http.StatusNotFound:
		return "Resource was not found"
	case http.StatusInternalServerError:
		return "Internal server error occurred"
	default:
		return http.StatusText(status)
	}
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an ErrorResponse. An empty message uses DefaultMessage.
func WriteError(w http.ResponseWriter, status int, message string) {
	if message == "" {
		message = DefaultMessage(status)
	}
	WriteJSON(w, status, ErrorResponse{StatusCode: status, Message: message})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// HandleCommonError maps errors shared by every module. Anything unknown is
// logged and reported as 500 without leaking details.
func HandleCommonError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    DefaultMessage(http.StatusBadRequest),
			Errors:     verr.Errors,
		})
	case errors.Is(err, ErrMalformedBody),
		errors.Is(err, ErrInvalidQuery),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrInvalidRole),
		errors.Is(err, types.ErrCurrencyInvalid),
		errors.Is(err, types.ErrCurrencyRequired),
		errors.Is(err, types.ErrNegativeAmount):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrUnauthenticated):
		WriteError(w, http.StatusUnauthorized, "")
	case errors.Is(err, auth.ErrForbidden):
		WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, api.ErrNotFound):
		WriteError(w, http.StatusNotFound, "")
	default:
		if logger == nil {
			logger = slog.Default()
		}
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		WriteError(w, http.StatusInternalServerError, "")
	}
}
