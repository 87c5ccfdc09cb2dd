package httpx_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlagappanMk24/Gymunity/internal/platform/httpx"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/auth"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=Client Trainer"`
}

func TestDecode_ValidationErrorsUseJSONNames(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","password":"123","role":"Admin"}`))

	var req registerRequest
	err := httpx.Decode(r, &req)

	var verr *httpx.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{
		"email must be a valid email address",
		"password must be at least 6",
		"role must be one of [Client Trainer]",
	}, verr.Errors)
}

func TestDecode_MalformedBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))

	var req registerRequest
	err := httpx.Decode(r, &req)

	assert.ErrorIs(t, err, httpx.ErrMalformedBody)
}

func TestHandleCommonError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"unauthenticated", auth.ErrUnauthenticated, http.StatusUnauthorized, "Authorized, you are not"},
		{"forbidden", auth.ErrForbidden, http.StatusForbidden, "operation not permitted"},
		{"not found", api.ErrNotFound, http.StatusNotFound, "Resource was not found"},
		{"unknown", errors.New("db down"), http.StatusInternalServerError, "Internal server error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			httpx.HandleCommonError(w, httptest.NewRequest(http.MethodGet, "/", nil), tt.err, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body httpx.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.wantStatus, body.StatusCode)
			assert.Equal(t, tt.wantMsg, body.Message)
		})
	}
}

func TestQueryHelpers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=2&pageSize=500&isVerified=true&from=2024-01-31&bad=x", nil)

	page := httpx.PageFromQuery(r)
	assert.Equal(t, 2, page.Number)
	assert.Equal(t, 100, page.Size)

	verified, err := httpx.QueryBool(r, "isVerified")
	require.NoError(t, err)
	require.NotNil(t, verified)
	assert.True(t, *verified)

	from, err := httpx.QueryTime(r, "from")
	require.NoError(t, err)
	assert.Equal(t, 31, from.Day())

	_, err = httpx.QueryBool(r, "bad")
	assert.ErrorIs(t, err, httpx.ErrInvalidQuery)
}
