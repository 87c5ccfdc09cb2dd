package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlagappanMk24/Gymunity/internal/platform/auth"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func newService() *auth.TokenService {
	return auth.NewTokenService(auth.Config{
		SigningKey: "test-signing-key-that-is-long-enough",
		Issuer:     "gymunity",
		Audience:   "gymunity-clients",
		Lifetime:   time.Hour,
	})
}

func newRouter(svc *auth.TokenService) http.Handler {
	r := chi.NewRouter()
	r.Use(svc.Verifier(), svc.Authenticate)
	r.Get("/public", func(w http.ResponseWriter, r *http.Request) {
		_, ok := sharedauth.FromContext(r.Context())
		if ok {
			w.Write([]byte("authenticated"))
			return
		}
		w.Write([]byte("anonymous"))
	})
	r.With(auth.RequireRole(types.RoleAdmin)).Get("/admin", func(w http.ResponseWriter, r *http.Request) {
		p, _ := sharedauth.FromContext(r.Context())
		w.Write([]byte(p.UserName))
	})
	return r
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc := newService()
	userID := types.NewUserID()

	token, expiresAt, err := svc.Issue(auth.Claims{UserID: userID, Email: "admin@gymunity.com", UserName: "admin", Role: types.RoleAdmin})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}

func TestRequireRole_Forbidden(t *testing.T) {
	svc := newService()
	token, _, err := svc.Issue(auth.Claims{UserID: types.NewUserID(), UserName: "client", Role: types.RoleClient})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin?access_token="+token, nil)
	w := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRole_Anonymous(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(newService()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_ForeignTokenIsAnonymous(t *testing.T) {
	other := auth.NewTokenService(auth.Config{SigningKey: "another-key-entirely-different-123", Issuer: "gymunity", Audience: "gymunity-clients"})
	token, _, err := other.Issue(auth.Claims{UserID: types.NewUserID(), Role: types.RoleAdmin})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	newRouter(newService()).ServeHTTP(w, req)

	assert.Equal(t, "anonymous", w.Body.String())
}

func TestAuthenticate_WrongAudienceIsAnonymous(t *testing.T) {
	other := auth.NewTokenService(auth.Config{SigningKey: "test-signing-key-that-is-long-enough", Issuer: "gymunity", Audience: "someone-else"})
	token, _, err := other.Issue(auth.Claims{UserID: types.NewUserID(), Role: types.RoleAdmin})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	newRouter(newService()).ServeHTTP(w, req)

	assert.Equal(t, "anonymous", w.Body.String())
}
