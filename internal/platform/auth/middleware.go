package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/AlagappanMk24/Gymunity/internal/platform/httpx"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// Authenticate attaches the principal of a verified token to the request.
// Requests without a valid token pass through anonymously; use RequireAuth
// or RequireRole on routes that need a caller.
func (s *TokenService) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err == nil && token != nil {
			if p, ok := s.principal(claims); ok {
				r = r.WithContext(sharedauth.WithPrincipal(r.Context(), p))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := sharedauth.Require(r.Context()); err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects anonymous requests with 401 and callers lacking every
// one of roles with 403.
func RequireRole(roles ...types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := sharedauth.RequireRole(r.Context(), roles...); err != nil {
				if errors.Is(err, sharedauth.ErrUnauthenticated) {
					httpx.WriteError(w, http.StatusUnauthorized, "")
					return
				}
				httpx.WriteError(w, http.StatusForbidden, "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
