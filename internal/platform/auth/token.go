// Package auth issues access tokens and turns verified tokens into request
// principals.
package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"

	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// Config holds token signing configuration.
type Config struct {
	SigningKey string
	Issuer     string
	Audience   string
	Lifetime   time.Duration
}

// TokenService signs and verifies HS256 access tokens.
type TokenService struct {
	ja  *jwtauth.JWTAuth
	cfg Config
	now func() time.Time
}

func NewTokenService(cfg Config) *TokenService {
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = 7 * 24 * time.Hour
	}
	return &TokenService{
		ja:  jwtauth.New("HS256", []byte(cfg.SigningKey), nil),
		cfg: cfg,
		now: time.Now,
	}
}

// Claims is the subject of a token.
type Claims struct {
	UserID   types.UserID
	Email    string
	UserName string
	FullName string
	Role     types.Role
}

// Issue signs a token for c and returns it with its expiry.
func (s *TokenService) Issue(c Claims) (string, time.Time, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.cfg.Lifetime)
	claims := map[string]interface{}{
		"sub":      c.UserID.String(),
		"email":    c.Email,
		"name":     c.UserName,
		"fullName": c.FullName,
		"role":     c.Role.String(),
	}
	if s.cfg.Issuer != "" {
		claims["iss"] = s.cfg.Issuer
	}
	if s.cfg.Audience != "" {
		claims["aud"] = s.cfg.Audience
	}
	jwtauth.SetIssuedAt(claims, now)
	jwtauth.SetExpiry(claims, expiresAt)

	_, token, err := s.ja.Encode(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return token, expiresAt, nil
}

// Verifier finds and verifies a token in the Authorization header, the
// "jwt" cookie or the access_token query parameter (used by websocket
// clients that cannot set headers).
func (s *TokenService) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verify(s.ja, jwtauth.TokenFromHeader, jwtauth.TokenFromCookie, tokenFromQuery)
}

func tokenFromQuery(r *http.Request) string {
	return r.URL.Query().Get("access_token")
}

// principal converts verified claims, checking issuer and audience.
func (s *TokenService) principal(claims map[string]interface{}) (sharedauth.Principal, bool) {
	if s.cfg.Issuer != "" && stringClaim(claims, "iss") != s.cfg.Issuer {
		return sharedauth.Principal{}, false
	}
	if s.cfg.Audience != "" && !hasAudience(claims["aud"], s.cfg.Audience) {
		return sharedauth.Principal{}, false
	}
	userID, err := types.ParseUserID(stringClaim(claims, "sub"))
	if err != nil {
		return sharedauth.Principal{}, false
	}
	role, err := types.ParseRole(stringClaim(claims, "role"))
	if err != nil {
		return sharedauth.Principal{}, false
	}
	return sharedauth.Principal{
		UserID:   userID,
		Role:     role,
		Email:    stringClaim(claims, "email"),
		UserName: stringClaim(claims, "name"),
	}, true
}

func stringClaim(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}

func hasAudience(raw interface{}, want string) bool {
	switch aud := raw.(type) {
	case string:
		return aud == want
	case []string:
		for _, a := range aud {
			if a == want {
				return true
			}
		}
	case []interface{}:
		for _, a := range aud {
			if s, ok := a.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}
