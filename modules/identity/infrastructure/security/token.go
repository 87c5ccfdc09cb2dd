package security

import (
	"github.com/AlagappanMk24/Gymunity/internal/platform/auth"
	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
)

// JWTIssuer signs access tokens with the platform token service.
type JWTIssuer struct {
	tokens *auth.TokenService
}

func NewJWTIssuer(tokens *auth.TokenService) *JWTIssuer {
	return &JWTIssuer{tokens: tokens}
}

var _ domain.TokenIssuer = (*JWTIssuer)(nil)

func (i *JWTIssuer) Issue(u *domain.User) (domain.AccessToken, error) {
	token, expiresAt, err := i.tokens.Issue(auth.Claims{
		UserID:   u.ID(),
		Email:    u.Email().String(),
		UserName: u.UserName().String(),
		FullName: u.FullName().String(),
		Role:     u.Role(),
	})
	if err != nil {
		return domain.AccessToken{}, err
	}
	return domain.AccessToken{Value: token, ExpiresAt: expiresAt}, nil
}
