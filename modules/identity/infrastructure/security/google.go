package security

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"

	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
)

// GoogleVerifier validates Google ID tokens against the OAuth client id.
type GoogleVerifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}
}

var _ domain.GoogleVerifier = (*GoogleVerifier)(nil)

func (v *GoogleVerifier) Verify(ctx context.Context, token string) (domain.GoogleIdentity, error) {
	if v.clientID == "" {
		return domain.GoogleIdentity{}, domain.ErrGoogleSignInDisabled
	}
	payload, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return domain.GoogleIdentity{}, fmt.Errorf("%w: %v", domain.ErrInvalidGoogleToken, err)
	}
	return domain.GoogleIdentity{
		Subject:       payload.Subject,
		Email:         claimString(payload.Claims, "email"),
		EmailVerified: claimBool(payload.Claims, "email_verified"),
		GivenName:     claimString(payload.Claims, "given_name"),
		FamilyName:    claimString(payload.Claims, "family_name"),
		Picture:       claimString(payload.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}

// claimBool accepts both JSON booleans and the "true" strings some
// issuers emit.
func claimBool(claims map[string]interface{}, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}
