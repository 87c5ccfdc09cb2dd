package domain

import (
	"context"
	"time"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns ErrInvalidCredentials when password does not match hash.
	Compare(hash, password string) error
}

// AccessToken is a signed bearer token.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenIssuer signs access tokens for users.
type TokenIssuer interface {
	Issue(user *User) (AccessToken, error)
}

// GoogleIdentity is the verified content of a Google ID token.
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
	Picture       string
}

// GoogleVerifier validates Google ID tokens for this application's client id.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (GoogleIdentity, error)
}

// ResetTokenStore keeps single-use password reset tokens.
type ResetTokenStore interface {
	Save(ctx context.Context, userID, token string, ttl time.Duration) error
	// Consume deletes the token and reports whether it matched.
	Consume(ctx context.Context, userID, token string) (bool, error)
}
