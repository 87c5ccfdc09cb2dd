package security

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"

	"github.com/AlagappanMk24/Gymunity/internal/platform/auth"
	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("Passw0rd!")
	require.NoError(t, err)

	assert.NoError(t, h.Compare(hash, "Passw0rd!"))
	assert.ErrorIs(t, h.Compare(hash, "wrong"), domain.ErrInvalidCredentials)
}

func TestMemoryResetTokenStore(t *testing.T) {
	store := NewMemoryResetTokenStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u1", "tok", time.Hour))

	ok, err := store.Consume(ctx, "u1", "bad")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Consume(ctx, "u1", "tok")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = store.Consume(ctx, "u1", "tok")
	assert.False(t, ok, "tokens are single-use")
}

func TestMemoryResetTokenStore_Expiry(t *testing.T) {
	store := NewMemoryResetTokenStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u1", "tok", time.Minute))
	now = now.Add(2 * time.Minute)

	ok, err := store.Consume(ctx, "u1", "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGoogleVerifier(t *testing.T) {
	v := NewGoogleVerifier("client-id")
	v.validate = func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
		if token != "good" {
			return nil, errors.New("signature mismatch")
		}
		assert.Equal(t, "client-id", audience)
		return &idtoken.Payload{
			Subject: "sub-1",
			Claims: map[string]interface{}{
				"email":          "g@example.com",
				"email_verified": "true",
				"given_name":     "Gee",
				"family_name":    "User",
			},
		}, nil
	}

	id, err := v.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, domain.GoogleIdentity{
		Subject: "sub-1", Email: "g@example.com", EmailVerified: true, GivenName: "Gee", FamilyName: "User",
	}, id)

	_, err = v.Verify(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidGoogleToken)

	_, err = NewGoogleVerifier("").Verify(context.Background(), "good")
	assert.ErrorIs(t, err, domain.ErrGoogleSignInDisabled)
}

func TestJWTIssuer(t *testing.T) {
	svc := auth.NewTokenService(auth.Config{
		SigningKey: "0123456789abcdef0123456789abcdef",
		Issuer:     "gymunity",
		Audience:   "gymunity-clients",
		Lifetime:   time.Hour,
	})
	email, _ := domain.NewEmail("a@example.com")
	name, _ := domain.NewUserName("alpha")
	full, _ := domain.NewFullName("Alpha User")
	user, err := domain.NewUser(name, email, full, types.RoleTrainer, "hash")
	require.NoError(t, err)

	token, err := NewJWTIssuer(svc).Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Value)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, time.Minute)
}
