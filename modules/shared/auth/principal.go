// Package auth carries the authenticated caller through request contexts.
package auth

import (
	"context"
	"errors"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

var (
	// ErrUnauthenticated means no principal is attached to the context.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the principal lacks the required role or ownership.
	ErrForbidden = errors.New("operation not permitted")
)

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID   types.UserID
	Role     types.Role
	Email    string
	UserName string
}

func (p Principal) IsAdmin() bool   { return p.Role == types.RoleAdmin }
func (p Principal) IsTrainer() bool { return p.Role == types.RoleTrainer }
func (p Principal) IsClient() bool  { return p.Role == types.RoleClient }

type principalKey struct{}

// WithPrincipal attaches p to ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal attached to ctx.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Require returns the principal or ErrUnauthenticated.
func Require(ctx context.Context) (Principal, error) {
	p, ok := FromContext(ctx)
	if !ok || p.UserID.IsZero() {
		return Principal{}, ErrUnauthenticated
	}
	return p, nil
}

// RequireRole returns the principal when it holds one of roles.
func RequireRole(ctx context.Context, roles ...types.Role) (Principal, error) {
	p, err := Require(ctx)
	if err != nil {
		return Principal{}, err
	}
	for _, r := range roles {
		if p.Role == r {
			return p, nil
		}
	}
	return Principal{}, ErrForbidden
}
