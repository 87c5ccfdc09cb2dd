// Package api declares the synchronous read ports modules expose to each other.
// Commands between modules travel as events; these interfaces cover the
// lookups a use case needs before it can decide anything.
package api

import (
	"context"
	"errors"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// ErrNotFound is returned by every port when the requested entity is absent.
var ErrNotFound = errors.New("not found")

// UserContact is the identity module's public view of an account.
type UserContact struct {
	ID       types.UserID
	Email    string
	FullName string
	UserName string
	Role     types.Role
}

// UserDirectory is implemented by the identity module.
type UserDirectory interface {
	Contact(ctx context.Context, id types.UserID) (UserContact, error)
	Admins(ctx context.Context) ([]UserContact, error)
}

// TrainerSummary is the trainers module's public view of a profile.
type TrainerSummary struct {
	ID          types.TrainerID
	UserID      types.UserID
	Handle      string
	IsVerified  bool
	IsSuspended bool
}

// TrainerDirectory is implemented by the trainers module.
type TrainerDirectory interface {
	Trainer(ctx context.Context, id types.TrainerID) (TrainerSummary, error)
	TrainerByUser(ctx context.Context, userID types.UserID) (TrainerSummary, error)
}

// ProgramCatalog is implemented by the programs module.
type ProgramCatalog interface {
	// ProgramsOwnedBy reports whether every id exists and belongs to trainerID.
	ProgramsOwnedBy(ctx context.Context, trainerID types.TrainerID, ids []types.ProgramID) (bool, error)
	DayExists(ctx context.Context, id types.ProgramDayID) (bool, error)
}

// PackageSummary is the packages module's public view of a package.
type PackageSummary struct {
	ID            types.PackageID
	TrainerID     types.TrainerID
	TrainerUserID types.UserID
	Name          string
	PriceMonthly  types.Money
	PriceYearly   *types.Money
	IsActive      bool
	FeaturesJSON  string
}

// PackageCatalog is implemented by the packages module.
type PackageCatalog interface {
	Package(ctx context.Context, id types.PackageID) (PackageSummary, error)
}

// SubscriptionLedger is implemented by the subscriptions module.
type SubscriptionLedger interface {
	// ActiveSubscription returns the package of the client's active
	// subscription with the trainer, if any.
	ActiveSubscription(ctx context.Context, clientID types.UserID, trainerID types.TrainerID) (types.PackageID, bool, error)
}
