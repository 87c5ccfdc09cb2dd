package domain

import (
	"context"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// PackageFilter narrows package listings. Deleted packages never match.
type PackageFilter struct {
	TrainerID *types.TrainerID
	IsActive  *bool
	Search    string
}

type PackageRepository interface {
	Save(ctx context.Context, p *Package) error
	// FindByID returns ErrPackageNotFound for deleted packages.
	FindByID(ctx context.Context, id types.PackageID) (*Package, error)
	List(ctx context.Context, filter PackageFilter, page types.Page) ([]*Package, int, error)
}
