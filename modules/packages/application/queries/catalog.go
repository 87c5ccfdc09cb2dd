package queries

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlagappanMk24/Gymunity/modules/packages/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// Catalog implements api.PackageCatalog.
type Catalog struct {
	repo     domain.PackageRepository
	trainers api.TrainerDirectory
}

func NewCatalog(repo domain.PackageRepository, trainers api.TrainerDirectory) *Catalog {
	return &Catalog{repo: repo, trainers: trainers}
}

var _ api.PackageCatalog = (*Catalog)(nil)

func (c *Catalog) Package(ctx context.Context, id types.PackageID) (api.PackageSummary, error) {
	p, err := c.repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrPackageNotFound) {
		return api.PackageSummary{}, api.ErrNotFound
	}
	if err != nil {
		return api.PackageSummary{}, err
	}
	trainer, err := c.trainers.Trainer(ctx, p.TrainerID())
	if err != nil {
		return api.PackageSummary{}, fmt.Errorf("resolving trainer of package %s: %w", id, err)
	}
	d := p.Details()
	return api.PackageSummary{
		ID:            p.ID(),
		TrainerID:     p.TrainerID(),
		TrainerUserID: trainer.UserID,
		Name:          d.Name,
		PriceMonthly:  d.PriceMonthly,
		PriceYearly:   d.PriceYearly,
		IsActive:      p.IsActive(),
		FeaturesJSON:  string(d.Features),
	}, nil
}
