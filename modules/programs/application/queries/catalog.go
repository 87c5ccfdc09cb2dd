package queries

import (
	"context"

	"github.com/AlagappanMk24/Gymunity/modules/programs/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// Catalog implements api.ProgramCatalog for other modules.
type Catalog struct {
	repo domain.ProgramRepository
}

func NewCatalog(repo domain.ProgramRepository) *Catalog {
	return &Catalog{repo: repo}
}

var _ api.ProgramCatalog = (*Catalog)(nil)

func (c *Catalog) ProgramsOwnedBy(ctx context.Context, trainerID types.TrainerID, ids []types.ProgramID) (bool, error) {
	unique := make(map[types.ProgramID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	if len(unique) == 0 {
		return true, nil
	}
	deduped := make([]types.ProgramID, 0, len(unique))
	for id := range unique {
		deduped = append(deduped, id)
	}
	n, err := c.repo.CountOwned(ctx, trainerID, deduped)
	if err != nil {
		return false, err
	}
	return n == len(deduped), nil
}

func (c *Catalog) DayExists(ctx context.Context, id types.ProgramDayID) (bool, error) {
	return c.repo.DayExists(ctx, id)
}
