package queries

import (
	"context"
	"errors"

	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/domain"
)

// Directory exposes trainer profiles to other modules.
type Directory struct {
	repo domain.ProfileRepository
}

func NewDirectory(repo domain.ProfileRepository) *Directory {
	return &Directory{repo: repo}
}

var _ api.TrainerDirectory = (*Directory)(nil)

func (d *Directory) Trainer(ctx context.Context, id types.TrainerID) (api.TrainerSummary, error) {
	return summarize(d.repo.FindByID(ctx, id))
}

func (d *Directory) TrainerByUser(ctx context.Context, userID types.UserID) (api.TrainerSummary, error) {
	return summarize(d.repo.FindByUserID(ctx, userID))
}

func summarize(p *domain.TrainerProfile, err error) (api.TrainerSummary, error) {
	if errors.Is(err, domain.ErrProfileNotFound) {
		return api.TrainerSummary{}, api.ErrNotFound
	}
	if err != nil {
		return api.TrainerSummary{}, err
	}
	return api.TrainerSummary{
		ID:          p.ID(),
		UserID:      p.UserID(),
		Handle:      p.Handle().String(),
		IsVerified:  p.IsVerified(),
		IsSuspended: p.IsSuspended(),
	}, nil
}
