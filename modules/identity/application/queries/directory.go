package queries

import (
	"context"
	"errors"

	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// Directory exposes accounts to other modules.
type Directory struct {
	repo domain.UserRepository
}

func NewDirectory(repo domain.UserRepository) *Directory {
	return &Directory{repo: repo}
}

var _ api.UserDirectory = (*Directory)(nil)

// Contact returns api.ErrNotFound for unknown and deleted users.
func (d *Directory) Contact(ctx context.Context, id types.UserID) (api.UserContact, error) {
	user, err := d.repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		return api.UserContact{}, api.ErrNotFound
	}
	if err != nil {
		return api.UserContact{}, err
	}
	if user.IsDeleted() {
		return api.UserContact{}, api.ErrNotFound
	}
	return toContact(user), nil
}

func (d *Directory) Admins(ctx context.Context) ([]api.UserContact, error) {
	role := types.RoleAdmin
	users, err := d.repo.ListAll(ctx, domain.UserFilter{Role: &role})
	if err != nil {
		return nil, err
	}
	contacts := make([]api.UserContact, len(users))
	for i, u := range users {
		contacts[i] = toContact(u)
	}
	return contacts, nil
}

func toContact(u *domain.User) api.UserContact {
	return api.UserContact{
		ID:       u.ID(),
		Email:    u.Email().String(),
		FullName: u.FullName().String(),
		UserName: u.UserName().String(),
		Role:     u.Role(),
	}
}
