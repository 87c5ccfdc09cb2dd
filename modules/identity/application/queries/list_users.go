package queries

import (
	"context"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// ListUsersQuery represents an admin search over accounts.
type ListUsersQuery struct {
	Search         string
	Role           *types.Role
	IncludeDeleted bool
	Page           types.Page
}

func (q ListUsersQuery) filter() domain.UserFilter {
	return domain.UserFilter{Search: q.Search, Role: q.Role, IncludeDeleted: q.IncludeDeleted}
}

// ListUsersHandler handles ListUsersQuery.
type ListUsersHandler struct {
	repo domain.UserRepository
}

func NewListUsersHandler(repo domain.UserRepository) *ListUsersHandler {
	return &ListUsersHandler{repo: repo}
}

// Handle executes the list users query.
func (h *ListUsersHandler) Handle(ctx context.Context, query ListUsersQuery) (types.Paged[*UserDTO], error) {
	users, total, err := h.repo.List(ctx, query.filter(), query.Page)
	if err != nil {
		return types.Paged[*UserDTO]{}, err
	}

	now := time.Now()
	dtos := make([]*UserDTO, len(users))
	for i, user := range users {
		dtos[i] = toUserDTO(user, now)
	}
	return types.NewPaged(dtos, total, query.Page), nil
}
