// Package persistence implements repository interfaces using specific storage backends.
// This is the outermost layer - it implements ports defined in the domain layer.
package persistence

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// InMemoryRepository implements UserRepository using in-memory storage.
// Useful for testing and development. It stores snapshots, so callers never
// share aggregate instances.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[types.UserID]domain.UserState
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users: make(map[types.UserID]domain.UserState),
	}
}

var _ domain.UserRepository = (*InMemoryRepository)(nil)

func (r *InMemoryRepository) Save(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := user.State()
	for id, other := range r.users {
		if id == state.ID {
			continue
		}
		if other.Email == state.Email {
			return domain.ErrEmailExists
		}
		if other.UserName == state.UserName {
			return domain.ErrUserNameExists
		}
	}
	if existing, ok := r.users[state.ID]; ok {
		state.Logins = mergeLogins(existing.Logins, state.Logins)
	}
	r.users[state.ID] = state
	return nil
}

func (r *InMemoryRepository) FindByID(_ context.Context, id types.UserID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, exists := r.users[id]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	return domain.Reconstitute(state), nil
}

func (r *InMemoryRepository) FindByEmail(_ context.Context, email domain.Email) (*domain.User, error) {
	return r.findOne(func(s domain.UserState) bool { return s.Email == email.String() })
}

func (r *InMemoryRepository) FindByUserName(_ context.Context, userName domain.UserName) (*domain.User, error) {
	return r.findOne(func(s domain.UserState) bool { return s.UserName == userName.String() })
}

func (r *InMemoryRepository) FindByLogin(_ context.Context, login domain.ExternalLogin) (*domain.User, error) {
	return r.findOne(func(s domain.UserState) bool {
		for _, l := range s.Logins {
			if l == login {
				return true
			}
		}
		return false
	})
}

func (r *InMemoryRepository) findOne(match func(domain.UserState) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, state := range r.users {
		if !state.Deleted && match(state) {
			return domain.Reconstitute(state), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryRepository) FindByIDs(_ context.Context, ids []types.UserID) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		if state, ok := r.users[id]; ok {
			users = append(users, domain.Reconstitute(state))
		}
	}
	return users, nil
}

func (r *InMemoryRepository) EmailTaken(_ context.Context, email domain.Email, except types.UserID) (bool, error) {
	return r.taken(except, func(s domain.UserState) bool { return s.Email == email.String() }), nil
}

func (r *InMemoryRepository) UserNameTaken(_ context.Context, userName domain.UserName, except types.UserID) (bool, error) {
	return r.taken(except, func(s domain.UserState) bool { return s.UserName == userName.String() }), nil
}

func (r *InMemoryRepository) taken(except types.UserID, match func(domain.UserState) bool) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, state := range r.users {
		if id != except && match(state) {
			return true
		}
	}
	return false
}

func (r *InMemoryRepository) List(ctx context.Context, filter domain.UserFilter, page types.Page) ([]*domain.User, int, error) {
	all, err := r.ListAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	// Apply pagination
	total := len(all)
	offset := page.Offset()
	if offset >= total {
		return []*domain.User{}, total, nil
	}
	end := offset + page.Size
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *InMemoryRepository) ListAll(_ context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var states []domain.UserState
	for _, s := range r.users {
		if s.Deleted && !filter.IncludeDeleted {
			continue
		}
		if filter.Role != nil && s.Role != *filter.Role {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(s.FullName), search) &&
			!strings.Contains(s.Email, search) &&
			!strings.Contains(s.UserName, search) {
			continue
		}
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].CreatedAt.After(states[j].CreatedAt) })

	users := make([]*domain.User, len(states))
	for i, s := range states {
		users[i] = domain.Reconstitute(s)
	}
	return users, nil
}

func (r *InMemoryRepository) CountByRole(_ context.Context, role types.Role) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, s := range r.users {
		if !s.Deleted && s.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *InMemoryRepository) Statistics(_ context.Context, now time.Time) (domain.Statistics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	weekAgo := now.AddDate(0, 0, -7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var st domain.Statistics
	for _, s := range r.users {
		if s.Deleted {
			continue
		}
		st.Total++
		switch s.Role {
		case types.RoleClient:
			st.Clients++
		case types.RoleTrainer:
			st.Trainers++
		case types.RoleAdmin:
			st.Admins++
		}
		if s.LockoutEnd != nil && !s.LockoutEnd.Before(domain.SuspendedUntil) {
			st.Suspended++
		}
		if s.LastLoginAt != nil && !s.LastLoginAt.Before(weekAgo) {
			st.ActiveLastWeek++
		}
		if !s.CreatedAt.Before(monthStart) {
			st.NewThisMonth++
		}
	}
	return st, nil
}

func mergeLogins(existing, current []domain.ExternalLogin) []domain.ExternalLogin {
	out := append([]domain.ExternalLogin(nil), existing...)
	for _, l := range current {
		found := false
		for _, e := range out {
			if e == l {
				found = true
				break
			}
		}
		if !found {
			out = append(out, l)
		}
	}
	return out
}
