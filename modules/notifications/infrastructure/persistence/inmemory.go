package persistence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/notifications/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[types.NotificationID]domain.State
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: make(map[types.NotificationID]domain.State)}
}

var _ domain.Repository = (*InMemoryRepository)(nil)

func (r *InMemoryRepository) Save(ctx context.Context, n *domain.Notification) error {
	return r.SaveAll(ctx, []*domain.Notification{n})
}

func (r *InMemoryRepository) SaveAll(_ context.Context, ns []*domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range ns {
		r.items[n.ID()] = n.State()
	}
	return nil
}

func (r *InMemoryRepository) FindByID(_ context.Context, id types.NotificationID) (*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotificationNotFound
	}
	return domain.Reconstitute(s), nil
}

func matches(s domain.State, f domain.Filter) bool {
	return s.UserID == f.UserID && (!f.UnreadOnly || !s.IsRead)
}

func (r *InMemoryRepository) List(_ context.Context, f domain.Filter, page types.Page) ([]*domain.Notification, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found []domain.State
	for _, s := range r.items {
		if matches(s, f) {
			found = append(found, s)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.After(found[j].CreatedAt) })
	start := min(page.Offset(), len(found))
	end := min(start+page.Size, len(found))
	out := make([]*domain.Notification, 0, end-start)
	for _, s := range found[start:end] {
		out = append(out, domain.Reconstitute(s))
	}
	return out, len(found), nil
}

func (r *InMemoryRepository) UnreadCount(_ context.Context, userID types.UserID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.items {
		if matches(s, domain.Filter{UserID: userID, UnreadOnly: true}) {
			n++
		}
	}
	return n, nil
}

func (r *InMemoryRepository) MarkAllRead(_ context.Context, userID types.UserID, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.items {
		if matches(s, domain.Filter{UserID: userID, UnreadOnly: true}) {
			s.IsRead = true
			s.ReadAt = &at
			r.items[id] = s
			n++
		}
	}
	return n, nil
}
