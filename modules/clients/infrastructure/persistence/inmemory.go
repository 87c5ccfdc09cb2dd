package persistence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/clients/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// Store keeps client data in memory for tests and local development.
type Store struct {
	mu       sync.RWMutex
	profiles map[types.UserID]domain.ProfileState
	stats    map[types.BodyStatID]domain.BodyStatState
	workouts map[types.WorkoutLogID]domain.WorkoutState
}

func NewStore() *Store {
	return &Store{
		profiles: make(map[types.UserID]domain.ProfileState),
		stats:    make(map[types.BodyStatID]domain.BodyStatState),
		workouts: make(map[types.WorkoutLogID]domain.WorkoutState),
	}
}

func (s *Store) Profiles() domain.ProfileRepository    { return inMemoryProfiles{s} }
func (s *Store) BodyStats() domain.BodyStatRepository  { return inMemoryBodyStats{s} }
func (s *Store) Workouts() domain.WorkoutLogRepository { return inMemoryWorkouts{s} }

func paginate[T any](items []T, page types.Page) []T {
	start := min(page.Offset(), len(items))
	end := min(start+page.Size, len(items))
	return items[start:end]
}

type inMemoryProfiles struct{ s *Store }

func (r inMemoryProfiles) Save(_ context.Context, p *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.profiles[p.UserID()] = p.State()
	return nil
}

func (r inMemoryProfiles) FindByUser(_ context.Context, userID types.UserID) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return domain.ReconstituteProfile(st), nil
}

func (r inMemoryProfiles) DeleteByUser(_ context.Context, userID types.UserID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.profiles, userID)
	return nil
}

type inMemoryBodyStats struct{ s *Store }

func (r inMemoryBodyStats) Save(_ context.Context, b *domain.BodyStatLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stats[b.ID()] = b.State()
	return nil
}

// newest returns userID's entries, newest first.
func (r inMemoryBodyStats) newest(userID types.UserID) []domain.BodyStatState {
	var found []domain.BodyStatState
	for _, st := range r.s.stats {
		if st.UserID == userID {
			found = append(found, st)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Details.LoggedAt.After(found[j].Details.LoggedAt) })
	return found
}

func (r inMemoryBodyStats) ListByUser(_ context.Context, userID types.UserID, page types.Page) ([]*domain.BodyStatLog, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	found := r.newest(userID)
	out := []*domain.BodyStatLog{}
	for _, st := range paginate(found, page) {
		out = append(out, domain.ReconstituteBodyStatLog(st))
	}
	return out, len(found), nil
}

func (r inMemoryBodyStats) LatestWeighed(_ context.Context, userID types.UserID) (*domain.BodyStatLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, st := range r.newest(userID) {
		if st.Details.WeightKg != nil {
			return domain.ReconstituteBodyStatLog(st), nil
		}
	}
	return nil, domain.ErrBodyStatNotFound
}

func (r inMemoryBodyStats) DeleteByUser(_ context.Context, userID types.UserID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for id, st := range r.s.stats {
		if st.UserID == userID {
			delete(r.s.stats, id)
			n++
		}
	}
	return n, nil
}

type inMemoryWorkouts struct{ s *Store }

func (r inMemoryWorkouts) Save(_ context.Context, w *domain.WorkoutLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.workouts[w.ID()] = w.State()
	return nil
}

func (r inMemoryWorkouts) FindByID(_ context.Context, id types.WorkoutLogID) (*domain.WorkoutLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.workouts[id]
	if !ok {
		return nil, domain.ErrWorkoutLogNotFound
	}
	return domain.ReconstituteWorkoutLog(st), nil
}

func (r inMemoryWorkouts) ListByUser(_ context.Context, userID types.UserID, page types.Page) ([]*domain.WorkoutLog, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var found []domain.WorkoutState
	for _, st := range r.s.workouts {
		if st.UserID == userID {
			found = append(found, st)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Details.CompletedAt.After(found[j].Details.CompletedAt) })
	out := []*domain.WorkoutLog{}
	for _, st := range paginate(found, page) {
		out = append(out, domain.ReconstituteWorkoutLog(st))
	}
	return out, len(found), nil
}

func (r inMemoryWorkouts) Stats(_ context.Context, userID types.UserID, since time.Time) (domain.WorkoutStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var stats domain.WorkoutStats
	for _, st := range r.s.workouts {
		if st.UserID != userID {
			continue
		}
		at := st.Details.CompletedAt
		stats.Total++
		stats.TotalMinutes += st.Details.DurationMinutes
		if !at.Before(since) {
			stats.Recent++
		}
		if stats.LastAt == nil || at.After(*stats.LastAt) {
			stats.LastAt = &at
		}
	}
	return stats, nil
}

func (r inMemoryWorkouts) Delete(_ context.Context, id types.WorkoutLogID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.workouts[id]; !ok {
		return domain.ErrWorkoutLogNotFound
	}
	delete(r.s.workouts, id)
	return nil
}

func (r inMemoryWorkouts) DeleteByUser(_ context.Context, userID types.UserID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for id, st := range r.s.workouts {
		if st.UserID == userID {
			delete(r.s.workouts, id)
			n++
		}
	}
	return n, nil
}
