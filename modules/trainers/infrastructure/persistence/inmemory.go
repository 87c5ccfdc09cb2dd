package persistence

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/domain"
)

// InMemoryStore implements the three trainers repositories in memory for
// tests and local development.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[types.TrainerID]domain.ProfileState
	reviews  map[types.ReviewID]domain.ReviewState
	links    map[linkKey]domain.ClientLink
}

type linkKey struct {
	trainer types.TrainerID
	client  types.UserID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		profiles: make(map[types.TrainerID]domain.ProfileState),
		reviews:  make(map[types.ReviewID]domain.ReviewState),
		links:    make(map[linkKey]domain.ClientLink),
	}
}

// Profiles returns the store as a ProfileRepository.
func (s *InMemoryStore) Profiles() domain.ProfileRepository { return (*memProfiles)(s) }

// Reviews returns the store as a ReviewRepository.
func (s *InMemoryStore) Reviews() domain.ReviewRepository { return (*memReviews)(s) }

// Links returns the store as a ClientLinkRepository.
func (s *InMemoryStore) Links() domain.ClientLinkRepository { return (*memLinks)(s) }

type memProfiles InMemoryStore

func (r *memProfiles) Save(_ context.Context, p *domain.TrainerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := p.State()
	for id, other := range r.profiles {
		if id == st.ID {
			continue
		}
		if other.UserID == st.UserID {
			return domain.ErrProfileExists
		}
		if other.Handle == st.Handle {
			return domain.ErrHandleTaken
		}
	}
	r.profiles[st.ID] = st
	return nil
}

func (r *memProfiles) find(match func(domain.ProfileState) bool) (*domain.TrainerProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, st := range r.profiles {
		if match(st) {
			return domain.ReconstituteProfile(st), nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (r *memProfiles) FindByID(_ context.Context, id types.TrainerID) (*domain.TrainerProfile, error) {
	return r.find(func(s domain.ProfileState) bool { return s.ID == id })
}

func (r *memProfiles) FindByUserID(_ context.Context, userID types.UserID) (*domain.TrainerProfile, error) {
	return r.find(func(s domain.ProfileState) bool { return s.UserID == userID })
}

func (r *memProfiles) FindByHandle(_ context.Context, handle domain.Handle) (*domain.TrainerProfile, error) {
	return r.find(func(s domain.ProfileState) bool { return s.Handle == handle.String() })
}

func (r *memProfiles) HandleTaken(_ context.Context, handle domain.Handle, except types.TrainerID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, st := range r.profiles {
		if id != except && st.Handle == handle.String() {
			return true, nil
		}
	}
	return false, nil
}

func matchesProfile(s domain.ProfileState, f domain.ProfileFilter) bool {
	if f.Listed && (!s.IsVerified || s.IsSuspended) {
		return false
	}
	if f.IsVerified != nil && s.IsVerified != *f.IsVerified {
		return false
	}
	if f.IsSuspended != nil && s.IsSuspended != *f.IsSuspended {
		return false
	}
	if s.YearsExperience < f.MinExperience {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		return strings.Contains(s.Handle, q) || strings.Contains(strings.ToLower(s.Bio), q)
	}
	return true
}

func (r *memProfiles) List(_ context.Context, filter domain.ProfileFilter, page types.Page) ([]*domain.TrainerProfile, int, error) {
	r.mu.RLock()
	var matched []domain.ProfileState
	for _, st := range r.profiles {
		if matchesProfile(st, filter) {
			matched = append(matched, st)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if filter.Listed && matched[i].RatingAverage != matched[j].RatingAverage {
			return matched[i].RatingAverage > matched[j].RatingAverage
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	window := paginate(matched, page)
	out := make([]*domain.TrainerProfile, len(window))
	for i, st := range window {
		out[i] = domain.ReconstituteProfile(st)
	}
	return out, len(matched), nil
}

func (r *memProfiles) Counts(_ context.Context) (domain.ProfileCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var c domain.ProfileCounts
	for _, st := range r.profiles {
		c.Total++
		switch {
		case st.IsSuspended:
			c.Suspended++
		case !st.IsVerified:
			c.Pending++
		}
		if st.IsVerified {
			c.Verified++
		}
	}
	return c, nil
}

type memReviews InMemoryStore

func (r *memReviews) Save(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := review.State()
	for id, other := range r.reviews {
		if id != st.ID && other.TrainerID == st.TrainerID && other.ClientID == st.ClientID {
			return domain.ErrReviewExists
		}
	}
	r.reviews[st.ID] = st
	return nil
}

func (r *memReviews) FindByID(_ context.Context, id types.ReviewID) (*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.reviews[id]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	return domain.ReconstituteReview(st), nil
}

func (r *memReviews) FindByTrainerAndClient(_ context.Context, trainerID types.TrainerID, clientID types.UserID) (*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, st := range r.reviews {
		if st.TrainerID == trainerID && st.ClientID == clientID {
			return domain.ReconstituteReview(st), nil
		}
	}
	return nil, domain.ErrReviewNotFound
}

func (r *memReviews) filter(match func(domain.ReviewState) bool) []domain.ReviewState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.ReviewState
	for _, st := range r.reviews {
		if !st.Deleted && match(st) {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memReviews) page(states []domain.ReviewState, page types.Page) ([]*domain.Review, int, error) {
	window := paginate(states, page)
	out := make([]*domain.Review, len(window))
	for i, st := range window {
		out[i] = domain.ReconstituteReview(st)
	}
	return out, len(states), nil
}

func (r *memReviews) ListApproved(_ context.Context, trainerID types.TrainerID, page types.Page) ([]*domain.Review, int, error) {
	return r.page(r.filter(func(s domain.ReviewState) bool { return s.TrainerID == trainerID && s.IsApproved }), page)
}

func (r *memReviews) ListPending(_ context.Context, page types.Page) ([]*domain.Review, int, error) {
	return r.page(r.filter(func(s domain.ReviewState) bool { return !s.IsApproved }), page)
}

func (r *memReviews) CountPending(_ context.Context) (int, error) {
	return len(r.filter(func(s domain.ReviewState) bool { return !s.IsApproved })), nil
}

func (r *memReviews) ApprovedRating(_ context.Context, trainerID types.TrainerID) (float64, int, error) {
	approved := r.filter(func(s domain.ReviewState) bool { return s.TrainerID == trainerID && s.IsApproved })
	if len(approved) == 0 {
		return 0, 0, nil
	}
	sum := 0
	for _, st := range approved {
		sum += st.Rating
	}
	return float64(sum) / float64(len(approved)), len(approved), nil
}

func (r *memReviews) Delete(_ context.Context, id types.ReviewID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[id]; !ok {
		return domain.ErrReviewNotFound
	}
	delete(r.reviews, id)
	return nil
}

type memLinks InMemoryStore

func (r *memLinks) Find(_ context.Context, trainerID types.TrainerID, clientID types.UserID) (*domain.ClientLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	link, ok := r.links[linkKey{trainerID, clientID}]
	if !ok {
		return nil, nil
	}
	return &link, nil
}

func (r *memLinks) Save(_ context.Context, link *domain.ClientLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[linkKey{link.TrainerID, link.ClientID}] = *link
	return nil
}

func paginate[T any](items []T, page types.Page) []T {
	start := page.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
