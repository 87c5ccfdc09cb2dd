package persistence

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/programs/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// InMemoryStore implements both programs repositories in memory for tests
// and local development. Program trees are deep-copied on the way in and
// out so callers never share state with the store.
type InMemoryStore struct {
	mu        sync.RWMutex
	programs  map[types.ProgramID]domain.ProgramState
	exercises map[types.ExerciseID]domain.Exercise
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		programs:  make(map[types.ProgramID]domain.ProgramState),
		exercises: make(map[types.ExerciseID]domain.Exercise),
	}
}

func (s *InMemoryStore) Programs() domain.ProgramRepository { return (*memPrograms)(s) }

func (s *InMemoryStore) Exercises() domain.ExerciseRepository { return (*memExercises)(s) }

func copyWeeks(weeks []*domain.Week) []*domain.Week {
	if weeks == nil {
		return nil
	}
	out := make([]*domain.Week, len(weeks))
	for i, w := range weeks {
		wc := &domain.Week{ID: w.ID, WeekNumber: w.WeekNumber}
		for _, d := range w.Days {
			dc := *d
			dc.Exercises = make([]*domain.DayExercise, len(d.Exercises))
			for j, e := range d.Exercises {
				ec := *e
				dc.Exercises[j] = &ec
			}
			wc.Days = append(wc.Days, &dc)
		}
		out[i] = wc
	}
	return out
}

type memPrograms InMemoryStore

func (r *memPrograms) Save(_ context.Context, p *domain.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := p.State()
	if st.DeletedAt == nil {
		for id, other := range r.programs {
			if id != st.ID && other.DeletedAt == nil && other.TrainerID == st.TrainerID &&
				strings.EqualFold(other.Details.Title, st.Details.Title) {
				return domain.ErrTitleTaken
			}
		}
	}
	st.Weeks = copyWeeks(st.Weeks)
	r.programs[st.ID] = st
	return nil
}

func (r *memPrograms) FindByID(_ context.Context, id types.ProgramID) (*domain.Program, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.programs[id]
	if !ok || st.DeletedAt != nil {
		return nil, domain.ErrProgramNotFound
	}
	st.Weeks = copyWeeks(st.Weeks)
	return domain.ReconstituteProgram(st), nil
}

func (r *memPrograms) TitleTaken(_ context.Context, trainerID types.TrainerID, title string, except types.ProgramID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	title = strings.TrimSpace(title)
	for id, st := range r.programs {
		if id != except && st.DeletedAt == nil && st.TrainerID == trainerID && strings.EqualFold(st.Details.Title, title) {
			return true, nil
		}
	}
	return false, nil
}

func matchesProgram(s domain.ProgramState, f domain.ProgramFilter) bool {
	if s.DeletedAt != nil {
		return false
	}
	if f.TrainerID != nil && s.TrainerID != *f.TrainerID {
		return false
	}
	if f.IsPublic != nil && s.IsPublic != *f.IsPublic {
		return false
	}
	if f.Type != "" && s.Details.Type != f.Type {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		return strings.Contains(strings.ToLower(s.Details.Title), q) ||
			strings.Contains(strings.ToLower(s.Details.Description), q)
	}
	return true
}

func (r *memPrograms) List(_ context.Context, filter domain.ProgramFilter, page types.Page) ([]*domain.Program, int, error) {
	r.mu.RLock()
	var matched []domain.ProgramState
	for _, st := range r.programs {
		if matchesProgram(st, filter) {
			st.Weeks = nil
			matched = append(matched, st)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	items := paginate(matched, page)
	out := make([]*domain.Program, len(items))
	for i, st := range items {
		out[i] = domain.ReconstituteProgram(st)
	}
	return out, len(matched), nil
}

func (r *memPrograms) Stats(_ context.Context) (domain.ProgramStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var s domain.ProgramStats
	for _, st := range r.programs {
		if st.DeletedAt != nil {
			continue
		}
		s.Total++
		if st.IsPublic {
			s.Public++
		} else {
			s.Private++
		}
	}
	return s, nil
}

func (r *memPrograms) CountOwned(_ context.Context, trainerID types.TrainerID, ids []types.ProgramID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, id := range ids {
		if st, ok := r.programs[id]; ok && st.DeletedAt == nil && st.TrainerID == trainerID {
			n++
		}
	}
	return n, nil
}

func (r *memPrograms) DayExists(_ context.Context, id types.ProgramDayID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, st := range r.programs {
		if st.DeletedAt != nil {
			continue
		}
		for _, w := range st.Weeks {
			for _, d := range w.Days {
				if d.ID == id {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

type memExercises InMemoryStore

func (r *memExercises) Save(_ context.Context, e *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	r.exercises[e.ID] = *e
	return nil
}

func (r *memExercises) FindByID(_ context.Context, id types.ExerciseID) (*domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.exercises[id]
	if !ok {
		return nil, domain.ErrExerciseNotFound
	}
	return &e, nil
}

func (r *memExercises) FindByIDs(_ context.Context, ids []types.ExerciseID) ([]*domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Exercise
	for _, id := range ids {
		if e, ok := r.exercises[id]; ok {
			out = append(out, &e)
		}
	}
	return out, nil
}

func visible(e domain.Exercise, trainerID types.TrainerID) bool {
	return e.TrainerID == nil || (!trainerID.IsZero() && *e.TrainerID == trainerID)
}

func (r *memExercises) List(_ context.Context, filter domain.ExerciseFilter, page types.Page) ([]*domain.Exercise, int, error) {
	r.mu.RLock()
	var matched []domain.Exercise
	q := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, e := range r.exercises {
		if !visible(e, filter.TrainerID) {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(e.Details.Category, filter.Category) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(e.Details.Name), q) &&
			!strings.Contains(strings.ToLower(e.Details.MuscleGroup), q) {
			continue
		}
		matched = append(matched, e)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].Details.Name < matched[j].Details.Name })
	items := paginate(matched, page)
	out := make([]*domain.Exercise, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out, len(matched), nil
}

func (r *memExercises) NameTaken(_ context.Context, trainerID *types.TrainerID, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var owner types.TrainerID
	if trainerID != nil {
		owner = *trainerID
	}
	name = strings.TrimSpace(name)
	for _, e := range r.exercises {
		if visible(e, owner) && strings.EqualFold(e.Details.Name, name) {
			return true, nil
		}
	}
	return false, nil
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
