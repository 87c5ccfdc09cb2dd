package persistence

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/AlagappanMk24/Gymunity/modules/packages/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// InMemoryPackageRepository implements PackageRepository in memory for
// tests and local development.
type InMemoryPackageRepository struct {
	mu       sync.RWMutex
	packages map[types.PackageID]domain.PackageState
}

func NewInMemoryPackageRepository() *InMemoryPackageRepository {
	return &InMemoryPackageRepository{packages: make(map[types.PackageID]domain.PackageState)}
}

var _ domain.PackageRepository = (*InMemoryPackageRepository)(nil)

func (r *InMemoryPackageRepository) Save(_ context.Context, p *domain.Package) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := p.State()
	st.Details.ProgramIDs = append([]types.ProgramID(nil), st.Details.ProgramIDs...)
	r.packages[st.ID] = st
	return nil
}

func restore(st domain.PackageState) *domain.Package {
	st.Details.ProgramIDs = append([]types.ProgramID(nil), st.Details.ProgramIDs...)
	return domain.ReconstitutePackage(st)
}

func (r *InMemoryPackageRepository) FindByID(_ context.Context, id types.PackageID) (*domain.Package, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.packages[id]
	if !ok || st.DeletedAt != nil {
		return nil, domain.ErrPackageNotFound
	}
	return restore(st), nil
}

func matches(st domain.PackageState, f domain.PackageFilter) bool {
	if st.DeletedAt != nil {
		return false
	}
	if f.TrainerID != nil && st.TrainerID != *f.TrainerID {
		return false
	}
	if f.IsActive != nil && st.IsActive != *f.IsActive {
		return false
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		return strings.Contains(strings.ToLower(st.Details.Name), s) ||
			strings.Contains(strings.ToLower(st.Details.Description), s)
	}
	return true
}

func (r *InMemoryPackageRepository) List(_ context.Context, filter domain.PackageFilter, page types.Page) ([]*domain.Package, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found []domain.PackageState
	for _, st := range r.packages {
		if matches(st, filter) {
			found = append(found, st)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if a.Details.PriceMonthly.Amount() != b.Details.PriceMonthly.Amount() {
			return a.Details.PriceMonthly.Amount() < b.Details.PriceMonthly.Amount()
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	start := page.Offset()
	if start > len(found) {
		start = len(found)
	}
	end := start + page.Size
	if end > len(found) {
		end = len(found)
	}
	out := make([]*domain.Package, 0, end-start)
	for _, st := range found[start:end] {
		out = append(out, restore(st))
	}
	return out, len(found), nil
}
