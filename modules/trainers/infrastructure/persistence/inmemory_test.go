package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/domain"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/infrastructure/persistence"
)

func saveProfile(t *testing.T, repo domain.ProfileRepository, handle string, rating float64, verified bool) *domain.TrainerProfile {
	t.Helper()
	h, err := domain.NewHandle(handle)
	require.NoError(t, err)
	p, err := domain.NewProfile(types.NewUserID(), h, domain.ProfileDetails{Bio: "coach " + handle, YearsExperience: 4})
	require.NoError(t, err)
	if verified {
		p.Verify(time.Now())
	}
	p.SetRating(rating)
	require.NoError(t, repo.Save(context.Background(), p))
	return p
}

func TestInMemoryProfiles_ListedSearch(t *testing.T) {
	store := persistence.NewInMemoryStore()
	repo := store.Profiles()
	saveProfile(t, repo, "low", 3.1, true)
	saveProfile(t, repo, "high", 4.9, true)
	saveProfile(t, repo, "hidden", 5, false)

	profiles, total, err := repo.List(context.Background(), domain.ProfileFilter{Listed: true}, types.NewPage(1, 10))

	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "high", profiles[0].Handle().String())

	counts, err := repo.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.ProfileCounts{Total: 3, Verified: 2, Pending: 1}, counts)
}

func TestInMemoryProfiles_UniqueHandle(t *testing.T) {
	repo := persistence.NewInMemoryStore().Profiles()
	saveProfile(t, repo, "same", 0, false)

	h, _ := domain.NewHandle("same")
	p, err := domain.NewProfile(types.NewUserID(), h, domain.ProfileDetails{})
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Save(context.Background(), p), domain.ErrHandleTaken)
}

func TestInMemoryReviews_RatingIgnoresRejected(t *testing.T) {
	repo := persistence.NewInMemoryStore().Reviews()
	ctx := context.Background()
	trainerID := types.NewID[types.TrainerKind]()

	for _, rating := range []int{5, 4, 1} {
		r, err := domain.NewReview(trainerID, types.NewUserID(), rating, "")
		require.NoError(t, err)
		require.NoError(t, r.Approve(types.NewUserID(), time.Now()))
		if rating == 1 {
			r.Reject()
		}
		require.NoError(t, repo.Save(ctx, r))
	}

	avg, n, err := repo.ApprovedRating(ctx, trainerID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.InDelta(t, 4.5, avg, 0.001)
}
