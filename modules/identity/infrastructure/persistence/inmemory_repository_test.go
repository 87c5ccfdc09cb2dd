package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
	"github.com/AlagappanMk24/Gymunity/modules/identity/infrastructure/persistence"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func TestInMemoryRepository_UniqueEmail(t *testing.T) {
	repo := persistence.NewInMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newUser(t, "a@example.com", "alpha")))
	err := repo.Save(ctx, newUser(t, "a@example.com", "beta"))

	assert.ErrorIs(t, err, domain.ErrEmailExists)
}

func TestInMemoryRepository_ListFiltersAndPages(t *testing.T) {
	repo := persistence.NewInMemoryRepository()
	ctx := context.Background()

	for _, name := range []string{"anna", "bob", "annabel"} {
		require.NoError(t, repo.Save(ctx, newUser(t, name+"@example.com", name)))
	}
	deleted := newUser(t, "ann.gone@example.com", "ann.gone")
	require.NoError(t, deleted.Delete())
	require.NoError(t, repo.Save(ctx, deleted))

	users, total, err := repo.List(ctx, domain.UserFilter{Search: "ANN"}, types.NewPage(1, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, users, 1)

	all, err := repo.ListAll(ctx, domain.UserFilter{Search: "ann", IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestInMemoryRepository_FindByLogin(t *testing.T) {
	repo := persistence.NewInMemoryRepository()
	ctx := context.Background()
	login := domain.ExternalLogin{Provider: domain.ProviderGoogle, ProviderKey: "k1"}

	user := newUser(t, "g@example.com", "gee")
	user.LinkLogin(login)
	require.NoError(t, repo.Save(ctx, user))

	found, err := repo.FindByLogin(ctx, login)
	require.NoError(t, err)
	assert.Equal(t, user.ID(), found.ID())

	_, err = repo.FindByLogin(ctx, domain.ExternalLogin{Provider: domain.ProviderGoogle, ProviderKey: "other"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestInMemoryRepository_Statistics(t *testing.T) {
	repo := persistence.NewInMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	client := newUser(t, "c@example.com", "client")
	client.RecordSignIn(domain.MethodPassword, now)
	require.NoError(t, repo.Save(ctx, client))

	suspended := newUser(t, "s@example.com", "suspended")
	require.NoError(t, suspended.ChangeRole(types.RoleTrainer))
	require.NoError(t, suspended.Suspend())
	require.NoError(t, repo.Save(ctx, suspended))

	st, err := repo.Statistics(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Total)
	assert.Equal(t, 1, st.Clients)
	assert.Equal(t, 1, st.Trainers)
	assert.Equal(t, 1, st.Suspended)
	assert.Equal(t, 1, st.ActiveLastWeek)
	assert.Equal(t, 2, st.NewThisMonth)
}
