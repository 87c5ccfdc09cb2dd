package persistence_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlagappanMk24/Gymunity/modules/notifications/domain"
	"github.com/AlagappanMk24/Gymunity/modules/notifications/infrastructure/persistence"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func TestInMemoryRepository_ListPastLastPageIsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewInMemoryRepository()
	userID := types.NewUserID()
	n, err := domain.New(userID, domain.TypeNewClientRegistration, "New Client Registration", "Sam registered", "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, n))

	var items []*domain.Notification
	var total int
	require.NotPanics(t, func() {
		items, total, err = repo.List(ctx, domain.Filter{UserID: userID}, types.NewPage(math.MaxInt/10, 20))
	})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 1, total)
}
