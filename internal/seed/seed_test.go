package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlagappanMk24/Gymunity/internal/config"
	"github.com/AlagappanMk24/Gymunity/internal/platform/auth"
	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus/eventbustest"
	"github.com/AlagappanMk24/Gymunity/internal/seed"
	"github.com/AlagappanMk24/Gymunity/modules/identity"
	"github.com/AlagappanMk24/Gymunity/modules/packages"
	"github.com/AlagappanMk24/Gymunity/modules/programs"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/trainers"
)

func newSeeder(t *testing.T) (*seed.Seeder, api.TrainerDirectory, api.PackageCatalog) {
	t.Helper()
	uow, registry, _ := eventbustest.New()

	id, err := identity.New(identity.Config{
		Store:      identity.StoreMemory,
		UnitOfWork: uow,
		Tokens:     auth.NewTokenService(auth.Config{SigningKey: "0123456789abcdef0123456789abcdef"}),
	})
	require.NoError(t, err)
	tr, err := trainers.New(trainers.Config{Store: trainers.StoreMemory, UnitOfWork: uow, Subscriber: registry})
	require.NoError(t, err)
	pr, err := programs.New(programs.Config{Store: programs.StoreMemory, UnitOfWork: uow, Trainers: tr.Directory()})
	require.NoError(t, err)
	pk, err := packages.New(packages.Config{
		Store:      packages.StoreMemory,
		UnitOfWork: uow,
		Subscriber: registry,
		Trainers:   tr.Directory(),
		Programs:   pr.Catalog(),
	})
	require.NoError(t, err)

	passwords := config.SeedConfig{AdminPassword: "Admin@123", TrainerPassword: "Trainer@123", ClientPassword: "Client@123"}
	return seed.New(id, tr, pr, pk, passwords, nil), tr.Directory(), pk.Catalog()
}

func TestSeeder_Run(t *testing.T) {
	s, trainerDir, catalog := newSeeder(t)
	ctx := context.Background()

	first, err := s.Run(ctx)
	require.NoError(t, err)
	assert.False(t, first.AdminID.IsZero())
	assert.False(t, first.ClientID.IsZero())
	assert.Equal(t, 16, first.ExercisesCreated)

	trainer, err := trainerDir.TrainerByUser(ctx, first.TrainerUserID)
	require.NoError(t, err)
	assert.Equal(t, first.TrainerID, trainer.ID)
	assert.True(t, trainer.IsVerified)

	pkg, err := catalog.Package(ctx, first.PackageID)
	require.NoError(t, err)
	assert.Equal(t, "Starter Pack", pkg.Name)
	assert.Equal(t, int64(2999_00), pkg.PriceMonthly.Amount())
	assert.Equal(t, "EGP", pkg.PriceMonthly.Currency())
	assert.Equal(t, first.TrainerUserID, pkg.TrainerUserID)
}

func TestSeeder_RunIsIdempotent(t *testing.T) {
	s, _, _ := newSeeder(t)
	ctx := context.Background()

	first, err := s.Run(ctx)
	require.NoError(t, err)
	second, err := s.Run(ctx)
	require.NoError(t, err)

	assert.Zero(t, second.ExercisesCreated)
	first.ExercisesCreated = 0
	assert.Equal(t, first, second)
}
