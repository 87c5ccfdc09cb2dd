package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlagappanMk24/Gymunity/modules/programs/domain"
	"github.com/AlagappanMk24/Gymunity/modules/programs/infrastructure/persistence"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func TestInMemoryPrograms_TreeIsCopied(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewInMemoryStore().Programs()
	p, err := domain.NewProgram(types.NewID[types.TrainerKind](), domain.ProgramDetails{Title: "Strength", DurationWeeks: 4}, true)
	require.NoError(t, err)
	_, err = p.AddWeek()
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, p))

	// Mutating the saved aggregate must not leak into the store.
	_, err = p.AddWeek()
	require.NoError(t, err)

	loaded, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Len(t, loaded.Weeks(), 1)
}

func TestInMemoryPrograms_TitleUniquePerTrainer(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewInMemoryStore().Programs()
	trainer := types.NewID[types.TrainerKind]()

	a, _ := domain.NewProgram(trainer, domain.ProgramDetails{Title: "Strength", DurationWeeks: 4}, true)
	b, _ := domain.NewProgram(trainer, domain.ProgramDetails{Title: "STRENGTH", DurationWeeks: 4}, true)
	c, _ := domain.NewProgram(types.NewID[types.TrainerKind](), domain.ProgramDetails{Title: "Strength", DurationWeeks: 4}, true)

	require.NoError(t, repo.Save(ctx, a))
	assert.ErrorIs(t, repo.Save(ctx, b), domain.ErrTitleTaken)
	assert.NoError(t, repo.Save(ctx, c))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ProgramStats{Total: 2, Public: 2}, stats)
}

func TestInMemoryExercises_Visibility(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewInMemoryStore().Exercises()
	owner := types.NewID[types.TrainerKind]()

	global, _ := domain.NewGlobalExercise(domain.ExerciseDetails{Name: "Squat", Category: "Strength"})
	custom, _ := domain.NewCustomExercise(owner, domain.ExerciseDetails{Name: "Box Squat", Category: "Strength"})
	require.NoError(t, repo.Save(ctx, global))
	require.NoError(t, repo.Save(ctx, custom))

	_, total, err := repo.List(ctx, domain.ExerciseFilter{}, types.NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	items, total, err := repo.List(ctx, domain.ExerciseFilter{TrainerID: owner, Search: "squat"}, types.NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "Box Squat", items[0].Details.Name)

	taken, err := repo.NameTaken(ctx, nil, "box squat")
	require.NoError(t, err)
	assert.False(t, taken)
}
