package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus/eventbustest"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/application/commands"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/domain"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/infrastructure/persistence"
)

type fixture struct {
	store *persistence.InMemoryStore
	rec   *eventbustest.Recorder

	create   *commands.CreateProfileHandler
	update   *commands.UpdateProfileHandler
	review   *commands.AddReviewHandler
	edit     *commands.EditReviewHandler
	moderate *commands.ModerationHandler
}

func newFixture() *fixture {
	uow, _, rec := eventbustest.New()
	store := persistence.NewInMemoryStore()
	profiles, reviews, links := store.Profiles(), store.Reviews(), store.Links()
	return &fixture{
		store:    store,
		rec:      rec,
		create:   commands.NewCreateProfileHandler(profiles, uow),
		update:   commands.NewUpdateProfileHandler(profiles, uow),
		review:   commands.NewAddReviewHandler(profiles, reviews, links, uow),
		edit:     commands.NewEditReviewHandler(profiles, reviews, uow),
		moderate: commands.NewModerationHandler(profiles, reviews, uow),
	}
}

func (f *fixture) trainer(t *testing.T, handle string) (types.UserID, types.TrainerID) {
	t.Helper()
	userID := types.NewUserID()
	id, err := f.create.Handle(context.Background(), commands.CreateProfileCommand{
		UserID: userID,
		Role:   types.RoleTrainer,
		Handle: handle,
	})
	require.NoError(t, err)
	return userID, id
}

func (f *fixture) link(t *testing.T, trainerID types.TrainerID, clientID types.UserID) {
	t.Helper()
	link := domain.NewClientLink(trainerID, clientID, time.Now())
	link.Activate(time.Now())
	require.NoError(t, f.store.Links().Save(context.Background(), link))
}

func TestCreateProfile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.create.Handle(ctx, commands.CreateProfileCommand{
		UserID: types.NewUserID(), Role: types.RoleClient, Handle: "someone",
	})
	assert.ErrorIs(t, err, domain.ErrNotTrainer)

	userID, _ := f.trainer(t, "coach_one")

	_, err = f.create.Handle(ctx, commands.CreateProfileCommand{
		UserID: userID, Role: types.RoleTrainer, Handle: "coach_two",
	})
	assert.ErrorIs(t, err, domain.ErrProfileExists)

	_, err = f.create.Handle(ctx, commands.CreateProfileCommand{
		UserID: types.NewUserID(), Role: types.RoleTrainer, Handle: "@Coach_One",
	})
	assert.ErrorIs(t, err, domain.ErrHandleTaken)
}

func TestUpdateProfile_KeepsOwnHandle(t *testing.T) {
	f := newFixture()
	userID, _ := f.trainer(t, "coach_one")

	err := f.update.Handle(context.Background(), commands.UpdateProfileCommand{
		UserID:  userID,
		Handle:  "coach_one",
		Details: domain.ProfileDetails{Bio: "Updated", YearsExperience: 3},
	})
	require.NoError(t, err)

	p, err := f.store.Profiles().FindByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Updated", p.Details().Bio)
}

func TestAddReview_Rules(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	trainerUser, trainerID := f.trainer(t, "coach_one")
	client := types.NewUserID()

	_, err := f.review.Handle(ctx, commands.AddReviewCommand{ClientID: trainerUser, TrainerID: trainerID, Rating: 5})
	assert.ErrorIs(t, err, domain.ErrCannotReviewSelf)

	_, err = f.review.Handle(ctx, commands.AddReviewCommand{ClientID: client, TrainerID: trainerID, Rating: 5})
	assert.ErrorIs(t, err, domain.ErrNeverSubscribed)

	f.link(t, trainerID, client)
	id, err := f.review.Handle(ctx, commands.AddReviewCommand{ClientID: client, TrainerID: trainerID, Rating: 5})
	require.NoError(t, err)
	assert.False(t, id.IsZero())
	assert.Contains(t, f.rec.Types(), contracts.ReviewSubmittedEventType)

	_, err = f.review.Handle(ctx, commands.AddReviewCommand{ClientID: client, TrainerID: trainerID, Rating: 3})
	assert.ErrorIs(t, err, domain.ErrReviewExists)
}

func TestModeration_RatingFollowsApprovedReviews(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, trainerID := f.trainer(t, "coach_one")

	var ids []types.ReviewID
	for _, rating := range []int{5, 4, 2} {
		client := types.NewUserID()
		f.link(t, trainerID, client)
		id, err := f.review.Handle(ctx, commands.AddReviewCommand{ClientID: client, TrainerID: trainerID, Rating: rating})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	rating := func() float64 {
		p, err := f.store.Profiles().FindByID(ctx, trainerID)
		require.NoError(t, err)
		return p.RatingAverage()
	}

	require.NoError(t, f.moderate.ApproveReview(ctx, ids[0]))
	require.NoError(t, f.moderate.ApproveReview(ctx, ids[1]))
	assert.Equal(t, 4.5, rating())

	require.NoError(t, f.moderate.ApproveReview(ctx, ids[2]))
	assert.Equal(t, 3.67, rating())

	require.NoError(t, f.moderate.RejectReview(ctx, ids[2]))
	assert.Equal(t, 4.5, rating())

	require.NoError(t, f.moderate.DeleteReview(ctx, ids[0]))
	assert.Equal(t, 4.0, rating())

	assert.ErrorIs(t, f.moderate.DeleteReview(ctx, ids[0]), domain.ErrReviewNotFound)
}

func TestModeration_VerifyPublishesOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, trainerID := f.trainer(t, "coach_one")
	f.rec.Reset()

	require.NoError(t, f.moderate.Verify(ctx, trainerID))
	require.NoError(t, f.moderate.Verify(ctx, trainerID))

	assert.Equal(t, []events.EventType{contracts.TrainerVerifiedEventType}, f.rec.Types())
	assert.ErrorIs(t, f.moderate.Verify(ctx, types.NewID[types.TrainerKind]()), domain.ErrProfileNotFound)
}
