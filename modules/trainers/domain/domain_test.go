package domain_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/domain"
)

func TestNewHandle(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"@Wahid_Fitness", "wahid_fitness", false},
		{"coach-mo", "coach-mo", false},
		{"ab", "", true},
		{"has space", "", true},
		{strings.Repeat("a", 51), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			h, err := domain.NewHandle(tt.in)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrHandleInvalid) {
					t.Errorf("expected ErrHandleInvalid, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, h.String())
			}
		})
	}
}

func newProfile(t *testing.T) *domain.TrainerProfile {
	t.Helper()
	h, _ := domain.NewHandle("coach")
	p, err := domain.NewProfile(types.NewUserID(), h, domain.ProfileDetails{Bio: "  Strength coach ", YearsExperience: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func TestNewProfile_Validation(t *testing.T) {
	h, _ := domain.NewHandle("coach")
	_, err := domain.NewProfile(types.NewUserID(), h, domain.ProfileDetails{YearsExperience: 81})
	if !errors.Is(err, domain.ErrYearsOutOfRange) {
		t.Errorf("expected ErrYearsOutOfRange, got %v", err)
	}
	_, err = domain.NewProfile(types.NewUserID(), h, domain.ProfileDetails{Bio: strings.Repeat("x", 2001)})
	if !errors.Is(err, domain.ErrBioTooLong) {
		t.Errorf("expected ErrBioTooLong, got %v", err)
	}

	p := newProfile(t)
	if p.Details().Bio != "Strength coach" {
		t.Errorf("expected trimmed bio, got %q", p.Details().Bio)
	}
	if p.IsListed() {
		t.Error("new profiles must not be listed before verification")
	}
}

func TestTrainerProfile_VerifyAndSuspend(t *testing.T) {
	p := newProfile(t)
	now := time.Now()

	p.Verify(now)
	p.Verify(now)
	if !p.IsListed() {
		t.Error("expected verified profile to be listed")
	}
	if len(p.DomainEvents()) != 1 {
		t.Fatalf("expected one TrainerVerified event, got %d", len(p.DomainEvents()))
	}
	if _, ok := p.DomainEvents()[0].(contracts.TrainerVerifiedEvent); !ok {
		t.Fatalf("unexpected event %T", p.DomainEvents()[0])
	}
	p.ClearDomainEvents()

	p.Suspend(now)
	if p.IsListed() || p.SuspendedAt() == nil {
		t.Error("expected suspended profile to be hidden")
	}
	if _, ok := p.DomainEvents()[0].(contracts.TrainerSuspendedEvent); !ok {
		t.Fatalf("unexpected event %T", p.DomainEvents()[0])
	}

	p.Unsuspend()
	p.Reject()
	if p.IsVerified() || p.VerifiedAt() != nil || p.IsSuspended() {
		t.Errorf("unexpected state after unsuspend+reject: %+v", p.State())
	}
}

func TestTrainerProfile_ClientCountFloorsAtZero(t *testing.T) {
	p := newProfile(t)
	p.ClientJoined()
	p.ClientLeft()
	p.ClientLeft()
	if p.TotalClients() != 0 {
		t.Errorf("expected 0 clients, got %d", p.TotalClients())
	}
}

func TestTrainerProfile_SetRatingRounds(t *testing.T) {
	p := newProfile(t)
	p.SetRating(13.0 / 3.0)
	if p.RatingAverage() != 4.33 {
		t.Errorf("expected 4.33, got %v", p.RatingAverage())
	}
}

func TestTrainerProfile_UpdateStatus(t *testing.T) {
	p := newProfile(t)
	if err := p.UpdateStatus("", strings.Repeat("s", 201)); !errors.Is(err, domain.ErrStatusTooLong) {
		t.Errorf("expected ErrStatusTooLong, got %v", err)
	}
	if err := p.UpdateStatus("https://cdn/x.png", "On vacation"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.StatusDescription() != "On vacation" {
		t.Errorf("unexpected status %q", p.StatusDescription())
	}
}

func TestReview_Lifecycle(t *testing.T) {
	client := types.NewUserID()
	trainerUser := types.NewUserID()
	r, err := domain.NewReview(types.NewID[types.TrainerKind](), client, 5, " Great ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Comment() != "Great" || r.IsApproved() {
		t.Errorf("unexpected new review: %+v", r.State())
	}
	if _, ok := r.DomainEvents()[0].(contracts.ReviewSubmittedEvent); !ok {
		t.Fatalf("unexpected event %T", r.DomainEvents()[0])
	}
	r.ClearDomainEvents()

	if err := r.Approve(trainerUser, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	approved, ok := r.DomainEvents()[0].(contracts.ReviewApprovedEvent)
	if !ok || approved.TrainerUserID != trainerUser {
		t.Fatalf("unexpected event %+v", r.DomainEvents()[0])
	}

	if err := r.Edit(types.NewUserID(), 4, "", time.Now()); !errors.Is(err, domain.ErrNotReviewAuthor) {
		t.Errorf("expected ErrNotReviewAuthor, got %v", err)
	}
	if err := r.Edit(client, 3, "Changed my mind", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.IsApproved() || !r.IsEdited() || r.Rating() != 3 {
		t.Errorf("edit must send the review back to moderation: %+v", r.State())
	}

	r.Reject()
	if err := r.Approve(trainerUser, time.Now()); !errors.Is(err, domain.ErrReviewDeleted) {
		t.Errorf("expected ErrReviewDeleted, got %v", err)
	}
}

func TestNewReview_Validation(t *testing.T) {
	tests := []struct {
		name    string
		rating  int
		comment string
		want    error
	}{
		{"zero rating", 0, "", domain.ErrRatingOutOfRange},
		{"six stars", 6, "", domain.ErrRatingOutOfRange},
		{"long comment", 4, strings.Repeat("c", 1001), domain.ErrCommentTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewReview(types.NewID[types.TrainerKind](), types.NewUserID(), tt.rating, tt.comment)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestClientLink(t *testing.T) {
	now := time.Now()
	l := domain.NewClientLink(types.NewID[types.TrainerKind](), types.NewUserID(), now)

	if !l.Activate(now) {
		t.Error("first activation must join the client")
	}
	if l.Activate(now) {
		t.Error("second subscription must not count the client twice")
	}
	if l.Deactivate(now) {
		t.Error("client still has one active subscription")
	}
	if !l.Deactivate(now) {
		t.Error("last deactivation must remove the client")
	}
	if l.Deactivate(now) {
		t.Error("deactivating with no active subscriptions is a no-op")
	}
}
