package domain

import (
	"context"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// ProfileFilter narrows profile listings. Listed restricts results to
// verified, unsuspended trainers.
type ProfileFilter struct {
	Search        string
	MinExperience int
	IsVerified    *bool
	IsSuspended   *bool
	Listed        bool
}

// ProfileCounts summarizes profiles for the admin console.
type ProfileCounts struct {
	Total     int `db:"total" json:"total"`
	Verified  int `db:"verified" json:"verified"`
	Pending   int `db:"pending" json:"pendingVerification"`
	Suspended int `db:"suspended" json:"suspended"`
}

type ProfileRepository interface {
	Save(ctx context.Context, p *TrainerProfile) error
	FindByID(ctx context.Context, id types.TrainerID) (*TrainerProfile, error)
	FindByUserID(ctx context.Context, userID types.UserID) (*TrainerProfile, error)
	FindByHandle(ctx context.Context, handle Handle) (*TrainerProfile, error)
	HandleTaken(ctx context.Context, handle Handle, except types.TrainerID) (bool, error)
	// List orders listed searches by rating, admin listings by creation.
	List(ctx context.Context, filter ProfileFilter, page types.Page) ([]*TrainerProfile, int, error)
	Counts(ctx context.Context) (ProfileCounts, error)
}

type ReviewRepository interface {
	Save(ctx context.Context, r *Review) error
	FindByID(ctx context.Context, id types.ReviewID) (*Review, error)
	// FindByTrainerAndClient includes rejected reviews.
	FindByTrainerAndClient(ctx context.Context, trainerID types.TrainerID, clientID types.UserID) (*Review, error)
	ListApproved(ctx context.Context, trainerID types.TrainerID, page types.Page) ([]*Review, int, error)
	ListPending(ctx context.Context, page types.Page) ([]*Review, int, error)
	CountPending(ctx context.Context) (int, error)
	// ApprovedRating returns the mean rating of approved reviews and their count.
	ApprovedRating(ctx context.Context, trainerID types.TrainerID) (float64, int, error)
	Delete(ctx context.Context, id types.ReviewID) error
}

type ClientLinkRepository interface {
	// Find returns (nil, nil) when the client never subscribed.
	Find(ctx context.Context, trainerID types.TrainerID, clientID types.UserID) (*ClientLink, error)
	Save(ctx context.Context, link *ClientLink) error
}
