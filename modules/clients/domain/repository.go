package domain

import (
	"context"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type ProfileRepository interface {
	// Save inserts or replaces the profile of its user.
	Save(ctx context.Context, p *Profile) error
	FindByUser(ctx context.Context, userID types.UserID) (*Profile, error)
	DeleteByUser(ctx context.Context, userID types.UserID) error
}

type BodyStatRepository interface {
	Save(ctx context.Context, b *BodyStatLog) error
	// ListByUser returns entries newest first.
	ListByUser(ctx context.Context, userID types.UserID, page types.Page) ([]*BodyStatLog, int, error)
	// LatestWeighed returns the newest entry with a weight, or
	// ErrBodyStatNotFound.
	LatestWeighed(ctx context.Context, userID types.UserID) (*BodyStatLog, error)
	DeleteByUser(ctx context.Context, userID types.UserID) (int, error)
}

type WorkoutLogRepository interface {
	Save(ctx context.Context, w *WorkoutLog) error
	FindByID(ctx context.Context, id types.WorkoutLogID) (*WorkoutLog, error)
	// ListByUser returns logs newest completion first.
	ListByUser(ctx context.Context, userID types.UserID, page types.Page) ([]*WorkoutLog, int, error)
	// Stats counts every log of userID and those completed at or after since.
	Stats(ctx context.Context, userID types.UserID, since time.Time) (WorkoutStats, error)
	Delete(ctx context.Context, id types.WorkoutLogID) error
	DeleteByUser(ctx context.Context, userID types.UserID) (int, error)
}
