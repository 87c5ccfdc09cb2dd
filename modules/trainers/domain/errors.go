package domain

import "errors"

// Sentinel errors for the trainers domain.
var (
	ErrProfileNotFound  = errors.New("trainer profile not found")
	ErrProfileExists    = errors.New("trainer profile already exists for this user")
	ErrNotTrainer       = errors.New("only trainers can own a trainer profile")
	ErrHandleInvalid    = errors.New("handle must be 3-50 characters of a-z, 0-9, '_' or '-'")
	ErrHandleTaken      = errors.New("handle is already taken")
	ErrBioTooLong       = errors.New("bio must be at most 2000 characters")
	ErrYearsOutOfRange  = errors.New("years of experience must be between 0 and 80")
	ErrStatusTooLong    = errors.New("status description must be at most 200 characters")
	ErrProfileSuspended = errors.New("trainer profile is suspended")
	ErrReviewNotFound   = errors.New("review not found")
	ErrReviewExists     = errors.New("client already reviewed this trainer")
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")
	ErrCommentTooLong   = errors.New("comment must be at most 1000 characters")
	ErrNotReviewAuthor  = errors.New("only the author can edit a review")
	ErrNeverSubscribed  = errors.New("only clients who subscribed to this trainer can review")
	ErrCannotReviewSelf = errors.New("trainers cannot review themselves")
	ErrReviewDeleted    = errors.New("review has been removed")
)
