package domain

import "errors"

var (
	ErrProfileNotFound         = errors.New("client profile not found")
	ErrBodyStatNotFound        = errors.New("body stat log not found")
	ErrWorkoutLogNotFound      = errors.New("workout log not found")
	ErrHeightOutOfRange        = errors.New("height must be between 50 and 300 cm")
	ErrStartingWeightRange     = errors.New("starting weight must be between 20 and 500 kg")
	ErrInvalidGender           = errors.New("gender must be Male or Female")
	ErrInvalidGoal             = errors.New("goal must be WeightLoss, MuscleGain, Maintenance, Strength or Endurance")
	ErrInvalidExperienceLevel  = errors.New("experience level must be Beginner, Intermediate or Advanced")
	ErrWeightOutOfRange        = errors.New("weight must be between 20 and 500 kg")
	ErrBodyFatOutOfRange       = errors.New("body fat must be between 0 and 100 percent")
	ErrMeasurementsInvalid     = errors.New("measurements must be a JSON object")
	ErrBodyStatEmpty           = errors.New("a body stat log needs a weight, body fat, measurements or a photo")
	ErrNotesTooLong            = errors.New("notes must be at most 2000 characters")
	ErrDurationOutOfRange      = errors.New("duration must be between 1 and 600 minutes")
	ErrExercisesLoggedInvalid  = errors.New("exercises logged must be a JSON array")
	ErrExercisesLoggedTooLarge = errors.New("exercises logged must be at most 10000 characters")
	ErrCompletedInFuture       = errors.New("a workout cannot be completed in the future")
	ErrProgramDayNotFound      = errors.New("program day not found")
	ErrNotYourClient           = errors.New("this client has no active subscription with you")
)
