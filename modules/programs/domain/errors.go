package domain

import "errors"

var (
	ErrProgramNotFound     = errors.New("program not found")
	ErrTitleInvalid        = errors.New("title must be 3 to 200 characters")
	ErrTitleTaken          = errors.New("you already have a program with this title")
	ErrDescriptionTooLong  = errors.New("description must be at most 2000 characters")
	ErrTypeInvalid         = errors.New("type must be Workout, Nutrition or Hybrid")
	ErrDurationOutOfRange  = errors.New("duration must be 1 to 52 weeks")
	ErrMaxClientsInvalid   = errors.New("max clients must not be negative")
	ErrNotOwner            = errors.New("program belongs to another trainer")
	ErrTrainerRequired     = errors.New("a trainer profile is required")
	ErrWeekNotFound        = errors.New("week not found")
	ErrWeekLimit           = errors.New("program already has a week for every week of its duration")
	ErrDayNumberInvalid    = errors.New("day number must be 1 to 7")
	ErrDayExists           = errors.New("week already has this day")
	ErrDayNotFound         = errors.New("day not found")
	ErrDayExerciseNotFound = errors.New("day exercise not found")
	ErrSetsOutOfRange      = errors.New("sets must be 1 to 20")
	ErrRepsInvalid         = errors.New("reps must be at most 20 characters")
	ErrRestOutOfRange      = errors.New("rest must be 0 to 600 seconds")
	ErrNotesTooLong        = errors.New("notes must be at most 500 characters")

	ErrExerciseNotFound    = errors.New("exercise not found")
	ErrExerciseNameInvalid = errors.New("exercise name must be 2 to 100 characters")
	ErrExerciseCategory    = errors.New("exercise category is required")
	ErrExerciseUnavailable = errors.New("exercise belongs to another trainer")
	ErrExerciseNameTaken   = errors.New("an exercise with this name already exists")
)
