package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// ExerciseDetails describes a library exercise.
type ExerciseDetails struct {
	Name         string
	Category     string
	MuscleGroup  string
	Equipment    string
	VideoDemoURL string
	ThumbnailURL string
}

func (d ExerciseDetails) validate() (ExerciseDetails, error) {
	d.Name = strings.TrimSpace(d.Name)
	if n := utf8.RuneCountInString(d.Name); n < 2 || n > 100 {
		return d, ErrExerciseNameInvalid
	}
	d.Category = strings.TrimSpace(d.Category)
	if d.Category == "" {
		return d, ErrExerciseCategory
	}
	d.MuscleGroup = strings.TrimSpace(d.MuscleGroup)
	d.Equipment = strings.TrimSpace(d.Equipment)
	return d, nil
}

// Exercise is an entry of the exercise library. Global exercises have no
// trainer; custom ones are visible to their author only.
type Exercise struct {
	ID        types.ExerciseID
	TrainerID *types.TrainerID
	Details   ExerciseDetails
	CreatedAt time.Time
}

// NewGlobalExercise creates a library exercise available to every trainer.
func NewGlobalExercise(details ExerciseDetails) (*Exercise, error) {
	return newExercise(nil, details)
}

// NewCustomExercise creates an exercise owned by trainerID.
func NewCustomExercise(trainerID types.TrainerID, details ExerciseDetails) (*Exercise, error) {
	return newExercise(&trainerID, details)
}

func newExercise(trainerID *types.TrainerID, details ExerciseDetails) (*Exercise, error) {
	details, err := details.validate()
	if err != nil {
		return nil, err
	}
	return &Exercise{
		ID:        types.NewID[types.ExerciseKind](),
		TrainerID: trainerID,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (e *Exercise) IsCustom() bool { return e.TrainerID != nil }

// AvailableTo reports whether trainerID may prescribe the exercise.
func (e *Exercise) AvailableTo(trainerID types.TrainerID) bool {
	return e.TrainerID == nil || *e.TrainerID == trainerID
}
