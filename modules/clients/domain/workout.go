package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

const (
	MaxExercisesLoggedLength = 10000
	EmptyExercisesLogged     = "[]"
)

// WorkoutDetails is a completed training session.
type WorkoutDetails struct {
	ProgramDayID    types.ProgramDayID
	CompletedAt     time.Time
	Notes           string
	DurationMinutes int
	// ExercisesLoggedJSON is an array such as
	// [{"exerciseId":"...","sets":[{"reps":8,"weightKg":60}]}].
	ExercisesLoggedJSON string
}

func (d WorkoutDetails) validate(now time.Time) (WorkoutDetails, error) {
	if d.DurationMinutes < 1 || d.DurationMinutes > 600 {
		return d, ErrDurationOutOfRange
	}
	d.Notes = strings.TrimSpace(d.Notes)
	if utf8.RuneCountInString(d.Notes) > MaxNotesLength {
		return d, ErrNotesTooLong
	}
	d.ExercisesLoggedJSON = strings.TrimSpace(d.ExercisesLoggedJSON)
	if d.ExercisesLoggedJSON == "" {
		d.ExercisesLoggedJSON = EmptyExercisesLogged
	}
	if len(d.ExercisesLoggedJSON) > MaxExercisesLoggedLength {
		return d, ErrExercisesLoggedTooLarge
	}
	if !gjson.Valid(d.ExercisesLoggedJSON) || !gjson.Parse(d.ExercisesLoggedJSON).IsArray() {
		return d, ErrExercisesLoggedInvalid
	}
	if d.CompletedAt.IsZero() {
		d.CompletedAt = now
	}
	d.CompletedAt = d.CompletedAt.UTC()
	if d.CompletedAt.After(now.Add(time.Minute)) {
		return d, ErrCompletedInFuture
	}
	return d, nil
}

// WorkoutLog records one completed program day.
type WorkoutLog struct {
	id      types.WorkoutLogID
	userID  types.UserID
	details WorkoutDetails
}

func NewWorkoutLog(userID types.UserID, d WorkoutDetails) (*WorkoutLog, error) {
	d, err := d.validate(time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return &WorkoutLog{id: types.NewID[types.WorkoutLogKind](), userID: userID, details: d}, nil
}

type WorkoutState struct {
	ID      types.WorkoutLogID
	UserID  types.UserID
	Details WorkoutDetails
}

func ReconstituteWorkoutLog(s WorkoutState) *WorkoutLog {
	return &WorkoutLog{id: s.ID, userID: s.UserID, details: s.Details}
}

func (w *WorkoutLog) State() WorkoutState {
	return WorkoutState{ID: w.id, UserID: w.userID, Details: w.details}
}

func (w *WorkoutLog) ID() types.WorkoutLogID  { return w.id }
func (w *WorkoutLog) UserID() types.UserID    { return w.userID }
func (w *WorkoutLog) Details() WorkoutDetails { return w.details }

// Volume sums reps × weightKg over every logged set. Sets without a
// weight count as zero.
func (w *WorkoutLog) Volume() float64 {
	total := 0.0
	for _, exercise := range gjson.Parse(w.details.ExercisesLoggedJSON).Array() {
		for _, set := range exercise.Get("sets").Array() {
			total += set.Get("reps").Float() * set.Get("weightKg").Float()
		}
	}
	return total
}

// ExerciseCount is the number of exercises in the log.
func (w *WorkoutLog) ExerciseCount() int {
	return int(gjson.Get(w.details.ExercisesLoggedJSON, "#").Int())
}
