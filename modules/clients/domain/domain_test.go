package domain_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/clients/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func ptr[T any](v T) *T { return &v }

func TestNewProfileValidates(t *testing.T) {
	tests := []struct {
		name    string
		details domain.ProfileDetails
		want    error
	}{
		{"empty", domain.ProfileDetails{}, nil},
		{"complete", domain.ProfileDetails{HeightCm: ptr(180), StartingWeightKg: ptr(82.5), ExperienceLevel: domain.LevelAdvanced}, nil},
		{"short", domain.ProfileDetails{HeightCm: ptr(49)}, domain.ErrHeightOutOfRange},
		{"tall", domain.ProfileDetails{HeightCm: ptr(301)}, domain.ErrHeightOutOfRange},
		{"light", domain.ProfileDetails{StartingWeightKg: ptr(19.9)}, domain.ErrStartingWeightRange},
		{"heavy", domain.ProfileDetails{StartingWeightKg: ptr(500.1)}, domain.ErrStartingWeightRange},
		{"unknown level", domain.ProfileDetails{ExperienceLevel: "Expert"}, domain.ErrInvalidExperienceLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewProfile(types.NewUserID(), tt.details)
			if !errors.Is(err, tt.want) {
				t.Fatalf("NewProfile() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestProfileDefaultsToBeginner(t *testing.T) {
	p, err := domain.NewProfile(types.NewUserID(), domain.ProfileDetails{})
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Details().ExperienceLevel; got != domain.LevelBeginner {
		t.Errorf("level = %q, want Beginner", got)
	}
}

func TestNewBodyStatLogValidates(t *testing.T) {
	tests := []struct {
		name    string
		details domain.BodyStatDetails
		want    error
	}{
		{"weight", domain.BodyStatDetails{WeightKg: ptr(80.0)}, nil},
		{"measurements only", domain.BodyStatDetails{MeasurementsJSON: `{"waistCm": 82}`}, nil},
		{"photo only", domain.BodyStatDetails{PhotoFrontURL: "https://cdn.example.com/front.jpg"}, nil},
		{"nothing", domain.BodyStatDetails{Notes: "felt good"}, domain.ErrBodyStatEmpty},
		{"weight range", domain.BodyStatDetails{WeightKg: ptr(10.0)}, domain.ErrWeightOutOfRange},
		{"body fat range", domain.BodyStatDetails{BodyFatPercent: ptr(101.0)}, domain.ErrBodyFatOutOfRange},
		{"measurements array", domain.BodyStatDetails{MeasurementsJSON: `[82]`}, domain.ErrMeasurementsInvalid},
		{"measurements broken", domain.BodyStatDetails{MeasurementsJSON: `{"waistCm":`}, domain.ErrMeasurementsInvalid},
		{"notes", domain.BodyStatDetails{WeightKg: ptr(80.0), Notes: strings.Repeat("n", domain.MaxNotesLength+1)}, domain.ErrNotesTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewBodyStatLog(types.NewUserID(), tt.details)
			if !errors.Is(err, tt.want) {
				t.Fatalf("NewBodyStatLog() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBodyStatMeasurement(t *testing.T) {
	b, err := domain.NewBodyStatLog(types.NewUserID(), domain.BodyStatDetails{
		MeasurementsJSON: `{"waistCm": 82.5, "note": "relaxed"}`,
	})
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := b.Measurement("waistCm"); !ok || v != 82.5 {
		t.Errorf("waistCm = %v, %v", v, ok)
	}
	if _, ok := b.Measurement("note"); ok {
		t.Error("non-numeric measurement reported")
	}
	if b.LoggedAt().IsZero() {
		t.Error("logged at not defaulted")
	}
}

func TestNewWorkoutLogValidates(t *testing.T) {
	day := types.NewID[types.ProgramDayKind]()
	tests := []struct {
		name     string
		duration int
		logged   string
		at       time.Time
		want     error
	}{
		{"default payload", 45, "", time.Time{}, nil},
		{"payload", 60, `[{"exerciseId":"squat","sets":[{"reps":5,"weightKg":100}]}]`, time.Time{}, nil},
		{"zero minutes", 0, "", time.Time{}, domain.ErrDurationOutOfRange},
		{"too long", 601, "", time.Time{}, domain.ErrDurationOutOfRange},
		{"object payload", 30, `{"sets":3}`, time.Time{}, domain.ErrExercisesLoggedInvalid},
		{"broken payload", 30, `[{"sets":`, time.Time{}, domain.ErrExercisesLoggedInvalid},
		{"large payload", 30, "[" + strings.Repeat(`"x",`, 2500) + `"x"]`, time.Time{}, domain.ErrExercisesLoggedTooLarge},
		{"future", 30, "", time.Now().Add(time.Hour), domain.ErrCompletedInFuture},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := domain.NewWorkoutLog(types.NewUserID(), domain.WorkoutDetails{
				ProgramDayID:        day,
				DurationMinutes:     tt.duration,
				ExercisesLoggedJSON: tt.logged,
				CompletedAt:         tt.at,
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("NewWorkoutLog() error = %v, want %v", err, tt.want)
			}
			if err == nil && tt.logged == "" && w.Details().ExercisesLoggedJSON != domain.EmptyExercisesLogged {
				t.Errorf("payload = %q, want []", w.Details().ExercisesLoggedJSON)
			}
		})
	}
}

func TestWorkoutVolume(t *testing.T) {
	w, err := domain.NewWorkoutLog(types.NewUserID(), domain.WorkoutDetails{
		ProgramDayID:    types.NewID[types.ProgramDayKind](),
		DurationMinutes: 50,
		ExercisesLoggedJSON: `[
			{"exerciseId":"squat","sets":[{"reps":5,"weightKg":100},{"reps":5,"weightKg":110}]},
			{"exerciseId":"plank","sets":[{"reps":1}]}
		]`,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := w.Volume(); got != 1050 {
		t.Errorf("Volume() = %v, want 1050", got)
	}
	if got := w.ExerciseCount(); got != 2 {
		t.Errorf("ExerciseCount() = %d, want 2", got)
	}
}

func TestSummarizeProgress(t *testing.T) {
	user := types.NewUserID()
	profile, _ := domain.NewProfile(user, domain.ProfileDetails{StartingWeightKg: ptr(90.0)})
	latest, _ := domain.NewBodyStatLog(user, domain.BodyStatDetails{WeightKg: ptr(86.7), BodyFatPercent: ptr(18.0)})
	last := time.Now().UTC()

	got := domain.SummarizeProgress(profile, latest, domain.WorkoutStats{Total: 12, Recent: 5, TotalMinutes: 540, LastAt: &last})
	if got.WeightChangeKg == nil || *got.WeightChangeKg != -3.3 {
		t.Errorf("weight change = %v, want -3.3", got.WeightChangeKg)
	}
	if got.WorkoutsLast30Days != 5 || got.TotalMinutes != 540 || got.WorkoutsTotal != 12 {
		t.Errorf("workouts = %+v", got)
	}

	empty := domain.SummarizeProgress(nil, nil, domain.WorkoutStats{})
	if empty.WeightChangeKg != nil || empty.LatestWeightKg != nil {
		t.Errorf("empty progress = %+v", empty)
	}
}
