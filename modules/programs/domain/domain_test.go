package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func validDetails() ProgramDetails {
	return ProgramDetails{
		Title:         "Beginner Strength",
		Type:          TypeWorkout,
		DurationWeeks: 2,
		Price:         types.MustNewMoney(4999, "USD"),
	}
}

func TestNewProgram_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(d *ProgramDetails)
		want   error
	}{
		{"valid", func(d *ProgramDetails) {}, nil},
		{"short title", func(d *ProgramDetails) { d.Title = "ab" }, ErrTitleInvalid},
		{"blank title", func(d *ProgramDetails) { d.Title = "   " }, ErrTitleInvalid},
		{"bad type", func(d *ProgramDetails) { d.Type = "Yoga" }, ErrTypeInvalid},
		{"zero weeks", func(d *ProgramDetails) { d.DurationWeeks = 0 }, ErrDurationOutOfRange},
		{"too many weeks", func(d *ProgramDetails) { d.DurationWeeks = 53 }, ErrDurationOutOfRange},
		{"negative clients", func(d *ProgramDetails) { d.MaxClients = -1 }, ErrMaxClientsInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDetails()
			tt.modify(&d)
			_, err := NewProgram(types.NewID[types.TrainerKind](), d, false)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewProgram_DefaultsCurrency(t *testing.T) {
	d := validDetails()
	d.Price = types.Money{}
	p, err := NewProgram(types.NewID[types.TrainerKind](), d, true)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Details().Price.Currency(); got != types.DefaultCurrency {
		t.Errorf("currency = %q", got)
	}
}

func TestProgramTree(t *testing.T) {
	p, err := NewProgram(types.NewID[types.TrainerKind](), validDetails(), false)
	if err != nil {
		t.Fatal(err)
	}

	w1, err := p.AddWeek()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.AddWeek(); err != nil {
		t.Fatal(err)
	}
	if _, err := p.AddWeek(); !errors.Is(err, ErrWeekLimit) {
		t.Fatalf("third week: %v", err)
	}

	d3, err := p.AddDay(w1.ID, 3, "Lower Body B", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.AddDay(w1.ID, 1, "Lower Body A", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := p.AddDay(w1.ID, 3, "Again", ""); !errors.Is(err, ErrDayExists) {
		t.Fatalf("duplicate day: %v", err)
	}
	if _, err := p.AddDay(w1.ID, 8, "Nope", ""); !errors.Is(err, ErrDayNumberInvalid) {
		t.Fatalf("day 8: %v", err)
	}
	if _, err := p.AddDay(types.NewID[WeekKind](), 2, "Nope", ""); !errors.Is(err, ErrWeekNotFound) {
		t.Fatalf("unknown week: %v", err)
	}
	if got := w1.Days[0].DayNumber; got != 1 {
		t.Errorf("days not ordered, first = %d", got)
	}

	squat := types.NewID[types.ExerciseKind]()
	bench := types.NewID[types.ExerciseKind]()
	e1, err := p.AddDayExercise(d3.ID, Prescription{ExerciseID: squat, Sets: 4, Reps: "8-10", RestSeconds: 90})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.AddDayExercise(d3.ID, Prescription{ExerciseID: bench, Sets: 21}); !errors.Is(err, ErrSetsOutOfRange) {
		t.Fatalf("sets: %v", err)
	}
	if _, err := p.AddDayExercise(d3.ID, Prescription{ExerciseID: bench, Sets: 3, RestSeconds: 601}); !errors.Is(err, ErrRestOutOfRange) {
		t.Fatalf("rest: %v", err)
	}
	e2, err := p.AddDayExercise(d3.ID, Prescription{ExerciseID: bench, Sets: 3})
	if err != nil {
		t.Fatal(err)
	}
	if e1.OrderIndex != 1 || e2.OrderIndex != 2 {
		t.Errorf("order = %d, %d", e1.OrderIndex, e2.OrderIndex)
	}
	if got := p.ExerciseCount(); got != 2 {
		t.Errorf("ExerciseCount = %d", got)
	}

	if err := p.RemoveDayExercise(e1.ID); err != nil {
		t.Fatal(err)
	}
	if err := p.RemoveDayExercise(e1.ID); !errors.Is(err, ErrDayExerciseNotFound) {
		t.Fatalf("second remove: %v", err)
	}

	d := validDetails()
	d.DurationWeeks = 1
	if err := p.Update(d); !errors.Is(err, ErrDurationOutOfRange) {
		t.Fatalf("shrinking below authored weeks: %v", err)
	}
}

func TestProgramVisibilityAndDelete(t *testing.T) {
	p, _ := NewProgram(types.NewID[types.TrainerKind](), validDetails(), false)

	if !p.ToggleVisibility() || !p.IsPublic() {
		t.Fatal("expected public after toggle")
	}
	p.Delete(time.Now())
	if !p.IsDeleted() || p.IsPublic() {
		t.Error("deleted program must be hidden")
	}
}

func TestExerciseAvailability(t *testing.T) {
	owner := types.NewID[types.TrainerKind]()
	other := types.NewID[types.TrainerKind]()

	global, err := NewGlobalExercise(ExerciseDetails{Name: "Squat", Category: "Strength"})
	if err != nil {
		t.Fatal(err)
	}
	custom, err := NewCustomExercise(owner, ExerciseDetails{Name: "Zercher Squat", Category: "Strength"})
	if err != nil {
		t.Fatal(err)
	}

	if !global.AvailableTo(other) || global.IsCustom() {
		t.Error("global exercise must be available to everyone")
	}
	if !custom.AvailableTo(owner) || custom.AvailableTo(other) {
		t.Error("custom exercise must be available to its owner only")
	}
	if _, err := NewGlobalExercise(ExerciseDetails{Name: "X", Category: "Strength"}); !errors.Is(err, ErrExerciseNameInvalid) {
		t.Errorf("short name: %v", err)
	}
	if _, err := NewGlobalExercise(ExerciseDetails{Name: "Plank"}); !errors.Is(err, ErrExerciseCategory) {
		t.Errorf("missing category: %v", err)
	}
}
