// Package domain contains workout programs and the exercise library.
package domain

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

const (
	MinTitleLength       = 3
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxDurationWeeks     = 52
	MaxNotesLength       = 500
	MaxSets              = 20
	MaxRestSeconds       = 600
	MaxRepsLength        = 20
)

// Identifier kinds local to the program tree.
type (
	WeekKind        struct{}
	DayExerciseKind struct{}
)

type (
	WeekID        = types.ID[WeekKind]
	DayExerciseID = types.ID[DayExerciseKind]
)

// ProgramType classifies what a program delivers.
type ProgramType string

const (
	TypeWorkout   ProgramType = "Workout"
	TypeNutrition ProgramType = "Nutrition"
	TypeHybrid    ProgramType = "Hybrid"
)

func ParseProgramType(s string) (ProgramType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "workout":
		return TypeWorkout, nil
	case "nutrition":
		return TypeNutrition, nil
	case "hybrid":
		return TypeHybrid, nil
	default:
		return "", ErrTypeInvalid
	}
}

// ProgramDetails are the editable top-level fields of a program.
type ProgramDetails struct {
	Title         string
	Description   string
	Type          ProgramType
	DurationWeeks int
	Price         types.Money
	MaxClients    int
	ThumbnailURL  string
}

func (d ProgramDetails) validate() (ProgramDetails, error) {
	d.Title = strings.TrimSpace(d.Title)
	if n := utf8.RuneCountInString(d.Title); n < MinTitleLength || n > MaxTitleLength {
		return d, ErrTitleInvalid
	}
	d.Description = strings.TrimSpace(d.Description)
	if utf8.RuneCountInString(d.Description) > MaxDescriptionLength {
		return d, ErrDescriptionTooLong
	}
	if d.Type == "" {
		d.Type = TypeWorkout
	}
	if _, err := ParseProgramType(string(d.Type)); err != nil {
		return d, err
	}
	if d.DurationWeeks < 1 || d.DurationWeeks > MaxDurationWeeks {
		return d, ErrDurationOutOfRange
	}
	if d.MaxClients < 0 {
		return d, ErrMaxClientsInvalid
	}
	if d.Price.Currency() == "" {
		d.Price = types.MustNewMoney(d.Price.Amount(), types.DefaultCurrency)
	}
	return d, nil
}

// Program is a trainer-authored plan of weeks, days and exercises.
type Program struct {
	id        types.ProgramID
	trainerID types.TrainerID
	details   ProgramDetails
	isPublic  bool
	weeks     []*Week
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// Week groups up to seven days.
type Week struct {
	ID         WeekID
	WeekNumber int
	Days       []*Day
}

// Day is one training day of a week.
type Day struct {
	ID        types.ProgramDayID
	DayNumber int
	Title     string
	Notes     string
	Exercises []*DayExercise
}

// DayExercise prescribes one exercise on a day.
type DayExercise struct {
	ID          DayExerciseID
	ExerciseID  types.ExerciseID
	OrderIndex  int
	Sets        int
	Reps        string
	RestSeconds int
	Tempo       string
	Notes       string
}

// Prescription is the input for a new DayExercise.
type Prescription struct {
	ExerciseID  types.ExerciseID
	OrderIndex  int
	Sets        int
	Reps        string
	RestSeconds int
	Tempo       string
	Notes       string
}

func (p Prescription) validate() (Prescription, error) {
	if p.Sets < 1 || p.Sets > MaxSets {
		return p, ErrSetsOutOfRange
	}
	p.Reps = strings.TrimSpace(p.Reps)
	if utf8.RuneCountInString(p.Reps) > MaxRepsLength || utf8.RuneCountInString(p.Tempo) > MaxRepsLength {
		return p, ErrRepsInvalid
	}
	if p.RestSeconds < 0 || p.RestSeconds > MaxRestSeconds {
		return p, ErrRestOutOfRange
	}
	p.Notes = strings.TrimSpace(p.Notes)
	if utf8.RuneCountInString(p.Notes) > MaxNotesLength {
		return p, ErrNotesTooLong
	}
	return p, nil
}

func NewProgram(trainerID types.TrainerID, details ProgramDetails, isPublic bool) (*Program, error) {
	details, err := details.validate()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Program{
		id:        types.NewID[types.ProgramKind](),
		trainerID: trainerID,
		details:   details,
		isPublic:  isPublic,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ProgramState is the persisted form of a Program, weeks included.
type ProgramState struct {
	ID        types.ProgramID
	TrainerID types.TrainerID
	Details   ProgramDetails
	IsPublic  bool
	Weeks     []*Week
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func ReconstituteProgram(s ProgramState) *Program {
	return &Program{
		id:        s.ID,
		trainerID: s.TrainerID,
		details:   s.Details,
		isPublic:  s.IsPublic,
		weeks:     s.Weeks,
		createdAt: s.CreatedAt,
		updatedAt: s.UpdatedAt,
		deletedAt: s.DeletedAt,
	}
}

func (p *Program) State() ProgramState {
	return ProgramState{
		ID:        p.id,
		TrainerID: p.trainerID,
		Details:   p.details,
		IsPublic:  p.isPublic,
		Weeks:     p.weeks,
		CreatedAt: p.createdAt,
		UpdatedAt: p.updatedAt,
		DeletedAt: p.deletedAt,
	}
}

func (p *Program) ID() types.ProgramID            { return p.id }
func (p *Program) TrainerID() types.TrainerID     { return p.trainerID }
func (p *Program) Details() ProgramDetails        { return p.details }
func (p *Program) Title() string                  { return p.details.Title }
func (p *Program) IsPublic() bool                 { return p.isPublic }
func (p *Program) Weeks() []*Week                 { return p.weeks }
func (p *Program) CreatedAt() time.Time           { return p.createdAt }
func (p *Program) UpdatedAt() time.Time           { return p.updatedAt }
func (p *Program) OwnedBy(t types.TrainerID) bool { return p.trainerID == t }

// ExerciseCount counts prescribed exercises across every day.
func (p *Program) ExerciseCount() int {
	n := 0
	for _, w := range p.weeks {
		for _, d := range w.Days {
			n += len(d.Exercises)
		}
	}
	return n
}

// Update replaces the details. Shrinking the duration below the number of
// authored weeks is rejected.
func (p *Program) Update(details ProgramDetails) error {
	details, err := details.validate()
	if err != nil {
		return err
	}
	if details.DurationWeeks < len(p.weeks) {
		return ErrDurationOutOfRange
	}
	p.details = details
	p.touch()
	return nil
}

// ToggleVisibility flips isPublic and returns the new value.
func (p *Program) ToggleVisibility() bool {
	p.isPublic = !p.isPublic
	p.touch()
	return p.isPublic
}

// AddWeek appends the next week.
func (p *Program) AddWeek() (*Week, error) {
	if len(p.weeks) >= p.details.DurationWeeks {
		return nil, ErrWeekLimit
	}
	w := &Week{ID: types.NewID[WeekKind](), WeekNumber: len(p.weeks) + 1}
	p.weeks = append(p.weeks, w)
	p.touch()
	return w, nil
}

func (p *Program) week(id WeekID) (*Week, error) {
	for _, w := range p.weeks {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, ErrWeekNotFound
}

// Day finds a day anywhere in the program.
func (p *Program) Day(id types.ProgramDayID) (*Day, error) {
	for _, w := range p.weeks {
		for _, d := range w.Days {
			if d.ID == id {
				return d, nil
			}
		}
	}
	return nil, ErrDayNotFound
}

// AddDay adds a day to a week. Day numbers are unique within a week.
func (p *Program) AddDay(weekID WeekID, dayNumber int, title, notes string) (*Day, error) {
	w, err := p.week(weekID)
	if err != nil {
		return nil, err
	}
	if dayNumber < 1 || dayNumber > 7 {
		return nil, ErrDayNumberInvalid
	}
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		return nil, ErrNotesTooLong
	}
	for _, d := range w.Days {
		if d.DayNumber == dayNumber {
			return nil, ErrDayExists
		}
	}
	d := &Day{
		ID:        types.NewID[types.ProgramDayKind](),
		DayNumber: dayNumber,
		Title:     strings.TrimSpace(title),
		Notes:     notes,
	}
	w.Days = append(w.Days, d)
	sortDays(w.Days)
	p.touch()
	return d, nil
}

// AddDayExercise prescribes an exercise on a day. A zero order index puts
// it last.
func (p *Program) AddDayExercise(dayID types.ProgramDayID, in Prescription) (*DayExercise, error) {
	d, err := p.Day(dayID)
	if err != nil {
		return nil, err
	}
	in, err = in.validate()
	if err != nil {
		return nil, err
	}
	if in.OrderIndex <= 0 {
		in.OrderIndex = len(d.Exercises) + 1
	}
	e := &DayExercise{
		ID:          types.NewID[DayExerciseKind](),
		ExerciseID:  in.ExerciseID,
		OrderIndex:  in.OrderIndex,
		Sets:        in.Sets,
		Reps:        in.Reps,
		RestSeconds: in.RestSeconds,
		Tempo:       in.Tempo,
		Notes:       in.Notes,
	}
	d.Exercises = append(d.Exercises, e)
	sortExercises(d.Exercises)
	p.touch()
	return e, nil
}

// RemoveDayExercise drops a prescription from whichever day holds it.
func (p *Program) RemoveDayExercise(id DayExerciseID) error {
	for _, w := range p.weeks {
		for _, d := range w.Days {
			for i, e := range d.Exercises {
				if e.ID == id {
					d.Exercises = append(d.Exercises[:i], d.Exercises[i+1:]...)
					p.touch()
					return nil
				}
			}
		}
	}
	return ErrDayExerciseNotFound
}

// Delete hides the program from every listing. Subscribers keep their
// history.
func (p *Program) Delete(now time.Time) {
	if p.deletedAt != nil {
		return
	}
	now = now.UTC()
	p.deletedAt = &now
	p.isPublic = false
	p.updatedAt = now
}

func (p *Program) IsDeleted() bool { return p.deletedAt != nil }

func (p *Program) touch() { p.updatedAt = time.Now().UTC() }

func sortDays(days []*Day) {
	sort.SliceStable(days, func(i, j int) bool { return days[i].DayNumber < days[j].DayNumber })
}

func sortExercises(es []*DayExercise) {
	sort.SliceStable(es, func(i, j int) bool { return es[i].OrderIndex < es[j].OrderIndex })
}
