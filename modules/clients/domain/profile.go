// Package domain holds a client's fitness profile and training history.
package domain

import (
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

func ParseGender(s string) (Gender, error) {
	switch g := Gender(s); g {
	case GenderMale, GenderFemale:
		return g, nil
	}
	return "", ErrInvalidGender
}

type Goal string

const (
	GoalWeightLoss  Goal = "WeightLoss"
	GoalMuscleGain  Goal = "MuscleGain"
	GoalMaintenance Goal = "Maintenance"
	GoalStrength    Goal = "Strength"
	GoalEndurance   Goal = "Endurance"
)

func ParseGoal(s string) (Goal, error) {
	switch g := Goal(s); g {
	case GoalWeightLoss, GoalMuscleGain, GoalMaintenance, GoalStrength, GoalEndurance:
		return g, nil
	}
	return "", ErrInvalidGoal
}

type ExperienceLevel string

const (
	LevelBeginner     ExperienceLevel = "Beginner"
	LevelIntermediate ExperienceLevel = "Intermediate"
	LevelAdvanced     ExperienceLevel = "Advanced"
)

func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	switch l := ExperienceLevel(s); l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return l, nil
	}
	return "", ErrInvalidExperienceLevel
}

// ProfileDetails holds the editable fields of a profile. Optional
// measurements are nil when the client has not shared them.
type ProfileDetails struct {
	HeightCm         *int
	StartingWeightKg *float64
	Gender           *Gender
	Goal             *Goal
	ExperienceLevel  ExperienceLevel
}

func (d ProfileDetails) validate() (ProfileDetails, error) {
	if d.HeightCm != nil && (*d.HeightCm < 50 || *d.HeightCm > 300) {
		return d, ErrHeightOutOfRange
	}
	if d.StartingWeightKg != nil && (*d.StartingWeightKg < 20 || *d.StartingWeightKg > 500) {
		return d, ErrStartingWeightRange
	}
	if d.Gender != nil {
		if _, err := ParseGender(string(*d.Gender)); err != nil {
			return d, err
		}
	}
	if d.Goal != nil {
		if _, err := ParseGoal(string(*d.Goal)); err != nil {
			return d, err
		}
	}
	if d.ExperienceLevel == "" {
		d.ExperienceLevel = LevelBeginner
	}
	if _, err := ParseExperienceLevel(string(d.ExperienceLevel)); err != nil {
		return d, err
	}
	return d, nil
}

// Profile is the fitness profile of a client account. There is at most one
// per user.
type Profile struct {
	userID    types.UserID
	details   ProfileDetails
	createdAt time.Time
	updatedAt time.Time
}

func NewProfile(userID types.UserID, d ProfileDetails) (*Profile, error) {
	d, err := d.validate()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Profile{userID: userID, details: d, createdAt: now, updatedAt: now}, nil
}

// Update replaces the editable fields.
func (p *Profile) Update(d ProfileDetails) error {
	d, err := d.validate()
	if err != nil {
		return err
	}
	p.details = d
	p.updatedAt = time.Now().UTC()
	return nil
}

type ProfileState struct {
	UserID    types.UserID
	Details   ProfileDetails
	CreatedAt time.Time
	UpdatedAt time.Time
}

func ReconstituteProfile(s ProfileState) *Profile {
	return &Profile{userID: s.UserID, details: s.Details, createdAt: s.CreatedAt, updatedAt: s.UpdatedAt}
}

func (p *Profile) State() ProfileState {
	return ProfileState{UserID: p.userID, Details: p.details, CreatedAt: p.createdAt, UpdatedAt: p.updatedAt}
}

func (p *Profile) UserID() types.UserID    { return p.userID }
func (p *Profile) Details() ProfileDetails { return p.details }
func (p *Profile) CreatedAt() time.Time    { return p.createdAt }
func (p *Profile) UpdatedAt() time.Time    { return p.updatedAt }
