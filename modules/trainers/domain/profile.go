// Package domain contains trainer profiles and client reviews.
package domain

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	shareddomain "github.com/AlagappanMk24/Gymunity/modules/shared/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

const (
	MaxBioLength    = 2000
	MaxStatusLength = 200
	MaxYears        = 80
)

// ProfileDetails are the fields a trainer edits freely.
type ProfileDetails struct {
	Bio             string
	CoverImageURL   string
	VideoIntroURL   string
	BrandingColors  string
	YearsExperience int
}

func (d ProfileDetails) validate() (ProfileDetails, error) {
	d.Bio = strings.TrimSpace(d.Bio)
	if utf8.RuneCountInString(d.Bio) > MaxBioLength {
		return d, ErrBioTooLong
	}
	if d.YearsExperience < 0 || d.YearsExperience > MaxYears {
		return d, ErrYearsOutOfRange
	}
	return d, nil
}

// TrainerProfile is the public storefront of a trainer account.
type TrainerProfile struct {
	shareddomain.AggregateRoot

	id                types.TrainerID
	userID            types.UserID
	handle            Handle
	details           ProfileDetails
	isVerified        bool
	verifiedAt        *time.Time
	isSuspended       bool
	suspendedAt       *time.Time
	ratingAverage     float64
	totalClients      int
	statusImageURL    string
	statusDescription string
	createdAt         time.Time
	updatedAt         time.Time
}

func NewProfile(userID types.UserID, handle Handle, details ProfileDetails) (*TrainerProfile, error) {
	details, err := details.validate()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &TrainerProfile{
		id:        types.NewID[types.TrainerKind](),
		userID:    userID,
		handle:    handle,
		details:   details,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ProfileState is the persisted form of a TrainerProfile.
type ProfileState struct {
	ID                types.TrainerID
	UserID            types.UserID
	Handle            string
	Bio               string
	CoverImageURL     string
	VideoIntroURL     string
	BrandingColors    string
	YearsExperience   int
	IsVerified        bool
	VerifiedAt        *time.Time
	IsSuspended       bool
	SuspendedAt       *time.Time
	RatingAverage     float64
	TotalClients      int
	StatusImageURL    string
	StatusDescription string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func ReconstituteProfile(s ProfileState) *TrainerProfile {
	return &TrainerProfile{
		id:     s.ID,
		userID: s.UserID,
		handle: Handle{value: s.Handle},
		details: ProfileDetails{
			Bio:             s.Bio,
			CoverImageURL:   s.CoverImageURL,
			VideoIntroURL:   s.VideoIntroURL,
			BrandingColors:  s.BrandingColors,
			YearsExperience: s.YearsExperience,
		},
		isVerified:        s.IsVerified,
		verifiedAt:        s.VerifiedAt,
		isSuspended:       s.IsSuspended,
		suspendedAt:       s.SuspendedAt,
		ratingAverage:     s.RatingAverage,
		totalClients:      s.TotalClients,
		statusImageURL:    s.StatusImageURL,
		statusDescription: s.StatusDescription,
		createdAt:         s.CreatedAt,
		updatedAt:         s.UpdatedAt,
	}
}

func (p *TrainerProfile) State() ProfileState {
	return ProfileState{
		ID:                p.id,
		UserID:            p.userID,
		Handle:            p.handle.String(),
		Bio:               p.details.Bio,
		CoverImageURL:     p.details.CoverImageURL,
		VideoIntroURL:     p.details.VideoIntroURL,
		BrandingColors:    p.details.BrandingColors,
		YearsExperience:   p.details.YearsExperience,
		IsVerified:        p.isVerified,
		VerifiedAt:        p.verifiedAt,
		IsSuspended:       p.isSuspended,
		SuspendedAt:       p.suspendedAt,
		RatingAverage:     p.ratingAverage,
		TotalClients:      p.totalClients,
		StatusImageURL:    p.statusImageURL,
		StatusDescription: p.statusDescription,
		CreatedAt:         p.createdAt,
		UpdatedAt:         p.updatedAt,
	}
}

func (p *TrainerProfile) ID() types.TrainerID       { return p.id }
func (p *TrainerProfile) UserID() types.UserID      { return p.userID }
func (p *TrainerProfile) Handle() Handle            { return p.handle }
func (p *TrainerProfile) Details() ProfileDetails   { return p.details }
func (p *TrainerProfile) IsVerified() bool          { return p.isVerified }
func (p *TrainerProfile) VerifiedAt() *time.Time    { return p.verifiedAt }
func (p *TrainerProfile) IsSuspended() bool         { return p.isSuspended }
func (p *TrainerProfile) SuspendedAt() *time.Time   { return p.suspendedAt }
func (p *TrainerProfile) RatingAverage() float64    { return p.ratingAverage }
func (p *TrainerProfile) TotalClients() int         { return p.totalClients }
func (p *TrainerProfile) StatusImageURL() string    { return p.statusImageURL }
func (p *TrainerProfile) StatusDescription() string { return p.statusDescription }
func (p *TrainerProfile) CreatedAt() time.Time      { return p.createdAt }
func (p *TrainerProfile) UpdatedAt() time.Time      { return p.updatedAt }

// IsListed reports whether the profile appears in public discovery.
func (p *TrainerProfile) IsListed() bool { return p.isVerified && !p.isSuspended }

func (p *TrainerProfile) Update(handle Handle, details ProfileDetails) error {
	details, err := details.validate()
	if err != nil {
		return err
	}
	p.handle = handle
	p.details = details
	p.touch()
	return nil
}

func (p *TrainerProfile) UpdateStatus(imageURL, description string) error {
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > MaxStatusLength {
		return ErrStatusTooLong
	}
	p.statusImageURL = strings.TrimSpace(imageURL)
	p.statusDescription = description
	p.touch()
	return nil
}

// Verify marks the trainer as vetted by an administrator.
func (p *TrainerProfile) Verify(now time.Time) {
	if p.isVerified {
		return
	}
	p.isVerified = true
	at := now.UTC()
	p.verifiedAt = &at
	p.touch()
	p.AddDomainEvent(newTrainerVerifiedEvent(p))
}

// Reject withdraws verification.
func (p *TrainerProfile) Reject() {
	p.isVerified = false
	p.verifiedAt = nil
	p.touch()
}

func (p *TrainerProfile) Suspend(now time.Time) {
	if p.isSuspended {
		return
	}
	p.isSuspended = true
	at := now.UTC()
	p.suspendedAt = &at
	p.touch()
	p.AddDomainEvent(newTrainerSuspendedEvent(p))
}

func (p *TrainerProfile) Unsuspend() {
	p.isSuspended = false
	p.suspendedAt = nil
	p.touch()
}

func (p *TrainerProfile) ClientJoined() {
	p.totalClients++
	p.touch()
}

// ClientLeft decrements the client count, never below zero.
func (p *TrainerProfile) ClientLeft() {
	if p.totalClients > 0 {
		p.totalClients--
	}
	p.touch()
}

// SetRating stores avg rounded to two decimals.
func (p *TrainerProfile) SetRating(avg float64) {
	p.ratingAverage = math.Round(avg*100) / 100
	p.touch()
}

func (p *TrainerProfile) touch() { p.updatedAt = time.Now().UTC() }
