// Package queries contains the read use cases of the clients module.
package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/clients/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type BodyStatDTO struct {
	ID               types.BodyStatID `json:"id"`
	WeightKg         *float64         `json:"weightKg,omitempty"`
	BodyFatPercent   *float64         `json:"bodyFatPercent,omitempty"`
	MeasurementsJSON string           `json:"measurementsJson,omitempty"`
	PhotoFrontURL    string           `json:"photoFrontUrl,omitempty"`
	PhotoSideURL     string           `json:"photoSideUrl,omitempty"`
	PhotoBackURL     string           `json:"photoBackUrl,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	LoggedAt         time.Time        `json:"loggedAt"`
}

func toBodyStatDTO(b *domain.BodyStatLog) *BodyStatDTO {
	d := b.Details()
	return &BodyStatDTO{
		ID:               b.ID(),
		WeightKg:         d.WeightKg,
		BodyFatPercent:   d.BodyFatPercent,
		MeasurementsJSON: d.MeasurementsJSON,
		PhotoFrontURL:    d.PhotoFrontURL,
		PhotoSideURL:     d.PhotoSideURL,
		PhotoBackURL:     d.PhotoBackURL,
		Notes:            d.Notes,
		LoggedAt:         d.LoggedAt,
	}
}

type ProfileDTO struct {
	UserID           types.UserID           `json:"userId"`
	HeightCm         *int                   `json:"heightCm,omitempty"`
	StartingWeightKg *float64               `json:"startingWeightKg,omitempty"`
	Gender           *domain.Gender         `json:"gender,omitempty"`
	Goal             *domain.Goal           `json:"goal,omitempty"`
	ExperienceLevel  domain.ExperienceLevel `json:"experienceLevel"`
	LatestBodyStat   *BodyStatDTO           `json:"latestBodyStat,omitempty"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

type WorkoutLogDTO struct {
	ID                  types.WorkoutLogID `json:"id"`
	ProgramDayID        types.ProgramDayID `json:"programDayId"`
	CompletedAt         time.Time          `json:"completedAt"`
	Notes               string             `json:"notes,omitempty"`
	DurationMinutes     int                `json:"durationMinutes"`
	ExercisesLoggedJSON string             `json:"exercisesLoggedJson"`
	ExerciseCount       int                `json:"exerciseCount"`
	VolumeKg            float64            `json:"volumeKg"`
}

func toWorkoutLogDTO(w *domain.WorkoutLog) *WorkoutLogDTO {
	d := w.Details()
	return &WorkoutLogDTO{
		ID:                  w.ID(),
		ProgramDayID:        d.ProgramDayID,
		CompletedAt:         d.CompletedAt,
		Notes:               d.Notes,
		DurationMinutes:     d.DurationMinutes,
		ExercisesLoggedJSON: d.ExercisesLoggedJSON,
		ExerciseCount:       w.ExerciseCount(),
		VolumeKg:            w.Volume(),
	}
}

type ProgressDTO struct {
	UserID             types.UserID `json:"userId"`
	StartingWeightKg   *float64     `json:"startingWeightKg,omitempty"`
	LatestWeightKg     *float64     `json:"latestWeightKg,omitempty"`
	WeightChangeKg     *float64     `json:"weightChangeKg,omitempty"`
	LatestBodyFat      *float64     `json:"latestBodyFatPercent,omitempty"`
	WorkoutsTotal      int          `json:"workoutsTotal"`
	WorkoutsLast30Days int          `json:"workoutsLast30Days"`
	TotalMinutes       int          `json:"totalMinutes"`
	LastWorkoutAt      *time.Time   `json:"lastWorkoutAt,omitempty"`
}

type ClientQueries struct {
	profiles domain.ProfileRepository
	stats    domain.BodyStatRepository
	workouts domain.WorkoutLogRepository
	trainers api.TrainerDirectory
	ledger   api.SubscriptionLedger
	now      func() time.Time
}

func NewClientQueries(profiles domain.ProfileRepository, stats domain.BodyStatRepository, workouts domain.WorkoutLogRepository, trainers api.TrainerDirectory, ledger api.SubscriptionLedger) *ClientQueries {
	return &ClientQueries{
		profiles: profiles,
		stats:    stats,
		workouts: workouts,
		trainers: trainers,
		ledger:   ledger,
		now:      time.Now,
	}
}

// latest returns the newest weighed body stat, or nil when none exists.
func (q *ClientQueries) latest(ctx context.Context, userID types.UserID) (*domain.BodyStatLog, error) {
	b, err := q.stats.LatestWeighed(ctx, userID)
	if errors.Is(err, domain.ErrBodyStatNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading latest body stat: %w", err)
	}
	return b, nil
}

// Profile returns the profile of userID with its latest weighed body stat.
func (q *ClientQueries) Profile(ctx context.Context, userID types.UserID) (*ProfileDTO, error) {
	p, err := q.profiles.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	d := p.Details()
	dto := &ProfileDTO{
		UserID:           p.UserID(),
		HeightCm:         d.HeightCm,
		StartingWeightKg: d.StartingWeightKg,
		Gender:           d.Gender,
		Goal:             d.Goal,
		ExperienceLevel:  d.ExperienceLevel,
		CreatedAt:        p.CreatedAt(),
		UpdatedAt:        p.UpdatedAt(),
	}
	latest, err := q.latest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		dto.LatestBodyStat = toBodyStatDTO(latest)
	}
	return dto, nil
}

func (q *ClientQueries) BodyStats(ctx context.Context, userID types.UserID, page types.Page) (types.Paged[*BodyStatDTO], error) {
	logs, total, err := q.stats.ListByUser(ctx, userID, page)
	if err != nil {
		return types.Paged[*BodyStatDTO]{}, fmt.Errorf("listing body stats: %w", err)
	}
	items := make([]*BodyStatDTO, 0, len(logs))
	for _, b := range logs {
		items = append(items, toBodyStatDTO(b))
	}
	return types.NewPaged(items, total, page), nil
}

func (q *ClientQueries) WorkoutLogs(ctx context.Context, userID types.UserID, page types.Page) (types.Paged[*WorkoutLogDTO], error) {
	logs, total, err := q.workouts.ListByUser(ctx, userID, page)
	if err != nil {
		return types.Paged[*WorkoutLogDTO]{}, fmt.Errorf("listing workout logs: %w", err)
	}
	items := make([]*WorkoutLogDTO, 0, len(logs))
	for _, w := range logs {
		items = append(items, toWorkoutLogDTO(w))
	}
	return types.NewPaged(items, total, page), nil
}

// Progress summarizes userID's weight trend and recent training. A client
// without a profile still gets workout figures.
func (q *ClientQueries) Progress(ctx context.Context, userID types.UserID) (*ProgressDTO, error) {
	profile, err := q.profiles.FindByUser(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	latest, err := q.latest(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := q.workouts.Stats(ctx, userID, q.now().UTC().Add(-domain.ProgressWindow))
	if err != nil {
		return nil, fmt.Errorf("reading workout stats: %w", err)
	}
	p := domain.SummarizeProgress(profile, latest, stats)
	return &ProgressDTO{
		UserID:             userID,
		StartingWeightKg:   p.StartingWeightKg,
		LatestWeightKg:     p.LatestWeightKg,
		WeightChangeKg:     p.WeightChangeKg,
		LatestBodyFat:      p.LatestBodyFat,
		WorkoutsTotal:      p.WorkoutsTotal,
		WorkoutsLast30Days: p.WorkoutsLast30Days,
		TotalMinutes:       p.TotalMinutes,
		LastWorkoutAt:      p.LastWorkoutAt,
	}, nil
}

// ClientProgress lets a trainer follow a subscriber. Administrators may
// read any client.
func (q *ClientQueries) ClientProgress(ctx context.Context, viewer sharedauth.Principal, clientID types.UserID) (*ProgressDTO, error) {
	if !viewer.IsAdmin() {
		trainer, err := q.trainers.TrainerByUser(ctx, viewer.UserID)
		if errors.Is(err, api.ErrNotFound) {
			return nil, domain.ErrNotYourClient
		}
		if err != nil {
			return nil, fmt.Errorf("resolving trainer: %w", err)
		}
		_, ok, err := q.ledger.ActiveSubscription(ctx, clientID, trainer.ID)
		if err != nil {
			return nil, fmt.Errorf("checking subscription: %w", err)
		}
		if !ok {
			return nil, domain.ErrNotYourClient
		}
	}
	return q.Progress(ctx, clientID)
}
