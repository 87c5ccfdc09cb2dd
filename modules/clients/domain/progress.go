package domain

import (
	"math"
	"time"
)

// ProgressWindow is the recent period counted by a progress summary.
const ProgressWindow = 30 * 24 * time.Hour

// WorkoutStats aggregates a client's workout history.
type WorkoutStats struct {
	Total        int
	Recent       int
	TotalMinutes int
	LastAt       *time.Time
}

// Progress is the headline view of how a client is doing.
type Progress struct {
	StartingWeightKg *float64
	LatestWeightKg   *float64
	// WeightChangeKg is latest minus starting weight; nil until both exist.
	WeightChangeKg     *float64
	LatestBodyFat      *float64
	WorkoutsTotal      int
	WorkoutsLast30Days int
	TotalMinutes       int
	LastWorkoutAt      *time.Time
}

// SummarizeProgress combines the profile, the latest weighed body stat and
// workout stats. profile and latest may be nil.
func SummarizeProgress(profile *Profile, latest *BodyStatLog, stats WorkoutStats) Progress {
	p := Progress{
		WorkoutsTotal:      stats.Total,
		WorkoutsLast30Days: stats.Recent,
		TotalMinutes:       stats.TotalMinutes,
		LastWorkoutAt:      stats.LastAt,
	}
	if profile != nil {
		p.StartingWeightKg = profile.Details().StartingWeightKg
	}
	if latest != nil {
		p.LatestWeightKg = latest.Details().WeightKg
		p.LatestBodyFat = latest.Details().BodyFatPercent
	}
	if p.StartingWeightKg != nil && p.LatestWeightKg != nil {
		change := math.Round((*p.LatestWeightKg-*p.StartingWeightKg)*10) / 10
		p.WeightChangeKg = &change
	}
	return p
}
