// Package domain describes the platform figures shown on the admin
// dashboard.
package domain

import (
	"context"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

const (
	DefaultChartDays = 30
	MaxChartDays     = 365
	DefaultTopLimit  = 5
	MaxTopLimit      = 50
)

// CurrencyAmount totals completed payments of one currency.
type CurrencyAmount struct {
	Currency      string `json:"currency" db:"currency"`
	AmountCents   int64  `json:"amountCents" db:"amount_cents"`
	PlatformCents int64  `json:"platformCents" db:"platform_cents"`
	Payments      int    `json:"payments" db:"payments"`
}

// Overview is the headline view of the platform.
type Overview struct {
	UsersByRole                 map[types.Role]int `json:"usersByRole"`
	TotalUsers                  int                `json:"totalUsers"`
	ActiveSubscriptions         int                `json:"activeSubscriptions"`
	PendingReviews              int                `json:"pendingReviews"`
	PendingTrainerVerifications int                `json:"pendingTrainerVerifications"`
	RevenueThisMonth            []CurrencyAmount   `json:"revenueThisMonth"`
	RevenueTotal                []CurrencyAmount   `json:"revenueTotal"`
	GeneratedAt                 time.Time          `json:"generatedAt"`
}

// DailyRevenue is the completed payment total of one UTC day.
type DailyRevenue struct {
	Day         time.Time `db:"day"`
	AmountCents int64     `db:"amount_cents"`
	Payments    int       `db:"payments"`
}

// ChartPoint is one day of the revenue chart.
type ChartPoint struct {
	Date        string `json:"date"`
	AmountCents int64  `json:"amountCents"`
	Payments    int    `json:"payments"`
}

// RevenueChart is a zero-filled daily series of one currency.
type RevenueChart struct {
	Currency    string       `json:"currency"`
	Days        int          `json:"days"`
	Points      []ChartPoint `json:"points"`
	TotalCents  int64        `json:"totalCents"`
	PeakDate    string       `json:"peakDate,omitempty"`
	AverageDay  int64        `json:"averageDayCents"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// TopTrainer ranks trainers by clients with an active subscription.
type TopTrainer struct {
	TrainerID         types.TrainerID `json:"trainerId" db:"trainer_id"`
	UserID            types.UserID    `json:"userId" db:"user_id"`
	Handle            string          `json:"handle" db:"handle"`
	FullName          string          `json:"fullName" db:"full_name"`
	RatingAverage     float64         `json:"ratingAverage" db:"rating_average"`
	ActiveSubscribers int             `json:"activeSubscribers" db:"active_subscribers"`
}

// Source reads the figures behind the dashboard.
type Source interface {
	UsersByRole(ctx context.Context) (map[types.Role]int, error)
	ActiveSubscriptions(ctx context.Context) (int, error)
	PendingReviews(ctx context.Context) (int, error)
	PendingTrainerVerifications(ctx context.Context) (int, error)
	// Revenue sums completed payments per currency, paid at or after since
	// when it is set.
	Revenue(ctx context.Context, since *time.Time) ([]CurrencyAmount, error)
	// DailyRevenue returns days with completed payments in [from, to) only.
	DailyRevenue(ctx context.Context, currency string, from, to time.Time) ([]DailyRevenue, error)
	TopTrainers(ctx context.Context, limit int) ([]TopTrainer, error)
}

// StartOfMonth returns midnight UTC of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// StartOfDay returns midnight UTC of t's day.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ClampDays bounds a requested chart length.
func ClampDays(days int) int {
	if days < 1 {
		return DefaultChartDays
	}
	return min(days, MaxChartDays)
}

// BuildChart lays rows over the days days ending with today's, filling days
// without payments with zero.
func BuildChart(currency string, days int, today time.Time, rows []DailyRevenue) RevenueChart {
	days = ClampDays(days)
	byDay := make(map[string]DailyRevenue, len(rows))
	for _, r := range rows {
		byDay[r.Day.UTC().Format(time.DateOnly)] = r
	}
	chart := RevenueChart{Currency: currency, Days: days, Points: make([]ChartPoint, 0, days)}
	var peak int64
	first := StartOfDay(today).AddDate(0, 0, -(days - 1))
	for i := range days {
		date := first.AddDate(0, 0, i).Format(time.DateOnly)
		p := ChartPoint{Date: date}
		if r, ok := byDay[date]; ok {
			p.AmountCents, p.Payments = r.AmountCents, r.Payments
		}
		chart.TotalCents += p.AmountCents
		if p.AmountCents > peak {
			peak, chart.PeakDate = p.AmountCents, date
		}
		chart.Points = append(chart.Points, p)
	}
	chart.AverageDay = chart.TotalCents / int64(days)
	return chart
}
