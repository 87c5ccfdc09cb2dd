package queries

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/AlagappanMk24/Gymunity/internal/platform/export"
	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
)

// StatisticsDTO summarizes the account base for the admin console.
type StatisticsDTO struct {
	TotalUsers         int     `json:"totalUsers"`
	Clients            int     `json:"clients"`
	Trainers           int     `json:"trainers"`
	Admins             int     `json:"admins"`
	Suspended          int     `json:"suspended"`
	ActiveLastWeek     int     `json:"activeLastWeek"`
	NewThisMonth       int     `json:"newThisMonth"`
	ClientTrainerRatio float64 `json:"clientTrainerRatio"`
}

type StatisticsHandler struct {
	repo domain.UserRepository
	now  func() time.Time
}

func NewStatisticsHandler(repo domain.UserRepository) *StatisticsHandler {
	return &StatisticsHandler{repo: repo, now: time.Now}
}

func (h *StatisticsHandler) Handle(ctx context.Context) (StatisticsDTO, error) {
	st, err := h.repo.Statistics(ctx, h.now())
	if err != nil {
		return StatisticsDTO{}, fmt.Errorf("loading statistics: %w", err)
	}
	return StatisticsDTO{
		TotalUsers:         st.Total,
		Clients:            st.Clients,
		Trainers:           st.Trainers,
		Admins:             st.Admins,
		Suspended:          st.Suspended,
		ActiveLastWeek:     st.ActiveLastWeek,
		NewThisMonth:       st.NewThisMonth,
		ClientTrainerRatio: st.ClientTrainerRatio(),
	}, nil
}

// Table renders the statistics as a two-column report.
func (s StatisticsDTO) Table() export.Table {
	return export.Table{
		Title:   "User Statistics",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total Users", strconv.Itoa(s.TotalUsers)},
			{"Clients", strconv.Itoa(s.Clients)},
			{"Trainers", strconv.Itoa(s.Trainers)},
			{"Admins", strconv.Itoa(s.Admins)},
			{"Suspended", strconv.Itoa(s.Suspended)},
			{"Active Last 7 Days", strconv.Itoa(s.ActiveLastWeek)},
			{"New This Month", strconv.Itoa(s.NewThisMonth)},
			{"Client/Trainer Ratio", strconv.FormatFloat(s.ClientTrainerRatio, 'f', 2, 64)},
		},
	}
}
