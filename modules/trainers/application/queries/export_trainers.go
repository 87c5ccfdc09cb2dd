package queries

import (
	"context"
	"strconv"

	"github.com/AlagappanMk24/Gymunity/internal/platform/export"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

var trainerExportHeaders = []string{
	"ID", "Name", "Handle", "Experience (Years)", "Verified", "Suspended",
	"Rating", "Total Clients", "Created At",
}

// ExportTrainersHandler builds the trainer report for the admin console.
type ExportTrainersHandler struct {
	list *ListTrainersHandler
}

func NewExportTrainersHandler(list *ListTrainersHandler) *ExportTrainersHandler {
	return &ExportTrainersHandler{list: list}
}

func (h *ExportTrainersHandler) Handle(ctx context.Context, q ListTrainersQuery) (export.Table, error) {
	var rows [][]string
	for page := 1; ; page++ {
		q.Page = types.NewPage(page, types.MaxPageSize)
		res, err := h.list.Handle(ctx, q)
		if err != nil {
			return export.Table{}, err
		}
		for _, p := range res.Items {
			rows = append(rows, []string{
				p.ID.String(),
				p.FullName,
				"@" + p.Handle,
				strconv.Itoa(p.YearsExperience),
				strconv.FormatBool(p.IsVerified),
				strconv.FormatBool(p.IsSuspended),
				strconv.FormatFloat(p.RatingAverage, 'f', 2, 64),
				strconv.Itoa(p.TotalClients),
				p.CreatedAt.Format("2006-01-02"),
			})
		}
		if page*types.MaxPageSize >= res.Total {
			break
		}
	}
	return export.Table{Title: "Trainers", Headers: trainerExportHeaders, Rows: rows}, nil
}
