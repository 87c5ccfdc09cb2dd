package queries

import (
	"context"
	"strconv"
	"time"

	"github.com/AlagappanMk24/Gymunity/internal/platform/export"
	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
)

var userExportHeaders = []string{
	"ID", "Full Name", "Email", "Username", "Role", "Email Confirmed",
	"Verified", "Locked Out", "Created At", "Last Login", "Status",
}

const exportTimeLayout = "2006-01-02 15:04"

// ExportUsersHandler builds the user report behind the CSV, Excel and PDF
// downloads.
type ExportUsersHandler struct {
	repo domain.UserRepository
	now  func() time.Time
}

func NewExportUsersHandler(repo domain.UserRepository) *ExportUsersHandler {
	return &ExportUsersHandler{repo: repo, now: time.Now}
}

func (h *ExportUsersHandler) Handle(ctx context.Context, query ListUsersQuery) (export.Table, error) {
	users, err := h.repo.ListAll(ctx, query.filter())
	if err != nil {
		return export.Table{}, err
	}

	now := h.now()
	rows := make([][]string, len(users))
	for i, u := range users {
		lastLogin := "Never"
		if t := u.LastLoginAt(); t != nil {
			lastLogin = t.Format(exportTimeLayout)
		}
		rows[i] = []string{
			u.ID().String(),
			u.FullName().String(),
			u.Email().String(),
			u.UserName().String(),
			u.Role().String(),
			strconv.FormatBool(u.EmailConfirmed()),
			strconv.FormatBool(u.IsVerified()),
			strconv.FormatBool(u.IsLockedOut(now)),
			u.CreatedAt().Format(exportTimeLayout),
			lastLogin,
			u.Status(now).String(),
		}
	}
	return export.Table{Title: "Users", Headers: userExportHeaders, Rows: rows}, nil
}
