// Package persistence stores notifications.
package persistence

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/notifications/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

const table = "notifications"

var columns = []string{
	"id", "user_id", "title", "message", "type", "related_entity_id", "is_read", "read_at", "created_at",
}

type row struct {
	ID              types.NotificationID `db:"id"`
	UserID          types.UserID         `db:"user_id"`
	Title           string               `db:"title"`
	Message         string               `db:"message"`
	Type            string               `db:"type"`
	RelatedEntityID string               `db:"related_entity_id"`
	IsRead          bool                 `db:"is_read"`
	ReadAt          *time.Time           `db:"read_at"`
	CreatedAt       time.Time            `db:"created_at"`
}

func (r row) toDomain() *domain.Notification {
	return domain.Reconstitute(domain.State{
		ID:              r.ID,
		UserID:          r.UserID,
		Title:           r.Title,
		Message:         r.Message,
		Type:            domain.Type(r.Type),
		RelatedEntityID: r.RelatedEntityID,
		IsRead:          r.IsRead,
		ReadAt:          r.ReadAt,
		CreatedAt:       r.CreatedAt,
	})
}

type PostgresRepository struct {
	db *postgres.DB
}

func NewPostgresRepository(db *postgres.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ domain.Repository = (*PostgresRepository)(nil)

func (r *PostgresRepository) Save(ctx context.Context, n *domain.Notification) error {
	return r.SaveAll(ctx, []*domain.Notification{n})
}

// SaveAll writes every notification in one statement.
func (r *PostgresRepository) SaveAll(ctx context.Context, ns []*domain.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	q := postgres.Builder().Insert(table).Columns(columns...)
	for _, n := range ns {
		s := n.State()
		q = q.Values(s.ID, s.UserID, s.Title, s.Message, s.Type.String(), s.RelatedEntityID, s.IsRead, s.ReadAt, s.CreatedAt)
	}
	q = q.Suffix(`ON CONFLICT (id) DO UPDATE SET
		is_read = EXCLUDED.is_read,
		read_at = EXCLUDED.read_at`)
	if _, err := r.db.Exec(ctx, q); err != nil {
		return fmt.Errorf("saving notifications: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id types.NotificationID) (*domain.Notification, error) {
	q := postgres.Builder().Select(columns...).From(table).Where(sq.Eq{"id": id}).Limit(1)
	var out row
	if err := r.db.Get(ctx, &out, q); err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("finding notification: %w", err)
	}
	return out.toDomain(), nil
}

func where(f domain.Filter) sq.Eq {
	w := sq.Eq{"user_id": f.UserID}
	if f.UnreadOnly {
		w["is_read"] = false
	}
	return w
}

func (r *PostgresRepository) List(ctx context.Context, f domain.Filter, page types.Page) ([]*domain.Notification, int, error) {
	total, err := r.db.Count(ctx, postgres.Builder().Select("COUNT(*)").From(table).Where(where(f)))
	if err != nil {
		return nil, 0, fmt.Errorf("counting notifications: %w", err)
	}
	q := postgres.Builder().Select(columns...).From(table).
		Where(where(f)).
		OrderBy("created_at DESC").
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset()))
	var rows []row
	if err := r.db.Select(ctx, &rows, q); err != nil {
		return nil, 0, fmt.Errorf("listing notifications: %w", err)
	}
	out := make([]*domain.Notification, len(rows))
	for i, rw := range rows {
		out[i] = rw.toDomain()
	}
	return out, total, nil
}

func (r *PostgresRepository) UnreadCount(ctx context.Context, userID types.UserID) (int, error) {
	n, err := r.db.Count(ctx, postgres.Builder().Select("COUNT(*)").From(table).
		Where(where(domain.Filter{UserID: userID, UnreadOnly: true})))
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) MarkAllRead(ctx context.Context, userID types.UserID, at time.Time) (int, error) {
	q := postgres.Builder().Update(table).
		Set("is_read", true).
		Set("read_at", at).
		Where(where(domain.Filter{UserID: userID, UnreadOnly: true}))
	n, err := r.db.Exec(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("marking notifications read: %w", err)
	}
	return int(n), nil
}
