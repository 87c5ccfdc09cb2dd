package persistence

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/domain"
)

const (
	reviewsTable = "trainer_reviews"
	linksTable   = "trainer_clients"

	uniqueReviewPerClient = "uq_trainer_reviews_trainer_client"
)

var reviewColumns = []string{
	"id", "trainer_id", "client_id", "rating", "comment", "is_edited",
	"edited_at", "is_approved", "approved_at", "is_deleted", "created_at",
}

type reviewRow struct {
	ID         types.ReviewID  `db:"id"`
	TrainerID  types.TrainerID `db:"trainer_id"`
	ClientID   types.UserID    `db:"client_id"`
	Rating     int             `db:"rating"`
	Comment    string          `db:"comment"`
	IsEdited   bool            `db:"is_edited"`
	EditedAt   *time.Time      `db:"edited_at"`
	IsApproved bool            `db:"is_approved"`
	ApprovedAt *time.Time      `db:"approved_at"`
	IsDeleted  bool            `db:"is_deleted"`
	CreatedAt  time.Time       `db:"created_at"`
}

func (r reviewRow) toDomain() *domain.Review {
	return domain.ReconstituteReview(domain.ReviewState{
		ID:         r.ID,
		TrainerID:  r.TrainerID,
		ClientID:   r.ClientID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		IsEdited:   r.IsEdited,
		EditedAt:   r.EditedAt,
		IsApproved: r.IsApproved,
		ApprovedAt: r.ApprovedAt,
		Deleted:    r.IsDeleted,
		CreatedAt:  r.CreatedAt,
	})
}

// PostgresReviewRepository implements ReviewRepository on PostgreSQL.
type PostgresReviewRepository struct {
	db *postgres.DB
}

func NewPostgresReviewRepository(db *postgres.DB) *PostgresReviewRepository {
	return &PostgresReviewRepository{db: db}
}

var _ domain.ReviewRepository = (*PostgresReviewRepository)(nil)

func (r *PostgresReviewRepository) Save(ctx context.Context, review *domain.Review) error {
	s := review.State()
	q := postgres.Builder().
		Insert(reviewsTable).
		Columns(reviewColumns...).
		Values(s.ID, s.TrainerID, s.ClientID, s.Rating, s.Comment, s.IsEdited,
			s.EditedAt, s.IsApproved, s.ApprovedAt, s.Deleted, s.CreatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			rating = EXCLUDED.rating,
			comment = EXCLUDED.comment,
			is_edited = EXCLUDED.is_edited,
			edited_at = EXCLUDED.edited_at,
			is_approved = EXCLUDED.is_approved,
			approved_at = EXCLUDED.approved_at,
			is_deleted = EXCLUDED.is_deleted`)
	if _, err := r.db.Exec(ctx, q); err != nil {
		if postgres.IsUniqueViolation(err, uniqueReviewPerClient) {
			return domain.ErrReviewExists
		}
		return fmt.Errorf("saving review: %w", err)
	}
	return nil
}

func (r *PostgresReviewRepository) selectReviews() sq.SelectBuilder {
	return postgres.Builder().Select(reviewColumns...).From(reviewsTable)
}

func (r *PostgresReviewRepository) findOne(ctx context.Context, q sq.SelectBuilder) (*domain.Review, error) {
	var row reviewRow
	if err := r.db.Get(ctx, &row, q.Limit(1)); err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("finding review: %w", err)
	}
	return row.toDomain(), nil
}

func (r *PostgresReviewRepository) FindByID(ctx context.Context, id types.ReviewID) (*domain.Review, error) {
	return r.findOne(ctx, r.selectReviews().Where(sq.Eq{"id": id}))
}

func (r *PostgresReviewRepository) FindByTrainerAndClient(ctx context.Context, trainerID types.TrainerID, clientID types.UserID) (*domain.Review, error) {
	return r.findOne(ctx, r.selectReviews().Where(sq.Eq{"trainer_id": trainerID, "client_id": clientID}))
}

func (r *PostgresReviewRepository) list(ctx context.Context, pred sq.Sqlizer, page types.Page) ([]*domain.Review, int, error) {
	total, err := r.db.Count(ctx, postgres.Builder().Select("COUNT(*)").From(reviewsTable).Where(pred))
	if err != nil {
		return nil, 0, fmt.Errorf("counting reviews: %w", err)
	}
	q := r.selectReviews().
		Where(pred).
		OrderBy("created_at DESC").
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset()))
	var rows []reviewRow
	if err := r.db.Select(ctx, &rows, q); err != nil {
		return nil, 0, fmt.Errorf("listing reviews: %w", err)
	}
	reviews := make([]*domain.Review, len(rows))
	for i, row := range rows {
		reviews[i] = row.toDomain()
	}
	return reviews, total, nil
}

func (r *PostgresReviewRepository) ListApproved(ctx context.Context, trainerID types.TrainerID, page types.Page) ([]*domain.Review, int, error) {
	return r.list(ctx, sq.Eq{"trainer_id": trainerID, "is_approved": true, "is_deleted": false}, page)
}

func (r *PostgresReviewRepository) ListPending(ctx context.Context, page types.Page) ([]*domain.Review, int, error) {
	return r.list(ctx, sq.Eq{"is_approved": false, "is_deleted": false}, page)
}

func (r *PostgresReviewRepository) CountPending(ctx context.Context) (int, error) {
	return r.db.Count(ctx, postgres.Builder().
		Select("COUNT(*)").
		From(reviewsTable).
		Where(sq.Eq{"is_approved": false, "is_deleted": false}))
}

func (r *PostgresReviewRepository) ApprovedRating(ctx context.Context, trainerID types.TrainerID) (float64, int, error) {
	q := postgres.Builder().
		Select("COALESCE(AVG(rating), 0) AS average", "COUNT(*) AS count").
		From(reviewsTable).
		Where(sq.Eq{"trainer_id": trainerID, "is_approved": true, "is_deleted": false})
	var out struct {
		Average float64 `db:"average"`
		Count   int     `db:"count"`
	}
	if err := r.db.Get(ctx, &out, q); err != nil {
		return 0, 0, fmt.Errorf("averaging ratings: %w", err)
	}
	return out.Average, out.Count, nil
}

func (r *PostgresReviewRepository) Delete(ctx context.Context, id types.ReviewID) error {
	n, err := r.db.Exec(ctx, postgres.Builder().Delete(reviewsTable).Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("deleting review: %w", err)
	}
	if n == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

// PostgresClientLinkRepository implements ClientLinkRepository on PostgreSQL.
type PostgresClientLinkRepository struct {
	db *postgres.DB
}

func NewPostgresClientLinkRepository(db *postgres.DB) *PostgresClientLinkRepository {
	return &PostgresClientLinkRepository{db: db}
}

var _ domain.ClientLinkRepository = (*PostgresClientLinkRepository)(nil)

type linkRow struct {
	TrainerID           types.TrainerID `db:"trainer_id"`
	ClientID            types.UserID    `db:"client_id"`
	ActiveSubscriptions int             `db:"active_subscriptions"`
	FirstSubscribedAt   time.Time       `db:"first_subscribed_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
}

func (r *PostgresClientLinkRepository) Find(ctx context.Context, trainerID types.TrainerID, clientID types.UserID) (*domain.ClientLink, error) {
	q := postgres.Builder().
		Select("trainer_id", "client_id", "active_subscriptions", "first_subscribed_at", "updated_at").
		From(linksTable).
		Where(sq.Eq{"trainer_id": trainerID, "client_id": clientID})
	var row linkRow
	if err := r.db.Get(ctx, &row, q); err != nil {
		if postgres.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding client link: %w", err)
	}
	link := domain.ClientLink(row)
	return &link, nil
}

func (r *PostgresClientLinkRepository) Save(ctx context.Context, link *domain.ClientLink) error {
	q := postgres.Builder().
		Insert(linksTable).
		Columns("trainer_id", "client_id", "active_subscriptions", "first_subscribed_at", "updated_at").
		Values(link.TrainerID, link.ClientID, link.ActiveSubscriptions, link.FirstSubscribedAt, link.UpdatedAt).
		Suffix(`ON CONFLICT (trainer_id, client_id) DO UPDATE SET
			active_subscriptions = EXCLUDED.active_subscriptions,
			updated_at = EXCLUDED.updated_at`)
	if _, err := r.db.Exec(ctx, q); err != nil {
		return fmt.Errorf("saving client link: %w", err)
	}
	return nil
}
