// Package persistence stores trainer profiles, reviews and client links.
package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/domain"
)

const (
	profilesTable = "trainer_profiles"

	uniqueProfileUser   = "uq_trainer_profiles_user_id"
	uniqueProfileHandle = "uq_trainer_profiles_handle"
)

var profileColumns = []string{
	"id", "user_id", "handle", "bio", "cover_image_url", "video_intro_url",
	"branding_colors", "years_experience", "is_verified", "verified_at",
	"is_suspended", "suspended_at", "rating_average", "total_clients",
	"status_image_url", "status_description", "created_at", "updated_at",
}

type profileRow struct {
	ID                types.TrainerID `db:"id"`
	UserID            types.UserID    `db:"user_id"`
	Handle            string          `db:"handle"`
	Bio               string          `db:"bio"`
	CoverImageURL     string          `db:"cover_image_url"`
	VideoIntroURL     string          `db:"video_intro_url"`
	BrandingColors    string          `db:"branding_colors"`
	YearsExperience   int             `db:"years_experience"`
	IsVerified        bool            `db:"is_verified"`
	VerifiedAt        *time.Time      `db:"verified_at"`
	IsSuspended       bool            `db:"is_suspended"`
	SuspendedAt       *time.Time      `db:"suspended_at"`
	RatingAverage     float64         `db:"rating_average"`
	TotalClients      int             `db:"total_clients"`
	StatusImageURL    string          `db:"status_image_url"`
	StatusDescription string          `db:"status_description"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func (r profileRow) toDomain() *domain.TrainerProfile {
	return domain.ReconstituteProfile(domain.ProfileState(r))
}

// PostgresProfileRepository implements ProfileRepository on PostgreSQL.
type PostgresProfileRepository struct {
	db *postgres.DB
}

func NewPostgresProfileRepository(db *postgres.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

var _ domain.ProfileRepository = (*PostgresProfileRepository)(nil)

func (r *PostgresProfileRepository) Save(ctx context.Context, p *domain.TrainerProfile) error {
	s := p.State()
	q := postgres.Builder().
		Insert(profilesTable).
		Columns(profileColumns...).
		Values(
			s.ID, s.UserID, s.Handle, s.Bio, s.CoverImageURL, s.VideoIntroURL,
			s.BrandingColors, s.YearsExperience, s.IsVerified, s.VerifiedAt,
			s.IsSuspended, s.SuspendedAt, s.RatingAverage, s.TotalClients,
			s.StatusImageURL, s.StatusDescription, s.CreatedAt, s.UpdatedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			handle = EXCLUDED.handle,
			bio = EXCLUDED.bio,
			cover_image_url = EXCLUDED.cover_image_url,
			video_intro_url = EXCLUDED.video_intro_url,
			branding_colors = EXCLUDED.branding_colors,
			years_experience = EXCLUDED.years_experience,
			is_verified = EXCLUDED.is_verified,
			verified_at = EXCLUDED.verified_at,
			is_suspended = EXCLUDED.is_suspended,
			suspended_at = EXCLUDED.suspended_at,
			rating_average = EXCLUDED.rating_average,
			total_clients = EXCLUDED.total_clients,
			status_image_url = EXCLUDED.status_image_url,
			status_description = EXCLUDED.status_description,
			updated_at = EXCLUDED.updated_at`)

	if _, err := r.db.Exec(ctx, q); err != nil {
		switch {
		case postgres.IsUniqueViolation(err, uniqueProfileUser):
			return domain.ErrProfileExists
		case postgres.IsUniqueViolation(err, uniqueProfileHandle):
			return domain.ErrHandleTaken
		}
		return fmt.Errorf("saving trainer profile: %w", err)
	}
	return nil
}

func (r *PostgresProfileRepository) findOne(ctx context.Context, pred sq.Sqlizer) (*domain.TrainerProfile, error) {
	q := postgres.Builder().Select(profileColumns...).From(profilesTable).Where(pred).Limit(1)
	var row profileRow
	if err := r.db.Get(ctx, &row, q); err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("finding trainer profile: %w", err)
	}
	return row.toDomain(), nil
}

func (r *PostgresProfileRepository) FindByID(ctx context.Context, id types.TrainerID) (*domain.TrainerProfile, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *PostgresProfileRepository) FindByUserID(ctx context.Context, userID types.UserID) (*domain.TrainerProfile, error) {
	return r.findOne(ctx, sq.Eq{"user_id": userID})
}

func (r *PostgresProfileRepository) FindByHandle(ctx context.Context, handle domain.Handle) (*domain.TrainerProfile, error) {
	return r.findOne(ctx, sq.Eq{"handle": handle.String()})
}

func (r *PostgresProfileRepository) HandleTaken(ctx context.Context, handle domain.Handle, except types.TrainerID) (bool, error) {
	q := postgres.Builder().Select("COUNT(*)").From(profilesTable).Where(sq.Eq{"handle": handle.String()})
	if !except.IsZero() {
		q = q.Where(sq.NotEq{"id": except})
	}
	n, err := r.db.Count(ctx, q)
	if err != nil {
		return false, fmt.Errorf("checking handle: %w", err)
	}
	return n > 0, nil
}

func applyProfileFilter(q sq.SelectBuilder, f domain.ProfileFilter) sq.SelectBuilder {
	if f.Listed {
		q = q.Where(sq.Eq{"is_verified": true, "is_suspended": false})
	}
	if f.IsVerified != nil {
		q = q.Where(sq.Eq{"is_verified": *f.IsVerified})
	}
	if f.IsSuspended != nil {
		q = q.Where(sq.Eq{"is_suspended": *f.IsSuspended})
	}
	if f.MinExperience > 0 {
		q = q.Where(sq.GtOrEq{"years_experience": f.MinExperience})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := postgres.Like(s)
		q = q.Where(sq.Or{sq.ILike{"handle": like}, sq.ILike{"bio": like}})
	}
	return q
}

func (r *PostgresProfileRepository) List(ctx context.Context, filter domain.ProfileFilter, page types.Page) ([]*domain.TrainerProfile, int, error) {
	total, err := r.db.Count(ctx, applyProfileFilter(postgres.Builder().Select("COUNT(*)").From(profilesTable), filter))
	if err != nil {
		return nil, 0, fmt.Errorf("counting trainer profiles: %w", err)
	}

	order := "created_at DESC"
	if filter.Listed {
		order = "rating_average DESC, total_clients DESC"
	}
	q := applyProfileFilter(postgres.Builder().Select(profileColumns...).From(profilesTable), filter).
		OrderBy(order).
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset()))

	var rows []profileRow
	if err := r.db.Select(ctx, &rows, q); err != nil {
		return nil, 0, fmt.Errorf("listing trainer profiles: %w", err)
	}
	profiles := make([]*domain.TrainerProfile, len(rows))
	for i, row := range rows {
		profiles[i] = row.toDomain()
	}
	return profiles, total, nil
}

func (r *PostgresProfileRepository) Counts(ctx context.Context) (domain.ProfileCounts, error) {
	q := postgres.Builder().
		Select(
			"COUNT(*) AS total",
			"COUNT(*) FILTER (WHERE is_verified) AS verified",
			"COUNT(*) FILTER (WHERE NOT is_verified AND NOT is_suspended) AS pending",
			"COUNT(*) FILTER (WHERE is_suspended) AS suspended",
		).
		From(profilesTable)
	var c domain.ProfileCounts
	if err := r.db.Get(ctx, &c, q); err != nil {
		return domain.ProfileCounts{}, fmt.Errorf("counting trainer profiles: %w", err)
	}
	return c, nil
}
