package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

const (
	usersTable      = "users"
	userLoginsTable = "user_logins"

	uniqueEmail    = "uq_users_email"
	uniqueUserName = "uq_users_user_name"
)

var userColumns = []string{
	"id", "user_name", "email", "full_name", "profile_photo_url", "role",
	"is_verified", "email_confirmed", "password_hash", "created_at", "updated_at",
	"last_login_at", "lockout_end", "access_failed_count", "is_deleted",
}

type userRow struct {
	ID                types.UserID `db:"id"`
	UserName          string       `db:"user_name"`
	Email             string       `db:"email"`
	FullName          string       `db:"full_name"`
	ProfilePhotoURL   string       `db:"profile_photo_url"`
	Role              string       `db:"role"`
	IsVerified        bool         `db:"is_verified"`
	EmailConfirmed    bool         `db:"email_confirmed"`
	PasswordHash      string       `db:"password_hash"`
	CreatedAt         time.Time    `db:"created_at"`
	UpdatedAt         time.Time    `db:"updated_at"`
	LastLoginAt       *time.Time   `db:"last_login_at"`
	LockoutEnd        *time.Time   `db:"lockout_end"`
	AccessFailedCount int          `db:"access_failed_count"`
	IsDeleted         bool         `db:"is_deleted"`
}

func (r userRow) toDomain(logins []domain.ExternalLogin) *domain.User {
	return domain.Reconstitute(domain.UserState{
		ID:                r.ID,
		UserName:          r.UserName,
		Email:             r.Email,
		FullName:          r.FullName,
		PhotoURL:          r.ProfilePhotoURL,
		Role:              types.Role(r.Role),
		IsVerified:        r.IsVerified,
		EmailConfirmed:    r.EmailConfirmed,
		PasswordHash:      r.PasswordHash,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		LastLoginAt:       r.LastLoginAt,
		LockoutEnd:        r.LockoutEnd,
		AccessFailedCount: r.AccessFailedCount,
		Deleted:           r.IsDeleted,
		Logins:            logins,
	})
}

type loginRow struct {
	Provider    string `db:"provider"`
	ProviderKey string `db:"provider_key"`
}

// PostgresRepository implements UserRepository on PostgreSQL.
type PostgresRepository struct {
	db *postgres.DB
}

func NewPostgresRepository(db *postgres.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Compile-time interface check.
var _ domain.UserRepository = (*PostgresRepository)(nil)

func (r *PostgresRepository) Save(ctx context.Context, user *domain.User) error {
	s := user.State()
	q := postgres.Builder().
		Insert(usersTable).
		Columns(userColumns...).
		Values(
			s.ID, s.UserName, s.Email, s.FullName, s.PhotoURL, s.Role.String(),
			s.IsVerified, s.EmailConfirmed, s.PasswordHash, s.CreatedAt, s.UpdatedAt,
			s.LastLoginAt, s.LockoutEnd, s.AccessFailedCount, s.Deleted,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			user_name = EXCLUDED.user_name,
			email = EXCLUDED.email,
			full_name = EXCLUDED.full_name,
			profile_photo_url = EXCLUDED.profile_photo_url,
			role = EXCLUDED.role,
			is_verified = EXCLUDED.is_verified,
			email_confirmed = EXCLUDED.email_confirmed,
			password_hash = EXCLUDED.password_hash,
			updated_at = EXCLUDED.updated_at,
			last_login_at = EXCLUDED.last_login_at,
			lockout_end = EXCLUDED.lockout_end,
			access_failed_count = EXCLUDED.access_failed_count,
			is_deleted = EXCLUDED.is_deleted`)

	if _, err := r.db.Exec(ctx, q); err != nil {
		switch {
		case postgres.IsUniqueViolation(err, uniqueEmail):
			return domain.ErrEmailExists
		case postgres.IsUniqueViolation(err, uniqueUserName):
			return domain.ErrUserNameExists
		}
		return fmt.Errorf("saving user: %w", err)
	}

	for _, l := range s.Logins {
		q := postgres.Builder().
			Insert(userLoginsTable).
			Columns("provider", "provider_key", "user_id").
			Values(l.Provider, l.ProviderKey, s.ID).
			Suffix("ON CONFLICT (provider, provider_key) DO NOTHING")
		if _, err := r.db.Exec(ctx, q); err != nil {
			return fmt.Errorf("saving user login: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) selectUsers() sq.SelectBuilder {
	return postgres.Builder().Select(userColumns...).From(usersTable)
}

func (r *PostgresRepository) findOne(ctx context.Context, q sq.SelectBuilder) (*domain.User, error) {
	var row userRow
	if err := r.db.Get(ctx, &row, q.Limit(1)); err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}

	var logins []loginRow
	lq := postgres.Builder().
		Select("provider", "provider_key").
		From(userLoginsTable).
		Where(sq.Eq{"user_id": row.ID})
	if err := r.db.Select(ctx, &logins, lq); err != nil {
		return nil, fmt.Errorf("finding user logins: %w", err)
	}
	ext := make([]domain.ExternalLogin, len(logins))
	for i, l := range logins {
		ext[i] = domain.ExternalLogin{Provider: l.Provider, ProviderKey: l.ProviderKey}
	}
	return row.toDomain(ext), nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id types.UserID) (*domain.User, error) {
	return r.findOne(ctx, r.selectUsers().Where(sq.Eq{"id": id}))
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	return r.findOne(ctx, r.selectUsers().Where(sq.Eq{"email": email.String(), "is_deleted": false}))
}

func (r *PostgresRepository) FindByUserName(ctx context.Context, userName domain.UserName) (*domain.User, error) {
	return r.findOne(ctx, r.selectUsers().Where(sq.Eq{"user_name": userName.String(), "is_deleted": false}))
}

func (r *PostgresRepository) FindByLogin(ctx context.Context, login domain.ExternalLogin) (*domain.User, error) {
	// Question placeholders; the outer builder renumbers them.
	linked := sq.Select("user_id").
		From(userLoginsTable).
		Where(sq.Eq{"provider": login.Provider, "provider_key": login.ProviderKey})
	return r.findOne(ctx, r.selectUsers().
		Where(sq.Expr("id IN (?)", linked)).
		Where(sq.Eq{"is_deleted": false}))
}

func (r *PostgresRepository) FindByIDs(ctx context.Context, ids []types.UserID) ([]*domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []userRow
	if err := r.db.Select(ctx, &rows, r.selectUsers().Where(sq.Eq{"id": ids})); err != nil {
		return nil, fmt.Errorf("finding users: %w", err)
	}
	return toUsers(rows), nil
}

func (r *PostgresRepository) EmailTaken(ctx context.Context, email domain.Email, except types.UserID) (bool, error) {
	return r.exists(ctx, sq.Eq{"email": email.String()}, except)
}

func (r *PostgresRepository) UserNameTaken(ctx context.Context, userName domain.UserName, except types.UserID) (bool, error) {
	return r.exists(ctx, sq.Eq{"user_name": userName.String()}, except)
}

func (r *PostgresRepository) exists(ctx context.Context, pred sq.Eq, except types.UserID) (bool, error) {
	q := postgres.Builder().Select("COUNT(*)").From(usersTable).Where(pred)
	if !except.IsZero() {
		q = q.Where(sq.NotEq{"id": except})
	}
	n, err := r.db.Count(ctx, q)
	if err != nil {
		return false, fmt.Errorf("checking uniqueness: %w", err)
	}
	return n > 0, nil
}

func applyFilter(q sq.SelectBuilder, f domain.UserFilter) sq.SelectBuilder {
	if !f.IncludeDeleted {
		q = q.Where(sq.Eq{"is_deleted": false})
	}
	if f.Role != nil {
		q = q.Where(sq.Eq{"role": f.Role.String()})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := postgres.Like(s)
		q = q.Where(sq.Or{
			sq.ILike{"full_name": like},
			sq.ILike{"email": like},
			sq.ILike{"user_name": like},
		})
	}
	return q
}

func (r *PostgresRepository) List(ctx context.Context, filter domain.UserFilter, page types.Page) ([]*domain.User, int, error) {
	total, err := r.db.Count(ctx, applyFilter(postgres.Builder().Select("COUNT(*)").From(usersTable), filter))
	if err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}

	q := applyFilter(r.selectUsers(), filter).
		OrderBy("created_at DESC").
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset()))
	var rows []userRow
	if err := r.db.Select(ctx, &rows, q); err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}
	return toUsers(rows), total, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	var rows []userRow
	if err := r.db.Select(ctx, &rows, applyFilter(r.selectUsers(), filter).OrderBy("created_at DESC")); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return toUsers(rows), nil
}

func (r *PostgresRepository) CountByRole(ctx context.Context, role types.Role) (int, error) {
	q := postgres.Builder().
		Select("COUNT(*)").
		From(usersTable).
		Where(sq.Eq{"role": role.String(), "is_deleted": false})
	return r.db.Count(ctx, q)
}

func (r *PostgresRepository) Statistics(ctx context.Context, now time.Time) (domain.Statistics, error) {
	weekAgo := now.AddDate(0, 0, -7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	q := postgres.Builder().
		Select(
			"COUNT(*) AS total",
			"COUNT(*) FILTER (WHERE role = 'Client') AS clients",
			"COUNT(*) FILTER (WHERE role = 'Trainer') AS trainers",
			"COUNT(*) FILTER (WHERE role = 'Admin') AS admins",
		).
		Column(sq.Expr("COUNT(*) FILTER (WHERE lockout_end >= ?) AS suspended", domain.SuspendedUntil)).
		Column(sq.Expr("COUNT(*) FILTER (WHERE last_login_at >= ?) AS active_last_week", weekAgo)).
		Column(sq.Expr("COUNT(*) FILTER (WHERE created_at >= ?) AS new_this_month", monthStart)).
		From(usersTable).
		Where(sq.Eq{"is_deleted": false})

	var st domain.Statistics
	if err := r.db.Get(ctx, &st, q); err != nil {
		return domain.Statistics{}, fmt.Errorf("computing user statistics: %w", err)
	}
	return st, nil
}

func toUsers(rows []userRow) []*domain.User {
	users := make([]*domain.User, len(rows))
	for i, row := range rows {
		users[i] = row.toDomain(nil)
	}
	return users
}
