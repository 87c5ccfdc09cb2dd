package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	platformspanner "github.com/AlagappanMk24/Gymunity/internal/platform/spanner"
	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/transaction"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// SpannerDDL creates the tables the Spanner repository reads and writes.
var SpannerDDL = []string{
	`CREATE TABLE IF NOT EXISTS Users (
		UserID STRING(36) NOT NULL,
		UserName STRING(256) NOT NULL,
		Email STRING(256) NOT NULL,
		FullName STRING(100) NOT NULL,
		ProfilePhotoUrl STRING(MAX) NOT NULL,
		Role STRING(16) NOT NULL,
		IsVerified BOOL NOT NULL,
		EmailConfirmed BOOL NOT NULL,
		PasswordHash STRING(MAX) NOT NULL,
		CreatedAt TIMESTAMP NOT NULL,
		UpdatedAt TIMESTAMP NOT NULL,
		LastLoginAt TIMESTAMP,
		LockoutEnd TIMESTAMP,
		AccessFailedCount INT64 NOT NULL,
		IsDeleted BOOL NOT NULL,
	) PRIMARY KEY (UserID)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS UsersByEmail ON Users(Email)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS UsersByUserName ON Users(UserName)`,
	`CREATE TABLE IF NOT EXISTS UserLogins (
		Provider STRING(64) NOT NULL,
		ProviderKey STRING(256) NOT NULL,
		UserID STRING(36) NOT NULL,
	) PRIMARY KEY (Provider, ProviderKey)`,
}

var spannerUserColumns = []string{
	"UserID", "UserName", "Email", "FullName", "ProfilePhotoUrl", "Role",
	"IsVerified", "EmailConfirmed", "PasswordHash", "CreatedAt", "UpdatedAt",
	"LastLoginAt", "LockoutEnd", "AccessFailedCount", "IsDeleted",
}

var spannerUserSelect = "SELECT " + strings.Join(spannerUserColumns, ", ") + " FROM Users"

type spannerUser struct {
	UserID            string           `spanner:"UserID"`
	UserName          string           `spanner:"UserName"`
	Email             string           `spanner:"Email"`
	FullName          string           `spanner:"FullName"`
	ProfilePhotoUrl   string           `spanner:"ProfilePhotoUrl"`
	Role              string           `spanner:"Role"`
	IsVerified        bool             `spanner:"IsVerified"`
	EmailConfirmed    bool             `spanner:"EmailConfirmed"`
	PasswordHash      string           `spanner:"PasswordHash"`
	CreatedAt         time.Time        `spanner:"CreatedAt"`
	UpdatedAt         time.Time        `spanner:"UpdatedAt"`
	LastLoginAt       spanner.NullTime `spanner:"LastLoginAt"`
	LockoutEnd        spanner.NullTime `spanner:"LockoutEnd"`
	AccessFailedCount int64            `spanner:"AccessFailedCount"`
	IsDeleted         bool             `spanner:"IsDeleted"`
}

// SpannerRepository implements UserRepository using Cloud Spanner.
type SpannerRepository struct {
	client *spanner.Client
	// snapshots gives paged listings one consistent read timestamp.
	snapshots transaction.Scope
}

// NewSpannerRepository creates a new Spanner-backed user repository.
func NewSpannerRepository(client *spanner.Client) *SpannerRepository {
	return &SpannerRepository{
		client:    client,
		snapshots: platformspanner.NewReadOnlyTransactionScope(client),
	}
}

// Compile-time interface check.
var _ domain.UserRepository = (*SpannerRepository)(nil)

func (r *SpannerRepository) Save(ctx context.Context, user *domain.User) error {
	s := user.State()
	mutations := []*spanner.Mutation{
		spanner.InsertOrUpdate("Users", spannerUserColumns, []interface{}{
			s.ID.String(), s.UserName, s.Email, s.FullName, s.PhotoURL, s.Role.String(),
			s.IsVerified, s.EmailConfirmed, s.PasswordHash, s.CreatedAt, s.UpdatedAt,
			nullTime(s.LastLoginAt), nullTime(s.LockoutEnd), int64(s.AccessFailedCount), s.Deleted,
		}),
	}
	for _, l := range s.Logins {
		mutations = append(mutations, spanner.InsertOrUpdate("UserLogins",
			[]string{"Provider", "ProviderKey", "UserID"},
			[]interface{}{l.Provider, l.ProviderKey, s.ID.String()},
		))
	}

	// Use existing transaction if available
	if txn, ok := platformspanner.ReadWriteTxFromContext(ctx); ok {
		return txn.BufferWrite(mutations)
	}

	if _, err := r.client.Apply(ctx, mutations); err != nil {
		if spanner.ErrCode(err) == codes.AlreadyExists {
			return domain.ErrEmailExists
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *SpannerRepository) reader(ctx context.Context) (platformspanner.ReadTransaction, func()) {
	if rtx, ok := platformspanner.ReadTransactionFromContext(ctx); ok {
		return rtx, func() {}
	}
	ro := r.client.ReadOnlyTransaction()
	return ro, ro.Close
}

func (r *SpannerRepository) FindByID(ctx context.Context, id types.UserID) (*domain.User, error) {
	return r.queryOne(ctx, spanner.Statement{
		SQL:    spannerUserSelect + ` WHERE UserID = @id`,
		Params: map[string]interface{}{"id": id.String()},
	})
}

func (r *SpannerRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	return r.queryOne(ctx, spanner.Statement{
		SQL:    spannerUserSelect + `@{FORCE_INDEX=UsersByEmail} WHERE Email = @email AND IsDeleted = false`,
		Params: map[string]interface{}{"email": email.String()},
	})
}

func (r *SpannerRepository) FindByUserName(ctx context.Context, userName domain.UserName) (*domain.User, error) {
	return r.queryOne(ctx, spanner.Statement{
		SQL:    spannerUserSelect + `@{FORCE_INDEX=UsersByUserName} WHERE UserName = @name AND IsDeleted = false`,
		Params: map[string]interface{}{"name": userName.String()},
	})
}

func (r *SpannerRepository) FindByLogin(ctx context.Context, login domain.ExternalLogin) (*domain.User, error) {
	rtx, done := r.reader(ctx)
	defer done()

	row, err := rtx.ReadRow(ctx, "UserLogins", spanner.Key{login.Provider, login.ProviderKey}, []string{"UserID"})
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to read user login: %w", err)
	}
	var userID string
	if err := row.Columns(&userID); err != nil {
		return nil, fmt.Errorf("failed to scan user login: %w", err)
	}
	id, err := types.ParseUserID(userID)
	if err != nil {
		return nil, err
	}
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsDeleted() {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *SpannerRepository) FindByIDs(ctx context.Context, ids []types.UserID) ([]*domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	return r.query(ctx, spanner.Statement{
		SQL:    spannerUserSelect + ` WHERE UserID IN UNNEST(@ids)`,
		Params: map[string]interface{}{"ids": raw},
	})
}

func (r *SpannerRepository) EmailTaken(ctx context.Context, email domain.Email, except types.UserID) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM Users@{FORCE_INDEX=UsersByEmail} WHERE Email = @value AND UserID != @except LIMIT 1`, email.String(), except)
}

func (r *SpannerRepository) UserNameTaken(ctx context.Context, userName domain.UserName, except types.UserID) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM Users@{FORCE_INDEX=UsersByUserName} WHERE UserName = @value AND UserID != @except LIMIT 1`, userName.String(), except)
}

func (r *SpannerRepository) exists(ctx context.Context, sql, value string, except types.UserID) (bool, error) {
	rtx, done := r.reader(ctx)
	defer done()

	iter := rtx.Query(ctx, spanner.Statement{
		SQL:    sql,
		Params: map[string]interface{}{"value": value, "except": except.String()},
	})
	defer iter.Stop()

	_, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return true, nil
}

// filterClause renders filter as a WHERE clause with its parameters.
func filterClause(f domain.UserFilter) (string, map[string]interface{}) {
	var conds []string
	params := map[string]interface{}{}
	if !f.IncludeDeleted {
		conds = append(conds, "IsDeleted = false")
	}
	if f.Role != nil {
		conds = append(conds, "Role = @role")
		params["role"] = f.Role.String()
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		conds = append(conds, "(STRPOS(LOWER(FullName), @search) > 0 OR STRPOS(Email, @search) > 0 OR STRPOS(UserName, @search) > 0)")
		params["search"] = s
	}
	if len(conds) == 0 {
		return "", params
	}
	return " WHERE " + strings.Join(conds, " AND "), params
}

type userPage struct {
	users []*domain.User
	total int
}

// List counts and reads the page in one snapshot unless ctx already carries
// a transaction.
func (r *SpannerRepository) List(ctx context.Context, filter domain.UserFilter, page types.Page) ([]*domain.User, int, error) {
	if _, ok := platformspanner.ReadTransactionFromContext(ctx); ok {
		res, err := r.list(ctx, filter, page)
		return res.users, res.total, err
	}
	res, err := transaction.ExecuteWithResult(ctx, r.snapshots, func(ctx context.Context) (userPage, error) {
		return r.list(ctx, filter, page)
	})
	return res.users, res.total, err
}

func (r *SpannerRepository) list(ctx context.Context, filter domain.UserFilter, page types.Page) (userPage, error) {
	where, params := filterClause(filter)

	total, err := r.count(ctx, spanner.Statement{SQL: "SELECT COUNT(*) FROM Users" + where, Params: params})
	if err != nil {
		return userPage{}, err
	}

	listParams := map[string]interface{}{"limit": int64(page.Size), "offset": int64(page.Offset())}
	for k, v := range params {
		listParams[k] = v
	}
	users, err := r.query(ctx, spanner.Statement{
		SQL:    spannerUserSelect + where + ` ORDER BY CreatedAt DESC LIMIT @limit OFFSET @offset`,
		Params: listParams,
	})
	if err != nil {
		return userPage{}, err
	}
	return userPage{users: users, total: total}, nil
}

func (r *SpannerRepository) ListAll(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	where, params := filterClause(filter)
	return r.query(ctx, spanner.Statement{SQL: spannerUserSelect + where + ` ORDER BY CreatedAt DESC`, Params: params})
}

func (r *SpannerRepository) CountByRole(ctx context.Context, role types.Role) (int, error) {
	return r.count(ctx, spanner.Statement{
		SQL:    `SELECT COUNT(*) FROM Users WHERE Role = @role AND IsDeleted = false`,
		Params: map[string]interface{}{"role": role.String()},
	})
}

func (r *SpannerRepository) Statistics(ctx context.Context, now time.Time) (domain.Statistics, error) {
	rtx, done := r.reader(ctx)
	defer done()

	iter := rtx.Query(ctx, spanner.Statement{
		SQL: `SELECT
			COUNT(*),
			COUNTIF(Role = 'Client'),
			COUNTIF(Role = 'Trainer'),
			COUNTIF(Role = 'Admin'),
			COUNTIF(LockoutEnd >= @suspended),
			COUNTIF(LastLoginAt >= @weekAgo),
			COUNTIF(CreatedAt >= @monthStart)
		FROM Users WHERE IsDeleted = false`,
		Params: map[string]interface{}{
			"suspended":  domain.SuspendedUntil,
			"weekAgo":    now.AddDate(0, 0, -7),
			"monthStart": time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()),
		},
	})
	defer iter.Stop()

	row, err := iter.Next()
	if err != nil {
		return domain.Statistics{}, fmt.Errorf("failed to compute user statistics: %w", err)
	}
	var c [7]int64
	if err := row.Columns(&c[0], &c[1], &c[2], &c[3], &c[4], &c[5], &c[6]); err != nil {
		return domain.Statistics{}, fmt.Errorf("failed to scan user statistics: %w", err)
	}
	return domain.Statistics{
		Total:          int(c[0]),
		Clients:        int(c[1]),
		Trainers:       int(c[2]),
		Admins:         int(c[3]),
		Suspended:      int(c[4]),
		ActiveLastWeek: int(c[5]),
		NewThisMonth:   int(c[6]),
	}, nil
}

func (r *SpannerRepository) count(ctx context.Context, stmt spanner.Statement) (int, error) {
	rtx, done := r.reader(ctx)
	defer done()

	iter := rtx.Query(ctx, stmt)
	defer iter.Stop()

	row, err := iter.Next()
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	var n int64
	if err := row.Columns(&n); err != nil {
		return 0, fmt.Errorf("failed to scan count: %w", err)
	}
	return int(n), nil
}

func (r *SpannerRepository) queryOne(ctx context.Context, stmt spanner.Statement) (*domain.User, error) {
	stmt.SQL += " LIMIT 1"
	users, err := r.query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, domain.ErrUserNotFound
	}
	user := users[0]

	logins, err := r.logins(ctx, user.ID())
	if err != nil {
		return nil, err
	}
	state := user.State()
	state.Logins = logins
	return domain.Reconstitute(state), nil
}

func (r *SpannerRepository) logins(ctx context.Context, id types.UserID) ([]domain.ExternalLogin, error) {
	rtx, done := r.reader(ctx)
	defer done()

	iter := rtx.Query(ctx, spanner.Statement{
		SQL:    `SELECT Provider, ProviderKey FROM UserLogins WHERE UserID = @id`,
		Params: map[string]interface{}{"id": id.String()},
	})
	defer iter.Stop()

	var logins []domain.ExternalLogin
	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return logins, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query user logins: %w", err)
		}
		var l domain.ExternalLogin
		if err := row.Columns(&l.Provider, &l.ProviderKey); err != nil {
			return nil, fmt.Errorf("failed to scan user login: %w", err)
		}
		logins = append(logins, l)
	}
}

func (r *SpannerRepository) query(ctx context.Context, stmt spanner.Statement) ([]*domain.User, error) {
	rtx, done := r.reader(ctx)
	defer done()

	iter := rtx.Query(ctx, stmt)
	defer iter.Stop()

	var users []*domain.User
	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return users, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query users: %w", err)
		}
		user, err := scanSpannerUser(row)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
}

func scanSpannerUser(row *spanner.Row) (*domain.User, error) {
	var su spannerUser
	if err := row.ToStruct(&su); err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	id, err := types.ParseUserID(su.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user id: %w", err)
	}
	return domain.Reconstitute(domain.UserState{
		ID:                id,
		UserName:          su.UserName,
		Email:             su.Email,
		FullName:          su.FullName,
		PhotoURL:          su.ProfilePhotoUrl,
		Role:              types.Role(su.Role),
		IsVerified:        su.IsVerified,
		EmailConfirmed:    su.EmailConfirmed,
		PasswordHash:      su.PasswordHash,
		CreatedAt:         su.CreatedAt,
		UpdatedAt:         su.UpdatedAt,
		LastLoginAt:       timePtr(su.LastLoginAt),
		LockoutEnd:        timePtr(su.LockoutEnd),
		AccessFailedCount: int(su.AccessFailedCount),
		Deleted:           su.IsDeleted,
	}), nil
}

func nullTime(t *time.Time) spanner.NullTime {
	if t == nil {
		return spanner.NullTime{}
	}
	return spanner.NullTime{Time: *t, Valid: true}
}

func timePtr(t spanner.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
