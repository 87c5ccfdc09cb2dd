// Package persistence stores packages and their program links.
package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/packages/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

const (
	packagesTable = "packages"
	linksTable    = "package_programs"
)

var packageColumns = []string{
	"id", "trainer_id", "name", "description", "price_monthly_cents", "price_yearly_cents",
	"currency", "features", "is_active", "thumbnail_url", "promo_code",
	"created_at", "updated_at", "deleted_at",
}

type packageRow struct {
	ID                types.PackageID `db:"id"`
	TrainerID         types.TrainerID `db:"trainer_id"`
	Name              string          `db:"name"`
	Description       string          `db:"description"`
	PriceMonthlyCents int64           `db:"price_monthly_cents"`
	PriceYearlyCents  *int64          `db:"price_yearly_cents"`
	Currency          string          `db:"currency"`
	Features          string          `db:"features"`
	IsActive          bool            `db:"is_active"`
	ThumbnailURL      string          `db:"thumbnail_url"`
	PromoCode         string          `db:"promo_code"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
	DeletedAt         *time.Time      `db:"deleted_at"`
}

func (r packageRow) toDomain(programs []types.ProgramID) *domain.Package {
	monthly, err := types.NewMoney(r.PriceMonthlyCents, r.Currency)
	if err != nil {
		monthly = types.MustNewMoney(r.PriceMonthlyCents, types.DefaultCurrency)
	}
	var yearly *types.Money
	if r.PriceYearlyCents != nil {
		y := types.MustNewMoney(*r.PriceYearlyCents, monthly.Currency())
		yearly = &y
	}
	return domain.ReconstitutePackage(domain.PackageState{
		ID:        r.ID,
		TrainerID: r.TrainerID,
		Details: domain.PackageDetails{
			Name:         r.Name,
			Description:  r.Description,
			PriceMonthly: monthly,
			PriceYearly:  yearly,
			Features:     domain.Features(r.Features),
			ThumbnailURL: r.ThumbnailURL,
			PromoCode:    r.PromoCode,
			ProgramIDs:   programs,
		},
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		DeletedAt: r.DeletedAt,
	})
}

type linkRow struct {
	PackageID types.PackageID `db:"package_id"`
	ProgramID types.ProgramID `db:"program_id"`
}

// PostgresPackageRepository implements PackageRepository on PostgreSQL.
// Save replaces the program links, so it must run inside a transaction.
type PostgresPackageRepository struct {
	db *postgres.DB
}

func NewPostgresPackageRepository(db *postgres.DB) *PostgresPackageRepository {
	return &PostgresPackageRepository{db: db}
}

var _ domain.PackageRepository = (*PostgresPackageRepository)(nil)

func (r *PostgresPackageRepository) Save(ctx context.Context, p *domain.Package) error {
	s := p.State()
	d := s.Details
	var yearly *int64
	if d.PriceYearly != nil {
		amount := d.PriceYearly.Amount()
		yearly = &amount
	}
	q := postgres.Builder().
		Insert(packagesTable).
		Columns(packageColumns...).
		Values(
			s.ID, s.TrainerID, d.Name, d.Description, d.PriceMonthly.Amount(), yearly,
			d.PriceMonthly.Currency(), string(d.Features), s.IsActive, d.ThumbnailURL, d.PromoCode,
			s.CreatedAt, s.UpdatedAt, s.DeletedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price_monthly_cents = EXCLUDED.price_monthly_cents,
			price_yearly_cents = EXCLUDED.price_yearly_cents,
			currency = EXCLUDED.currency,
			features = EXCLUDED.features,
			is_active = EXCLUDED.is_active,
			thumbnail_url = EXCLUDED.thumbnail_url,
			promo_code = EXCLUDED.promo_code,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at`)
	if _, err := r.db.Exec(ctx, q); err != nil {
		return fmt.Errorf("saving package: %w", err)
	}

	if _, err := r.db.Exec(ctx, postgres.Builder().Delete(linksTable).Where(sq.Eq{"package_id": s.ID})); err != nil {
		return fmt.Errorf("clearing package programs: %w", err)
	}
	if len(d.ProgramIDs) == 0 {
		return nil
	}
	lq := postgres.Builder().Insert(linksTable).Columns("package_id", "program_id")
	for _, id := range d.ProgramIDs {
		lq = lq.Values(s.ID, id)
	}
	if _, err := r.db.Exec(ctx, lq); err != nil {
		return fmt.Errorf("saving package programs: %w", err)
	}
	return nil
}

// programsOf loads the program links of every id in one query.
func (r *PostgresPackageRepository) programsOf(ctx context.Context, ids []types.PackageID) (map[types.PackageID][]types.ProgramID, error) {
	out := make(map[types.PackageID][]types.ProgramID, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []linkRow
	q := postgres.Builder().Select("package_id", "program_id").From(linksTable).
		Where(sq.Eq{"package_id": ids}).
		OrderBy("package_id", "program_id")
	if err := r.db.Select(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("loading package programs: %w", err)
	}
	for _, row := range rows {
		out[row.PackageID] = append(out[row.PackageID], row.ProgramID)
	}
	return out, nil
}

func (r *PostgresPackageRepository) FindByID(ctx context.Context, id types.PackageID) (*domain.Package, error) {
	q := postgres.Builder().Select(packageColumns...).From(packagesTable).
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		Limit(1)
	var row packageRow
	if err := r.db.Get(ctx, &row, q); err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrPackageNotFound
		}
		return nil, fmt.Errorf("finding package: %w", err)
	}
	links, err := r.programsOf(ctx, []types.PackageID{id})
	if err != nil {
		return nil, err
	}
	return row.toDomain(links[id]), nil
}

func applyFilter(q sq.SelectBuilder, f domain.PackageFilter) sq.SelectBuilder {
	q = q.Where(sq.Eq{"deleted_at": nil})
	if f.TrainerID != nil {
		q = q.Where(sq.Eq{"trainer_id": *f.TrainerID})
	}
	if f.IsActive != nil {
		q = q.Where(sq.Eq{"is_active": *f.IsActive})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := postgres.Like(s)
		q = q.Where(sq.Or{sq.ILike{"name": like}, sq.ILike{"description": like}})
	}
	return q
}

func (r *PostgresPackageRepository) List(ctx context.Context, filter domain.PackageFilter, page types.Page) ([]*domain.Package, int, error) {
	total, err := r.db.Count(ctx, applyFilter(postgres.Builder().Select("COUNT(*)").From(packagesTable), filter))
	if err != nil {
		return nil, 0, fmt.Errorf("counting packages: %w", err)
	}
	q := applyFilter(postgres.Builder().Select(packageColumns...).From(packagesTable), filter).
		OrderBy("price_monthly_cents", "created_at DESC").
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset()))
	var rows []packageRow
	if err := r.db.Select(ctx, &rows, q); err != nil {
		return nil, 0, fmt.Errorf("listing packages: %w", err)
	}
	ids := make([]types.PackageID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	links, err := r.programsOf(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	pkgs := make([]*domain.Package, len(rows))
	for i, row := range rows {
		pkgs[i] = row.toDomain(links[row.ID])
	}
	return pkgs, total, nil
}
