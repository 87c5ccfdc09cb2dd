package persistence_test

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/packages/domain"
	"github.com/AlagappanMk24/Gymunity/modules/packages/infrastructure/persistence"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func newMockDB(t *testing.T) (*postgres.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return postgres.NewDB(sqlx.NewDb(raw, "postgres")), mock
}

var packageRowColumns = []string{
	"id", "trainer_id", "name", "description", "price_monthly_cents", "price_yearly_cents",
	"currency", "features", "is_active", "thumbnail_url", "promo_code",
	"created_at", "updated_at", "deleted_at",
}

func TestPostgresPackageRepository_FindByIDLoadsPrograms(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresPackageRepository(db)
	id := types.NewID[types.PackageKind]()
	programID := types.NewID[types.ProgramKind]()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM packages WHERE deleted_at IS NULL AND id = \$1 LIMIT 1`).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(packageRowColumns).AddRow(
			id.String(), types.NewID[types.TrainerKind]().String(), "Starter Pack", "", 2999, 29999,
			"EGP", []byte(`{"priorityMessaging":true}`), true, "", "STARTER6", now, now, nil,
		))
	mock.ExpectQuery(`SELECT package_id, program_id FROM package_programs WHERE package_id IN \(\$1\)`).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows([]string{"package_id", "program_id"}).AddRow(id.String(), programID.String()))

	p, err := repo.FindByID(context.Background(), id)

	require.NoError(t, err)
	d := p.Details()
	assert.Equal(t, "EGP", d.PriceMonthly.Currency())
	require.NotNil(t, d.PriceYearly)
	assert.Equal(t, int64(29999), d.PriceYearly.Amount())
	assert.True(t, d.Features.Enabled("priorityMessaging"))
	assert.Equal(t, []types.ProgramID{programID}, d.ProgramIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPackageRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresPackageRepository(db)
	mock.ExpectQuery(`SELECT (.+) FROM packages`).WillReturnRows(sqlmock.NewRows(packageRowColumns))

	_, err := repo.FindByID(context.Background(), types.NewID[types.PackageKind]())

	assert.ErrorIs(t, err, domain.ErrPackageNotFound)
}

func TestPostgresPackageRepository_SaveReplacesProgramLinks(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresPackageRepository(db)
	p, err := domain.NewPackage(types.NewID[types.TrainerKind](), domain.PackageDetails{
		Name:         "Starter Pack",
		PriceMonthly: types.MustNewMoney(2999, "EGP"),
		ProgramIDs:   []types.ProgramID{types.NewID[types.ProgramKind](), types.NewID[types.ProgramKind]()},
	})
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO packages (.+) ON CONFLICT \(id\) DO UPDATE`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM package_programs WHERE package_id = \$1`).
		WithArgs(p.ID().String()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO package_programs \(package_id,program_id\) VALUES \(\$1,\$2\),\(\$3,\$4\)`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.Save(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPackageRepository_ListActive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresPackageRepository(db)
	active := true

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM packages WHERE deleted_at IS NULL AND is_active = \$1`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT (.+) FROM packages WHERE deleted_at IS NULL AND is_active = \$1 ORDER BY price_monthly_cents, created_at DESC LIMIT 20 OFFSET 0`).
		WillReturnRows(sqlmock.NewRows(packageRowColumns))

	pkgs, total, err := repo.List(context.Background(), domain.PackageFilter{IsActive: &active}, types.NewPage(1, 20))

	require.NoError(t, err)
	assert.Empty(t, pkgs)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
