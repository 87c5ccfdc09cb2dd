package domain_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/packages/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func details() domain.PackageDetails {
	return domain.PackageDetails{
		Name:         "Starter Pack",
		PriceMonthly: types.MustNewMoney(2999, "EGP"),
	}
}

func TestPackageValidation(t *testing.T) {
	yearlyUSD := types.MustNewMoney(20000, "USD")
	yearlyZero := types.MustNewMoney(0, "EGP")
	tests := []struct {
		name   string
		mutate func(*domain.PackageDetails)
		want   error
	}{
		{"valid", func(*domain.PackageDetails) {}, nil},
		{"short name", func(d *domain.PackageDetails) { d.Name = " ab " }, domain.ErrNameInvalid},
		{"free", func(d *domain.PackageDetails) { d.PriceMonthly = types.MustNewMoney(0, "EGP") }, domain.ErrPriceInvalid},
		{"yearly currency", func(d *domain.PackageDetails) { d.PriceYearly = &yearlyUSD }, domain.ErrYearlyPriceInvalid},
		{"yearly zero", func(d *domain.PackageDetails) { d.PriceYearly = &yearlyZero }, domain.ErrYearlyPriceInvalid},
		{"promo symbols", func(d *domain.PackageDetails) { d.PromoCode = "SAVE-10" }, domain.ErrPromoCodeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := details()
			tt.mutate(&d)
			_, err := domain.NewPackage(types.NewID[types.TrainerKind](), d)
			if !errors.Is(err, tt.want) {
				t.Fatalf("NewPackage() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPackageNormalizes(t *testing.T) {
	d := details()
	d.PromoCode = " starter6 "
	program := types.NewID[types.ProgramKind]()
	d.ProgramIDs = []types.ProgramID{program, program}

	p, err := domain.NewPackage(types.NewID[types.TrainerKind](), d)
	if err != nil {
		t.Fatalf("NewPackage() error = %v", err)
	}
	got := p.Details()
	if got.PromoCode != "STARTER6" {
		t.Errorf("PromoCode = %q, want STARTER6", got.PromoCode)
	}
	if len(got.ProgramIDs) != 1 {
		t.Errorf("ProgramIDs = %v, want one id", got.ProgramIDs)
	}
	if got.Features != domain.EmptyFeatures {
		t.Errorf("Features = %q, want {}", got.Features)
	}
	if !p.IsActive() {
		t.Error("new packages should be on sale")
	}
}

func TestFeatures(t *testing.T) {
	if _, err := domain.ParseFeatures(`["priorityMessaging"]`); !errors.Is(err, domain.ErrFeaturesInvalid) {
		t.Fatalf("array features error = %v", err)
	}
	if _, err := domain.ParseFeatures(`{"broken":`); !errors.Is(err, domain.ErrFeaturesInvalid) {
		t.Fatalf("malformed features error = %v", err)
	}

	f, err := domain.ParseFeatures(`{"allPrograms":true,"formChecksPerWeek":4,"priorityMessaging":false,"coach.note":"weekly"}`)
	if err != nil {
		t.Fatalf("ParseFeatures() error = %v", err)
	}
	if !f.Enabled("allPrograms") || f.Enabled("priorityMessaging") || f.Enabled("missing") {
		t.Error("Enabled() reported the wrong features")
	}
	want := []string{"allPrograms", "formChecksPerWeek: 4", "coach.note: weekly"}
	if got := f.Highlights(); !reflect.DeepEqual(got, want) {
		t.Errorf("Highlights() = %v, want %v", got, want)
	}
}

func TestDeleteTakesPackageOffSale(t *testing.T) {
	p, err := domain.NewPackage(types.NewID[types.TrainerKind](), details())
	if err != nil {
		t.Fatal(err)
	}
	if p.ToggleActive() {
		t.Fatal("ToggleActive() should switch an active package off")
	}
	p.SetActive(true)
	p.Delete(time.Now())
	if !p.IsDeleted() || p.IsActive() {
		t.Errorf("deleted package: deleted=%v active=%v", p.IsDeleted(), p.IsActive())
	}
}
