// Package commands contains the write use cases of the packages module.
package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/packages/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func trainerOf(ctx context.Context, trainers api.TrainerDirectory, userID types.UserID) (types.TrainerID, error) {
	t, err := trainers.TrainerByUser(ctx, userID)
	if errors.Is(err, api.ErrNotFound) {
		return types.TrainerID{}, domain.ErrTrainerRequired
	}
	if err != nil {
		return types.TrainerID{}, fmt.Errorf("resolving trainer: %w", err)
	}
	return t.ID, nil
}

// ensurePrograms checks that every linked program belongs to trainerID.
func ensurePrograms(ctx context.Context, catalog api.ProgramCatalog, trainerID types.TrainerID, ids []types.ProgramID) error {
	if len(ids) == 0 {
		return nil
	}
	ok, err := catalog.ProgramsOwnedBy(ctx, trainerID, ids)
	if err != nil {
		return fmt.Errorf("checking programs: %w", err)
	}
	if !ok {
		return domain.ErrProgramsNotOwned
	}
	return nil
}

// PackageInput carries every field of a new package.
type PackageInput struct {
	Name              string
	Description       string
	PriceMonthlyCents int64
	PriceYearlyCents  *int64
	Currency          string
	FeaturesJSON      string
	ThumbnailURL      string
	PromoCode         string
	ProgramIDs        []types.ProgramID
}

func prices(currency string, monthly int64, yearly *int64) (types.Money, *types.Money, error) {
	if currency == "" {
		currency = types.DefaultCurrency
	}
	m, err := types.NewMoney(monthly, currency)
	if err != nil {
		return types.Money{}, nil, err
	}
	if yearly == nil {
		return m, nil, nil
	}
	y, err := types.NewMoney(*yearly, currency)
	if err != nil {
		return types.Money{}, nil, err
	}
	return m, &y, nil
}

func (in PackageInput) details() (domain.PackageDetails, error) {
	monthly, yearly, err := prices(in.Currency, in.PriceMonthlyCents, in.PriceYearlyCents)
	if err != nil {
		return domain.PackageDetails{}, err
	}
	features, err := domain.ParseFeatures(in.FeaturesJSON)
	if err != nil {
		return domain.PackageDetails{}, err
	}
	return domain.PackageDetails{
		Name:         in.Name,
		Description:  in.Description,
		PriceMonthly: monthly,
		PriceYearly:  yearly,
		Features:     features,
		ThumbnailURL: in.ThumbnailURL,
		PromoCode:    in.PromoCode,
		ProgramIDs:   in.ProgramIDs,
	}, nil
}

type CreatePackageCommand struct {
	UserID types.UserID
	Input  PackageInput
}

type CreatePackageHandler struct {
	repo     domain.PackageRepository
	trainers api.TrainerDirectory
	programs api.ProgramCatalog
	uow      *eventbus.UnitOfWork
}

func NewCreatePackageHandler(repo domain.PackageRepository, trainers api.TrainerDirectory, programs api.ProgramCatalog, uow *eventbus.UnitOfWork) *CreatePackageHandler {
	return &CreatePackageHandler{repo: repo, trainers: trainers, programs: programs, uow: uow}
}

func (h *CreatePackageHandler) Handle(ctx context.Context, cmd CreatePackageCommand) (types.PackageID, error) {
	details, err := cmd.Input.details()
	if err != nil {
		return types.PackageID{}, err
	}
	trainerID, err := trainerOf(ctx, h.trainers, cmd.UserID)
	if err != nil {
		return types.PackageID{}, err
	}
	if err := ensurePrograms(ctx, h.programs, trainerID, details.ProgramIDs); err != nil {
		return types.PackageID{}, err
	}

	var id types.PackageID
	err = h.uow.Execute(ctx, "packages.CreatePackage", func(ctx context.Context, _ *eventbus.TransactionalEventBus) error {
		pkg, err := domain.NewPackage(trainerID, details)
		if err != nil {
			return err
		}
		if err := h.repo.Save(ctx, pkg); err != nil {
			return fmt.Errorf("saving package: %w", err)
		}
		id = pkg.ID()
		return nil
	})
	return id, err
}

// Ensure creates the package unless the trainer already has one with the
// same name.
func (h *CreatePackageHandler) Ensure(ctx context.Context, cmd CreatePackageCommand) (types.PackageID, bool, error) {
	trainerID, err := trainerOf(ctx, h.trainers, cmd.UserID)
	if err != nil {
		return types.PackageID{}, false, err
	}
	existing, _, err := h.repo.List(ctx, domain.PackageFilter{TrainerID: &trainerID, Search: cmd.Input.Name}, types.NewPage(1, types.MaxPageSize))
	if err != nil {
		return types.PackageID{}, false, fmt.Errorf("finding package: %w", err)
	}
	for _, p := range existing {
		if strings.EqualFold(p.Name(), strings.TrimSpace(cmd.Input.Name)) {
			return p.ID(), false, nil
		}
	}
	id, err := h.Handle(ctx, cmd)
	return id, err == nil, err
}

// PackagePatch carries a partial update. Nil fields keep their value.
type PackagePatch struct {
	Name              *string
	Description       *string
	PriceMonthlyCents *int64
	PriceYearlyCents  *int64
	ClearYearly       bool
	Currency          *string
	FeaturesJSON      *string
	ThumbnailURL      *string
	PromoCode         *string
	IsActive          *bool
	ProgramIDs        []types.ProgramID
	ReplacePrograms   bool
}

func (p PackagePatch) apply(d domain.PackageDetails) (domain.PackageDetails, error) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.ThumbnailURL != nil {
		d.ThumbnailURL = *p.ThumbnailURL
	}
	if p.PromoCode != nil {
		d.PromoCode = *p.PromoCode
	}
	if p.FeaturesJSON != nil {
		f, err := domain.ParseFeatures(*p.FeaturesJSON)
		if err != nil {
			return d, err
		}
		d.Features = f
	}
	if p.ReplacePrograms {
		d.ProgramIDs = p.ProgramIDs
	}

	currency := d.PriceMonthly.Currency()
	if p.Currency != nil && *p.Currency != "" {
		currency = *p.Currency
	}
	monthly := d.PriceMonthly.Amount()
	if p.PriceMonthlyCents != nil {
		monthly = *p.PriceMonthlyCents
	}
	var yearly *int64
	if d.PriceYearly != nil {
		amount := d.PriceYearly.Amount()
		yearly = &amount
	}
	if p.PriceYearlyCents != nil {
		yearly = p.PriceYearlyCents
	}
	if p.ClearYearly {
		yearly = nil
	}
	m, y, err := prices(currency, monthly, yearly)
	if err != nil {
		return d, err
	}
	d.PriceMonthly, d.PriceYearly = m, y
	return d, nil
}

// EditHandler runs the ownership-checked mutations of a package.
// Administrators may act on any package.
type EditHandler struct {
	repo     domain.PackageRepository
	trainers api.TrainerDirectory
	programs api.ProgramCatalog
	uow      *eventbus.UnitOfWork
	now      func() time.Time
}

func NewEditHandler(repo domain.PackageRepository, trainers api.TrainerDirectory, programs api.ProgramCatalog, uow *eventbus.UnitOfWork) *EditHandler {
	return &EditHandler{repo: repo, trainers: trainers, programs: programs, uow: uow, now: time.Now}
}

func (h *EditHandler) mutate(ctx context.Context, name string, actor sharedauth.Principal, id types.PackageID, fn func(p *domain.Package) error) error {
	var trainerID types.TrainerID
	if !actor.IsAdmin() {
		var err error
		if trainerID, err = trainerOf(ctx, h.trainers, actor.UserID); err != nil {
			return err
		}
	}
	return h.uow.Execute(ctx, name, func(ctx context.Context, _ *eventbus.TransactionalEventBus) error {
		pkg, err := h.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && !pkg.OwnedBy(trainerID) {
			return domain.ErrNotOwner
		}
		if err := fn(pkg); err != nil {
			return err
		}
		if err := h.repo.Save(ctx, pkg); err != nil {
			return fmt.Errorf("saving package: %w", err)
		}
		return nil
	})
}

func (h *EditHandler) Update(ctx context.Context, actor sharedauth.Principal, id types.PackageID, patch PackagePatch) error {
	return h.mutate(ctx, "packages.UpdatePackage", actor, id, func(p *domain.Package) error {
		details, err := patch.apply(p.Details())
		if err != nil {
			return err
		}
		if patch.ReplacePrograms {
			if err := ensurePrograms(ctx, h.programs, p.TrainerID(), details.ProgramIDs); err != nil {
				return err
			}
		}
		if err := p.Update(details); err != nil {
			return err
		}
		if patch.IsActive != nil {
			p.SetActive(*patch.IsActive)
		}
		return nil
	})
}

// Delete takes the package off sale for good. Existing subscriptions are
// left to run out.
func (h *EditHandler) Delete(ctx context.Context, actor sharedauth.Principal, id types.PackageID) error {
	return h.mutate(ctx, "packages.DeletePackage", actor, id, func(p *domain.Package) error {
		p.Delete(h.now())
		return nil
	})
}

func (h *EditHandler) ToggleActive(ctx context.Context, actor sharedauth.Principal, id types.PackageID) (bool, error) {
	var active bool
	err := h.mutate(ctx, "packages.ToggleActive", actor, id, func(p *domain.Package) error {
		active = p.ToggleActive()
		return nil
	})
	return active, err
}
