// Package queries contains the read use cases of the packages module.
package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/packages/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type PackageDTO struct {
	ID                types.PackageID   `json:"id"`
	TrainerID         types.TrainerID   `json:"trainerId"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	PriceMonthlyCents int64             `json:"priceMonthlyCents"`
	PriceYearlyCents  *int64            `json:"priceYearlyCents,omitempty"`
	Currency          string            `json:"currency"`
	Features          json.RawMessage   `json:"features"`
	Highlights        []string          `json:"highlights"`
	IsActive          bool              `json:"isActive"`
	ThumbnailURL      string            `json:"thumbnailUrl,omitempty"`
	PromoCode         string            `json:"promoCode,omitempty"`
	ProgramIDs        []types.ProgramID `json:"programIds"`
	CreatedAt         time.Time         `json:"createdAt"`
}

func toDTO(p *domain.Package) *PackageDTO {
	d := p.Details()
	dto := &PackageDTO{
		ID:                p.ID(),
		TrainerID:         p.TrainerID(),
		Name:              d.Name,
		Description:       d.Description,
		PriceMonthlyCents: d.PriceMonthly.Amount(),
		Currency:          d.PriceMonthly.Currency(),
		Features:          json.RawMessage(d.Features),
		Highlights:        d.Features.Highlights(),
		IsActive:          p.IsActive(),
		ThumbnailURL:      d.ThumbnailURL,
		PromoCode:         d.PromoCode,
		ProgramIDs:        d.ProgramIDs,
		CreatedAt:         p.CreatedAt(),
	}
	if d.PriceYearly != nil {
		yearly := d.PriceYearly.Amount()
		dto.PriceYearlyCents = &yearly
	}
	if dto.ProgramIDs == nil {
		dto.ProgramIDs = []types.ProgramID{}
	}
	return dto
}

// canManage reports whether viewer owns p or is an administrator.
func canManage(ctx context.Context, trainers api.TrainerDirectory, viewer sharedauth.Principal, p *domain.Package) (bool, error) {
	if viewer.IsAdmin() {
		return true, nil
	}
	if !viewer.IsTrainer() {
		return false, nil
	}
	t, err := trainers.TrainerByUser(ctx, viewer.UserID)
	if errors.Is(err, api.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("resolving trainer: %w", err)
	}
	return p.OwnedBy(t.ID), nil
}

// GetPackageHandler returns a package. Packages off sale are visible to
// their trainer and administrators only.
type GetPackageHandler struct {
	repo     domain.PackageRepository
	trainers api.TrainerDirectory
}

func NewGetPackageHandler(repo domain.PackageRepository, trainers api.TrainerDirectory) *GetPackageHandler {
	return &GetPackageHandler{repo: repo, trainers: trainers}
}

func (h *GetPackageHandler) Handle(ctx context.Context, id types.PackageID, viewer sharedauth.Principal) (*PackageDTO, error) {
	p, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive() {
		ok, err := canManage(ctx, h.trainers, viewer, p)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrPackageNotFound
		}
	}
	return toDTO(p), nil
}

type ListPackagesHandler struct {
	repo     domain.PackageRepository
	trainers api.TrainerDirectory
}

func NewListPackagesHandler(repo domain.PackageRepository, trainers api.TrainerDirectory) *ListPackagesHandler {
	return &ListPackagesHandler{repo: repo, trainers: trainers}
}

func (h *ListPackagesHandler) list(ctx context.Context, filter domain.PackageFilter, page types.Page) (types.Paged[*PackageDTO], error) {
	pkgs, total, err := h.repo.List(ctx, filter, page)
	if err != nil {
		return types.Paged[*PackageDTO]{}, fmt.Errorf("listing packages: %w", err)
	}
	items := make([]*PackageDTO, 0, len(pkgs))
	for _, p := range pkgs {
		items = append(items, toDTO(p))
	}
	return types.NewPaged(items, total, page), nil
}

// Mine lists every package of the caller's trainer profile, on sale or not.
func (h *ListPackagesHandler) Mine(ctx context.Context, userID types.UserID, page types.Page) (types.Paged[*PackageDTO], error) {
	t, err := h.trainers.TrainerByUser(ctx, userID)
	if errors.Is(err, api.ErrNotFound) {
		return types.NewPaged([]*PackageDTO{}, 0, page), nil
	}
	if err != nil {
		return types.Paged[*PackageDTO]{}, fmt.Errorf("resolving trainer: %w", err)
	}
	return h.list(ctx, domain.PackageFilter{TrainerID: &t.ID}, page)
}

// Active lists packages on sale, optionally for one trainer.
func (h *ListPackagesHandler) Active(ctx context.Context, trainerID *types.TrainerID, search string, page types.Page) (types.Paged[*PackageDTO], error) {
	active := true
	return h.list(ctx, domain.PackageFilter{TrainerID: trainerID, IsActive: &active, Search: search}, page)
}

func (h *ListPackagesHandler) Admin(ctx context.Context, filter domain.PackageFilter, page types.Page) (types.Paged[*PackageDTO], error) {
	return h.list(ctx, filter, page)
}
