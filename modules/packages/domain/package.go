package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	shareddomain "github.com/AlagappanMk24/Gymunity/modules/shared/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

const (
	MaxDescriptionLength = 2000
	EmptyFeatures        = "{}"
)

// Features is the free-form JSON object describing what a package includes,
// for example {"priorityMessaging": true, "formChecksPerWeek": 4}.
type Features string

// ParseFeatures accepts a JSON object. Blank input means no features.
func ParseFeatures(raw string) (Features, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return EmptyFeatures, nil
	}
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		return "", ErrFeaturesInvalid
	}
	return Features(raw), nil
}

// Enabled reports whether the named feature is present and truthy.
func (f Features) Enabled(name string) bool {
	return gjson.Get(string(f), gjson.Escape(name)).Bool()
}

// Highlights lists the enabled features in document order. Numeric features
// are rendered as "name: n".
func (f Features) Highlights() []string {
	out := []string{}
	gjson.Parse(string(f)).ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.True:
			out = append(out, key.String())
		case gjson.Number:
			out = append(out, key.String()+": "+value.Raw)
		case gjson.String:
			if value.String() != "" {
				out = append(out, key.String()+": "+value.String())
			}
		}
		return true
	})
	return out
}

// PackageDetails holds the editable fields of a package.
type PackageDetails struct {
	Name         string
	Description  string
	PriceMonthly types.Money
	PriceYearly  *types.Money
	Features     Features
	ThumbnailURL string
	PromoCode    string
	ProgramIDs   []types.ProgramID
}

func (d PackageDetails) validate() (PackageDetails, error) {
	d.Name = strings.TrimSpace(d.Name)
	if n := utf8.RuneCountInString(d.Name); n < 3 || n > 100 {
		return d, ErrNameInvalid
	}
	d.Description = strings.TrimSpace(d.Description)
	if utf8.RuneCountInString(d.Description) > MaxDescriptionLength {
		return d, ErrDescriptionTooLong
	}
	if d.PriceMonthly.Amount() <= 0 {
		return d, ErrPriceInvalid
	}
	if y := d.PriceYearly; y != nil && (y.Amount() <= 0 || y.Currency() != d.PriceMonthly.Currency()) {
		return d, ErrYearlyPriceInvalid
	}
	if d.Features == "" {
		d.Features = EmptyFeatures
	}
	code, err := normalizePromoCode(d.PromoCode)
	if err != nil {
		return d, err
	}
	d.PromoCode = code
	d.ProgramIDs = dedupe(d.ProgramIDs)
	return d, nil
}

func normalizePromoCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", nil
	}
	if len(code) < 3 || len(code) > 20 {
		return "", ErrPromoCodeInvalid
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", ErrPromoCodeInvalid
		}
	}
	return code, nil
}

func dedupe(ids []types.ProgramID) []types.ProgramID {
	seen := make(map[types.ProgramID]struct{}, len(ids))
	out := make([]types.ProgramID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Package is a subscription offer of a trainer. Deleting a package hides it
// from sale; subscriptions already bought run until their period ends.
type Package struct {
	shareddomain.AggregateRoot

	id        types.PackageID
	trainerID types.TrainerID
	details   PackageDetails
	isActive  bool
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

func NewPackage(trainerID types.TrainerID, details PackageDetails) (*Package, error) {
	details, err := details.validate()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Package{
		id:        types.NewID[types.PackageKind](),
		trainerID: trainerID,
		details:   details,
		isActive:  true,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// PackageState is the persisted form of a Package.
type PackageState struct {
	ID        types.PackageID
	TrainerID types.TrainerID
	Details   PackageDetails
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func ReconstitutePackage(s PackageState) *Package {
	return &Package{
		id:        s.ID,
		trainerID: s.TrainerID,
		details:   s.Details,
		isActive:  s.IsActive,
		createdAt: s.CreatedAt,
		updatedAt: s.UpdatedAt,
		deletedAt: s.DeletedAt,
	}
}

func (p *Package) State() PackageState {
	return PackageState{
		ID:        p.id,
		TrainerID: p.trainerID,
		Details:   p.details,
		IsActive:  p.isActive,
		CreatedAt: p.createdAt,
		UpdatedAt: p.updatedAt,
		DeletedAt: p.deletedAt,
	}
}

func (p *Package) ID() types.PackageID            { return p.id }
func (p *Package) TrainerID() types.TrainerID     { return p.trainerID }
func (p *Package) Details() PackageDetails        { return p.details }
func (p *Package) Name() string                   { return p.details.Name }
func (p *Package) IsActive() bool                 { return p.isActive }
func (p *Package) IsDeleted() bool                { return p.deletedAt != nil }
func (p *Package) CreatedAt() time.Time           { return p.createdAt }
func (p *Package) UpdatedAt() time.Time           { return p.updatedAt }
func (p *Package) OwnedBy(t types.TrainerID) bool { return p.trainerID == t }

// Update replaces the details.
func (p *Package) Update(details PackageDetails) error {
	details, err := details.validate()
	if err != nil {
		return err
	}
	p.details = details
	p.updatedAt = time.Now().UTC()
	return nil
}

// SetActive switches the package on or off sale.
func (p *Package) SetActive(active bool) {
	p.isActive = active
	p.updatedAt = time.Now().UTC()
}

// ToggleActive flips the sale state and returns the new value.
func (p *Package) ToggleActive() bool {
	p.SetActive(!p.isActive)
	return p.isActive
}

// Delete removes the package from sale for good.
func (p *Package) Delete(now time.Time) {
	if p.deletedAt != nil {
		return
	}
	now = now.UTC()
	p.deletedAt = &now
	p.isActive = false
	p.updatedAt = now
}
