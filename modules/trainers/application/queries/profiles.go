// Package queries contains the read use cases of the trainers module.
package queries

import (
	"context"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/trainers/domain"
)

// ProfileDTO is the read model of a trainer profile.
type ProfileDTO struct {
	ID                types.TrainerID `json:"id"`
	UserID            types.UserID    `json:"userId"`
	FullName          string          `json:"fullName,omitempty"`
	Handle            string          `json:"handle"`
	Bio               string          `json:"bio"`
	CoverImageURL     string          `json:"coverImageUrl,omitempty"`
	VideoIntroURL     string          `json:"videoIntroUrl,omitempty"`
	BrandingColors    string          `json:"brandingColors,omitempty"`
	YearsExperience   int             `json:"yearsExperience"`
	IsVerified        bool            `json:"isVerified"`
	VerifiedAt        *time.Time      `json:"verifiedAt,omitempty"`
	IsSuspended       bool            `json:"isSuspended"`
	SuspendedAt       *time.Time      `json:"suspendedAt,omitempty"`
	RatingAverage     float64         `json:"ratingAverage"`
	TotalClients      int             `json:"totalClients"`
	StatusImageURL    string          `json:"statusImageUrl,omitempty"`
	StatusDescription string          `json:"statusDescription,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

func toProfileDTO(p *domain.TrainerProfile) *ProfileDTO {
	d := p.Details()
	return &ProfileDTO{
		ID:                p.ID(),
		UserID:            p.UserID(),
		Handle:            p.Handle().String(),
		Bio:               d.Bio,
		CoverImageURL:     d.CoverImageURL,
		VideoIntroURL:     d.VideoIntroURL,
		BrandingColors:    d.BrandingColors,
		YearsExperience:   d.YearsExperience,
		IsVerified:        p.IsVerified(),
		VerifiedAt:        p.VerifiedAt(),
		IsSuspended:       p.IsSuspended(),
		SuspendedAt:       p.SuspendedAt(),
		RatingAverage:     p.RatingAverage(),
		TotalClients:      p.TotalClients(),
		StatusImageURL:    p.StatusImageURL(),
		StatusDescription: p.StatusDescription(),
		CreatedAt:         p.CreatedAt(),
	}
}

// namer fills in display names from the identity module. A nil directory
// leaves names empty.
type namer struct {
	users api.UserDirectory
}

func (n namer) fill(ctx context.Context, dtos ...*ProfileDTO) {
	if n.users == nil {
		return
	}
	for _, d := range dtos {
		if c, err := n.users.Contact(ctx, d.UserID); err == nil {
			d.FullName = c.FullName
		}
	}
}

// GetProfileHandler loads single profiles. Profiles that are not listed
// publicly are visible to their owner and administrators only.
type GetProfileHandler struct {
	repo  domain.ProfileRepository
	namer namer
}

func NewGetProfileHandler(repo domain.ProfileRepository, users api.UserDirectory) *GetProfileHandler {
	return &GetProfileHandler{repo: repo, namer: namer{users: users}}
}

func (h *GetProfileHandler) Mine(ctx context.Context, userID types.UserID) (*ProfileDTO, error) {
	p, err := h.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return h.view(ctx, p), nil
}

func (h *GetProfileHandler) ByID(ctx context.Context, id types.TrainerID, viewer sharedauth.Principal) (*ProfileDTO, error) {
	p, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return h.visible(ctx, p, viewer)
}

func (h *GetProfileHandler) ByHandle(ctx context.Context, handle string, viewer sharedauth.Principal) (*ProfileDTO, error) {
	hd, err := domain.NewHandle(handle)
	if err != nil {
		return nil, domain.ErrProfileNotFound
	}
	p, err := h.repo.FindByHandle(ctx, hd)
	if err != nil {
		return nil, err
	}
	return h.visible(ctx, p, viewer)
}

func (h *GetProfileHandler) visible(ctx context.Context, p *domain.TrainerProfile, viewer sharedauth.Principal) (*ProfileDTO, error) {
	if !p.IsListed() && !viewer.IsAdmin() && viewer.UserID != p.UserID() {
		return nil, domain.ErrProfileNotFound
	}
	return h.view(ctx, p), nil
}

func (h *GetProfileHandler) view(ctx context.Context, p *domain.TrainerProfile) *ProfileDTO {
	dto := toProfileDTO(p)
	h.namer.fill(ctx, dto)
	return dto
}

// SearchQuery is the public trainer discovery search.
type SearchQuery struct {
	Search        string
	MinExperience int
	Page          types.Page
}

// SearchHandler lists verified, unsuspended trainers by rating.
type SearchHandler struct {
	repo  domain.ProfileRepository
	namer namer
}

func NewSearchHandler(repo domain.ProfileRepository, users api.UserDirectory) *SearchHandler {
	return &SearchHandler{repo: repo, namer: namer{users: users}}
}

func (h *SearchHandler) Handle(ctx context.Context, q SearchQuery) (types.Paged[*ProfileDTO], error) {
	filter := domain.ProfileFilter{Search: q.Search, MinExperience: q.MinExperience, Listed: true}
	return listProfiles(ctx, h.repo, h.namer, filter, q.Page)
}

// ListTrainersQuery is the admin trainer listing.
type ListTrainersQuery struct {
	Search      string
	IsVerified  *bool
	IsSuspended *bool
	Page        types.Page
}

func (q ListTrainersQuery) filter() domain.ProfileFilter {
	return domain.ProfileFilter{Search: q.Search, IsVerified: q.IsVerified, IsSuspended: q.IsSuspended}
}

type ListTrainersHandler struct {
	repo  domain.ProfileRepository
	namer namer
}

func NewListTrainersHandler(repo domain.ProfileRepository, users api.UserDirectory) *ListTrainersHandler {
	return &ListTrainersHandler{repo: repo, namer: namer{users: users}}
}

func (h *ListTrainersHandler) Handle(ctx context.Context, q ListTrainersQuery) (types.Paged[*ProfileDTO], error) {
	return listProfiles(ctx, h.repo, h.namer, q.filter(), q.Page)
}

// Counts returns the admin console counters.
func (h *ListTrainersHandler) Counts(ctx context.Context) (domain.ProfileCounts, error) {
	return h.repo.Counts(ctx)
}

func listProfiles(ctx context.Context, repo domain.ProfileRepository, n namer, filter domain.ProfileFilter, page types.Page) (types.Paged[*ProfileDTO], error) {
	profiles, total, err := repo.List(ctx, filter, page)
	if err != nil {
		return types.Paged[*ProfileDTO]{}, err
	}
	dtos := make([]*ProfileDTO, len(profiles))
	for i, p := range profiles {
		dtos[i] = toProfileDTO(p)
	}
	n.fill(ctx, dtos...)
	return types.NewPaged(dtos, total, page), nil
}

