package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	shareddomain "github.com/AlagappanMk24/Gymunity/modules/shared/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

const MaxCommentLength = 1000

// Review is a client's rating of a trainer. Reviews stay hidden until an
// administrator approves them.
type Review struct {
	shareddomain.AggregateRoot

	id         types.ReviewID
	trainerID  types.TrainerID
	clientID   types.UserID
	rating     int
	comment    string
	isEdited   bool
	editedAt   *time.Time
	isApproved bool
	approvedAt *time.Time
	deleted    bool
	createdAt  time.Time
}

func validateReview(rating int, comment string) (string, error) {
	if rating < 1 || rating > 5 {
		return "", ErrRatingOutOfRange
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		return "", ErrCommentTooLong
	}
	return comment, nil
}

func NewReview(trainerID types.TrainerID, clientID types.UserID, rating int, comment string) (*Review, error) {
	comment, err := validateReview(rating, comment)
	if err != nil {
		return nil, err
	}
	r := &Review{
		id:        types.NewID[types.ReviewKind](),
		trainerID: trainerID,
		clientID:  clientID,
		rating:    rating,
		comment:   comment,
		createdAt: time.Now().UTC(),
	}
	r.AddDomainEvent(newReviewSubmittedEvent(r))
	return r, nil
}

// ReviewState is the persisted form of a Review.
type ReviewState struct {
	ID         types.ReviewID
	TrainerID  types.TrainerID
	ClientID   types.UserID
	Rating     int
	Comment    string
	IsEdited   bool
	EditedAt   *time.Time
	IsApproved bool
	ApprovedAt *time.Time
	Deleted    bool
	CreatedAt  time.Time
}

func ReconstituteReview(s ReviewState) *Review {
	return &Review{
		id:         s.ID,
		trainerID:  s.TrainerID,
		clientID:   s.ClientID,
		rating:     s.Rating,
		comment:    s.Comment,
		isEdited:   s.IsEdited,
		editedAt:   s.EditedAt,
		isApproved: s.IsApproved,
		approvedAt: s.ApprovedAt,
		deleted:    s.Deleted,
		createdAt:  s.CreatedAt,
	}
}

func (r *Review) State() ReviewState {
	return ReviewState{
		ID:         r.id,
		TrainerID:  r.trainerID,
		ClientID:   r.clientID,
		Rating:     r.rating,
		Comment:    r.comment,
		IsEdited:   r.isEdited,
		EditedAt:   r.editedAt,
		IsApproved: r.isApproved,
		ApprovedAt: r.approvedAt,
		Deleted:    r.deleted,
		CreatedAt:  r.createdAt,
	}
}

func (r *Review) ID() types.ReviewID         { return r.id }
func (r *Review) TrainerID() types.TrainerID { return r.trainerID }
func (r *Review) ClientID() types.UserID     { return r.clientID }
func (r *Review) Rating() int                { return r.rating }
func (r *Review) Comment() string            { return r.comment }
func (r *Review) IsEdited() bool             { return r.isEdited }
func (r *Review) EditedAt() *time.Time       { return r.editedAt }
func (r *Review) IsApproved() bool           { return r.isApproved }
func (r *Review) ApprovedAt() *time.Time     { return r.approvedAt }
func (r *Review) IsDeleted() bool            { return r.deleted }
func (r *Review) CreatedAt() time.Time       { return r.createdAt }

// Edit changes the rating and comment. An edited review goes back to
// moderation.
func (r *Review) Edit(author types.UserID, rating int, comment string, now time.Time) error {
	if author != r.clientID {
		return ErrNotReviewAuthor
	}
	if r.deleted {
		return ErrReviewDeleted
	}
	comment, err := validateReview(rating, comment)
	if err != nil {
		return err
	}
	r.rating = rating
	r.comment = comment
	r.isEdited = true
	at := now.UTC()
	r.editedAt = &at
	r.isApproved = false
	r.approvedAt = nil
	return nil
}

// Approve publishes the review. trainerUserID is carried on the event so
// the trainer can be notified.
func (r *Review) Approve(trainerUserID types.UserID, now time.Time) error {
	if r.deleted {
		return ErrReviewDeleted
	}
	if r.isApproved {
		return nil
	}
	r.isApproved = true
	at := now.UTC()
	r.approvedAt = &at
	r.AddDomainEvent(newReviewApprovedEvent(r, trainerUserID))
	return nil
}

// Reject hides the review for good.
func (r *Review) Reject() {
	r.isApproved = false
	r.approvedAt = nil
	r.deleted = true
}
