// Package domain models the in-app notifications shown to users.
package domain

import (
	"strings"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type Type string

const (
	TypeNewTrainerRegistration Type = "NewTrainerRegistration"
	TypeNewClientRegistration  Type = "NewClientRegistration"
	TypeNewSubscriber          Type = "NewSubscriber"
	TypePaymentRefunded        Type = "PaymentRefunded"
	TypeTrainerVerified        Type = "TrainerVerified"
	TypeNewReview              Type = "NewReview"
	TypeGeneral                Type = "General"
)

var allTypes = []Type{
	TypeNewTrainerRegistration, TypeNewClientRegistration, TypeNewSubscriber,
	TypePaymentRefunded, TypeTrainerVerified, TypeNewReview, TypeGeneral,
}

func (t Type) String() string { return string(t) }

func ParseType(s string) (Type, error) {
	for _, t := range allTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", ErrInvalidType
}

// Notification is a message addressed to one user.
type Notification struct {
	id              types.NotificationID
	userID          types.UserID
	title           string
	message         string
	kind            Type
	relatedEntityID string
	isRead          bool
	readAt          *time.Time
	createdAt       time.Time
}

func New(userID types.UserID, kind Type, title, message, relatedEntityID string) (*Notification, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if kind == "" {
		kind = TypeGeneral
	}
	return &Notification{
		id:              types.NewID[types.NotificationKind](),
		userID:          userID,
		title:           title,
		message:         strings.TrimSpace(message),
		kind:            kind,
		relatedEntityID: relatedEntityID,
		createdAt:       time.Now().UTC(),
	}, nil
}

type State struct {
	ID              types.NotificationID
	UserID          types.UserID
	Title           string
	Message         string
	Type            Type
	RelatedEntityID string
	IsRead          bool
	ReadAt          *time.Time
	CreatedAt       time.Time
}

func Reconstitute(s State) *Notification {
	return &Notification{
		id:              s.ID,
		userID:          s.UserID,
		title:           s.Title,
		message:         s.Message,
		kind:            s.Type,
		relatedEntityID: s.RelatedEntityID,
		isRead:          s.IsRead,
		readAt:          s.ReadAt,
		createdAt:       s.CreatedAt,
	}
}

func (n *Notification) State() State {
	return State{
		ID:              n.id,
		UserID:          n.userID,
		Title:           n.title,
		Message:         n.message,
		Type:            n.kind,
		RelatedEntityID: n.relatedEntityID,
		IsRead:          n.isRead,
		ReadAt:          n.readAt,
		CreatedAt:       n.createdAt,
	}
}

func (n *Notification) ID() types.NotificationID { return n.id }
func (n *Notification) UserID() types.UserID     { return n.userID }
func (n *Notification) Title() string            { return n.title }
func (n *Notification) Message() string          { return n.message }
func (n *Notification) Type() Type               { return n.kind }
func (n *Notification) RelatedEntityID() string  { return n.relatedEntityID }
func (n *Notification) IsRead() bool             { return n.isRead }
func (n *Notification) ReadAt() *time.Time       { return n.readAt }
func (n *Notification) CreatedAt() time.Time     { return n.createdAt }

// MarkRead records the first time the notification was read.
func (n *Notification) MarkRead(now time.Time) {
	if n.isRead {
		return
	}
	at := now.UTC()
	n.isRead = true
	n.readAt = &at
}
