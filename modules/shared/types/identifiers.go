// Package types provides shared value objects and type definitions
// used across multiple modules (Shared Kernel pattern).
package types

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
)

// ID is a UUID-backed identifier tagged with the kind of entity it identifies.
// Using distinct kinds prevents mixing up, say, a program ID with a package ID.
type ID[K any] struct {
	value string
}

// NewID generates a new random identifier.
func NewID[K any]() ID[K] {
	return ID[K]{value: uuid.New().String()}
}

// ParseID validates s as a UUID.
func ParseID[K any](s string) (ID[K], error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID[K]{}, ErrInvalidID
	}
	return ID[K]{value: u.String()}, nil
}

// MustParseID is ParseID for constants and tests.
func MustParseID[K any](s string) ID[K] {
	id, err := ParseID[K](s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id ID[K]) String() string { return id.value }
func (id ID[K]) IsZero() bool   { return id.value == "" }

// Value implements driver.Valuer. A zero ID is stored as NULL.
func (id ID[K]) Value() (driver.Value, error) {
	if id.value == "" {
		return nil, nil
	}
	return id.value, nil
}

// Scan implements sql.Scanner.
func (id *ID[K]) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*id = ID[K]{}
		return nil
	case string:
		parsed, err := ParseID[K](v)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	case []byte:
		return id.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ID", src)
	}
}

func (id ID[K]) MarshalText() ([]byte, error) { return []byte(id.value), nil }

func (id *ID[K]) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*id = ID[K]{}
		return nil
	}
	parsed, err := ParseID[K](string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Identifier kinds shared across module boundaries.
type (
	UserKind         struct{}
	TrainerKind      struct{}
	ProgramKind      struct{}
	ProgramDayKind   struct{}
	ExerciseKind     struct{}
	PackageKind      struct{}
	SubscriptionKind struct{}
	PaymentKind      struct{}
	ThreadKind       struct{}
	MessageKind      struct{}
	ReviewKind       struct{}
	NotificationKind struct{}
	BodyStatKind     struct{}
	WorkoutLogKind   struct{}
)

type (
	UserID         = ID[UserKind]
	TrainerID      = ID[TrainerKind]
	ProgramID      = ID[ProgramKind]
	ProgramDayID   = ID[ProgramDayKind]
	ExerciseID     = ID[ExerciseKind]
	PackageID      = ID[PackageKind]
	SubscriptionID = ID[SubscriptionKind]
	PaymentID      = ID[PaymentKind]
	ThreadID       = ID[ThreadKind]
	MessageID      = ID[MessageKind]
	ReviewID       = ID[ReviewKind]
	NotificationID = ID[NotificationKind]
	BodyStatID     = ID[BodyStatKind]
	WorkoutLogID   = ID[WorkoutLogKind]
)

func NewUserID() UserID { return NewID[UserKind]() }

func ParseUserID(s string) (UserID, error) { return ParseID[UserKind](s) }

func ParseTrainerID(s string) (TrainerID, error) { return ParseID[TrainerKind](s) }

func ParseProgramID(s string) (ProgramID, error) { return ParseID[ProgramKind](s) }

func ParsePackageID(s string) (PackageID, error) { return ParseID[PackageKind](s) }

func ParseSubscriptionID(s string) (SubscriptionID, error) { return ParseID[SubscriptionKind](s) }

func ParsePaymentID(s string) (PaymentID, error) { return ParseID[PaymentKind](s) }

func ParseThreadID(s string) (ThreadID, error) { return ParseID[ThreadKind](s) }

func ParseExerciseID(s string) (ExerciseID, error) { return ParseID[ExerciseKind](s) }

func ParseProgramDayID(s string) (ProgramDayID, error) { return ParseID[ProgramDayKind](s) }

// ParseIDs parses every element of ss, failing on the first invalid one.
func ParseIDs[K any](ss []string) ([]ID[K], error) {
	ids := make([]ID[K], 0, len(ss))
	for _, s := range ss {
		id, err := ParseID[K](s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
