package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

const MaxNotesLength = 2000

// BodyStatDetails is one body measurement entry as submitted by a client.
type BodyStatDetails struct {
	WeightKg       *float64
	BodyFatPercent *float64
	// MeasurementsJSON is a free-form object such as {"waistCm": 82}.
	MeasurementsJSON string
	PhotoFrontURL    string
	PhotoSideURL     string
	PhotoBackURL     string
	Notes            string
	// LoggedAt defaults to now.
	LoggedAt time.Time
}

func (d BodyStatDetails) validate(now time.Time) (BodyStatDetails, error) {
	if d.WeightKg != nil && (*d.WeightKg < 20 || *d.WeightKg > 500) {
		return d, ErrWeightOutOfRange
	}
	if d.BodyFatPercent != nil && (*d.BodyFatPercent < 0 || *d.BodyFatPercent > 100) {
		return d, ErrBodyFatOutOfRange
	}
	d.MeasurementsJSON = strings.TrimSpace(d.MeasurementsJSON)
	if d.MeasurementsJSON != "" && (!gjson.Valid(d.MeasurementsJSON) || !gjson.Parse(d.MeasurementsJSON).IsObject()) {
		return d, ErrMeasurementsInvalid
	}
	d.Notes = strings.TrimSpace(d.Notes)
	if utf8.RuneCountInString(d.Notes) > MaxNotesLength {
		return d, ErrNotesTooLong
	}
	if d.WeightKg == nil && d.BodyFatPercent == nil && d.MeasurementsJSON == "" &&
		d.PhotoFrontURL == "" && d.PhotoSideURL == "" && d.PhotoBackURL == "" {
		return d, ErrBodyStatEmpty
	}
	if d.LoggedAt.IsZero() {
		d.LoggedAt = now
	}
	d.LoggedAt = d.LoggedAt.UTC()
	return d, nil
}

// BodyStatLog is an immutable body measurement entry.
type BodyStatLog struct {
	id      types.BodyStatID
	userID  types.UserID
	details BodyStatDetails
}

func NewBodyStatLog(userID types.UserID, d BodyStatDetails) (*BodyStatLog, error) {
	d, err := d.validate(time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return &BodyStatLog{id: types.NewID[types.BodyStatKind](), userID: userID, details: d}, nil
}

type BodyStatState struct {
	ID      types.BodyStatID
	UserID  types.UserID
	Details BodyStatDetails
}

func ReconstituteBodyStatLog(s BodyStatState) *BodyStatLog {
	return &BodyStatLog{id: s.ID, userID: s.UserID, details: s.Details}
}

func (b *BodyStatLog) State() BodyStatState {
	return BodyStatState{ID: b.id, UserID: b.userID, Details: b.details}
}

func (b *BodyStatLog) ID() types.BodyStatID     { return b.id }
func (b *BodyStatLog) UserID() types.UserID     { return b.userID }
func (b *BodyStatLog) Details() BodyStatDetails { return b.details }
func (b *BodyStatLog) LoggedAt() time.Time      { return b.details.LoggedAt }

// Measurement reads a single named measurement, for example "waistCm".
func (b *BodyStatLog) Measurement(name string) (float64, bool) {
	v := gjson.Get(b.details.MeasurementsJSON, gjson.Escape(name))
	if v.Type != gjson.Number {
		return 0, false
	}
	return v.Float(), true
}
