package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/notifications/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		kind     domain.Type
		wantErr  error
		wantType domain.Type
	}{
		{name: "blank title", title: "  ", wantErr: domain.ErrTitleRequired},
		{name: "default type", title: "Hello", wantType: domain.TypeGeneral},
		{name: "explicit type", title: "Verified", kind: domain.TypeTrainerVerified, wantType: domain.TypeTrainerVerified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := domain.New(types.NewUserID(), tt.kind, tt.title, "body", "")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if n.Type() != tt.wantType {
				t.Errorf("Type() = %v, want %v", n.Type(), tt.wantType)
			}
			if n.IsRead() {
				t.Error("new notification is read")
			}
		})
	}
}

func TestMarkReadKeepsFirstReadTime(t *testing.T) {
	n, err := domain.New(types.NewUserID(), domain.TypeGeneral, "Hello", "", "")
	if err != nil {
		t.Fatal(err)
	}
	first := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	n.MarkRead(first)
	n.MarkRead(first.Add(time.Hour))
	if !n.IsRead() || n.ReadAt() == nil || !n.ReadAt().Equal(first) {
		t.Fatalf("ReadAt() = %v, want %v", n.ReadAt(), first)
	}
}

func TestParseType(t *testing.T) {
	if got, err := domain.ParseType("newreview"); err != nil || got != domain.TypeNewReview {
		t.Errorf("ParseType(newreview) = %v, %v", got, err)
	}
	if _, err := domain.ParseType("Broadcast"); !errors.Is(err, domain.ErrInvalidType) {
		t.Errorf("ParseType(Broadcast) error = %v", err)
	}
}
