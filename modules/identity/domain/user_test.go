package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func TestNewUser(t *testing.T) {
	user := createTestUser(t)

	if user.ID().IsZero() {
		t.Error("expected user to have an ID")
	}
	if user.Email().String() != "jane@example.com" {
		t.Errorf("expected email 'jane@example.com', got '%s'", user.Email())
	}
	if user.UserName().String() != "jane.doe" {
		t.Errorf("expected user name 'jane.doe', got '%s'", user.UserName())
	}
	if user.Status(time.Now()) != domain.StatusActive {
		t.Errorf("expected status Active, got '%s'", user.Status(time.Now()))
	}

	evts := user.DomainEvents()
	if len(evts) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evts))
	}
	registered, ok := evts[0].(contracts.UserRegisteredEvent)
	if !ok {
		t.Fatalf("expected UserRegisteredEvent, got %T", evts[0])
	}
	if registered.Method != domain.MethodPassword || registered.Role != types.RoleClient {
		t.Errorf("unexpected event payload: %+v", registered)
	}
}

func TestNewUser_RejectsAdminRole(t *testing.T) {
	email, _ := domain.NewEmail("root@example.com")
	name, _ := domain.NewUserName("root")
	full, _ := domain.NewFullName("Root User")

	_, err := domain.NewUser(name, email, full, types.RoleAdmin, "hash")
	if !errors.Is(err, domain.ErrRoleNotAllowed) {
		t.Errorf("expected ErrRoleNotAllowed, got %v", err)
	}
}

func TestNewExternalUser(t *testing.T) {
	email, _ := domain.NewEmail("G.User@Gmail.com")
	full, _ := domain.NewFullName("Google User")
	login := domain.ExternalLogin{Provider: domain.ProviderGoogle, ProviderKey: "sub-1"}

	user, err := domain.NewExternalUser(email, full, "https://img/p.png", login)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.UserName().String() != "g.user@gmail.com" {
		t.Errorf("expected user name to be the email, got %s", user.UserName())
	}
	if !user.EmailConfirmed() || user.HasPassword() {
		t.Error("expected confirmed email and no password")
	}
	if user.Role() != types.RoleClient {
		t.Errorf("expected Client role, got %s", user.Role())
	}
}

func TestUser_SuspendAndReactivate(t *testing.T) {
	user := createTestUser(t)
	user.ClearDomainEvents()
	now := time.Now()

	if err := user.Suspend(); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if !user.IsSuspended() || user.Status(now) != domain.StatusSuspended {
		t.Error("expected suspended user")
	}
	if err := user.CanSignIn(now); !errors.Is(err, domain.ErrLockedOut) {
		t.Errorf("expected ErrLockedOut, got %v", err)
	}

	if err := user.Reactivate(now); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if user.IsSuspended() || user.CanSignIn(now.Add(time.Second)) != nil {
		t.Error("expected reactivated user to sign in")
	}

	evts := user.DomainEvents()
	if len(evts) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evts))
	}
	if evts[0].EventType() != contracts.UserSuspendedEventType || evts[1].EventType() != contracts.UserReactivatedEventType {
		t.Errorf("unexpected event order: %s, %s", evts[0].EventType(), evts[1].EventType())
	}
}

func TestUser_LockUntil(t *testing.T) {
	user := createTestUser(t)
	now := time.Now()

	if err := user.Lock(now.Add(time.Hour)); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if user.Status(now) != domain.StatusLocked {
		t.Errorf("expected Locked, got %s", user.Status(now))
	}
	if user.Status(now.Add(2*time.Hour)) != domain.StatusActive {
		t.Error("expected lock to lapse")
	}

	if err := user.Unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if user.LockoutEnd() != nil {
		t.Error("expected lockout to be cleared")
	}
}

func TestUser_ChangeRole(t *testing.T) {
	user := createTestUser(t)
	user.ClearDomainEvents()

	if err := user.ChangeRole(types.RoleClient); err != nil {
		t.Fatalf("same role: %v", err)
	}
	if len(user.DomainEvents()) != 0 {
		t.Error("expected no event for unchanged role")
	}

	if err := user.ChangeRole(types.RoleTrainer); err != nil {
		t.Fatalf("change role: %v", err)
	}
	changed := user.DomainEvents()[0].(contracts.UserRoleChangedEvent)
	if changed.OldRole != types.RoleClient || changed.NewRole != types.RoleTrainer {
		t.Errorf("unexpected roles: %+v", changed)
	}

	if err := user.ChangeRole("Coach"); !errors.Is(err, types.ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
}

func TestUser_Delete(t *testing.T) {
	user := createTestUser(t)

	if err := user.Delete(); err != nil {
		t.Fatalf("failed to delete user: %v", err)
	}
	if user.Status(time.Now()) != domain.StatusDeleted {
		t.Errorf("expected Deleted, got %s", user.Status(time.Now()))
	}
	if err := user.Delete(); !errors.Is(err, domain.ErrUserDeleted) {
		t.Errorf("expected ErrUserDeleted on second delete, got %v", err)
	}
	if err := user.CanSignIn(time.Now()); !errors.Is(err, domain.ErrUserDeleted) {
		t.Errorf("expected deleted user to be refused, got %v", err)
	}
}

func TestUser_UpdateProfileResetsConfirmation(t *testing.T) {
	email, _ := domain.NewEmail("g@example.com")
	full, _ := domain.NewFullName("Google User")
	user, _ := domain.NewExternalUser(email, full, "", domain.ExternalLogin{Provider: domain.ProviderGoogle, ProviderKey: "k"})

	newEmail, _ := domain.NewEmail("other@example.com")
	if err := user.UpdateProfile(user.UserName(), user.FullName(), newEmail, ""); err != nil {
		t.Fatalf("update: %v", err)
	}
	if user.EmailConfirmed() {
		t.Error("expected changed email to be unconfirmed")
	}
}

func TestUser_LinkLoginIsIdempotent(t *testing.T) {
	user := createTestUser(t)
	login := domain.ExternalLogin{Provider: domain.ProviderGoogle, ProviderKey: "abc"}

	user.LinkLogin(login)
	user.LinkLogin(login)

	if len(user.Logins()) != 1 {
		t.Errorf("expected 1 login, got %d", len(user.Logins()))
	}
}

func TestReconstituteRoundTrip(t *testing.T) {
	user := createTestUser(t)
	state := user.State()

	restored := domain.Reconstitute(state)
	if restored.ID() != user.ID() || restored.Email() != user.Email() || restored.PasswordHash() != "hash" {
		t.Errorf("restored user differs: %+v", restored.State())
	}
	if len(restored.DomainEvents()) != 0 {
		t.Error("reconstituted users carry no events")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"Passw0rd!", true},
		{"Ab1!", false},
		{"password1!", false},
		{"PASSWORD1!", false},
		{"Password!", false},
		{"Password1", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := domain.ValidatePassword(tt.password)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && !errors.Is(err, domain.ErrWeakPassword) {
				t.Errorf("expected ErrWeakPassword, got %v", err)
			}
		})
	}
}

func TestNewUserName(t *testing.T) {
	if _, err := domain.NewUserName("ab"); !errors.Is(err, domain.ErrUserNameInvalid) {
		t.Errorf("expected ErrUserNameInvalid, got %v", err)
	}
	if _, err := domain.NewUserName("bad name"); !errors.Is(err, domain.ErrUserNameInvalid) {
		t.Errorf("expected ErrUserNameInvalid, got %v", err)
	}
	n, err := domain.NewUserName("  Coach.Mo+1 ")
	if err != nil || n.String() != "coach.mo+1" {
		t.Errorf("expected normalized name, got %q, %v", n, err)
	}
}

func TestStatistics_ClientTrainerRatio(t *testing.T) {
	if r := (domain.Statistics{Clients: 10}).ClientTrainerRatio(); r != 0 {
		t.Errorf("expected 0 without trainers, got %v", r)
	}
	if r := (domain.Statistics{Clients: 10, Trainers: 4}).ClientTrainerRatio(); r != 2.5 {
		t.Errorf("expected 2.5, got %v", r)
	}
}

func createTestUser(t *testing.T) *domain.User {
	t.Helper()

	email, err := domain.NewEmail("Jane@Example.com")
	if err != nil {
		t.Fatalf("failed to create email: %v", err)
	}
	name, err := domain.NewUserName("jane.doe")
	if err != nil {
		t.Fatalf("failed to create user name: %v", err)
	}
	full, err := domain.NewFullName("Jane Doe")
	if err != nil {
		t.Fatalf("failed to create full name: %v", err)
	}

	user, err := domain.NewUser(name, email, full, types.RoleClient, "hash")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}
