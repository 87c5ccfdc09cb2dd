// Package domain contains the business entities and rules for accounts.
// This is the innermost layer - it has no dependencies on outer layers.
package domain

import (
	"time"

	shareddomain "github.com/AlagappanMk24/Gymunity/modules/shared/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// SuspendedUntil is the lockout end recorded for suspended accounts.
var SuspendedUntil = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// User is the aggregate root for the identity bounded context.
// It encapsulates all account-related business rules.
type User struct {
	shareddomain.AggregateRoot

	id                types.UserID
	userName          UserName
	email             Email
	fullName          FullName
	photoURL          string
	role              types.Role
	isVerified        bool
	emailConfirmed    bool
	passwordHash      string
	createdAt         time.Time
	updatedAt         time.Time
	lastLoginAt       *time.Time
	lockoutEnd        *time.Time
	accessFailedCount int
	deleted           bool
	logins            []ExternalLogin
}

// NewUser registers a password account. Only clients and trainers may
// self-register.
func NewUser(userName UserName, email Email, fullName FullName, role types.Role, passwordHash string) (*User, error) {
	if role != types.RoleClient && role != types.RoleTrainer {
		return nil, ErrRoleNotAllowed
	}
	now := time.Now().UTC()
	u := &User{
		id:           types.NewUserID(),
		userName:     userName,
		email:        email,
		fullName:     fullName,
		role:         role,
		passwordHash: passwordHash,
		createdAt:    now,
		updatedAt:    now,
	}
	u.AddDomainEvent(newUserRegisteredEvent(u, MethodPassword))
	return u, nil
}

// NewExternalUser creates a client account from a verified external identity.
// The email doubles as the user name.
func NewExternalUser(email Email, fullName FullName, photoURL string, login ExternalLogin) (*User, error) {
	userName, err := NewUserName(email.String())
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &User{
		id:             types.NewUserID(),
		userName:       userName,
		email:          email,
		fullName:       fullName,
		photoURL:       photoURL,
		role:           types.RoleClient,
		emailConfirmed: true,
		createdAt:      now,
		updatedAt:      now,
		logins:         []ExternalLogin{login},
	}
	u.AddDomainEvent(newUserRegisteredEvent(u, MethodGoogle))
	return u, nil
}

// NewAdmin creates an administrator. Used by seeding only.
func NewAdmin(userName UserName, email Email, fullName FullName, passwordHash string) *User {
	return NewSeededUser(userName, email, fullName, types.RoleAdmin, passwordHash)
}

// NewSeededUser creates a confirmed, verified account of any role without
// raising UserRegistered. Used by seeding only.
func NewSeededUser(userName UserName, email Email, fullName FullName, role types.Role, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		id:             types.NewUserID(),
		userName:       userName,
		email:          email,
		fullName:       fullName,
		role:           role,
		isVerified:     true,
		emailConfirmed: true,
		passwordHash:   passwordHash,
		createdAt:      now,
		updatedAt:      now,
	}
}

// UserState is the persisted form of a User.
type UserState struct {
	ID                types.UserID
	UserName          string
	Email             string
	FullName          string
	PhotoURL          string
	Role              types.Role
	IsVerified        bool
	EmailConfirmed    bool
	PasswordHash      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	LastLoginAt       *time.Time
	LockoutEnd        *time.Time
	AccessFailedCount int
	Deleted           bool
	Logins            []ExternalLogin
}

// Reconstitute recreates a User from persistence.
// Stored values are trusted; validation happened when they were written.
func Reconstitute(s UserState) *User {
	return &User{
		id:                s.ID,
		userName:          UserName{value: s.UserName},
		email:             Email{value: s.Email},
		fullName:          FullName{value: s.FullName},
		photoURL:          s.PhotoURL,
		role:              s.Role,
		isVerified:        s.IsVerified,
		emailConfirmed:    s.EmailConfirmed,
		passwordHash:      s.PasswordHash,
		createdAt:         s.CreatedAt,
		updatedAt:         s.UpdatedAt,
		lastLoginAt:       s.LastLoginAt,
		lockoutEnd:        s.LockoutEnd,
		accessFailedCount: s.AccessFailedCount,
		deleted:           s.Deleted,
		logins:            s.Logins,
	}
}

// State snapshots the aggregate for persistence.
func (u *User) State() UserState {
	return UserState{
		ID:                u.id,
		UserName:          u.userName.String(),
		Email:             u.email.String(),
		FullName:          u.fullName.String(),
		PhotoURL:          u.photoURL,
		Role:              u.role,
		IsVerified:        u.isVerified,
		EmailConfirmed:    u.emailConfirmed,
		PasswordHash:      u.passwordHash,
		CreatedAt:         u.createdAt,
		UpdatedAt:         u.updatedAt,
		LastLoginAt:       u.lastLoginAt,
		LockoutEnd:        u.lockoutEnd,
		AccessFailedCount: u.accessFailedCount,
		Deleted:           u.deleted,
		Logins:            append([]ExternalLogin(nil), u.logins...),
	}
}

// Getters - expose state without allowing direct mutation

func (u *User) ID() types.UserID         { return u.id }
func (u *User) UserName() UserName       { return u.userName }
func (u *User) Email() Email             { return u.email }
func (u *User) FullName() FullName       { return u.fullName }
func (u *User) PhotoURL() string         { return u.photoURL }
func (u *User) Role() types.Role         { return u.role }
func (u *User) IsVerified() bool         { return u.isVerified }
func (u *User) EmailConfirmed() bool     { return u.emailConfirmed }
func (u *User) PasswordHash() string     { return u.passwordHash }
func (u *User) CreatedAt() time.Time     { return u.createdAt }
func (u *User) UpdatedAt() time.Time     { return u.updatedAt }
func (u *User) LastLoginAt() *time.Time  { return u.lastLoginAt }
func (u *User) LockoutEnd() *time.Time   { return u.lockoutEnd }
func (u *User) IsDeleted() bool          { return u.deleted }
func (u *User) Logins() []ExternalLogin  { return u.logins }
func (u *User) HasPassword() bool        { return u.passwordHash != "" }

// IsSuspended reports an indefinite lockout applied by an administrator.
func (u *User) IsSuspended() bool {
	return u.lockoutEnd != nil && !u.lockoutEnd.Before(SuspendedUntil)
}

// IsLockedOut reports whether the lockout is still running at now.
func (u *User) IsLockedOut(now time.Time) bool {
	return u.lockoutEnd != nil && u.lockoutEnd.After(now)
}

// Status derives the administrative state at now.
func (u *User) Status(now time.Time) Status {
	switch {
	case u.deleted:
		return StatusDeleted
	case u.IsSuspended():
		return StatusSuspended
	case u.IsLockedOut(now):
		return StatusLocked
	default:
		return StatusActive
	}
}

// Business methods - encapsulate business rules

// CanSignIn rejects deleted and locked accounts.
func (u *User) CanSignIn(now time.Time) error {
	if u.deleted {
		return ErrUserDeleted
	}
	if u.IsLockedOut(now) {
		return ErrLockedOut
	}
	return nil
}

// RecordSignIn stamps the login and raises UserSignedIn.
func (u *User) RecordSignIn(method string, now time.Time) {
	now = now.UTC()
	u.lastLoginAt = &now
	u.accessFailedCount = 0
	u.updatedAt = now
	u.AddDomainEvent(newUserSignedInEvent(u, method))
}

// UpdateProfile replaces the self-service profile fields.
func (u *User) UpdateProfile(userName UserName, fullName FullName, email Email, photoURL string) error {
	if u.deleted {
		return ErrUserDeleted
	}
	if !u.email.Equals(email) {
		u.emailConfirmed = false
	}
	u.userName = userName
	u.fullName = fullName
	u.email = email
	if photoURL != "" {
		u.photoURL = photoURL
	}
	u.updatedAt = time.Now().UTC()
	return nil
}

// SetVerified marks the account as vetted by an administrator.
func (u *User) SetVerified(verified bool) error {
	if u.deleted {
		return ErrUserDeleted
	}
	u.isVerified = verified
	u.updatedAt = time.Now().UTC()
	return nil
}

// SetPasswordHash replaces the stored password hash.
func (u *User) SetPasswordHash(hash string) error {
	if u.deleted {
		return ErrUserDeleted
	}
	u.passwordHash = hash
	u.updatedAt = time.Now().UTC()
	return nil
}

// LinkLogin attaches an external login. Linking the same login twice is a no-op.
func (u *User) LinkLogin(login ExternalLogin) {
	for _, l := range u.logins {
		if l == login {
			return
		}
	}
	u.logins = append(u.logins, login)
	u.emailConfirmed = true
	u.updatedAt = time.Now().UTC()
}

// ChangeRole assigns a new role and raises UserRoleChanged.
func (u *User) ChangeRole(role types.Role) error {
	if u.deleted {
		return ErrUserDeleted
	}
	if !role.IsValid() {
		return types.ErrInvalidRole
	}
	if role == u.role {
		return nil
	}
	old := u.role
	u.role = role
	u.updatedAt = time.Now().UTC()
	u.AddDomainEvent(newUserRoleChangedEvent(u.id, old, role))
	return nil
}

// Suspend locks the account indefinitely.
func (u *User) Suspend() error {
	if u.deleted {
		return ErrUserDeleted
	}
	end := SuspendedUntil
	u.lockoutEnd = &end
	u.updatedAt = time.Now().UTC()
	u.AddDomainEvent(newUserSuspendedEvent(u.id))
	return nil
}

// Reactivate ends any lockout and resets the failure counter.
func (u *User) Reactivate(now time.Time) error {
	if u.deleted {
		return ErrUserDeleted
	}
	now = now.UTC()
	u.lockoutEnd = &now
	u.accessFailedCount = 0
	u.updatedAt = now
	u.AddDomainEvent(newUserReactivatedEvent(u.id))
	return nil
}

// Lock prevents sign-in until until.
func (u *User) Lock(until time.Time) error {
	if u.deleted {
		return ErrUserDeleted
	}
	until = until.UTC()
	u.lockoutEnd = &until
	u.updatedAt = time.Now().UTC()
	return nil
}

// Unlock clears the lockout.
func (u *User) Unlock() error {
	if u.deleted {
		return ErrUserDeleted
	}
	u.lockoutEnd = nil
	u.accessFailedCount = 0
	u.updatedAt = time.Now().UTC()
	return nil
}

// Delete marks the user as deleted (soft delete).
// Adds UserDeletedEvent to be dispatched within the transaction.
func (u *User) Delete() error {
	if u.deleted {
		return ErrUserDeleted
	}
	u.deleted = true
	u.updatedAt = time.Now().UTC()
	u.AddDomainEvent(newUserDeletedEvent(u.id))
	return nil
}

// RequestPasswordReset raises the event that mails link to the owner.
func (u *User) RequestPasswordReset(link string) error {
	if u.deleted {
		return ErrUserDeleted
	}
	u.AddDomainEvent(newPasswordResetRequestedEvent(u, link))
	return nil
}
