package domain

import "errors"

// Domain errors - business rule violations.
// These errors are part of the domain language.
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrUserDeleted  = errors.New("user has been deleted")
	ErrLockedOut    = errors.New("account is locked")

	// Credential errors
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrWeakPassword          = errors.New("password does not meet the policy")
	ErrPasswordMismatch      = errors.New("current password is incorrect")
	ErrInvalidResetToken     = errors.New("reset token is invalid or expired")
	ErrGoogleSignInDisabled  = errors.New("google sign-in is not configured")
	ErrInvalidGoogleToken    = errors.New("google token is invalid")
	ErrGoogleEmailUnverified = errors.New("google account email is not verified")

	// Email errors
	ErrEmailRequired = errors.New("email is required")
	ErrEmailInvalid  = errors.New("email format is invalid")
	ErrEmailExists   = errors.New("email already exists")

	// User name errors
	ErrUserNameRequired = errors.New("user name is required")
	ErrUserNameInvalid  = errors.New("user name must be 3-256 characters of letters, digits or -._@+")
	ErrUserNameExists   = errors.New("user name already exists")

	// Full name errors
	ErrFullNameRequired = errors.New("full name is required")
	ErrFullNameLength   = errors.New("full name must be 3-100 characters")

	// Role errors
	ErrRoleNotAllowed = errors.New("role cannot be chosen at registration")
	ErrLastAdmin      = errors.New("cannot remove the last administrator")
)
