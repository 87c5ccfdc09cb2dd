package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Email is a value object representing a validated email address.
// Value objects are immutable and compared by value.
type Email struct {
	value string
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NewEmail creates a validated Email value object.
func NewEmail(value string) (Email, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return Email{}, ErrEmailRequired
	}
	if !emailRegex.MatchString(value) {
		return Email{}, ErrEmailInvalid
	}
	return Email{value: value}, nil
}

func (e Email) String() string { return e.value }
func (e Email) IsZero() bool   { return e.value == "" }

func (e Email) Equals(other Email) bool {
	return e.value == other.value
}

// UserName is the unique, lowercased login handle of an account.
type UserName struct {
	value string
}

var userNameRegex = regexp.MustCompile(`^[a-z0-9\-._@+]{3,256}$`)

func NewUserName(value string) (UserName, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return UserName{}, ErrUserNameRequired
	}
	if !userNameRegex.MatchString(value) {
		return UserName{}, ErrUserNameInvalid
	}
	return UserName{value: value}, nil
}

func (n UserName) String() string { return n.value }

// FullName is the display name of an account.
type FullName struct {
	value string
}

func NewFullName(value string) (FullName, error) {
	value = strings.Join(strings.Fields(value), " ")
	if value == "" {
		return FullName{}, ErrFullNameRequired
	}
	if n := utf8.RuneCountInString(value); n < 3 || n > 100 {
		return FullName{}, ErrFullNameLength
	}
	return FullName{value: value}, nil
}

func (n FullName) String() string { return n.value }

// ValidatePassword enforces the account password policy: at least six
// characters with an uppercase letter, a lowercase letter, a digit and a
// non-alphanumeric character.
func ValidatePassword(pw string) error {
	var upper, lower, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			symbol = true
		}
	}

	var problems []string
	if utf8.RuneCountInString(pw) < 6 {
		problems = append(problems, "at least 6 characters")
	}
	if !upper {
		problems = append(problems, "an uppercase letter")
	}
	if !lower {
		problems = append(problems, "a lowercase letter")
	}
	if !digit {
		problems = append(problems, "a digit")
	}
	if !symbol {
		problems = append(problems, "a non-alphanumeric character")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: requires %s", ErrWeakPassword, strings.Join(problems, ", "))
	}
	return nil
}

// Status is the derived account state shown to administrators.
type Status string

const (
	StatusActive    Status = "Active"
	StatusLocked    Status = "Locked"
	StatusSuspended Status = "Suspended"
	StatusDeleted   Status = "Deleted"
)

func (s Status) String() string { return string(s) }

// ExternalLogin links an account to an external identity provider.
type ExternalLogin struct {
	Provider    string
	ProviderKey string
}

const ProviderGoogle = "Google"

// Sign-in methods reported in events.
const (
	MethodPassword = "password"
	MethodGoogle   = "google"
)
