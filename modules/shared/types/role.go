package types

import "strings"

// Role is the platform role of an account.
type Role string

const (
	RoleClient  Role = "Client"
	RoleTrainer Role = "Trainer"
	RoleAdmin   Role = "Admin"
)

// ParseRole accepts a role name in any letter case.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "client":
		return RoleClient, nil
	case "trainer":
		return RoleTrainer, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleTrainer, RoleAdmin:
		return true
	default:
		return false
	}
}
