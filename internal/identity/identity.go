package identity

import "fmt"

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), nil
	default:
		return "", fmt.Errorf("invalid role %q", s)
	}
}

// Actor is a resolved identity performing or viewing an operation.
// A nil *Actor means anonymous.
type Actor struct {
	ID   string
	Name string
	Role Role
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}
