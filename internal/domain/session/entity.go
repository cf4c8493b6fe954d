// internal/domain/session/entity.go
package session

import "fmt"

// Role is the marketplace role issued by the authentication service
type Role string

const (
	RoleFarmer Role = "farmer"
	RoleAdmin  Role = "admin"
	// RoleBuyer is spelled "user" on the wire
	RoleBuyer Role = "user"
)

// Roles lists every role, in display order
var Roles = []Role{RoleFarmer, RoleAdmin, RoleBuyer}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleFarmer, RoleAdmin, RoleBuyer:
		return true
	}
	return false
}

// ParseRole converts a wire value to a Role
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// AccountStatus is the moderation state of an account
type AccountStatus string

const (
	StatusActive    AccountStatus = "active"
	StatusPending   AccountStatus = "pending"
	StatusSuspended AccountStatus = "suspended"
)

// Valid reports whether s is one of the known account states
func (s AccountStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusSuspended:
		return true
	}
	return false
}

// Identity is the authenticated user's profile as issued by the
// authentication service. Role never changes for the life of a session.
type Identity struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Role         Role          `json:"role"`
	Status       AccountStatus `json:"status"`
	JoinDate     string        `json:"joinDate"`
	SalesTotal   float64       `json:"sales"`
	ProductCount float64       `json:"products"`
	SpendTotal   float64       `json:"spent"`
	OrderCount   float64       `json:"orders"`
}

// Session pairs an identity with its bearer token. A nil *Session is the
// anonymous session.
type Session struct {
	Identity Identity `json:"user"`
	Token    string   `json:"-"`
}

// Role returns the session role, or "" for the anonymous session
func (s *Session) Role() Role {
	if s == nil {
		return ""
	}
	return s.Identity.Role
}

// Authenticated reports whether s carries an identity
func (s *Session) Authenticated() bool {
	return s != nil
}
