// Package guard decides whether a session may see a role-restricted view.
// It is the only place that maps roles to their home views.
package guard

import "github.com/agri-oasis/storefront/internal/domain/session"

// LoginPath is the login entry point
const LoginPath = "/login"

var homes = map[session.Role]string{
	session.RoleFarmer: "/farmer/dashboard",
	session.RoleAdmin:  "/admin/dashboard",
	session.RoleBuyer:  "/user/dashboard",
}

// HomeFor returns the home view of role. Unknown roles get the login path.
func HomeFor(role session.Role) string {
	if home, ok := homes[role]; ok {
		return home
	}
	return LoginPath
}

// Outcome is the result of a guard check
type Outcome int

const (
	Render Outcome = iota
	RedirectLogin
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case RedirectLogin:
		return "unauthenticated"
	case RedirectHome:
		return "wrong-role"
	}
	return "unknown"
}

// Decision is what the caller must do with the protected view. Redirects
// always replace the current history entry.
type Decision struct {
	Outcome  Outcome
	Location string
	Replace  bool
}

// Allowed reports whether the protected content may render
func (d Decision) Allowed() bool {
	return d.Outcome == Render
}

// Check evaluates the guard for sess against the required role
func Check(sess *session.Session, required session.Role) Decision {
	if !sess.Authenticated() {
		return Decision{Outcome: RedirectLogin, Location: LoginPath, Replace: true}
	}
	if sess.Role() != required {
		return Decision{Outcome: RedirectHome, Location: HomeFor(sess.Role()), Replace: true}
	}
	return Decision{Outcome: Render}
}
