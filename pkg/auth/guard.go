package auth

import "github.com/voltflow/crm/pkg/models"

// Redirect targets used by the guard
const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

// Decision is what a protected route does for the current session
type Decision int

const (
	// Wait means the session is still resolving
	Wait Decision = iota
	Allow
	RedirectLogin
	RedirectUnauthorized
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectUnauthorized:
		return "redirect_unauthorized"
	default:
		return "wait"
	}
}

// Path returns the redirect target of the decision, empty when none
func (d Decision) Path() string {
	switch d {
	case RedirectLogin:
		return LoginPath
	case RedirectUnauthorized:
		return UnauthorizedPath
	default:
		return ""
	}
}

// DefaultAllowedRoles may use the CRM pages unless configured otherwise
var DefaultAllowedRoles = []models.Role{models.RoleAdmin, models.RoleUser}

// Guard gates a route on the session's role
type Guard struct {
	Allowed []models.Role
}

// NewGuard builds a guard from raw role names, normalising each
func NewGuard(roles ...string) Guard {
	g := Guard{}
	for _, r := range roles {
		if n := models.NormalizeRole(r); n != "" {
			g.Allowed = append(g.Allowed, n)
		}
	}
	if len(g.Allowed) == 0 {
		g.Allowed = append(g.Allowed, DefaultAllowedRoles...)
	}
	return g
}

// Permits reports whether role is allowed
func (g Guard) Permits(role models.Role) bool {
	role = models.NormalizeRole(string(role))
	for _, a := range g.Allowed {
		if a == role {
			return true
		}
	}
	return false
}

// Decide maps a session resolution to a routing decision. A user without a
// role is sent to the login page.
func (g Guard) Decide(r Resolution) Decision {
	switch r.State {
	case Unresolved:
		return Wait
	case Anonymous:
		return RedirectLogin
	}
	if r.User == nil || r.User.Role == "" {
		return RedirectLogin
	}
	if !g.Permits(r.User.Role) {
		return RedirectUnauthorized
	}
	return Allow
}
