package auth

import (
	"net/url"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/config"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/domain"
)

// Outcome is the result of a guard evaluation.
type Outcome int

const (
	// Render lets the requested view through.
	Render Outcome = iota
	// RedirectLogin sends an anonymous visitor to the login entry point.
	RedirectLogin
	// RedirectHome sends a visitor lacking the role to the home entry point.
	RedirectHome
	// Deny reports an explicit access-denied state instead of RedirectHome.
	Deny
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	case Deny:
		return "deny"
	default:
		return "unknown"
	}
}

// Evaluate decides access from a session snapshot. An empty allowed set
// admits any authenticated role.
func Evaluate(authenticated bool, role domain.Role, allowed []domain.Role) Outcome {
	if !authenticated {
		return RedirectLogin
	}
	if len(allowed) == 0 {
		return Render
	}
	for _, r := range allowed {
		if r == role {
			return Render
		}
	}
	return RedirectHome
}

// Session is what the guard reads from an auth client.
type Session interface {
	IsAuthenticated() bool
	Role() domain.Role
}

// Decision is an outcome plus where to send the visitor.
type Decision struct {
	Outcome  Outcome
	Location string
}

// Guard maps outcomes to entry points.
type Guard struct {
	LoginPath    string
	HomePath     string
	ExplicitDeny bool
}

// NewGuard builds a guard from config.
func NewGuard(cfg config.GuardConfig) Guard {
	g := Guard{LoginPath: cfg.LoginPath, HomePath: cfg.HomePath, ExplicitDeny: cfg.ExplicitDeny}
	if g.LoginPath == "" {
		g.LoginPath = "/login"
	}
	if g.HomePath == "" {
		g.HomePath = "/"
	}
	return g
}

// Decide evaluates session against allowed for the requested location. The
// login redirect carries requested in the from query parameter.
func (g Guard) Decide(session Session, allowed []domain.Role, requested string) Decision {
	authenticated, role := false, domain.Role("")
	if session != nil {
		authenticated = session.IsAuthenticated()
		role = session.Role()
	}

	switch outcome := Evaluate(authenticated, role, allowed); outcome {
	case RedirectLogin:
		location := g.LoginPath
		if requested != "" && requested != g.LoginPath {
			location += "?from=" + url.QueryEscape(requested)
		}
		return Decision{Outcome: RedirectLogin, Location: location}
	case RedirectHome:
		if g.ExplicitDeny {
			return Decision{Outcome: Deny}
		}
		return Decision{Outcome: RedirectHome, Location: g.HomePath}
	default:
		return Decision{Outcome: outcome}
	}
}
