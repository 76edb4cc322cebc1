package auth

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/domain"
	apperrors "github.com/fetullahyldz/qr.menux.com-sub001/pkg/util"
)

// Require gates a route on the visitor session and the allowed roles. It is
// evaluated on every request. Browser navigations are redirected; API calls
// get the error envelope with the redirect target in details.
func Require(guard Guard, allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var session Session
		if client, ok := ClientFromContext(c); ok {
			session = client
		}

		decision := guard.Decide(session, allowed, c.OriginalURL())
		switch decision.Outcome {
		case Render:
			return c.Next()
		case RedirectLogin:
			if wantsNavigation(c) {
				return c.Redirect(decision.Location, http.StatusFound)
			}
			return apperrors.NewRedirect(http.StatusUnauthorized, "LOGIN_REQUIRED", decision.Location)
		case RedirectHome:
			if wantsNavigation(c) {
				return c.Redirect(decision.Location, http.StatusFound)
			}
			return apperrors.NewRedirect(http.StatusForbidden, "ACCESS_DENIED", decision.Location)
		default:
			return apperrors.NewForbidden("insufficient role")
		}
	}
}

// RequireAnyRole admits any authenticated visitor.
func RequireAnyRole(guard Guard) fiber.Handler {
	return Require(guard)
}

// wantsNavigation reports a browser page load: a GET that explicitly accepts HTML.
func wantsNavigation(c *fiber.Ctx) bool {
	if c.Method() != fiber.MethodGet {
		return false
	}
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMETextHTML)
}
