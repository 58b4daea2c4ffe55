package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SessionCookieName is the cookie carrying the signed identity token.
const SessionCookieName = "session"

// TokenVerifier resolves a signed identity token back to a phone number.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Session validates the identity cookie and injects the donor phone into the
// request context. Callers with no cookie are routed to registration; callers
// with a cookie that fails verification are routed through the logout path so
// the stale token gets cleared instead of crashing the request.
func Session(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return c.Redirect(http.StatusSeeOther, "/register")
			}

			phone, err := verifier.Verify(cookie.Value)
			if err != nil {
				return c.Redirect(http.StatusSeeOther, "/logout")
			}

			c.Set("phone", phone)
			return next(c)
		}
	}
}
