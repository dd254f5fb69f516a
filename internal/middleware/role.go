package middleware

import (
    "net/http"
    "net/url"

    "github.com/labstack/echo/v4"
)

// LoginPath is where anonymous visitors of protected pages are sent.
const LoginPath = "/auth/login/"

// RequireLogin redirects anonymous callers to the login page, carrying the
// requested path in ?next=.  It relies on Identify having run first.
func RequireLogin() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if _, ok := UserID(c); !ok {
                return c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request().URL.RequestURI()))
            }
            return next(c)
        }
    }
}

// RequireRole answers 403 unless the caller's role is one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !allowed[Role(c)] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}

// RequireCapability answers 404 unless can(role) holds, so callers without
// the capability cannot tell the route exists.
func RequireCapability(can func(role string) bool) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !can(Role(c)) {
                return echo.ErrNotFound
            }
            return next(c)
        }
    }
}
