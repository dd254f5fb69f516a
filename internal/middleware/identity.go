package middleware

// identity.go resolves who is calling.  Pages are server rendered so the
// access token may arrive either as a Bearer header (API clients) or as the
// access_token cookie set at login (browsers).

import (
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/carmarket/internal/utils"
)

// AccessCookie is the cookie the login page stores the access token in.
const AccessCookie = "access_token"

// Context keys set by Identify and JWTAuth.
const (
    CtxUserID = "user_id"
    CtxRole   = "role"
)

// Identify never rejects a request.  When a valid access token is present
// it stores the caller's id (uint64) and role in the context; otherwise the
// caller stays anonymous.
func Identify(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if raw := bearerOrCookie(c); raw != "" {
                if id, err := utils.ParseAccessToken(secret, raw); err == nil {
                    c.Set(CtxUserID, id.UserID)
                    c.Set(CtxRole, id.Role)
                }
            }
            return next(c)
        }
    }
}

func bearerOrCookie(c echo.Context) string {
    if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
        return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
    }
    if ck, err := c.Cookie(AccessCookie); err == nil {
        return ck.Value
    }
    return ""
}

// UserID returns the authenticated caller, or false for anonymous requests.
func UserID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(CtxUserID).(uint64)
    return id, ok && id != 0
}

// Role returns the caller's role, empty for anonymous requests.
func Role(c echo.Context) string {
    r, _ := c.Get(CtxRole).(string)
    return r
}

// userKey is the rate limit identity: the user id or "anon".
func userKey(c echo.Context) string {
    if id, ok := UserID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
