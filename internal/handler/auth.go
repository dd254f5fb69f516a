package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/carmarket/internal/config"
    "github.com/iliyamo/carmarket/internal/middleware"
    "github.com/iliyamo/carmarket/internal/model"
    "github.com/iliyamo/carmarket/internal/repository"
    "github.com/iliyamo/carmarket/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Cfg    config.Config
    Users  *repository.UserRepo
    Tokens *repository.TokenRepo
    Log    *zap.Logger
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, log *zap.Logger) *AuthHandler {
    if u == nil || t == nil {
        panic("nil repository passed to NewAuthHandler")
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Log: log}
}

// ----- DTOs -----

type registerReq struct {
    Email    string `json:"email" form:"email"`
    Password string `json:"password" form:"password"`
    Role     string `json:"role" form:"role"` // OWNER | SEEKER
}
type loginReq struct {
    Email    string `json:"email" form:"email"`
    Password string `json:"password" form:"password"`
    Next     string `json:"next" form:"next"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type userPart struct {
    ID    uint64 `json:"id"`
    Email string `json:"email"`
    Role  string `json:"role"`
}
type authResp struct {
    User    userPart  `json:"user"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

const authTimeout = 5 * time.Second

// Register: POST /auth/register/.  Creates the user and returns a token pair.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }
    if len(req.Password) < 8 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
    }
    role := model.NormalizeRole(req.Role)

    ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
    defer cancel()

    uid, err := h.Users.Create(ctx, req.Email, req.Password, role, h.Cfg.BcryptCost)
    if err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
        }
        return h.fail(c, "create user failed", err)
    }
    h.Log.Info("user registered", zap.Uint64("user_id", uid), zap.String("role", role))

    resp, err := h.issue(ctx, userPart{ID: uid, Email: req.Email, Role: role})
    if err != nil {
        return h.fail(c, "issue tokens failed", err)
    }
    h.setAccessCookie(c, resp.Access)
    return c.JSON(http.StatusCreated, resp)
}

// LoginPage: GET /auth/login/
func (h *AuthHandler) LoginPage(c echo.Context) error {
    return c.Render(http.StatusOK, "login", echo.Map{"Next": safeNext(c.QueryParam("next")), "Email": "", "Error": ""})
}

// Login: POST /auth/login/.  Browsers posting the login form get the access
// cookie and a redirect to ?next; JSON clients get the token pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    isForm := !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
    deny := func(status int, msg string) error {
        if isForm {
            return c.Render(status, "login", echo.Map{"Next": safeNext(req.Next), "Email": req.Email, "Error": msg})
        }
        return c.JSON(status, echo.Map{"error": msg})
    }
    if req.Email == "" || req.Password == "" {
        return deny(http.StatusBadRequest, "email/password required")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return deny(http.StatusUnauthorized, "invalid credentials")
        }
        return h.fail(c, "query failed", err)
    }
    if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return deny(http.StatusUnauthorized, "invalid credentials")
    }

    resp, err := h.issue(ctx, userPart{ID: u.ID, Email: u.Email, Role: u.Role})
    if err != nil {
        return h.fail(c, "issue tokens failed", err)
    }
    h.setAccessCookie(c, resp.Access)
    if isForm {
        return c.Redirect(http.StatusFound, safeNext(req.Next))
    }
    return c.JSON(http.StatusOK, resp)
}

// Refresh: POST /auth/refresh/.  Validates by hash, revokes the old token
// and issues a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }
    hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
    defer cancel()

    userID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
    }
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        return h.fail(c, "revoke refresh failed", err)
    }
    u, err := h.Users.GetByID(ctx, userID)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
        }
        return h.fail(c, "load user failed", err)
    }

    resp, err := h.issue(ctx, userPart{ID: u.ID, Email: u.Email, Role: u.Role})
    if err != nil {
        return h.fail(c, "issue tokens failed", err)
    }
    h.setAccessCookie(c, resp.Access)
    return c.JSON(http.StatusOK, resp)
}

// Logout: POST /auth/logout/.  Revokes the given refresh token, or every
// refresh token of the signed-in user when none is given, and clears the
// access cookie.  Browsers are redirected to the listing.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    _ = c.Bind(&req)
    raw := strings.TrimSpace(req.RefreshToken)

    ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
    defer cancel()

    uid, signedIn := middleware.UserID(c)
    switch {
    case raw != "":
        hash := utils.HashRefreshRaw(raw)
        if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
        }
        if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
            return h.fail(c, "logout failed", err)
        }
    case signedIn:
        if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
            return h.fail(c, "logout failed", err)
        }
    default:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide an access token or refresh_token"})
    }

    c.SetCookie(&http.Cookie{Name: middleware.AccessCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
    if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
        return c.NoContent(http.StatusNoContent)
    }
    return c.Redirect(http.StatusFound, "/")
}

// Me: GET /auth/me/
func (h *AuthHandler) Me(c echo.Context) error {
    uid, _ := middleware.UserID(c)
    return c.JSON(http.StatusOK, echo.Map{
        "user_id": uid,
        "role":    middleware.Role(c),
    })
}

func (h *AuthHandler) issue(ctx context.Context, u userPart) (authResp, error) {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return authResp{}, err
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return authResp{}, err
    }
    if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return authResp{}, err
    }
    return authResp{
        User:    u,
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
    }, nil
}

func (h *AuthHandler) setAccessCookie(c echo.Context, t tokenPart) {
    c.SetCookie(&http.Cookie{
        Name:     middleware.AccessCookie,
        Value:    t.Token,
        Path:     "/",
        Expires:  t.Expires,
        HttpOnly: true,
        Secure:   h.Cfg.Env == "prod",
        SameSite: http.SameSiteLaxMode,
    })
}

func (h *AuthHandler) fail(c echo.Context, msg string, err error) error {
    h.Log.Error(msg, zap.Error(err))
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
    if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
        return "/"
    }
    return next
}
