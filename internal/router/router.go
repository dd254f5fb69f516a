// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/carmarket/internal/config"
	"github.com/iliyamo/carmarket/internal/handler"
	"github.com/iliyamo/carmarket/internal/middleware"
	"github.com/iliyamo/carmarket/internal/model"
	"github.com/iliyamo/carmarket/internal/platform/metrics"
)

// Deps is everything the routes need.
type Deps struct {
	Cfg        config.Config
	Log        *zap.Logger
	Metrics    *metrics.Metrics
	Redis      *redis.Client // nil disables rate limiting
	Renderer   echo.Renderer
	Auth       *handler.AuthHandler
	Cars       *handler.CarHandler
	Deals      *handler.DealHandler
	Statistics *handler.StatisticsHandler
}

// New builds the echo instance with the global middleware chain and every
// route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = d.Renderer
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log)

	e.Pre(trailingSlash(http.StatusMovedPermanently, true), trailingSlash(http.StatusPermanentRedirect, false))
	e.Use(
		middleware.RequestID(),
		middleware.RequestLogger(d.Log, d.Metrics),
		echomw.Recover(),
		middleware.Identify(d.Cfg.JWTSecret),
		middleware.CSRF(d.Cfg.Env == "prod"),
		middleware.NewTokenBucket(d.Cfg.RateLimit, d.Redis, d.Log),
	)

	RegisterRoutes(e, d.Metrics)
	RegisterAuth(e, d.Auth, d.Cfg.JWTSecret)
	RegisterMarket(e, d.Cars, d.Deals, d.Statistics)
	return e
}

// trailingSlash redirects paths missing their trailing slash.  safe selects
// GET/HEAD requests; other methods need 308 so the body and verb survive
// the redirect.
func trailingSlash(code int, safe bool) echo.MiddlewareFunc {
	return echomw.AddTrailingSlashWithConfig(echomw.TrailingSlashConfig{
		RedirectCode: code,
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			if p == "/healthz" || p == "/metrics" || strings.HasPrefix(p, "/media/") {
				return true
			}
			m := c.Request().Method
			return (m == http.MethodGet || m == http.MethodHead) != safe
		},
	})
}

// RegisterRoutes registers the operational endpoints.
func RegisterRoutes(e *echo.Echo, m *metrics.Metrics) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
}

// RegisterAuth registers the authentication endpoints under /auth/.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/auth")
	g.POST("/register/", a.Register)
	g.GET("/login/", a.LoginPage)
	g.POST("/login/", a.Login)
	g.POST("/refresh/", a.Refresh)
	g.POST("/logout/", a.Logout)
	g.GET("/me/", a.Me, middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleOwner, model.RoleSeeker))
}

// RegisterMarket registers the marketplace pages.  Echo matches static
// segments before parameters, so /add/ and /statistics/ never reach the
// /:carId/ handlers.
func RegisterMarket(e *echo.Echo, cars *handler.CarHandler, deals *handler.DealHandler, stats *handler.StatisticsHandler) {
	getPost := []string{http.MethodGet, http.MethodPost}
	login := middleware.RequireLogin()

	e.GET("/", cars.List)
	e.GET("/statistics/", stats.Show)
	e.GET("/media/cars_images/:name", cars.Media)
	e.Match(getPost, "/add/", cars.Create, login)
	e.GET("/my-deal-requests/", deals.OwnerList, login)
	e.POST("/request/:requestId/approve/", deals.Approve, login, middleware.RequireCapability(model.IsOwner))
	e.POST("/request/:requestId/reject/", deals.Reject, login, middleware.RequireCapability(model.IsOwner))

	e.GET("/:carId/", cars.Detail)
	e.Match(getPost, "/:carId/edit/", cars.Edit, login)
	e.Match(getPost, "/:carId/delete/", cars.Delete, login)
	e.Match(getPost, "/:carId/deal-request/", deals.Submit, login)
}
