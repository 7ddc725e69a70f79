package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	authmw "github.com/Skotchmaster/auth_service/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/auth_service/internal/middleware/logging"
)

type Deps struct {
	AuthHandler  *AuthHTTP
	RolesHandler *RolesHTTP
	UsersHandler *UsersHTTP
	AdminRole    string
	// Ready reports whether the backing stores answer.
	Ready func(ctx context.Context) error
}

// New builds the echo instance with the middleware chain and all routes.
func New(logger *slog.Logger, d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return apiError(http.StatusServiceUnavailable, "service_unavailable", "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	requireAuth := authmw.RequireAuth(d.AuthHandler.Svc)
	requireAdmin := authmw.RequireRoles(d.AdminRole)

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/signup", d.AuthHandler.Signup)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.GET("/check_access", d.AuthHandler.CheckAccess)
	auth.POST("/logout", d.AuthHandler.Logout, requireAuth)

	roles := api.Group("/roles", requireAuth, requireAdmin)
	roles.GET("", d.RolesHandler.List)
	roles.POST("", d.RolesHandler.Create)
	roles.GET("/:role_id", d.RolesHandler.Get)
	roles.PATCH("/:role_id", d.RolesHandler.Update)
	roles.DELETE("/:role_id", d.RolesHandler.Delete)

	users := api.Group("/users", requireAuth)
	users.GET("", d.UsersHandler.Me)
	users.PATCH("", d.UsersHandler.Patch)
	users.GET("/sessions", d.UsersHandler.ListSessions)
	users.GET("/sessions/:session_id", d.UsersHandler.GetSession)
	users.DELETE("/sessions/:session_id", d.UsersHandler.DeleteSession)

	userRoles := users.Group("/:user_id/roles", requireAdmin)
	userRoles.GET("", d.RolesHandler.ListForUser)
	userRoles.POST("", d.RolesHandler.Assign)
	userRoles.DELETE("", d.RolesHandler.Unassign)
}
