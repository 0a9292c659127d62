package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-management/internal/auth"
	"github.com/iliyamo/user-management/internal/handler"
	"github.com/iliyamo/user-management/internal/middleware"
	"github.com/iliyamo/user-management/internal/model"
)

// Route guards use the hierarchical-minimum role policy
// (middleware.RequireMinRole). RequireMinRole(RoleViewer) means "any
// authenticated account with a known role"; unknown roles are rejected.

// RegisterRoutes registers the public health probes.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/healthz/db", h.PingDB)
}

// RegisterAuth registers the session lifecycle. Register, login and
// refresh are public; logout needs a valid access token because the
// caller's identity comes from it.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, issuer *auth.TokenIssuer) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, middleware.JWTAuth(issuer))
}

// RegisterUsers registers the user CRUD surface. Listing, creating,
// fetching by id and deleting are admin-only; updating is open to any
// authenticated caller because the service restricts non-admins to
// their own profile.
func RegisterUsers(e *echo.Echo, u *handler.UsersHandler, issuer *auth.TokenIssuer) {
	authed := e.Group("/v1", middleware.JWTAuth(issuer))
	authed.GET("/me", u.Me, middleware.RequireMinRole(model.RoleViewer))

	users := authed.Group("/users")
	users.PATCH("/:id", u.Update, middleware.RequireMinRole(model.RoleViewer))

	admin := users.Group("", middleware.RequireMinRole(model.RoleAdmin))
	admin.GET("", u.List)
	admin.POST("", u.Create)
	admin.GET("/:id", u.Get)
	admin.DELETE("/:id", u.Delete)
}

// RegisterAdmin registers the admin-only surface. The dashboard route
// is wrapped with the response cache when one is configured.
func RegisterAdmin(e *echo.Echo, ad *handler.AdminHandler, issuer *auth.TokenIssuer, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/admin", middleware.JWTAuth(issuer), middleware.RequireMinRole(model.RoleAdmin))
	if cache != nil {
		g.GET("/dashboard", ad.Dashboard, cache)
	} else {
		g.GET("/dashboard", ad.Dashboard)
	}
	g.POST("/users/:id/activate", ad.Activate)
	g.POST("/users/:id/deactivate", ad.Deactivate)
	g.GET("/audit", ad.AuditLogs)
}
