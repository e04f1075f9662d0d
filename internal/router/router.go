// Package router wires handlers and gate middleware onto the Echo
// instance. Route requirements are declared here, next to the paths they
// protect, so the whole access policy is readable in one place.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/deal-pipeline/internal/handler"
	"github.com/iliyamo/deal-pipeline/internal/middleware"
	"github.com/iliyamo/deal-pipeline/internal/model"
)

// RegisterRoutes registers the routes that require no authentication.
func RegisterRoutes(e *echo.Echo) {
	// Liveness probe for load balancers and monitoring.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. The public group
// carries the rate limiter so credential guessing is throttled; the
// protected group resolves the bearer token to a live user first.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, authn echo.MiddlewareFunc, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.Use(limiter)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	p := e.Group("/v1/auth")
	p.Use(authn)
	p.GET("/me", a.Me)
	p.POST("/change-password", a.ChangePassword)
}

// RegisterUsers registers the admin-only user management endpoints and the
// read-only roles listing. Every mutation behind these routes runs through
// the last-admin guard in the store.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, authn echo.MiddlewareFunc) {
	g := e.Group("/v1/users")
	g.Use(authn)
	g.Use(middleware.RequireRole(model.RoleAdmin))
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PUT("/:id/role", h.UpdateRole)
	g.DELETE("/:id", h.Delete)

	r := e.Group("/v1/roles")
	r.Use(authn)
	r.GET("", h.ListRoles)
}

// RegisterDeals registers the deal board and memo endpoints. Reads are
// open to any authenticated role; mutations are gated by the named
// permissions, which admins hold implicitly.
func RegisterDeals(e *echo.Echo, h *handler.DealHandler, m *handler.MemoHandler, authn echo.MiddlewareFunc, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/deals")
	g.Use(authn)
	g.GET("", h.List, cache)
	g.GET("/stats/pipeline-summary", h.PipelineSummary, cache)
	g.GET("/:id", h.Get, cache)
	g.POST("", h.Create, middleware.RequirePermission("create_deal"))
	g.PUT("/:id", h.Update, middleware.RequirePermission("edit_deal"))
	g.PUT("/:id/stage", h.UpdateStage, middleware.RequirePermission("edit_deal"))
	g.DELETE("/:id", h.Delete, middleware.RequireRole(model.RoleAdmin))

	g.POST("/:id/memos", m.Save, middleware.RequirePermission("create_memo"))
	g.GET("/:id/memos", m.Get)
	g.GET("/:id/memos/versions", m.History)
	g.GET("/:id/memos/versions/:version", m.GetVersion)
}
