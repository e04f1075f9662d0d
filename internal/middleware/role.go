package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/deal-pipeline/internal/apperr"
	"github.com/iliyamo/deal-pipeline/internal/model"
)

// rolePermissions maps each role to the named permissions it may exercise.
// The admin wildcard grants everything; the plain user role carries no
// permissions at all. The mapping is fixed at build time on purpose: the
// roles table is reference data, not an authorization source.
var rolePermissions = map[string][]string{
	model.RoleAdmin:   {"*"},
	model.RoleAnalyst: {"create_deal", "edit_deal", "view_reports", "create_memo"},
	model.RolePartner: {"comment", "vote", "approve_deal", "decline_deal"},
}

// RoleHasPermission reports whether the role may exercise the named
// permission.
func RoleHasPermission(role, permission string) bool {
	for _, p := range rolePermissions[role] {
		if p == "*" || p == permission {
			return true
		}
	}
	return false
}

// RequireRole returns a middleware that lets the request through only when
// the authenticated user's role is one of the listed roles. It assumes
// Authenticate ran earlier in the chain; an absent identity is rejected the
// same way as a wrong role.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok || !allowed[u.Role] {
				if ok {
					c.Logger().Warnf("access denied for user %d: requires one of %v, has %s", u.ID, roles, u.Role)
				}
				return forbid(c, apperr.Forbidden(""))
			}
			return next(c)
		}
	}
}

// RequirePermission returns a middleware that lets the request through only
// when the authenticated user's role grants the named permission.
func RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok || !RoleHasPermission(u.Role, permission) {
				if ok {
					c.Logger().Warnf("permission denied for user %d: requires %s, has role %s", u.ID, permission, u.Role)
				}
				return forbid(c, apperr.Forbidden("permission '"+permission+"' required"))
			}
			return next(c)
		}
	}
}

// forbid renders a forbidden error with the same body shape the handler
// layer uses, so 403s look identical wherever they originate.
func forbid(c echo.Context, ae *apperr.Error) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": ae.Message, "code": ae.Code})
}
