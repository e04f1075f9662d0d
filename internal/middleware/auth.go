// Package middleware contains the request gates applied in front of
// handlers: bearer authentication, role and permission checks, rate
// limiting and response caching.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/deal-pipeline/internal/service"
)

const userContextKey = "auth_user"

// ExtractBearerToken pulls the token out of an Authorization header value.
// The header must consist of exactly two space-separated fields with a
// case-insensitive "Bearer" scheme; anything else counts as absent.
func ExtractBearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// Authenticate returns an Echo middleware that resolves the bearer access
// token to a live user record via the auth service and stores it in the
// request context. A missing or malformed header, an invalid or expired
// token, a refresh token, or a missing/inactive user all end the request
// with 401 and a bearer challenge.
func Authenticate(authSvc *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := ExtractBearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				c.Response().Header().Set("WWW-Authenticate", "Bearer")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing or invalid authorization header"})
			}

			user, err := authSvc.Validate(c.Request().Context(), token)
			if err != nil {
				c.Logger().Warnf("token validation failed: %v", err)
				c.Response().Header().Set("WWW-Authenticate", "Bearer")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}
