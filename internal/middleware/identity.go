package middleware

// identity.go holds the accessors for the identity resolved by the
// Authenticate middleware. Handlers and downstream middleware use these
// instead of reaching into the raw context keys.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/deal-pipeline/internal/model"
)

// CurrentUser returns the authenticated user stored in the context by
// Authenticate. The second result is false when the route was not wrapped
// in Authenticate or authentication did not run.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(userContextKey).(model.User)
	return u, ok
}

// SetCurrentUser stores an identity in the context. Exposed for handler
// tests that bypass the Authenticate middleware.
func SetCurrentUser(c echo.Context, u model.User) {
	c.Set(userContextKey, u)
}

// currentUserID is used by the rate limiter to build per-user keys; guests
// share the "anon" bucket.
func currentUserID(c echo.Context) string {
	if u, ok := CurrentUser(c); ok {
		return strconv.FormatUint(u.ID, 10)
	}
	return "anon"
}
