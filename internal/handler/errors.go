package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/deal-pipeline/internal/apperr"
)

// statusFor maps domain error codes onto HTTP statuses. The core never
// produces HTTP artifacts itself; this is the single place where the
// taxonomy meets the wire.
func statusFor(code string) int {
	switch code {
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeDuplicate:
		return http.StatusConflict
	case apperr.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperr.CodeForbidden:
		return http.StatusForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeErr renders a service error as JSON. Typed errors keep their
// client-safe message; anything unexpected is logged in full and collapsed
// into a generic 500 so internals never leak.
func writeErr(c echo.Context, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return c.JSON(statusFor(ae.Code), echo.Map{"error": ae.Message, "code": ae.Code})
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
