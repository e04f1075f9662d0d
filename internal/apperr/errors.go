// Package apperr defines the error taxonomy shared by services and
// handlers. Services return these typed values so the HTTP layer can map
// failures to status codes without matching on message strings. The
// messages are written to be safe for clients; anything sensitive stays
// in server logs.
package apperr

import "fmt"

// Machine-readable error codes carried alongside each message.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeDuplicate    = "DUPLICATE_RESOURCE"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
)

// Error is a domain failure with a code and a client-safe message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Validation signals malformed input. Handlers map it to HTTP 400.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Duplicate signals a uniqueness violation. Handlers map it to HTTP 409.
func Duplicate(resource, identifier string) *Error {
	return &Error{Code: CodeDuplicate, Message: fmt.Sprintf("%s %q already exists", resource, identifier)}
}

// Unauthorized signals missing or invalid credentials. Handlers map it to
// HTTP 401.
func Unauthorized(msg string) *Error {
	if msg == "" {
		msg = "unauthorized"
	}
	return &Error{Code: CodeUnauthorized, Message: msg}
}

// Forbidden signals an authenticated caller without sufficient privilege.
// Handlers map it to HTTP 403.
func Forbidden(msg string) *Error {
	if msg == "" {
		msg = "forbidden"
	}
	return &Error{Code: CodeForbidden, Message: msg}
}

// NotFound signals a missing entity. Handlers map it to HTTP 404.
func NotFound(resource string, identifier uint64) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %d not found", resource, identifier)}
}
