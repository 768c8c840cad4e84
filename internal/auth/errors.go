package auth

import "net/http"

// Error is a structured failure surfaced to the HTTP boundary: an HTTP status,
// a stable machine-readable code and a human message. Handlers map it straight
// to a response; anything that is not an *Error collapses to a generic 500 so
// internal detail never leaks to the caller.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Stable machine-readable error codes.
const (
	CodeEmailInUse         = "EMAIL_IN_USE"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeSessionExpired     = "SESSION_EXPIRED"
	CodeCodeNotFound       = "CODE_NOT_FOUND"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeInternal           = "INTERNAL_ERROR"
)

var (
	ErrEmailInUse = &Error{http.StatusConflict, CodeEmailInUse, "Email already in use"}

	// Deliberately identical for unknown email and wrong password so login
	// failures cannot be used for account enumeration.
	ErrInvalidCredentials = &Error{http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password"}

	ErrInvalidToken   = &Error{http.StatusUnauthorized, CodeInvalidToken, "Invalid token"}
	ErrTokenExpired   = &Error{http.StatusUnauthorized, CodeTokenExpired, "Token expired"}
	ErrSessionExpired = &Error{http.StatusUnauthorized, CodeSessionExpired, "Session expired"}

	ErrCodeNotFound = &Error{http.StatusNotFound, CodeCodeNotFound, "Invalid or expired verification code"}

	// The reset flow does reveal account existence. Known inconsistency with
	// the login path, kept until the intended posture is confirmed.
	ErrUserNotFound = &Error{http.StatusNotFound, CodeUserNotFound, "User doesn't exist"}

	ErrTooManyRequests = &Error{http.StatusTooManyRequests, CodeTooManyRequests, "Too many requests, please try again later"}

	ErrInternal = &Error{http.StatusInternalServerError, CodeInternal, "Internal server error"}
)

// internalError wraps an unexpected failure message behind the generic
// internal error. The detail goes to the log at the call site, never to the
// client.
func internalError(message string) *Error {
	if message == "" {
		return ErrInternal
	}
	return &Error{http.StatusInternalServerError, CodeInternal, message}
}
