package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind groups errors by how the caller should react to them
type ErrorKind string

const (
	KindMissingToken          ErrorKind = "missing_token"
	KindInvalidOrExpiredToken ErrorKind = "invalid_or_expired_token"
	KindUserNotFound          ErrorKind = "user_not_found"
	KindInvalidCredentials    ErrorKind = "invalid_credentials"
	KindInsufficientRole      ErrorKind = "insufficient_role"
	KindNotOwner              ErrorKind = "not_owner"
	KindConflict              ErrorKind = "conflict"
	KindValidationFailed      ErrorKind = "validation_failed"
	KindNotFound              ErrorKind = "not_found"
	KindInternal              ErrorKind = "internal"
)

// Error is the error type returned by every operation in this module.
// Two errors match with errors.Is when they share Kind and TextCode.
type Error struct {
	Kind     ErrorKind
	Status   int
	TextCode string
	Message  string
	Fields   map[string]string
	err      error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.TextCode == t.TextCode
}

// Wrap returns a copy of e carrying cause
func (e *Error) Wrap(cause error) *Error {
	c := *e
	c.err = cause
	return &c
}

// WithMessage returns a copy of e with a different message
func (e *Error) WithMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

// WithFields returns a copy of e carrying per field details
func (e *Error) WithFields(fields map[string]string) *Error {
	c := *e
	c.Fields = fields
	return &c
}

func newError(kind ErrorKind, status int, code, msg string) *Error {
	return &Error{
		Kind:     kind,
		Status:   status,
		TextCode: code,
		Message:  msg,
	}
}

var (
	// ErrMissingToken no bearer token on a protected route
	ErrMissingToken = newError(KindMissingToken, http.StatusUnauthorized, "MISSING_TOKEN", "missing or malformed authorization header")

	// ErrInvalidOrExpiredToken bad signature, malformed or expired token
	ErrInvalidOrExpiredToken = newError(KindInvalidOrExpiredToken, http.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired token")

	// ErrTokenExpired is a specialization of ErrInvalidOrExpiredToken
	ErrTokenExpired = &Error{
		Kind:     KindInvalidOrExpiredToken,
		Status:   http.StatusUnauthorized,
		TextCode: "TOKEN_EXPIRED",
		Message:  "token expired",
		err:      ErrInvalidOrExpiredToken,
	}

	// ErrUserNotFound token subject no longer resolves to an active user
	ErrUserNotFound = newError(KindUserNotFound, http.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired token")

	// ErrInvalidCredentials unknown username or wrong password, never told apart
	ErrInvalidCredentials = newError(KindInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid username or password")

	ErrInsufficientRole = newError(KindInsufficientRole, http.StatusForbidden, "INSUFFICIENT_ROLE", "insufficient role")
	ErrNotOwner         = newError(KindNotOwner, http.StatusForbidden, "NOT_OWNER", "resource belongs to another user")

	ErrDuplicateUsername = newError(KindConflict, http.StatusConflict, "DUPLICATE_USERNAME", "username already taken")
	ErrDuplicateEmail    = newError(KindConflict, http.StatusConflict, "DUPLICATE_EMAIL", "email already registered")
	ErrVersionConflict   = newError(KindConflict, http.StatusConflict, "VERSION_CONFLICT", "record was modified by another request")

	ErrValidationFailed = newError(KindValidationFailed, http.StatusBadRequest, "VALIDATION_FAILED", "validation failed")

	// ErrNoEmptyString password must not be empty
	ErrNoEmptyString = newError(KindValidationFailed, http.StatusBadRequest, "EMPTY_PASSWORD", "password must not be empty")

	// ErrPasswordTooLong bcrypt only uses the first 72 bytes
	ErrPasswordTooLong = newError(KindValidationFailed, http.StatusBadRequest, "PASSWORD_TOO_LONG", "password exceeds 72 bytes")

	ErrRecordNotFound = newError(KindNotFound, http.StatusNotFound, "NOT_FOUND", "record not found")
	ErrInternal       = newError(KindInternal, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
)

// ErrMissingSigningKey is returned at construction time when no JWT secret is set
var ErrMissingSigningKey = errors.New("auth: jwt signing key is required")

// IsNotFound reports whether err is a missing record
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

// AsError finds the first *Error in err's chain. Anything else is
// reported as ErrInternal wrapping err.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal.Wrap(err)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	return errors.Is(err, ErrTokenExpired)
}
