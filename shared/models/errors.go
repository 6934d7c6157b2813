package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an AppError. Every kind maps to exactly one HTTP status.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindBadRequest
	KindUnauthorized
	KindNotFound
	KindConflict
)

// HTTPStatus returns the status code reported to callers for this kind.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (k ErrorKind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// AppError is an application error with a kind and a user-visible message.
// Err optionally carries the underlying cause and is never shown to callers.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func NewAppError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same kind and message,
// so wrapped copies still match their sentinel with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Wrap returns a copy of e carrying err as its cause.
func (e *AppError) Wrap(err error) *AppError {
	return &AppError{Kind: e.Kind, Message: e.Message, Err: err}
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Application-wide standard errors
var (
	// Authentication. Causes are collapsed on purpose so callers cannot tell
	// a wrong password from an unknown or deprecated account.
	ErrInvalidCredentials = NewAppError(KindUnauthorized, "Username or password error")
	ErrUnauthorized       = NewAppError(KindUnauthorized, "Unauthorized")
	ErrCertificateInvalid = NewAppError(KindUnauthorized, "Username or token error")

	// Token lifecycle
	ErrNotLoggedIn   = NewAppError(KindUnauthorized, "You need to login first")
	ErrTokenExpired  = NewAppError(KindUnauthorized, "Token expired")
	ErrTokenInvalid  = NewAppError(KindUnauthorized, "Token is invalid or already logged out")
	ErrTokenMismatch = NewAppError(KindUnauthorized, "Token error")

	// Users
	ErrUserNotFound      = NewAppError(KindNotFound, "User not found")
	ErrUserAlreadyExists = NewAppError(KindConflict, "User with this username already exists")

	// Request / server
	ErrInvalidInput   = NewAppError(KindBadRequest, "Invalid input data")
	ErrDatabase       = NewAppError(KindInternal, "Database error")
	ErrInternalServer = NewAppError(KindInternal, "Internal server error")
)
