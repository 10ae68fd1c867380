package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrVisibilityDenied   = errors.New("content is not visible to this account")
	ErrConflict           = errors.New("conflict")
	ErrInvalidOperation   = errors.New("invalid operation")
	ErrInvalidState       = errors.New("invalid state")
	ErrCascadeFailure     = errors.New("cascade deletion did not complete")
	ErrInvalidInput       = errors.New("invalid input")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInternal           = errors.New("internal server error")
)

// Error codes returned alongside the HTTP status so callers can tell
// business outcomes apart even when they share a status.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeForbidden          = "FORBIDDEN"
	CodeVisibilityDenied   = "VISIBILITY_DENIED"
	CodeConflict           = "CONFLICT"
	CodeInvalidOperation   = "INVALID_OPERATION"
	CodeInvalidState       = "INVALID_STATE"
	CodeCascadeFailure     = "CASCADE_FAILURE"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeRateLimited        = "RATE_LIMITED"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

type mapping struct {
	target error
	status int
	code   string
}

// Order matters: the first sentinel matched wins.
var mappings = []mapping{
	{ErrNotFound, http.StatusNotFound, CodeNotFound},
	{ErrUnauthenticated, http.StatusUnauthorized, CodeUnauthenticated},
	{ErrVisibilityDenied, http.StatusForbidden, CodeVisibilityDenied},
	{ErrForbidden, http.StatusForbidden, CodeForbidden},
	{ErrConflict, http.StatusConflict, CodeConflict},
	{ErrInvalidOperation, http.StatusUnprocessableEntity, CodeInvalidOperation},
	{ErrInvalidState, http.StatusConflict, CodeInvalidState},
	{ErrCascadeFailure, http.StatusInternalServerError, CodeCascadeFailure},
	{ErrInvalidInput, http.StatusBadRequest, CodeInvalidInput},
	{ErrRateLimitExceeded, http.StatusTooManyRequests, CodeRateLimited},
	{ErrStorageUnavailable, http.StatusServiceUnavailable, CodeStorageUnavailable},
}

// Classify returns the HTTP status and the stable error code for err.
func Classify(err error) (int, string) {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}

	return http.StatusInternalServerError, CodeInternal
}

// IsBusiness reports whether err is one of the expected business outcomes
// rather than an infrastructure failure.
func IsBusiness(err error) bool {
	for _, m := range mappings {
		if m.target == ErrStorageUnavailable {
			continue
		}
		if errors.Is(err, m.target) {
			return true
		}
	}
	return false
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
